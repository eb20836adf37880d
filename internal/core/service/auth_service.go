package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quickorder/storefront/internal/core/domain"
	"github.com/quickorder/storefront/internal/core/ports"
)

// AuthConfig carries the session settings.
type AuthConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
	// AuthorizedOrigins lists the origins allowed to sign in. Empty allows any.
	AuthorizedOrigins []string
}

// AuthService opens and closes sessions on top of the identity provider.
type AuthService struct {
	provider ports.IdentityProvider
	sessions ports.SessionStore
	resolver ports.IdentityResolver
	cfg      AuthConfig
	origins  map[string]struct{}
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(
	provider ports.IdentityProvider,
	sessions ports.SessionStore,
	resolver ports.IdentityResolver,
	cfg AuthConfig,
	log zerolog.Logger,
) *AuthService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	origins := make(map[string]struct{}, len(cfg.AuthorizedOrigins))
	for _, o := range cfg.AuthorizedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins[o] = struct{}{}
		}
	}
	return &AuthService{
		provider: provider,
		sessions: sessions,
		resolver: resolver,
		cfg:      cfg,
		origins:  origins,
		log:      log,
		now:      time.Now,
	}
}

// Register creates a provider account and signs the new customer in.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if err := s.checkOrigin(in.Origin); err != nil {
		return nil, err
	}
	identity, err := s.provider.Register(ctx, ports.Credentials{
		Email:    in.Email,
		Phone:    in.Phone,
		Password: in.Password,
	}, in.Name)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("identity", identity.ID).Msg("identity registered")
	return s.open(ctx, *identity)
}

// SignIn authenticates with the provider and opens a session. When admin
// access is requested by an identity that is neither root nor a store owner,
// the session is closed again and ErrAuthorizationDenied is returned.
func (s *AuthService) SignIn(ctx context.Context, in ports.SignInInput) (*ports.AuthResult, error) {
	if err := s.checkOrigin(in.Origin); err != nil {
		return nil, err
	}
	identity, err := s.provider.Authenticate(ctx, ports.Credentials{
		Email:    in.Email,
		Phone:    in.Phone,
		Password: in.Password,
	})
	if err != nil {
		var ae *domain.AuthError
		if errors.As(err, &ae) {
			s.log.Info().Str("code", ae.Code).Msg("sign in rejected by identity provider")
		}
		return nil, err
	}

	result, err := s.open(ctx, *identity)
	if err != nil {
		return nil, err
	}

	if in.TargetRole == ports.TargetAdmin && result.User.Role == domain.RoleCustomer {
		if err := s.sessions.Delete(ctx, result.Session.ID); err != nil {
			s.log.Error().Err(err).Str("session", result.Session.ID).Msg("failed to close denied session")
		}
		s.log.Warn().Str("identity", identity.ID).Msg("admin access denied, session closed")
		return nil, domain.ErrAuthorizationDenied
	}
	return result, nil
}

// SignOut tears the session down.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return domain.Persistence("close session", err)
	}
	s.log.Info().Str("session", sessionID).Msg("signed out")
	return nil
}

// Authenticate validates a session token and re-derives the caller's role.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Session, *domain.User, error) {
	claims := jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !tkn.Valid || claims.ID == "" {
		return nil, nil, domain.ErrUnauthenticated
	}

	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, nil, domain.ErrUnauthenticated
		}
		return nil, nil, domain.Persistence("load session", err)
	}
	return session, s.resolver.BuildUser(ctx, session.Identity), nil
}

func (s *AuthService) open(ctx context.Context, identity domain.Identity) (*ports.AuthResult, error) {
	now := s.now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		Identity:  identity,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Save(ctx, session, s.cfg.SessionTTL); err != nil {
		s.log.Error().Err(err).Msg("failed to save session")
		return nil, domain.Persistence("open session", err)
	}

	token, err := s.generateToken(session)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &ports.AuthResult{
		Token:   token,
		Session: session,
		User:    s.resolver.BuildUser(ctx, identity),
	}, nil
}

func (s *AuthService) generateToken(session *domain.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   session.Identity.ID,
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) checkOrigin(origin string) error {
	if len(s.origins) == 0 {
		return nil
	}
	if _, ok := s.origins[strings.TrimRight(origin, "/")]; ok {
		return nil
	}
	return &domain.ConfigurationError{Origin: origin}
}
