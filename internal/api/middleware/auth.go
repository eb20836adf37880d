package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/quickorder/storefront/internal/core/domain"
)

// Context keys set by Auth and OptionalAuth.
const (
	ContextKeyUser    = "user"
	ContextKeySession = "session"
)

// Authenticator resolves a bearer token into the caller's session and user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Session, *domain.User, error)
}

// Auth rejects requests without a valid session token.
func Auth(auth Authenticator) echo.MiddlewareFunc {
	return authenticate(auth, true)
}

// OptionalAuth attaches the caller when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(auth Authenticator) echo.MiddlewareFunc {
	return authenticate(auth, false)
}

func authenticate(auth Authenticator, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}
			if token == "" {
				if required {
					return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
				}
				return next(c)
			}

			session, user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					if !required {
						return next(c)
					}
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				return err
			}

			c.Set(ContextKeySession, session)
			c.Set(ContextKeyUser, user)
			return next(c)
		}
	}
}

// bearerToken reads the Authorization header. EventSource clients cannot set
// headers, so the access_token query parameter is accepted as a fallback.
func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return c.QueryParam("access_token"), nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// UserFrom returns the authenticated user, or nil for anonymous requests.
func UserFrom(c echo.Context) *domain.User {
	u, _ := c.Get(ContextKeyUser).(*domain.User)
	return u
}

// SessionFrom returns the current session, or nil for anonymous requests.
func SessionFrom(c echo.Context) *domain.Session {
	s, _ := c.Get(ContextKeySession).(*domain.Session)
	return s
}
