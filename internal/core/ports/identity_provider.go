package ports

import (
	"context"
	"time"

	"github.com/quickorder/storefront/internal/core/domain"
)

// Credentials identify a caller by email or phone plus a password.
type Credentials struct {
	Email    string
	Phone    string
	Password string
}

// IdentityProvider verifies credentials. Failures are *domain.AuthError.
type IdentityProvider interface {
	Register(ctx context.Context, creds Credentials, displayName string) (*domain.Identity, error)
	Authenticate(ctx context.Context, creds Credentials) (*domain.Identity, error)
}

// SessionStore keeps open sessions until sign out or expiry.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}
