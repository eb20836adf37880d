package ports

import (
	"context"

	"github.com/quickorder/storefront/internal/core/domain"
)

// StoreRepository persists tenant records keyed by slug.
type StoreRepository interface {
	// Upsert writes the store under its slug, overwriting any existing record.
	Upsert(ctx context.Context, s *domain.Store) error
	FindBySlug(ctx context.Context, slug string) (*domain.Store, error)
	// List returns every store in no particular order.
	List(ctx context.Context) ([]*domain.Store, error)
	UpdateSettings(ctx context.Context, slug string, settings domain.StoreSettings) (*domain.Store, error)
	Delete(ctx context.Context, slug string) error

	// FindByOwnerEmail and FindByOwnerPhone return the first matching store
	// or domain.ErrStoreNotFound.
	FindByOwnerEmail(ctx context.Context, email string) (*domain.Store, error)
	FindByOwnerPhone(ctx context.Context, phone string) (*domain.Store, error)
}
