package ports

import (
	"context"

	"github.com/quickorder/storefront/internal/core/domain"
)

// ProductRepository persists catalog entries. Every product carries its store slug.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// ListByStore returns the store's products in no particular order.
	ListByStore(ctx context.Context, storeSlug string) ([]*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	// Watch emits the full product set of a store once immediately and again
	// after every change. The channel closes when ctx is done or the stream fails.
	Watch(ctx context.Context, storeSlug string) (<-chan []*domain.Product, error)
}
