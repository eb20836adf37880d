package ports

import (
	"context"

	"github.com/quickorder/storefront/internal/core/domain"
)

// StatusUpdate describes a single compare-and-swap status write.
type StatusUpdate struct {
	OrderID        string
	From           domain.OrderStatus
	To             domain.OrderStatus
	TrackingNumber string
	Entry          domain.StatusHistoryEntry
}

// OrderRepository persists orders. Creation is append-only.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	// ListByStore returns the store's orders in no particular order.
	ListByStore(ctx context.Context, storeSlug string) ([]*domain.Order, error)
	// UpdateStatus writes the new status only while the stored status still
	// equals update.From; otherwise it returns domain.ErrConcurrentUpdate.
	UpdateStatus(ctx context.Context, update StatusUpdate) error
	Delete(ctx context.Context, id string) error
	// Watch has the same contract as ProductRepository.Watch.
	Watch(ctx context.Context, storeSlug string) (<-chan []*domain.Order, error)
}

// IdempotencyStore remembers which order an Idempotency-Key produced.
type IdempotencyStore interface {
	// Lookup returns the order id recorded for key, or "" when none is known.
	Lookup(ctx context.Context, key string) (string, error)
	// Reserve claims key for orderID before the order is written. It reports
	// false when another request already holds the key.
	Reserve(ctx context.Context, key, orderID string) (bool, error)
	// Release drops a reservation whose order was never written.
	Release(ctx context.Context, key string) error
}
