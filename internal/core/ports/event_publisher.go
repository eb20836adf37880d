package ports

import (
	"context"

	"github.com/quickorder/storefront/internal/core/domain"
)

// EventPublisher writes a keyed message to the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value any) error
	Close() error
}

// OrderEventSink accepts order events for asynchronous delivery.
type OrderEventSink interface {
	Enqueue(event domain.OrderEvent)
}
