package domain

import "time"

// OrderEventType names a change in the order ledger.
type OrderEventType string

const (
	OrderPlaced        OrderEventType = "order.placed"
	OrderStatusChanged OrderEventType = "order.status_changed"
	OrderDeleted       OrderEventType = "order.deleted"
)

// OrderEvent is published after every successful ledger mutation.
type OrderEvent struct {
	Type       OrderEventType `json:"type"`
	OrderID    string         `json:"order_id"`
	Reference  string         `json:"reference,omitempty"`
	StoreSlug  string         `json:"store_id"`
	FromStatus OrderStatus    `json:"from_status,omitempty"`
	Status     OrderStatus    `json:"status,omitempty"`
	ActorID    string         `json:"actor_id,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}
