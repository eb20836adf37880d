package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// validTransitions defines the allowed state machine transitions.
// Delivered and cancelled are terminal.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped},
	StatusShipped:   {StatusDelivered},
}

var contactPattern = regexp.MustCompile(`^\d{10}$`)

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// IsActive reports whether the order still needs seller attention.
func (s OrderStatus) IsActive() bool {
	switch s {
	case StatusPending, StatusPaid, StatusConfirmed, StatusShipped:
		return true
	}
	return false
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CheckTransition validates a transition together with its side data.
func CheckTransition(from, to OrderStatus, trackingNumber string) error {
	if !from.CanTransitionTo(to) {
		return ErrInvalidTransition
	}
	if to == StatusShipped && strings.TrimSpace(trackingNumber) == "" {
		return ErrTrackingNumberRequired
	}
	return nil
}

// Customer is the contact triple captured at checkout.
type Customer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Contact string `json:"contact"`
}

// Validate mirrors the checkout form rules.
func (c Customer) Validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return &ValidationError{Field: "customer.name", Reason: "full name is required"}
	case strings.TrimSpace(c.Address) == "":
		return &ValidationError{Field: "customer.address", Reason: "shipping address is required"}
	case !contactPattern.MatchString(c.Contact):
		return &ValidationError{Field: "customer.contact", Reason: "a valid 10-digit contact number is required"}
	}
	return nil
}

// LineItem is a snapshot of a product at order time. It is never re-linked
// to the live catalog record.
type LineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal is price × quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderTotal sums the subtotals of items.
func OrderTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// StatusHistoryEntry records a single status transition on an order.
type StatusHistoryEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	ActorID   string      `json:"actor_id,omitempty"`
}

// Order is the core aggregate root of the ledger.
type Order struct {
	ID             string               `json:"id"`
	StoreSlug      string               `json:"store_id"`
	Reference      string               `json:"order_id"`
	UserID         string               `json:"user_id,omitempty"`
	Customer       Customer             `json:"customer"`
	Items          []LineItem           `json:"products"`
	TotalAmount    decimal.Decimal      `json:"total_amount"`
	Status         OrderStatus          `json:"status"`
	TrackingNumber string               `json:"tracking_number,omitempty"`
	IdempotencyKey string               `json:"-"`
	StatusHistory  []StatusHistoryEntry `json:"status_history"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidOrder
}
