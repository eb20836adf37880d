package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry owned by one store.
type Product struct {
	ID          string          `json:"id"`
	StoreSlug   string          `json:"store_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	// SortKey is the creation time in unix milliseconds.
	SortKey   int64     `json:"sort_key"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the fields a seller supplies.
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrInvalidProduct
	}
	if p.Price.IsNegative() {
		return ErrInvalidProduct
	}
	return nil
}
