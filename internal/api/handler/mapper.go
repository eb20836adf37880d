package handler

import (
	"github.com/quickorder/storefront/internal/core/domain"
	"github.com/quickorder/storefront/internal/core/ports"
)

func toProductInput(r productRequest) ports.ProductInput {
	return ports.ProductInput{
		Name:        r.Name,
		Price:       r.Price,
		Unit:        r.Unit,
		Description: r.Description,
		ImageURL:    r.ImageURL,
	}
}

func toPlaceOrderInput(storeSlug, idempotencyKey string, r placeOrderRequest) ports.PlaceOrderInput {
	items := make([]ports.OrderItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, ports.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return ports.PlaceOrderInput{
		StoreSlug: storeSlug,
		Customer: domain.Customer{
			Name:    r.Customer.Name,
			Address: r.Customer.Address,
			Contact: r.Customer.Contact,
		},
		Items:          items,
		IdempotencyKey: idempotencyKey,
	}
}

func toOrderBoard(b *ports.OrderBoard) orderBoardResponse {
	resp := orderBoardResponse{Active: b.Active, Completed: b.Completed}
	if resp.Active == nil {
		resp.Active = []*domain.Order{}
	}
	if resp.Completed == nil {
		resp.Completed = []*domain.Order{}
	}
	return resp
}

func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
