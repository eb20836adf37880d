package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/quickorder/storefront/internal/core/domain"
	"github.com/quickorder/storefront/internal/core/ports"
)

const placeBody = `{"customer":{"name":"Asha","address":"12 MG Road","contact":"9876543210"},` +
	`"items":[{"product_id":"p-1","quantity":2},{"product_id":"p-2","quantity":1}]}`

func TestOrderHandler_Place_Created(t *testing.T) {
	svc := &stubOrderService{}
	c, rec := newTestContext(http.MethodPost, "/v1/stores/teja-shop/orders", placeBody)
	c.SetParamNames("slug")
	c.SetParamValues("teja-shop")
	c.Request().Header.Set(HeaderIdempotencyKey, " cart-42 ")
	withUser(c, customer)

	if err := NewOrderHandler(svc).Place(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.placed.StoreSlug != "teja-shop" || svc.placed.IdempotencyKey != "cart-42" {
		t.Fatalf("input not mapped: %+v", svc.placed)
	}
	if len(svc.placed.Items) != 2 || svc.placed.Items[0].Quantity != 2 {
		t.Fatalf("items not mapped: %+v", svc.placed.Items)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["id"] != "o-1" || !strings.HasPrefix(body["payment_url"].(string), "upi://pay") {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestOrderHandler_Place_ReplayReturns200(t *testing.T) {
	svc := &stubOrderService{replayed: true}
	c, rec := newTestContext(http.MethodPost, "/v1/stores/teja-shop/orders", placeBody)
	c.SetParamNames("slug")
	c.SetParamValues("teja-shop")
	withUser(c, customer)

	if err := NewOrderHandler(svc).Place(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestOrderHandler_Place_RequiresItems(t *testing.T) {
	c, _ := newTestContext(http.MethodPost, "/v1/stores/teja-shop/orders",
		`{"customer":{"name":"Asha","address":"x","contact":"9876543210"},"items":[]}`)
	withUser(c, customer)

	err := NewOrderHandler(&stubOrderService{}).Place(c)
	if httpCode(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestOrderHandler_Place_RequiresUser(t *testing.T) {
	c, _ := newTestContext(http.MethodPost, "/v1/stores/teja-shop/orders", placeBody)

	err := NewOrderHandler(&stubOrderService{}).Place(c)
	if httpCode(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	svc := &stubOrderService{}
	c, rec := newTestContext(http.MethodPatch, "/v1/orders/o-1/status", `{"status":"shipped","tracking_number":"TRK123"}`)
	c.SetParamNames("id")
	c.SetParamValues("o-1")
	withUser(c, seller)

	if err := NewOrderHandler(svc).UpdateStatus(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := ports.UpdateStatusInput{OrderID: "o-1", Status: domain.StatusShipped, TrackingNumber: "TRK123"}
	if svc.update != want {
		t.Fatalf("expected %+v, got %+v", want, svc.update)
	}
}

func TestOrderHandler_UpdateStatus_UnknownStatus(t *testing.T) {
	c, _ := newTestContext(http.MethodPatch, "/v1/orders/o-1/status", `{"status":"refunded"}`)
	withUser(c, seller)

	err := NewOrderHandler(&stubOrderService{}).UpdateStatus(c)
	if httpCode(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestOrderHandler_UpdateStatus_PropagatesTransitionError(t *testing.T) {
	svc := &stubOrderService{err: domain.ErrInvalidTransition}
	c, _ := newTestContext(http.MethodPatch, "/v1/orders/o-1/status", `{"status":"delivered"}`)
	withUser(c, seller)

	err := NewOrderHandler(svc).UpdateStatus(c)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestOrderHandler_Get_PendingCarriesPaymentURL(t *testing.T) {
	for _, tc := range []struct {
		status  domain.OrderStatus
		wantURL bool
	}{
		{domain.StatusPending, true},
		{domain.StatusPaid, false},
	} {
		svc := &stubOrderService{order: &domain.Order{ID: "o-1", Status: tc.status}}
		c, rec := newTestContext(http.MethodGet, "/v1/orders/o-1", "")
		withUser(c, customer)

		if err := NewOrderHandler(svc).Get(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		_, has := body["payment_url"]
		if has != tc.wantURL {
			t.Fatalf("%s: payment_url present=%v, want %v", tc.status, has, tc.wantURL)
		}
	}
}

func TestOrderHandler_List_EmptyBoard(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/v1/stores/teja-shop/orders", "")
	withUser(c, seller)

	if err := NewOrderHandler(&stubOrderService{}).List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"active":[],"completed":[]}` {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestOrderHandler_Stream_Forbidden(t *testing.T) {
	svc := &stubOrderService{err: domain.ErrForbidden}
	c, _ := newTestContext(http.MethodGet, "/v1/stores/other/orders/stream", "")
	withUser(c, seller)

	err := NewOrderHandler(svc).Stream(c)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
