package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/quickorder/storefront/internal/core/domain"
	"github.com/quickorder/storefront/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry order placement safely.
const HeaderIdempotencyKey = "Idempotency-Key"

type OrderHandler struct {
	orders ports.OrderService
}

func NewOrderHandler(orders ports.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Place snapshots the cart into a pending order and returns its UPI link.
// A repeated Idempotency-Key returns the original order with 200.
//
// @Summary      Place order
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        slug             path      string             true   "Store slug"
// @Param        Idempotency-Key  header    string             false  "Client retry key"
// @Param        body             body      placeOrderRequest  true   "Order"
// @Success      201              {object}  orderResponse
// @Success      200              {object}  orderResponse
// @Failure      404              {object}  map[string]string
// @Failure      422              {object}  map[string]string
// @Failure      409              {object}  map[string]string
// @Router       /v1/stores/{slug}/orders [post]
func (h *OrderHandler) Place(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req placeOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	key := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	res, err := h.orders.PlaceOrder(c.Request().Context(), user, toPlaceOrderInput(c.Param("slug"), key, req))
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if res.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, orderResponse{Order: res.Order, PaymentURL: res.PaymentURL})
}

// List returns the seller board: active orders and completed orders.
//
// @Summary      Order board
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        slug  path      string  true  "Store slug"
// @Success      200   {object}  orderBoardResponse
// @Failure      403   {object}  map[string]string
// @Router       /v1/stores/{slug}/orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	board, err := h.orders.ListOrders(c.Request().Context(), user, c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderBoard(board))
}

// Mine returns the caller's own orders at the store, newest first.
//
// @Summary      My orders
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        slug  path      string  true  "Store slug"
// @Success      200   {array}   domain.Order
// @Router       /v1/stores/{slug}/orders/mine [get]
func (h *OrderHandler) Mine(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	orders, err := h.orders.ListCustomerOrders(c.Request().Context(), user, c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, emptyIfNil(orders))
}

// Stream pushes the store's full order list on every change.
//
// @Summary      Stream orders
// @Tags         orders
// @Security     BearerAuth
// @Produce      text/event-stream
// @Param        slug  path  string  true  "Store slug"
// @Success      200
// @Failure      403  {object}  map[string]string
// @Router       /v1/stores/{slug}/orders/stream [get]
func (h *OrderHandler) Stream(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	snapshots, err := h.orders.SubscribeOrders(c.Request().Context(), user, c.Param("slug"))
	if err != nil {
		return err
	}
	return streamSnapshots(c, snapshots)
}

// Get returns one order to its customer or a manager of its store. Pending
// orders carry their payment link.
//
// @Summary      Get order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order id"
// @Success      200  {object}  orderResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	order, err := h.orders.GetOrder(ctx, user, c.Param("id"))
	if err != nil {
		return err
	}

	resp := orderResponse{Order: order}
	if order.Status == domain.StatusPending {
		if url, err := h.orders.PaymentURL(ctx, order); err == nil {
			resp.PaymentURL = url
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateStatus moves an order along its lifecycle.
//
// @Summary      Update order status
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Order id"
// @Param        body  body      updateStatusRequest  true  "Target status"
// @Success      200   {object}  domain.Order
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req updateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orders.UpdateStatus(c.Request().Context(), user, ports.UpdateStatusInput{
		OrderID:        c.Param("id"),
		Status:         domain.OrderStatus(req.Status),
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// Delete removes an order.
//
// @Summary      Delete order
// @Tags         orders
// @Security     BearerAuth
// @Param        id   path  string  true  "Order id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/orders/{id} [delete]
func (h *OrderHandler) Delete(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.orders.DeleteOrder(c.Request().Context(), user, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
