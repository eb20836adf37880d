package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quickorder/storefront/internal/core/domain"
	"github.com/quickorder/storefront/internal/core/payment"
	"github.com/quickorder/storefront/internal/core/ports"
	"github.com/quickorder/storefront/internal/pkg/metrics"
)

// OrderService implements the order ledger.
type OrderService struct {
	orders   ports.OrderRepository
	products ports.ProductRepository
	stores   ports.StoreRepository
	events   ports.OrderEventSink
	idem     ports.IdempotencyStore
	logger   zerolog.Logger
	now      func() time.Time
}

func NewOrderService(
	orders ports.OrderRepository,
	products ports.ProductRepository,
	stores ports.StoreRepository,
	events ports.OrderEventSink,
	idem ports.IdempotencyStore,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		stores:   stores,
		events:   events,
		idem:     idem,
		logger:   logger,
		now:      time.Now,
	}
}

// PlaceOrder snapshots the requested products, computes the total and stores a
// pending order. An idempotency key is scoped to the store and the caller: a
// key the same caller already used in the store returns the previously placed
// order without side effects.
//
// actor may be nil; the HTTP layer requires a session but the ledger does not.
func (s *OrderService) PlaceOrder(ctx context.Context, actor *domain.User, in ports.PlaceOrderInput) (*ports.PlaceOrderResult, error) {
	var actorID string
	if actor != nil {
		actorID = actor.ID
	}
	var scopedKey string
	if in.IdempotencyKey != "" {
		scopedKey = idempotencyScope(in.StoreSlug, actorID, in.IdempotencyKey)
		if res, err := s.replayResult(ctx, scopedKey, in.StoreSlug, actorID); res != nil || err != nil {
			return res, err
		}
	}

	if err := in.Customer.Validate(); err != nil {
		return nil, err
	}

	store, err := s.stores.FindBySlug(ctx, in.StoreSlug)
	if err != nil {
		return nil, domain.Persistence("find store", err)
	}

	items, err := s.snapshotItems(ctx, store.Slug, in.Items)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	id := uuid.New()
	order := &domain.Order{
		ID:             id.String(),
		StoreSlug:      store.Slug,
		Reference:      orderReference(now, id),
		Customer:       in.Customer,
		Items:          items,
		TotalAmount:    domain.OrderTotal(items),
		Status:         domain.StatusPending,
		UserID:         actorID,
		IdempotencyKey: scopedKey,
		StatusHistory:  []domain.StatusHistoryEntry{{Status: domain.StatusPending, Timestamp: now, ActorID: actorID}},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	url, err := buildPaymentURL(store, order)
	if err != nil {
		return nil, err
	}

	if !s.reserve(ctx, scopedKey, order.ID) {
		// Another request holds the key; replay it if it has landed.
		if res, err := s.replayResult(ctx, scopedKey, in.StoreSlug, actorID); res != nil || err != nil {
			return res, err
		}
		return nil, domain.ErrIdempotencyKeyInUse
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.release(ctx, scopedKey)
		s.logger.Error().Err(err).Str("store", store.Slug).Msg("failed to place order")
		return nil, domain.Persistence("place order", err)
	}

	metrics.OrdersPlacedTotal.WithLabelValues(store.Slug).Inc()
	s.logger.Info().
		Str("order_id", order.ID).
		Str("reference", order.Reference).
		Str("store", store.Slug).
		Str("total", order.TotalAmount.StringFixed(2)).
		Msg("order placed")

	s.emit(domain.OrderEvent{
		Type:      domain.OrderPlaced,
		OrderID:   order.ID,
		Reference: order.Reference,
		StoreSlug: order.StoreSlug,
		Status:    order.Status,
		ActorID:   order.UserID,
		Timestamp: now,
	})

	return &ports.PlaceOrderResult{Order: order, PaymentURL: url}, nil
}

// idempotencyScope namespaces a client key by store and caller. Guests share
// the "guest" scope of the store.
func idempotencyScope(storeSlug, actorID, key string) string {
	if actorID == "" {
		actorID = "guest"
	}
	return storeSlug + ":" + actorID + ":" + key
}

// orderReference is ORD-<unix millis>-<first 4 bytes of the order id in hex>.
func orderReference(now time.Time, id uuid.UUID) string {
	return fmt.Sprintf("ORD-%d-%X", now.UnixMilli(), id[:4])
}

func (s *OrderService) replayResult(ctx context.Context, scopedKey, storeSlug, actorID string) (*ports.PlaceOrderResult, error) {
	existing := s.replay(ctx, scopedKey, storeSlug, actorID)
	if existing == nil {
		return nil, nil
	}
	s.logger.Info().Str("idempotency_key", scopedKey).Str("order_id", existing.ID).Msg("idempotent replay")
	url, err := s.PaymentURL(ctx, existing)
	if err != nil {
		return nil, err
	}
	return &ports.PlaceOrderResult{Order: existing, PaymentURL: url, AlreadyExisted: true}, nil
}

// replay finds the order a scoped idempotency key already produced. The cache
// is consulted first; the order collection is the fallback. Only an order of
// the same store placed by the same caller is replayed.
func (s *OrderService) replay(ctx context.Context, scopedKey, storeSlug, actorID string) *domain.Order {
	var existing *domain.Order
	if s.idem != nil {
		id, err := s.idem.Lookup(ctx, scopedKey)
		if err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", scopedKey).Msg("idempotency cache unavailable")
		} else if id != "" {
			existing, _ = s.orders.FindByID(ctx, id)
		}
	}
	if existing == nil {
		existing, _ = s.orders.FindByIdempotencyKey(ctx, scopedKey)
	}
	if existing == nil || existing.StoreSlug != storeSlug || existing.UserID != actorID {
		return nil
	}
	return existing
}

// reserve claims the key before the order is written. Without a key or a
// reachable cache the write proceeds unreserved.
func (s *OrderService) reserve(ctx context.Context, scopedKey, orderID string) bool {
	if scopedKey == "" || s.idem == nil {
		return true
	}
	ok, err := s.idem.Reserve(ctx, scopedKey, orderID)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", scopedKey).Msg("failed to reserve idempotency key")
		return true
	}
	return ok
}

func (s *OrderService) release(ctx context.Context, scopedKey string) {
	if scopedKey == "" || s.idem == nil {
		return
	}
	if err := s.idem.Release(ctx, scopedKey); err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", scopedKey).Msg("failed to release idempotency key")
	}
}

// snapshotItems copies each requested product of the store into a line item.
// Zero-quantity lines are dropped; at least one line must remain.
func (s *OrderService) snapshotItems(ctx context.Context, storeSlug string, in []ports.OrderItemInput) ([]domain.LineItem, error) {
	items := make([]domain.LineItem, 0, len(in))
	for i, it := range in {
		if it.Quantity < 0 {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Reason: "must not be negative"}
		}
		if it.Quantity == 0 {
			continue
		}
		p, err := s.products.FindByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				return nil, &domain.ValidationError{Field: fmt.Sprintf("items[%d].product_id", i), Reason: "unknown product"}
			}
			return nil, domain.Persistence("find product", err)
		}
		if p.StoreSlug != storeSlug {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("items[%d].product_id", i), Reason: "product belongs to another store"}
		}
		items = append(items, domain.LineItem{Product: *p, Quantity: it.Quantity})
	}
	if len(items) == 0 {
		return nil, &domain.ValidationError{Field: "items", Reason: "add at least one product to the order"}
	}
	return items, nil
}

// GetOrder returns an order to a manager of its store or to the customer who placed it.
func (s *OrderService) GetOrder(ctx context.Context, actor *domain.User, orderID string) (*domain.Order, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, domain.Persistence("find order", err)
	}
	if !actor.CanManage(order.StoreSlug) && (order.UserID == "" || order.UserID != actor.ID) {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

// PaymentURL rebuilds the payment link for an existing order from the
// store's current payment settings.
func (s *OrderService) PaymentURL(ctx context.Context, order *domain.Order) (string, error) {
	store, err := s.stores.FindBySlug(ctx, order.StoreSlug)
	if err != nil {
		return "", domain.Persistence("find store", err)
	}
	return buildPaymentURL(store, order)
}

func buildPaymentURL(store *domain.Store, order *domain.Order) (string, error) {
	return payment.BuildURL(payment.Intent{
		PayeeAddress: store.VPA,
		PayeeName:    store.MerchantName,
		Amount:       order.TotalAmount,
		Note:         "Order #" + order.Reference,
		Reference:    order.Reference,
	})
}

// ListOrders returns the store's orders newest first, split into active and
// completed groups.
func (s *OrderService) ListOrders(ctx context.Context, actor *domain.User, storeSlug string) (*ports.OrderBoard, error) {
	if !actor.CanManage(storeSlug) {
		return nil, domain.ErrForbidden
	}
	orders, err := s.orders.ListByStore(ctx, storeSlug)
	if err != nil {
		s.logger.Error().Err(err).Str("store", storeSlug).Msg("failed to list orders")
		return nil, domain.Persistence("list orders", err)
	}
	sortOrders(orders, s.now())

	board := &ports.OrderBoard{Active: []*domain.Order{}, Completed: []*domain.Order{}}
	for _, o := range orders {
		if o.Status.IsActive() {
			board.Active = append(board.Active, o)
		} else {
			board.Completed = append(board.Completed, o)
		}
	}
	return board, nil
}

// ListCustomerOrders returns the caller's own orders in a store, newest first.
func (s *OrderService) ListCustomerOrders(ctx context.Context, actor *domain.User, storeSlug string) ([]*domain.Order, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	orders, err := s.orders.ListByStore(ctx, storeSlug)
	if err != nil {
		return nil, domain.Persistence("list orders", err)
	}

	mine := make([]*domain.Order, 0)
	for _, o := range orders {
		if o.UserID == actor.ID {
			mine = append(mine, o)
		}
	}
	sortOrders(mine, s.now())
	return mine, nil
}

// UpdateStatus applies one transition of the order state machine. The stored
// status is left unchanged on any rejection.
func (s *OrderService) UpdateStatus(ctx context.Context, actor *domain.User, in ports.UpdateStatusInput) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, in.OrderID)
	if err != nil {
		return nil, domain.Persistence("find order", err)
	}
	if !actor.CanManage(order.StoreSlug) {
		metrics.OrderTransitionRejectionsTotal.WithLabelValues("forbidden").Inc()
		return nil, domain.ErrForbidden
	}

	from := order.Status
	if err := domain.CheckTransition(from, in.Status, in.TrackingNumber); err != nil {
		reason := "invalid_transition"
		if errors.Is(err, domain.ErrTrackingNumberRequired) {
			reason = "tracking_required"
		}
		metrics.OrderTransitionRejectionsTotal.WithLabelValues(reason).Inc()
		return nil, fmt.Errorf("update status: %w (from %s to %s)", err, from, in.Status)
	}

	now := s.now().UTC()
	update := ports.StatusUpdate{
		OrderID: order.ID,
		From:    from,
		To:      in.Status,
		Entry:   domain.StatusHistoryEntry{Status: in.Status, Timestamp: now, ActorID: actor.ID},
	}
	if in.Status == domain.StatusShipped {
		update.TrackingNumber = in.TrackingNumber
	}

	if err := s.orders.UpdateStatus(ctx, update); err != nil {
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			metrics.OrderTransitionRejectionsTotal.WithLabelValues("concurrent_update").Inc()
			s.logger.Warn().Str("order_id", order.ID).Str("from", string(from)).Str("to", string(in.Status)).Msg("status changed concurrently")
			return nil, err
		}
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to update order status")
		return nil, domain.Persistence("update order status", err)
	}

	order.Status = in.Status
	if update.TrackingNumber != "" {
		order.TrackingNumber = update.TrackingNumber
	}
	order.StatusHistory = append(order.StatusHistory, update.Entry)
	order.UpdatedAt = now

	metrics.OrderTransitionsTotal.WithLabelValues(string(from), string(in.Status)).Inc()
	s.logger.Info().
		Str("order_id", order.ID).
		Str("from", string(from)).
		Str("to", string(in.Status)).
		Str("actor", actor.ID).
		Msg("order status updated")

	s.emit(domain.OrderEvent{
		Type:       domain.OrderStatusChanged,
		OrderID:    order.ID,
		Reference:  order.Reference,
		StoreSlug:  order.StoreSlug,
		FromStatus: from,
		Status:     order.Status,
		ActorID:    actor.ID,
		Timestamp:  now,
	})
	return order, nil
}

// DeleteOrder hard-deletes an order in any status.
func (s *OrderService) DeleteOrder(ctx context.Context, actor *domain.User, orderID string) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Persistence("find order", err)
	}
	if !actor.CanManage(order.StoreSlug) {
		return domain.ErrForbidden
	}
	if err := s.orders.Delete(ctx, orderID); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to delete order")
		return domain.Persistence("delete order", err)
	}

	s.logger.Info().Str("order_id", orderID).Str("actor", actor.ID).Msg("order deleted")
	s.emit(domain.OrderEvent{
		Type:      domain.OrderDeleted,
		OrderID:   order.ID,
		Reference: order.Reference,
		StoreSlug: order.StoreSlug,
		Status:    order.Status,
		ActorID:   actor.ID,
		Timestamp: s.now().UTC(),
	})
	return nil
}

// SubscribeOrders streams sorted full snapshots of the store's orders to a
// manager of the store until ctx is cancelled.
func (s *OrderService) SubscribeOrders(ctx context.Context, actor *domain.User, storeSlug string) (<-chan []*domain.Order, error) {
	if !actor.CanManage(storeSlug) {
		return nil, domain.ErrForbidden
	}
	src, err := s.orders.Watch(ctx, storeSlug)
	if err != nil {
		return nil, domain.Persistence("watch orders", err)
	}

	out := make(chan []*domain.Order)
	go func() {
		defer close(out)
		gauge := metrics.ActiveSubscriptions.WithLabelValues("orders")
		gauge.Inc()
		defer gauge.Dec()

		for snapshot := range src {
			sortOrders(snapshot, s.now())
			select {
			case out <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *OrderService) emit(e domain.OrderEvent) {
	if s.events != nil {
		s.events.Enqueue(e)
	}
}

// sortOrders orders by creation time, newest first. A missing timestamp
// counts as now.
func sortOrders(orders []*domain.Order, now time.Time) {
	key := func(o *domain.Order) time.Time {
		if o.CreatedAt.IsZero() {
			return now
		}
		return o.CreatedAt
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return key(orders[i]).After(key(orders[j]))
	})
}
