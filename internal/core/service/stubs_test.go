package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quickorder/storefront/internal/core/domain"
	"github.com/quickorder/storefront/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

var errDBDown = errors.New("db unavailable")

type stubStoreRepo struct {
	mu        sync.Mutex
	bySlug    map[string]*domain.Store
	findErr   error // if set, owner lookups return this error
	writeErr  error // if set, writes return this error
	lookupLog []string
}

func newStubStoreRepo(stores ...*domain.Store) *stubStoreRepo {
	r := &stubStoreRepo{bySlug: make(map[string]*domain.Store)}
	for _, s := range stores {
		clone := *s
		r.bySlug[s.Slug] = &clone
	}
	return r
}

func (r *stubStoreRepo) Upsert(_ context.Context, s *domain.Store) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *s
	r.bySlug[s.Slug] = &clone
	return nil
}

func (r *stubStoreRepo) FindBySlug(_ context.Context, slug string) (*domain.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.bySlug[slug]
	if !ok {
		return nil, domain.ErrStoreNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *stubStoreRepo) List(_ context.Context) ([]*domain.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Store, 0, len(r.bySlug))
	for _, s := range r.bySlug {
		clone := *s
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubStoreRepo) UpdateSettings(_ context.Context, slug string, st domain.StoreSettings) (*domain.Store, error) {
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.bySlug[slug]
	if !ok {
		return nil, domain.ErrStoreNotFound
	}
	if st.Name != nil {
		s.Name = *st.Name
	}
	if st.OwnerEmail != nil {
		s.OwnerEmail = *st.OwnerEmail
	}
	if st.OwnerPhone != nil {
		s.OwnerPhone = *st.OwnerPhone
	}
	if st.VPA != nil {
		s.VPA = *st.VPA
	}
	if st.MerchantName != nil {
		s.MerchantName = *st.MerchantName
	}
	clone := *s
	return &clone, nil
}

func (r *stubStoreRepo) Delete(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySlug[slug]; !ok {
		return domain.ErrStoreNotFound
	}
	delete(r.bySlug, slug)
	return nil
}

func (r *stubStoreRepo) FindByOwnerEmail(_ context.Context, email string) (*domain.Store, error) {
	return r.findOwner("email", func(s *domain.Store) bool { return s.OwnerEmail == email })
}

func (r *stubStoreRepo) FindByOwnerPhone(_ context.Context, phone string) (*domain.Store, error) {
	return r.findOwner("phone", func(s *domain.Store) bool { return s.OwnerPhone == phone })
}

func (r *stubStoreRepo) findOwner(by string, match func(*domain.Store) bool) (*domain.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookupLog = append(r.lookupLog, by)
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, s := range r.bySlug {
		if match(s) {
			clone := *s
			return &clone, nil
		}
	}
	return nil, domain.ErrStoreNotFound
}

type stubProductRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.Product
	writeErr error
	watch    chan []*domain.Product
}

func newStubProductRepo(products ...*domain.Product) *stubProductRepo {
	r := &stubProductRepo{byID: make(map[string]*domain.Product)}
	for _, p := range products {
		clone := *p
		r.byID[p.ID] = &clone
	}
	return r
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) ListByStore(_ context.Context, slug string) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Product
	for _, p := range r.byID {
		if p.StoreSlug == slug {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *domain.Product) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubProductRepo) Watch(_ context.Context, _ string) (<-chan []*domain.Product, error) {
	if r.watch == nil {
		return nil, errDBDown
	}
	return r.watch, nil
}

type stubOrderRepo struct {
	mu            sync.Mutex
	byID          map[string]*domain.Order
	byIdempotency map[string]string
	createErr     error
	// beforeUpdate runs inside UpdateStatus before the compare step.
	beforeUpdate func(o *domain.Order)
	updates      int
	watch        chan []*domain.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		byID:          make(map[string]*domain.Order),
		byIdempotency: make(map[string]string),
	}
}

func cloneOrder(o *domain.Order) *domain.Order {
	clone := *o
	clone.Items = append([]domain.LineItem(nil), o.Items...)
	clone.StatusHistory = append([]domain.StatusHistoryEntry(nil), o.StatusHistory...)
	return &clone
}

func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[o.ID] = cloneOrder(o)
	if o.IdempotencyKey != "" {
		r.byIdempotency[o.IdempotencyKey] = o.ID
	}
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *stubOrderRepo) FindByIdempotencyKey(_ context.Context, key string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byIdempotency[key]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(r.byID[id]), nil
}

func (r *stubOrderRepo) ListByStore(_ context.Context, slug string) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.byID {
		if o.StoreSlug == slug {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

// UpdateStatus mirrors the conditional update of the real repository.
func (r *stubOrderRepo) UpdateStatus(_ context.Context, u ports.StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[u.OrderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if r.beforeUpdate != nil {
		r.beforeUpdate(o)
	}
	if o.Status != u.From {
		return domain.ErrConcurrentUpdate
	}
	r.updates++
	o.Status = u.To
	if u.TrackingNumber != "" {
		o.TrackingNumber = u.TrackingNumber
	}
	o.StatusHistory = append(o.StatusHistory, u.Entry)
	o.UpdatedAt = u.Entry.Timestamp
	return nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubOrderRepo) Watch(_ context.Context, _ string) (<-chan []*domain.Order, error) {
	if r.watch == nil {
		return nil, errDBDown
	}
	return r.watch, nil
}

type stubEventSink struct {
	mu     sync.Mutex
	events []domain.OrderEvent
}

func (s *stubEventSink) Enqueue(e domain.OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *stubEventSink) types() []domain.OrderEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.OrderEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

type stubIdempotency struct {
	mu   sync.Mutex
	keys map[string]string
	err  error
}

func (s *stubIdempotency) Lookup(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.keys[key], nil
}

func (s *stubIdempotency) Reserve(_ context.Context, key, orderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if _, taken := s.keys[key]; taken {
		return false, nil
	}
	s.keys[key] = orderID
	return true, nil
}

func (s *stubIdempotency) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	delete(s.keys, key)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func rootUser() *domain.User {
	return &domain.User{ID: "root-1", Role: domain.RoleRoot}
}

func sellerOf(slug string) *domain.User {
	return &domain.User{ID: "seller-" + slug, Role: domain.RoleSeller, ManagedStoreID: slug}
}

func customer(id string) *domain.User {
	return &domain.User{ID: id, Role: domain.RoleCustomer}
}

func strPtr(s string) *string { return &s }
