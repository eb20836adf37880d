package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/quickorder/storefront/internal/api/middleware"
	"github.com/quickorder/storefront/internal/core/domain"
	"github.com/quickorder/storefront/internal/core/ports"
)

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withUser(c echo.Context, u *domain.User) {
	c.Set(middleware.ContextKeyUser, u)
	c.Set(middleware.ContextKeySession, &domain.Session{ID: "sess-" + u.ID})
}

func httpCode(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}

var (
	seller   = &domain.User{ID: "u-seller", Role: domain.RoleSeller, ManagedStoreID: "teja-shop"}
	customer = &domain.User{ID: "u-buyer", Role: domain.RoleCustomer}
)

// --- auth ---

type stubAuthService struct {
	signIn    ports.SignInInput
	register  ports.RegisterInput
	signedOut string
	err       error
}

func (s *stubAuthService) result() *ports.AuthResult {
	return &ports.AuthResult{
		Token:   "tok",
		Session: &domain.Session{ID: "sess-1"},
		User:    seller,
	}
}

func (s *stubAuthService) Register(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	s.register = in
	if s.err != nil {
		return nil, s.err
	}
	return s.result(), nil
}

func (s *stubAuthService) SignIn(_ context.Context, in ports.SignInInput) (*ports.AuthResult, error) {
	s.signIn = in
	if s.err != nil {
		return nil, s.err
	}
	return s.result(), nil
}

func (s *stubAuthService) SignOut(_ context.Context, sessionID string) error {
	s.signedOut = sessionID
	return s.err
}

func (s *stubAuthService) Authenticate(context.Context, string) (*domain.Session, *domain.User, error) {
	return nil, nil, domain.ErrUnauthenticated
}

// --- stores ---

type stubStoreService struct {
	settings domain.StoreSettings
	created  ports.CreateStoreInput
	stores   []*domain.Store
	err      error
}

func (s *stubStoreService) CreateStore(_ context.Context, _ *domain.User, in ports.CreateStoreInput) (*domain.Store, error) {
	s.created = in
	return &domain.Store{Slug: in.Slug, Name: in.Name}, s.err
}

func (s *stubStoreService) GetStore(_ context.Context, slug string) (*domain.Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Store{Slug: slug}, nil
}

func (s *stubStoreService) ListStores(context.Context) ([]*domain.Store, error) {
	return s.stores, s.err
}

func (s *stubStoreService) UpdateStoreSettings(_ context.Context, _ *domain.User, slug string, settings domain.StoreSettings) (*domain.Store, error) {
	s.settings = settings
	return &domain.Store{Slug: slug}, s.err
}

func (s *stubStoreService) DeleteStore(context.Context, *domain.User, string) error {
	return s.err
}

// --- catalog ---

type stubCatalogService struct {
	search   string
	input    ports.ProductInput
	snapshot []*domain.Product
}

func (s *stubCatalogService) ListProducts(_ context.Context, _ string, search string) ([]*domain.Product, error) {
	s.search = search
	return nil, nil
}

func (s *stubCatalogService) AddProduct(_ context.Context, _ *domain.User, storeSlug string, in ports.ProductInput) (*domain.Product, error) {
	s.input = in
	return &domain.Product{ID: "p-1", StoreSlug: storeSlug, Name: in.Name, Price: in.Price}, nil
}

func (s *stubCatalogService) UpdateProduct(_ context.Context, _ *domain.User, storeSlug, productID string, in ports.ProductInput) (*domain.Product, error) {
	s.input = in
	return &domain.Product{ID: productID, StoreSlug: storeSlug, Name: in.Name}, nil
}

func (s *stubCatalogService) DeleteProduct(context.Context, *domain.User, string, string) error {
	return nil
}

func (s *stubCatalogService) SubscribeProducts(context.Context, string) (<-chan []*domain.Product, error) {
	ch := make(chan []*domain.Product, 1)
	ch <- s.snapshot
	close(ch)
	return ch, nil
}

// --- orders ---

type stubOrderService struct {
	placed   ports.PlaceOrderInput
	update   ports.UpdateStatusInput
	order    *domain.Order
	board    *ports.OrderBoard
	replayed bool
	err      error
}

func (s *stubOrderService) PlaceOrder(_ context.Context, _ *domain.User, in ports.PlaceOrderInput) (*ports.PlaceOrderResult, error) {
	s.placed = in
	if s.err != nil {
		return nil, s.err
	}
	return &ports.PlaceOrderResult{
		Order:          &domain.Order{ID: "o-1", StoreSlug: in.StoreSlug, Status: domain.StatusPending},
		PaymentURL:     "upi://pay?pa=teja%40upi",
		AlreadyExisted: s.replayed,
	}, nil
}

func (s *stubOrderService) GetOrder(_ context.Context, _ *domain.User, orderID string) (*domain.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func (s *stubOrderService) PaymentURL(context.Context, *domain.Order) (string, error) {
	return "upi://pay?pa=teja%40upi", nil
}

func (s *stubOrderService) ListOrders(context.Context, *domain.User, string) (*ports.OrderBoard, error) {
	if s.board == nil {
		return &ports.OrderBoard{}, s.err
	}
	return s.board, s.err
}

func (s *stubOrderService) ListCustomerOrders(context.Context, *domain.User, string) ([]*domain.Order, error) {
	return nil, s.err
}

func (s *stubOrderService) UpdateStatus(_ context.Context, _ *domain.User, in ports.UpdateStatusInput) (*domain.Order, error) {
	s.update = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Order{ID: in.OrderID, Status: in.Status, TrackingNumber: in.TrackingNumber}, nil
}

func (s *stubOrderService) DeleteOrder(context.Context, *domain.User, string) error {
	return s.err
}

func (s *stubOrderService) SubscribeOrders(context.Context, *domain.User, string) (<-chan []*domain.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	ch := make(chan []*domain.Order)
	close(ch)
	return ch, nil
}

// --- navigation ---

type stubNavigationService struct {
	in ports.NavigationInput
}

func (s *stubNavigationService) Resolve(_ context.Context, in ports.NavigationInput) ports.NavigationResult {
	s.in = in
	return ports.NavigationResult{View: ports.ViewAdmin, Store: &domain.Store{Slug: in.Query.Get("store")}}
}

// --- health ---

type stubPinger struct {
	name string
	err  error
}

func (p stubPinger) Name() string               { return p.name }
func (p stubPinger) Ping(context.Context) error { return p.err }
