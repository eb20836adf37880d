package ports

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/quickorder/storefront/internal/core/domain"
)

// RoleResolution is the outcome of classifying an identity.
type RoleResolution struct {
	Role      domain.Role
	StoreSlug string
}

// IdentityResolver is the single place where roles are derived.
type IdentityResolver interface {
	ResolveRole(ctx context.Context, email, phone string) RoleResolution
	BuildUser(ctx context.Context, identity domain.Identity) *domain.User
}

// --- Store directory ---

type CreateStoreInput struct {
	Slug         string
	Name         string
	OwnerEmail   string
	OwnerPhone   string
	VPA          string
	MerchantName string
}

type StoreService interface {
	CreateStore(ctx context.Context, actor *domain.User, in CreateStoreInput) (*domain.Store, error)
	GetStore(ctx context.Context, slug string) (*domain.Store, error)
	ListStores(ctx context.Context) ([]*domain.Store, error)
	UpdateStoreSettings(ctx context.Context, actor *domain.User, slug string, settings domain.StoreSettings) (*domain.Store, error)
	DeleteStore(ctx context.Context, actor *domain.User, slug string) error
}

// --- Catalog ---

type ProductInput struct {
	Name        string
	Price       decimal.Decimal
	Unit        string
	Description string
	ImageURL    string
}

type CatalogService interface {
	ListProducts(ctx context.Context, storeSlug, search string) ([]*domain.Product, error)
	AddProduct(ctx context.Context, actor *domain.User, storeSlug string, in ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, actor *domain.User, storeSlug, productID string, in ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, actor *domain.User, storeSlug, productID string) error
	SubscribeProducts(ctx context.Context, storeSlug string) (<-chan []*domain.Product, error)
}

// --- Order ledger ---

type OrderItemInput struct {
	ProductID string
	Quantity  int
}

type PlaceOrderInput struct {
	StoreSlug      string
	Customer       domain.Customer
	Items          []OrderItemInput
	IdempotencyKey string
}

// PlaceOrderResult carries the stored order and its payment link.
type PlaceOrderResult struct {
	Order      *domain.Order
	PaymentURL string
	// AlreadyExisted is true when the Idempotency-Key matched an existing order.
	AlreadyExisted bool
}

type UpdateStatusInput struct {
	OrderID        string
	Status         domain.OrderStatus
	TrackingNumber string
}

// OrderBoard splits a store's orders the way the seller dashboard shows them.
type OrderBoard struct {
	Active    []*domain.Order
	Completed []*domain.Order
}

type OrderService interface {
	PlaceOrder(ctx context.Context, actor *domain.User, in PlaceOrderInput) (*PlaceOrderResult, error)
	GetOrder(ctx context.Context, actor *domain.User, orderID string) (*domain.Order, error)
	PaymentURL(ctx context.Context, order *domain.Order) (string, error)
	ListOrders(ctx context.Context, actor *domain.User, storeSlug string) (*OrderBoard, error)
	ListCustomerOrders(ctx context.Context, actor *domain.User, storeSlug string) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, actor *domain.User, in UpdateStatusInput) (*domain.Order, error)
	DeleteOrder(ctx context.Context, actor *domain.User, orderID string) error
	SubscribeOrders(ctx context.Context, actor *domain.User, storeSlug string) (<-chan []*domain.Order, error)
}

// --- Auth ---

// TargetRole is the access level a sign-in asks for.
type TargetRole string

const (
	TargetAdmin    TargetRole = "admin"
	TargetCustomer TargetRole = "customer"
)

type SignInInput struct {
	Email      string
	Phone      string
	Password   string
	TargetRole TargetRole
	Origin     string
}

type RegisterInput struct {
	Email    string
	Phone    string
	Password string
	Name     string
	Origin   string
}

// AuthResult is returned after a session has been opened.
type AuthResult struct {
	Token   string
	Session *domain.Session
	User    *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	SignIn(ctx context.Context, in SignInInput) (*AuthResult, error)
	SignOut(ctx context.Context, sessionID string) error
	Authenticate(ctx context.Context, token string) (*domain.Session, *domain.User, error)
}

// --- Navigation ---

// View names the screen the client should render.
type View string

const (
	ViewLanding       View = "landing"
	ViewRootDashboard View = "root-dashboard"
	ViewCustomer      View = "customer"
	ViewAdmin         View = "admin"
	ViewLoginRequired View = "login-required"
	ViewForbidden     View = "forbidden"
)

type NavigationInput struct {
	Query url.Values
	User  *domain.User
	// WantAdmin is set when the caller asks for the admin dashboard.
	WantAdmin bool
}

type NavigationResult struct {
	View    View
	Store   *domain.Store
	Message string
}

type NavigationService interface {
	Resolve(ctx context.Context, in NavigationInput) NavigationResult
}
