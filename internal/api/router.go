package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/quickorder/storefront/internal/api/handler"
	"github.com/quickorder/storefront/internal/api/middleware"
	"github.com/quickorder/storefront/internal/core/domain"
	"github.com/quickorder/storefront/internal/core/ports"

	_ "github.com/quickorder/storefront/docs"
)

// Dependencies are the services and probes the router mounts.
type Dependencies struct {
	Auth       ports.AuthService
	Stores     ports.StoreService
	Catalog    ports.CatalogService
	Orders     ports.OrderService
	Navigation ports.NavigationService

	Probes         []handler.Pinger
	AllowedOrigins []string
	Logger         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	if len(deps.AllowedOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins: deps.AllowedOrigins,
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, handler.HeaderIdempotencyKey},
		}))
	}

	requireAuth := middleware.Auth(deps.Auth)
	optionalAuth := middleware.OptionalAuth(deps.Auth)
	managers := middleware.RBAC(domain.RoleRoot, domain.RoleSeller)
	rootOnly := middleware.RBAC(domain.RoleRoot)

	// --- Operational endpoints (no auth required) ---
	health := handler.NewHealthHandler(deps.Probes...)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")

	nav := handler.NewNavigationHandler(deps.Navigation)
	v1.GET("/navigate", nav.Resolve, optionalAuth)

	// --- Auth ---
	auth := handler.NewAuthHandler(deps.Auth)
	v1.POST("/auth/register", auth.Register)
	v1.POST("/auth/login", auth.Login)
	v1.POST("/auth/logout", auth.Logout, requireAuth)
	v1.GET("/auth/me", auth.Me, requireAuth)

	// --- Stores ---
	stores := handler.NewStoreHandler(deps.Stores)
	v1.GET("/stores", stores.List)
	v1.POST("/stores", stores.Create, requireAuth, rootOnly)
	v1.GET("/stores/:slug", stores.Get)
	v1.PATCH("/stores/:slug", stores.Update, requireAuth, managers)
	v1.DELETE("/stores/:slug", stores.Delete, requireAuth, rootOnly)

	// --- Catalog ---
	products := handler.NewProductHandler(deps.Catalog)
	v1.GET("/stores/:slug/products", products.List)
	v1.GET("/stores/:slug/products/stream", products.Stream)
	v1.POST("/stores/:slug/products", products.Create, requireAuth, managers)
	v1.PUT("/stores/:slug/products/:id", products.Update, requireAuth, managers)
	v1.DELETE("/stores/:slug/products/:id", products.Delete, requireAuth, managers)

	// --- Orders ---
	orders := handler.NewOrderHandler(deps.Orders)
	v1.POST("/stores/:slug/orders", orders.Place, requireAuth)
	v1.GET("/stores/:slug/orders", orders.List, requireAuth, managers)
	v1.GET("/stores/:slug/orders/mine", orders.Mine, requireAuth)
	v1.GET("/stores/:slug/orders/stream", orders.Stream, requireAuth, managers)
	v1.GET("/orders/:id", orders.Get, requireAuth)
	v1.PATCH("/orders/:id/status", orders.UpdateStatus, requireAuth, managers)
	v1.DELETE("/orders/:id", orders.Delete, requireAuth, managers)

	return e
}
