package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quickorder/storefront/internal/core/domain"
	"github.com/quickorder/storefront/internal/core/ports"
)

// StoreQueryParam selects the tenant context.
const StoreQueryParam = "store"

// NavigationService picks the view for a query string and caller.
type NavigationService struct {
	stores ports.StoreRepository
	log    zerolog.Logger
}

func NewNavigationService(stores ports.StoreRepository, log zerolog.Logger) *NavigationService {
	return &NavigationService{stores: stores, log: log}
}

// Resolve is called on first load and again on every history change, so it
// depends only on the query string and the caller.
func (s *NavigationService) Resolve(ctx context.Context, in ports.NavigationInput) ports.NavigationResult {
	slug := in.Query.Get(StoreQueryParam)
	if slug == "" {
		if in.User.IsRoot() {
			return ports.NavigationResult{View: ports.ViewRootDashboard}
		}
		return ports.NavigationResult{View: ports.ViewLanding}
	}

	store, err := s.stores.FindBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, domain.ErrStoreNotFound) {
			s.log.Error().Err(err).Str("store", slug).Msg("failed to resolve store context")
		}
		return ports.NavigationResult{View: ports.ViewLanding}
	}

	if !in.WantAdmin {
		return ports.NavigationResult{View: ports.ViewCustomer, Store: store}
	}

	switch {
	case in.User == nil || in.User.Role == domain.RoleCustomer:
		return ports.NavigationResult{View: ports.ViewLoginRequired, Store: store, Message: "Admin Access Required"}
	case in.User.CanManage(store.Slug):
		return ports.NavigationResult{View: ports.ViewAdmin, Store: store}
	default:
		return ports.NavigationResult{
			View:    ports.ViewForbidden,
			Store:   store,
			Message: fmt.Sprintf("You are authorized to manage %q, not this store.", in.User.ManagedStoreID),
		}
	}
}
