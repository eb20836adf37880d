package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quickorder/storefront/internal/core/domain"
	"github.com/quickorder/storefront/internal/core/ports"
	"github.com/quickorder/storefront/internal/pkg/metrics"
)

// RootAllowlist lists the super-user identities. Phones are compared as digits only.
type RootAllowlist struct {
	Emails []string
	Phones []string
}

// IdentityResolver classifies callers as root, seller or customer.
type IdentityResolver struct {
	stores ports.StoreRepository
	emails map[string]struct{}
	phones map[string]struct{}
	log    zerolog.Logger
}

func NewIdentityResolver(stores ports.StoreRepository, allow RootAllowlist, log zerolog.Logger) *IdentityResolver {
	r := &IdentityResolver{
		stores: stores,
		emails: make(map[string]struct{}, len(allow.Emails)),
		phones: make(map[string]struct{}, len(allow.Phones)),
		log:    log,
	}
	for _, e := range allow.Emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			r.emails[e] = struct{}{}
		}
	}
	for _, p := range allow.Phones {
		if p = domain.NormalizePhone(p); p != "" {
			r.phones[p] = struct{}{}
		}
	}
	return r
}

// IsRoot reports whether email or phone is on the root allowlist. Emails
// compare case-insensitively.
func (r *IdentityResolver) IsRoot(email, phone string) bool {
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		if _, ok := r.emails[email]; ok {
			return true
		}
	}
	if phone = domain.NormalizePhone(phone); phone != "" {
		if _, ok := r.phones[phone]; ok {
			return true
		}
	}
	return false
}

// ResolveRole checks the root allowlist first, then store ownership by email,
// then by phone. Emails are trimmed and lower-cased to match stored owner
// emails. Lookup failures are logged and count as "no store".
func (r *IdentityResolver) ResolveRole(ctx context.Context, email, phone string) ports.RoleResolution {
	email = strings.ToLower(strings.TrimSpace(email))
	phone = domain.NormalizePhone(phone)

	res := r.resolve(ctx, email, phone)
	metrics.RoleResolutionsTotal.WithLabelValues(string(res.Role)).Inc()
	return res
}

func (r *IdentityResolver) resolve(ctx context.Context, email, phone string) ports.RoleResolution {
	if r.IsRoot(email, phone) {
		return ports.RoleResolution{Role: domain.RoleRoot}
	}

	if email != "" {
		if store := r.lookup(ctx, "email", email, r.stores.FindByOwnerEmail); store != nil {
			return ports.RoleResolution{Role: domain.RoleSeller, StoreSlug: store.Slug}
		}
	}
	if phone != "" {
		if store := r.lookup(ctx, "phone", phone, r.stores.FindByOwnerPhone); store != nil {
			return ports.RoleResolution{Role: domain.RoleSeller, StoreSlug: store.Slug}
		}
	}
	return ports.RoleResolution{Role: domain.RoleCustomer}
}

func (r *IdentityResolver) lookup(
	ctx context.Context,
	by, value string,
	find func(context.Context, string) (*domain.Store, error),
) *domain.Store {
	store, err := find(ctx, value)
	if err == nil {
		return store
	}
	if !errors.Is(err, domain.ErrStoreNotFound) {
		// Fails open to the customer role.
		metrics.IdentityLookupFailuresTotal.Inc()
		r.log.Warn().Err(err).Str("by", by).Msg("store ownership lookup failed, treating caller as customer")
	}
	return nil
}

// BuildUser derives the ephemeral user for an authenticated identity.
func (r *IdentityResolver) BuildUser(ctx context.Context, id domain.Identity) *domain.User {
	res := r.ResolveRole(ctx, id.Email, id.Phone)

	name := id.DisplayName
	if name == "" {
		switch res.Role {
		case domain.RoleRoot:
			name = "Root Admin"
		case domain.RoleSeller:
			name = "Seller"
		default:
			name = "Customer"
		}
	}

	return &domain.User{
		ID:             id.ID,
		Name:           name,
		Email:          id.Email,
		Phone:          id.Phone,
		Role:           res.Role,
		ManagedStoreID: res.StoreSlug,
		Avatar:         id.Avatar,
	}
}
