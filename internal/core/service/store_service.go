package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quickorder/storefront/internal/core/domain"
	"github.com/quickorder/storefront/internal/core/ports"
)

// StoreService manages the tenant directory.
type StoreService struct {
	repo   ports.StoreRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewStoreService(repo ports.StoreRepository, logger zerolog.Logger) *StoreService {
	return &StoreService{repo: repo, logger: logger, now: time.Now}
}

// CreateStore registers a tenant. Only root operators may call it. A second
// create with the same slug overwrites the first.
func (s *StoreService) CreateStore(ctx context.Context, actor *domain.User, in ports.CreateStoreInput) (*domain.Store, error) {
	if !actor.IsRoot() {
		return nil, domain.ErrForbidden
	}
	slug, err := domain.NormalizeSlug(in.Slug)
	if err != nil {
		return nil, err
	}

	store := &domain.Store{
		Slug:         slug,
		Name:         strings.TrimSpace(in.Name),
		OwnerEmail:   strings.ToLower(strings.TrimSpace(in.OwnerEmail)),
		OwnerPhone:   domain.NormalizePhone(in.OwnerPhone),
		VPA:          strings.TrimSpace(in.VPA),
		MerchantName: strings.TrimSpace(in.MerchantName),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Upsert(ctx, store); err != nil {
		s.logger.Error().Err(err).Str("store", slug).Msg("failed to create store")
		return nil, domain.Persistence("create store", err)
	}

	s.logger.Info().Str("store", slug).Str("actor", actor.ID).Msg("store created")
	return store, nil
}

func (s *StoreService) GetStore(ctx context.Context, slug string) (*domain.Store, error) {
	store, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, domain.Persistence("get store", err)
	}
	return store, nil
}

// ListStores returns all stores, newest first.
func (s *StoreService) ListStores(ctx context.Context) ([]*domain.Store, error) {
	stores, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list stores")
		return nil, domain.Persistence("list stores", err)
	}
	sort.SliceStable(stores, func(i, j int) bool {
		return stores[i].CreatedAt.After(stores[j].CreatedAt)
	})
	return stores, nil
}

// UpdateStoreSettings lets the owning seller (or root) change store settings.
func (s *StoreService) UpdateStoreSettings(ctx context.Context, actor *domain.User, slug string, settings domain.StoreSettings) (*domain.Store, error) {
	if !actor.CanManage(slug) {
		return nil, domain.ErrForbidden
	}
	if settings.OwnerEmail != nil {
		email := strings.ToLower(strings.TrimSpace(*settings.OwnerEmail))
		settings.OwnerEmail = &email
	}
	if settings.OwnerPhone != nil {
		phone := domain.NormalizePhone(*settings.OwnerPhone)
		settings.OwnerPhone = &phone
	}

	store, err := s.repo.UpdateSettings(ctx, slug, settings)
	if err != nil {
		s.logger.Error().Err(err).Str("store", slug).Msg("failed to update store settings")
		return nil, domain.Persistence("update store settings", err)
	}
	s.logger.Info().Str("store", slug).Str("actor", actor.ID).Msg("store settings updated")
	return store, nil
}

// DeleteStore removes the store record only. Its products and orders are
// left in place.
func (s *StoreService) DeleteStore(ctx context.Context, actor *domain.User, slug string) error {
	if !actor.IsRoot() {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, slug); err != nil {
		s.logger.Error().Err(err).Str("store", slug).Msg("failed to delete store")
		return domain.Persistence("delete store", err)
	}
	s.logger.Info().Str("store", slug).Str("actor", actor.ID).Msg("store deleted")
	return nil
}
