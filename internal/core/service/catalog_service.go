package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quickorder/storefront/internal/core/domain"
	"github.com/quickorder/storefront/internal/core/ports"
	"github.com/quickorder/storefront/internal/pkg/metrics"
)

// CatalogService manages per-store products.
type CatalogService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewCatalogService(repo ports.ProductRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger, now: time.Now}
}

// ListProducts returns the store's products newest first, optionally filtered
// by a case-insensitive match on name or description.
func (s *CatalogService) ListProducts(ctx context.Context, storeSlug, search string) ([]*domain.Product, error) {
	products, err := s.repo.ListByStore(ctx, storeSlug)
	if err != nil {
		return nil, domain.Persistence("list products", err)
	}
	sortProducts(products)
	return filterProducts(products, search), nil
}

func (s *CatalogService) AddProduct(ctx context.Context, actor *domain.User, storeSlug string, in ports.ProductInput) (*domain.Product, error) {
	if !actor.CanManage(storeSlug) {
		return nil, domain.ErrForbidden
	}

	now := s.now().UTC()
	p := &domain.Product{
		ID:          uuid.NewString(),
		StoreSlug:   storeSlug,
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		Unit:        in.Unit,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		SortKey:     now.UnixMilli(),
		CreatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Str("store", storeSlug).Msg("failed to add product")
		return nil, domain.Persistence("add product", err)
	}

	s.logger.Info().Str("store", storeSlug).Str("product_id", p.ID).Msg("product added")
	return p, nil
}

// UpdateProduct replaces the editable fields. Orders already placed keep
// their own snapshot of the product.
func (s *CatalogService) UpdateProduct(ctx context.Context, actor *domain.User, storeSlug, productID string, in ports.ProductInput) (*domain.Product, error) {
	p, err := s.ownedProduct(ctx, actor, storeSlug, productID)
	if err != nil {
		return nil, err
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Price = in.Price
	p.Unit = in.Unit
	p.Description = in.Description
	p.ImageURL = in.ImageURL
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to update product")
		return nil, domain.Persistence("update product", err)
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, actor *domain.User, storeSlug, productID string) error {
	if _, err := s.ownedProduct(ctx, actor, storeSlug, productID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to delete product")
		return domain.Persistence("delete product", err)
	}
	s.logger.Info().Str("store", storeSlug).Str("product_id", productID).Msg("product deleted")
	return nil
}

// SubscribeProducts streams sorted full snapshots of the store's catalog
// until ctx is cancelled.
func (s *CatalogService) SubscribeProducts(ctx context.Context, storeSlug string) (<-chan []*domain.Product, error) {
	src, err := s.repo.Watch(ctx, storeSlug)
	if err != nil {
		return nil, domain.Persistence("watch products", err)
	}

	out := make(chan []*domain.Product)
	go func() {
		defer close(out)
		gauge := metrics.ActiveSubscriptions.WithLabelValues("products")
		gauge.Inc()
		defer gauge.Dec()

		for snapshot := range src {
			sortProducts(snapshot)
			select {
			case out <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *CatalogService) ownedProduct(ctx context.Context, actor *domain.User, storeSlug, productID string) (*domain.Product, error) {
	if !actor.CanManage(storeSlug) {
		return nil, domain.ErrForbidden
	}
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, domain.Persistence("find product", err)
	}
	if p.StoreSlug != storeSlug {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

// sortProducts orders by creation time, newest first.
func sortProducts(products []*domain.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].SortKey > products[j].SortKey
	})
}

func filterProducts(products []*domain.Product, search string) []*domain.Product {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return products
	}
	out := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(strings.ToLower(p.Description), term) {
			out = append(out, p)
		}
	}
	return out
}
