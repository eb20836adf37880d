package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quickorder/storefront/internal/core/domain"
	"github.com/quickorder/storefront/internal/core/ports"
)

func newCatalogSvc(repo *stubProductRepo) *CatalogService {
	svc := NewCatalogService(repo, discardLogger)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func product(id, slug, name string, sortKey int64) *domain.Product {
	return &domain.Product{ID: id, StoreSlug: slug, Name: name, Price: decimal.NewFromInt(10), SortKey: sortKey}
}

func TestCatalogService_Add_Success(t *testing.T) {
	repo := newStubProductRepo()
	svc := newCatalogSvc(repo)

	p, err := svc.AddProduct(context.Background(), sellerOf("teja"), "teja", ports.ProductInput{
		Name:  "  Basmati Rice ",
		Price: decimal.RequireFromString("120.50"),
		Unit:  "kg",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == "" {
		t.Error("product id must be generated")
	}
	if p.Name != "Basmati Rice" {
		t.Errorf("expected trimmed name, got %q", p.Name)
	}
	if p.SortKey != fixedNow.UnixMilli() {
		t.Errorf("expected sort key %d, got %d", fixedNow.UnixMilli(), p.SortKey)
	}
	if p.StoreSlug != "teja" {
		t.Errorf("expected store teja, got %q", p.StoreSlug)
	}
	if _, ok := repo.byID[p.ID]; !ok {
		t.Error("product was not persisted")
	}
}

func TestCatalogService_Add_Validation(t *testing.T) {
	svc := newCatalogSvc(newStubProductRepo())

	cases := []ports.ProductInput{
		{Name: "", Price: decimal.NewFromInt(1)},
		{Name: "Milk", Price: decimal.NewFromInt(-1)},
	}
	for _, in := range cases {
		if _, err := svc.AddProduct(context.Background(), sellerOf("teja"), "teja", in); !errors.Is(err, domain.ErrInvalidProduct) {
			t.Errorf("input %+v: expected ErrInvalidProduct, got %v", in, err)
		}
	}
}

func TestCatalogService_Add_ForeignSellerForbidden(t *testing.T) {
	svc := newCatalogSvc(newStubProductRepo())

	_, err := svc.AddProduct(context.Background(), sellerOf("other"), "teja", ports.ProductInput{Name: "Milk"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCatalogService_List_NewestFirstAndSearch(t *testing.T) {
	repo := newStubProductRepo(
		product("a", "teja", "Toor Dal", 100),
		product("b", "teja", "Basmati Rice", 300),
		product("c", "teja", "Brown Rice", 200),
		product("d", "other", "Rice Flour", 400),
	)
	repo.byID["a"].Description = "Split pigeon peas, pairs with rice"
	svc := newCatalogSvc(repo)

	all, err := svc.ListProducts(context.Background(), "teja", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 || all[0].ID != "b" || all[1].ID != "c" || all[2].ID != "a" {
		t.Fatalf("unexpected order: %v", ids(all))
	}

	hits, _ := svc.ListProducts(context.Background(), "teja", "RICE")
	if len(hits) != 3 {
		t.Errorf("expected name and description matches, got %v", ids(hits))
	}

	hits, _ = svc.ListProducts(context.Background(), "teja", "brown")
	if len(hits) != 1 || hits[0].ID != "c" {
		t.Errorf("expected only brown rice, got %v", ids(hits))
	}
}

func TestCatalogService_Update_ProductOfAnotherStore(t *testing.T) {
	repo := newStubProductRepo(product("p1", "other", "Milk", 1))
	svc := newCatalogSvc(repo)

	_, err := svc.UpdateProduct(context.Background(), sellerOf("teja"), "teja", "p1", ports.ProductInput{Name: "Hacked"})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if repo.byID["p1"].Name != "Milk" {
		t.Error("foreign product must not be modified")
	}
}

func TestCatalogService_Update_KeepsSortKey(t *testing.T) {
	repo := newStubProductRepo(product("p1", "teja", "Milk", 42))
	svc := newCatalogSvc(repo)

	p, err := svc.UpdateProduct(context.Background(), sellerOf("teja"), "teja", "p1", ports.ProductInput{
		Name:  "Toned Milk",
		Price: decimal.NewFromInt(28),
		Unit:  "litre",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SortKey != 42 {
		t.Errorf("sort key must not change on update, got %d", p.SortKey)
	}
	if repo.byID["p1"].Name != "Toned Milk" {
		t.Error("update not persisted")
	}
}

func TestCatalogService_Delete(t *testing.T) {
	repo := newStubProductRepo(product("p1", "teja", "Milk", 1))
	svc := newCatalogSvc(repo)

	if err := svc.DeleteProduct(context.Background(), customer("c1"), "teja", "p1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for customer, got %v", err)
	}
	if err := svc.DeleteProduct(context.Background(), rootUser(), "teja", "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.byID) != 0 {
		t.Error("product should be gone")
	}
}

func TestCatalogService_Subscribe_SortsSnapshots(t *testing.T) {
	repo := newStubProductRepo()
	repo.watch = make(chan []*domain.Product, 1)
	svc := newCatalogSvc(repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, err := svc.SubscribeProducts(ctx, "teja")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.watch <- []*domain.Product{product("old", "teja", "A", 1), product("new", "teja", "B", 2)}

	select {
	case snap := <-out:
		if len(snap) != 2 || snap[0].ID != "new" {
			t.Errorf("expected newest first, got %v", ids(snap))
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot received")
	}

	close(repo.watch)
	select {
	case _, ok := <-out:
		if ok {
			t.Error("expected subscription to close with its source")
		}
	case <-time.After(time.Second):
		t.Fatal("subscription did not close")
	}
}

func TestCatalogService_Subscribe_WatchError(t *testing.T) {
	svc := newCatalogSvc(newStubProductRepo())

	_, err := svc.SubscribeProducts(context.Background(), "teja")
	var pe *domain.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}

func ids(products []*domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}
