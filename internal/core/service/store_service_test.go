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

func newStoreSvc(repo *stubStoreRepo) *StoreService {
	svc := NewStoreService(repo, discardLogger)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestStoreService_Create_NormalizesSlug(t *testing.T) {
	repo := newStubStoreRepo()
	svc := newStoreSvc(repo)

	store, err := svc.CreateStore(context.Background(), rootUser(), ports.CreateStoreInput{
		Slug:       "Teja Store!",
		Name:       "Teja Store",
		OwnerPhone: "+91 98765 43210",
		VPA:        "teja@upi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Slug != "tejastore" {
		t.Errorf("expected slug %q, got %q", "tejastore", store.Slug)
	}
	if store.OwnerPhone != "919876543210" {
		t.Errorf("expected digits-only phone, got %q", store.OwnerPhone)
	}
	if !store.CreatedAt.Equal(fixedNow) {
		t.Errorf("expected CreatedAt %v, got %v", fixedNow, store.CreatedAt)
	}
	if _, ok := repo.bySlug["tejastore"]; !ok {
		t.Error("store was not persisted under the normalized slug")
	}
}

func TestStoreService_Create_RejectsEmptySlug(t *testing.T) {
	svc := newStoreSvc(newStubStoreRepo())

	_, err := svc.CreateStore(context.Background(), rootUser(), ports.CreateStoreInput{Slug: "!!!", Name: "x"})
	if !errors.Is(err, domain.ErrInvalidSlug) {
		t.Fatalf("expected ErrInvalidSlug, got %v", err)
	}
}

func TestStoreService_Create_RootOnly(t *testing.T) {
	svc := newStoreSvc(newStubStoreRepo())

	for _, actor := range []*domain.User{nil, sellerOf("teja"), customer("c1")} {
		_, err := svc.CreateStore(context.Background(), actor, ports.CreateStoreInput{Slug: "teja"})
		if !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("actor %+v: expected ErrForbidden, got %v", actor, err)
		}
	}
}

func TestStoreService_Create_DuplicateSlugOverwrites(t *testing.T) {
	repo := newStubStoreRepo()
	svc := newStoreSvc(repo)

	_, _ = svc.CreateStore(context.Background(), rootUser(), ports.CreateStoreInput{Slug: "teja", Name: "First"})
	_, err := svc.CreateStore(context.Background(), rootUser(), ports.CreateStoreInput{Slug: "teja", Name: "Second"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.bySlug) != 1 || repo.bySlug["teja"].Name != "Second" {
		t.Errorf("expected a single overwritten store, got %+v", repo.bySlug)
	}
}

func TestStoreService_Create_RepoErrorIsPersistence(t *testing.T) {
	repo := newStubStoreRepo()
	repo.writeErr = errDBDown
	svc := newStoreSvc(repo)

	_, err := svc.CreateStore(context.Background(), rootUser(), ports.CreateStoreInput{Slug: "teja"})
	var pe *domain.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}

func TestStoreService_List_NewestFirst(t *testing.T) {
	repo := newStubStoreRepo(
		&domain.Store{Slug: "old", CreatedAt: fixedNow.Add(-48 * time.Hour)},
		&domain.Store{Slug: "new", CreatedAt: fixedNow},
		&domain.Store{Slug: "mid", CreatedAt: fixedNow.Add(-time.Hour)},
	)
	svc := newStoreSvc(repo)

	stores, err := svc.ListStores(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := []string{stores[0].Slug, stores[1].Slug, stores[2].Slug}
	want := []string{"new", "mid", "old"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestStoreService_Get_NotFound(t *testing.T) {
	svc := newStoreSvc(newStubStoreRepo())

	_, err := svc.GetStore(context.Background(), "missing")
	if !errors.Is(err, domain.ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got %v", err)
	}
}

func TestStoreService_UpdateSettings_OwnerOnly(t *testing.T) {
	repo := newStubStoreRepo(&domain.Store{Slug: "teja", VPA: "old@upi"})
	svc := newStoreSvc(repo)

	_, err := svc.UpdateStoreSettings(context.Background(), sellerOf("other"), "teja", domain.StoreSettings{VPA: strPtr("evil@upi")})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for foreign seller, got %v", err)
	}

	store, err := svc.UpdateStoreSettings(context.Background(), sellerOf("teja"), "teja", domain.StoreSettings{
		VPA:        strPtr("new@upi"),
		OwnerPhone: strPtr("98765 43210"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.VPA != "new@upi" {
		t.Errorf("expected VPA updated, got %q", store.VPA)
	}
	if store.OwnerPhone != "9876543210" {
		t.Errorf("expected normalized phone, got %q", store.OwnerPhone)
	}
}

func TestStoreService_Delete_RootOnly(t *testing.T) {
	repo := newStubStoreRepo(&domain.Store{Slug: "teja"})
	svc := newStoreSvc(repo)

	if err := svc.DeleteStore(context.Background(), sellerOf("teja"), "teja"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteStore(context.Background(), rootUser(), "teja"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.bySlug["teja"]; ok {
		t.Error("store should have been removed")
	}
}

func TestStoreService_Delete_LeavesProductsAndOrders(t *testing.T) {
	stores := newStubStoreRepo(&domain.Store{Slug: "teja"})
	products := newStubProductRepo(&domain.Product{ID: "p1", StoreSlug: "teja", Name: "Rice", Price: decimal.NewFromInt(50)})
	orders := newStubOrderRepo()
	_ = orders.Create(context.Background(), &domain.Order{ID: "o1", StoreSlug: "teja", Status: domain.StatusPending})

	svc := newStoreSvc(stores)
	if err := svc.DeleteStore(context.Background(), rootUser(), "teja"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	left, _ := products.ListByStore(context.Background(), "teja")
	if len(left) != 1 {
		t.Errorf("expected products to survive store deletion, got %d", len(left))
	}
	if _, err := orders.FindByID(context.Background(), "o1"); err != nil {
		t.Errorf("expected orders to survive store deletion, got %v", err)
	}
}
