package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tradepost/backend/internal/models"
	"github.com/tradepost/backend/internal/repositories"
)

type countingStore struct {
	products map[string]models.Product
	finds    int
}

func newCountingStore() *countingStore {
	return &countingStore{products: make(map[string]models.Product)}
}

func (s *countingStore) Create(_ context.Context, product models.Product) error {
	s.products[product.ID] = product
	return nil
}

func (s *countingStore) FindByID(_ context.Context, id string) (models.Product, error) {
	s.finds++
	product, ok := s.products[id]
	if !ok {
		return models.Product{}, repositories.ErrNotFound
	}
	return product, nil
}

func (s *countingStore) Delete(_ context.Context, id string) error {
	if _, ok := s.products[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func TestCachingStoreServesRepeatReadsFromCache(t *testing.T) {
	base := newCountingStore()
	base.products["p1"] = models.Product{ID: "p1", Title: "lamp"}
	store := NewCachingStore(base, time.Minute)

	for i := 0; i < 3; i++ {
		product, err := store.FindByID(context.Background(), "p1")
		if err != nil {
			t.Fatalf("find %d: %v", i, err)
		}
		if product.Title != "lamp" {
			t.Fatalf("unexpected product: %+v", product)
		}
	}

	if base.finds != 1 {
		t.Fatalf("expected a single backing lookup, got %d", base.finds)
	}
}

func TestCachingStoreCreatePrimesCache(t *testing.T) {
	base := newCountingStore()
	store := NewCachingStore(base, time.Minute)

	if err := store.Create(context.Background(), models.Product{ID: "p1", Title: "lamp"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.FindByID(context.Background(), "p1"); err != nil {
		t.Fatalf("find: %v", err)
	}
	if base.finds != 0 {
		t.Fatalf("expected create to prime the cache, got %d backing lookups", base.finds)
	}
}

func TestCachingStoreDeleteEvicts(t *testing.T) {
	base := newCountingStore()
	store := NewCachingStore(base, time.Minute)

	if err := store.Create(context.Background(), models.Product{ID: "p1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Delete(context.Background(), "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := store.FindByID(context.Background(), "p1"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCachingStoreExpiry(t *testing.T) {
	base := newCountingStore()
	base.products["p1"] = models.Product{ID: "p1"}
	store := NewCachingStore(base, time.Nanosecond)

	if _, err := store.FindByID(context.Background(), "p1"); err != nil {
		t.Fatalf("first find: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, err := store.FindByID(context.Background(), "p1"); err != nil {
		t.Fatalf("second find: %v", err)
	}

	if base.finds != 2 {
		t.Fatalf("expected expired entry to hit the backing store again, got %d lookups", base.finds)
	}
}
