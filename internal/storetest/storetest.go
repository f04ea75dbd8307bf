// Package storetest holds the behaviour every item.Repository implementation must share.
package storetest

import (
	"context"
	"errors"
	"items/app/item"
	"items/domain"
	"sync"
	"testing"
)

// Factory returns a fresh, empty repository. The suite closes it.
type Factory func(t *testing.T) item.Repository

func Run(t *testing.T, newRepository Factory) {
	t.Run("CreateThenGet", func(t *testing.T) { testCreateThenGet(t, newRepository(t)) })
	t.Run("ListEmpty", func(t *testing.T) { testListEmpty(t, newRepository(t)) })
	t.Run("ListInsertionOrder", func(t *testing.T) { testListInsertionOrder(t, newRepository(t)) })
	t.Run("UnknownID", func(t *testing.T) { testUnknownID(t, newRepository(t)) })
	t.Run("UpdateReplacesFields", func(t *testing.T) { testUpdateReplacesFields(t, newRepository(t)) })
	t.Run("DeleteRemoves", func(t *testing.T) { testDeleteRemoves(t, newRepository(t)) })
	t.Run("IDsNotReused", func(t *testing.T) { testIDsNotReused(t, newRepository(t)) })
	t.Run("ConcurrentCreates", func(t *testing.T) { testConcurrentCreates(t, newRepository(t)) })
}

func testCreateThenGet(t *testing.T, repo item.Repository) {
	defer repo.Close()
	ctx := context.Background()

	created, err := repo.CreateItem(ctx, domain.Item{Name: "Widget", Price: 9.99})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id, got 0")
	}

	want := domain.Item{ID: created.ID, Name: "Widget", Description: "", Price: 9.99}
	if created != want {
		t.Fatalf("expected %+v, got %+v", want, created)
	}

	got, err := repo.GetItem(ctx, created.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func testListEmpty(t *testing.T, repo item.Repository) {
	defer repo.Close()

	items, err := repo.ListItems(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", items)
	}
}

func testListInsertionOrder(t *testing.T, repo item.Repository) {
	defer repo.Close()
	ctx := context.Background()

	names := []string{"a", "b", "c"}
	for _, name := range names {
		if _, err := repo.CreateItem(ctx, domain.Item{Name: name, Price: 1}); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}

	items, err := repo.ListItems(ctx)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(items) != len(names) {
		t.Fatalf("expected %d items, got %d", len(names), len(items))
	}
	for i, name := range names {
		if items[i].Name != name {
			t.Fatalf("expected %q at position %d, got %q", name, i, items[i].Name)
		}
	}
}

func testUnknownID(t *testing.T, repo item.Repository) {
	defer repo.Close()
	ctx := context.Background()

	if _, err := repo.GetItem(ctx, 42); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("GetItem: expected ErrItemNotFound, got %v", err)
	}
	if _, err := repo.UpdateItem(ctx, domain.Item{ID: 42, Name: "x"}); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("UpdateItem: expected ErrItemNotFound, got %v", err)
	}
	if err := repo.DeleteItem(ctx, 42); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("DeleteItem: expected ErrItemNotFound, got %v", err)
	}
}

func testUpdateReplacesFields(t *testing.T, repo item.Repository) {
	defer repo.Close()
	ctx := context.Background()

	created, err := repo.CreateItem(ctx, domain.Item{Name: "Widget", Description: "blue", Price: 9.99})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	updated, err := repo.UpdateItem(ctx, domain.Item{ID: created.ID, Name: "Widget2", Price: -12})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	want := domain.Item{ID: created.ID, Name: "Widget2", Description: "", Price: -12}
	if updated != want {
		t.Fatalf("expected %+v, got %+v", want, updated)
	}

	got, err := repo.GetItem(ctx, created.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got != want {
		t.Fatalf("expected stored %+v, got %+v", want, got)
	}
}

func testDeleteRemoves(t *testing.T, repo item.Repository) {
	defer repo.Close()
	ctx := context.Background()

	keep, _ := repo.CreateItem(ctx, domain.Item{Name: "keep", Price: 1})
	gone, _ := repo.CreateItem(ctx, domain.Item{Name: "gone", Price: 2})

	if err := repo.DeleteItem(ctx, gone.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if _, err := repo.GetItem(ctx, gone.ID); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound after delete, got %v", err)
	}
	if err := repo.DeleteItem(ctx, gone.ID); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected second delete to be ErrItemNotFound, got %v", err)
	}

	items, err := repo.ListItems(ctx)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(items) != 1 || items[0].ID != keep.ID {
		t.Fatalf("expected only item %d to remain, got %+v", keep.ID, items)
	}
}

func testIDsNotReused(t *testing.T, repo item.Repository) {
	defer repo.Close()
	ctx := context.Background()

	first, _ := repo.CreateItem(ctx, domain.Item{Name: "first", Price: 1})
	if err := repo.DeleteItem(ctx, first.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	second, err := repo.CreateItem(ctx, domain.Item{Name: "second", Price: 1})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("expected id greater than %d, got %d", first.ID, second.ID)
	}
}

func testConcurrentCreates(t *testing.T, repo item.Repository) {
	defer repo.Close()
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.CreateItem(ctx, domain.Item{Name: "parallel", Price: 1}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("expected nil error, got %v", err)
	}

	items, err := repo.ListItems(ctx)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(items) != workers {
		t.Fatalf("expected %d items, got %d", workers, len(items))
	}

	seen := make(map[int64]bool, workers)
	for _, it := range items {
		if seen[it.ID] {
			t.Fatalf("duplicate id %d", it.ID)
		}
		seen[it.ID] = true
	}
}
