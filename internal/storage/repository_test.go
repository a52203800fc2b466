package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"salespulse/internal/core"
	"salespulse/internal/sales"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository("")
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepositorySales(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	mk := func(day int, customer string) core.Sale {
		return core.Sale{
			Date:           core.NewDate(2023, 10, day),
			Amount:         core.Money{Cents: 500000},
			Customer:       customer,
			Representative: "Diana P.",
			Product:        "Licença Enterprise",
			Status:         core.StatusClosed,
		}
	}

	first, err := repo.Append(ctx, mk(2, "A"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := repo.Append(ctx, mk(9, "B")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := repo.Append(ctx, mk(2, "C")); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 || got[0].Customer != "B" || got[1].Customer != "C" || got[2].Customer != "A" {
		t.Fatalf("unexpected list %+v", got)
	}
	if got[2].Date.String() != "2023-10-02" || got[2].Status != core.StatusClosed {
		t.Fatalf("unexpected round trip %+v", got[2])
	}

	if err := repo.Delete(ctx, first); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, first); !errors.Is(err, sales.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteRepositorySettings(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if tgt, err := repo.Target(ctx); err != nil || tgt.Amount.Cents != 0 {
		t.Fatalf("expected empty target, got %+v err=%v", tgt, err)
	}
	want := core.SalesTarget{Month: core.Period{Year: 2023, Month: 10}, Amount: core.Money{Cents: 15000000}, DaysInMonth: 31, WorkingDays: 22}
	if err := repo.SetTarget(ctx, want); err != nil {
		t.Fatalf("set target: %v", err)
	}
	want.Amount = core.Money{Cents: 20000000}
	if err := repo.SetTarget(ctx, want); err != nil {
		t.Fatalf("update target: %v", err)
	}
	if got, _ := repo.Target(ctx); got != want {
		t.Fatalf("unexpected target %+v", got)
	}

	p, err := repo.AddProduct(ctx, core.Product{Name: "Licença Enterprise", DefaultPrice: core.Money{Cents: 500000}})
	if err != nil {
		t.Fatalf("add product: %v", err)
	}
	if _, err := repo.AddProduct(ctx, core.Product{Name: "LICENÇA ENTERPRISE", DefaultPrice: core.Money{Cents: 1}}); !errors.Is(err, sales.ErrDuplicateProduct) {
		t.Fatalf("expected ErrDuplicateProduct, got %v", err)
	}
	if err := repo.RemoveProduct(ctx, p.ID); err != nil {
		t.Fatalf("remove product: %v", err)
	}
	if ps, _ := repo.Products(ctx); len(ps) != 0 {
		t.Fatalf("expected no products, got %v", ps)
	}

	for _, name := range []string{"Alice M.", "Bob D.", "alice m."} {
		if err := repo.AddRepresentative(ctx, name); err != nil {
			t.Fatalf("add rep %q: %v", name, err)
		}
	}
	reps, _ := repo.Representatives(ctx)
	if len(reps) != 2 || reps[0] != "Alice M." {
		t.Fatalf("unexpected reps %v", reps)
	}

	if err := repo.AddObjection(ctx, "Falta de tempo"); err != nil {
		t.Fatalf("add objection: %v", err)
	}
	if err := repo.RemoveObjection(ctx, "Falta de tempo"); err != nil {
		t.Fatalf("remove objection: %v", err)
	}
	if objs, _ := repo.Objections(ctx); len(objs) != 0 {
		t.Fatalf("expected no objections, got %v", objs)
	}
}

func TestSQLiteRepositoryConcurrentAddsKeepNamesUnique(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	const workers = 8
	var wg sync.WaitGroup
	productErrs := make([]error, workers)
	repErrs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "Plano Inicial"
			if i%2 == 1 {
				name = strings.ToUpper(name)
			}
			_, productErrs[i] = repo.AddProduct(ctx, core.Product{
				ID:           fmt.Sprintf("p%d", i),
				Name:         name,
				DefaultPrice: core.Money{Cents: 120000},
			})
			repErrs[i] = repo.AddRepresentative(ctx, strings.ToLower("Carlos K.")+strings.Repeat(" ", i%3))
		}(i)
	}
	wg.Wait()

	added := 0
	for i, err := range productErrs {
		switch {
		case err == nil:
			added++
		case !errors.Is(err, sales.ErrDuplicateProduct):
			t.Fatalf("worker %d: unexpected error %v", i, err)
		}
	}
	if added != 1 {
		t.Fatalf("expected exactly one product added, got %d", added)
	}
	if ps, _ := repo.Products(ctx); len(ps) != 1 {
		t.Fatalf("expected one product row, got %v", ps)
	}

	for i, err := range repErrs {
		if err != nil {
			t.Fatalf("worker %d: add rep: %v", i, err)
		}
	}
	if reps, _ := repo.Representatives(ctx); len(reps) != 1 {
		t.Fatalf("expected one representative row, got %v", reps)
	}
}

func TestMemoryDSN(t *testing.T) {
	if got := MemoryDSN("x"); got != "file:x?mode=memory&cache=shared" {
		t.Fatalf("unexpected dsn %q", got)
	}
	if MemoryDSN("") == MemoryDSN("") {
		t.Fatalf("expected unique names for empty input")
	}
}
