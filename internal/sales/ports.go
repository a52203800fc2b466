// Package sales defines the ports for the session state: recorded sales and
// the editable settings (target, products, team, objections).
package sales

import (
	"context"
	"errors"
	"sort"
	"strings"

	"salespulse/internal/core"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateProduct = errors.New("product already exists")
)

// Ports for the session store.
type (
	SaleWriter interface {
		// Append stores the sale, assigning an ID when empty, and returns the ID.
		Append(ctx context.Context, s core.Sale) (id string, err error)
		// Delete removes the sale with the given ID or returns ErrNotFound.
		Delete(ctx context.Context, id string) error
	}

	// SaleLister returns sales newest first.
	SaleLister interface {
		List(ctx context.Context) ([]core.Sale, error)
	}

	SettingsStore interface {
		Target(ctx context.Context) (core.SalesTarget, error)
		SetTarget(ctx context.Context, t core.SalesTarget) error

		Products(ctx context.Context) ([]core.Product, error)
		// AddProduct assigns an ID when empty. Names are unique ignoring case.
		AddProduct(ctx context.Context, p core.Product) (core.Product, error)
		RemoveProduct(ctx context.Context, id string) error

		Representatives(ctx context.Context) ([]string, error)
		AddRepresentative(ctx context.Context, name string) error
		RemoveRepresentative(ctx context.Context, name string) error

		Objections(ctx context.Context) ([]string, error)
		AddObjection(ctx context.Context, text string) error
		RemoveObjection(ctx context.Context, text string) error
	}

	// Store is everything a backend provides.
	Store interface {
		SaleWriter
		SaleLister
		SettingsStore
	}
)

// SortNewestFirst orders sales by date descending; seq breaks ties so that
// later inserts come first.
func SortNewestFirst(items []core.Sale, seq func(i int) int64) {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		da, db := items[idx[a]].Date, items[idx[b]].Date
		if !da.Equal(db.Time) {
			return da.After(db.Time)
		}
		return seq(idx[a]) > seq(idx[b])
	})
	out := make([]core.Sale, len(items))
	for i, j := range idx {
		out[i] = items[j]
	}
	copy(items, out)
}

// FindProduct looks a product up by ID or, failing that, by name ignoring case.
func FindProduct(products []core.Product, key string) (core.Product, bool) {
	key = strings.TrimSpace(key)
	for _, p := range products {
		if p.ID == key {
			return p, true
		}
	}
	for _, p := range products {
		if strings.EqualFold(p.Name, key) {
			return p, true
		}
	}
	return core.Product{}, false
}

// ContainsFold reports whether list holds s ignoring case and surrounding space.
func ContainsFold(list []string, s string) bool {
	_, ok := FindFold(list, s)
	return ok
}

// FindFold returns the entry of list matching s ignoring case and surrounding space.
func FindFold(list []string, s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return v, true
		}
	}
	return "", false
}
