package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"salespulse/internal/core"
	"salespulse/internal/sales"
)

type entry struct {
	seq  int64
	sale core.Sale
}

// Store keeps the whole session in process memory.
type Store struct {
	mu         sync.Mutex
	seq        int64
	items      []entry
	target     core.SalesTarget
	products   []core.Product
	reps       []string
	objections []string
}

func New() *Store {
	return &Store{}
}

// Append stores the sale and returns its ID.
func (s *Store) Append(_ context.Context, sale core.Sale) (string, error) {
	if err := sale.Validate(); err != nil {
		return "", err
	}
	if sale.ID == "" {
		sale.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.items = append(s.items, entry{seq: s.seq, sale: sale})
	return sale.ID, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.items {
		if e.sale.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return sales.ErrNotFound
}

// List returns a copy of the sales, newest first.
func (s *Store) List(_ context.Context) ([]core.Sale, error) {
	s.mu.Lock()
	out := make([]core.Sale, len(s.items))
	seqs := make([]int64, len(s.items))
	for i, e := range s.items {
		out[i] = e.sale
		seqs[i] = e.seq
	}
	s.mu.Unlock()

	sales.SortNewestFirst(out, func(i int) int64 { return seqs[i] })
	return out, nil
}

func (s *Store) Target(_ context.Context) (core.SalesTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target, nil
}

func (s *Store) SetTarget(_ context.Context, t core.SalesTarget) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = t
	return nil
}

func (s *Store) Products(_ context.Context) ([]core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Product(nil), s.products...), nil
}

func (s *Store) AddProduct(_ context.Context, p core.Product) (core.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return core.Product{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.products {
		if strings.EqualFold(existing.Name, p.Name) || existing.ID == p.ID {
			return core.Product{}, sales.ErrDuplicateProduct
		}
	}
	s.products = append(s.products, p)
	return p, nil
}

// RemoveProduct is a no-op for unknown IDs.
func (s *Store) RemoveProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) Representatives(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.reps...), nil
}

func (s *Store) AddRepresentative(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	s.reps, err = addName(s.reps, name)
	return err
}

func (s *Store) RemoveRepresentative(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reps = removeName(s.reps, name)
	return nil
}

func (s *Store) Objections(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.objections...), nil
}

func (s *Store) AddObjection(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	s.objections, err = addName(s.objections, text)
	return err
}

func (s *Store) RemoveObjection(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objections = removeName(s.objections, text)
	return nil
}

func addName(list []string, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return list, core.ErrEmptyName
	}
	if len(name) > 200 {
		return list, core.ErrNameTooLong
	}
	if sales.ContainsFold(list, name) {
		return list, nil
	}
	return append(list, name), nil
}

func removeName(list []string, name string) []string {
	name = strings.TrimSpace(name)
	out := list[:0]
	for _, v := range list {
		if v != name {
			out = append(out, v)
		}
	}
	return out
}
