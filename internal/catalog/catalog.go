// Package catalog provides the initial session settings: the monthly target,
// the product list, the sales team and the tracked customer objections.
package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"salespulse/internal/core"
	"salespulse/internal/sales"
)

// Seed is the starting state of a session.
type Seed struct {
	Target          core.SalesTarget
	Products        []core.Product
	Representatives []string
	Objections      []string
}

// Source loads a seed from somewhere (file, spreadsheet).
type Source interface {
	Load(ctx context.Context) (Seed, error)
}

// StaticSource serves a fixed seed.
type StaticSource Seed

func (s StaticSource) Load(_ context.Context) (Seed, error) {
	return Seed(s), nil
}

// DefaultAsOf is the day the dashboard treats as today for the built-in catalog.
var DefaultAsOf = core.NewDate(2023, 10, 16)

// Default returns the built-in demo catalog.
func Default() Seed {
	return Seed{
		Target: core.SalesTarget{
			Month:       core.Period{Year: 2023, Month: 10},
			Amount:      core.Money{Cents: 150000_00},
			DaysInMonth: 31,
			WorkingDays: 22,
		},
		Products: []core.Product{
			{ID: "1", Name: "Licença Enterprise", DefaultPrice: core.Money{Cents: 5000_00}},
			{ID: "2", Name: "Plano Inicial", DefaultPrice: core.Money{Cents: 1200_00}},
			{ID: "3", Name: "Horas de Consultoria", DefaultPrice: core.Money{Cents: 350_00}},
			{ID: "4", Name: "Adicional Pro", DefaultPrice: core.Money{Cents: 800_00}},
		},
		Representatives: []string{"Alice M.", "Bob D.", "Carlos K.", "Diana P."},
		Objections: []string{
			"Preço muito elevado comparado ao concorrente",
			"Cliente precisa aprovar budget com diretoria",
			"Falta de tempo para implementação agora",
		},
	}
}

// Validate checks the target and every product.
func (s Seed) Validate() error {
	if err := s.Target.Validate(); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	for _, p := range s.Products {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("product %q: %w", p.Name, err)
		}
	}
	return nil
}

// Apply writes the seed into an empty store.
func (s Seed) Apply(ctx context.Context, store sales.SettingsStore) error {
	if err := store.SetTarget(ctx, s.Target); err != nil {
		return fmt.Errorf("seed target: %w", err)
	}
	for _, p := range s.Products {
		if _, err := store.AddProduct(ctx, p); err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}
	for _, r := range s.Representatives {
		if err := store.AddRepresentative(ctx, r); err != nil {
			return fmt.Errorf("seed representative %q: %w", r, err)
		}
	}
	for _, o := range s.Objections {
		if err := store.AddObjection(ctx, o); err != nil {
			return fmt.Errorf("seed objection: %w", err)
		}
	}
	return nil
}

// fileCatalog is the YAML layout of CATALOG_FILE.
type fileCatalog struct {
	Target struct {
		Month       string `yaml:"month"`
		Amount      string `yaml:"amount"`
		DaysInMonth int    `yaml:"days_in_month"`
		WorkingDays int    `yaml:"working_days"`
	} `yaml:"target"`
	Products []struct {
		ID    string `yaml:"id"`
		Name  string `yaml:"name"`
		Price string `yaml:"price"`
	} `yaml:"products"`
	Team       []string `yaml:"team"`
	Objections []string `yaml:"objections"`
}

// FileSource reads a YAML catalog from disk.
type FileSource struct {
	Path string
}

func (f FileSource) Load(_ context.Context) (Seed, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return Seed{}, fmt.Errorf("read catalog file: %w", err)
	}
	return ParseYAML(b)
}

// ParseYAML decodes a catalog document. Missing target fields fall back to
// the month's calendar length; amounts accept pt-BR or dot decimals.
func ParseYAML(b []byte) (Seed, error) {
	var fc fileCatalog
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return Seed{}, fmt.Errorf("decode catalog: %w", err)
	}

	var seed Seed
	month, err := core.ParsePeriod(fc.Target.Month)
	if err != nil {
		return Seed{}, fmt.Errorf("target month %q: %w", fc.Target.Month, err)
	}
	cents, err := core.ParseDecimalToCents(fc.Target.Amount)
	if err != nil {
		return Seed{}, fmt.Errorf("target amount %q: %w", fc.Target.Amount, err)
	}
	seed.Target = core.SalesTarget{
		Month:       month,
		Amount:      core.Money{Cents: cents},
		DaysInMonth: fc.Target.DaysInMonth,
		WorkingDays: fc.Target.WorkingDays,
	}
	if seed.Target.DaysInMonth == 0 {
		seed.Target.DaysInMonth = month.Days()
	}

	for _, p := range fc.Products {
		price, err := core.ParseDecimalToCents(p.Price)
		if err != nil {
			return Seed{}, fmt.Errorf("product %q price: %w", p.Name, err)
		}
		seed.Products = append(seed.Products, core.Product{
			ID:           strings.TrimSpace(p.ID),
			Name:         strings.TrimSpace(p.Name),
			DefaultPrice: core.Money{Cents: price},
		})
	}
	seed.Representatives = fc.Team
	seed.Objections = fc.Objections

	if err := seed.Validate(); err != nil {
		return Seed{}, err
	}
	return seed, nil
}
