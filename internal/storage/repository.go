package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"salespulse/internal/core"
	"salespulse/internal/sales"

	_ "modernc.org/sqlite"
)

// MemoryDSN returns a shared-cache in-memory database name. Nothing touches disk.
func MemoryDSN(name string) string {
	if name == "" {
		name = "salespulse-" + uuid.NewString()
	}
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

// SQLiteRepository implements sales.Store on an in-memory SQLite database.
// State lives as long as the repository is open.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(name string) (*SQLiteRepository, error) {
	dsn := MemoryDSN(name)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One long-lived connection keeps the in-memory database alive and
	// serialises writers on the shared cache.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Append implements sales.SaleWriter
func (r *SQLiteRepository) Append(ctx context.Context, s core.Sale) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sales (id, sale_date, amount_cents, customer, representative, product, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Date.String(), s.Amount.Cents, s.Customer, s.Representative, s.Product, string(s.Status))
	if err != nil {
		return "", fmt.Errorf("insert sale: %w", err)
	}

	slog.DebugContext(ctx, "Sale saved to SQLite",
		"id", s.ID,
		"amount_cents", s.Amount.Cents,
		"date", s.Date.String())

	return s.ID, nil
}

// Delete implements sales.SaleWriter
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if n == 0 {
		return sales.ErrNotFound
	}
	return nil
}

// List implements sales.SaleLister
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Sale, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sale_date, amount_cents, customer, representative, product, status
		 FROM sales ORDER BY sale_date DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var out []core.Sale
	for rows.Next() {
		var (
			s      core.Sale
			date   string
			status string
		)
		if err := rows.Scan(&s.ID, &date, &s.Amount.Cents, &s.Customer, &s.Representative, &s.Product, &status); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		if s.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("scan sale %s: %w", s.ID, err)
		}
		s.Status = core.SaleStatus(status)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Target implements sales.SettingsStore. A missing row yields the zero target.
func (r *SQLiteRepository) Target(ctx context.Context) (core.SalesTarget, error) {
	var (
		t     core.SalesTarget
		month string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT month, amount_cents, days_in_month, working_days FROM sales_target WHERE id = 1`).
		Scan(&month, &t.Amount.Cents, &t.DaysInMonth, &t.WorkingDays)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SalesTarget{}, nil
	}
	if err != nil {
		return core.SalesTarget{}, fmt.Errorf("get target: %w", err)
	}
	if t.Month, err = core.ParsePeriod(month); err != nil {
		return core.SalesTarget{}, fmt.Errorf("get target: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) SetTarget(ctx context.Context, t core.SalesTarget) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sales_target (id, month, amount_cents, days_in_month, working_days)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   month = excluded.month,
		   amount_cents = excluded.amount_cents,
		   days_in_month = excluded.days_in_month,
		   working_days = excluded.working_days`,
		t.Month.String(), t.Amount.Cents, t.DaysInMonth, t.WorkingDays)
	if err != nil {
		return fmt.Errorf("set target: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *SQLiteRepository) Products(ctx context.Context) ([]core.Product, error) {
	return listProducts(ctx, r.db)
}

func listProducts(ctx context.Context, q querier) ([]core.Product, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, default_price_cents FROM products ORDER BY pos`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []core.Product
	for rows.Next() {
		var p core.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.DefaultPrice.Cents); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AddProduct(ctx context.Context, p core.Product) (core.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return core.Product{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Product{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// SQLite NOCASE only folds ASCII, so uniqueness is checked here.
	existing, err := listProducts(ctx, tx)
	if err != nil {
		return core.Product{}, err
	}
	for _, e := range existing {
		if strings.EqualFold(e.Name, p.Name) || e.ID == p.ID {
			return core.Product{}, sales.ErrDuplicateProduct
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO products (id, name, default_price_cents) VALUES (?, ?, ?)`,
		p.ID, p.Name, p.DefaultPrice.Cents); err != nil {
		return core.Product{}, fmt.Errorf("insert product: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Product{}, fmt.Errorf("commit product: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) RemoveProduct(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

const (
	listRepresentatives = `SELECT name FROM representatives ORDER BY pos`
	listObjections      = `SELECT text FROM objections ORDER BY pos`
)

func (r *SQLiteRepository) Representatives(ctx context.Context) ([]string, error) {
	return listNames(ctx, r.db, listRepresentatives)
}

func (r *SQLiteRepository) AddRepresentative(ctx context.Context, name string) error {
	return r.addName(ctx, name, listRepresentatives, `INSERT INTO representatives (name) VALUES (?)`)
}

func (r *SQLiteRepository) RemoveRepresentative(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM representatives WHERE name = ?`, strings.TrimSpace(name)); err != nil {
		return fmt.Errorf("delete representative: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Objections(ctx context.Context) ([]string, error) {
	return listNames(ctx, r.db, listObjections)
}

func (r *SQLiteRepository) AddObjection(ctx context.Context, text string) error {
	return r.addName(ctx, text, listObjections, `INSERT INTO objections (text) VALUES (?)`)
}

func (r *SQLiteRepository) RemoveObjection(ctx context.Context, text string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM objections WHERE text = ?`, strings.TrimSpace(text)); err != nil {
		return fmt.Errorf("delete objection: %w", err)
	}
	return nil
}

func listNames(ctx context.Context, q querier, query string) ([]string, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) addName(ctx context.Context, name, list, insert string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyName
	}
	if len(name) > 200 {
		return core.ErrNameTooLong
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := listNames(ctx, tx, list)
	if err != nil {
		return err
	}
	if sales.ContainsFold(current, name) {
		return nil
	}
	if _, err := tx.ExecContext(ctx, insert, name); err != nil {
		return fmt.Errorf("insert name: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit name: %w", err)
	}
	return nil
}

var _ sales.Store = (*SQLiteRepository)(nil)
