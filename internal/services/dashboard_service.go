package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"salespulse/internal/amqp"
	"salespulse/internal/coach"
	"salespulse/internal/core"
	"salespulse/internal/metrics"
	"salespulse/internal/sales"
)

var (
	ErrUnknownProduct        = errors.New("unknown product")
	ErrUnknownRepresentative = errors.New("unknown representative")
)

// Publisher announces recorded sales. amqp.Client implements it.
type Publisher interface {
	PublishSaleRecorded(ctx context.Context, msg *amqp.SaleRecordedMessage) error
}

// Clock returns the dashboard's notion of today.
type Clock func() core.Date

// SystemClock uses the current UTC date.
func SystemClock() core.Date {
	return core.DateOf(time.Now().UTC())
}

// FixedClock always returns d.
func FixedClock(d core.Date) Clock {
	return func() core.Date { return d }
}

// Snapshot is everything the dashboard shows at one instant.
type Snapshot struct {
	AsOf            core.Date
	Target          core.SalesTarget
	KPI             core.KPI
	Chart           []core.ChartPoint
	Sales           []core.Sale // newest first
	Team            []core.RepSummary
	Products        []core.Product
	Representatives []string
	Objections      []string
}

// CoachInput extracts what the coach needs.
func (s Snapshot) CoachInput() coach.Input {
	return coach.Input{
		Target:     s.Target,
		KPI:        s.KPI,
		AsOf:       s.AsOf,
		Sales:      s.Sales,
		Objections: s.Objections,
		Team:       s.Team,
	}
}

// NewSale is a sale as entered in the form. Zero fields take defaults.
type NewSale struct {
	Date           core.Date
	Amount         core.Money
	Customer       string
	Representative string
	Product        string // ID or name
	Status         core.SaleStatus
}

// DashboardService orchestrates the session store, metrics, coach and events.
type DashboardService struct {
	store     sales.Store
	coach     *coach.Coach
	publisher Publisher
	clock     Clock
	logger    *slog.Logger
}

func NewDashboardService(store sales.Store, c *coach.Coach, publisher Publisher, clock Clock, logger *slog.Logger) *DashboardService {
	if clock == nil {
		clock = SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	if c == nil {
		c = coach.New(nil, coach.Config{}, logger)
	}
	return &DashboardService{
		store:     store,
		coach:     c,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With("component", "dashboard_service"),
	}
}

// Today returns the as-of date.
func (s *DashboardService) Today() core.Date {
	return s.clock()
}

// Snapshot reads the session state and derives every metric from it.
func (s *DashboardService) Snapshot(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{AsOf: s.clock()}
	var err error
	if snap.Target, err = s.store.Target(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("read target: %w", err)
	}
	if snap.Sales, err = s.store.List(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("list sales: %w", err)
	}
	if snap.Products, err = s.store.Products(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("list products: %w", err)
	}
	if snap.Representatives, err = s.store.Representatives(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("list representatives: %w", err)
	}
	if snap.Objections, err = s.store.Objections(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("list objections: %w", err)
	}

	snap.KPI = metrics.Compute(snap.Sales, snap.Target, snap.AsOf)
	snap.Chart = metrics.Chart(snap.Sales, snap.Target, snap.AsOf)
	snap.Team = metrics.ByRepresentative(snap.Sales, snap.Target)
	return snap, nil
}

// RecordSale validates, stores and announces a new sale.
func (s *DashboardService) RecordSale(ctx context.Context, in NewSale) (core.Sale, error) {
	products, err := s.store.Products(ctx)
	if err != nil {
		return core.Sale{}, fmt.Errorf("list products: %w", err)
	}
	reps, err := s.store.Representatives(ctx)
	if err != nil {
		return core.Sale{}, fmt.Errorf("list representatives: %w", err)
	}

	sale := core.Sale{
		Date:           in.Date,
		Amount:         in.Amount,
		Customer:       strings.TrimSpace(in.Customer),
		Representative: strings.TrimSpace(in.Representative),
		Product:        strings.TrimSpace(in.Product),
		Status:         in.Status,
	}
	if sale.Date.IsZero() {
		sale.Date = s.clock()
	}
	if sale.Status == "" {
		sale.Status = core.StatusClosed
	}

	if len(products) > 0 && sale.Product != "" {
		p, ok := sales.FindProduct(products, sale.Product)
		if !ok {
			return core.Sale{}, fmt.Errorf("%w: %s", ErrUnknownProduct, sale.Product)
		}
		sale.Product = p.Name
		if sale.Amount.Cents == 0 {
			sale.Amount = p.DefaultPrice
		}
	}
	if len(reps) > 0 && sale.Representative != "" {
		rep, ok := sales.FindFold(reps, sale.Representative)
		if !ok {
			return core.Sale{}, fmt.Errorf("%w: %s", ErrUnknownRepresentative, sale.Representative)
		}
		sale.Representative = rep
	}

	if err := sale.Validate(); err != nil {
		return core.Sale{}, err
	}

	id, err := s.store.Append(ctx, sale)
	if err != nil {
		return core.Sale{}, fmt.Errorf("save sale: %w", err)
	}
	sale.ID = id

	s.logger.InfoContext(ctx, "Sale recorded",
		"sale_id", sale.ID,
		"amount_cents", sale.Amount.Cents,
		"representative", sale.Representative,
		"product", sale.Product)

	s.publishRecorded(ctx, sale)
	return sale, nil
}

// publishRecorded never fails the caller: the sale is already stored.
func (s *DashboardService) publishRecorded(ctx context.Context, sale core.Sale) {
	if s.publisher == nil {
		return
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build snapshot for sale event", "sale_id", sale.ID, "error", err)
		return
	}
	msg := amqp.NewSaleRecordedMessage(sale, snap.Target, snap.KPI)
	if err := s.publisher.PublishSaleRecorded(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish sale recorded message", "sale_id", sale.ID, "error", err)
	}
}

func (s *DashboardService) DeleteSale(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, strings.TrimSpace(id)); err != nil {
		return fmt.Errorf("delete sale %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Sale deleted", "sale_id", id)
	return nil
}

// UpdateTargetAmount changes the goal, keeping month and day counts.
func (s *DashboardService) UpdateTargetAmount(ctx context.Context, amount core.Money) (core.SalesTarget, error) {
	t, err := s.store.Target(ctx)
	if err != nil {
		return core.SalesTarget{}, fmt.Errorf("read target: %w", err)
	}
	t.Amount = amount
	if err := s.store.SetTarget(ctx, t); err != nil {
		return core.SalesTarget{}, err
	}
	s.logger.InfoContext(ctx, "Target updated", "amount_cents", amount.Cents, "month", t.Month.String())
	return t, nil
}

func (s *DashboardService) AddProduct(ctx context.Context, name string, price core.Money) (core.Product, error) {
	return s.store.AddProduct(ctx, core.Product{Name: name, DefaultPrice: price})
}

func (s *DashboardService) RemoveProduct(ctx context.Context, id string) error {
	return s.store.RemoveProduct(ctx, id)
}

// ProductPrice returns the default price for a product ID or name.
func (s *DashboardService) ProductPrice(ctx context.Context, key string) (core.Money, error) {
	products, err := s.store.Products(ctx)
	if err != nil {
		return core.Money{}, err
	}
	p, ok := sales.FindProduct(products, key)
	if !ok {
		return core.Money{}, fmt.Errorf("%w: %s", ErrUnknownProduct, key)
	}
	return p.DefaultPrice, nil
}

func (s *DashboardService) AddRepresentative(ctx context.Context, name string) error {
	return s.store.AddRepresentative(ctx, name)
}

func (s *DashboardService) RemoveRepresentative(ctx context.Context, name string) error {
	return s.store.RemoveRepresentative(ctx, name)
}

func (s *DashboardService) AddObjection(ctx context.Context, text string) error {
	return s.store.AddObjection(ctx, text)
}

func (s *DashboardService) RemoveObjection(ctx context.Context, text string) error {
	return s.store.RemoveObjection(ctx, text)
}

// CoachConfigured reports whether AI coaching is available.
func (s *DashboardService) CoachConfigured() bool {
	return s.coach.Configured()
}

// RunCoach runs the AI coach on the current snapshot.
func (s *DashboardService) RunCoach(ctx context.Context) (coach.Result, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return coach.Result{}, err
	}
	return s.coach.Run(ctx, snap.CoachInput())
}
