package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/amqp"
	"salespulse/internal/catalog"
	"salespulse/internal/coach"
	"salespulse/internal/core"
	"salespulse/internal/sales"
	"salespulse/internal/sales/memory"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*amqp.SaleRecordedMessage
	err  error
}

func (p *recordingPublisher) PublishSaleRecorded(_ context.Context, msg *amqp.SaleRecordedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, _, prompt string, _ int32) (string, error) {
	if strings.Contains(prompt, "Slack/Teams") {
		return "Bora, time!", nil
	}
	return "## Análise de Ritmo", nil
}

func newTestService(t *testing.T, pub Publisher, gen coach.Generator) *DashboardService {
	t.Helper()
	store := memory.New()
	require.NoError(t, catalog.Default().Apply(context.Background(), store))
	return NewDashboardService(store, coach.New(gen, coach.Config{}, nil), pub,
		FixedClock(core.NewDate(2023, 10, 16)), nil)
}

func TestRecordSaleDefaults(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, pub, nil)
	ctx := context.Background()

	sale, err := svc.RecordSale(ctx, NewSale{
		Customer:       "Empresa Acme",
		Representative: "alice m.",
		Product:        "1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, sale.ID)
	assert.Equal(t, "2023-10-16", sale.Date.String())
	assert.Equal(t, core.StatusClosed, sale.Status)
	assert.Equal(t, "Licença Enterprise", sale.Product)
	assert.Equal(t, "Alice M.", sale.Representative)
	assert.Equal(t, int64(500000), sale.Amount.Cents)

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, sale.ID, pub.msgs[0].SaleID)
	assert.Equal(t, int64(500000), pub.msgs[0].TotalRevenueCents)
	assert.Equal(t, 1, pub.msgs[0].DealsClosed)
}

func TestRecordSaleGroupsRepresentativeCaseInsensitively(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	for _, rep := range []string{"alice m.", "Alice M.", " ALICE M. "} {
		_, err := svc.RecordSale(ctx, NewSale{Customer: "Acme", Representative: rep, Product: "1"})
		require.NoError(t, err)
	}

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Team, 1)
	assert.Equal(t, "Alice M.", snap.Team[0].Representative)
	assert.Equal(t, 3, snap.Team[0].Deals)
}

func TestRecordSaleValidation(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	_, err := svc.RecordSale(ctx, NewSale{Customer: "X", Representative: "Alice M.", Product: "Produto Fantasma"})
	assert.ErrorIs(t, err, ErrUnknownProduct)

	_, err = svc.RecordSale(ctx, NewSale{Customer: "X", Representative: "Zé", Product: "Plano Inicial"})
	assert.ErrorIs(t, err, ErrUnknownRepresentative)

	_, err = svc.RecordSale(ctx, NewSale{Customer: "", Representative: "Alice M.", Product: "Plano Inicial"})
	assert.ErrorIs(t, err, core.ErrEmptyCustomer)

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Sales)
}

func TestRecordSalePublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestService(t, pub, nil)

	_, err := svc.RecordSale(context.Background(), NewSale{
		Customer: "Cliente 0042", Representative: "Bob D.", Product: "Adicional Pro",
		Amount: core.Money{Cents: 75000},
	})
	require.NoError(t, err)
	assert.Len(t, pub.msgs, 1)
}

func TestSnapshotAndDelete(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	first, err := svc.RecordSale(ctx, NewSale{Customer: "A", Representative: "Alice M.", Product: "Plano Inicial", Date: core.NewDate(2023, 10, 2)})
	require.NoError(t, err)
	_, err = svc.RecordSale(ctx, NewSale{Customer: "B", Representative: "Bob D.", Product: "Licença Enterprise"})
	require.NoError(t, err)

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(620000), snap.KPI.TotalRevenue.Cents)
	assert.Equal(t, 2, snap.KPI.DealsClosed)
	assert.Equal(t, 16, snap.KPI.ElapsedDays)
	assert.Len(t, snap.Chart, 31)
	require.Len(t, snap.Sales, 2)
	assert.Equal(t, "B", snap.Sales[0].Customer)
	require.Len(t, snap.Team, 2)
	assert.Equal(t, "Bob D.", snap.Team[0].Representative)
	assert.Len(t, snap.Products, 4)

	require.NoError(t, svc.DeleteSale(ctx, first.ID))
	assert.ErrorIs(t, svc.DeleteSale(ctx, first.ID), sales.ErrNotFound)
}

func TestSettings(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	tgt, err := svc.UpdateTargetAmount(ctx, core.Money{Cents: 20000000})
	require.NoError(t, err)
	assert.Equal(t, 31, tgt.DaysInMonth)
	_, err = svc.UpdateTargetAmount(ctx, core.Money{})
	assert.ErrorIs(t, err, core.ErrInvalidTarget)

	p, err := svc.AddProduct(ctx, "Suporte Premium", core.Money{Cents: 150000})
	require.NoError(t, err)
	price, err := svc.ProductPrice(ctx, "suporte premium")
	require.NoError(t, err)
	assert.Equal(t, int64(150000), price.Cents)
	require.NoError(t, svc.RemoveProduct(ctx, p.ID))
	_, err = svc.ProductPrice(ctx, p.ID)
	assert.ErrorIs(t, err, ErrUnknownProduct)

	require.NoError(t, svc.AddRepresentative(ctx, "Eva R."))
	require.NoError(t, svc.RemoveRepresentative(ctx, "Alice M."))
	require.NoError(t, svc.AddObjection(ctx, "Contrato longo demais"))
	require.NoError(t, svc.RemoveObjection(ctx, "Falta de tempo para implementação agora"))

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20000000), snap.Target.Amount.Cents)
	assert.Equal(t, []string{"Bob D.", "Carlos K.", "Diana P.", "Eva R."}, snap.Representatives)
	assert.Len(t, snap.Objections, 3)
	assert.Contains(t, snap.Objections, "Contrato longo demais")
}

func TestRunCoach(t *testing.T) {
	svc := newTestService(t, nil, nil)
	assert.False(t, svc.CoachConfigured())
	_, err := svc.RunCoach(context.Background())
	assert.ErrorIs(t, err, coach.ErrNotConfigured)

	svc = newTestService(t, nil, stubGenerator{})
	res, err := svc.RunCoach(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "## Análise de Ritmo", res.Analysis)
	assert.Equal(t, "Bora, time!", res.TeamMessage)
}
