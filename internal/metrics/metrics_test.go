package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/core"
)

func october() core.SalesTarget {
	return core.SalesTarget{
		Month:       core.Period{Year: 2023, Month: 10},
		Amount:      core.Money{Cents: 15000000},
		DaysInMonth: 31,
		WorkingDays: 22,
	}
}

func sale(day int, cents int64, rep string, status core.SaleStatus) core.Sale {
	return core.Sale{
		Date:           core.NewDate(2023, 10, day),
		Amount:         core.Money{Cents: cents},
		Customer:       "Cliente 0001",
		Representative: rep,
		Product:        "Plano Inicial",
		Status:         status,
	}
}

func TestComputeEmpty(t *testing.T) {
	k := Compute(nil, october(), core.NewDate(2023, 10, 15))

	assert.Equal(t, int64(0), k.TotalRevenue.Cents)
	assert.Equal(t, 0, k.DealsClosed)
	assert.Equal(t, int64(0), k.AverageTicket.Cents)
	assert.Equal(t, int64(0), k.Projection.Cents)
	assert.Equal(t, 0.0, k.PercentToGoal)
	assert.Equal(t, int64(15000000), k.Remaining.Cents)
	assert.Equal(t, 15, k.ElapsedDays)
	// 150000 / 16 remaining days
	assert.Equal(t, int64(937500), k.RequiredDailyPace.Cents)
}

func TestComputeIgnoresOtherStatusesAndMonths(t *testing.T) {
	sales := []core.Sale{
		sale(1, 500000, "Alice M.", core.StatusClosed),
		sale(2, 120000, "Bob D.", core.StatusClosed),
		sale(3, 999999, "Bob D.", core.StatusPending),
		sale(4, 999999, "Bob D.", core.StatusCanceled),
		{Date: core.NewDate(2023, 9, 30), Amount: core.Money{Cents: 777777}, Status: core.StatusClosed},
	}
	k := Compute(sales, october(), core.NewDate(2023, 10, 15))

	assert.Equal(t, int64(620000), k.TotalRevenue.Cents)
	assert.Equal(t, 2, k.DealsClosed)
	assert.Equal(t, int64(310000), k.AverageTicket.Cents)
	// 620000 / 15 * 31 = 1281333.33
	assert.Equal(t, int64(1281333), k.Projection.Cents)
	assert.InDelta(t, 4.1333, k.PercentToGoal, 0.001)
	assert.Equal(t, int64(15000000-620000), k.Remaining.Cents)
	assert.False(t, k.OnTrack(october()))
}

func TestComputeOverTarget(t *testing.T) {
	sales := []core.Sale{sale(10, 16000000, "Alice M.", core.StatusClosed)}
	k := Compute(sales, october(), core.NewDate(2023, 10, 31))

	assert.Equal(t, int64(0), k.Remaining.Cents)
	assert.Equal(t, int64(0), k.RequiredDailyPace.Cents)
	assert.InDelta(t, 106.67, k.PercentToGoal, 0.01)
	assert.True(t, k.OnTrack(october()))
}

func TestElapsedDays(t *testing.T) {
	target := october()
	cases := []struct {
		asOf core.Date
		want int
	}{
		{core.NewDate(2023, 9, 30), 0},
		{core.NewDate(2023, 10, 1), 1},
		{core.NewDate(2023, 10, 16), 16},
		{core.NewDate(2023, 11, 2), 31},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ElapsedDays(target, tc.asOf), tc.asOf.String())
	}
}

func TestChart(t *testing.T) {
	sales := []core.Sale{
		sale(1, 100000, "Alice M.", core.StatusClosed),
		sale(3, 50000, "Bob D.", core.StatusClosed),
		sale(3, 25000, "Bob D.", core.StatusPending),
	}
	points := Chart(sales, october(), core.NewDate(2023, 10, 3))
	require.Len(t, points, 31)

	require.NotNil(t, points[0].Actual)
	assert.Equal(t, int64(100000), points[0].Actual.Cents)
	require.NotNil(t, points[1].Actual)
	assert.Equal(t, int64(100000), points[1].Actual.Cents)
	require.NotNil(t, points[2].Actual)
	assert.Equal(t, int64(150000), points[2].Actual.Cents)
	assert.Nil(t, points[3].Actual)

	assert.Equal(t, int64(483871), points[0].TargetPace.Cents)
	assert.Equal(t, int64(15000000), points[30].TargetPace.Cents)
}

func TestByRepresentative(t *testing.T) {
	sales := []core.Sale{
		sale(1, 100000, "Alice M.", core.StatusClosed),
		sale(2, 300000, "Bob D.", core.StatusClosed),
		sale(3, 50000, "Alice M.", core.StatusClosed),
		sale(4, 900000, "Carlos K.", core.StatusCanceled),
	}
	got := ByRepresentative(sales, october())
	require.Len(t, got, 2)
	assert.Equal(t, "Bob D.", got[0].Representative)
	assert.Equal(t, "Alice M.", got[1].Representative)
	assert.Equal(t, int64(150000), got[1].Revenue.Cents)
	assert.Equal(t, 2, got[1].Deals)
}
