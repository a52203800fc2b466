// Package metrics derives KPIs and chart series from the session's sales.
// Every function is pure: same sales, target and as-of date give the same result.
package metrics

import (
	"math"
	"sort"

	"salespulse/internal/core"
)

// ElapsedDays returns how many days of the target month are covered by asOf.
func ElapsedDays(target core.SalesTarget, asOf core.Date) int {
	days := target.DaysInMonth
	if days <= 0 {
		days = target.Month.Days()
	}
	start := target.Month.Start()
	switch {
	case target.Month.Contains(asOf):
		if asOf.Day() > days {
			return days
		}
		return asOf.Day()
	case asOf.Before(start.Time):
		return 0
	default:
		return days
	}
}

// Counts reports whether a sale contributes to the target month's revenue.
func Counts(s core.Sale, target core.SalesTarget) bool {
	return s.Status == core.StatusClosed && target.Month.Contains(s.Date)
}

// Compute derives the KPI cards for the target month as of asOf.
func Compute(sales []core.Sale, target core.SalesTarget, asOf core.Date) core.KPI {
	var k core.KPI
	for _, s := range sales {
		if !Counts(s, target) {
			continue
		}
		k.TotalRevenue = k.TotalRevenue.Add(s.Amount)
		k.DealsClosed++
	}

	if k.DealsClosed > 0 {
		k.AverageTicket = core.RoundCents(float64(k.TotalRevenue.Cents) / float64(k.DealsClosed))
	}

	k.ElapsedDays = ElapsedDays(target, asOf)
	if k.ElapsedDays > 0 {
		k.Projection = core.RoundCents(float64(k.TotalRevenue.Cents) / float64(k.ElapsedDays) * float64(target.DaysInMonth))
	}

	if target.Amount.Cents > 0 {
		k.PercentToGoal = float64(k.TotalRevenue.Cents) / float64(target.Amount.Cents) * 100
	}

	gap := target.Amount.Sub(k.TotalRevenue)
	if gap.Cents > 0 {
		k.Remaining = gap
	}
	left := target.DaysInMonth - k.ElapsedDays
	if left < 1 {
		left = 1
	}
	k.RequiredDailyPace = core.RoundCents(float64(k.Remaining.Cents) / float64(left))

	return k
}

// Chart builds the cumulative revenue vs linear target series, one point per day.
func Chart(sales []core.Sale, target core.SalesTarget, asOf core.Date) []core.ChartPoint {
	days := target.DaysInMonth
	if days <= 0 {
		return nil
	}

	daily := make([]int64, days+1)
	for _, s := range sales {
		if !Counts(s, target) {
			continue
		}
		if d := s.Date.Day(); d <= days {
			daily[d] += s.Amount.Cents
		}
	}

	elapsed := ElapsedDays(target, asOf)
	pace := target.DailyPace()
	points := make([]core.ChartPoint, 0, days)
	var running int64
	for day := 1; day <= days; day++ {
		running += daily[day]
		p := core.ChartPoint{
			Day:        day,
			TargetPace: core.Money{Cents: int64(math.Round(pace * float64(day)))},
		}
		if day <= elapsed {
			actual := core.Money{Cents: running}
			p.Actual = &actual
		}
		points = append(points, p)
	}
	return points
}

// ByRepresentative sums closed revenue per representative, highest first.
func ByRepresentative(sales []core.Sale, target core.SalesTarget) []core.RepSummary {
	idx := make(map[string]int)
	var out []core.RepSummary
	for _, s := range sales {
		if !Counts(s, target) {
			continue
		}
		i, ok := idx[s.Representative]
		if !ok {
			i = len(out)
			idx[s.Representative] = i
			out = append(out, core.RepSummary{Representative: s.Representative})
		}
		out[i].Revenue = out[i].Revenue.Add(s.Amount)
		out[i].Deals++
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Revenue.Cents != out[b].Revenue.Cents {
			return out[a].Revenue.Cents > out[b].Revenue.Cents
		}
		return out[a].Representative < out[b].Representative
	})
	return out
}
