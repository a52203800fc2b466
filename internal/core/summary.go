package core

// KPI is the set of derived indicators for the target month.
type KPI struct {
	TotalRevenue      Money
	DealsClosed       int
	AverageTicket     Money
	Projection        Money
	PercentToGoal     float64
	Remaining         Money
	RequiredDailyPace Money
	// ElapsedDays is the number of target-month days covered so far.
	ElapsedDays int
}

// OnTrack reports whether the linear projection reaches the target.
func (k KPI) OnTrack(target SalesTarget) bool {
	return k.Projection.Cents >= target.Amount.Cents
}

// ChartPoint is one day of the cumulative revenue vs target series.
type ChartPoint struct {
	Day int
	// Actual is nil for days after the as-of date.
	Actual     *Money
	TargetPace Money
}

// RepSummary aggregates closed revenue for one representative.
type RepSummary struct {
	Representative string
	Revenue        Money
	Deals          int
}
