package http

import (
	"net/http"
	"strconv"

	"salespulse/internal/core"
	applog "salespulse/internal/log"
	"salespulse/internal/services"
)

// dashboardView is the data every dashboard template receives.
type dashboardView struct {
	AsOf            core.Date
	Target          core.SalesTarget
	KPI             core.KPI
	OnTrack         bool
	Sales           []core.Sale
	Team            []teamRow
	Products        []core.Product
	Representatives []string
	Objections      []string
	CoachConfigured bool
	// DefaultAmount prefills the sale form with the first product's price.
	DefaultAmount core.Money
}

type teamRow struct {
	Representative string
	Revenue        core.Money
	Deals          int
	// ShareOfTarget is the rep's revenue as a percentage of the monthly goal.
	ShareOfTarget float64
}

// chartSeries is the JSON consumed by Chart.js. Amounts are in reais; actual
// is null for days after the as-of date.
type chartSeries struct {
	Labels     []string   `json:"labels"`
	Actual     []*float64 `json:"actual"`
	TargetPace []float64  `json:"targetPace"`
	Target     float64    `json:"target"`
}

func newDashboardView(snap services.Snapshot, coachConfigured bool) dashboardView {
	v := dashboardView{
		AsOf:            snap.AsOf,
		Target:          snap.Target,
		KPI:             snap.KPI,
		OnTrack:         snap.KPI.OnTrack(snap.Target),
		Sales:           snap.Sales,
		Products:        snap.Products,
		Representatives: snap.Representatives,
		Objections:      snap.Objections,
		CoachConfigured: coachConfigured,
	}
	if len(snap.Products) > 0 {
		v.DefaultAmount = snap.Products[0].DefaultPrice
	}
	for _, rep := range snap.Team {
		row := teamRow{Representative: rep.Representative, Revenue: rep.Revenue, Deals: rep.Deals}
		if snap.Target.Amount.Cents > 0 {
			row.ShareOfTarget = float64(rep.Revenue.Cents) / float64(snap.Target.Amount.Cents) * 100
		}
		v.Team = append(v.Team, row)
	}
	return v
}

func newChartSeries(points []core.ChartPoint, target core.SalesTarget) chartSeries {
	series := chartSeries{
		Labels:     make([]string, 0, len(points)),
		Actual:     make([]*float64, 0, len(points)),
		TargetPace: make([]float64, 0, len(points)),
		Target:     target.Amount.Reais(),
	}
	for _, p := range points {
		series.Labels = append(series.Labels, "Dia "+strconv.Itoa(p.Day))
		if p.Actual != nil {
			v := p.Actual.Reais()
			series.Actual = append(series.Actual, &v)
		} else {
			series.Actual = append(series.Actual, nil)
		}
		series.TargetPace = append(series.TargetPace, p.TargetPace.Reais())
	}
	return series
}

// loadView builds the view or writes a 500 and returns false.
func (s *Server) loadView(w http.ResponseWriter, r *http.Request) (dashboardView, bool) {
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to build dashboard snapshot",
			applog.FieldOperation, applog.OpList,
			applog.FieldError, err)
		InternalServerError("Erro ao carregar os dados do painel").Write(w)
		return dashboardView{}, false
	}
	return newDashboardView(snap, s.svc.CoachConfigured()), true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	v, ok := s.loadView(w, r)
	if !ok {
		return
	}
	s.render(w, r, NewHTMXResponse(), "index.html", v)
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	s.renderPartial(w, r, "kpis.html")
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	s.renderPartial(w, r, "transactions.html")
}

func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request) {
	s.renderPartial(w, r, "team.html")
}

func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, name string) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	v, ok := s.loadView(w, r)
	if !ok {
		return
	}
	s.render(w, r, NewHTMXResponse().Header("Cache-Control", "no-store"), name, v)
}

// handleChart returns the cumulative revenue vs target series as JSON.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to build chart series", applog.FieldError, err)
		InternalServerError("Erro ao carregar o gráfico").Write(w)
		return
	}
	resp := NewHTMXResponse().Header("Cache-Control", "no-store")
	if err := resp.JSON(newChartSeries(snap.Chart, snap.Target)); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode chart series", applog.FieldError, err)
	}
	resp.Write(w)
}

// handleProductPrice renders the amount input prefilled with the product's
// default price. Unknown products leave the field empty.
func (s *Server) handleProductPrice(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	key := sanitizeInput(r.URL.Query().Get("product"))
	var price core.Money
	if key != "" {
		if p, err := s.svc.ProductPrice(r.Context(), key); err == nil {
			price = p
		} else {
			applog.FromContext(r.Context()).DebugContext(r.Context(), "No default price for product",
				applog.FieldProduct, key,
				applog.FieldError, err)
		}
	}
	s.render(w, r, NewHTMXResponse(), "amount_input.html", price)
}
