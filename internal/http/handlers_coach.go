package http

import (
	"html/template"
	"net/http"
	"sync/atomic"

	"salespulse/internal/coach"
	applog "salespulse/internal/log"
)

// coachView is the analysis panel content.
type coachView struct {
	Analysis    template.HTML
	TeamMessage string
	Error       string
}

// handleCoachAnalyze runs the AI coach on the current data. Failures are
// rendered inside the panel with a 200 so HTMX swaps them in, next to the
// team message when one was generated.
func (s *Server) handleCoachAnalyze(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentCoach)
	atomic.AddInt64(&s.appMetrics.coachRuns, 1)

	res, err := s.svc.RunCoach(ctx)
	if err != nil {
		atomic.AddInt64(&s.appMetrics.coachFailures, 1)
		msg := coach.UserMessage(err)
		logger.WarnContext(ctx, "Coaching run failed",
			applog.FieldOperation, applog.OpAnalyze,
			applog.FieldError, err)
		s.render(w, r, NewHTMXResponse().TriggerErrorNotification(msg), "coach.html", coachView{
			Error:       msg,
			TeamMessage: res.TeamMessage,
		})
		return
	}

	s.render(w, r, NewHTMXResponse(), "coach.html", coachView{
		Analysis:    s.markdown.Render(res.Analysis),
		TeamMessage: res.TeamMessage,
	})
}
