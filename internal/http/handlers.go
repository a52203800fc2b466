package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	})
}

// handleReady checks templates and the session store. The AI coach is
// reported but never makes the service unready: the dashboard works without it.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.svc == nil:
		checks["store"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	case s.ready != nil:
		if err := s.ready(ctx); err != nil {
			checks["store"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	default:
		checks["store"] = "ok"
	}

	if s.svc != nil && s.svc.CoachConfigured() {
		checks["coach"] = "ok"
	} else {
		checks["coach"] = "not_configured"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.postLimiter.ActiveClients(),
		"coach_clients":  s.coachLimiter.ActiveClients(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	counter := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n\n", name, help, name, name, v)
	}
	gauge := func(name, help string, v float64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s %.0f\n\n", name, help, name, name, v)
	}

	counter("http_requests_total", "Total number of dashboard HTTP requests", atomic.LoadInt64(&s.appMetrics.totalRequests))
	counter("sales_recorded_total", "Total number of sales recorded", atomic.LoadInt64(&s.appMetrics.salesRecorded))
	counter("sales_deleted_total", "Total number of sales deleted", atomic.LoadInt64(&s.appMetrics.salesDeleted))
	counter("settings_changes_total", "Total number of settings changes", atomic.LoadInt64(&s.appMetrics.settingsEdits))
	counter("coach_runs_total", "Total number of AI coaching runs", atomic.LoadInt64(&s.appMetrics.coachRuns))
	counter("coach_failures_total", "Total number of failed AI coaching runs", atomic.LoadInt64(&s.appMetrics.coachFailures))
	counter("template_errors_total", "Total number of template rendering failures", atomic.LoadInt64(&s.appMetrics.templateErrors))
	counter("rate_limit_hits_total", "Total rate limit hits", atomic.LoadInt64(&s.security.rateLimitHits))
	counter("suspicious_requests_total", "Total suspicious requests detected", atomic.LoadInt64(&s.security.suspiciousRequests))
	gauge("active_rate_limit_clients", "Currently tracked rate limit clients", float64(s.postLimiter.ActiveClients()+s.coachLimiter.ActiveClients()))
	gauge("uptime_seconds", "Application uptime in seconds", time.Since(s.appMetrics.uptime).Seconds())
}
