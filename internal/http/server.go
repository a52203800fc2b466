package http

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	applog "salespulse/internal/log"
	"salespulse/internal/services"
	appweb "salespulse/web"
)

const (
	// postRequestsPerMinute bounds mutations per client IP.
	postRequestsPerMinute = 60
	// coachRequestsPerMinute bounds AI coaching runs per client IP.
	coachRequestsPerMinute = 6
)

var errTemplatesNotLoaded = errors.New("templates not loaded")

// ReadinessCheck reports whether the session store can serve requests.
type ReadinessCheck func(ctx context.Context) error

// appMetrics are exposed on /metrics.
type appMetrics struct {
	uptime         time.Time
	totalRequests  int64
	salesRecorded  int64
	salesDeleted   int64
	settingsEdits  int64
	coachRuns      int64
	coachFailures  int64
	templateErrors int64
}

type Server struct {
	http.Server
	templates    *template.Template
	svc          *services.DashboardService
	ready        ReadinessCheck
	logger       *applog.Logger
	markdown     *markdownRenderer
	postLimiter  *rateLimiter
	coachLimiter *rateLimiter
	security     *securityMetrics
	appMetrics   *appMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
// ready may be nil when the store has nothing to check.
func NewServer(addr string, svc *services.DashboardService, ready ReadinessCheck, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			// Coaching calls can take up to COACH_TIMEOUT.
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  2 * time.Minute,
		},
		svc:          svc,
		ready:        ready,
		logger:       logger.WithComponent(applog.ComponentHTTP),
		markdown:     newMarkdownRenderer(),
		postLimiter:  newRateLimiter(postRequestsPerMinute, time.Minute),
		coachLimiter: newRateLimiter(coachRequestsPerMinute, time.Minute),
		security:     &securityMetrics{},
		appMetrics:   &appMetrics{uptime: time.Now()},
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Error("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	// Dashboard
	mux.HandleFunc("/{$}", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/ui/kpis", s.withSecurityHeaders(s.handleKPIs))
	mux.HandleFunc("/ui/chart", s.withSecurityHeaders(s.handleChart))
	mux.HandleFunc("/ui/transactions", s.withSecurityHeaders(s.handleTransactions))
	mux.HandleFunc("/ui/team", s.withSecurityHeaders(s.handleTeam))
	mux.HandleFunc("/ui/product-price", s.withSecurityHeaders(s.handleProductPrice))

	// Sales
	mux.HandleFunc("/sales", s.withSecurityHeaders(s.handleCreateSale))
	mux.HandleFunc("/sales/delete", s.withSecurityHeaders(s.handleDeleteSale))

	// Settings
	mux.HandleFunc("/settings", s.withSecurityHeaders(s.handleSettings))
	mux.HandleFunc("/settings/target", s.withSecurityHeaders(s.handleUpdateTarget))
	mux.HandleFunc("/settings/products", s.withSecurityHeaders(s.handleAddProduct))
	mux.HandleFunc("/settings/products/delete", s.withSecurityHeaders(s.handleRemoveProduct))
	mux.HandleFunc("/settings/reps", s.withSecurityHeaders(s.handleAddRepresentative))
	mux.HandleFunc("/settings/reps/delete", s.withSecurityHeaders(s.handleRemoveRepresentative))
	mux.HandleFunc("/settings/objections", s.withSecurityHeaders(s.handleAddObjection))
	mux.HandleFunc("/settings/objections/delete", s.withSecurityHeaders(s.handleRemoveObjection))

	// AI coach
	mux.HandleFunc("/coach/analyze", s.withSecurityHeaders(s.handleCoachAnalyze))

	s.Handler = applog.RequestMiddleware(logger, requestID, extractClientIP)(mux)
	return s
}

// Shutdown stops the rate limiter goroutines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.postLimiter.stop()
		s.coachLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting and request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		logger := applog.FromContext(ctx)
		clientIP := extractClientIP(r)
		atomic.AddInt64(&s.appMetrics.totalRequests, 1)

		applog.LogHTTPStart(ctx, r)

		if detectSuspiciousRequest(r, s.security) {
			logger.WithComponent(applog.ComponentSecurity).WarnContext(ctx, "Suspicious request detected",
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldUserAgent, r.Header.Get("User-Agent"))
		}

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			limiter := s.postLimiter
			if r.URL.Path == "/coach/analyze" {
				limiter = s.coachLimiter
			}
			if !limiter.allow(clientIP, s.security) {
				logger.WithComponent(applog.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
					applog.FieldMethod, r.Method,
					applog.FieldPath, r.URL.Path)
				NewHTMXResponse().
					Status(http.StatusTooManyRequests).
					Header("Retry-After", "60").
					TriggerErrorNotification("Muitas requisições. Tente novamente em instantes.").
					BodyHTML(`<div class="error">Muitas requisições. Tente novamente em instantes.</div>`).
					Write(w)
				applog.LogHTTPEnd(ctx, r, http.StatusTooManyRequests, time.Since(start).Milliseconds())
				return
			}
		}

		for k, v := range securityHeaders {
			w.Header().Set(k, v)
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		applog.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// render writes a template through the response builder, logging failures.
func (s *Server) render(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, name string, data any) {
	if err := b.Render(s.templates, name, data); err != nil {
		atomic.AddInt64(&s.appMetrics.templateErrors, 1)
		applog.FromContext(r.Context()).WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(),
			"Template execution failed",
			"template", name,
			applog.FieldError, err)
	}
	b.Write(w)
}
