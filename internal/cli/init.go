// Package cli provides the initialization steps shared by cmd/salespulse
// and cmd/salespulse-worker.
package cli

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"salespulse/internal/catalog"
	gcatalog "salespulse/internal/catalog/google"
	"salespulse/internal/coach"
	"salespulse/internal/config"
	applog "salespulse/internal/log"
	"salespulse/internal/sales"
	"salespulse/internal/services"
)

// SetupLogger builds the application logger at the configured level and
// installs it as the slog default.
func SetupLogger(level string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = (&config.Config{LogLevel: level}).SlogLevel()
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// CatalogSource picks the seed source named by the configuration.
func CatalogSource(ctx context.Context, cfg *config.Config) (catalog.Source, error) {
	switch cfg.CatalogSource {
	case "file":
		return catalog.FileSource{Path: cfg.CatalogFile}, nil
	case "sheets":
		return gcatalog.New(ctx, gcatalog.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
	default:
		return catalog.StaticSource(catalog.Default()), nil
	}
}

// Clock picks the dashboard's notion of today. AS_OF_DATE wins; otherwise the
// built-in catalog is pinned to DefaultAsOf so its month stays current.
func Clock(logger *applog.Logger, cfg *config.Config) services.Clock {
	if asOf, ok := cfg.AsOf(); ok {
		logger.Info("Clock pinned", "as_of", asOf.String())
		return services.FixedClock(asOf)
	}
	if cfg.CatalogSource == "default" {
		logger.Info("Clock pinned to built-in catalog", "as_of", catalog.DefaultAsOf.String())
		return services.FixedClock(catalog.DefaultAsOf)
	}
	return services.SystemClock
}

// SeedStore loads the catalog and applies it to store, adding generated
// sales for the target month when demo is set.
func SeedStore(ctx context.Context, logger *applog.Logger, src catalog.Source, store sales.Store, demo bool) (catalog.Seed, error) {
	seed, err := src.Load(ctx)
	if err != nil {
		return catalog.Seed{}, fmt.Errorf("load catalog: %w", err)
	}
	if err := seed.Apply(ctx, store); err != nil {
		return catalog.Seed{}, fmt.Errorf("apply catalog: %w", err)
	}
	logger.Info("Catalog applied",
		"month", seed.Target.Month.String(),
		"target_cents", seed.Target.Amount.Cents,
		"products", len(seed.Products),
		"representatives", len(seed.Representatives),
		"objections", len(seed.Objections))

	if !demo {
		return seed, nil
	}
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	demoSales := catalog.DemoSales(seed, rng)
	for _, s := range demoSales {
		if _, err := store.Append(ctx, s); err != nil {
			return catalog.Seed{}, fmt.Errorf("seed demo sale: %w", err)
		}
	}
	logger.Info("Demo sales seeded", "count", len(demoSales))
	return seed, nil
}

// NewCoach wires the Gemini generator when an API key is configured. Without
// a key the coach answers every request with coach.ErrNotConfigured.
func NewCoach(ctx context.Context, logger *applog.Logger, cfg *config.Config) *coach.Coach {
	coachCfg := coach.Config{
		Model:          cfg.GeminiModel,
		ThinkingBudget: int32(cfg.CoachThinkingBudget),
		Timeout:        cfg.CoachTimeout,
	}
	l := logger.WithComponent(applog.ComponentCoach)
	if cfg.GeminiAPIKey == "" {
		l.Warn("GEMINI_API_KEY not set, AI coaching disabled")
		return coach.New(nil, coachCfg, l.Slog())
	}
	gen, err := coach.NewGenAIGenerator(ctx, cfg.GeminiAPIKey)
	if err != nil {
		l.Error("Failed to create Gemini client, AI coaching disabled", applog.FieldError, err)
		return coach.New(nil, coachCfg, l.Slog())
	}
	l.Info("AI coaching enabled", "model", cfg.GeminiModel)
	return coach.New(gen, coachCfg, l.Slog())
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. cleanup
// runs before the context is cancelled and gets at most timeout to finish.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
