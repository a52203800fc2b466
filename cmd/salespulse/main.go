package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"salespulse/internal/amqp"
	"salespulse/internal/backend"
	"salespulse/internal/cli"
	apphttp "salespulse/internal/http"
	applog "salespulse/internal/log"
	"salespulse/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentStorage).Slog()).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize session store", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	src, err := cli.CatalogSource(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize catalog source", applog.FieldError, err, "source", cfg.CatalogSource)
		os.Exit(1)
	}
	catalogLogger := logger.WithComponent(applog.ComponentCatalog)
	if _, err := cli.SeedStore(ctx, catalogLogger, src, res.Backend, cfg.SeedDemoSales); err != nil {
		logger.Error("Failed to seed session store", applog.FieldError, err)
		os.Exit(1)
	}

	var publisher services.Publisher
	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Sale events are optional; the dashboard keeps working.
			logger.WithComponent(applog.ComponentAMQP).Warn("AMQP unavailable, sale events disabled", applog.FieldError, err)
		} else {
			publisher = amqpClient
			logger.WithComponent(applog.ComponentAMQP).Info("Publishing sale events", "exchange", cfg.AMQPExchange)
		}
	}

	coach := cli.NewCoach(ctx, logger, cfg)
	svc := services.NewDashboardService(res.Backend, coach, publisher, cli.Clock(logger, cfg), logger.WithComponent(applog.ComponentSales).Slog())
	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.ReadinessCheck(res.Ping), logger)
	srv.MaxHeaderBytes = 1 << 16

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", applog.FieldError, err)
			}
		}
		if err := res.Cleanup(); err != nil {
			logger.Warn("Session store cleanup error", applog.FieldError, err)
		}
	})

	logger.Info("Starting SalesPulse server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"catalog", cfg.CatalogSource,
		"coach", svc.CoachConfigured())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
