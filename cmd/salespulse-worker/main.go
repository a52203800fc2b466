package main

import (
	"context"
	"errors"
	"os"
	"time"

	"salespulse/internal/amqp"
	"salespulse/internal/cli"
	applog "salespulse/internal/log"
	"salespulse/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the broadcast worker")
		os.Exit(1)
	}

	logger.Info("Starting salespulse-worker")

	coach := cli.NewCoach(context.Background(), logger, cfg)
	if !coach.Configured() {
		logger.Warn("AI coaching disabled, sale events will be acknowledged without a broadcast")
	}

	var notifier worker.Notifier
	if cfg.TeamWebhookURL != "" {
		notifier = worker.NewWebhookNotifier(cfg.TeamWebhookURL, nil)
		logger.Info("Delivering team messages to webhook")
	} else {
		notifier = worker.LogNotifier{Logger: logger.Slog()}
		logger.Info("TEAM_WEBHOOK_URL not set, team messages go to the log")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	broadcaster := worker.NewBroadcastWorker(coach, notifier, logger.Slog())

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	go func() {
		err := amqpClient.ConsumeSaleRecorded(ctx, broadcaster.HandleSaleRecorded)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", applog.FieldError, err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
