package worker

import (
	"context"
	"fmt"
	"log/slog"

	"salespulse/internal/amqp"
	"salespulse/internal/core"
)

// TeamMessenger writes the motivational message; *coach.Coach implements it.
type TeamMessenger interface {
	TeamMessage(ctx context.Context, k core.KPI) string
}

// BroadcastWorker turns sale events into team channel messages.
type BroadcastWorker struct {
	messenger TeamMessenger
	notifier  Notifier
	logger    *slog.Logger
}

func NewBroadcastWorker(messenger TeamMessenger, notifier Notifier, logger *slog.Logger) *BroadcastWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &BroadcastWorker{
		messenger: messenger,
		notifier:  notifier,
		logger:    logger.With("component", "broadcast_worker"),
	}
}

// HandleSaleRecorded generates and delivers the team message for one sale.
// An empty generated message is skipped; only delivery errors are returned,
// so the event is retried when the channel is unreachable.
func (w *BroadcastWorker) HandleSaleRecorded(ctx context.Context, msg *amqp.SaleRecordedMessage) error {
	w.logger.InfoContext(ctx, "Processing sale recorded message",
		"sale_id", msg.SaleID,
		"percent_to_goal", msg.PercentToGoal)

	text := w.messenger.TeamMessage(ctx, msg.KPI())
	if text == "" {
		w.logger.WarnContext(ctx, "No team message generated, skipping broadcast", "sale_id", msg.SaleID)
		return nil
	}

	if err := w.notifier.Notify(ctx, text); err != nil {
		return fmt.Errorf("notify team for sale %s: %w", msg.SaleID, err)
	}

	w.logger.InfoContext(ctx, "Team message delivered", "sale_id", msg.SaleID)
	return nil
}
