package jobs

import (
	"context"
	"log/slog"

	"marketplace/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// OrderCompletionJob closes out delivered orders once their dispute window
// passes. Runs hourly; a delivered order is promoted to completed at most
// an hour after it qualifies.
type OrderCompletionJob struct {
	handler commands.CompleteDeliveredOrdersCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewOrderCompletionJob creates the completion job.
func NewOrderCompletionJob(
	handler commands.CompleteDeliveredOrdersCommandHandler,
	logger *slog.Logger,
) *OrderCompletionJob {
	return &OrderCompletionJob{
		handler: handler,
		cron:    cron.New(),
		logger:  logger.With("component", "order_completion_job"),
	}
}

// Start begins the completion pass on an hourly schedule.
func (j *OrderCompletionJob) Start() error {
	_, err := j.cron.AddFunc("0 * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewCompleteDeliveredOrdersCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Order completion pass failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Order completion job started (running hourly)")
	return nil
}

// Stop stops the completion job.
func (j *OrderCompletionJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Order completion job stopped")
}
