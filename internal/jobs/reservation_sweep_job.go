package jobs

import (
	"context"
	"log/slog"

	"marketplace/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// ReservationSweepJob releases expired stock reservations. Runs every
// minute so abandoned checkouts return their stock within roughly one
// minute of the reservation lapsing.
type ReservationSweepJob struct {
	handler commands.ReleaseExpiredReservationsCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewReservationSweepJob creates the sweep job.
func NewReservationSweepJob(
	handler commands.ReleaseExpiredReservationsCommandHandler,
	logger *slog.Logger,
) *ReservationSweepJob {
	return &ReservationSweepJob{
		handler: handler,
		cron:    cron.New(),
		logger:  logger.With("component", "reservation_sweep_job"),
	}
}

// Start begins the sweep on a one minute schedule.
func (j *ReservationSweepJob) Start() error {
	_, err := j.cron.AddFunc("* * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewReleaseExpiredReservationsCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Reservation sweep failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Reservation sweep job started (running every minute)")
	return nil
}

// Stop stops the sweep job.
func (j *ReservationSweepJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Reservation sweep job stopped")
}
