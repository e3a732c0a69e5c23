package commands

import (
	"context"
	"log/slog"
	"time"
)

// sweepBatchSize caps how many expired reservations one sweep releases.
// Leftovers are picked up by the next run.
const sweepBatchSize = 100

// ReleaseExpiredReservationsCommandHandler releases stock held by
// reservations that expired before their order was confirmed. The whole
// batch is processed in one transaction; the repository locks the swept
// rows so concurrent sweeps skip each other's work.
type ReleaseExpiredReservationsCommandHandler struct {
	uowFactory UoWFactory
}

// NewReleaseExpiredReservationsCommandHandler creates the sweep handler.
func NewReleaseExpiredReservationsCommandHandler(
	uowFactory UoWFactory,
) ReleaseExpiredReservationsCommandHandler {
	return ReleaseExpiredReservationsCommandHandler{uowFactory: uowFactory}
}

// Handle runs one sweep.
func (h *ReleaseExpiredReservationsCommandHandler) Handle(
	ctx context.Context,
	cmd ReleaseExpiredReservationsCommand,
) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := time.Now()
	stockRepo := uow.StockRepository()

	expired, err := stockRepo.GetExpiredReservations(ctx, now, sweepBatchSize)
	if err != nil {
		return err
	}
	if len(expired) == 0 {
		return nil
	}

	for _, reservation := range expired {
		if err = reservation.Expire(now); err != nil {
			return err
		}
		if err = stockRepo.UpdateReservation(ctx, reservation); err != nil {
			return err
		}
		if err = stockRepo.ReturnQuantity(ctx, reservation.ProductID(), reservation.Quantity()); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	slog.Info("expired reservations released", "count", len(expired))
	return nil
}
