package commands

import (
	"context"
	"log/slog"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
)

// deliveredDisputeWindow is how long a delivered order waits for the buyer
// to raise an issue before it is closed out automatically.
const deliveredDisputeWindow = 24 * time.Hour

// CompleteDeliveredOrdersCommandHandler promotes orders from delivered to
// completed once the dispute window has passed. Status change events are
// published under the scheduler's own actor identity, and each closed
// order triggers a rating request to the buyer.
type CompleteDeliveredOrdersCommandHandler struct {
	uowFactory UoWFactory
	notifier   ports.Notifier

	schedulerID kernel.UUID
}

// NewCompleteDeliveredOrdersCommandHandler creates the completion handler.
func NewCompleteDeliveredOrdersCommandHandler(
	uowFactory UoWFactory,
	notifier ports.Notifier,
) CompleteDeliveredOrdersCommandHandler {
	return CompleteDeliveredOrdersCommandHandler{
		uowFactory:  uowFactory,
		notifier:    notifier,
		schedulerID: kernel.NewUUID(),
	}
}

// Handle runs one completion pass.
func (h *CompleteDeliveredOrdersCommandHandler) Handle(
	ctx context.Context,
	cmd CompleteDeliveredOrdersCommand,
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

	orderRepo := uow.OrderRepository()
	cutoff := time.Now().Add(-deliveredDisputeWindow)

	aggregates, err := orderRepo.GetDeliveredBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(aggregates) == 0 {
		return nil
	}

	for _, aggregate := range aggregates {
		if err = aggregate.ChangeStatus(order.StatusCompleted); err != nil {
			return err
		}
		aggregate.PutMetadata("completed_by", "scheduler")

		if err = orderRepo.Update(ctx, aggregate); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	for _, aggregate := range aggregates {
		if notifyErr := h.notifier.NotifyStatusChanged(
			ctx, aggregate, order.StatusDelivered, h.schedulerID,
		); notifyErr != nil {
			slog.Warn("completion notification failed",
				"order", aggregate.OrderNumber(), "error", notifyErr)
		}
		if ratingErr := h.notifier.RequestRating(ctx, aggregate); ratingErr != nil {
			slog.Warn("rating request failed",
				"order", aggregate.OrderNumber(), "error", ratingErr)
		}
	}

	slog.Info("delivered orders completed", "count", len(aggregates))
	return nil
}
