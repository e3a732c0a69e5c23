package commands

import (
	"context"
	"log/slog"

	"marketplace/internal/core/domain/model/fulfillment"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
)

// CancelOrderCommandHandler cancels an order and unwinds what checkout set
// up: active reservations are released and their quantity returned, any
// pickup booking is cancelled, any route stop removed and the remaining
// stops reordered. A captured payment is refunded after the transaction
// commits.
type CancelOrderCommandHandler struct {
	uowFactory UoWFactory
	payments   ports.PaymentGateway
	notifier   ports.Notifier
	optimizer  ports.RouteOptimizer
}

// NewCancelOrderCommandHandler creates a handler for order cancellations.
func NewCancelOrderCommandHandler(
	uowFactory UoWFactory,
	payments ports.PaymentGateway,
	notifier ports.Notifier,
	optimizer ports.RouteOptimizer,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		payments:   payments,
		notifier:   notifier,
		optimizer:  optimizer,
	}
}

// Handle processes the cancellation command.
func (h *CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
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
	aggregate, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	from := aggregate.Status()
	wasPaid := aggregate.PaymentStatus() == order.PaymentStatusPaid
	paymentReference := aggregate.PaymentReference()

	if err = aggregate.Cancel(); err != nil {
		return err
	}

	if err = h.releaseStock(ctx, uow, aggregate); err != nil {
		return err
	}
	if err = h.releaseFulfillment(ctx, uow, aggregate); err != nil {
		return err
	}

	if wasPaid {
		aggregate.MarkRefunded()
	}
	aggregate.PutMetadata("cancelled_by", cmd.ActorID().String())
	aggregate.PutMetadata("cancellation_reason", cmd.Reason())

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.afterCommit(ctx, aggregate, from, cmd, wasPaid, paymentReference)
	return nil
}

func (h *CancelOrderCommandHandler) releaseStock(
	ctx context.Context,
	uow UoW,
	aggregate *order.Order,
) error {
	stockRepo := uow.StockRepository()
	reservations, err := stockRepo.GetReservationsByOrder(ctx, aggregate.ID())
	if err != nil {
		return err
	}

	for _, reservation := range reservations {
		if !reservation.IsActive() {
			continue
		}
		if err = reservation.Release(); err != nil {
			return err
		}
		if err = stockRepo.UpdateReservation(ctx, reservation); err != nil {
			return err
		}
		if err = stockRepo.ReturnQuantity(ctx, reservation.ProductID(), reservation.Quantity()); err != nil {
			return err
		}
	}
	return nil
}

func (h *CancelOrderCommandHandler) releaseFulfillment(
	ctx context.Context,
	uow UoW,
	aggregate *order.Order,
) error {
	fulfillmentRepo := uow.FulfillmentRepository()

	if bookingID := aggregate.PickupBookingID(); bookingID != nil {
		booking, err := fulfillmentRepo.GetBooking(ctx, *bookingID)
		if err != nil {
			return err
		}
		if booking.IsActive() {
			if err = booking.Cancel(); err != nil {
				return err
			}
			if err = fulfillmentRepo.UpdateBooking(ctx, booking); err != nil {
				return err
			}
		}
	}

	if stopID := aggregate.DeliveryStopID(); stopID != nil {
		route, err := fulfillmentRepo.GetRouteByStop(ctx, *stopID)
		if err != nil {
			return err
		}
		if err = route.RemoveStop(*stopID); err != nil {
			return err
		}
		if err = h.reoptimize(ctx, uow, aggregate, route); err != nil {
			return err
		}
		if err = fulfillmentRepo.UpdateRoute(ctx, route); err != nil {
			return err
		}
	}

	aggregate.ClearFulfillment()
	return nil
}

// reoptimize reorders the surviving stops after the cancelled one leaves
// the route.
func (h *CancelOrderCommandHandler) reoptimize(
	ctx context.Context,
	uow UoW,
	aggregate *order.Order,
	route *fulfillment.Route,
) error {
	if route.Status() != fulfillment.RouteStatusPlanning || len(route.Stops()) < 2 {
		return nil
	}

	vendor, err := uow.PartyRepository().GetVendor(ctx, aggregate.VendorID())
	if err != nil {
		return err
	}

	ordered, err := h.optimizer.Optimize(ctx, vendor.WarehouseLocation, route.Stops())
	if err != nil {
		return err
	}
	return route.Resequence(ordered)
}

func (h *CancelOrderCommandHandler) afterCommit(
	ctx context.Context,
	aggregate *order.Order,
	from order.Status,
	cmd CancelOrderCommand,
	wasPaid bool,
	paymentReference string,
) {
	if wasPaid {
		if err := h.payments.Refund(ctx, aggregate.ID(), paymentReference, aggregate.Total()); err != nil {
			slog.Error("refund failed, needs manual follow-up",
				"order", aggregate.OrderNumber(), "reference", paymentReference, "error", err)
		}
	}
	if err := h.notifier.NotifyStatusChanged(ctx, aggregate, from, cmd.ActorID()); err != nil {
		slog.Warn("cancellation notification failed",
			"order", aggregate.OrderNumber(), "error", err)
	}
}
