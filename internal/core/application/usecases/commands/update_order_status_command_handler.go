package commands

import (
	"context"
	"log/slog"
	"time"

	"marketplace/internal/core/domain/model/fulfillment"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
)

// pickupBookingLookahead is how far ahead of now the planner loads the bay
// calendar when scheduling a pickup.
const pickupBookingLookahead = 8 * 24 * time.Hour

// preparationWindow is how long a vendor has to prepare a confirmed order
// before the dashboard flags it overdue.
const preparationWindow = 30 * time.Minute

// Vehicle profile assumed for routes opened on demand when no existing
// route can take a stop.
const (
	defaultVehicleCapacityKg = 1000.0
	defaultVehicleCapacityM3 = 12.0
)

// openRouteFor creates a fresh route for the stop's zone and date with the
// stop as its only entry. The vehicle is a placeholder until dispatch.
func openRouteFor(stop *fulfillment.Stop, date time.Time) (*fulfillment.Route, error) {
	route, err := fulfillment.NewRoute(
		kernel.NewUUID(),
		kernel.NewUUID(),
		date,
		stop.Location().Zone(),
		defaultVehicleCapacityKg,
		defaultVehicleCapacityM3,
		stop.Refrigerated(),
	)
	if err != nil {
		return nil, err
	}
	if err = route.AddStop(stop); err != nil {
		return nil, err
	}
	return route, nil
}

// reoptimizeRoute reorders the route's stops after an insertion, removal, or
// load change. Routes with fewer than two stops keep their order.
func reoptimizeRoute(
	ctx context.Context,
	optimizer ports.RouteOptimizer,
	depot kernel.GeoPoint,
	route *fulfillment.Route,
) error {
	if len(route.Stops()) < 2 {
		return nil
	}

	ordered, err := optimizer.Optimize(ctx, depot, route.Stops())
	if err != nil {
		return err
	}
	return route.Resequence(ordered)
}

// statusSideEffect is the transactional work bundled with one target status.
// Effects run after the aggregate transition succeeds and inside the same
// transaction, so a failed effect aborts the transition.
type statusSideEffect func(
	ctx context.Context,
	uow UoW,
	aggregate *order.Order,
	cmd UpdateOrderStatusCommand,
) error

// UpdateOrderStatusCommandHandler moves orders through their lifecycle. The
// transition itself is checked by the aggregate; this handler contributes
// the side effects each target status carries, looked up from a table
// rather than branched inline:
//
//	confirmed        stock reservations become permanent
//	ready_for_pickup the bay booking made at checkout is marked ready
//	in_transit       lines are marked picked and the bay booking completes
//	delivered        delivery quantities are recorded and open holds settle
//
// Pickup slots and delivery routes are booked during checkout; transitions
// only advance those artifacts.
//
// Non-transactional effects (notifications, documents, the preparation
// timer) run after commit and are logged rather than failed on error.
type UpdateOrderStatusCommandHandler struct {
	uowFactory UoWFactory
	notifier   ports.Notifier
	documents  ports.DocumentGenerator
	prepTimer  ports.PreparationTimer

	sideEffects map[order.Status]statusSideEffect
}

// NewUpdateOrderStatusCommandHandler creates the status transition handler.
func NewUpdateOrderStatusCommandHandler(
	uowFactory UoWFactory,
	notifier ports.Notifier,
	documents ports.DocumentGenerator,
	prepTimer ports.PreparationTimer,
) UpdateOrderStatusCommandHandler {
	handler := UpdateOrderStatusCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		documents:  documents,
		prepTimer:  prepTimer,
	}

	handler.sideEffects = map[order.Status]statusSideEffect{
		order.StatusConfirmed:      handler.confirmReservations,
		order.StatusReadyForPickup: handler.markBookingReady,
		order.StatusInTransit:      handler.startTransit,
		order.StatusDelivered:      handler.recordDelivery,
	}
	return handler
}

// Handle processes the status transition.
func (h *UpdateOrderStatusCommandHandler) Handle(ctx context.Context, cmd UpdateOrderStatusCommand) error {
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
	if err = aggregate.ChangeStatus(cmd.TargetStatus()); err != nil {
		return err
	}
	if aggregate.RequiresApproval() && cmd.TargetStatus() == order.StatusConfirmed {
		aggregate.PutMetadata("approved_by", cmd.ActorID().String())
	}

	if effect, ok := h.sideEffects[cmd.TargetStatus()]; ok {
		if err = effect(ctx, uow, aggregate, cmd); err != nil {
			return err
		}
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.afterCommit(ctx, aggregate, from, cmd)
	return nil
}

// confirmReservations turns the checkout's stock holds into committed
// decrements.
func (h *UpdateOrderStatusCommandHandler) confirmReservations(
	ctx context.Context,
	uow UoW,
	aggregate *order.Order,
	_ UpdateOrderStatusCommand,
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
		if err = reservation.Confirm(); err != nil {
			return err
		}
		if err = stockRepo.UpdateReservation(ctx, reservation); err != nil {
			return err
		}
	}
	return nil
}

// markBookingReady flags the checkout's bay booking so the gate knows the
// goods are packed and waiting.
func (h *UpdateOrderStatusCommandHandler) markBookingReady(
	ctx context.Context,
	uow UoW,
	aggregate *order.Order,
	_ UpdateOrderStatusCommand,
) error {
	bookingID := aggregate.PickupBookingID()
	if bookingID == nil {
		return nil
	}

	fulfillmentRepo := uow.FulfillmentRepository()
	booking, err := fulfillmentRepo.GetBooking(ctx, *bookingID)
	if err != nil {
		return err
	}
	if err = booking.MarkReady(); err != nil {
		return err
	}
	return fulfillmentRepo.UpdateBooking(ctx, booking)
}

// startTransit records that the goods have left the warehouse. Every line
// is marked picked and an outstanding bay booking is completed; delivery
// orders already sit on the route assigned at checkout.
func (h *UpdateOrderStatusCommandHandler) startTransit(
	ctx context.Context,
	uow UoW,
	aggregate *order.Order,
	_ UpdateOrderStatusCommand,
) error {
	for _, item := range aggregate.Items() {
		if err := item.MarkPicked(item.Quantity()); err != nil {
			return err
		}
	}

	if bookingID := aggregate.PickupBookingID(); bookingID != nil {
		if err := h.completePickupBooking(ctx, uow, *bookingID); err != nil {
			return err
		}
	}
	return nil
}

func (h *UpdateOrderStatusCommandHandler) completePickupBooking(
	ctx context.Context,
	uow UoW,
	bookingID kernel.UUID,
) error {
	fulfillmentRepo := uow.FulfillmentRepository()
	booking, err := fulfillmentRepo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if err = booking.Complete(); err != nil {
		return err
	}
	return fulfillmentRepo.UpdateBooking(ctx, booking)
}

// recordDelivery marks every line as delivered in full and settles any
// reservation still open against the order. The goods are with the buyer
// at this point, so open holds become confirmed decrements rather than
// returning to stock. Partial deliveries are recorded through the order
// modification flow before this transition.
func (h *UpdateOrderStatusCommandHandler) recordDelivery(
	ctx context.Context,
	uow UoW,
	aggregate *order.Order,
	_ UpdateOrderStatusCommand,
) error {
	for _, item := range aggregate.Items() {
		if err := item.MarkDelivered(item.Quantity()); err != nil {
			return err
		}
	}

	stockRepo := uow.StockRepository()
	reservations, err := stockRepo.GetReservationsByOrder(ctx, aggregate.ID())
	if err != nil {
		return err
	}
	for _, reservation := range reservations {
		if !reservation.IsActive() {
			continue
		}
		if err = reservation.Confirm(); err != nil {
			return err
		}
		if err = stockRepo.UpdateReservation(ctx, reservation); err != nil {
			return err
		}
	}
	return nil
}

// afterCommit runs the best-effort effects once the transition is durable.
func (h *UpdateOrderStatusCommandHandler) afterCommit(
	ctx context.Context,
	aggregate *order.Order,
	from order.Status,
	cmd UpdateOrderStatusCommand,
) {
	if err := h.notifier.NotifyStatusChanged(ctx, aggregate, from, cmd.ActorID()); err != nil {
		slog.Warn("status change notification failed",
			"order", aggregate.OrderNumber(), "from", from.String(), "error", err)
	}

	switch cmd.TargetStatus() {
	case order.StatusConfirmed:
		h.generateDocument(ctx, ports.DocumentInvoice, aggregate)
		if err := h.prepTimer.StartPreparation(ctx, aggregate.ID(), preparationWindow); err != nil {
			slog.Warn("preparation timer start failed", "order", aggregate.OrderNumber(), "error", err)
		}
	case order.StatusPreparing:
		h.generateDocument(ctx, ports.DocumentPickingList, aggregate)
	case order.StatusReadyForPickup:
		h.generateDocument(ctx, ports.DocumentPackingSlip, aggregate)
		h.clearPreparation(ctx, aggregate)
	case order.StatusInTransit:
		if aggregate.FulfillmentType() == order.FulfillmentTypeDelivery {
			h.generateDocument(ctx, ports.DocumentPackingSlip, aggregate)
			h.generateDocument(ctx, ports.DocumentShippingLabel, aggregate)
		}
		h.clearPreparation(ctx, aggregate)
	}
}

func (h *UpdateOrderStatusCommandHandler) clearPreparation(ctx context.Context, aggregate *order.Order) {
	if err := h.prepTimer.ClearPreparation(ctx, aggregate.ID()); err != nil {
		slog.Warn("preparation timer clear failed", "order", aggregate.OrderNumber(), "error", err)
	}
}

func (h *UpdateOrderStatusCommandHandler) generateDocument(
	ctx context.Context,
	kind ports.DocumentKind,
	aggregate *order.Order,
) {
	if _, err := h.documents.Generate(ctx, kind, aggregate); err != nil {
		slog.Warn("document generation failed",
			"kind", string(kind), "order", aggregate.OrderNumber(), "error", err)
	}
}
