package commands

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/fulfillment"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/stock"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
)

// ModifyOrderCommandHandler applies item changes to an open order. Stock
// follows the quantity deltas in the same transaction: increases reserve
// more, decreases give quantity back, and the order's reservation rows are
// resized alongside so a later release returns exactly what is still held.
// Pricing is recomputed afterwards, and the fulfillment artifact booked at
// checkout (bay slot or route stop) is resized to the new load.
type ModifyOrderCommandHandler struct {
	uowFactory UoWFactory
	optimizer  ports.RouteOptimizer
	pricing    services.PricingEngine
}

// NewModifyOrderCommandHandler creates a handler for order modifications.
func NewModifyOrderCommandHandler(uowFactory UoWFactory, optimizer ports.RouteOptimizer) ModifyOrderCommandHandler {
	return ModifyOrderCommandHandler{
		uowFactory: uowFactory,
		optimizer:  optimizer,
		pricing:    services.NewPricingEngine(),
	}
}

// Handle processes the modification command.
func (h *ModifyOrderCommandHandler) Handle(ctx context.Context, cmd ModifyOrderCommand) error {
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

	holds, err := h.activeHolds(ctx, uow, aggregate)
	if err != nil {
		return err
	}

	for _, change := range cmd.Changes() {
		if err = h.applyChange(ctx, uow, aggregate, holds, change); err != nil {
			return err
		}
	}

	if err = h.reprice(ctx, uow, aggregate); err != nil {
		return err
	}
	if err = h.resizeFulfillment(ctx, uow, aggregate); err != nil {
		return err
	}
	aggregate.PutMetadata("modified_by", cmd.ActorID().String())

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// activeHolds maps the order's live reservations by product so each change
// can resize the matching row.
func (h *ModifyOrderCommandHandler) activeHolds(
	ctx context.Context,
	uow UoW,
	aggregate *order.Order,
) (map[kernel.UUID]*stock.Reservation, error) {
	reservations, err := uow.StockRepository().GetReservationsByOrder(ctx, aggregate.ID())
	if err != nil {
		return nil, err
	}

	holds := make(map[kernel.UUID]*stock.Reservation, len(reservations))
	for _, reservation := range reservations {
		if reservation.IsActive() {
			holds[reservation.ProductID()] = reservation
		}
	}
	return holds, nil
}

func (h *ModifyOrderCommandHandler) applyChange(
	ctx context.Context,
	uow UoW,
	aggregate *order.Order,
	holds map[kernel.UUID]*stock.Reservation,
	change ItemChange,
) error {
	item := findItem(aggregate, change.ItemID)
	if item == nil {
		return errs.NewObjectNotFoundError("item", change.ItemID)
	}

	productID := item.ProductID()
	previous := item.Quantity()
	stockRepo := uow.StockRepository()

	if change.Quantity == 0 {
		if err := aggregate.RemoveItem(change.ItemID); err != nil {
			return err
		}
		if hold, ok := holds[productID]; ok {
			if err := hold.Release(); err != nil {
				return err
			}
			if err := stockRepo.UpdateReservation(ctx, hold); err != nil {
				return err
			}
			delete(holds, productID)
			return stockRepo.ReturnQuantity(ctx, productID, hold.Quantity())
		}
		return stockRepo.ReturnQuantity(ctx, productID, previous)
	}

	if err := aggregate.ChangeItemQuantity(change.ItemID, change.Quantity); err != nil {
		return err
	}

	delta := change.Quantity - previous
	if delta == 0 {
		return nil
	}

	if delta > 0 {
		if err := stockRepo.ReserveQuantity(ctx, productID, delta); err != nil {
			return err
		}
	} else {
		if err := stockRepo.ReturnQuantity(ctx, productID, -delta); err != nil {
			return err
		}
	}
	return h.resizeHold(ctx, uow, aggregate, holds, productID, delta)
}

// resizeHold grows or shrinks the reservation row behind a changed line.
// Lines without a live hold (already confirmed, or added after checkout) get
// a fresh reservation for the increase.
func (h *ModifyOrderCommandHandler) resizeHold(
	ctx context.Context,
	uow UoW,
	aggregate *order.Order,
	holds map[kernel.UUID]*stock.Reservation,
	productID kernel.UUID,
	delta int,
) error {
	stockRepo := uow.StockRepository()

	if hold, ok := holds[productID]; ok {
		if err := hold.ChangeQuantity(hold.Quantity() + delta); err != nil {
			return err
		}
		return stockRepo.UpdateReservation(ctx, hold)
	}

	if delta < 0 {
		return nil
	}

	now := time.Now()
	expiresAt := now.Add(stock.DefaultReservationTTL)
	if aggregate.ExpectedAt() != nil {
		expiresAt = *aggregate.ExpectedAt()
	}

	reservation, err := stock.NewReservation(
		kernel.NewUUID(), aggregate.ID(), productID, delta, expiresAt, now)
	if err != nil {
		return err
	}

	holds[productID] = reservation
	return stockRepo.AddReservation(ctx, reservation)
}

func (h *ModifyOrderCommandHandler) reprice(ctx context.Context, uow UoW, aggregate *order.Order) error {
	partyRepo := uow.PartyRepository()

	vendor, err := partyRepo.GetVendor(ctx, aggregate.VendorID())
	if err != nil {
		return err
	}
	contractRate, err := partyRepo.GetContractRate(ctx, aggregate.BuyerID(), aggregate.VendorID())
	if err != nil {
		return err
	}
	trailingSpend, err := uow.OrderRepository().TrailingSpend(
		ctx, aggregate.BuyerID(), aggregate.VendorID(), time.Now().Add(-trailingSpendWindow))
	if err != nil {
		return err
	}

	deliveryFee := kernel.MustMoney(0)
	if aggregate.FulfillmentType() == order.FulfillmentTypeDelivery {
		deliveryFee, err = services.DeliveryFee(
			kernel.MustMoney(vendor.ShippingFeeCents),
			vendor.WarehouseLocation,
			*aggregate.DeliveryLocation(),
			aggregate.TotalWeightKg(),
			aggregate.Urgent(),
		)
		if err != nil {
			return err
		}
	}

	pricing := h.pricing.Price(
		aggregate.Subtotal(),
		contractRate,
		trailingSpend,
		aggregate.FulfillmentType() == order.FulfillmentTypePickup,
		deliveryFee,
		kernel.MustMoney(vendor.FreeShippingThresholdCents),
	)
	aggregate.ApplyPricing(pricing.Discount, pricing.Shipping)
	return nil
}

// resizeFulfillment pushes the new load onto the artifact booked at
// checkout: the bay booking's duration for pickups, the route stop's load
// for deliveries.
func (h *ModifyOrderCommandHandler) resizeFulfillment(
	ctx context.Context,
	uow UoW,
	aggregate *order.Order,
) error {
	if bookingID := aggregate.PickupBookingID(); bookingID != nil {
		return h.resizeBooking(ctx, uow, aggregate, *bookingID)
	}
	if stopID := aggregate.DeliveryStopID(); stopID != nil {
		return h.resizeStop(ctx, uow, aggregate, *stopID)
	}
	return nil
}

func (h *ModifyOrderCommandHandler) resizeBooking(
	ctx context.Context,
	uow UoW,
	aggregate *order.Order,
	bookingID kernel.UUID,
) error {
	fulfillmentRepo := uow.FulfillmentRepository()
	booking, err := fulfillmentRepo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if !booking.IsActive() {
		return nil
	}
	if err = booking.ChangeDuration(fulfillment.PickupDurationFor(aggregate.TotalQuantity())); err != nil {
		return err
	}
	return fulfillmentRepo.UpdateBooking(ctx, booking)
}

func (h *ModifyOrderCommandHandler) resizeStop(
	ctx context.Context,
	uow UoW,
	aggregate *order.Order,
	stopID kernel.UUID,
) error {
	fulfillmentRepo := uow.FulfillmentRepository()
	route, err := fulfillmentRepo.GetRouteByStop(ctx, stopID)
	if err != nil {
		return err
	}
	if route.Status() != fulfillment.RouteStatusPlanning {
		return nil
	}

	if err = route.UpdateStopLoad(stopID,
		aggregate.PackageCount(), aggregate.TotalWeightKg(), aggregate.TotalVolumeM3()); err != nil {
		return err
	}

	vendor, err := uow.PartyRepository().GetVendor(ctx, aggregate.VendorID())
	if err != nil {
		return err
	}
	if err = reoptimizeRoute(ctx, h.optimizer, vendor.WarehouseLocation, route); err != nil {
		return err
	}
	return fulfillmentRepo.UpdateRoute(ctx, route)
}

func findItem(aggregate *order.Order, itemID kernel.UUID) *order.Item {
	for _, item := range aggregate.Items() {
		if item.ID().IsEqual(itemID) {
			return item
		}
	}
	return nil
}
