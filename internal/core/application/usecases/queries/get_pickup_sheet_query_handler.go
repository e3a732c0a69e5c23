package queries

import (
	"context"

	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
)

// GetPickupSheetQueryHandler renders the bay sheet for an order's pickup
// booking. Unlike the other read handlers it loads the aggregates, because
// the document generator works from them.
type GetPickupSheetQueryHandler struct {
	orders       ports.OrderRepository
	fulfillments ports.FulfillmentRepository
	documents    ports.DocumentGenerator
}

// NewGetPickupSheetQueryHandler creates the pickup sheet handler.
func NewGetPickupSheetQueryHandler(
	orders ports.OrderRepository,
	fulfillments ports.FulfillmentRepository,
	documents ports.DocumentGenerator,
) GetPickupSheetQueryHandler {
	return GetPickupSheetQueryHandler{
		orders:       orders,
		fulfillments: fulfillments,
		documents:    documents,
	}
}

// Handle loads the order and its booking and renders the sheet.
func (h *GetPickupSheetQueryHandler) Handle(
	ctx context.Context,
	query GetPickupSheetQuery,
) ([]byte, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	aggregate, err := h.orders.Get(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}

	bookingID := aggregate.PickupBookingID()
	if bookingID == nil {
		return nil, errs.NewObjectNotFoundError("pickup booking", query.OrderID().String())
	}

	booking, err := h.fulfillments.GetBooking(ctx, *bookingID)
	if err != nil {
		return nil, err
	}

	return h.documents.GeneratePickupSheet(ctx, aggregate, booking)
}
