package queries

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrGetPickupSheetQueryIsNotConstructed = errors.New(
	"GetPickupSheetQuery must be created via NewGetPickupSheetQuery constructor",
)

// GetPickupSheetQuery requests the printable bay sheet for an order's
// pickup booking.
type GetPickupSheetQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetPickupSheetQuery creates a pickup sheet request for one order.
func NewGetPickupSheetQuery(orderID kernel.UUID) (GetPickupSheetQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetPickupSheetQuery{}, err
	}

	return GetPickupSheetQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q *GetPickupSheetQuery) Validate() error {
	return q.guard.Validate(ErrGetPickupSheetQueryIsNotConstructed)
}

// OrderID returns the order whose sheet is requested.
func (q GetPickupSheetQuery) OrderID() kernel.UUID {
	return q.orderID
}
