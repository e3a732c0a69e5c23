package queries

import (
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrGetActiveOrdersQueryIsNotConstructed = errors.New(
	"GetActiveOrdersQuery must be created via NewGetActiveOrdersQuery constructor",
)

// GetActiveOrdersQuery retrieves a buyer's orders that are still in flight.
// Completed and cancelled orders are excluded.
type GetActiveOrdersQuery struct {
	buyerID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetActiveOrdersQuery creates a query for a buyer's active orders.
func NewGetActiveOrdersQuery(buyerID kernel.UUID) (GetActiveOrdersQuery, error) {
	if err := buyerID.Validate(); err != nil {
		return GetActiveOrdersQuery{}, err
	}
	return GetActiveOrdersQuery{buyerID: buyerID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveOrdersQueryIsNotConstructed)
}

// BuyerID returns the buyer whose orders are requested.
func (q GetActiveOrdersQuery) BuyerID() kernel.UUID {
	return q.buyerID
}

// GetActiveOrdersQueryResponse is one in-flight order in the buyer's list.
type GetActiveOrdersQueryResponse struct {
	ID              kernel.UUID
	OrderNumber     string
	VendorID        kernel.UUID
	Status          string
	FulfillmentType string
	PaymentStatus   string
	TotalCents      int64
	Urgent          bool
	ExpectedAt      *time.Time
	CreatedAt       time.Time
}
