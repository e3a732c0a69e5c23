// Package queries contains the read side of the application layer. Query
// handlers bypass the aggregates and read projection rows straight from the
// database, so they never compete with command handlers for domain locks.
package queries

import (
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves a single order with its line items.
//
// Example:
//
//	query, err := NewGetOrderQuery(orderID)
//	if err != nil {
//	    return err
//	}
//	response, err := handler.Handle(ctx, query)
type GetOrderQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for one order.
func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the requested order identifier.
func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetOrderQueryResponse is the full read model of one order.
type GetOrderQueryResponse struct {
	ID               kernel.UUID
	OrderNumber      string
	BuyerID          kernel.UUID
	VendorID         kernel.UUID
	Status           string
	FulfillmentType  string
	PaymentStatus    string
	SubtotalCents    int64
	TaxCents         int64
	DiscountCents    int64
	ShippingCents    int64
	TotalCents       int64
	Urgent           bool
	RequiresApproval bool
	ExpectedAt       *time.Time
	CreatedAt        time.Time
	Items            []GetOrderQueryItemResponse
}

// GetOrderQueryItemResponse is one line item of the order read model.
type GetOrderQueryItemResponse struct {
	ID             kernel.UUID
	ProductID      kernel.UUID
	ProductName    string
	ProductSKU     string
	Quantity       int
	UnitPriceCents int64
	LineTotalCents int64
}
