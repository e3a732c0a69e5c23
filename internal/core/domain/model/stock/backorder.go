package stock

import (
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

// ErrBackorderIsNotConstructed is returned when a Backorder was not created
// through NewBackorder or RestoreBackorder.
var ErrBackorderIsNotConstructed = errors.New("Backorder must be created via NewBackorder constructor")

// Backorder records demand for a product that could not be reserved so the
// vendor can restock against it. Urgent orders queue ahead of standard ones.
type Backorder struct { //nolint:recvcheck //using for validation
	id        kernel.UUID
	buyerID   kernel.UUID
	productID kernel.UUID
	quantity  int
	urgent    bool
	createdAt time.Time

	guard guard.ConstructorGuard
}

// NewBackorder records an unmet request for the given quantity of a product.
func NewBackorder(
	id kernel.UUID,
	buyerID kernel.UUID,
	productID kernel.UUID,
	quantity int,
	urgent bool,
	now time.Time,
) (*Backorder, error) {
	backorder := &Backorder{
		urgent:    urgent,
		createdAt: now,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		backorder.setID(id),
		backorder.setBuyerID(buyerID),
		backorder.setProductID(productID),
		backorder.setQuantity(quantity),
	); err != nil {
		return nil, err
	}

	return backorder, nil
}

// RestoreBackorder reconstructs a backorder from persistence.
func RestoreBackorder(
	id kernel.UUID,
	buyerID kernel.UUID,
	productID kernel.UUID,
	quantity int,
	urgent bool,
	createdAt time.Time,
) (*Backorder, error) {
	return NewBackorder(id, buyerID, productID, quantity, urgent, createdAt)
}

// Validate ensures the Backorder was created through a constructor.
func (b *Backorder) Validate() error {
	if b == nil {
		return ErrBackorderIsNotConstructed
	}
	return b.guard.Validate(ErrBackorderIsNotConstructed)
}

func (b *Backorder) ID() kernel.UUID        { return b.id }
func (b *Backorder) BuyerID() kernel.UUID   { return b.buyerID }
func (b *Backorder) ProductID() kernel.UUID { return b.productID }
func (b *Backorder) Quantity() int          { return b.quantity }
func (b *Backorder) Urgent() bool           { return b.urgent }
func (b *Backorder) CreatedAt() time.Time   { return b.createdAt }

// Priority is the restock queue priority for the vendor-facing report.
func (b *Backorder) Priority() string {
	if b.urgent {
		return "high"
	}
	return "normal"
}

func (b *Backorder) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	b.id = id
	return nil
}

func (b *Backorder) setBuyerID(buyerID kernel.UUID) error {
	if err := buyerID.Validate(); err != nil {
		return err
	}
	b.buyerID = buyerID
	return nil
}

func (b *Backorder) setProductID(productID kernel.UUID) error {
	if err := productID.Validate(); err != nil {
		return err
	}
	b.productID = productID
	return nil
}

func (b *Backorder) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}
	b.quantity = quantity
	return nil
}
