package stock

import (
	"errors"
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
)

// ErrInsufficientStock is returned when a reservation asks for more quantity
// than a product has available.
var ErrInsufficientStock = errors.New("insufficient stock")

// InsufficientStockError carries the product and quantities involved in a
// failed reservation. It unwraps to ErrInsufficientStock.
type InsufficientStockError struct {
	ProductID kernel.UUID
	Requested int
}

func NewInsufficientStockError(productID kernel.UUID, requested int) *InsufficientStockError {
	return &InsufficientStockError{ProductID: productID, Requested: requested}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: product %s, requested %d", ErrInsufficientStock, e.ProductID, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
