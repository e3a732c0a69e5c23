// Package stockrepo persists product stock levels and reservations.
// Stock movements go through conditional single-statement updates so that
// concurrent checkouts can never reserve the same units twice.
package stockrepo

import (
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/stock"

	"github.com/google/uuid"
)

// ProductStockDTO is the stock ledger row for one product.
type ProductStockDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	AvailableQuantity int
	UpdatedAt         time.Time
}

// TableName overrides GORM's default naming convention.
func (ProductStockDTO) TableName() string {
	return "product_stock"
}

// ReservationDTO represents a stock reservation row.
type ReservationDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;index"`
	ProductID uuid.UUID `gorm:"type:uuid;index"`
	Quantity  int
	Status    string    `gorm:"index"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}

// TableName overrides GORM's default naming convention.
func (ReservationDTO) TableName() string {
	return "reservations"
}

// BackorderDTO represents recorded demand that could not be reserved.
type BackorderDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	BuyerID           uuid.UUID `gorm:"type:uuid;index"`
	ProductID         uuid.UUID `gorm:"type:uuid;index"`
	QuantityRequested int
	Priority          string
	CreatedAt         time.Time
}

// TableName overrides GORM's default naming convention.
func (BackorderDTO) TableName() string {
	return "backorder_items"
}

func backorderFromDomain(backorder *stock.Backorder) BackorderDTO {
	return BackorderDTO{
		ID:                backorder.ID().Bytes(),
		BuyerID:           backorder.BuyerID().Bytes(),
		ProductID:         backorder.ProductID().Bytes(),
		QuantityRequested: backorder.Quantity(),
		Priority:          backorder.Priority(),
		CreatedAt:         backorder.CreatedAt(),
	}
}

func reservationFromDomain(reservation *stock.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:        reservation.ID().Bytes(),
		OrderID:   reservation.OrderID().Bytes(),
		ProductID: reservation.ProductID().Bytes(),
		Quantity:  reservation.Quantity(),
		Status:    reservation.Status().String(),
		ExpiresAt: reservation.ExpiresAt(),
		CreatedAt: reservation.CreatedAt(),
	}
}

func reservationToDomain(dto ReservationDTO) (*stock.Reservation, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return nil, err
	}
	status, err := stock.ReservationStatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	return stock.RestoreReservation(id, orderID, productID, dto.Quantity, status, dto.ExpiresAt, dto.CreatedAt)
}
