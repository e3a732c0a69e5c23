package stockrepo

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/stock"
	"marketplace/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormStockRepository implements StockRepository using GORM.
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GORM stock repository.
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// ReserveQuantity decrements a product's available quantity in one
// conditional statement. The WHERE clause guards against oversell: when it
// matches no row, either the product is unknown or not enough stock remains,
// and nothing changes.
func (r *GormStockRepository) ReserveQuantity(
	ctx context.Context,
	productID kernel.UUID,
	quantity int,
) error {
	if err := productID.Validate(); err != nil {
		return err
	}
	if quantity <= 0 {
		return errs.NewValueIsInvalidError("quantity")
	}

	result := r.db.WithContext(ctx).Exec(`
		UPDATE product_stock
		SET available_quantity = available_quantity - ?, updated_at = NOW()
		WHERE id = ? AND available_quantity >= ?
	`, quantity, productID.Bytes(), quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return stock.NewInsufficientStockError(productID, quantity)
	}

	return nil
}

// ReturnQuantity increments a product's available quantity.
func (r *GormStockRepository) ReturnQuantity(
	ctx context.Context,
	productID kernel.UUID,
	quantity int,
) error {
	if err := productID.Validate(); err != nil {
		return err
	}
	if quantity <= 0 {
		return errs.NewValueIsInvalidError("quantity")
	}

	result := r.db.WithContext(ctx).Exec(`
		UPDATE product_stock
		SET available_quantity = available_quantity + ?, updated_at = NOW()
		WHERE id = ?
	`, quantity, productID.Bytes())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("product", productID.String())
	}

	return nil
}

// AddReservation persists a new reservation.
func (r *GormStockRepository) AddReservation(ctx context.Context, reservation *stock.Reservation) error {
	if err := reservation.Validate(); err != nil {
		return err
	}

	dto := reservationFromDomain(reservation)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// UpdateReservation persists a reservation state change.
func (r *GormStockRepository) UpdateReservation(ctx context.Context, reservation *stock.Reservation) error {
	if err := reservation.Validate(); err != nil {
		return err
	}

	dto := reservationFromDomain(reservation)
	result := r.db.WithContext(ctx).Save(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// GetReservationsByOrder retrieves all reservations for an order.
func (r *GormStockRepository) GetReservationsByOrder(
	ctx context.Context,
	orderID kernel.UUID,
) ([]*stock.Reservation, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []ReservationDTO
	err := r.db.WithContext(ctx).Find(&dtos, "order_id = ?", orderID.Bytes()).Error
	if err != nil {
		return nil, err
	}

	return reservationsToDomain(dtos)
}

// GetExpiredReservations retrieves still-reserved rows whose expiry passed,
// locked for update so concurrent sweeps do not double-return stock.
func (r *GormStockRepository) GetExpiredReservations(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*stock.Reservation, error) {
	var dtos []ReservationDTO
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, order_id, product_id, quantity, status, expires_at, created_at
		FROM reservations
		WHERE status = ? AND expires_at < ?
		ORDER BY expires_at
		LIMIT ?
		FOR UPDATE SKIP LOCKED
	`, stock.ReservationStatusReserved.String(), now, limit).Scan(&dtos).Error
	if err != nil {
		return nil, err
	}

	return reservationsToDomain(dtos)
}

// AddBackorder records demand that could not be reserved.
func (r *GormStockRepository) AddBackorder(ctx context.Context, backorder *stock.Backorder) error {
	if err := backorder.Validate(); err != nil {
		return err
	}

	dto := backorderFromDomain(backorder)
	return r.db.WithContext(ctx).Create(&dto).Error
}

func reservationsToDomain(dtos []ReservationDTO) ([]*stock.Reservation, error) {
	reservations := make([]*stock.Reservation, 0, len(dtos))
	for _, dto := range dtos {
		reservation, err := reservationToDomain(dto)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	return reservations, nil
}
