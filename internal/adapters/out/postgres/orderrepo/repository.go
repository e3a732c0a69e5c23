package orderrepo

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add saves a new order with its items to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update saves an existing order to the database. Items are rewritten as a
// set, which covers quantity changes and removed lines alike.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)

	result := r.db.WithContext(ctx).Omit("Items").Save(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if err := r.db.WithContext(ctx).Where("order_id = ?", dto.ID).Delete(&ItemDTO{}).Error; err != nil {
		return err
	}
	if len(dto.Items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&dto.Items).Error
}

// Get retrieves an order with its items by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.db.WithContext(ctx).Preload("Items").First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByNumber retrieves an order by its human-facing order number.
func (r *GormOrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	if orderNumber == "" {
		return nil, errs.NewValueIsRequiredError("orderNumber")
	}

	var dto OrderDTO
	err := r.db.WithContext(ctx).Preload("Items").First(&dto, "order_number = ?", orderNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", orderNumber)
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllByCart retrieves every order produced by one cart checkout.
func (r *GormOrderRepository) GetAllByCart(ctx context.Context, cartID kernel.UUID) ([]*order.Order, error) {
	if err := cartID.Validate(); err != nil {
		return nil, err
	}

	var dtos []OrderDTO
	err := r.db.WithContext(ctx).Preload("Items").
		Order("order_number").
		Find(&dtos, "cart_id = ?", cartID.Bytes()).Error
	if err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

// ExistsForBuyerAndVendor reports whether the buyer has ordered from the
// vendor before.
func (r *GormOrderRepository) ExistsForBuyerAndVendor(
	ctx context.Context,
	buyerID, vendorID kernel.UUID,
) (bool, error) {
	if err := errors.Join(buyerID.Validate(), vendorID.Validate()); err != nil {
		return false, err
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("buyer_id = ? AND vendor_id = ?", buyerID.Bytes(), vendorID.Bytes()).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// TrailingSpend sums the buyer's spend with the vendor since the given time.
// Cancelled orders never counted toward volume, so they are excluded.
func (r *GormOrderRepository) TrailingSpend(
	ctx context.Context,
	buyerID, vendorID kernel.UUID,
	since time.Time,
) (kernel.Money, error) {
	if err := errors.Join(buyerID.Validate(), vendorID.Validate()); err != nil {
		return kernel.Money{}, err
	}

	var cents int64
	err := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Select("COALESCE(SUM(total_cents), 0)").
		Where("buyer_id = ? AND vendor_id = ? AND created_at >= ? AND status <> ?",
			buyerID.Bytes(), vendorID.Bytes(), since, order.StatusCancelled.String()).
		Scan(&cents).Error
	if err != nil {
		return kernel.Money{}, err
	}

	return kernel.NewMoney(cents)
}

// GetDeliveredBefore retrieves orders that reached delivered status before
// the cutoff. The delivery timestamp is the row's last update, written when
// the status change was persisted.
func (r *GormOrderRepository) GetDeliveredBefore(
	ctx context.Context,
	cutoff time.Time,
) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).Preload("Items").
		Where("status = ? AND updated_at < ?", order.StatusDelivered.String(), cutoff).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

func toDomainAll(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		aggregate, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, aggregate)
	}
	return orders, nil
}
