// Package cartrepo reads buyer carts for checkout. Carts are owned by the
// storefront; this adapter only reads the lines, joined with the catalog
// snapshot columns, and closes a cart once it has been turned into orders.
package cartrepo

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartDTO represents a cart row.
type CartDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	BuyerID    uuid.UUID `gorm:"type:uuid;index"`
	CheckedOut bool
	CreatedAt  time.Time
	Lines      []CartLineDTO `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default naming convention.
func (CartDTO) TableName() string {
	return "carts"
}

// CartLineDTO represents one product line in a cart, carrying the catalog
// data checkout snapshots onto order items.
type CartLineDTO struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	CartID             uuid.UUID `gorm:"type:uuid;index"`
	ProductID          uuid.UUID `gorm:"type:uuid;index"`
	VendorID           uuid.UUID `gorm:"type:uuid;index"`
	ProductName        string
	ProductSKU         string `gorm:"column:product_sku"`
	Quantity           int
	MinOrderQuantity   int
	UnitPriceCents     int64
	OriginalPriceCents int64
	UnitWeightKg       float64
	UnitVolumeM3       float64 `gorm:"column:unit_volume_m3"`
	Refrigerated       bool
}

// TableName overrides GORM's default naming convention.
func (CartLineDTO) TableName() string {
	return "cart_lines"
}

// GormCartRepository implements CartRepository using GORM.
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GORM cart repository.
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// Get retrieves a cart with its lines.
func (r *GormCartRepository) Get(ctx context.Context, id kernel.UUID) (*ports.Cart, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto CartDTO
	err := r.db.WithContext(ctx).Preload("Lines").First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("cart", id.String())
		}
		return nil, err
	}
	if dto.CheckedOut {
		return nil, ports.ErrCartAlreadyCheckedOut
	}

	return toCart(dto)
}

// MarkCheckedOut closes the cart. The conditional update makes a concurrent
// double checkout lose: the second call matches no row and fails.
func (r *GormCartRepository) MarkCheckedOut(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&CartDTO{}).
		Where("id = ? AND checked_out = FALSE", id.Bytes()).
		Update("checked_out", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrCartAlreadyCheckedOut
	}

	return nil
}

func toCart(dto CartDTO) (*ports.Cart, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	buyerID, err := kernel.UUIDFromBytes(dto.BuyerID[:])
	if err != nil {
		return nil, err
	}

	lines := make([]ports.CartLine, 0, len(dto.Lines))
	for _, lineDTO := range dto.Lines {
		line, lineErr := toCartLine(lineDTO)
		if lineErr != nil {
			return nil, lineErr
		}
		lines = append(lines, line)
	}

	return &ports.Cart{ID: id, BuyerID: buyerID, Lines: lines}, nil
}

func toCartLine(dto CartLineDTO) (ports.CartLine, error) {
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return ports.CartLine{}, err
	}
	vendorID, err := kernel.UUIDFromBytes(dto.VendorID[:])
	if err != nil {
		return ports.CartLine{}, err
	}

	return ports.CartLine{
		ProductID:          productID,
		VendorID:           vendorID,
		ProductName:        dto.ProductName,
		ProductSKU:         dto.ProductSKU,
		Quantity:           dto.Quantity,
		MinOrderQuantity:   dto.MinOrderQuantity,
		UnitPriceCents:     dto.UnitPriceCents,
		OriginalPriceCents: dto.OriginalPriceCents,
		UnitWeightKg:       dto.UnitWeightKg,
		UnitVolumeM3:       dto.UnitVolumeM3,
		Refrigerated:       dto.Refrigerated,
	}, nil
}
