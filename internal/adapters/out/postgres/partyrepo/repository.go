// Package partyrepo reads buyer and vendor profiles. Account data is owned
// by another service and replicated into these tables; order processing
// never writes them.
package partyrepo

import (
	"context"
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BuyerDTO represents a buyer profile row.
type BuyerDTO struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	BusinessID            uuid.UUID `gorm:"type:uuid;index"`
	ABN                   string    `gorm:"column:abn"`
	SpendingLimitCents    *int64
	BusinessMaxOrderCents *int64
	CreditTermsApproved   bool
}

// TableName overrides GORM's default naming convention.
func (BuyerDTO) TableName() string {
	return "buyers"
}

// VendorDTO represents a vendor profile row.
type VendorDTO struct {
	ID                         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ABN                        string    `gorm:"column:abn"`
	MinOrderCents              int64
	ShippingFeeCents           int64
	FreeShippingThresholdCents int64
	StandardLeadDays           int
	WarehouseLat               float64
	WarehouseLng               float64
	PickupOpeningHour          int
	PickupClosingHour          int
	PickupBays                 []string `gorm:"serializer:json;type:jsonb"`
	PickupConcurrency          int
}

// TableName overrides GORM's default naming convention.
func (VendorDTO) TableName() string {
	return "vendors"
}

// ContractDTO represents a negotiated buyer-vendor discount rate.
type ContractDTO struct {
	BuyerID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	VendorID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	DiscountRate float64
}

// TableName overrides GORM's default naming convention.
func (ContractDTO) TableName() string {
	return "contracts"
}

// GormPartyRepository implements PartyRepository using GORM.
type GormPartyRepository struct {
	db *gorm.DB
}

// NewGormPartyRepository creates a new GORM party repository.
func NewGormPartyRepository(db *gorm.DB) *GormPartyRepository {
	return &GormPartyRepository{db: db}
}

// GetBuyer retrieves a buyer's spending profile.
func (r *GormPartyRepository) GetBuyer(ctx context.Context, id kernel.UUID) (*ports.BuyerProfile, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto BuyerDTO
	err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("buyer", id.String())
		}
		return nil, err
	}

	buyerID, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	businessID, err := kernel.UUIDFromBytes(dto.BusinessID[:])
	if err != nil {
		return nil, err
	}

	return &ports.BuyerProfile{
		ID:                    buyerID,
		BusinessID:            businessID,
		ABN:                   dto.ABN,
		SpendingLimitCents:    dto.SpendingLimitCents,
		BusinessMaxOrderCents: dto.BusinessMaxOrderCents,
		CreditTermsApproved:   dto.CreditTermsApproved,
	}, nil
}

// GetVendor retrieves a vendor's order policy profile.
func (r *GormPartyRepository) GetVendor(ctx context.Context, id kernel.UUID) (*ports.VendorProfile, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto VendorDTO
	err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("vendor", id.String())
		}
		return nil, err
	}

	vendorID, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	warehouse, err := kernel.NewGeoPoint(dto.WarehouseLat, dto.WarehouseLng)
	if err != nil {
		return nil, err
	}

	return &ports.VendorProfile{
		ID:                         vendorID,
		ABN:                        dto.ABN,
		MinOrderCents:              dto.MinOrderCents,
		ShippingFeeCents:           dto.ShippingFeeCents,
		FreeShippingThresholdCents: dto.FreeShippingThresholdCents,
		StandardLeadDays:           dto.StandardLeadDays,
		WarehouseLocation:          warehouse,
		PickupOpeningHour:          dto.PickupOpeningHour,
		PickupClosingHour:          dto.PickupClosingHour,
		PickupBays:                 dto.PickupBays,
		PickupConcurrency:          dto.PickupConcurrency,
	}, nil
}

// GetContractRate retrieves the negotiated discount rate between a buyer and
// a vendor. No contract means no discount, not an error.
func (r *GormPartyRepository) GetContractRate(
	ctx context.Context,
	buyerID, vendorID kernel.UUID,
) (float64, error) {
	if err := errors.Join(buyerID.Validate(), vendorID.Validate()); err != nil {
		return 0, err
	}

	var dto ContractDTO
	err := r.db.WithContext(ctx).
		First(&dto, "buyer_id = ? AND vendor_id = ?", buyerID.Bytes(), vendorID.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return dto.DiscountRate, nil
}
