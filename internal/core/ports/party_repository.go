package ports

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
)

// BuyerProfile is the slice of a buyer account that order processing needs:
// spending controls and payment terms. Nil limits mean unlimited.
type BuyerProfile struct {
	ID                    kernel.UUID
	BusinessID            kernel.UUID
	ABN                   string
	SpendingLimitCents    *int64
	BusinessMaxOrderCents *int64
	CreditTermsApproved   bool
}

// VendorProfile is the slice of a vendor account that order processing
// needs: order minimums, shipping policy, lead time, and the pickup bay
// layout at its warehouse. Zero pickup fields fall back to the planner
// defaults.
type VendorProfile struct {
	ID                         kernel.UUID
	ABN                        string
	MinOrderCents              int64
	ShippingFeeCents           int64
	FreeShippingThresholdCents int64
	StandardLeadDays           int
	WarehouseLocation          kernel.GeoPoint
	PickupOpeningHour          int
	PickupClosingHour          int
	PickupBays                 []string
	PickupConcurrency          int
}

// PartyRepository defines read access to buyer and vendor accounts, which
// are owned by the account service and only consulted here.
type PartyRepository interface {
	// GetBuyer retrieves a buyer's spending profile.
	GetBuyer(ctx context.Context, id kernel.UUID) (*BuyerProfile, error)

	// GetVendor retrieves a vendor's order policy profile.
	GetVendor(ctx context.Context, id kernel.UUID) (*VendorProfile, error)

	// GetContractRate retrieves the negotiated discount rate between a buyer
	// and a vendor, zero when no contract exists.
	GetContractRate(ctx context.Context, buyerID, vendorID kernel.UUID) (float64, error)
}
