// Package orderrepo persists order aggregates with their line items.
// It maps between the private-field domain model and flat relational rows,
// using the Restore constructors to rebuild aggregates from storage.
package orderrepo

import (
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Monetary columns hold integer cents, mirroring the domain representation.
type OrderDTO struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey"`
	OrderNumber      string            `gorm:"uniqueIndex"`
	BuyerID          uuid.UUID         `gorm:"type:uuid;index"`
	VendorID         uuid.UUID         `gorm:"type:uuid;index"`
	CartID           uuid.UUID         `gorm:"type:uuid;index"`
	Status           string            `gorm:"index"`
	FulfillmentType  string
	DeliveryLat      *float64
	DeliveryLng      *float64
	SubtotalCents    int64
	TaxCents         int64
	DiscountCents    int64
	ShippingCents    int64
	TotalCents       int64
	Urgent           bool
	RequiresApproval bool
	ExpectedAt       *time.Time
	PickupBookingID  *uuid.UUID        `gorm:"type:uuid"`
	DeliveryStopID   *uuid.UUID        `gorm:"type:uuid"`
	PaymentStatus    string
	PaymentDue       *time.Time
	PaidAt           *time.Time
	PaymentReference string
	Metadata         map[string]string `gorm:"serializer:json;type:jsonb"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Items            []ItemDTO         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default naming convention.
func (OrderDTO) TableName() string {
	return "orders"
}

// ItemDTO represents one order line in the order_items table.
type ItemDTO struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID            uuid.UUID `gorm:"type:uuid;index"`
	ProductID          uuid.UUID `gorm:"type:uuid;index"`
	ProductName        string
	ProductSKU         string    `gorm:"column:product_sku"`
	Quantity           int
	UnitPriceCents     int64
	OriginalPriceCents int64
	UnitWeightKg       float64
	UnitVolumeM3       float64   `gorm:"column:unit_volume_m3"`
	Refrigerated       bool
	PickedQty          *int
	DeliveredQty       *int
}

// TableName overrides GORM's default naming convention.
func (ItemDTO) TableName() string {
	return "order_items"
}

func fromDomain(aggregate *order.Order) OrderDTO {
	dto := OrderDTO{
		ID:               aggregate.ID().Bytes(),
		OrderNumber:      aggregate.OrderNumber(),
		BuyerID:          aggregate.BuyerID().Bytes(),
		VendorID:         aggregate.VendorID().Bytes(),
		CartID:           aggregate.CartID().Bytes(),
		Status:           aggregate.Status().String(),
		FulfillmentType:  aggregate.FulfillmentType().String(),
		SubtotalCents:    aggregate.Subtotal().Cents(),
		TaxCents:         aggregate.Tax().Cents(),
		DiscountCents:    aggregate.Discount().Cents(),
		ShippingCents:    aggregate.Shipping().Cents(),
		TotalCents:       aggregate.Total().Cents(),
		Urgent:           aggregate.Urgent(),
		RequiresApproval: aggregate.RequiresApproval(),
		ExpectedAt:       aggregate.ExpectedAt(),
		PaymentStatus:    aggregate.PaymentStatus().String(),
		PaymentDue:       aggregate.PaymentDue(),
		PaidAt:           aggregate.PaidAt(),
		PaymentReference: aggregate.PaymentReference(),
		Metadata:         aggregate.Metadata(),
		CreatedAt:        aggregate.CreatedAt(),
	}

	if location := aggregate.DeliveryLocation(); location != nil {
		lat := location.Latitude()
		lng := location.Longitude()
		dto.DeliveryLat = &lat
		dto.DeliveryLng = &lng
	}
	if id := aggregate.PickupBookingID(); id != nil {
		raw := id.Bytes()
		dto.PickupBookingID = &raw
	}
	if id := aggregate.DeliveryStopID(); id != nil {
		raw := id.Bytes()
		dto.DeliveryStopID = &raw
	}

	dto.Items = make([]ItemDTO, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		dto.Items = append(dto.Items, itemFromDomain(aggregate.ID(), item))
	}

	return dto
}

func itemFromDomain(orderID kernel.UUID, item *order.Item) ItemDTO {
	return ItemDTO{
		ID:                 item.ID().Bytes(),
		OrderID:            orderID.Bytes(),
		ProductID:          item.ProductID().Bytes(),
		ProductName:        item.ProductName(),
		ProductSKU:         item.ProductSKU(),
		Quantity:           item.Quantity(),
		UnitPriceCents:     item.UnitPrice().Cents(),
		OriginalPriceCents: item.OriginalPrice().Cents(),
		UnitWeightKg:       item.UnitWeightKg(),
		UnitVolumeM3:       item.UnitVolumeM3(),
		Refrigerated:       item.Refrigerated(),
		PickedQty:          item.PickedQty(),
		DeliveredQty:       item.DeliveredQty(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	buyerID, err := kernel.UUIDFromBytes(dto.BuyerID[:])
	if err != nil {
		return nil, err
	}
	vendorID, err := kernel.UUIDFromBytes(dto.VendorID[:])
	if err != nil {
		return nil, err
	}
	cartID, err := kernel.UUIDFromBytes(dto.CartID[:])
	if err != nil {
		return nil, err
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}
	fulfillmentType, err := order.FulfillmentTypeFromString(dto.FulfillmentType)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := order.PaymentStatusFromString(dto.PaymentStatus)
	if err != nil {
		return nil, err
	}

	var deliveryLocation *kernel.GeoPoint
	if dto.DeliveryLat != nil && dto.DeliveryLng != nil {
		location, locErr := kernel.NewGeoPoint(*dto.DeliveryLat, *dto.DeliveryLng)
		if locErr != nil {
			return nil, locErr
		}
		deliveryLocation = &location
	}

	var pickupBookingID *kernel.UUID
	if dto.PickupBookingID != nil {
		bookingID, idErr := kernel.UUIDFromBytes((*dto.PickupBookingID)[:])
		if idErr != nil {
			return nil, idErr
		}
		pickupBookingID = &bookingID
	}
	var deliveryStopID *kernel.UUID
	if dto.DeliveryStopID != nil {
		stopID, idErr := kernel.UUIDFromBytes((*dto.DeliveryStopID)[:])
		if idErr != nil {
			return nil, idErr
		}
		deliveryStopID = &stopID
	}

	items := make([]*order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := itemToDomain(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	subtotal, err := kernel.NewMoney(dto.SubtotalCents)
	if err != nil {
		return nil, err
	}
	tax, err := kernel.NewMoney(dto.TaxCents)
	if err != nil {
		return nil, err
	}
	discount, err := kernel.NewMoney(dto.DiscountCents)
	if err != nil {
		return nil, err
	}
	shipping, err := kernel.NewMoney(dto.ShippingCents)
	if err != nil {
		return nil, err
	}
	total, err := kernel.NewMoney(dto.TotalCents)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id, dto.OrderNumber, buyerID, vendorID, cartID,
		status, fulfillmentType, deliveryLocation, items,
		subtotal, tax, discount, shipping, total,
		dto.Urgent, dto.RequiresApproval, dto.ExpectedAt,
		pickupBookingID, deliveryStopID,
		paymentStatus, dto.PaymentDue, dto.PaidAt, dto.PaymentReference,
		dto.Metadata, dto.CreatedAt,
	)
}

func itemToDomain(dto ItemDTO) (*order.Item, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return nil, err
	}
	unitPrice, err := kernel.NewMoney(dto.UnitPriceCents)
	if err != nil {
		return nil, err
	}
	originalPrice, err := kernel.NewMoney(dto.OriginalPriceCents)
	if err != nil {
		return nil, err
	}

	return order.RestoreItem(
		id, productID, dto.ProductName, dto.ProductSKU, dto.Quantity,
		unitPrice, originalPrice, dto.UnitWeightKg, dto.UnitVolumeM3,
		dto.Refrigerated, dto.PickedQty, dto.DeliveredQty,
	)
}
