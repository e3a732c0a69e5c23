package order

import (
	"errors"
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

const (
	// defaultItemWeightKg is assumed when a product has no recorded weight.
	defaultItemWeightKg = 1.0
	// defaultItemVolumeM3 is assumed when a product has no recorded dimensions.
	defaultItemVolumeM3 = 0.01
)

var (
	// ErrItemIsNotConstructed is returned when an Item was not created through
	// NewItem or RestoreItem.
	ErrItemIsNotConstructed = errors.New("Item must be created via NewItem constructor")
	// ErrProductNameIsRequired is returned for an empty product name snapshot.
	ErrProductNameIsRequired = errs.NewValueIsRequiredError("product name")
	// ErrProductSKUIsRequired is returned for an empty product SKU snapshot.
	ErrProductSKUIsRequired = errs.NewValueIsRequiredError("product sku")
)

// Item is a line item belonging to exactly one Order. It snapshots the
// product's name, SKU, and prices at the time of ordering so that historical
// orders stay immutable when the live catalog changes.
//
// Picked and delivered quantities stay nil until the corresponding fulfillment
// events occur.
type Item struct { //nolint:recvcheck //using for validation
	id            kernel.UUID
	productID     kernel.UUID
	productName   string
	productSKU    string
	quantity      int
	unitPrice     kernel.Money
	originalPrice kernel.Money
	weightKg      float64
	volumeM3      float64
	refrigerated  bool
	pickedQty     *int
	deliveredQty  *int

	guard guard.ConstructorGuard
}

// NewItem creates a line item snapshotting the product at order time.
// unitPrice is the price the buyer pays; originalPrice is the live catalog
// price at the same moment. Weight and volume default to per-unit heuristics
// when the product carries none.
func NewItem(
	id kernel.UUID,
	productID kernel.UUID,
	productName string,
	productSKU string,
	quantity int,
	unitPrice kernel.Money,
	originalPrice kernel.Money,
	weightKg float64,
	volumeM3 float64,
	refrigerated bool,
) (*Item, error) {
	item := &Item{
		unitPrice:     unitPrice,
		originalPrice: originalPrice,
		refrigerated:  refrigerated,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		item.setID(id),
		item.setProductID(productID),
		item.setProductName(productName),
		item.setProductSKU(productSKU),
		item.setQuantity(quantity),
	); err != nil {
		return nil, err
	}

	item.weightKg = weightKg
	if item.weightKg <= 0 {
		item.weightKg = defaultItemWeightKg
	}
	item.volumeM3 = volumeM3
	if item.volumeM3 <= 0 {
		item.volumeM3 = defaultItemVolumeM3
	}

	return item, nil
}

// RestoreItem reconstructs a line item from persistence, including any picked
// or delivered quantities recorded by fulfillment events.
func RestoreItem(
	id kernel.UUID,
	productID kernel.UUID,
	productName string,
	productSKU string,
	quantity int,
	unitPrice kernel.Money,
	originalPrice kernel.Money,
	weightKg float64,
	volumeM3 float64,
	refrigerated bool,
	pickedQty *int,
	deliveredQty *int,
) (*Item, error) {
	item, err := NewItem(id, productID, productName, productSKU, quantity,
		unitPrice, originalPrice, weightKg, volumeM3, refrigerated)
	if err != nil {
		return nil, err
	}

	item.pickedQty = pickedQty
	item.deliveredQty = deliveredQty
	return item, nil
}

// Validate ensures the Item was created through a constructor.
func (i *Item) Validate() error {
	if i == nil {
		return ErrItemIsNotConstructed
	}
	return i.guard.Validate(ErrItemIsNotConstructed)
}

// ID returns the item's unique identifier.
func (i *Item) ID() kernel.UUID { return i.id }

// ProductID returns the identifier of the snapshotted product.
func (i *Item) ProductID() kernel.UUID { return i.productID }

// ProductName returns the product name at order time.
func (i *Item) ProductName() string { return i.productName }

// ProductSKU returns the product SKU at order time.
func (i *Item) ProductSKU() string { return i.productSKU }

// Quantity returns the ordered quantity.
func (i *Item) Quantity() int { return i.quantity }

// UnitPrice returns the per-unit price the buyer pays.
func (i *Item) UnitPrice() kernel.Money { return i.unitPrice }

// OriginalPrice returns the live catalog price at order time.
func (i *Item) OriginalPrice() kernel.Money { return i.originalPrice }

// WeightKg returns the total weight of the line (per-unit weight × quantity).
func (i *Item) WeightKg() float64 { return i.weightKg * float64(i.quantity) }

// VolumeM3 returns the total volume of the line (per-unit volume × quantity).
func (i *Item) VolumeM3() float64 { return i.volumeM3 * float64(i.quantity) }

// UnitWeightKg returns the per-unit weight.
func (i *Item) UnitWeightKg() float64 { return i.weightKg }

// UnitVolumeM3 returns the per-unit volume.
func (i *Item) UnitVolumeM3() float64 { return i.volumeM3 }

// Refrigerated reports whether the product requires a refrigerated vehicle.
func (i *Item) Refrigerated() bool { return i.refrigerated }

// PickedQty returns the quantity confirmed picked, nil before pickup.
func (i *Item) PickedQty() *int { return i.pickedQty }

// DeliveredQty returns the quantity confirmed delivered, nil before delivery.
func (i *Item) DeliveredQty() *int { return i.deliveredQty }

// LineTotal returns quantity × unit price.
func (i *Item) LineTotal() kernel.Money {
	return i.unitPrice.MulQty(i.quantity)
}

// MarkPicked records the picked quantity when the order leaves the warehouse.
func (i *Item) MarkPicked(qty int) error {
	if qty < 0 || qty > i.quantity {
		return errs.NewValueIsOutOfRangeError("picked quantity", qty, 0, i.quantity)
	}
	i.pickedQty = &qty
	return nil
}

// MarkDelivered records the delivered quantity on delivery confirmation.
func (i *Item) MarkDelivered(qty int) error {
	if qty < 0 || qty > i.quantity {
		return errs.NewValueIsOutOfRangeError("delivered quantity", qty, 0, i.quantity)
	}
	i.deliveredQty = &qty
	return nil
}

func (i *Item) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	i.id = id
	return nil
}

func (i *Item) setProductID(productID kernel.UUID) error {
	if err := productID.Validate(); err != nil {
		return err
	}
	i.productID = productID
	return nil
}

func (i *Item) setProductName(name string) error {
	if name == "" {
		return ErrProductNameIsRequired
	}
	i.productName = name
	return nil
}

func (i *Item) setProductSKU(sku string) error {
	if sku == "" {
		return ErrProductSKUIsRequired
	}
	i.productSKU = sku
	return nil
}

func (i *Item) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}
	i.quantity = quantity
	return nil
}

// changeQuantity is used by the aggregate when a modification changes the
// ordered quantity. Totals are recomputed by the aggregate afterwards.
func (i *Item) changeQuantity(quantity int) error {
	return i.setQuantity(quantity)
}
