package order

import (
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

const (
	// taxRate is applied to the subtotal on every recalculation.
	taxRate = 0.10

	// unitsPerPackage drives the package count estimate used for route
	// capacity and service time.
	unitsPerPackage = 10
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrModificationNotAllowed is returned when items are changed on an order
	// that already left the draft/submitted stage.
	ErrModificationNotAllowed = errors.New("order can no longer be modified")

	// ErrCancellationNotAllowed is returned when cancellation is requested for
	// an order that is already being fulfilled.
	ErrCancellationNotAllowed = errors.New("order can no longer be cancelled")

	// ErrFulfillmentAlreadyAssigned is returned when a pickup booking or
	// delivery stop is assigned to an order that already has one. An order has
	// at most one fulfillment assignment at a time.
	ErrFulfillmentAlreadyAssigned = errors.New("order already has a fulfillment assignment")

	// ErrDeliveryLocationIsRequired is returned when a delivery order is
	// created without a destination.
	ErrDeliveryLocationIsRequired = errs.NewValueIsRequiredError("delivery location")
)

// ModificationNotAllowedError reports an item change rejected because of the
// order's status. It unwraps to ErrModificationNotAllowed.
type ModificationNotAllowedError struct {
	Status Status
}

func NewModificationNotAllowedError(status Status) *ModificationNotAllowedError {
	return &ModificationNotAllowedError{Status: status}
}

func (e *ModificationNotAllowedError) Error() string {
	return fmt.Sprintf("%s: status is %s", ErrModificationNotAllowed, e.Status)
}

func (e *ModificationNotAllowedError) Unwrap() error {
	return ErrModificationNotAllowed
}

// CancellationNotAllowedError reports a cancellation rejected because of the
// order's status. It unwraps to ErrCancellationNotAllowed.
type CancellationNotAllowedError struct {
	Status Status
}

func NewCancellationNotAllowedError(status Status) *CancellationNotAllowedError {
	return &CancellationNotAllowedError{Status: status}
}

func (e *CancellationNotAllowedError) Error() string {
	return fmt.Sprintf("%s: status is %s", ErrCancellationNotAllowed, e.Status)
}

func (e *CancellationNotAllowedError) Unwrap() error {
	return ErrCancellationNotAllowed
}

// Order is the aggregate root for a single-vendor order produced by a cart
// checkout. It owns its line items, its monetary totals, and its lifecycle
// status.
//
// Order maintains these invariants:
//   - total = subtotal + tax + shipping - discount, floored at zero
//   - tax is always 10% of the subtotal
//   - items can only change while the order is draft or submitted
//   - status changes follow the transition table in status.go
//   - at most one of pickup booking / delivery stop is assigned
type Order struct { //nolint:recvcheck //using for validation
	id               kernel.UUID
	orderNumber      string
	buyerID          kernel.UUID
	vendorID         kernel.UUID
	cartID           kernel.UUID
	status           Status
	fulfillmentType  FulfillmentType
	deliveryLocation *kernel.GeoPoint
	items            []*Item

	subtotal kernel.Money
	tax      kernel.Money
	discount kernel.Money
	shipping kernel.Money
	total    kernel.Money

	urgent           bool
	requiresApproval bool
	expectedAt       *time.Time

	pickupBookingID *kernel.UUID
	deliveryStopID  *kernel.UUID

	paymentStatus    PaymentStatus
	paymentDue       *time.Time
	paidAt           *time.Time
	paymentReference string

	metadata  map[string]string
	createdAt time.Time

	guard guard.ConstructorGuard
}

// NewOrder creates a draft order for one vendor's share of a cart. Delivery
// orders must carry a destination; pickup orders must not.
//
// The order starts with no items. Totals are zero until items are added and
// ApplyPricing is called.
func NewOrder(
	id kernel.UUID,
	orderNumber string,
	buyerID kernel.UUID,
	vendorID kernel.UUID,
	cartID kernel.UUID,
	fulfillmentType FulfillmentType,
	deliveryLocation *kernel.GeoPoint,
	urgent bool,
	now time.Time,
) (*Order, error) {
	order := &Order{
		status:        StatusDraft,
		paymentStatus: PaymentStatusPending,
		urgent:        urgent,
		metadata:      make(map[string]string),
		createdAt:     now,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		order.setID(id),
		order.setOrderNumber(orderNumber),
		order.setBuyerID(buyerID),
		order.setVendorID(vendorID),
		order.setCartID(cartID),
		order.setFulfillment(fulfillmentType, deliveryLocation),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// RestoreOrder reconstructs an order from persistence without re-running the
// creation rules. Totals are taken as stored, not recalculated.
func RestoreOrder(
	id kernel.UUID,
	orderNumber string,
	buyerID kernel.UUID,
	vendorID kernel.UUID,
	cartID kernel.UUID,
	status Status,
	fulfillmentType FulfillmentType,
	deliveryLocation *kernel.GeoPoint,
	items []*Item,
	subtotal kernel.Money,
	tax kernel.Money,
	discount kernel.Money,
	shipping kernel.Money,
	total kernel.Money,
	urgent bool,
	requiresApproval bool,
	expectedAt *time.Time,
	pickupBookingID *kernel.UUID,
	deliveryStopID *kernel.UUID,
	paymentStatus PaymentStatus,
	paymentDue *time.Time,
	paidAt *time.Time,
	paymentReference string,
	metadata map[string]string,
	createdAt time.Time,
) (*Order, error) {
	order, err := NewOrder(id, orderNumber, buyerID, vendorID, cartID,
		fulfillmentType, deliveryLocation, urgent, createdAt)
	if err != nil {
		return nil, err
	}

	if err := errors.Join(status.Validate(), paymentStatus.Validate()); err != nil {
		return nil, err
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}

	order.status = status
	order.items = items
	order.subtotal = subtotal
	order.tax = tax
	order.discount = discount
	order.shipping = shipping
	order.total = total
	order.requiresApproval = requiresApproval
	order.expectedAt = expectedAt
	order.pickupBookingID = pickupBookingID
	order.deliveryStopID = deliveryStopID
	order.paymentStatus = paymentStatus
	order.paymentDue = paymentDue
	order.paidAt = paidAt
	order.paymentReference = paymentReference
	if metadata != nil {
		order.metadata = metadata
	}

	return order, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID                      { return o.id }
func (o *Order) OrderNumber() string                  { return o.orderNumber }
func (o *Order) BuyerID() kernel.UUID                 { return o.buyerID }
func (o *Order) VendorID() kernel.UUID                { return o.vendorID }
func (o *Order) CartID() kernel.UUID                  { return o.cartID }
func (o *Order) Status() Status                       { return o.status }
func (o *Order) FulfillmentType() FulfillmentType     { return o.fulfillmentType }
func (o *Order) DeliveryLocation() *kernel.GeoPoint   { return o.deliveryLocation }
func (o *Order) Items() []*Item                       { return o.items }
func (o *Order) Subtotal() kernel.Money               { return o.subtotal }
func (o *Order) Tax() kernel.Money                    { return o.tax }
func (o *Order) Discount() kernel.Money               { return o.discount }
func (o *Order) Shipping() kernel.Money               { return o.shipping }
func (o *Order) Total() kernel.Money                  { return o.total }
func (o *Order) Urgent() bool                         { return o.urgent }
func (o *Order) RequiresApproval() bool               { return o.requiresApproval }
func (o *Order) ExpectedAt() *time.Time               { return o.expectedAt }
func (o *Order) PickupBookingID() *kernel.UUID        { return o.pickupBookingID }
func (o *Order) DeliveryStopID() *kernel.UUID         { return o.deliveryStopID }
func (o *Order) PaymentStatus() PaymentStatus         { return o.paymentStatus }
func (o *Order) PaymentDue() *time.Time               { return o.paymentDue }
func (o *Order) PaidAt() *time.Time                   { return o.paidAt }
func (o *Order) PaymentReference() string             { return o.paymentReference }
func (o *Order) Metadata() map[string]string          { return o.metadata }
func (o *Order) CreatedAt() time.Time                 { return o.createdAt }

// CanBeModified reports whether line items may still change. Only draft and
// submitted orders are open for modification.
func (o *Order) CanBeModified() bool {
	return o.status == StatusDraft || o.status == StatusSubmitted
}

// CanBeCancelled reports whether the buyer may still cancel. Once preparation
// starts, cancellation requires vendor involvement and is rejected here.
func (o *Order) CanBeCancelled() bool {
	return o.status == StatusDraft || o.status == StatusSubmitted || o.status == StatusConfirmed
}

// AddItem appends a line item and recalculates totals. Adding the same product
// twice folds into a single line with the combined quantity.
func (o *Order) AddItem(item *Item) error {
	if !o.CanBeModified() {
		return NewModificationNotAllowedError(o.status)
	}
	if err := item.Validate(); err != nil {
		return err
	}

	for _, existing := range o.items {
		if existing.ProductID().IsEqual(item.ProductID()) {
			if err := existing.changeQuantity(existing.Quantity() + item.Quantity()); err != nil {
				return err
			}
			o.recalculateTotals()
			return nil
		}
	}

	o.items = append(o.items, item)
	o.recalculateTotals()
	return nil
}

// RemoveItem deletes a line item and recalculates totals.
func (o *Order) RemoveItem(itemID kernel.UUID) error {
	if !o.CanBeModified() {
		return NewModificationNotAllowedError(o.status)
	}

	for i, item := range o.items {
		if item.ID().IsEqual(itemID) {
			o.items = append(o.items[:i], o.items[i+1:]...)
			o.recalculateTotals()
			return nil
		}
	}
	return errs.NewObjectNotFoundError("item", itemID)
}

// ChangeItemQuantity updates a line's quantity and recalculates totals.
func (o *Order) ChangeItemQuantity(itemID kernel.UUID, quantity int) error {
	if !o.CanBeModified() {
		return NewModificationNotAllowedError(o.status)
	}

	for _, item := range o.items {
		if item.ID().IsEqual(itemID) {
			if err := item.changeQuantity(quantity); err != nil {
				return err
			}
			o.recalculateTotals()
			return nil
		}
	}
	return errs.NewObjectNotFoundError("item", itemID)
}

// ApplyPricing records the computed discount and shipping fee and
// recalculates totals. Tax stays a fixed share of the subtotal.
func (o *Order) ApplyPricing(discount, shipping kernel.Money) {
	o.discount = discount
	o.shipping = shipping
	o.recalculateTotals()
}

// ChangeStatus moves the order to the target status when the transition table
// allows it.
func (o *Order) ChangeStatus(to Status) error {
	next, err := o.status.TransitionTo(to)
	if err != nil {
		return err
	}
	o.status = next
	return nil
}

// Cancel moves the order to cancelled when the buyer-facing cancellation
// window is still open.
func (o *Order) Cancel() error {
	if !o.CanBeCancelled() {
		return NewCancellationNotAllowedError(o.status)
	}
	return o.ChangeStatus(StatusCancelled)
}

// AssignPickupBooking links the order to a pickup bay booking.
func (o *Order) AssignPickupBooking(bookingID kernel.UUID) error {
	if err := bookingID.Validate(); err != nil {
		return err
	}
	if o.fulfillmentType != FulfillmentTypePickup {
		return errs.NewValueIsInvalidError("fulfillment type")
	}
	if o.pickupBookingID != nil || o.deliveryStopID != nil {
		return ErrFulfillmentAlreadyAssigned
	}
	o.pickupBookingID = &bookingID
	return nil
}

// AssignDeliveryStop links the order to a stop on a delivery route.
func (o *Order) AssignDeliveryStop(stopID kernel.UUID) error {
	if err := stopID.Validate(); err != nil {
		return err
	}
	if o.fulfillmentType != FulfillmentTypeDelivery {
		return errs.NewValueIsInvalidError("fulfillment type")
	}
	if o.pickupBookingID != nil || o.deliveryStopID != nil {
		return ErrFulfillmentAlreadyAssigned
	}
	o.deliveryStopID = &stopID
	return nil
}

// ClearFulfillment detaches any pickup booking or delivery stop, used when a
// cancellation releases fulfillment capacity.
func (o *Order) ClearFulfillment() {
	o.pickupBookingID = nil
	o.deliveryStopID = nil
}

// MarkPaid records a successful payment.
func (o *Order) MarkPaid(reference string, at time.Time) {
	o.paymentStatus = PaymentStatusPaid
	o.paymentReference = reference
	o.paidAt = &at
	o.paymentDue = nil
}

// MarkPaymentPending records a credit-terms payment with its due date.
func (o *Order) MarkPaymentPending(due time.Time) {
	o.paymentStatus = PaymentStatusPending
	o.paymentDue = &due
}

// MarkPaymentFailed records a failed charge.
func (o *Order) MarkPaymentFailed() {
	o.paymentStatus = PaymentStatusFailed
}

// MarkRefunded records a refund issued on cancellation.
func (o *Order) MarkRefunded() {
	o.paymentStatus = PaymentStatusRefunded
}

// SetExpectedDelivery records the computed expected fulfillment date.
func (o *Order) SetExpectedDelivery(at time.Time) {
	o.expectedAt = &at
}

// SetRequiresApproval flags the order for manual approval before confirmation.
func (o *Order) SetRequiresApproval(required bool) {
	o.requiresApproval = required
}

// PutMetadata stores a key/value pair on the order.
func (o *Order) PutMetadata(key, value string) {
	o.metadata[key] = value
}

// TotalQuantity returns the summed quantity across all lines.
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.items {
		total += item.Quantity()
	}
	return total
}

// TotalWeightKg returns the summed weight across all lines.
func (o *Order) TotalWeightKg() float64 {
	total := 0.0
	for _, item := range o.items {
		total += item.WeightKg()
	}
	return total
}

// TotalVolumeM3 returns the summed volume across all lines.
func (o *Order) TotalVolumeM3() float64 {
	total := 0.0
	for _, item := range o.items {
		total += item.VolumeM3()
	}
	return total
}

// PackageCount estimates how many packages the order ships as, one package
// per started batch of ten units.
func (o *Order) PackageCount() int {
	qty := o.TotalQuantity()
	if qty == 0 {
		return 0
	}
	return (qty + unitsPerPackage - 1) / unitsPerPackage
}

// RequiresRefrigeration reports whether any line needs a refrigerated vehicle.
func (o *Order) RequiresRefrigeration() bool {
	for _, item := range o.items {
		if item.Refrigerated() {
			return true
		}
	}
	return false
}

func (o *Order) recalculateTotals() {
	subtotal := kernel.MustMoney(0)
	for _, item := range o.items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	o.subtotal = subtotal
	o.tax = subtotal.MulRate(taxRate)
	o.total = o.subtotal.Add(o.tax).Add(o.shipping).Sub(o.discount)
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setOrderNumber(orderNumber string) error {
	if orderNumber == "" {
		return errs.NewValueIsRequiredError("order number")
	}
	o.orderNumber = orderNumber
	return nil
}

func (o *Order) setBuyerID(buyerID kernel.UUID) error {
	if err := buyerID.Validate(); err != nil {
		return err
	}
	o.buyerID = buyerID
	return nil
}

func (o *Order) setVendorID(vendorID kernel.UUID) error {
	if err := vendorID.Validate(); err != nil {
		return err
	}
	o.vendorID = vendorID
	return nil
}

func (o *Order) setCartID(cartID kernel.UUID) error {
	if err := cartID.Validate(); err != nil {
		return err
	}
	o.cartID = cartID
	return nil
}

func (o *Order) setFulfillment(fulfillmentType FulfillmentType, location *kernel.GeoPoint) error {
	if err := fulfillmentType.Validate(); err != nil {
		return err
	}
	if fulfillmentType == FulfillmentTypeDelivery {
		if location == nil {
			return ErrDeliveryLocationIsRequired
		}
		if err := location.Validate(); err != nil {
			return err
		}
	}
	o.fulfillmentType = fulfillmentType
	o.deliveryLocation = location
	return nil
}
