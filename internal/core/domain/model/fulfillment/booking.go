// Package fulfillment models the physical side of an order: pickup bay
// bookings for collect orders and vehicle routes with stops for delivered
// orders.
package fulfillment

import (
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

const (
	// pickupBaseDuration is the minimum bay time for any pickup.
	pickupBaseDuration = 15 * time.Minute
	// pickupPerItemDuration is added per unit on top of the base.
	pickupPerItemDuration = 2 * time.Minute
	// pickupMaxExtraDuration caps the per-item surcharge.
	pickupMaxExtraDuration = 30 * time.Minute
)

var (
	// ErrBookingIsNotConstructed is returned when a Booking was not created
	// through NewBooking or RestoreBooking.
	ErrBookingIsNotConstructed = errors.New("Booking must be created via NewBooking constructor")

	// ErrBookingNotActive is returned when completing or cancelling a booking
	// that already reached a terminal state.
	ErrBookingNotActive = errors.New("booking is not active")
)

// BookingStatus is the lifecycle state of a pickup bay booking.
type BookingStatus int

const (
	BookingStatusUnknown BookingStatus = iota
	BookingStatusBooked
	BookingStatusReady
	BookingStatusCompleted
	BookingStatusCancelled
	BookingStatusNoShow
)

func getBookingStatusStrings() map[BookingStatus]string {
	return map[BookingStatus]string{
		BookingStatusUnknown:   "unknown",
		BookingStatusBooked:    "booked",
		BookingStatusReady:     "ready",
		BookingStatusCompleted: "completed",
		BookingStatusCancelled: "cancelled",
		BookingStatusNoShow:    "no_show",
	}
}

// BookingStatusFromString parses a persisted booking status.
func BookingStatusFromString(value string) (BookingStatus, error) {
	for bs, name := range getBookingStatusStrings() {
		if name == value && bs != BookingStatusUnknown {
			return bs, nil
		}
	}
	return BookingStatusUnknown, errs.NewValueIsInvalidError("booking status")
}

// Validate returns an error for the zero value.
func (s BookingStatus) Validate() error {
	if _, ok := getBookingStatusStrings()[s]; !ok || s == BookingStatusUnknown {
		return errs.NewValueIsInvalidError("booking status")
	}
	return nil
}

func (s BookingStatus) String() string {
	if name, ok := getBookingStatusStrings()[s]; ok {
		return name
	}
	return "unknown"
}

// PickupDurationFor returns the bay time needed to hand over an order with
// the given total unit count. Small orders take the base duration; the
// per-unit surcharge is capped so bulk orders do not monopolize a bay.
func PickupDurationFor(totalQuantity int) time.Duration {
	extra := time.Duration(totalQuantity) * pickupPerItemDuration
	if extra > pickupMaxExtraDuration {
		extra = pickupMaxExtraDuration
	}
	return pickupBaseDuration + extra
}

// Booking reserves a warehouse bay for an order pickup during one time slot.
// The confirmation code is handed to the driver and checked at the gate.
type Booking struct { //nolint:recvcheck //using for validation
	id               kernel.UUID
	orderID          kernel.UUID
	vendorID         kernel.UUID
	bay              string
	slotStart        time.Time
	duration         time.Duration
	confirmationCode string
	status           BookingStatus
	createdAt        time.Time

	guard guard.ConstructorGuard
}

// NewBooking creates an active bay booking for the given slot.
func NewBooking(
	id kernel.UUID,
	orderID kernel.UUID,
	vendorID kernel.UUID,
	bay string,
	slotStart time.Time,
	duration time.Duration,
	confirmationCode string,
	now time.Time,
) (*Booking, error) {
	booking := &Booking{
		slotStart: slotStart,
		status:    BookingStatusBooked,
		createdAt: now,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		booking.setID(id),
		booking.setOrderID(orderID),
		booking.setVendorID(vendorID),
		booking.setBay(bay),
		booking.setConfirmationCode(confirmationCode),
		booking.setDuration(duration),
	); err != nil {
		return nil, err
	}

	return booking, nil
}

// RestoreBooking reconstructs a booking from persistence.
func RestoreBooking(
	id kernel.UUID,
	orderID kernel.UUID,
	vendorID kernel.UUID,
	bay string,
	slotStart time.Time,
	duration time.Duration,
	confirmationCode string,
	status BookingStatus,
	createdAt time.Time,
) (*Booking, error) {
	booking, err := NewBooking(id, orderID, vendorID, bay, slotStart, duration, confirmationCode, createdAt)
	if err != nil {
		return nil, err
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}

	booking.status = status
	return booking, nil
}

// Validate ensures the Booking was created through a constructor.
func (b *Booking) Validate() error {
	if b == nil {
		return ErrBookingIsNotConstructed
	}
	return b.guard.Validate(ErrBookingIsNotConstructed)
}

func (b *Booking) ID() kernel.UUID          { return b.id }
func (b *Booking) OrderID() kernel.UUID     { return b.orderID }
func (b *Booking) VendorID() kernel.UUID    { return b.vendorID }
func (b *Booking) Bay() string              { return b.bay }
func (b *Booking) SlotStart() time.Time     { return b.slotStart }
func (b *Booking) Duration() time.Duration  { return b.duration }
func (b *Booking) ConfirmationCode() string { return b.confirmationCode }
func (b *Booking) Status() BookingStatus    { return b.status }
func (b *Booking) CreatedAt() time.Time     { return b.createdAt }

// SlotEnd returns when the bay becomes free again.
func (b *Booking) SlotEnd() time.Time {
	return b.slotStart.Add(b.duration)
}

// IsActive reports whether the booking still occupies the bay.
func (b *Booking) IsActive() bool {
	return b.status == BookingStatusBooked || b.status == BookingStatusReady
}

// Overlaps reports whether another booking contends for the same bay time.
func (b *Booking) Overlaps(other *Booking) bool {
	if other == nil || b.bay != other.bay {
		return false
	}
	return b.slotStart.Before(other.SlotEnd()) && other.slotStart.Before(b.SlotEnd())
}

// MarkReady records that the order is packed and waiting at the bay.
func (b *Booking) MarkReady() error {
	if b.status != BookingStatusBooked {
		return fmt.Errorf("%w: status is %s", ErrBookingNotActive, b.status)
	}
	b.status = BookingStatusReady
	return nil
}

// ChangeDuration resizes the bay hold after the order it backs was modified.
func (b *Booking) ChangeDuration(duration time.Duration) error {
	if !b.IsActive() {
		return fmt.Errorf("%w: status is %s", ErrBookingNotActive, b.status)
	}
	return b.setDuration(duration)
}

// Complete marks the pickup as done.
func (b *Booking) Complete() error {
	if !b.IsActive() {
		return fmt.Errorf("%w: status is %s", ErrBookingNotActive, b.status)
	}
	b.status = BookingStatusCompleted
	return nil
}

// Cancel frees the bay slot.
func (b *Booking) Cancel() error {
	if !b.IsActive() {
		return fmt.Errorf("%w: status is %s", ErrBookingNotActive, b.status)
	}
	b.status = BookingStatusCancelled
	return nil
}

// MarkNoShow records that the buyer never arrived for the slot.
func (b *Booking) MarkNoShow() error {
	if !b.IsActive() {
		return fmt.Errorf("%w: status is %s", ErrBookingNotActive, b.status)
	}
	b.status = BookingStatusNoShow
	return nil
}

func (b *Booking) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	b.id = id
	return nil
}

func (b *Booking) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	b.orderID = orderID
	return nil
}

func (b *Booking) setVendorID(vendorID kernel.UUID) error {
	if err := vendorID.Validate(); err != nil {
		return err
	}
	b.vendorID = vendorID
	return nil
}

func (b *Booking) setBay(bay string) error {
	if bay == "" {
		return errs.NewValueIsRequiredError("bay")
	}
	b.bay = bay
	return nil
}

func (b *Booking) setConfirmationCode(code string) error {
	if code == "" {
		return errs.NewValueIsRequiredError("confirmation code")
	}
	b.confirmationCode = code
	return nil
}

func (b *Booking) setDuration(duration time.Duration) error {
	if duration <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("duration",
			fmt.Errorf("%s is not greater than 0", duration))
	}
	b.duration = duration
	return nil
}
