// Package stock holds the inventory side of order processing. A Reservation
// pins quantity for an order while the checkout transaction is in flight;
// confirmation turns it into a committed decrement, release or expiry returns
// the quantity to the available pool.
package stock

import (
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

// DefaultReservationTTL is the fallback hold duration used when an order has
// no expected fulfillment date to pin the expiry to.
const DefaultReservationTTL = 15 * time.Minute

var (
	// ErrReservationIsNotConstructed is returned when a Reservation was not
	// created through NewReservation or RestoreReservation.
	ErrReservationIsNotConstructed = errors.New("Reservation must be created via NewReservation constructor")

	// ErrReservationNotActive is returned when confirming or releasing a
	// reservation that is no longer in the reserved state.
	ErrReservationNotActive = errors.New("reservation is not active")
)

// ReservationNotActiveError reports a state change rejected because the
// reservation already left the reserved state.
type ReservationNotActiveError struct {
	Status ReservationStatus
}

func NewReservationNotActiveError(status ReservationStatus) *ReservationNotActiveError {
	return &ReservationNotActiveError{Status: status}
}

func (e *ReservationNotActiveError) Error() string {
	return fmt.Sprintf("%s: status is %s", ErrReservationNotActive, e.Status)
}

func (e *ReservationNotActiveError) Unwrap() error {
	return ErrReservationNotActive
}

// ReservationStatus is the lifecycle state of a stock reservation.
type ReservationStatus int

const (
	ReservationStatusUnknown ReservationStatus = iota
	ReservationStatusReserved
	ReservationStatusConfirmed
	ReservationStatusReleased
	ReservationStatusExpired
)

func getReservationStatusStrings() map[ReservationStatus]string {
	return map[ReservationStatus]string{
		ReservationStatusUnknown:   "unknown",
		ReservationStatusReserved:  "reserved",
		ReservationStatusConfirmed: "confirmed",
		ReservationStatusReleased:  "released",
		ReservationStatusExpired:   "expired",
	}
}

// ReservationStatusFromString parses a persisted reservation status.
func ReservationStatusFromString(value string) (ReservationStatus, error) {
	for rs, name := range getReservationStatusStrings() {
		if name == value && rs != ReservationStatusUnknown {
			return rs, nil
		}
	}
	return ReservationStatusUnknown, errs.NewValueIsInvalidError("reservation status")
}

// Validate returns an error for the zero value.
func (s ReservationStatus) Validate() error {
	if _, ok := getReservationStatusStrings()[s]; !ok || s == ReservationStatusUnknown {
		return errs.NewValueIsInvalidError("reservation status")
	}
	return nil
}

func (s ReservationStatus) String() string {
	if name, ok := getReservationStatusStrings()[s]; ok {
		return name
	}
	return "unknown"
}

// Reservation pins product quantity for one order line during checkout.
//
// Reservations are created in the reserved state with an expiry. Confirming
// makes the hold permanent; releasing or expiring returns the quantity. All
// three outcomes are terminal.
type Reservation struct { //nolint:recvcheck //using for validation
	id        kernel.UUID
	orderID   kernel.UUID
	productID kernel.UUID
	quantity  int
	status    ReservationStatus
	expiresAt time.Time
	createdAt time.Time

	guard guard.ConstructorGuard
}

// NewReservation creates an active reservation expiring at the given time.
func NewReservation(
	id kernel.UUID,
	orderID kernel.UUID,
	productID kernel.UUID,
	quantity int,
	expiresAt time.Time,
	now time.Time,
) (*Reservation, error) {
	reservation := &Reservation{
		status:    ReservationStatusReserved,
		expiresAt: expiresAt,
		createdAt: now,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		reservation.setID(id),
		reservation.setOrderID(orderID),
		reservation.setProductID(productID),
		reservation.setQuantity(quantity),
	); err != nil {
		return nil, err
	}

	return reservation, nil
}

// RestoreReservation reconstructs a reservation from persistence.
func RestoreReservation(
	id kernel.UUID,
	orderID kernel.UUID,
	productID kernel.UUID,
	quantity int,
	status ReservationStatus,
	expiresAt time.Time,
	createdAt time.Time,
) (*Reservation, error) {
	reservation, err := NewReservation(id, orderID, productID, quantity, expiresAt, createdAt)
	if err != nil {
		return nil, err
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}

	reservation.status = status
	return reservation, nil
}

// Validate ensures the Reservation was created through a constructor.
func (r *Reservation) Validate() error {
	if r == nil {
		return ErrReservationIsNotConstructed
	}
	return r.guard.Validate(ErrReservationIsNotConstructed)
}

func (r *Reservation) ID() kernel.UUID           { return r.id }
func (r *Reservation) OrderID() kernel.UUID      { return r.orderID }
func (r *Reservation) ProductID() kernel.UUID    { return r.productID }
func (r *Reservation) Quantity() int             { return r.quantity }
func (r *Reservation) Status() ReservationStatus { return r.status }
func (r *Reservation) ExpiresAt() time.Time      { return r.expiresAt }
func (r *Reservation) CreatedAt() time.Time      { return r.createdAt }

// IsActive reports whether the reservation still holds stock.
func (r *Reservation) IsActive() bool {
	return r.status == ReservationStatusReserved
}

// IsExpired reports whether an active reservation passed its expiry.
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.IsActive() && now.After(r.expiresAt)
}

// Confirm makes the stock hold permanent once the order is placed.
func (r *Reservation) Confirm() error {
	if !r.IsActive() {
		return NewReservationNotActiveError(r.status)
	}
	r.status = ReservationStatusConfirmed
	return nil
}

// ChangeQuantity resizes an active hold when the order line it backs changes.
func (r *Reservation) ChangeQuantity(quantity int) error {
	if !r.IsActive() {
		return NewReservationNotActiveError(r.status)
	}
	return r.setQuantity(quantity)
}

// Release returns the held quantity, used on checkout failure or cancellation.
func (r *Reservation) Release() error {
	if !r.IsActive() {
		return NewReservationNotActiveError(r.status)
	}
	r.status = ReservationStatusReleased
	return nil
}

// Expire marks a stale reservation, used by the sweep job.
func (r *Reservation) Expire(now time.Time) error {
	if !r.IsExpired(now) {
		return NewReservationNotActiveError(r.status)
	}
	r.status = ReservationStatusExpired
	return nil
}

func (r *Reservation) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *Reservation) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	r.orderID = orderID
	return nil
}

func (r *Reservation) setProductID(productID kernel.UUID) error {
	if err := productID.Validate(); err != nil {
		return err
	}
	r.productID = productID
	return nil
}

func (r *Reservation) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}
	r.quantity = quantity
	return nil
}
