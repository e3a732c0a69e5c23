package order

import (
	"errors"
	"fmt"

	"marketplace/internal/pkg/errs"
)

// Status represents the lifecycle state of an order. It implements a state
// machine with an explicit transition table; any transition not present in the
// table is rejected with an InvalidTransitionError.
//
// State transitions:
//
//	Draft ──> Submitted ──> Confirmed ──> Preparing ──┬──> ReadyForPickup ──┐
//	                                                  │                     v
//	                                                  └──────────────> InTransit ──> Delivered ──> Completed
//
// Cancelled is reachable from every non-terminal state.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	StatusUnknown Status = iota

	// StatusDraft is the initial state while the order is being assembled.
	// Orders are promoted to Submitted as soon as creation succeeds.
	StatusDraft

	// StatusSubmitted indicates the order has been placed and awaits vendor
	// confirmation. Submitted orders can still be modified.
	StatusSubmitted

	// StatusConfirmed indicates the vendor accepted the order. Confirmation
	// locks in the stock reservation.
	StatusConfirmed

	// StatusPreparing indicates the vendor is picking and packing the order.
	StatusPreparing

	// StatusReadyForPickup indicates the order is waiting in a pickup bay.
	// Only pickup orders pass through this state.
	StatusReadyForPickup

	// StatusInTransit indicates the order left the vendor's premises, either
	// collected by the buyer or loaded onto a delivery vehicle.
	StatusInTransit

	// StatusDelivered indicates the order reached the buyer.
	StatusDelivered

	// StatusCompleted is the final state of a successful order.
	StatusCompleted

	// StatusCancelled is the final state of an abandoned order. All
	// reservations and fulfillment artifacts are compensated on the way in.
	StatusCancelled
)

// ErrInvalidTransition is the sentinel wrapped by every InvalidTransitionError.
var ErrInvalidTransition = errors.New("invalid order status transition")

// InvalidTransitionError describes a status change rejected by the transition
// table. The order is left unchanged when this error is returned.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition: cannot transition from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

type transition struct {
	from Status
	to   Status
}

// transitionTable is the single source of truth for allowed status changes.
// The table is explicit rather than inferred: a transition is valid if and
// only if it appears here.
var transitionTable = map[transition]bool{
	{StatusDraft, StatusSubmitted}:            true,
	{StatusSubmitted, StatusConfirmed}:        true,
	{StatusConfirmed, StatusPreparing}:        true,
	{StatusPreparing, StatusReadyForPickup}:   true,
	{StatusPreparing, StatusInTransit}:        true,
	{StatusReadyForPickup, StatusInTransit}:   true,
	{StatusInTransit, StatusDelivered}:        true,
	{StatusDelivered, StatusCompleted}:        true,
	{StatusDraft, StatusCancelled}:            true,
	{StatusSubmitted, StatusCancelled}:        true,
	{StatusConfirmed, StatusCancelled}:        true,
	{StatusPreparing, StatusCancelled}:        true,
	{StatusReadyForPickup, StatusCancelled}:   true,
	{StatusInTransit, StatusCancelled}:        true,
	{StatusDelivered, StatusCancelled}:        true,
}

var statusStrings = map[Status]string{
	StatusUnknown:        "unknown",
	StatusDraft:          "draft",
	StatusSubmitted:      "submitted",
	StatusConfirmed:      "confirmed",
	StatusPreparing:      "preparing",
	StatusReadyForPickup: "ready_for_pickup",
	StatusInTransit:      "in_transit",
	StatusDelivered:      "delivered",
	StatusCompleted:      "completed",
	StatusCancelled:      "cancelled",
}

// statusValues is the reverse of statusStrings, built once so parsing is a
// single lookup.
var statusValues = func() map[string]Status {
	values := make(map[string]Status, len(statusStrings))
	for status, name := range statusStrings {
		values[name] = status
	}
	return values
}()

// StatusFromString parses a status from its string form, e.g. "confirmed".
// Returns an error for unknown values.
func StatusFromString(s string) (Status, error) {
	if status, ok := statusValues[s]; ok && status != StatusUnknown {
		return status, nil
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that the Status value is one of the defined states.
func (s Status) Validate() error {
	if s == StatusUnknown {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	if _, ok := statusStrings[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the snake_case name of the status, implementing fmt.Stringer.
func (s Status) String() string {
	if str, ok := statusStrings[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transitions exist from this status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo consults the transition table.
func (s Status) CanTransitionTo(to Status) bool {
	return transitionTable[transition{from: s, to: to}]
}

// TransitionTo validates the requested change against the transition table and
// returns the new status, or an InvalidTransitionError leaving the caller's
// state untouched.
func (s Status) TransitionTo(to Status) (Status, error) {
	if err := to.Validate(); err != nil {
		return StatusUnknown, err
	}
	if !s.CanTransitionTo(to) {
		return StatusUnknown, &InvalidTransitionError{From: s, To: to}
	}
	return to, nil
}
