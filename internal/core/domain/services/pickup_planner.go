package services

import (
	"errors"
	"time"

	"marketplace/internal/core/domain/model/fulfillment"
)

const (
	defaultPickupOpeningHour = 6
	defaultPickupClosingHour = 14
	pickupSlotInterval       = 30 * time.Minute
	pickupLookaheadDays      = 7

	// defaultPickupConcurrency is how many pickups the warehouse staff can
	// serve at the same time, regardless of free bays.
	defaultPickupConcurrency = 3
)

// defaultPickupBays are the loading bays assumed for vendors that have not
// configured their own layout.
var defaultPickupBays = []string{"A1", "A2", "A3", "B1", "B2", "B3"}

var (
	// ErrNoPickupSlotAvailable is returned when the booking window has no
	// slot left under the vendor's concurrency cap.
	ErrNoPickupSlotAvailable = errors.New("no pickup slot available")

	// ErrNoPickupBayAvailable is returned when slots exist but every bay is
	// booked for each of them.
	ErrNoPickupBayAvailable = errors.New("no pickup bay available")
)

// PickupSlot is a plannable bay reservation: where and when to collect, and
// how long the bay is held.
type PickupSlot struct {
	Bay      string
	Start    time.Time
	Duration time.Duration
}

// PickupPlanner is a domain service that finds the earliest free bay slot
// for an order pickup at one vendor's warehouse.
//
// Scheduling rules:
//   - pickups run during the vendor's opening hours on weekdays, in 30
//     minute slot starts
//   - the search covers the next seven days
//   - a slot needs a bay with no overlapping booking
//   - concurrent pickups at the vendor are capped so warehouse staff are
//     not overcommitted even when bays are free
type PickupPlanner struct {
	openingHour int
	closingHour int
	bays        []string
	concurrency int
}

// NewPickupPlanner creates a planner with the default warehouse layout.
func NewPickupPlanner() PickupPlanner {
	return NewVendorPickupPlanner(0, 0, nil, 0)
}

// NewVendorPickupPlanner creates a planner for a vendor's configured hours,
// bay layout, and staffing cap. Zero values fall back to the defaults.
func NewVendorPickupPlanner(openingHour, closingHour int, bays []string, concurrency int) PickupPlanner {
	planner := PickupPlanner{
		openingHour: openingHour,
		closingHour: closingHour,
		bays:        bays,
		concurrency: concurrency,
	}
	if planner.openingHour <= 0 {
		planner.openingHour = defaultPickupOpeningHour
	}
	if planner.closingHour <= 0 {
		planner.closingHour = defaultPickupClosingHour
	}
	if len(planner.bays) == 0 {
		planner.bays = defaultPickupBays
	}
	if planner.concurrency <= 0 {
		planner.concurrency = defaultPickupConcurrency
	}
	return planner
}

// PlanPickup returns the earliest slot that fits an order of the given size,
// considering the bookings already on the calendar.
func (p PickupPlanner) PlanPickup(
	from time.Time,
	totalQuantity int,
	existing []*fulfillment.Booking,
) (PickupSlot, error) {
	duration := fulfillment.PickupDurationFor(totalQuantity)
	baysExhausted := false

	for day := 0; day <= pickupLookaheadDays; day++ {
		date := from.AddDate(0, 0, day)
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			continue
		}

		opening := time.Date(date.Year(), date.Month(), date.Day(),
			p.openingHour, 0, 0, 0, date.Location())
		closing := time.Date(date.Year(), date.Month(), date.Day(),
			p.closingHour, 0, 0, 0, date.Location())

		for start := opening; start.Add(duration).Compare(closing) <= 0; start = start.Add(pickupSlotInterval) {
			if !start.After(from) {
				continue
			}
			if p.concurrentPickups(start, start.Add(duration), existing) >= p.concurrency {
				continue
			}

			for _, bay := range p.bays {
				if p.bayIsFree(bay, start, start.Add(duration), existing) {
					return PickupSlot{Bay: bay, Start: start, Duration: duration}, nil
				}
			}
			baysExhausted = true
		}
	}

	if baysExhausted {
		return PickupSlot{}, ErrNoPickupBayAvailable
	}
	return PickupSlot{}, ErrNoPickupSlotAvailable
}

func (p PickupPlanner) bayIsFree(bay string, start, end time.Time, existing []*fulfillment.Booking) bool {
	for _, booking := range existing {
		if !booking.IsActive() || booking.Bay() != bay {
			continue
		}
		if start.Before(booking.SlotEnd()) && booking.SlotStart().Before(end) {
			return false
		}
	}
	return true
}

func (p PickupPlanner) concurrentPickups(start, end time.Time, existing []*fulfillment.Booking) int {
	count := 0
	for _, booking := range existing {
		if !booking.IsActive() {
			continue
		}
		if start.Before(booking.SlotEnd()) && booking.SlotStart().Before(end) {
			count++
		}
	}
	return count
}
