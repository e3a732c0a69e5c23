package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/core/domain/model/fulfillment"
	"marketplace/internal/core/domain/model/kernel"
)

func testBookingAt(t *testing.T, bay string, start time.Time, duration time.Duration) *fulfillment.Booking {
	t.Helper()
	booking, err := fulfillment.NewBooking(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), bay, start, duration, "PUTEST0001", start.Add(-time.Hour),
	)
	require.NoError(t, err)
	return booking
}

func Test_PickupPlanner_PlanPickup(t *testing.T) {
	planner := NewPickupPlanner()

	// Tuesday morning, before opening.
	tuesday := time.Date(2026, 9, 1, 5, 0, 0, 0, time.UTC)

	t.Run("should book the first slot of the day on an empty calendar", func(t *testing.T) {
		slot, err := planner.PlanPickup(tuesday, 5, nil)
		require.NoError(t, err)

		assert.Equal(t, "A1", slot.Bay)
		assert.Equal(t, time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC), slot.Start)
		assert.Equal(t, 25*time.Minute, slot.Duration)
	})

	t.Run("should move to the next bay when the first is taken", func(t *testing.T) {
		opening := time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)
		existing := []*fulfillment.Booking{
			testBookingAt(t, "A1", opening, 30*time.Minute),
		}

		slot, err := planner.PlanPickup(tuesday, 5, existing)
		require.NoError(t, err)
		assert.Equal(t, "A2", slot.Bay)
		assert.Equal(t, opening, slot.Start)
	})

	t.Run("should respect the facility concurrency cap", func(t *testing.T) {
		opening := time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)
		existing := []*fulfillment.Booking{
			testBookingAt(t, "A1", opening, 30*time.Minute),
			testBookingAt(t, "A2", opening, 30*time.Minute),
			testBookingAt(t, "A3", opening, 30*time.Minute),
		}

		slot, err := planner.PlanPickup(tuesday, 5, existing)
		require.NoError(t, err)
		// Bays B1..B3 are free at 06:00 but staff are saturated.
		assert.Equal(t, opening.Add(30*time.Minute), slot.Start)
	})

	t.Run("should skip weekends", func(t *testing.T) {
		// Friday after closing: nothing fits that day anymore.
		friday := time.Date(2026, 9, 4, 15, 0, 0, 0, time.UTC)

		slot, err := planner.PlanPickup(friday, 5, nil)
		require.NoError(t, err)
		assert.Equal(t, time.Monday, slot.Start.Weekday())
		assert.Equal(t, time.Date(2026, 9, 7, 6, 0, 0, 0, time.UTC), slot.Start)
	})

	t.Run("should not book a slot running past closing", func(t *testing.T) {
		// 13:30 start with a 45 minute handover would end at 14:15.
		afternoon := time.Date(2026, 9, 1, 13, 0, 0, 0, time.UTC)

		slot, err := planner.PlanPickup(afternoon, 100, nil)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 9, 2, 6, 0, 0, 0, time.UTC), slot.Start)
	})

	t.Run("should fail when the window is fully booked", func(t *testing.T) {
		tight := NewVendorPickupPlanner(0, 0, []string{"A1"}, 1)

		var existing []*fulfillment.Booking
		day := tuesday
		for i := 0; i <= pickupLookaheadDays; i++ {
			date := day.AddDate(0, 0, i)
			if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
				continue
			}
			start := time.Date(date.Year(), date.Month(), date.Day(), 6, 0, 0, 0, time.UTC)
			existing = append(existing, testBookingAt(t, "A1", start, 8*time.Hour))
		}

		_, err := tight.PlanPickup(tuesday, 5, existing)
		assert.ErrorIs(t, err, ErrNoPickupSlotAvailable)
	})

	t.Run("should honor the vendor's own hours and bays", func(t *testing.T) {
		late := NewVendorPickupPlanner(8, 12, []string{"D1", "D2"}, 2)

		slot, err := late.PlanPickup(tuesday, 5, nil)
		require.NoError(t, err)
		assert.Equal(t, "D1", slot.Bay)
		assert.Equal(t, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC), slot.Start)
	})

	t.Run("should fall back to defaults for an unconfigured vendor", func(t *testing.T) {
		unconfigured := NewVendorPickupPlanner(0, 0, nil, 0)

		slot, err := unconfigured.PlanPickup(tuesday, 5, nil)
		require.NoError(t, err)
		assert.Equal(t, "A1", slot.Bay)
		assert.Equal(t, time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC), slot.Start)
	})

	t.Run("should report exhausted bays when slots remain under the cap", func(t *testing.T) {
		tight := NewVendorPickupPlanner(0, 0, []string{"A1"}, 10)

		var existing []*fulfillment.Booking
		for i := 0; i <= pickupLookaheadDays; i++ {
			date := tuesday.AddDate(0, 0, i)
			if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
				continue
			}
			start := time.Date(date.Year(), date.Month(), date.Day(), 6, 0, 0, 0, time.UTC)
			existing = append(existing, testBookingAt(t, "A1", start, 8*time.Hour))
		}

		_, err := tight.PlanPickup(tuesday, 5, existing)
		assert.ErrorIs(t, err, ErrNoPickupBayAvailable)
	})
}
