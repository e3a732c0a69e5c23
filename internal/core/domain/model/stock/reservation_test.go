package stock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/core/domain/model/kernel"
)

func newTestReservation(t *testing.T) *Reservation {
	t.Helper()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	reservation, err := NewReservation(
		kernel.NewUUID(),
		kernel.NewUUID(),
		kernel.NewUUID(),
		5,
		now.Add(DefaultReservationTTL),
		now,
	)
	require.NoError(t, err)
	return reservation
}

func Test_NewReservation(t *testing.T) {
	t.Run("should create an active reservation", func(t *testing.T) {
		reservation := newTestReservation(t)

		assert.Equal(t, ReservationStatusReserved, reservation.Status())
		assert.True(t, reservation.IsActive())
		assert.Equal(t, 5, reservation.Quantity())
	})

	t.Run("should reject a non positive quantity", func(t *testing.T) {
		_, err := NewReservation(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			0, time.Now().Add(time.Minute), time.Now(),
		)
		assert.Error(t, err)
	})

	t.Run("should fail validation for a zero value", func(t *testing.T) {
		var reservation Reservation
		assert.ErrorIs(t, reservation.Validate(), ErrReservationIsNotConstructed)
	})
}

func Test_Reservation_Lifecycle(t *testing.T) {
	t.Run("should confirm an active reservation", func(t *testing.T) {
		reservation := newTestReservation(t)

		require.NoError(t, reservation.Confirm())
		assert.Equal(t, ReservationStatusConfirmed, reservation.Status())
		assert.False(t, reservation.IsActive())
	})

	t.Run("should release an active reservation", func(t *testing.T) {
		reservation := newTestReservation(t)

		require.NoError(t, reservation.Release())
		assert.Equal(t, ReservationStatusReleased, reservation.Status())
	})

	t.Run("should not confirm twice", func(t *testing.T) {
		reservation := newTestReservation(t)
		require.NoError(t, reservation.Confirm())

		err := reservation.Confirm()
		assert.ErrorIs(t, err, ErrReservationNotActive)
	})

	t.Run("should not release a confirmed reservation", func(t *testing.T) {
		reservation := newTestReservation(t)
		require.NoError(t, reservation.Confirm())

		err := reservation.Release()
		assert.ErrorIs(t, err, ErrReservationNotActive)
	})
}

func Test_Reservation_Expiry(t *testing.T) {
	t.Run("should expire only after the deadline", func(t *testing.T) {
		reservation := newTestReservation(t)
		beforeDeadline := reservation.ExpiresAt().Add(-time.Second)
		afterDeadline := reservation.ExpiresAt().Add(time.Second)

		assert.False(t, reservation.IsExpired(beforeDeadline))
		assert.ErrorIs(t, reservation.Expire(beforeDeadline), ErrReservationNotActive)

		assert.True(t, reservation.IsExpired(afterDeadline))
		require.NoError(t, reservation.Expire(afterDeadline))
		assert.Equal(t, ReservationStatusExpired, reservation.Status())
	})

	t.Run("should never expire a confirmed reservation", func(t *testing.T) {
		reservation := newTestReservation(t)
		require.NoError(t, reservation.Confirm())

		afterDeadline := reservation.ExpiresAt().Add(time.Hour)
		assert.False(t, reservation.IsExpired(afterDeadline))
	})
}

func Test_Reservation_ChangeQuantity(t *testing.T) {
	t.Run("should resize an active hold", func(t *testing.T) {
		reservation := newTestReservation(t)

		require.NoError(t, reservation.ChangeQuantity(3))
		assert.Equal(t, 3, reservation.Quantity())
		assert.True(t, reservation.IsActive())
	})

	t.Run("should reject a released hold", func(t *testing.T) {
		reservation := newTestReservation(t)
		require.NoError(t, reservation.Release())

		err := reservation.ChangeQuantity(3)
		assert.ErrorIs(t, err, ErrReservationNotActive)
		assert.Equal(t, 5, reservation.Quantity())
	})

	t.Run("should reject a non-positive quantity", func(t *testing.T) {
		reservation := newTestReservation(t)
		assert.Error(t, reservation.ChangeQuantity(0))
	})
}
