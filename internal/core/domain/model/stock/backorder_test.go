package stock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/core/domain/model/kernel"
)

func Test_NewBackorder(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	t.Run("should record the unmet demand", func(t *testing.T) {
		backorder, err := NewBackorder(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), 4, false, now)
		require.NoError(t, err)

		assert.Equal(t, 4, backorder.Quantity())
		assert.Equal(t, "normal", backorder.Priority())
		assert.Equal(t, now, backorder.CreatedAt())
	})

	t.Run("should queue urgent demand at high priority", func(t *testing.T) {
		backorder, err := NewBackorder(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), 1, true, now)
		require.NoError(t, err)
		assert.Equal(t, "high", backorder.Priority())
	})

	t.Run("should reject a non-positive quantity", func(t *testing.T) {
		_, err := NewBackorder(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), 0, false, now)
		assert.Error(t, err)
	})

	t.Run("should reject a zero-value backorder", func(t *testing.T) {
		var backorder *Backorder
		assert.ErrorIs(t, backorder.Validate(), ErrBackorderIsNotConstructed)
		assert.ErrorIs(t, (&Backorder{}).Validate(), ErrBackorderIsNotConstructed)
	})
}
