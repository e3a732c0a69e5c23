package queries_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/kernel"
)

func TestNewGetOrderQuery(t *testing.T) {
	t.Run("should create query with valid order id", func(t *testing.T) {
		orderID := kernel.NewUUID()

		query, err := queries.NewGetOrderQuery(orderID)

		require.NoError(t, err)
		require.NoError(t, query.Validate())
		assert.True(t, query.OrderID().IsEqual(orderID))
	})

	t.Run("should reject zero order id", func(t *testing.T) {
		_, err := queries.NewGetOrderQuery(kernel.UUID{})

		require.Error(t, err)
	})

	t.Run("should reject zero-value query", func(t *testing.T) {
		var query queries.GetOrderQuery

		require.ErrorIs(t, query.Validate(), queries.ErrGetOrderQueryIsNotConstructed)
	})
}

func TestNewGetActiveOrdersQuery(t *testing.T) {
	t.Run("should create query with valid buyer id", func(t *testing.T) {
		buyerID := kernel.NewUUID()

		query, err := queries.NewGetActiveOrdersQuery(buyerID)

		require.NoError(t, err)
		require.NoError(t, query.Validate())
		assert.True(t, query.BuyerID().IsEqual(buyerID))
	})

	t.Run("should reject zero buyer id", func(t *testing.T) {
		_, err := queries.NewGetActiveOrdersQuery(kernel.UUID{})

		require.Error(t, err)
	})

	t.Run("should reject zero-value query", func(t *testing.T) {
		var query queries.GetActiveOrdersQuery

		require.ErrorIs(t, query.Validate(), queries.ErrGetActiveOrdersQueryIsNotConstructed)
	})
}

func TestNewGetPickupSheetQuery(t *testing.T) {
	t.Run("should create query with valid order id", func(t *testing.T) {
		orderID := kernel.NewUUID()

		query, err := queries.NewGetPickupSheetQuery(orderID)

		require.NoError(t, err)
		require.NoError(t, query.Validate())
		assert.True(t, query.OrderID().IsEqual(orderID))
	})

	t.Run("should reject zero order id", func(t *testing.T) {
		_, err := queries.NewGetPickupSheetQuery(kernel.UUID{})

		require.Error(t, err)
	})

	t.Run("should reject zero-value query", func(t *testing.T) {
		var query queries.GetPickupSheetQuery

		require.ErrorIs(t, query.Validate(), queries.ErrGetPickupSheetQueryIsNotConstructed)
	})
}
