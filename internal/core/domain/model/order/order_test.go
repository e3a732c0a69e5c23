package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
)

func newTestOrder(t *testing.T, fulfillmentType FulfillmentType) *Order {
	t.Helper()

	var location *kernel.GeoPoint
	if fulfillmentType == FulfillmentTypeDelivery {
		point, err := kernel.NewGeoPoint(-33.87, 151.21)
		require.NoError(t, err)
		location = &point
	}

	aggregate, err := NewOrder(
		kernel.NewUUID(),
		"ORD-20260901-AB12CD",
		kernel.NewUUID(),
		kernel.NewUUID(),
		kernel.NewUUID(),
		fulfillmentType,
		location,
		false,
		time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return aggregate
}

func newTestItem(t *testing.T, quantity int, unitPriceCents int64) *Item {
	t.Helper()

	item, err := NewItem(
		kernel.NewUUID(),
		kernel.NewUUID(),
		"Arabica Beans 1kg",
		"SKU-BEANS-1",
		quantity,
		kernel.MustMoney(unitPriceCents),
		kernel.MustMoney(unitPriceCents),
		0, 0, false,
	)
	require.NoError(t, err)
	return item
}

func Test_NewOrder(t *testing.T) {
	t.Run("should create a draft pickup order", func(t *testing.T) {
		aggregate := newTestOrder(t, FulfillmentTypePickup)

		assert.Equal(t, StatusDraft, aggregate.Status())
		assert.Equal(t, PaymentStatusPending, aggregate.PaymentStatus())
		assert.Empty(t, aggregate.Items())
		assert.True(t, aggregate.Total().IsZero())
		assert.Nil(t, aggregate.DeliveryLocation())
	})

	t.Run("should require a destination for delivery orders", func(t *testing.T) {
		_, err := NewOrder(
			kernel.NewUUID(),
			"ORD-20260901-AB12CD",
			kernel.NewUUID(),
			kernel.NewUUID(),
			kernel.NewUUID(),
			FulfillmentTypeDelivery,
			nil,
			false,
			time.Now(),
		)
		assert.ErrorIs(t, err, ErrDeliveryLocationIsRequired)
	})

	t.Run("should reject invalid identifiers", func(t *testing.T) {
		_, err := NewOrder(
			kernel.UUID{},
			"ORD-20260901-AB12CD",
			kernel.NewUUID(),
			kernel.NewUUID(),
			kernel.NewUUID(),
			FulfillmentTypePickup,
			nil,
			false,
			time.Now(),
		)
		assert.Error(t, err)
	})

	t.Run("should fail validation for a zero value", func(t *testing.T) {
		var aggregate Order
		assert.ErrorIs(t, aggregate.Validate(), ErrOrderIsNotConstructed)
	})
}

func Test_Order_Totals(t *testing.T) {
	t.Run("should keep the totals identity after item changes", func(t *testing.T) {
		aggregate := newTestOrder(t, FulfillmentTypePickup)

		require.NoError(t, aggregate.AddItem(newTestItem(t, 2, 1500)))
		require.NoError(t, aggregate.AddItem(newTestItem(t, 1, 1000)))

		assert.Equal(t, int64(4000), aggregate.Subtotal().Cents())
		assert.Equal(t, int64(400), aggregate.Tax().Cents())
		assert.Equal(t, int64(4400), aggregate.Total().Cents())

		aggregate.ApplyPricing(kernel.MustMoney(320), kernel.MustMoney(500))
		assert.Equal(t, int64(4580), aggregate.Total().Cents())

		expected := aggregate.Subtotal().
			Add(aggregate.Tax()).
			Add(aggregate.Shipping()).
			Sub(aggregate.Discount())
		assert.True(t, aggregate.Total().IsEqual(expected))
	})

	t.Run("should fold duplicate products into one line", func(t *testing.T) {
		aggregate := newTestOrder(t, FulfillmentTypePickup)
		item := newTestItem(t, 2, 1500)
		require.NoError(t, aggregate.AddItem(item))

		duplicate, err := NewItem(
			kernel.NewUUID(), item.ProductID(), item.ProductName(), item.ProductSKU(),
			3, item.UnitPrice(), item.OriginalPrice(), 0, 0, false,
		)
		require.NoError(t, err)
		require.NoError(t, aggregate.AddItem(duplicate))

		require.Len(t, aggregate.Items(), 1)
		assert.Equal(t, 5, aggregate.Items()[0].Quantity())
		assert.Equal(t, int64(7500), aggregate.Subtotal().Cents())
	})

	t.Run("should recalculate after removing an item", func(t *testing.T) {
		aggregate := newTestOrder(t, FulfillmentTypePickup)
		item := newTestItem(t, 2, 1500)
		require.NoError(t, aggregate.AddItem(item))
		require.NoError(t, aggregate.AddItem(newTestItem(t, 1, 1000)))

		require.NoError(t, aggregate.RemoveItem(item.ID()))
		assert.Equal(t, int64(1000), aggregate.Subtotal().Cents())
		assert.Equal(t, int64(100), aggregate.Tax().Cents())
	})

	t.Run("should report a missing item", func(t *testing.T) {
		aggregate := newTestOrder(t, FulfillmentTypePickup)
		err := aggregate.RemoveItem(kernel.NewUUID())
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func Test_Order_ModificationGuard(t *testing.T) {
	t.Run("should allow changes while draft or submitted", func(t *testing.T) {
		aggregate := newTestOrder(t, FulfillmentTypePickup)
		item := newTestItem(t, 2, 1500)
		require.NoError(t, aggregate.AddItem(item))

		require.NoError(t, aggregate.ChangeStatus(StatusSubmitted))
		require.NoError(t, aggregate.ChangeItemQuantity(item.ID(), 4))
		assert.Equal(t, int64(6000), aggregate.Subtotal().Cents())
	})

	t.Run("should reject changes once confirmed", func(t *testing.T) {
		aggregate := newTestOrder(t, FulfillmentTypePickup)
		item := newTestItem(t, 2, 1500)
		require.NoError(t, aggregate.AddItem(item))
		require.NoError(t, aggregate.ChangeStatus(StatusSubmitted))
		require.NoError(t, aggregate.ChangeStatus(StatusConfirmed))

		err := aggregate.ChangeItemQuantity(item.ID(), 4)
		assert.ErrorIs(t, err, ErrModificationNotAllowed)

		err = aggregate.AddItem(newTestItem(t, 1, 1000))
		assert.ErrorIs(t, err, ErrModificationNotAllowed)
	})
}

func Test_Order_Cancel(t *testing.T) {
	t.Run("should cancel a confirmed order", func(t *testing.T) {
		aggregate := newTestOrder(t, FulfillmentTypePickup)
		require.NoError(t, aggregate.ChangeStatus(StatusSubmitted))
		require.NoError(t, aggregate.ChangeStatus(StatusConfirmed))

		require.NoError(t, aggregate.Cancel())
		assert.Equal(t, StatusCancelled, aggregate.Status())
	})

	t.Run("should reject cancelling once preparation started", func(t *testing.T) {
		aggregate := newTestOrder(t, FulfillmentTypePickup)
		require.NoError(t, aggregate.ChangeStatus(StatusSubmitted))
		require.NoError(t, aggregate.ChangeStatus(StatusConfirmed))
		require.NoError(t, aggregate.ChangeStatus(StatusPreparing))

		err := aggregate.Cancel()
		assert.ErrorIs(t, err, ErrCancellationNotAllowed)
		assert.Equal(t, StatusPreparing, aggregate.Status())
	})
}

func Test_Order_FulfillmentAssignment(t *testing.T) {
	t.Run("should assign a pickup booking once", func(t *testing.T) {
		aggregate := newTestOrder(t, FulfillmentTypePickup)
		bookingID := kernel.NewUUID()

		require.NoError(t, aggregate.AssignPickupBooking(bookingID))
		require.NotNil(t, aggregate.PickupBookingID())
		assert.True(t, aggregate.PickupBookingID().IsEqual(bookingID))

		err := aggregate.AssignPickupBooking(kernel.NewUUID())
		assert.ErrorIs(t, err, ErrFulfillmentAlreadyAssigned)
	})

	t.Run("should reject a delivery stop on a pickup order", func(t *testing.T) {
		aggregate := newTestOrder(t, FulfillmentTypePickup)
		err := aggregate.AssignDeliveryStop(kernel.NewUUID())
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should release capacity on clear", func(t *testing.T) {
		aggregate := newTestOrder(t, FulfillmentTypeDelivery)
		require.NoError(t, aggregate.AssignDeliveryStop(kernel.NewUUID()))

		aggregate.ClearFulfillment()
		assert.Nil(t, aggregate.DeliveryStopID())
		require.NoError(t, aggregate.AssignDeliveryStop(kernel.NewUUID()))
	})
}

func Test_Order_LogisticsEstimates(t *testing.T) {
	aggregate := newTestOrder(t, FulfillmentTypeDelivery)

	item, err := NewItem(
		kernel.NewUUID(), kernel.NewUUID(), "Milk Crate", "SKU-MILK-12",
		12, kernel.MustMoney(2400), kernel.MustMoney(2400),
		0.5, 0.002, true,
	)
	require.NoError(t, err)
	require.NoError(t, aggregate.AddItem(item))
	require.NoError(t, aggregate.AddItem(newTestItem(t, 3, 1000)))

	assert.Equal(t, 15, aggregate.TotalQuantity())
	assert.Equal(t, 2, aggregate.PackageCount())
	assert.InDelta(t, 12*0.5+3*1.0, aggregate.TotalWeightKg(), 1e-9)
	assert.InDelta(t, 12*0.002+3*0.01, aggregate.TotalVolumeM3(), 1e-9)
	assert.True(t, aggregate.RequiresRefrigeration())
}

func Test_Order_Payment(t *testing.T) {
	t.Run("should record a successful payment", func(t *testing.T) {
		aggregate := newTestOrder(t, FulfillmentTypePickup)
		paidAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

		aggregate.MarkPaid("ch_12345", paidAt)

		assert.Equal(t, PaymentStatusPaid, aggregate.PaymentStatus())
		assert.Equal(t, "ch_12345", aggregate.PaymentReference())
		require.NotNil(t, aggregate.PaidAt())
		assert.Equal(t, paidAt, *aggregate.PaidAt())
		assert.Nil(t, aggregate.PaymentDue())
	})

	t.Run("should keep credit terms pending with a due date", func(t *testing.T) {
		aggregate := newTestOrder(t, FulfillmentTypePickup)
		due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

		aggregate.MarkPaymentPending(due)

		assert.Equal(t, PaymentStatusPending, aggregate.PaymentStatus())
		require.NotNil(t, aggregate.PaymentDue())
		assert.Equal(t, due, *aggregate.PaymentDue())
	})
}

func Test_RestoreOrder(t *testing.T) {
	t.Run("should take stored totals without recalculating", func(t *testing.T) {
		expectedAt := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
		item := newTestItem(t, 2, 1500)

		aggregate, err := RestoreOrder(
			kernel.NewUUID(),
			"ORD-20260901-AB12CD",
			kernel.NewUUID(),
			kernel.NewUUID(),
			kernel.NewUUID(),
			StatusPreparing,
			FulfillmentTypePickup,
			nil,
			[]*Item{item},
			kernel.MustMoney(3000),
			kernel.MustMoney(300),
			kernel.MustMoney(0),
			kernel.MustMoney(0),
			kernel.MustMoney(3300),
			false,
			true,
			&expectedAt,
			nil,
			nil,
			PaymentStatusPaid,
			nil,
			nil,
			"ch_12345",
			map[string]string{"source": "api"},
			time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)

		assert.Equal(t, StatusPreparing, aggregate.Status())
		assert.Equal(t, int64(3300), aggregate.Total().Cents())
		assert.True(t, aggregate.RequiresApproval())
		assert.Equal(t, "api", aggregate.Metadata()["source"])
	})

	t.Run("should reject an unknown status", func(t *testing.T) {
		_, err := RestoreOrder(
			kernel.NewUUID(), "ORD-20260901-AB12CD",
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			StatusUnknown, FulfillmentTypePickup, nil, nil,
			kernel.MustMoney(0), kernel.MustMoney(0), kernel.MustMoney(0),
			kernel.MustMoney(0), kernel.MustMoney(0),
			false, false, nil, nil, nil,
			PaymentStatusPending, nil, nil, "", nil, time.Now(),
		)
		assert.Error(t, err)
	})
}
