package commands_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
)

func deliveredOrder(t *testing.T) *order.Order {
	t.Helper()

	aggregate, err := order.NewOrder(
		kernel.NewUUID(), "ORD-20260830-CMP001",
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		order.FulfillmentTypePickup, nil, false,
		time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	for _, status := range []order.Status{
		order.StatusSubmitted, order.StatusConfirmed, order.StatusPreparing,
		order.StatusReadyForPickup, order.StatusInTransit, order.StatusDelivered,
	} {
		require.NoError(t, aggregate.ChangeStatus(status))
	}
	return aggregate
}

func TestCompleteDeliveredOrdersCommandHandler_Handle(t *testing.T) {
	t.Run("should complete delivered orders past the dispute window", func(t *testing.T) {
		ctx := t.Context()
		orderRepo := new(MockOrderRepository)
		uow := new(MockUoW)
		factory := new(MockUoWFactory)
		notifier := new(MockNotifier)

		aggregate := deliveredOrder(t)

		uow.On("Begin", mock.Anything).Return(nil)
		uow.On("Rollback", mock.Anything).Return(nil)
		uow.On("OrderRepository").Return(orderRepo)
		factory.On("Create").Return(uow)

		orderRepo.On("GetDeliveredBefore", ctx, mock.Anything).
			Return([]*order.Order{aggregate}, nil).Once()
		orderRepo.On("Update", ctx, aggregate).Return(nil).Once()
		uow.On("Commit", ctx).Return(nil).Once()
		notifier.On("NotifyStatusChanged", ctx, aggregate, order.StatusDelivered, mock.Anything).
			Return(nil).Once()
		notifier.On("RequestRating", ctx, aggregate).Return(nil).Once()

		handler := commands.NewCompleteDeliveredOrdersCommandHandler(factory, notifier)
		cmd := commands.NewCompleteDeliveredOrdersCommand()

		require.NoError(t, handler.Handle(ctx, cmd))

		assert.Equal(t, order.StatusCompleted, aggregate.Status())
		assert.Equal(t, "scheduler", aggregate.Metadata()["completed_by"])
		orderRepo.AssertExpectations(t)
		notifier.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("should do nothing when no orders qualify", func(t *testing.T) {
		ctx := t.Context()
		orderRepo := new(MockOrderRepository)
		uow := new(MockUoW)
		factory := new(MockUoWFactory)
		notifier := new(MockNotifier)

		uow.On("Begin", mock.Anything).Return(nil)
		uow.On("Rollback", mock.Anything).Return(nil)
		uow.On("OrderRepository").Return(orderRepo)
		factory.On("Create").Return(uow)

		orderRepo.On("GetDeliveredBefore", ctx, mock.Anything).
			Return([]*order.Order{}, nil).Once()

		handler := commands.NewCompleteDeliveredOrdersCommandHandler(factory, notifier)
		cmd := commands.NewCompleteDeliveredOrdersCommand()

		require.NoError(t, handler.Handle(ctx, cmd))
		uow.AssertNotCalled(t, "Commit", mock.Anything)
		notifier.AssertNotCalled(t, "NotifyStatusChanged",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
