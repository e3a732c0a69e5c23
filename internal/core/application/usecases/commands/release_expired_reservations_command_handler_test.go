package commands_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/stock"
)

type sweepFixture struct {
	stockRepo *MockStockRepository
	uow       *MockUoW
	factory   *MockUoWFactory
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()

	f := &sweepFixture{
		stockRepo: new(MockStockRepository),
		uow:       new(MockUoW),
		factory:   new(MockUoWFactory),
	}

	f.uow.On("Begin", mock.Anything).Return(nil)
	f.uow.On("Rollback", mock.Anything).Return(nil)
	f.uow.On("StockRepository").Return(f.stockRepo)
	f.factory.On("Create").Return(f.uow)

	return f
}

func expiredReservation(t *testing.T, quantity int) *stock.Reservation {
	t.Helper()

	created := time.Now().Add(-2 * time.Hour)
	reservation, err := stock.NewReservation(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), quantity,
		created.Add(stock.DefaultReservationTTL), created,
	)
	require.NoError(t, err)
	return reservation
}

func TestReleaseExpiredReservationsCommandHandler_Handle(t *testing.T) {
	t.Run("should expire the batch and return the stock", func(t *testing.T) {
		ctx := t.Context()
		f := newSweepFixture(t)

		first := expiredReservation(t, 4)
		second := expiredReservation(t, 7)

		f.stockRepo.On("GetExpiredReservations", ctx, mock.Anything, mock.Anything).
			Return([]*stock.Reservation{first, second}, nil).Once()
		f.stockRepo.On("UpdateReservation", ctx, first).Return(nil).Once()
		f.stockRepo.On("UpdateReservation", ctx, second).Return(nil).Once()
		f.stockRepo.On("ReturnQuantity", ctx, first.ProductID(), 4).Return(nil).Once()
		f.stockRepo.On("ReturnQuantity", ctx, second.ProductID(), 7).Return(nil).Once()
		f.uow.On("Commit", ctx).Return(nil).Once()

		handler := commands.NewReleaseExpiredReservationsCommandHandler(f.factory)
		cmd := commands.NewReleaseExpiredReservationsCommand()

		require.NoError(t, handler.Handle(ctx, cmd))

		assert.Equal(t, stock.ReservationStatusExpired, first.Status())
		assert.Equal(t, stock.ReservationStatusExpired, second.Status())
		f.stockRepo.AssertExpectations(t)
		f.uow.AssertExpectations(t)
	})

	t.Run("should not commit an empty sweep", func(t *testing.T) {
		ctx := t.Context()
		f := newSweepFixture(t)

		f.stockRepo.On("GetExpiredReservations", ctx, mock.Anything, mock.Anything).
			Return([]*stock.Reservation{}, nil).Once()

		handler := commands.NewReleaseExpiredReservationsCommandHandler(f.factory)
		cmd := commands.NewReleaseExpiredReservationsCommand()

		require.NoError(t, handler.Handle(ctx, cmd))
		f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("should reject a zero-value command", func(t *testing.T) {
		f := newSweepFixture(t)
		handler := commands.NewReleaseExpiredReservationsCommandHandler(f.factory)

		err := handler.Handle(t.Context(), commands.ReleaseExpiredReservationsCommand{})
		assert.ErrorIs(t, err, commands.ErrReleaseExpiredReservationsCommandIsNotConstructed)
	})
}
