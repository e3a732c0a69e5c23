package commands_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/fulfillment"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/stock"
	"marketplace/internal/core/ports"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllByCart(ctx context.Context, cartID kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ExistsForBuyerAndVendor(
	ctx context.Context, buyerID, vendorID kernel.UUID,
) (bool, error) {
	args := m.Called(ctx, buyerID, vendorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) GetDeliveredBefore(ctx context.Context, cutoff time.Time) ([]*order.Order, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) TrailingSpend(
	ctx context.Context, buyerID, vendorID kernel.UUID, since time.Time,
) (kernel.Money, error) {
	args := m.Called(ctx, buyerID, vendorID, since)
	return args.Get(0).(kernel.Money), args.Error(1)
}

type MockStockRepository struct{ mock.Mock }

func (m *MockStockRepository) ReserveQuantity(ctx context.Context, productID kernel.UUID, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

func (m *MockStockRepository) ReturnQuantity(ctx context.Context, productID kernel.UUID, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

func (m *MockStockRepository) AddReservation(ctx context.Context, r *stock.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockStockRepository) UpdateReservation(ctx context.Context, r *stock.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockStockRepository) GetReservationsByOrder(
	ctx context.Context, orderID kernel.UUID,
) ([]*stock.Reservation, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stock.Reservation), args.Error(1)
}

func (m *MockStockRepository) GetExpiredReservations(
	ctx context.Context, now time.Time, limit int,
) ([]*stock.Reservation, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stock.Reservation), args.Error(1)
}

func (m *MockStockRepository) AddBackorder(ctx context.Context, b *stock.Backorder) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

type MockFulfillmentRepository struct{ mock.Mock }

func (m *MockFulfillmentRepository) AddBooking(ctx context.Context, b *fulfillment.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockFulfillmentRepository) UpdateBooking(ctx context.Context, b *fulfillment.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockFulfillmentRepository) GetBooking(ctx context.Context, id kernel.UUID) (*fulfillment.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Booking), args.Error(1)
}

func (m *MockFulfillmentRepository) GetVendorBookingsBetween(
	ctx context.Context, vendorID kernel.UUID, from, to time.Time,
) ([]*fulfillment.Booking, error) {
	args := m.Called(ctx, vendorID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*fulfillment.Booking), args.Error(1)
}

func (m *MockFulfillmentRepository) AddRoute(ctx context.Context, r *fulfillment.Route) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockFulfillmentRepository) UpdateRoute(ctx context.Context, r *fulfillment.Route) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockFulfillmentRepository) GetRoute(ctx context.Context, id kernel.UUID) (*fulfillment.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Route), args.Error(1)
}

func (m *MockFulfillmentRepository) GetRouteByStop(
	ctx context.Context, stopID kernel.UUID,
) (*fulfillment.Route, error) {
	args := m.Called(ctx, stopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Route), args.Error(1)
}

func (m *MockFulfillmentRepository) GetOpenRoutesByDate(
	ctx context.Context, date time.Time,
) ([]*fulfillment.Route, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*fulfillment.Route), args.Error(1)
}

type MockCartRepository struct{ mock.Mock }

func (m *MockCartRepository) Get(ctx context.Context, id kernel.UUID) (*ports.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Cart), args.Error(1)
}

func (m *MockCartRepository) MarkCheckedOut(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPartyRepository struct{ mock.Mock }

func (m *MockPartyRepository) GetBuyer(ctx context.Context, id kernel.UUID) (*ports.BuyerProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.BuyerProfile), args.Error(1)
}

func (m *MockPartyRepository) GetVendor(ctx context.Context, id kernel.UUID) (*ports.VendorProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.VendorProfile), args.Error(1)
}

func (m *MockPartyRepository) GetContractRate(
	ctx context.Context, buyerID, vendorID kernel.UUID,
) (float64, error) {
	args := m.Called(ctx, buyerID, vendorID)
	return args.Get(0).(float64), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) StockRepository() ports.StockRepository {
	args := m.Called()
	return args.Get(0).(ports.StockRepository)
}

func (m *MockUoW) FulfillmentRepository() ports.FulfillmentRepository {
	args := m.Called()
	return args.Get(0).(ports.FulfillmentRepository)
}

func (m *MockUoW) CartRepository() ports.CartRepository {
	args := m.Called()
	return args.Get(0).(ports.CartRepository)
}

func (m *MockUoW) PartyRepository() ports.PartyRepository {
	args := m.Called()
	return args.Get(0).(ports.PartyRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockPaymentGateway struct{ mock.Mock }

func (m *MockPaymentGateway) Charge(
	ctx context.Context, buyerID, orderID kernel.UUID, amount kernel.Money,
) (ports.PaymentResult, error) {
	args := m.Called(ctx, buyerID, orderID, amount)
	return args.Get(0).(ports.PaymentResult), args.Error(1)
}

func (m *MockPaymentGateway) Refund(
	ctx context.Context, orderID kernel.UUID, reference string, amount kernel.Money,
) error {
	args := m.Called(ctx, orderID, reference, amount)
	return args.Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) NotifyOrderCreated(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockNotifier) NotifyStatusChanged(
	ctx context.Context, o *order.Order, from order.Status, actorID kernel.UUID,
) error {
	args := m.Called(ctx, o, from, actorID)
	return args.Error(0)
}

func (m *MockNotifier) NotifyHighValueOrder(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockNotifier) RequestRating(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

type MockRouteOptimizer struct{ mock.Mock }

func (m *MockRouteOptimizer) Optimize(
	ctx context.Context, depot kernel.GeoPoint, stops []*fulfillment.Stop,
) ([]*fulfillment.Stop, error) {
	args := m.Called(ctx, depot, stops)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*fulfillment.Stop), args.Error(1)
}

type MockDocumentGenerator struct{ mock.Mock }

func (m *MockDocumentGenerator) Generate(
	ctx context.Context, kind ports.DocumentKind, o *order.Order,
) ([]byte, error) {
	args := m.Called(ctx, kind, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDocumentGenerator) GeneratePickupSheet(
	ctx context.Context, o *order.Order, b *fulfillment.Booking,
) ([]byte, error) {
	args := m.Called(ctx, o, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockPreparationTimer struct{ mock.Mock }

func (m *MockPreparationTimer) StartPreparation(
	ctx context.Context, orderID kernel.UUID, expected time.Duration,
) error {
	args := m.Called(ctx, orderID, expected)
	return args.Error(0)
}

func (m *MockPreparationTimer) ClearPreparation(ctx context.Context, orderID kernel.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}
