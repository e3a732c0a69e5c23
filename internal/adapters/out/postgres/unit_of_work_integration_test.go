package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"marketplace/internal/adapters/out/postgres"
	"marketplace/internal/adapters/out/postgres/cartrepo"
	"marketplace/internal/adapters/out/postgres/fulfillmentrepo"
	"marketplace/internal/adapters/out/postgres/orderrepo"
	"marketplace/internal/adapters/out/postgres/partyrepo"
	"marketplace/internal/adapters/out/postgres/stockrepo"
	"marketplace/internal/core/domain/model/fulfillment"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/stock"
	"marketplace/internal/core/ports"
)

type UnitOfWorkTestSuite struct {
	suite.Suite
	container *pgcontainer.PostgresContainer
	db        *gorm.DB
	factory   *postgres.GormUnitOfWorkFactory
}

func (suite *UnitOfWorkTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:15-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("testuser"),
		pgcontainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(
		&orderrepo.OrderDTO{}, &orderrepo.ItemDTO{},
		&stockrepo.ProductStockDTO{}, &stockrepo.ReservationDTO{}, &stockrepo.BackorderDTO{},
		&fulfillmentrepo.BookingDTO{}, &fulfillmentrepo.RouteDTO{}, &fulfillmentrepo.StopDTO{},
		&cartrepo.CartDTO{}, &cartrepo.CartLineDTO{},
		&partyrepo.BuyerDTO{}, &partyrepo.VendorDTO{}, &partyrepo.ContractDTO{},
	)
	suite.Require().NoError(err)

	suite.factory = postgres.NewGormUnitOfWorkFactory(db)
}

func (suite *UnitOfWorkTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkTestSuite) SetupTest() {
	for _, table := range []string{
		"order_items", "orders", "reservations", "backorder_items", "product_stock",
		"pickup_bookings", "route_stops", "routes",
		"cart_lines", "carts", "buyers", "vendors", "contracts",
	} {
		err := suite.db.Exec("TRUNCATE TABLE " + table + " CASCADE").Error
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkTestSuite) newOrder(fulfillmentType order.FulfillmentType) *order.Order {
	var location *kernel.GeoPoint
	if fulfillmentType == order.FulfillmentTypeDelivery {
		point, err := kernel.NewGeoPoint(-33.90, 151.20)
		suite.Require().NoError(err)
		location = &point
	}

	aggregate, err := order.NewOrder(
		kernel.NewUUID(), kernel.NewOrderNumber(time.Now()),
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		fulfillmentType, location, false, time.Now().UTC().Truncate(time.Microsecond),
	)
	suite.Require().NoError(err)

	item, err := order.NewItem(
		kernel.NewUUID(), kernel.NewUUID(), "Arabica Beans 1kg", "SKU-BEANS-1",
		3, kernel.MustMoney(1500), kernel.MustMoney(1500), 1.0, 0.01, false,
	)
	suite.Require().NoError(err)
	suite.Require().NoError(aggregate.AddItem(item))

	return aggregate
}

func (suite *UnitOfWorkTestSuite) TestOrderRoundTrip() {
	ctx := context.Background()
	aggregate := suite.newOrder(order.FulfillmentTypePickup)
	aggregate.PutMetadata("approval_reason", "first_order")

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, aggregate))
	suite.Require().NoError(uow.Commit(ctx))

	loaded, err := suite.factory.Create().OrderRepository().Get(ctx, aggregate.ID())
	suite.Require().NoError(err)

	suite.True(loaded.IsEqual(aggregate))
	suite.Equal(aggregate.OrderNumber(), loaded.OrderNumber())
	suite.Equal(order.StatusDraft, loaded.Status())
	suite.Equal(aggregate.Subtotal().Cents(), loaded.Subtotal().Cents())
	suite.Equal(aggregate.Total().Cents(), loaded.Total().Cents())
	suite.Len(loaded.Items(), 1)
	suite.Equal("SKU-BEANS-1", loaded.Items()[0].ProductSKU())
	suite.Equal("first_order", loaded.Metadata()["approval_reason"])
}

func (suite *UnitOfWorkTestSuite) TestOrderUpdatePersistsItemRemoval() {
	ctx := context.Background()
	aggregate := suite.newOrder(order.FulfillmentTypePickup)

	extra, err := order.NewItem(
		kernel.NewUUID(), kernel.NewUUID(), "Robusta Beans 1kg", "SKU-BEANS-2",
		2, kernel.MustMoney(1000), kernel.MustMoney(1000), 1.0, 0.01, false,
	)
	suite.Require().NoError(err)
	suite.Require().NoError(aggregate.AddItem(extra))

	repo := suite.factory.Create().OrderRepository()
	suite.Require().NoError(repo.Add(ctx, aggregate))

	suite.Require().NoError(aggregate.RemoveItem(extra.ID()))
	suite.Require().NoError(repo.Update(ctx, aggregate))

	loaded, err := repo.Get(ctx, aggregate.ID())
	suite.Require().NoError(err)
	suite.Len(loaded.Items(), 1)
	suite.Equal(aggregate.Subtotal().Cents(), loaded.Subtotal().Cents())
}

func (suite *UnitOfWorkTestSuite) TestGetByNumberAndCart() {
	ctx := context.Background()
	aggregate := suite.newOrder(order.FulfillmentTypePickup)

	repo := suite.factory.Create().OrderRepository()
	suite.Require().NoError(repo.Add(ctx, aggregate))

	byNumber, err := repo.GetByNumber(ctx, aggregate.OrderNumber())
	suite.Require().NoError(err)
	suite.True(byNumber.IsEqual(aggregate))

	byCart, err := repo.GetAllByCart(ctx, aggregate.CartID())
	suite.Require().NoError(err)
	suite.Len(byCart, 1)

	exists, err := repo.ExistsForBuyerAndVendor(ctx, aggregate.BuyerID(), aggregate.VendorID())
	suite.Require().NoError(err)
	suite.True(exists)

	exists, err = repo.ExistsForBuyerAndVendor(ctx, kernel.NewUUID(), aggregate.VendorID())
	suite.Require().NoError(err)
	suite.False(exists)
}

func (suite *UnitOfWorkTestSuite) TestTrailingSpendSumsRecentOrders() {
	ctx := context.Background()
	buyerID := kernel.NewUUID()
	vendorID := kernel.NewUUID()
	repo := suite.factory.Create().OrderRepository()

	addOrder := func(createdAt time.Time, cancelled bool) {
		aggregate, err := order.NewOrder(
			kernel.NewUUID(), kernel.NewOrderNumber(createdAt),
			buyerID, vendorID, kernel.NewUUID(),
			order.FulfillmentTypePickup, nil, false,
			createdAt.UTC().Truncate(time.Microsecond),
		)
		suite.Require().NoError(err)

		item, err := order.NewItem(
			kernel.NewUUID(), kernel.NewUUID(), "Arabica Beans 1kg", "SKU-BEANS-1",
			3, kernel.MustMoney(1500), kernel.MustMoney(1500), 1.0, 0.01, false,
		)
		suite.Require().NoError(err)
		suite.Require().NoError(aggregate.AddItem(item))
		if cancelled {
			suite.Require().NoError(aggregate.Cancel())
		}
		suite.Require().NoError(repo.Add(ctx, aggregate))
	}

	now := time.Now()
	addOrder(now.Add(-24*time.Hour), false)
	addOrder(now.Add(-48*time.Hour), false)
	addOrder(now.Add(-24*time.Hour), true)     // cancelled, excluded
	addOrder(now.Add(-60*24*time.Hour), false) // outside the window

	spend, err := repo.TrailingSpend(ctx, buyerID, vendorID, now.Add(-30*24*time.Hour))
	suite.Require().NoError(err)
	// Two live orders at $49.50 each.
	suite.Equal(int64(9900), spend.Cents())

	spend, err = repo.TrailingSpend(ctx, buyerID, kernel.NewUUID(), now.Add(-30*24*time.Hour))
	suite.Require().NoError(err)
	suite.True(spend.IsZero())
}

func (suite *UnitOfWorkTestSuite) TestBackorderPersistence() {
	ctx := context.Background()

	backorder, err := stock.NewBackorder(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), 4, true,
		time.Now().UTC().Truncate(time.Microsecond),
	)
	suite.Require().NoError(err)

	repo := suite.factory.Create().StockRepository()
	suite.Require().NoError(repo.AddBackorder(ctx, backorder))

	var priority string
	err = suite.db.Raw(
		"SELECT priority FROM backorder_items WHERE id = ?", backorder.ID().Bytes(),
	).Scan(&priority).Error
	suite.Require().NoError(err)
	suite.Equal("high", priority)
}

func (suite *UnitOfWorkTestSuite) TestReserveQuantityGuardsAgainstOversell() {
	ctx := context.Background()
	productID := kernel.NewUUID()
	err := suite.db.Exec(
		"INSERT INTO product_stock (id, available_quantity, updated_at) VALUES (?, ?, NOW())",
		productID.Bytes(), 5,
	).Error
	suite.Require().NoError(err)

	repo := suite.factory.Create().StockRepository()

	suite.Require().NoError(repo.ReserveQuantity(ctx, productID, 3))

	err = repo.ReserveQuantity(ctx, productID, 3)
	suite.Require().ErrorIs(err, stock.ErrInsufficientStock)

	suite.Require().NoError(repo.ReturnQuantity(ctx, productID, 3))
	suite.Require().NoError(repo.ReserveQuantity(ctx, productID, 5))
}

func (suite *UnitOfWorkTestSuite) TestReservationLifecycleAndSweep() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	expired, err := stock.NewReservation(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), 2,
		now.Add(-time.Minute), now.Add(-20*time.Minute),
	)
	suite.Require().NoError(err)

	active, err := stock.NewReservation(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), 4,
		now.Add(stock.DefaultReservationTTL), now,
	)
	suite.Require().NoError(err)

	repo := suite.factory.Create().StockRepository()
	suite.Require().NoError(repo.AddReservation(ctx, expired))
	suite.Require().NoError(repo.AddReservation(ctx, active))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	overdue, err := uow.StockRepository().GetExpiredReservations(ctx, now, 10)
	suite.Require().NoError(err)
	suite.Require().NoError(uow.Commit(ctx))

	suite.Len(overdue, 1)
	suite.True(overdue[0].ID().IsEqual(expired.ID()))

	suite.Require().NoError(active.Confirm())
	suite.Require().NoError(repo.UpdateReservation(ctx, active))

	byOrder, err := repo.GetReservationsByOrder(ctx, active.OrderID())
	suite.Require().NoError(err)
	suite.Len(byOrder, 1)
	suite.Equal(stock.ReservationStatusConfirmed, byOrder[0].Status())
}

func (suite *UnitOfWorkTestSuite) TestBookingRoundTrip() {
	ctx := context.Background()
	slotStart := time.Date(2026, 9, 2, 6, 0, 0, 0, time.UTC)
	vendorID := kernel.NewUUID()

	booking, err := fulfillment.NewBooking(
		kernel.NewUUID(), kernel.NewUUID(), vendorID, "A1", slotStart,
		21*time.Minute, "PU1A2B3C4D", slotStart.Add(-24*time.Hour),
	)
	suite.Require().NoError(err)

	repo := suite.factory.Create().FulfillmentRepository()
	suite.Require().NoError(repo.AddBooking(ctx, booking))

	loaded, err := repo.GetBooking(ctx, booking.ID())
	suite.Require().NoError(err)
	suite.Equal("A1", loaded.Bay())
	suite.True(loaded.VendorID().IsEqual(vendorID))
	suite.Equal(21*time.Minute, loaded.Duration())
	suite.Equal(fulfillment.BookingStatusBooked, loaded.Status())

	window, err := repo.GetVendorBookingsBetween(ctx, vendorID, slotStart.Add(-time.Hour), slotStart.Add(time.Hour))
	suite.Require().NoError(err)
	suite.Len(window, 1)

	// Another vendor's calendar does not see the booking.
	window, err = repo.GetVendorBookingsBetween(ctx, kernel.NewUUID(), slotStart.Add(-time.Hour), slotStart.Add(time.Hour))
	suite.Require().NoError(err)
	suite.Empty(window)

	suite.Require().NoError(loaded.Cancel())
	suite.Require().NoError(repo.UpdateBooking(ctx, loaded))

	window, err = repo.GetVendorBookingsBetween(ctx, vendorID, slotStart.Add(-time.Hour), slotStart.Add(time.Hour))
	suite.Require().NoError(err)
	suite.Empty(window)
}

func (suite *UnitOfWorkTestSuite) TestRouteRoundTripWithStops() {
	ctx := context.Background()
	date := time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)

	route, err := fulfillment.NewRoute(
		kernel.NewUUID(), kernel.NewUUID(), date, kernel.ZoneSouth, 1000, 12, false,
	)
	suite.Require().NoError(err)

	location, err := kernel.NewGeoPoint(-33.97, 151.10)
	suite.Require().NoError(err)
	stop, err := fulfillment.NewStop(kernel.NewUUID(), kernel.NewUUID(), location, 2, 6.0, 0.06, false)
	suite.Require().NoError(err)
	suite.Require().NoError(route.AddStop(stop))

	repo := suite.factory.Create().FulfillmentRepository()
	suite.Require().NoError(repo.AddRoute(ctx, route))

	open, err := repo.GetOpenRoutesByDate(ctx, date)
	suite.Require().NoError(err)
	suite.Len(open, 1)
	suite.Len(open[0].Stops(), 1)
	suite.Equal(1, open[0].Stops()[0].Sequence())

	byStop, err := repo.GetRouteByStop(ctx, stop.ID())
	suite.Require().NoError(err)
	suite.True(byStop.ID().IsEqual(route.ID()))

	suite.Require().NoError(route.Dispatch())
	suite.Require().NoError(repo.UpdateRoute(ctx, route))

	open, err = repo.GetOpenRoutesByDate(ctx, date)
	suite.Require().NoError(err)
	suite.Empty(open)
}

func (suite *UnitOfWorkTestSuite) TestCartReadAndCheckout() {
	ctx := context.Background()
	cartID := kernel.NewUUID()
	buyerID := kernel.NewUUID()

	err := suite.db.Exec(
		"INSERT INTO carts (id, buyer_id, checked_out, created_at) VALUES (?, ?, FALSE, NOW())",
		cartID.Bytes(), buyerID.Bytes(),
	).Error
	suite.Require().NoError(err)
	err = suite.db.Exec(`
		INSERT INTO cart_lines
			(id, cart_id, product_id, vendor_id, product_name, product_sku, quantity,
			 unit_price_cents, original_price_cents, unit_weight_kg, unit_volume_m3, refrigerated)
		VALUES (?, ?, ?, ?, 'Arabica Beans 1kg', 'SKU-BEANS-1', 2, 1500, 1500, 1.0, 0.01, FALSE)
	`, kernel.NewUUID().Bytes(), cartID.Bytes(), kernel.NewUUID().Bytes(), kernel.NewUUID().Bytes()).Error
	suite.Require().NoError(err)

	repo := suite.factory.Create().CartRepository()

	cart, err := repo.Get(ctx, cartID)
	suite.Require().NoError(err)
	suite.True(cart.BuyerID.IsEqual(buyerID))
	suite.Len(cart.Lines, 1)
	suite.Equal(2, cart.Lines[0].Quantity)

	suite.Require().NoError(repo.MarkCheckedOut(ctx, cartID))

	err = repo.MarkCheckedOut(ctx, cartID)
	suite.Require().ErrorIs(err, ports.ErrCartAlreadyCheckedOut)

	_, err = repo.Get(ctx, cartID)
	suite.Require().ErrorIs(err, ports.ErrCartAlreadyCheckedOut)
}

func (suite *UnitOfWorkTestSuite) TestPartyReads() {
	ctx := context.Background()
	buyerID := kernel.NewUUID()
	vendorID := kernel.NewUUID()

	err := suite.db.Exec(`
		INSERT INTO buyers (id, business_id, spending_limit_cents, business_max_order_cents, credit_terms_approved)
		VALUES (?, ?, 500000, NULL, TRUE)
	`, buyerID.Bytes(), kernel.NewUUID().Bytes()).Error
	suite.Require().NoError(err)
	err = suite.db.Exec(`
		INSERT INTO vendors (id, min_order_cents, shipping_fee_cents, free_shipping_threshold_cents,
			standard_lead_days, warehouse_lat, warehouse_lng)
		VALUES (?, 2000, 500, 10000, 3, -33.88, 151.19)
	`, vendorID.Bytes()).Error
	suite.Require().NoError(err)
	err = suite.db.Exec(
		"INSERT INTO contracts (buyer_id, vendor_id, discount_rate) VALUES (?, ?, 0.03)",
		buyerID.Bytes(), vendorID.Bytes(),
	).Error
	suite.Require().NoError(err)

	repo := suite.factory.Create().PartyRepository()

	buyer, err := repo.GetBuyer(ctx, buyerID)
	suite.Require().NoError(err)
	suite.Require().NotNil(buyer.SpendingLimitCents)
	suite.Equal(int64(500000), *buyer.SpendingLimitCents)
	suite.Nil(buyer.BusinessMaxOrderCents)
	suite.True(buyer.CreditTermsApproved)

	vendor, err := repo.GetVendor(ctx, vendorID)
	suite.Require().NoError(err)
	suite.Equal(int64(2000), vendor.MinOrderCents)
	suite.Equal(3, vendor.StandardLeadDays)

	rate, err := repo.GetContractRate(ctx, buyerID, vendorID)
	suite.Require().NoError(err)
	suite.InDelta(0.03, rate, 1e-9)

	rate, err = repo.GetContractRate(ctx, buyerID, kernel.NewUUID())
	suite.Require().NoError(err)
	suite.Zero(rate)
}

func (suite *UnitOfWorkTestSuite) TestRollbackDiscardsChanges() {
	ctx := context.Background()
	aggregate := suite.newOrder(order.FulfillmentTypePickup)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, aggregate))
	suite.Require().NoError(uow.Rollback(ctx))

	_, err := suite.factory.Create().OrderRepository().Get(ctx, aggregate.ID())
	suite.Require().Error(err)
}

func (suite *UnitOfWorkTestSuite) TestRollbackAfterCommitIsNoOp() {
	ctx := context.Background()
	aggregate := suite.newOrder(order.FulfillmentTypePickup)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, aggregate))
	suite.Require().NoError(uow.Commit(ctx))
	suite.Require().NoError(uow.Rollback(ctx))

	loaded, err := suite.factory.Create().OrderRepository().Get(ctx, aggregate.ID())
	suite.Require().NoError(err)
	suite.True(loaded.IsEqual(aggregate))
}

func TestUnitOfWorkTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkTestSuite))
}
