package cmd

import (
	"marketplace/internal/adapters/out/documents"
	"marketplace/internal/adapters/out/kafka"
	"marketplace/internal/adapters/out/payment"
	"marketplace/internal/adapters/out/postgres"
	"marketplace/internal/adapters/out/postgres/fulfillmentrepo"
	"marketplace/internal/adapters/out/postgres/orderrepo"
	"marketplace/internal/adapters/out/redis"
	"marketplace/internal/adapters/out/routing"
	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory

	notifier  *kafka.Notifier
	payments  *payment.CreditTermsGateway
	documents *documents.TemplateGenerator
	prepTimer *redis.PreparationTimer
	optimizer *routing.NearestNeighbourOptimizer
	depot     kernel.GeoPoint
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, depot kernel.GeoPoint) CompositionRoot {
	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		notifier:   kafka.NewNotifier([]string{config.KafkaHost}, config.KafkaOrderEventTopic),
		payments:   payment.NewCreditTermsGateway(),
		documents:  documents.NewTemplateGenerator(),
		prepTimer:  redis.NewPreparationTimer(config.RedisHost),
		optimizer:  routing.NewNearestNeighbourOptimizer(),
		depot:      depot,
	}
}

// Close releases the outbound connections the root owns.
func (c *CompositionRoot) Close() error {
	if err := c.notifier.Close(); err != nil {
		return err
	}
	return c.prepTimer.Close()
}

func (c *CompositionRoot) createUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCheckoutCartCommandHandler() commands.CheckoutCartCommandHandler {
	return commands.NewCheckoutCartCommandHandler(c.createUoWFactory(), c.payments, c.notifier, c.optimizer)
}

func (c *CompositionRoot) CreateModifyOrderCommandHandler() commands.ModifyOrderCommandHandler {
	return commands.NewModifyOrderCommandHandler(c.createUoWFactory(), c.optimizer)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(
		c.createUoWFactory(), c.payments, c.notifier, c.optimizer)
}

func (c *CompositionRoot) CreateUpdateOrderStatusCommandHandler() commands.UpdateOrderStatusCommandHandler {
	return commands.NewUpdateOrderStatusCommandHandler(
		c.createUoWFactory(), c.notifier, c.documents, c.prepTimer)
}

func (c *CompositionRoot) CreateReleaseExpiredReservationsCommandHandler() commands.ReleaseExpiredReservationsCommandHandler {
	return commands.NewReleaseExpiredReservationsCommandHandler(c.createUoWFactory())
}

func (c *CompositionRoot) CreateCompleteDeliveredOrdersCommandHandler() commands.CompleteDeliveredOrdersCommandHandler {
	return commands.NewCompleteDeliveredOrdersCommandHandler(c.createUoWFactory(), c.notifier)
}

func (c *CompositionRoot) CreateDispatchRoutesCommandHandler() commands.DispatchRoutesCommandHandler {
	return commands.NewDispatchRoutesCommandHandler(c.createUoWFactory(), c.optimizer, c.depot)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetPickupSheetQueryHandler() queries.GetPickupSheetQueryHandler {
	return queries.NewGetPickupSheetQueryHandler(
		orderrepo.NewGormOrderRepository(c.gormDB),
		fulfillmentrepo.NewGormFulfillmentRepository(c.gormDB),
		c.documents,
	)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
