package commands

import (
	"context"
	"log/slog"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"
)

// DispatchRoutesCommandHandler closes out a day's route planning. Every
// route still in planning has its stops reordered by the optimizer from
// the depot and is then dispatched. Empty routes are left in planning so
// late orders can still land on them.
type DispatchRoutesCommandHandler struct {
	uowFactory UoWFactory
	optimizer  ports.RouteOptimizer
	depot      kernel.GeoPoint
}

// NewDispatchRoutesCommandHandler creates the dispatch handler. The depot
// is where every vehicle starts its run.
func NewDispatchRoutesCommandHandler(
	uowFactory UoWFactory,
	optimizer ports.RouteOptimizer,
	depot kernel.GeoPoint,
) DispatchRoutesCommandHandler {
	return DispatchRoutesCommandHandler{
		uowFactory: uowFactory,
		optimizer:  optimizer,
		depot:      depot,
	}
}

// Handle dispatches the day's routes.
func (h *DispatchRoutesCommandHandler) Handle(ctx context.Context, cmd DispatchRoutesCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	fulfillmentRepo := uow.FulfillmentRepository()
	routes, err := fulfillmentRepo.GetOpenRoutesByDate(ctx, cmd.Date())
	if err != nil {
		return err
	}

	dispatched := 0
	for _, route := range routes {
		if len(route.Stops()) == 0 {
			continue
		}

		ordered, optimizeErr := h.optimizer.Optimize(ctx, h.depot, route.Stops())
		if optimizeErr != nil {
			return optimizeErr
		}
		if err = route.Resequence(ordered); err != nil {
			return err
		}
		if err = route.Dispatch(); err != nil {
			return err
		}
		if err = fulfillmentRepo.UpdateRoute(ctx, route); err != nil {
			return err
		}
		dispatched++
	}

	if dispatched == 0 {
		return nil
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	slog.Info("routes dispatched", "date", cmd.Date().Format("2006-01-02"), "count", dispatched)
	return nil
}
