// Package http exposes the order engine's REST API. Handlers translate
// requests into commands and queries and map domain errors onto status
// codes; no business rules live here.
package http

import (
	"errors"
	"net/http"
	"time"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/fulfillment"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/stock"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	checkoutHandler       commands.CheckoutCartCommandHandler
	modifyOrderHandler    commands.ModifyOrderCommandHandler
	cancelOrderHandler    commands.CancelOrderCommandHandler
	updateStatusHandler   commands.UpdateOrderStatusCommandHandler
	dispatchRoutesHandler commands.DispatchRoutesCommandHandler

	// Query handlers
	getOrderHandler        queries.GetOrderQueryHandler
	getActiveOrdersHandler queries.GetActiveOrdersQueryHandler
	getPickupSheetHandler  queries.GetPickupSheetQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	checkoutHandler commands.CheckoutCartCommandHandler,
	modifyOrderHandler commands.ModifyOrderCommandHandler,
	cancelOrderHandler commands.CancelOrderCommandHandler,
	updateStatusHandler commands.UpdateOrderStatusCommandHandler,
	dispatchRoutesHandler commands.DispatchRoutesCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getActiveOrdersHandler queries.GetActiveOrdersQueryHandler,
	getPickupSheetHandler queries.GetPickupSheetQueryHandler,
) *Server {
	return &Server{
		checkoutHandler:        checkoutHandler,
		modifyOrderHandler:     modifyOrderHandler,
		cancelOrderHandler:     cancelOrderHandler,
		updateStatusHandler:    updateStatusHandler,
		dispatchRoutesHandler:  dispatchRoutesHandler,
		getOrderHandler:        getOrderHandler,
		getActiveOrdersHandler: getActiveOrdersHandler,
		getPickupSheetHandler:  getPickupSheetHandler,
	}
}

// RegisterRoutes mounts the API under /api/v1.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/carts/:cartId/checkout", s.CheckoutCart)
	api.GET("/orders/:orderId", s.GetOrder)
	api.PATCH("/orders/:orderId/items", s.ModifyOrder)
	api.POST("/orders/:orderId/cancel", s.CancelOrder)
	api.POST("/orders/:orderId/status", s.UpdateOrderStatus)
	api.GET("/orders/:orderId/pickup-sheet", s.GetPickupSheet)
	api.GET("/buyers/:buyerId/orders/active", s.GetActiveOrders)
	api.POST("/routes/dispatch", s.DispatchRoutes)
}

// Error is the JSON error body for every failed request.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CheckoutRequest is the body of POST /carts/:cartId/checkout.
// process_payment defaults to true when omitted.
type CheckoutRequest struct {
	BuyerID          string           `json:"buyer_id"`
	FulfillmentType  string           `json:"fulfillment_type"`
	DeliveryLocation *LocationRequest `json:"delivery_location,omitempty"`
	Urgent           bool             `json:"urgent"`
	PaymentMethod    string           `json:"payment_method,omitempty"`
	ProcessPayment   *bool            `json:"process_payment,omitempty"`
	AllowBackorder   bool             `json:"allow_backorder"`
	RequestedDate    *time.Time       `json:"requested_date,omitempty"`
}

// LocationRequest is a latitude/longitude pair in a request body.
type LocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CheckoutResponse lists the orders a checkout produced, one per vendor.
type CheckoutResponse struct {
	OrderIDs []string `json:"order_ids"`
}

// CheckoutCart handles POST /api/v1/carts/:cartId/checkout - turns a cart
// into one order per vendor.
func (s *Server) CheckoutCart(ctx echo.Context) error {
	cartID, err := kernel.UUIDFromString(ctx.Param("cartId"))
	if err != nil {
		return badRequest(ctx, "Invalid cart id")
	}

	var request CheckoutRequest
	if err = ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	buyerID, err := kernel.UUIDFromString(request.BuyerID)
	if err != nil {
		return badRequest(ctx, "Invalid buyer id")
	}

	fulfillmentType, err := order.FulfillmentTypeFromString(request.FulfillmentType)
	if err != nil {
		return badRequest(ctx, "Invalid fulfillment type")
	}

	var deliveryLocation *kernel.GeoPoint
	if request.DeliveryLocation != nil {
		location, locErr := kernel.NewGeoPoint(
			request.DeliveryLocation.Latitude, request.DeliveryLocation.Longitude)
		if locErr != nil {
			return badRequest(ctx, "Invalid delivery location: "+locErr.Error())
		}
		deliveryLocation = &location
	}

	processPayment := true
	if request.ProcessPayment != nil {
		processPayment = *request.ProcessPayment
	}

	cmd, err := commands.NewCheckoutCartCommand(cartID, buyerID, commands.CheckoutOptions{
		FulfillmentType:  fulfillmentType,
		DeliveryLocation: deliveryLocation,
		Urgent:           request.Urgent,
		PaymentMethod:    commands.PaymentMethod(request.PaymentMethod),
		ProcessPayment:   processPayment,
		AllowBackorder:   request.AllowBackorder,
		RequestedDate:    request.RequestedDate,
		ClientIP:         ctx.RealIP(),
		UserAgent:        ctx.Request().UserAgent(),
	})
	if err != nil {
		return badRequest(ctx, "Invalid checkout data: "+err.Error())
	}

	orderIDs, err := s.checkoutHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return commandError(ctx, err)
	}

	response := CheckoutResponse{OrderIDs: make([]string, len(orderIDs))}
	for i, orderID := range orderIDs {
		response.OrderIDs[i] = orderID.String()
	}
	return ctx.JSON(http.StatusCreated, response)
}

// GetOrder handles GET /api/v1/orders/:orderId - retrieves one order with
// its lines.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	response, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return commandError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, response)
}

// ItemChangeRequest sets one line's quantity; zero removes the line.
type ItemChangeRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// ModifyOrderRequest is the body of PATCH /orders/:orderId/items.
type ModifyOrderRequest struct {
	ActorID string              `json:"actor_id"`
	Changes []ItemChangeRequest `json:"changes"`
}

// ModifyOrder handles PATCH /api/v1/orders/:orderId/items - changes line
// quantities on an order that is still open.
func (s *Server) ModifyOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var request ModifyOrderRequest
	if err = ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	actorID, err := kernel.UUIDFromString(request.ActorID)
	if err != nil {
		return badRequest(ctx, "Invalid actor id")
	}

	changes := make([]commands.ItemChange, len(request.Changes))
	for i, change := range request.Changes {
		itemID, itemErr := kernel.UUIDFromString(change.ItemID)
		if itemErr != nil {
			return badRequest(ctx, "Invalid item id")
		}
		changes[i] = commands.ItemChange{ItemID: itemID, Quantity: change.Quantity}
	}

	cmd, err := commands.NewModifyOrderCommand(orderID, actorID, changes)
	if err != nil {
		return badRequest(ctx, "Invalid modification data: "+err.Error())
	}

	if err = s.modifyOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return commandError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// CancelOrderRequest is the body of POST /orders/:orderId/cancel.
type CancelOrderRequest struct {
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason"`
}

// CancelOrder handles POST /api/v1/orders/:orderId/cancel - cancels an
// order, releasing stock and refunding captured payment.
func (s *Server) CancelOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var request CancelOrderRequest
	if err = ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	actorID, err := kernel.UUIDFromString(request.ActorID)
	if err != nil {
		return badRequest(ctx, "Invalid actor id")
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, actorID, request.Reason)
	if err != nil {
		return badRequest(ctx, "Invalid cancellation data: "+err.Error())
	}

	if err = s.cancelOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return commandError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// UpdateStatusRequest is the body of POST /orders/:orderId/status.
type UpdateStatusRequest struct {
	Status  string `json:"status"`
	ActorID string `json:"actor_id"`
}

// UpdateOrderStatus handles POST /api/v1/orders/:orderId/status - moves an
// order to the requested lifecycle status.
func (s *Server) UpdateOrderStatus(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var request UpdateStatusRequest
	if err = ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	targetStatus, err := order.StatusFromString(request.Status)
	if err != nil {
		return badRequest(ctx, "Invalid status")
	}

	actorID, err := kernel.UUIDFromString(request.ActorID)
	if err != nil {
		return badRequest(ctx, "Invalid actor id")
	}

	cmd, err := commands.NewUpdateOrderStatusCommand(orderID, targetStatus, actorID)
	if err != nil {
		return badRequest(ctx, "Invalid status data: "+err.Error())
	}

	if err = s.updateStatusHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return commandError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetPickupSheet handles GET /api/v1/orders/:orderId/pickup-sheet - renders
// the bay sheet for the order's pickup booking.
func (s *Server) GetPickupSheet(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	query, err := queries.NewGetPickupSheetQuery(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	sheet, err := s.getPickupSheetHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return commandError(ctx, err)
	}

	return ctx.Blob(http.StatusOK, "text/plain; charset=utf-8", sheet)
}

// GetActiveOrders handles GET /api/v1/buyers/:buyerId/orders/active -
// retrieves a buyer's orders that are not yet completed or cancelled.
func (s *Server) GetActiveOrders(ctx echo.Context) error {
	buyerID, err := kernel.UUIDFromString(ctx.Param("buyerId"))
	if err != nil {
		return badRequest(ctx, "Invalid buyer id")
	}

	query, err := queries.NewGetActiveOrdersQuery(buyerID)
	if err != nil {
		return badRequest(ctx, "Invalid buyer id")
	}

	orders, err := s.getActiveOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return commandError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orders)
}

// DispatchRequest is the body of POST /routes/dispatch. Date defaults to
// today when omitted.
type DispatchRequest struct {
	Date string `json:"date,omitempty"`
}

// DispatchRoutes handles POST /api/v1/routes/dispatch - reorders and
// dispatches the day's planned delivery routes.
func (s *Server) DispatchRoutes(ctx echo.Context) error {
	var request DispatchRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	date := time.Now()
	if request.Date != "" {
		parsed, err := time.Parse("2006-01-02", request.Date)
		if err != nil {
			return badRequest(ctx, "Invalid date, expected YYYY-MM-DD")
		}
		date = parsed
	}

	cmd, err := commands.NewDispatchRoutesCommand(date)
	if err != nil {
		return badRequest(ctx, "Invalid dispatch data: "+err.Error())
	}

	if err = s.dispatchRoutesHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return commandError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// commandError maps a use case failure onto a status code. Conflicts cover
// every rule the current state of the aggregate refuses.
func commandError(ctx echo.Context, err error) error {
	code := http.StatusInternalServerError

	var paymentErr *commands.PaymentFailedError
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		code = http.StatusBadRequest
	case errors.As(err, &paymentErr):
		code = http.StatusPaymentRequired
	case errors.Is(err, commands.ErrEmptyCart),
		errors.Is(err, commands.ErrMinimumOrderNotMet):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, order.ErrModificationNotAllowed),
		errors.Is(err, order.ErrCancellationNotAllowed),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, stock.ErrInsufficientStock),
		errors.Is(err, services.ErrNoPickupSlotAvailable),
		errors.Is(err, services.ErrNoPickupBayAvailable),
		errors.Is(err, fulfillment.ErrRouteCapacityExceeded),
		errors.Is(err, ports.ErrCartAlreadyCheckedOut):
		code = http.StatusConflict
	}

	return ctx.JSON(code, Error{Code: code, Message: err.Error()})
}
