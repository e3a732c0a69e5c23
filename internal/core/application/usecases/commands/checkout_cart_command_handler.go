package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"marketplace/internal/core/domain/model/fulfillment"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/stock"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"
)

const (
	// creditTermsDays is the payment window for deferred (credit terms) orders.
	creditTermsDays = 30

	// highValueThresholdCents flags orders for back office review.
	highValueThresholdCents = 1_000_000 // $10,000

	// trailingSpendWindow is how far back the buyer's spend with a vendor
	// counts toward the volume discount tier.
	trailingSpendWindow = 30 * 24 * time.Hour
)

var (
	// ErrEmptyCart is returned when the cart has no lines to check out.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrMinimumOrderNotMet is returned when a vendor's share of the cart is
	// below that vendor's order minimum, or a line is below the product's
	// minimum order quantity.
	ErrMinimumOrderNotMet = errors.New("vendor minimum order amount not met")

	// ErrPaymentFailed is returned when the charge for an order declines.
	ErrPaymentFailed = errors.New("payment failed")
)

// MinimumOrderNotMetError identifies which vendor's minimum blocked the
// checkout. It unwraps to ErrMinimumOrderNotMet.
type MinimumOrderNotMetError struct {
	VendorID kernel.UUID
	Minimum  kernel.Money
	Subtotal kernel.Money
}

func NewMinimumOrderNotMetError(vendorID kernel.UUID, minimum, subtotal kernel.Money) *MinimumOrderNotMetError {
	return &MinimumOrderNotMetError{VendorID: vendorID, Minimum: minimum, Subtotal: subtotal}
}

func (e *MinimumOrderNotMetError) Error() string {
	return fmt.Sprintf("%s: vendor %s requires %s, cart has %s",
		ErrMinimumOrderNotMet, e.VendorID, e.Minimum, e.Subtotal)
}

func (e *MinimumOrderNotMetError) Unwrap() error {
	return ErrMinimumOrderNotMet
}

// MinimumOrderQuantityNotMetError identifies the line that fell below the
// product's minimum order quantity. It unwraps to ErrMinimumOrderNotMet.
type MinimumOrderQuantityNotMetError struct {
	ProductName string
	Minimum     int
	Quantity    int
}

func NewMinimumOrderQuantityNotMetError(productName string, minimum, quantity int) *MinimumOrderQuantityNotMetError {
	return &MinimumOrderQuantityNotMetError{ProductName: productName, Minimum: minimum, Quantity: quantity}
}

func (e *MinimumOrderQuantityNotMetError) Error() string {
	return fmt.Sprintf("%s: %s requires at least %d units, cart has %d",
		ErrMinimumOrderNotMet, e.ProductName, e.Minimum, e.Quantity)
}

func (e *MinimumOrderQuantityNotMetError) Unwrap() error {
	return ErrMinimumOrderNotMet
}

// UnavailableProductsError lists every product the checkout could not
// reserve. It unwraps to stock.ErrInsufficientStock.
type UnavailableProductsError struct {
	Products []string
}

func NewUnavailableProductsError(products []string) *UnavailableProductsError {
	return &UnavailableProductsError{Products: products}
}

func (e *UnavailableProductsError) Error() string {
	return fmt.Sprintf("%s: %s", stock.ErrInsufficientStock, strings.Join(e.Products, ", "))
}

func (e *UnavailableProductsError) Unwrap() error {
	return stock.ErrInsufficientStock
}

// PaymentFailedError wraps the gateway failure for one order of the
// checkout. It unwraps to ErrPaymentFailed.
type PaymentFailedError struct {
	OrderNumber string
	Cause       error
}

func NewPaymentFailedError(orderNumber string, cause error) *PaymentFailedError {
	return &PaymentFailedError{OrderNumber: orderNumber, Cause: cause}
}

func (e *PaymentFailedError) Error() string {
	return fmt.Sprintf("%s: order %s (cause: %s)", ErrPaymentFailed, e.OrderNumber, e.Cause)
}

func (e *PaymentFailedError) Unwrap() error {
	return ErrPaymentFailed
}

// CheckoutCartCommandHandler turns a cart into one order per vendor inside a
// single transaction. Stock is reserved, pricing applied, payment taken,
// fulfillment scheduled, and orders submitted together; any failure rolls the
// whole checkout back.
//
// Notifications go out only after the transaction commits.
type CheckoutCartCommandHandler struct {
	uowFactory UoWFactory
	payments   ports.PaymentGateway
	notifier   ports.Notifier
	optimizer  ports.RouteOptimizer
	pricing    services.PricingEngine
}

// NewCheckoutCartCommandHandler creates a handler for cart checkouts.
func NewCheckoutCartCommandHandler(
	uowFactory UoWFactory,
	payments ports.PaymentGateway,
	notifier ports.Notifier,
	optimizer ports.RouteOptimizer,
) CheckoutCartCommandHandler {
	return CheckoutCartCommandHandler{
		uowFactory: uowFactory,
		payments:   payments,
		notifier:   notifier,
		optimizer:  optimizer,
		pricing:    services.NewPricingEngine(),
	}
}

// Handle processes the checkout and returns the IDs of the created orders.
func (h *CheckoutCartCommandHandler) Handle(ctx context.Context, cmd CheckoutCartCommand) ([]kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	cart, err := uow.CartRepository().Get(ctx, cmd.CartID())
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	buyer, err := uow.PartyRepository().GetBuyer(ctx, cmd.BuyerID())
	if err != nil {
		return nil, err
	}

	created, err := h.createVendorOrders(ctx, uow, cmd, cart, buyer, now)
	if err != nil {
		return nil, err
	}

	if err = uow.CartRepository().MarkCheckedOut(ctx, cart.ID); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.notify(ctx, created)

	orderIDs := make([]kernel.UUID, 0, len(created))
	for _, aggregate := range created {
		orderIDs = append(orderIDs, aggregate.ID())
	}
	return orderIDs, nil
}

func (h *CheckoutCartCommandHandler) createVendorOrders(
	ctx context.Context,
	uow UoW,
	cmd CheckoutCartCommand,
	cart *ports.Cart,
	buyer *ports.BuyerProfile,
	now time.Time,
) ([]*order.Order, error) {
	groups := cart.LinesByVendor()

	// Map iteration order is random; process vendors deterministically so
	// retries fail the same way.
	vendorIDs := make([]kernel.UUID, 0, len(groups))
	for vendorID := range groups {
		vendorIDs = append(vendorIDs, vendorID)
	}
	sort.Slice(vendorIDs, func(i, j int) bool {
		return vendorIDs[i].String() < vendorIDs[j].String()
	})

	created := make([]*order.Order, 0, len(vendorIDs))
	for _, vendorID := range vendorIDs {
		aggregate, err := h.createVendorOrder(ctx, uow, cmd, cart, buyer, vendorID, groups[vendorID], now)
		if err != nil {
			return nil, err
		}
		created = append(created, aggregate)
	}
	return created, nil
}

func (h *CheckoutCartCommandHandler) createVendorOrder(
	ctx context.Context,
	uow UoW,
	cmd CheckoutCartCommand,
	cart *ports.Cart,
	buyer *ports.BuyerProfile,
	vendorID kernel.UUID,
	lines []ports.CartLine,
	now time.Time,
) (*order.Order, error) {
	vendor, err := uow.PartyRepository().GetVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	aggregate, err := order.NewOrder(
		kernel.NewUUID(),
		kernel.NewOrderNumber(now),
		cmd.BuyerID(),
		vendorID,
		cart.ID,
		cmd.FulfillmentType(),
		cmd.DeliveryLocation(),
		cmd.Urgent(),
		now,
	)
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		if line.MinOrderQuantity > 0 && line.Quantity < line.MinOrderQuantity {
			return nil, NewMinimumOrderQuantityNotMetError(line.ProductName, line.MinOrderQuantity, line.Quantity)
		}

		item, err := order.NewItem(
			kernel.NewUUID(),
			line.ProductID,
			line.ProductName,
			line.ProductSKU,
			line.Quantity,
			kernel.MustMoney(line.UnitPriceCents),
			kernel.MustMoney(line.OriginalPriceCents),
			line.UnitWeightKg,
			line.UnitVolumeM3,
			line.Refrigerated,
		)
		if err != nil {
			return nil, err
		}
		if err = aggregate.AddItem(item); err != nil {
			return nil, err
		}
	}

	minimum := kernel.MustMoney(vendor.MinOrderCents)
	if aggregate.Subtotal().LessThan(minimum) {
		return nil, NewMinimumOrderNotMetError(vendorID, minimum, aggregate.Subtotal())
	}

	contractRate, err := uow.PartyRepository().GetContractRate(ctx, cmd.BuyerID(), vendorID)
	if err != nil {
		return nil, err
	}

	trailingSpend, err := uow.OrderRepository().TrailingSpend(
		ctx, cmd.BuyerID(), vendorID, now.Add(-trailingSpendWindow))
	if err != nil {
		return nil, err
	}

	deliveryFee, err := h.deliveryFee(cmd, aggregate, vendor)
	if err != nil {
		return nil, err
	}

	pricing := h.pricing.Price(
		aggregate.Subtotal(),
		contractRate,
		trailingSpend,
		cmd.FulfillmentType() == order.FulfillmentTypePickup,
		deliveryFee,
		kernel.MustMoney(vendor.FreeShippingThresholdCents),
	)
	aggregate.ApplyPricing(pricing.Discount, pricing.Shipping)

	aggregate.SetExpectedDelivery(
		services.ExpectedFulfillmentDate(now, vendor.StandardLeadDays, cmd.Urgent()))

	if err = h.reserveStock(ctx, uow, cmd, aggregate, now); err != nil {
		return nil, err
	}

	if err = h.flagForApproval(ctx, uow, aggregate, buyer); err != nil {
		return nil, err
	}

	if err = aggregate.ChangeStatus(order.StatusSubmitted); err != nil {
		return nil, err
	}

	if err = h.takePayment(ctx, cmd, aggregate, buyer, now); err != nil {
		return nil, err
	}

	h.snapshotMetadata(cmd, aggregate, buyer, vendor)

	if err = h.scheduleFulfillment(ctx, uow, cmd, aggregate, vendor, now); err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return nil, err
	}
	return aggregate, nil
}

// deliveryFee prices the shipment by distance and weight. Pickup orders ship
// nothing, so the fee is zero.
func (h *CheckoutCartCommandHandler) deliveryFee(
	cmd CheckoutCartCommand,
	aggregate *order.Order,
	vendor *ports.VendorProfile,
) (kernel.Money, error) {
	if cmd.FulfillmentType() != order.FulfillmentTypeDelivery {
		return kernel.MustMoney(0), nil
	}
	return services.DeliveryFee(
		kernel.MustMoney(vendor.ShippingFeeCents),
		vendor.WarehouseLocation,
		*cmd.DeliveryLocation(),
		aggregate.TotalWeightKg(),
		cmd.Urgent(),
	)
}

// reserveStock decrements availability and records a reservation per line,
// held until the order's expected fulfillment date. The conditional decrement
// in the repository is what makes two concurrent checkouts of the last unit
// impossible.
//
// Lines that cannot be reserved become backorders when the buyer allows
// them; otherwise every unavailable product is collected so the failure
// names all of them at once.
func (h *CheckoutCartCommandHandler) reserveStock(
	ctx context.Context,
	uow UoW,
	cmd CheckoutCartCommand,
	aggregate *order.Order,
	now time.Time,
) error {
	stockRepo := uow.StockRepository()

	expiresAt := now.Add(stock.DefaultReservationTTL)
	if aggregate.ExpectedAt() != nil {
		expiresAt = *aggregate.ExpectedAt()
	}

	var unavailable []string
	for _, item := range aggregate.Items() {
		if err := stockRepo.ReserveQuantity(ctx, item.ProductID(), item.Quantity()); err != nil {
			if !errors.Is(err, stock.ErrInsufficientStock) {
				return err
			}
			if cmd.AllowBackorder() {
				if err = h.recordBackorder(ctx, uow, cmd, item, now); err != nil {
					return err
				}
				continue
			}
			unavailable = append(unavailable, item.ProductName())
			continue
		}

		reservation, err := stock.NewReservation(
			kernel.NewUUID(),
			aggregate.ID(),
			item.ProductID(),
			item.Quantity(),
			expiresAt,
			now,
		)
		if err != nil {
			return err
		}
		if err = stockRepo.AddReservation(ctx, reservation); err != nil {
			return err
		}
	}

	if len(unavailable) > 0 {
		return NewUnavailableProductsError(unavailable)
	}
	return nil
}

func (h *CheckoutCartCommandHandler) recordBackorder(
	ctx context.Context,
	uow UoW,
	cmd CheckoutCartCommand,
	item *order.Item,
	now time.Time,
) error {
	backorder, err := stock.NewBackorder(
		kernel.NewUUID(),
		cmd.BuyerID(),
		item.ProductID(),
		item.Quantity(),
		cmd.Urgent(),
		now,
	)
	if err != nil {
		return err
	}
	return uow.StockRepository().AddBackorder(ctx, backorder)
}

// flagForApproval marks orders that need a human sign-off: over the buyer's
// spending limit, over the business's order cap, or the buyer's first order
// with this vendor.
func (h *CheckoutCartCommandHandler) flagForApproval(
	ctx context.Context,
	uow UoW,
	aggregate *order.Order,
	buyer *ports.BuyerProfile,
) error {
	if buyer.SpendingLimitCents != nil && aggregate.Total().Cents() > *buyer.SpendingLimitCents {
		aggregate.SetRequiresApproval(true)
		aggregate.PutMetadata("approval_reason", "buyer spending limit exceeded")
		return nil
	}
	if buyer.BusinessMaxOrderCents != nil && aggregate.Total().Cents() > *buyer.BusinessMaxOrderCents {
		aggregate.SetRequiresApproval(true)
		aggregate.PutMetadata("approval_reason", "business order cap exceeded")
		return nil
	}

	ordered, err := uow.OrderRepository().ExistsForBuyerAndVendor(
		ctx, aggregate.BuyerID(), aggregate.VendorID())
	if err != nil {
		return err
	}
	if !ordered {
		aggregate.SetRequiresApproval(true)
		aggregate.PutMetadata("approval_reason", "first order with vendor")
	}
	return nil
}

func (h *CheckoutCartCommandHandler) takePayment(
	ctx context.Context,
	cmd CheckoutCartCommand,
	aggregate *order.Order,
	buyer *ports.BuyerProfile,
	now time.Time,
) error {
	aggregate.PutMetadata("payment_method", string(cmd.PaymentMethod()))

	// Payment can be captured later; the order stays payment pending.
	if !cmd.ProcessPayment() {
		return nil
	}

	if cmd.PaymentMethod() == PaymentMethodCreditTerms {
		return h.deferPayment(aggregate, buyer, now)
	}

	result, err := h.payments.Charge(ctx, aggregate.BuyerID(), aggregate.ID(), aggregate.Total())
	if err != nil {
		return NewPaymentFailedError(aggregate.OrderNumber(), err)
	}

	if result.Deferred {
		return h.deferPayment(aggregate, buyer, now)
	}

	aggregate.MarkPaid(result.Reference, now)
	return nil
}

func (h *CheckoutCartCommandHandler) deferPayment(
	aggregate *order.Order,
	buyer *ports.BuyerProfile,
	now time.Time,
) error {
	if !buyer.CreditTermsApproved {
		return NewPaymentFailedError(aggregate.OrderNumber(),
			errors.New("buyer is not approved for credit terms"))
	}
	aggregate.MarkPaymentPending(now.AddDate(0, 0, creditTermsDays))
	aggregate.PutMetadata("payment_terms", "net30")
	return nil
}

// snapshotMetadata stamps the request context onto the order for the audit
// trail.
func (h *CheckoutCartCommandHandler) snapshotMetadata(
	cmd CheckoutCartCommand,
	aggregate *order.Order,
	buyer *ports.BuyerProfile,
	vendor *ports.VendorProfile,
) {
	if cmd.ClientIP() != "" {
		aggregate.PutMetadata("client_ip", cmd.ClientIP())
	}
	if cmd.UserAgent() != "" {
		aggregate.PutMetadata("user_agent", cmd.UserAgent())
	}
	if buyer.ABN != "" {
		aggregate.PutMetadata("buyer_abn", buyer.ABN)
	}
	if vendor.ABN != "" {
		aggregate.PutMetadata("vendor_abn", vendor.ABN)
	}
}

// scheduleFulfillment books the physical side of the order while the
// checkout is still open: a bay slot for pickups, a route stop for
// deliveries. No slot or no route capacity fails the checkout.
func (h *CheckoutCartCommandHandler) scheduleFulfillment(
	ctx context.Context,
	uow UoW,
	cmd CheckoutCartCommand,
	aggregate *order.Order,
	vendor *ports.VendorProfile,
	now time.Time,
) error {
	if aggregate.FulfillmentType() == order.FulfillmentTypePickup {
		return h.schedulePickup(ctx, uow, cmd, aggregate, vendor, now)
	}
	return h.scheduleDelivery(ctx, uow, cmd, aggregate, vendor, now)
}

// schedulePickup finds the earliest free bay at the vendor's warehouse and
// attaches the booking to the order.
func (h *CheckoutCartCommandHandler) schedulePickup(
	ctx context.Context,
	uow UoW,
	cmd CheckoutCartCommand,
	aggregate *order.Order,
	vendor *ports.VendorProfile,
	now time.Time,
) error {
	from := now
	if cmd.RequestedDate() != nil && cmd.RequestedDate().After(now) {
		from = *cmd.RequestedDate()
	}

	fulfillmentRepo := uow.FulfillmentRepository()
	calendar, err := fulfillmentRepo.GetVendorBookingsBetween(
		ctx, vendor.ID, from, from.Add(pickupBookingLookahead))
	if err != nil {
		return err
	}

	planner := services.NewVendorPickupPlanner(
		vendor.PickupOpeningHour,
		vendor.PickupClosingHour,
		vendor.PickupBays,
		vendor.PickupConcurrency,
	)
	slot, err := planner.PlanPickup(from, aggregate.TotalQuantity(), calendar)
	if err != nil {
		return err
	}

	booking, err := fulfillment.NewBooking(
		kernel.NewUUID(),
		aggregate.ID(),
		vendor.ID,
		slot.Bay,
		slot.Start,
		slot.Duration,
		kernel.NewConfirmationCode("PU"),
		now,
	)
	if err != nil {
		return err
	}

	if err = fulfillmentRepo.AddBooking(ctx, booking); err != nil {
		return err
	}

	aggregate.PutMetadata("pickup_bay", booking.Bay())
	aggregate.PutMetadata("pickup_confirmation", booking.ConfirmationCode())
	return aggregate.AssignPickupBooking(booking.ID())
}

// scheduleDelivery places the order on the best open route for its
// destination, opening a fresh route when none can take the stop.
func (h *CheckoutCartCommandHandler) scheduleDelivery(
	ctx context.Context,
	uow UoW,
	cmd CheckoutCartCommand,
	aggregate *order.Order,
	vendor *ports.VendorProfile,
	now time.Time,
) error {
	stop, err := fulfillment.NewStop(
		kernel.NewUUID(),
		aggregate.ID(),
		*aggregate.DeliveryLocation(),
		aggregate.PackageCount(),
		aggregate.TotalWeightKg(),
		aggregate.TotalVolumeM3(),
		aggregate.RequiresRefrigeration(),
	)
	if err != nil {
		return err
	}

	date := now
	if aggregate.ExpectedAt() != nil {
		date = *aggregate.ExpectedAt()
	}
	if cmd.RequestedDate() != nil {
		date = *cmd.RequestedDate()
	}

	fulfillmentRepo := uow.FulfillmentRepository()
	routes, err := fulfillmentRepo.GetOpenRoutesByDate(ctx, date)
	if err != nil {
		return err
	}

	selector := services.NewRouteSelector(vendor.WarehouseLocation)
	route, err := selector.SelectRoute(stop, routes)
	switch {
	case errors.Is(err, services.ErrRouteNotFound):
		route, err = openRouteFor(stop, date)
		if err != nil {
			return err
		}
		if err = fulfillmentRepo.AddRoute(ctx, route); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if err = reoptimizeRoute(ctx, h.optimizer, vendor.WarehouseLocation, route); err != nil {
			return err
		}
		if err = fulfillmentRepo.UpdateRoute(ctx, route); err != nil {
			return err
		}
	}

	return aggregate.AssignDeliveryStop(stop.ID())
}

func (h *CheckoutCartCommandHandler) notify(ctx context.Context, created []*order.Order) {
	for _, aggregate := range created {
		if err := h.notifier.NotifyOrderCreated(ctx, aggregate); err != nil {
			slog.Warn("order created notification failed",
				"order", aggregate.OrderNumber(), "error", err)
		}
		if aggregate.Total().Cents() > highValueThresholdCents {
			if err := h.notifier.NotifyHighValueOrder(ctx, aggregate); err != nil {
				slog.Warn("high value order notification failed",
					"order", aggregate.OrderNumber(), "error", err)
			}
		}
	}
}
