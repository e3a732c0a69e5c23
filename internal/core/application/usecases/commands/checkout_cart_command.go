package commands

import (
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	ErrCheckoutCartCommandIsNotConstructed = errors.New(
		"CheckoutCartCommand must be created via NewCheckoutCartCommand constructor",
	)
	ErrDeliveryLocationIsRequired = errors.New("delivery location is required for delivery orders")
)

// PaymentMethod is how the buyer elects to settle the checkout.
type PaymentMethod string

const (
	PaymentMethodCard        PaymentMethod = "card"
	PaymentMethodCreditTerms PaymentMethod = "credit_terms"
)

// Validate returns an error for an unknown method.
func (m PaymentMethod) Validate() error {
	switch m {
	case PaymentMethodCard, PaymentMethodCreditTerms:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("payment method",
			fmt.Errorf("%q is not a valid payment method", string(m)))
	}
}

// CheckoutOptions carries the buyer's checkout-time choices: fulfillment,
// payment, stock policy, and the client metadata stamped onto each order.
type CheckoutOptions struct {
	FulfillmentType  order.FulfillmentType
	DeliveryLocation *kernel.GeoPoint
	Urgent           bool

	// PaymentMethod defaults to card when empty. ProcessPayment false leaves
	// the orders pending for a later capture.
	PaymentMethod  PaymentMethod
	ProcessPayment bool

	// AllowBackorder records unavailable lines as backorders instead of
	// failing the checkout.
	AllowBackorder bool

	// RequestedDate is the buyer's preferred pickup slot or delivery date.
	RequestedDate *time.Time

	ClientIP  string
	UserAgent string
}

// CheckoutCartCommand represents a request to turn a buyer's cart into
// orders. The cart is split per vendor; each vendor's lines become one
// order, and the whole checkout succeeds or fails as a unit.
//
// Example:
//
//	cmd, err := NewCheckoutCartCommand(cartID, buyerID, CheckoutOptions{
//	    FulfillmentType: order.FulfillmentTypePickup,
//	    ProcessPayment:  true,
//	})
//	if err != nil {
//	    return fmt.Errorf("invalid checkout request: %w", err)
//	}
//
//	orderIDs, err := handler.Handle(ctx, cmd)
type CheckoutCartCommand struct { //nolint:recvcheck //using for validation
	cartID  kernel.UUID
	buyerID kernel.UUID
	options CheckoutOptions

	guard guard.ConstructorGuard
}

// NewCheckoutCartCommand creates a checkout command. Delivery checkouts must
// carry a destination; pickup checkouts must not need one.
func NewCheckoutCartCommand(
	cartID kernel.UUID,
	buyerID kernel.UUID,
	options CheckoutOptions,
) (CheckoutCartCommand, error) {
	checkoutCommand := CheckoutCartCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		checkoutCommand.setCartID(cartID),
		checkoutCommand.setBuyerID(buyerID),
		checkoutCommand.setOptions(options),
	); err != nil {
		return CheckoutCartCommand{}, err
	}

	return checkoutCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c CheckoutCartCommand) Validate() error {
	return c.guard.Validate(ErrCheckoutCartCommandIsNotConstructed)
}

// CartID returns the cart to check out.
func (c CheckoutCartCommand) CartID() kernel.UUID {
	return c.cartID
}

// BuyerID returns the buyer placing the orders.
func (c CheckoutCartCommand) BuyerID() kernel.UUID {
	return c.buyerID
}

// FulfillmentType returns how the resulting orders are fulfilled.
func (c CheckoutCartCommand) FulfillmentType() order.FulfillmentType {
	return c.options.FulfillmentType
}

// DeliveryLocation returns the destination for delivery checkouts.
func (c CheckoutCartCommand) DeliveryLocation() *kernel.GeoPoint {
	return c.options.DeliveryLocation
}

// Urgent reports whether the buyer asked for expedited fulfillment.
func (c CheckoutCartCommand) Urgent() bool {
	return c.options.Urgent
}

// PaymentMethod returns the buyer's settlement choice.
func (c CheckoutCartCommand) PaymentMethod() PaymentMethod {
	return c.options.PaymentMethod
}

// ProcessPayment reports whether payment is captured during checkout.
func (c CheckoutCartCommand) ProcessPayment() bool {
	return c.options.ProcessPayment
}

// AllowBackorder reports whether unavailable lines become backorders.
func (c CheckoutCartCommand) AllowBackorder() bool {
	return c.options.AllowBackorder
}

// RequestedDate returns the buyer's preferred pickup or delivery date.
func (c CheckoutCartCommand) RequestedDate() *time.Time {
	return c.options.RequestedDate
}

// ClientIP returns the requesting client's address for the order snapshot.
func (c CheckoutCartCommand) ClientIP() string {
	return c.options.ClientIP
}

// UserAgent returns the requesting client's agent for the order snapshot.
func (c CheckoutCartCommand) UserAgent() string {
	return c.options.UserAgent
}

func (c *CheckoutCartCommand) setCartID(cartID kernel.UUID) error {
	if err := cartID.Validate(); err != nil {
		return err
	}

	c.cartID = cartID
	return nil
}

func (c *CheckoutCartCommand) setBuyerID(buyerID kernel.UUID) error {
	if err := buyerID.Validate(); err != nil {
		return err
	}

	c.buyerID = buyerID
	return nil
}

func (c *CheckoutCartCommand) setOptions(options CheckoutOptions) error {
	if err := options.FulfillmentType.Validate(); err != nil {
		return err
	}
	if options.FulfillmentType == order.FulfillmentTypeDelivery {
		if options.DeliveryLocation == nil {
			return ErrDeliveryLocationIsRequired
		}
		if err := options.DeliveryLocation.Validate(); err != nil {
			return err
		}
	}
	if options.PaymentMethod == "" {
		options.PaymentMethod = PaymentMethodCard
	}
	if err := options.PaymentMethod.Validate(); err != nil {
		return err
	}

	c.options = options
	return nil
}
