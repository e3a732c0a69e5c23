// Package payment provides the credit terms payment gateway. Wholesale
// buyers settle on account, so every charge is deferred onto an invoice;
// the checkout flow rejects buyers who are not approved for credit terms.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"
)

// CreditTermsGateway defers every charge onto credit terms and issues an
// invoice reference for the back office to collect.
type CreditTermsGateway struct{}

// NewCreditTermsGateway creates the gateway.
func NewCreditTermsGateway() *CreditTermsGateway {
	return &CreditTermsGateway{}
}

// Charge records the amount against the buyer's account. The result is
// always deferred; nothing is captured at checkout.
func (g *CreditTermsGateway) Charge(
	_ context.Context,
	buyerID kernel.UUID,
	orderID kernel.UUID,
	amount kernel.Money,
) (ports.PaymentResult, error) {
	reference := invoiceReference(orderID)
	slog.Info("charge deferred to credit terms",
		"buyer", buyerID, "order", orderID, "amount", amount, "reference", reference)

	return ports.PaymentResult{Reference: reference, Deferred: true}, nil
}

// Refund issues a credit note against the invoice.
func (g *CreditTermsGateway) Refund(
	_ context.Context,
	orderID kernel.UUID,
	reference string,
	amount kernel.Money,
) error {
	slog.Info("credit note issued",
		"order", orderID, "reference", reference, "amount", amount)
	return nil
}

func invoiceReference(orderID kernel.UUID) string {
	compact := strings.ReplaceAll(orderID.String(), "-", "")
	return fmt.Sprintf("inv_%s", compact[:12])
}
