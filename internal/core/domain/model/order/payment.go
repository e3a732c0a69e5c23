package order

import "marketplace/internal/pkg/errs"

// PaymentStatus tracks the money side of an order independently of its
// fulfillment status. Credit-terms orders stay pending until the due date.
type PaymentStatus int

const (
	PaymentStatusUnknown PaymentStatus = iota
	PaymentStatusPending
	PaymentStatusPaid
	PaymentStatusFailed
	PaymentStatusRefunded
)

func getPaymentStatusStrings() map[PaymentStatus]string {
	return map[PaymentStatus]string{
		PaymentStatusUnknown:  "unknown",
		PaymentStatusPending:  "pending",
		PaymentStatusPaid:     "paid",
		PaymentStatusFailed:   "failed",
		PaymentStatusRefunded: "refunded",
	}
}

// PaymentStatusFromString parses a persisted payment status.
func PaymentStatusFromString(value string) (PaymentStatus, error) {
	for ps, name := range getPaymentStatusStrings() {
		if name == value && ps != PaymentStatusUnknown {
			return ps, nil
		}
	}
	return PaymentStatusUnknown, errs.NewValueIsInvalidError("payment status")
}

// Validate returns an error for the zero value.
func (s PaymentStatus) Validate() error {
	if _, ok := getPaymentStatusStrings()[s]; !ok || s == PaymentStatusUnknown {
		return errs.NewValueIsInvalidError("payment status")
	}
	return nil
}

func (s PaymentStatus) String() string {
	if name, ok := getPaymentStatusStrings()[s]; ok {
		return name
	}
	return "unknown"
}
