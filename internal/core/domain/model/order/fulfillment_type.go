package order

import "marketplace/internal/pkg/errs"

// FulfillmentType determines whether an order is collected by the buyer at a
// pickup bay or delivered on a route.
type FulfillmentType int

const (
	FulfillmentTypeUnknown FulfillmentType = iota
	FulfillmentTypePickup
	FulfillmentTypeDelivery
)

func getFulfillmentTypeStrings() map[FulfillmentType]string {
	return map[FulfillmentType]string{
		FulfillmentTypeUnknown:  "unknown",
		FulfillmentTypePickup:   "pickup",
		FulfillmentTypeDelivery: "delivery",
	}
}

// FulfillmentTypeFromString parses a persisted fulfillment type.
func FulfillmentTypeFromString(value string) (FulfillmentType, error) {
	for ft, name := range getFulfillmentTypeStrings() {
		if name == value && ft != FulfillmentTypeUnknown {
			return ft, nil
		}
	}
	return FulfillmentTypeUnknown, errs.NewValueIsInvalidError("fulfillment type")
}

// Validate returns an error for the zero value.
func (t FulfillmentType) Validate() error {
	if t != FulfillmentTypePickup && t != FulfillmentTypeDelivery {
		return errs.NewValueIsInvalidError("fulfillment type")
	}
	return nil
}

func (t FulfillmentType) String() string {
	if name, ok := getFulfillmentTypeStrings()[t]; ok {
		return name
	}
	return "unknown"
}
