// Package services holds stateless domain services that work on aggregates
// without owning them: pricing, route selection, and pickup slot planning.
package services

import (
	"time"

	"marketplace/internal/core/domain/model/kernel"
)

// Volume discount tiers. A buyer qualifies for the highest tier their
// trailing spend with the vendor reaches; tiers never stack.
const (
	volumeTier1ThresholdCents = 5_000_000  // $50,000
	volumeTier2ThresholdCents = 10_000_000 // $100,000
	volumeTier3ThresholdCents = 25_000_000 // $250,000

	volumeTier1Rate = 0.05
	volumeTier2Rate = 0.08
	volumeTier3Rate = 0.12
)

// Delivery fee components. The fee starts from the vendor's base rate and
// grows with the road distance and the shipment weight.
const (
	deliveryPerKmCents = 150
	deliveryPerKgCents = 10

	urgentDeliveryMultiplier = 1.5
)

// Pricing captures the adjustments computed for one vendor order. Tax is not
// part of it; the order derives tax from its own subtotal.
type Pricing struct {
	Discount kernel.Money
	Shipping kernel.Money
}

// PricingEngine computes discounts and shipping for a vendor order. It is a
// pure function of its inputs so the same order always prices the same way.
//
// Two discount programs apply:
//   - volume: the highest tier reached by the buyer's trailing spend with
//     this vendor
//   - contract: a negotiated rate between this buyer and vendor
//
// Both are computed against the subtotal and added together.
type PricingEngine struct{}

// NewPricingEngine creates a new PricingEngine instance.
func NewPricingEngine() PricingEngine {
	return PricingEngine{}
}

// Price computes the full adjustment set for an order.
//
// trailingSpend is what the buyer spent with this vendor over the trailing
// window and selects the volume tier. contractRate is the buyer's negotiated
// discount rate with the vendor, zero when no contract exists. deliveryFee is
// the distance-and-weight fee for this shipment; freeShippingThreshold waives
// it once the subtotal reaches it (zero means no waiver). Pickup orders never
// pay shipping.
func (e PricingEngine) Price(
	subtotal kernel.Money,
	contractRate float64,
	trailingSpend kernel.Money,
	pickup bool,
	deliveryFee kernel.Money,
	freeShippingThreshold kernel.Money,
) Pricing {
	return Pricing{
		Discount: e.Discount(subtotal, contractRate, trailingSpend),
		Shipping: e.Shipping(subtotal, pickup, deliveryFee, freeShippingThreshold),
	}
}

// Discount returns the combined volume and contract discount for a subtotal.
func (e PricingEngine) Discount(subtotal kernel.Money, contractRate float64, trailingSpend kernel.Money) kernel.Money {
	discount := subtotal.MulRate(e.VolumeDiscountRate(trailingSpend))
	if contractRate > 0 {
		discount = discount.Add(subtotal.MulRate(contractRate))
	}
	return discount
}

// VolumeDiscountRate returns the rate of the highest tier the buyer's
// trailing spend with the vendor reaches, or zero below the first tier.
func (e PricingEngine) VolumeDiscountRate(trailingSpend kernel.Money) float64 {
	switch {
	case trailingSpend.Cents() >= volumeTier3ThresholdCents:
		return volumeTier3Rate
	case trailingSpend.Cents() >= volumeTier2ThresholdCents:
		return volumeTier2Rate
	case trailingSpend.Cents() >= volumeTier1ThresholdCents:
		return volumeTier1Rate
	default:
		return 0
	}
}

// Shipping returns the delivery fee for the order.
func (e PricingEngine) Shipping(
	subtotal kernel.Money,
	pickup bool,
	deliveryFee kernel.Money,
	freeShippingThreshold kernel.Money,
) kernel.Money {
	if pickup {
		return kernel.MustMoney(0)
	}
	if !freeShippingThreshold.IsZero() && !subtotal.LessThan(freeShippingThreshold) {
		return kernel.MustMoney(0)
	}
	return deliveryFee
}

// DeliveryFee prices a shipment from the vendor's warehouse to the delivery
// address: the vendor's base fee plus per-kilometre and per-kilogram charges,
// with an urgency surcharge on top.
func DeliveryFee(
	baseFee kernel.Money,
	warehouse kernel.GeoPoint,
	destination kernel.GeoPoint,
	weightKg float64,
	urgent bool,
) (kernel.Money, error) {
	distanceKm, err := warehouse.DistanceTo(destination)
	if err != nil {
		return kernel.Money{}, err
	}

	cents := baseFee.Cents() + int64(distanceKm*deliveryPerKmCents) + int64(weightKg*deliveryPerKgCents)
	if urgent {
		cents = int64(float64(cents) * urgentDeliveryMultiplier)
	}
	return kernel.NewMoney(cents)
}

// ExpectedFulfillmentDate returns the promised date for an order placed at
// the given time. The vendor's standard lead time counts business days only;
// urgent orders shave one day off but never promise same-day.
func ExpectedFulfillmentDate(placedAt time.Time, standardLeadDays int, urgent bool) time.Time {
	days := standardLeadDays
	if urgent {
		days--
	}
	if days < 1 {
		days = 1
	}

	date := placedAt
	for days > 0 {
		date = date.AddDate(0, 0, 1)
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			continue
		}
		days--
	}
	return date
}
