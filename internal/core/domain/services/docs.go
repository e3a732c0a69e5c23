// Package services provides domain services that orchestrate business
// operations across multiple domain entities in the order engine. It
// implements workflows that don't naturally belong to a single aggregate
// root.
//
// The package includes:
//   - PricingEngine: computes discounts, tax, and shipping for an order
//   - PickupPlanner: finds the earliest free bay slot on the pickup calendar
//   - RouteSelector: places a delivery stop on the best open route
//
// Domain services coordinate between aggregates, implementing business logic
// that spans multiple bounded contexts following Domain-Driven Design
// principles.
package services
