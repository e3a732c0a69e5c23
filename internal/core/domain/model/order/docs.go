// Package order provides the Order aggregate for the marketplace order
// processing engine. An Order represents a single buyer / single vendor
// transaction: it owns its line items, its monetary totals, and the status
// state machine that carries the order through its lifecycle.
//
// The package includes:
//   - Order: the aggregate root owning items, totals, and lifecycle
//   - Item: a line item snapshotting product name, SKU, and price at order time
//   - Status: a closed enum with an explicit transition table
//
// Key business rules:
//   - total = subtotal + tax + shipping - discount after every mutation
//   - totals are recomputed from line items whenever items change
//   - status changes only through transitions present in the transition table
//   - an order references at most one fulfillment artifact: a pickup booking
//     or a delivery stop, never both
//
// Side effects of status transitions (stock confirmation, notifications,
// refunds) are orchestrated by the application layer; the aggregate only
// validates and records the transition.
package order
