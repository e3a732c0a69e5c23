// Package kernel provides core domain primitives shared throughout the
// marketplace domain model.
//
// The package includes:
//   - UUID: a value object for unique identifiers with validation and comparison
//   - Money: an integer-cents monetary amount safe for totals arithmetic
//   - GeoPoint: a latitude/longitude pair with haversine distance and zone labeling
//   - Order number generation for human-readable tracking references
//
// These primitives enforce domain invariants at construction time. They are
// immutable and thread-safe, making them suitable for concurrent use.
package kernel
