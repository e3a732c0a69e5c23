// Package routing provides the in-process route optimizer. The nearest
// neighbour pass is deliberately simple; the port exists so a real solver
// can replace it without touching the dispatch flow.
package routing

import (
	"context"

	"marketplace/internal/core/domain/model/fulfillment"
	"marketplace/internal/core/domain/model/kernel"
)

// NearestNeighbourOptimizer orders stops by repeatedly driving to the
// closest unvisited one, starting from the depot.
type NearestNeighbourOptimizer struct{}

// NewNearestNeighbourOptimizer creates the optimizer.
func NewNearestNeighbourOptimizer() *NearestNeighbourOptimizer {
	return &NearestNeighbourOptimizer{}
}

// Optimize returns the stops in visiting order. The input slice is not
// modified.
func (o *NearestNeighbourOptimizer) Optimize(
	_ context.Context,
	depot kernel.GeoPoint,
	stops []*fulfillment.Stop,
) ([]*fulfillment.Stop, error) {
	if err := depot.Validate(); err != nil {
		return nil, err
	}

	remaining := make([]*fulfillment.Stop, len(stops))
	copy(remaining, stops)

	ordered := make([]*fulfillment.Stop, 0, len(stops))
	current := depot

	for len(remaining) > 0 {
		nearest := 0
		nearestDistance, err := current.DistanceTo(remaining[0].Location())
		if err != nil {
			return nil, err
		}

		for i := 1; i < len(remaining); i++ {
			distance, distErr := current.DistanceTo(remaining[i].Location())
			if distErr != nil {
				return nil, distErr
			}
			if distance < nearestDistance {
				nearest = i
				nearestDistance = distance
			}
		}

		next := remaining[nearest]
		ordered = append(ordered, next)
		current = next.Location()
		remaining = append(remaining[:nearest], remaining[nearest+1:]...)
	}

	return ordered, nil
}
