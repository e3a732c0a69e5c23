// Package redis tracks preparation timers in Redis. Each preparing order
// gets a key holding its expected duration; the key's TTL doubles as the
// overdue signal, so the vendor dashboard only has to look for keys that are
// gone while the order is still preparing.
package redis

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"

	"github.com/redis/go-redis/v9"
)

const prepKeyPrefix = "prep:"

// PreparationTimer implements the preparation clock on a Redis client.
type PreparationTimer struct {
	client *redis.Client
}

// NewPreparationTimer creates a timer store on the given Redis address.
func NewPreparationTimer(addr string) *PreparationTimer {
	return &PreparationTimer{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// NewPreparationTimerWithClient wraps an existing Redis client.
func NewPreparationTimerWithClient(client *redis.Client) *PreparationTimer {
	return &PreparationTimer{client: client}
}

// Close releases the underlying client.
func (t *PreparationTimer) Close() error {
	return t.client.Close()
}

// StartPreparation records when preparation began. The key expires when the
// expected duration has passed.
func (t *PreparationTimer) StartPreparation(
	ctx context.Context,
	orderID kernel.UUID,
	expected time.Duration,
) error {
	value := fmt.Sprintf("%d|%s", time.Now().UTC().Unix(), expected)
	return t.client.Set(ctx, prepKey(orderID), value, expected).Err()
}

// ClearPreparation removes the timer once the order moves on. Clearing an
// already expired timer is not an error.
func (t *PreparationTimer) ClearPreparation(ctx context.Context, orderID kernel.UUID) error {
	return t.client.Del(ctx, prepKey(orderID)).Err()
}

func prepKey(orderID kernel.UUID) string {
	return prepKeyPrefix + orderID.String()
}
