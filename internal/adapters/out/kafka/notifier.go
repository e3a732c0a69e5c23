// Package kafka publishes order lifecycle events to Kafka topics. Consumers
// include buyer notifications, vendor dashboards, and the back office review
// queue. Events are keyed by order ID so per-order ordering is preserved.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"

	"github.com/segmentio/kafka-go"
)

const (
	eventOrderCreated   = "order.created"
	eventStatusChanged  = "order.status_changed"
	eventHighValueOrder = "order.high_value"
	eventRatingRequest  = "order.rating_requested"
)

// orderEvent is the wire format shared by all order topics.
type orderEvent struct {
	Event           string    `json:"event"`
	OrderID         string    `json:"order_id"`
	OrderNumber     string    `json:"order_number"`
	BuyerID         string    `json:"buyer_id"`
	VendorID        string    `json:"vendor_id"`
	Status          string    `json:"status"`
	PreviousStatus  string    `json:"previous_status,omitempty"`
	ActorID         string    `json:"actor_id,omitempty"`
	FulfillmentType string    `json:"fulfillment_type"`
	TotalCents      int64     `json:"total_cents"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Notifier publishes order events using kafka-go.
type Notifier struct {
	writer *kafka.Writer
}

// NewNotifier creates a notifier writing to the given topic on the brokers.
func NewNotifier(brokers []string, topic string) *Notifier {
	return &Notifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

// Close flushes and closes the underlying writer.
func (n *Notifier) Close() error {
	return n.writer.Close()
}

// NotifyOrderCreated announces a new order from a checkout.
func (n *Notifier) NotifyOrderCreated(ctx context.Context, aggregate *order.Order) error {
	return n.publish(ctx, orderEvent{
		Event: eventOrderCreated,
	}, aggregate)
}

// NotifyStatusChanged announces a status transition and who triggered it.
func (n *Notifier) NotifyStatusChanged(
	ctx context.Context,
	aggregate *order.Order,
	from order.Status,
	actorID kernel.UUID,
) error {
	return n.publish(ctx, orderEvent{
		Event:          eventStatusChanged,
		PreviousStatus: from.String(),
		ActorID:        actorID.String(),
	}, aggregate)
}

// NotifyHighValueOrder alerts the back office about an order above the
// review threshold.
func (n *Notifier) NotifyHighValueOrder(ctx context.Context, aggregate *order.Order) error {
	return n.publish(ctx, orderEvent{
		Event: eventHighValueOrder,
	}, aggregate)
}

// RequestRating asks the buyer to rate a delivered order.
func (n *Notifier) RequestRating(ctx context.Context, aggregate *order.Order) error {
	return n.publish(ctx, orderEvent{
		Event: eventRatingRequest,
	}, aggregate)
}

func (n *Notifier) publish(ctx context.Context, event orderEvent, aggregate *order.Order) error {
	event.OrderID = aggregate.ID().String()
	event.OrderNumber = aggregate.OrderNumber()
	event.BuyerID = aggregate.BuyerID().String()
	event.VendorID = aggregate.VendorID().String()
	event.Status = aggregate.Status().String()
	event.FulfillmentType = aggregate.FulfillmentType().String()
	event.TotalCents = aggregate.Total().Cents()
	event.OccurredAt = time.Now().UTC()

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
		Time:  event.OccurredAt,
	})
}
