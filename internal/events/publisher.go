// Package events publishes order lifecycle events to RabbitMQ for
// external collaborators (vendor dashboards, search indexers). Publishing
// is best effort and happens after the database commit: a broker outage
// is logged, never surfaced to the API caller, and never rolls anything
// back.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"kantin/internal/logger"
	"kantin/internal/models"
)

// Publisher emits order events. A Publisher built with an empty URL is a
// no-op, so the broker stays optional.
type Publisher struct {
	conn   *connection
	logger *logger.Logger
}

// OrderEvent is the payload published for every order lifecycle change.
type OrderEvent struct {
	Event          string             `json:"event"`
	OrderID        int64              `json:"order_id"`
	OrderNumber    string             `json:"order_number"`
	StudentID      int64              `json:"student_id"`
	VendorID       int64              `json:"vendor_id"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previous_status,omitempty"`
	TotalPrice     float64            `json:"total_price"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

// NewPublisher connects to RabbitMQ; an empty url yields a disabled
// publisher.
func NewPublisher(url string, log *logger.Logger) (*Publisher, error) {
	if url == "" {
		return &Publisher{logger: log}, nil
	}
	conn, err := newConnection(url, log)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, logger: log}, nil
}

// OrderCreated publishes an order.created event.
func (p *Publisher) OrderCreated(ctx context.Context, o *models.Order) {
	p.publish(ctx, fmt.Sprintf("order.created.%d", o.VendorID), OrderEvent{
		Event:       "order.created",
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		StudentID:   o.StudentID,
		VendorID:    o.VendorID,
		Status:      o.Status,
		TotalPrice:  o.TotalPrice,
		OccurredAt:  time.Now().UTC(),
	})
}

// OrderStatusChanged publishes an order.status_changed event.
func (p *Publisher) OrderStatusChanged(ctx context.Context, o *models.Order, previous models.OrderStatus) {
	p.publish(ctx, fmt.Sprintf("order.status_changed.%d", o.VendorID), OrderEvent{
		Event:          "order.status_changed",
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		StudentID:      o.StudentID,
		VendorID:       o.VendorID,
		Status:         o.Status,
		PreviousStatus: previous,
		TotalPrice:     o.TotalPrice,
		OccurredAt:     time.Now().UTC(),
	})
}

func (p *Publisher) publish(ctx context.Context, routingKey string, event OrderEvent) {
	if p == nil || p.conn == nil {
		return
	}

	if p.conn.isClosed() {
		if err := p.conn.reconnect(); err != nil {
			p.logger.Error("event_publish_failed", "", "Failed to reconnect to RabbitMQ", err, map[string]any{
				"routing_key": routingKey,
			})
			return
		}
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("event_publish_failed", "", "Failed to marshal event", err, nil)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.conn.channel.PublishWithContext(
		ctx,
		exchangeName, // exchange
		routingKey,   // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: 2, // persistent
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.logger.Error("event_publish_failed", "",
			fmt.Sprintf("Failed to publish %s", event.Event), err, map[string]any{
				"routing_key": routingKey,
				"order_id":    event.OrderID,
			})
		return
	}

	p.logger.Debug("event_published", "", fmt.Sprintf("Published %s", event.Event), map[string]any{
		"routing_key": routingKey,
		"order_id":    event.OrderID,
	})
}

// Close closes the broker connection.
func (p *Publisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	return p.conn.close()
}
