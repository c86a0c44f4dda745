// Package events publishes order lifecycle events to Kafka. Publishing
// happens after the storage transaction commits; a publish failure is logged
// and never unwinds an order.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

// EventType represents the type of order event.
type EventType string

const (
	EventTypeOrderCreated EventType = "order.created"
)

// OrderEvent is the envelope written to the orders topic.
type OrderEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	OrderID   int64           `json:"order_id"`
	UserID    int64           `json:"user_id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher publishes order events.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	Close() error
}

var _ Publisher = (*KafkaPublisher)(nil)

// KafkaPublisher publishes order events to Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		topic:  cfg.OrdersTopic,
	}
}

// PublishOrderCreated publishes an order created event.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	slog.Debug("Publishing order created event", "order_id", order.ID)

	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	event := &OrderEvent{
		ID:        uuid.NewString(),
		Type:      EventTypeOrderCreated,
		OrderID:   order.ID,
		UserID:    order.UserID,
		Data:      data,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, event)
}

func (p *KafkaPublisher) publish(ctx context.Context, event *OrderEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.OrderID, 10)),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		slog.Error("Failed to publish event",
			"event_id", event.ID,
			"event_type", event.Type,
			"order_id", event.OrderID,
			"error", err)
		return err
	}

	slog.Info("Event published",
		"event_id", event.ID,
		"event_type", event.Type,
		"order_id", event.OrderID)

	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	slog.Info("Closing Kafka publisher")
	return p.writer.Close()
}

// MockPublisher records events for testing.
type MockPublisher struct {
	Events []*OrderEvent
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Events: make([]*OrderEvent, 0)}
}

func (m *MockPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	m.Events = append(m.Events, &OrderEvent{
		Type:    EventTypeOrderCreated,
		OrderID: order.ID,
		UserID:  order.UserID,
	})
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}
