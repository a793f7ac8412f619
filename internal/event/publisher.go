package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/Lixing-Zhang/room-orders/internal/models"
)

// Event types published for room bills.
const (
	TypeRoomUpdated = "room.updated"
	TypeRoomCleared = "room.cleared"
)

// Event is the envelope written to Kafka for every bill change
type Event struct {
	EventID    string           `json:"eventId"`
	EventType  string           `json:"eventType"`
	RoomNumber int              `json:"roomNumber"`
	Timestamp  time.Time        `json:"timestamp"`
	Order      models.RoomOrder `json:"order"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher sends bill events to Kafka. Messages are keyed by room number so
// that events for one room stay ordered within a partition.
type Publisher struct {
	writer      messageWriter
	topicPrefix string
	logger      *slog.Logger
}

// NewPublisher creates a Kafka-backed publisher
func NewPublisher(brokers []string, topicPrefix string, logger *slog.Logger) *Publisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}
	return newPublisher(w, topicPrefix, logger)
}

func newPublisher(w messageWriter, topicPrefix string, logger *slog.Logger) *Publisher {
	return &Publisher{
		writer:      w,
		topicPrefix: topicPrefix,
		logger:      logger,
	}
}

// Topic returns the full topic name for an event type
func (p *Publisher) Topic(eventType string) string {
	return p.topicPrefix + eventType
}

// PublishRoomUpdated publishes the room's bill after an item change
func (p *Publisher) PublishRoomUpdated(ctx context.Context, order models.RoomOrder) error {
	return p.publish(ctx, TypeRoomUpdated, order)
}

// PublishRoomCleared publishes the bill as it stood when the room was settled
func (p *Publisher) PublishRoomCleared(ctx context.Context, settled models.RoomOrder) error {
	return p.publish(ctx, TypeRoomCleared, settled)
}

func (p *Publisher) publish(ctx context.Context, eventType string, order models.RoomOrder) error {
	evt := Event{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		RoomNumber: order.RoomNumber,
		Timestamp:  time.Now().UTC(),
		Order:      order,
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	msg := kafka.Message{
		Topic: p.Topic(eventType),
		Key:   []byte(strconv.Itoa(order.RoomNumber)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published room event",
		slog.String("event_type", eventType),
		slog.Int("room", order.RoomNumber),
		slog.String("event_id", evt.EventID),
	)
	return nil
}

// Close flushes pending messages and closes the writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}
