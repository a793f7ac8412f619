package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/room-orders/internal/models"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleOrder() models.RoomOrder {
	return models.NewRoomOrder(3, []models.OrderLineItem{
		{ProductID: 1, Quantity: 2, Product: models.Product{ID: 1, Name: "Coffee", Price: decimal.RequireFromString("3.50")}},
	})
}

func TestPublisher_PublishRoomUpdated(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, "hotel.", testLogger())

	require.NoError(t, p.PublishRoomUpdated(context.Background(), sampleOrder()))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "hotel.room.updated", msg.Topic)
	assert.Equal(t, "3", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, TypeRoomUpdated, string(msg.Headers[0].Value))

	var evt Event
	require.NoError(t, json.Unmarshal(msg.Value, &evt))
	assert.NotEmpty(t, evt.EventID)
	assert.Equal(t, TypeRoomUpdated, evt.EventType)
	assert.Equal(t, 3, evt.RoomNumber)
	assert.True(t, evt.Order.TotalAmount().Equal(decimal.RequireFromString("7")))
}

func TestPublisher_PublishRoomCleared(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, "", testLogger())

	require.NoError(t, p.PublishRoomCleared(context.Background(), sampleOrder()))
	require.Len(t, w.messages, 1)
	assert.Equal(t, "room.cleared", w.messages[0].Topic)
}

func TestPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unreachable")}
	p := newPublisher(w, "", testLogger())

	err := p.PublishRoomUpdated(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish room.updated event")
}

func TestPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, "", testLogger())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
