package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"massage-board-backend/internal/model"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w, topic: "appointment_events"}

	start := time.Date(2025, 6, 12, 15, 0, 0, 0, time.UTC)
	appt := &model.Appointment{
		ID:       "a1",
		Customer: "Alice",
		Status:   model.StatusCheckedIn,
		Start:    start,
		End:      start.Add(time.Hour),
	}
	now := time.Date(2025, 6, 12, 15, 5, 0, 0, time.UTC)

	require.NoError(t, p.Publish(context.Background(), ForAppointment(TypeUpdated, appt, now)))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "a1", string(w.msgs[0].Key))

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, TypeUpdated, got["event"])
	assert.Equal(t, "a1", got["id"])
	assert.Equal(t, "Alice", got["customer"])
	assert.Equal(t, "checked-in", got["status"])
	assert.Equal(t, "2025-06-12T15:00:00Z", got["start"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_DeletedCarriesOnlyID(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w, topic: "appointment_events"}

	require.NoError(t, p.Publish(context.Background(), Deleted("gone", time.Now())))

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, TypeDeleted, got["event"])
	assert.Equal(t, "gone", got["id"])
	assert.NotContains(t, got, "customer")
	assert.NotContains(t, got, "start")
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := &KafkaPublisher{writer: &recordingWriter{err: boom}, topic: "t"}

	err := p.Publish(context.Background(), Deleted("x", time.Now()))
	assert.ErrorIs(t, err, boom)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Deleted("x", time.Now())))
	assert.NoError(t, p.Close())
}
