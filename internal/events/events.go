package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"massage-board-backend/internal/model"
)

const (
	TypeCreated = "appointment_created"
	TypeUpdated = "appointment_updated"
	TypeDeleted = "appointment_deleted"
)

// Event describes a change to an appointment. Deletions carry only the id.
type Event struct {
	Type          string       `json:"event"`
	AppointmentID string       `json:"id"`
	Worker        string       `json:"customer,omitempty"`
	Status        model.Status `json:"status,omitempty"`
	Start         *time.Time   `json:"start,omitempty"`
	End           *time.Time   `json:"end,omitempty"`
	OccurredAt    time.Time    `json:"occurredAt"`
}

// ForAppointment builds a created or updated event from the stored record.
func ForAppointment(eventType string, appt *model.Appointment, now time.Time) Event {
	start, end := appt.Start, appt.End
	return Event{
		Type:          eventType,
		AppointmentID: appt.ID,
		Worker:        appt.Customer,
		Status:        appt.Status,
		Start:         &start,
		End:           &end,
		OccurredAt:    now.UTC(),
	}
}

// Deleted builds the event published after a hard delete.
func Deleted(id string, now time.Time) Event {
	return Event{Type: TypeDeleted, AppointmentID: id, OccurredAt: now.UTC()}
}

// Publisher emits appointment change events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// messageWriter is the part of kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by appointment id, so changes to one
// appointment stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher creates an asynchronous writer for the given brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Printf("Failed to deliver %d appointment events: %v", len(messages), err)
			}
		},
	}
	return &KafkaPublisher{writer: writer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.AppointmentID),
		Value: value,
	}); err != nil {
		return fmt.Errorf("failed to write event to %s: %w", p.topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. Used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
