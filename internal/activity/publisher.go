// Package activity publishes lead action events to RabbitMQ so downstream
// consumers (reporting, CRM sync) can follow what operators did. The feed is
// optional: without an AMQP URL the bot runs with a no-op publisher, and a
// publish failure never affects operator feedback.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "ex.leadwatch"
	RoutingKey   = "k.lead.activity"
)

// Event is one resolved operator action.
type Event struct {
	ID         string    `json:"id"`
	LeadID     string    `json:"lead_id"`
	Action     string    `json:"action"`
	Outcome    string    `json:"outcome"`
	TaskID     string    `json:"task_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent builds an Event with a fresh ID and timestamp.
func NewEvent(leadID, action, outcome, taskID string) Event {
	return Event{
		ID:         uuid.New().String(),
		LeadID:     leadID,
		Action:     action,
		Outcome:    outcome,
		TaskID:     taskID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers activity events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// AMQPPublisher publishes events to a durable direct exchange. Consumers own
// their queues and bindings.
type AMQPPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to RabbitMQ and declares the activity exchange.
func Dial(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPPublisher{conn: conn, ch: ch}, nil
}

// Publish sends one event with persistent delivery.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// NopPublisher discards events. Used when no AMQP URL is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
