package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"violet-client/internal/model"
)

// NotificationEvent is the message body published for every notification.
type NotificationEvent struct {
	ID        string         `json:"id"`
	Message   string         `json:"message"`
	Severity  model.Severity `json:"severity"`
	ExpiresAt time.Time      `json:"expires_at"`
	Username  string         `json:"username,omitempty"`
	EmittedAt time.Time      `json:"emitted_at"`
}

func encodeEvent(n model.Notification, username string, now time.Time) ([]byte, error) {
	payload, err := json.Marshal(NotificationEvent{
		ID:        n.ID,
		Message:   n.Message,
		Severity:  n.Severity,
		ExpiresAt: n.ExpiresAt,
		Username:  username,
		EmittedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal notification event failed: %w", err)
	}
	return payload, nil
}

// AMQPPublisher writes notification events to a durable queue.
type AMQPPublisher struct {
	conn      *amqp.Connection
	queueName string
	username  func() string
}

// NewAMQPPublisher tags events with the name returned by username, which may
// be nil.
func NewAMQPPublisher(conn *amqp.Connection, queueName string, username func() string) *AMQPPublisher {
	return &AMQPPublisher{conn: conn, queueName: queueName, username: username}
}

func (p *AMQPPublisher) Publish(ctx context.Context, n model.Notification) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	var username string
	if p.username != nil {
		username = p.username()
	}
	payload, err := encodeEvent(n, username, time.Now())
	if err != nil {
		return err
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    n.ID,
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish notification failed: %w", err)
	}
	return nil
}
