// Package service holds outbound integrations: the message-broker publisher
// and the external CAPTCHA verifier.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/avestan/hotel-booking-api/internal/queue"
)

// Publish sends a JSON-encoded event to the named durable queue on the
// default exchange. Errors are logged and returned so callers can ignore
// failures without interrupting the main request flow.
func Publish(ctx context.Context, queueName string, event any) error {
	conn, err := amqp.Dial(queue.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

// PublishBookingConfirmed publishes a BookingConfirmedEvent.
func PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	return Publish(ctx, queue.BookingConfirmedQueue, ev)
}

// PublishPasswordResetMail hands a reset mail to the mail worker.
func PublishPasswordResetMail(ctx context.Context, ev queue.PasswordResetMailEvent) error {
	return Publish(ctx, queue.PasswordResetMailQueue, ev)
}
