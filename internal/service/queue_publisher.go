package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/eventpro/ticketing/internal/queue"
)

// AMQPPublisher publishes domain events to RabbitMQ. It dials a fresh
// connection per publish so the request path never holds broker state;
// publish volume here is low enough that connection reuse is not worth
// the reconnect bookkeeping. Errors are logged and returned so callers
// can ignore failures without interrupting the main request flow.
type AMQPPublisher struct {
	url string
}

// NewAMQPPublisher returns a publisher targeting the broker at url.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url}
}

// PublishTicketBooked publishes a TicketBookedEvent to the
// "ticket.booked" queue.
func (p *AMQPPublisher) PublishTicketBooked(ctx context.Context, ev queue.TicketBookedEvent) error {
	return p.publish(ctx, queue.TicketBookedQueue, ev)
}

// PublishPaymentVerified publishes a PaymentVerifiedEvent to the
// "payment.verified" queue.
func (p *AMQPPublisher) PublishPaymentVerified(ctx context.Context, ev queue.PaymentVerifiedEvent) error {
	return p.publish(ctx, queue.PaymentVerifiedQueue, ev)
}

func (p *AMQPPublisher) publish(ctx context.Context, queueName string, event any) error {
	conn, err := amqp.Dial(p.url)
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

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	); err != nil {
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
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
