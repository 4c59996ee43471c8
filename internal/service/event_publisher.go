package service

import (
	"context"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/video-rental/internal/queue"
)

// EventPublisher hands rental events to a broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.RentalEvent) error
}

// AMQPPublisher publishes events to the rental.events queue of a RabbitMQ
// broker.  A CLI invocation emits at most one event, so each publish dials
// its own connection.
type AMQPPublisher struct {
	URL string
}

// Publish logs and returns any failure; callers treat it as best-effort.
func (p AMQPPublisher) Publish(ctx context.Context, ev queue.RentalEvent) error {
	if err := p.publish(ctx, ev); err != nil {
		log.Printf("rabbitmq: %s not published: %v", ev.Type, err)
		return err
	}
	return nil
}

func (p AMQPPublisher) publish(ctx context.Context, ev queue.RentalEvent) error {
	msg, err := ev.Publishing()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(5 * time.Second)})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := queue.Declare(ch); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	// default exchange, routed by queue name
	if err := ch.PublishWithContext(ctx, "", queue.QueueName, false, false, msg); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
