// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// QueueName is the durable queue rental events are routed to.
const QueueName = "rental.events"

// Event types.
const (
	FilmAdded          = "film.added"
	ClientEmailUpdated = "client.email_updated"
	ClientRemoved      = "client.removed"
)

// RentalEvent is published after a successful mutation.  It carries enough
// information for downstream consumers to audit the change without querying
// the primary database.
type RentalEvent struct {
	Type       string `json:"type"`
	FilmID     uint64 `json:"film_id,omitempty"`
	FilmTitle  string `json:"film_title,omitempty"`
	ClientID   uint64 `json:"client_id,omitempty"`
	Email      string `json:"email,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// NewEvent stamps an event of the given type with the current UTC time.
func NewEvent(typ string) RentalEvent {
	return RentalEvent{Type: typ, OccurredAt: time.Now().UTC().Format(time.RFC3339)}
}

// Declare creates the durable event queue if it does not exist yet.  The
// publisher and the consumer both call it, so either may start first.
func Declare(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(QueueName, true, false, false, false, nil)
	return err
}

// Publishing wraps ev as a persistent JSON message.
func (ev RentalEvent) Publishing() (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}, nil
}
