// Package queue contains the background consumer that listens to the
// rental.events queue and appends an audit line per event to a log file.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultLogPath is where StartConsumer writes when no path is given.
var DefaultLogPath = filepath.Join("logs", "rental-events.log")

// StartConsumer connects to RabbitMQ, declares the rental.events queue
// (durable) and consumes it until ctx is cancelled.  Each message is appended
// to logPath in a single-line, human-friendly format.  Dial failures are
// retried with exponential backoff; a closed delivery channel triggers a
// reconnect.  Messages that cannot be decoded are rejected without requeue.
func StartConsumer(ctx context.Context, url, logPath string) error {
	if logPath == "" {
		logPath = DefaultLogPath
	}
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("event-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, logPath)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("event-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logPath string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("event-consumer: set QoS failed: %v", err)
	}

	if err := Declare(ch); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := HandleMessage(logPath, d.Body); err != nil {
				log.Printf("event-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one event and appends its audit line to logPath.
func HandleMessage(logPath string, body []byte) error {
	var ev RentalEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" {
		return errors.New("event without type")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders the audit line of an event, newline included.
func FormatLine(ev RentalEvent) string {
	parts := []string{fmt.Sprintf("[%s] %s", ev.OccurredAt, ev.Type)}
	if ev.FilmID != 0 {
		parts = append(parts, fmt.Sprintf("film_id=%d", ev.FilmID))
	}
	if ev.FilmTitle != "" {
		parts = append(parts, fmt.Sprintf("title=%q", ev.FilmTitle))
	}
	if ev.ClientID != 0 {
		parts = append(parts, fmt.Sprintf("client_id=%d", ev.ClientID))
	}
	if ev.Email != "" {
		parts = append(parts, fmt.Sprintf("email=%q", ev.Email))
	}
	return strings.Join(parts, " | ") + "\n"
}
