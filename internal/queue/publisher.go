// Package queue publishes domain events to RabbitMQ. Publishing is
// best-effort: reservation commits never roll back because the broker
// is unreachable, and a publisher without a configured URL drops
// events silently.
package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const reservationCreatedQueue = "reservation.created"

// ReservationCreatedEvent carries enough information for downstream
// consumers to log, notify, or feed analytics without querying the
// primary database.
type ReservationCreatedEvent struct {
	ReservationID int       `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	ShowtimeID    int       `json:"showtime_id"`
	HallID        int       `json:"hall_id"`
	SeatIDs       []int     `json:"seat_ids"`
	SeatLabels    []string  `json:"seats"`
	StartTime     time.Time `json:"start_time"`
	CreatedAt     time.Time `json:"created_at"`
}

type Publisher struct {
	url    string
	logger *slog.Logger
}

func NewPublisher(url string, logger *slog.Logger) *Publisher {
	return &Publisher{
		url:    url,
		logger: logger,
	}
}

// PublishReservationCreated pushes the event onto a durable queue.
// Errors are logged and returned so callers can choose to ignore them.
func (p *Publisher) PublishReservationCreated(ctx context.Context, event ReservationCreatedEvent) error {
	if p.url == "" {
		return nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Error("rabbitmq dial failed", "error", err)
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Error("rabbitmq channel open failed", "error", err)
		return err
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		reservationCreatedQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		p.logger.Error("rabbitmq queue declare failed", "error", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx,
		"",
		reservationCreatedQueue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("rabbitmq publish failed", "error", err, "queue", reservationCreatedQueue)
		return err
	}

	return nil
}
