package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// BookingEventsQueue is the durable queue booking events are routed to.
const BookingEventsQueue = "booking.events"

// Publisher sends BookingEvents to RabbitMQ.  It dials a fresh connection
// per publish: event volume is one message per booking write, and a
// short-lived connection cannot go stale between bursts.
type Publisher struct {
	url   string
	queue string
	log   *logrus.Logger
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string, log *logrus.Logger) *Publisher {
	return &Publisher{url: url, queue: BookingEventsQueue, log: log}
}

// Publish marshals ev and publishes it as a persistent message on the
// booking events queue.  Errors are logged and returned; callers are free
// to ignore them.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
	entry := p.log.WithFields(logrus.Fields{"event": ev.Event, "booking_id": ev.BookingID})

	body, err := json.Marshal(ev)
	if err != nil {
		entry.WithError(err).Error("rabbitmq: marshal event failed")
		return err
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		entry.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		entry.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		entry.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Event,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		entry.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}
