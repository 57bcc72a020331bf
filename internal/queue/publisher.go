package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends domain events to RabbitMQ.  It dials per publish so a
// broker outage never leaves a broken connection behind; errors are logged
// and returned so the caller can choose to ignore them.
type Publisher struct {
	url string
	log *zap.Logger
}

func NewPublisher(url string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{url: url, log: log}
}

// PublishPickupCompleted publishes ev to the pickup.completed queue as a
// persistent JSON message.
func (p *Publisher) PublishPickupCompleted(ctx context.Context, ev PickupCompletedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := declare(ch); err != nil {
		p.log.Warn("rabbitmq queue declare failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", PickupCompletedQueue, false, false, pub); err != nil {
		p.log.Warn("rabbitmq publish failed", zap.Error(err), zap.Uint64("pickup_id", ev.PickupID))
		return err
	}
	return nil
}

// declare makes sure the durable queue exists.  Idempotent.
func declare(ch *amqp.Channel) (amqp.Queue, error) {
	return ch.QueueDeclare(PickupCompletedQueue, true, false, false, false, nil)
}
