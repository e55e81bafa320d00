package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

// PushChannel is the bus channel room listeners subscribe to.
const PushChannel = "push"

// TransitionQueue is the durable queue transition audit records land on.
const TransitionQueue = "room.playing"

// Publisher fans room events out over Redis Pub/Sub and writes transition
// audit records to RabbitMQ. A nil redis client disables the bus; an empty
// amqp URL disables the audit trail. Both degrade without failing callers.
type Publisher struct {
	rdb     *redis.Client
	amqpURL string
}

func NewPublisher(rdb *redis.Client, amqpURL string) *Publisher {
	return &Publisher{rdb: rdb, amqpURL: amqpURL}
}

// PublishRoom sends a RoomEvent on the "push" channel.
func (p *Publisher) PublishRoom(ctx context.Context, ev RoomEvent) error {
	if p.rdb == nil {
		return nil
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("bus: marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, PushChannel, body).Err(); err != nil {
		return fmt.Errorf("bus: publish: %w", err)
	}
	return nil
}

// PublishTransition writes a persistent transition record to the
// room.playing queue. The connection is per-call; transitions are rare
// enough (one per song) that holding a channel open buys nothing.
func (p *Publisher) PublishTransition(ctx context.Context, ev TransitionEvent) error {
	if p.amqpURL == "" {
		return nil
	}
	conn, err := amqp.Dial(p.amqpURL)
	if err != nil {
		return fmt.Errorf("amqp: dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp: channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(TransitionQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("amqp: queue declare: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("amqp: marshal event: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.New().String(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", TransitionQueue, false, false, pub); err != nil {
		return fmt.Errorf("amqp: publish: %w", err)
	}
	return nil
}
