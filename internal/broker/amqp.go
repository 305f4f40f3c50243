package broker

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	queueName      = "crawl"
	routingKeyName = "crawl.url"
)

// AMQPBroker is the production Broker adapter, backed by RabbitMQ.
type AMQPBroker struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPBroker(url string) (*AMQPBroker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("broker: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("broker: open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("broker: declare queue: %w", err)
	}
	return &AMQPBroker{conn: conn, ch: ch}, nil
}

func (b *AMQPBroker) Close() error {
	if err := b.ch.Close(); err != nil {
		return err
	}
	return b.conn.Close()
}

func (b *AMQPBroker) Enqueue(ctx context.Context, msg CrawlMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("broker: marshal message: %w", err)
	}
	return b.ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (b *AMQPBroker) Consume(ctx context.Context, handler func(context.Context, CrawlMessage) error) error {
	deliveries, err := b.ch.ConsumeWithContext(ctx, queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("broker: consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			var msg CrawlMessage
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				_ = d.Nack(false, false)
				continue
			}
			if err := handler(ctx, msg); err != nil {
				_ = d.Nack(false, true)
				return err
			}
			_ = d.Ack(false)
		}
	}
}

func (b *AMQPBroker) Ping(_ context.Context) error {
	if b.conn.IsClosed() {
		return ErrBrokerClosed
	}
	return nil
}
