package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher sends events to a durable queue through the default
// exchange. Publishes go through a circuit breaker so a dead broker fails
// fast instead of stalling requests.
type AMQPPublisher struct {
	conn  *amqp.Connection
	ch    channel
	queue string
	cb    *gobreaker.CircuitBreaker
}

func NewAMQPPublisher(url, queue string, cb *gobreaker.CircuitBreaker) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	return &AMQPPublisher{conn: conn, ch: ch, queue: queue, cb: cb}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    evt.ID,
			Type:         string(evt.Type),
			Timestamp:    evt.OccurredAt,
			Body:         body,
		})
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			return err
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
