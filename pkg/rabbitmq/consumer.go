package rabbitmq

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Handler processes one delivery. A nil error acknowledges it; any other
// error requeues it.
type Handler func(ctx context.Context, body []byte) error

// ErrPermanent marks a delivery that must be dropped rather than requeued.
var ErrPermanent = errors.New("rabbitmq: permanent failure")

type Consumer struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  logrus.FieldLogger
}

func NewConsumer(amqpURL string, log logrus.FieldLogger) (*Consumer, error) {
	cleanURL, err := sanitizeURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp.Dial(cleanURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Consumer{conn: conn, ch: ch, log: log}, nil
}

// Consume binds queueName to routingKey on exchange and feeds deliveries to
// handler until ctx is cancelled or the channel closes.
func (c *Consumer) Consume(ctx context.Context, exchange, queueName, routingKey string, handler Handler) error {
	if err := c.ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	q, err := c.ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return err
	}

	if err := c.ch.QueueBind(q.Name, routingKey, exchange, false, nil); err != nil {
		return err
	}

	if err := c.ch.Qos(10, 0, false); err != nil {
		return err
	}

	msgs, err := c.ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("rabbitmq: delivery channel closed")
			}
			c.dispatch(ctx, d, handler)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, d amqp.Delivery, handler Handler) {
	log := c.log.WithField("routing_key", d.RoutingKey)

	err := handler(ctx, d.Body)
	switch {
	case err == nil:
		d.Ack(false)
	case errors.Is(err, ErrPermanent):
		log.WithError(err).Warn("dropping message")
		d.Nack(false, false)
	default:
		log.WithError(err).Warn("handler failed; re-queuing")
		d.Nack(false, true)
	}
}

func (c *Consumer) Close() {
	if c.ch != nil {
		c.ch.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
