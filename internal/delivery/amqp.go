// internal/delivery/amqp.go
package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/streadway/amqp"
)

// Publisher is the part of *amqp.Channel the sender uses.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSender hands each delivery to a durable queue as a persistent JSON message.
// The message timestamp is the scheduled slot; consumers decide when to transmit.
type AMQPSender struct {
	ch    Publisher
	queue string
}

func NewAMQPSender(ch Publisher, queue string) *AMQPSender {
	return &AMQPSender{ch: ch, queue: queue}
}

func (s *AMQPSender) Send(ctx context.Context, d Delivery) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(d)
	if err != nil {
		return err
	}
	err = s.ch.Publish(
		"",      // default exchange
		s.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    d.ScheduledAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", s.queue, err)
	}
	return nil
}

// DialAMQP connects, declares the durable queue and returns a sender with its closer.
func DialAMQP(url, queue string) (*AMQPSender, func() error, error) {
	ch, name, closer, err := openQueue(url, queue)
	if err != nil {
		return nil, nil, err
	}
	return NewAMQPSender(ch, name), closer, nil
}

// DialConsumer connects to the same queue and starts consuming with manual acks,
// one unacknowledged message at a time.
func DialConsumer(url, queue string) (<-chan amqp.Delivery, func() error, error) {
	ch, name, closer, err := openQueue(url, queue)
	if err != nil {
		return nil, nil, err
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return nil, nil, errors.Join(fmt.Errorf("failed to set qos: %w", err), closer())
	}
	msgs, err := ch.Consume(
		name,
		"",    // consumer tag
		false, // autoAck
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("failed to register consumer: %w", err), closer())
	}
	return msgs, closer, nil
}

func openQueue(url, queue string) (*amqp.Channel, string, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, "", nil, errors.Join(fmt.Errorf("failed to open a channel: %w", err), conn.Close())
	}

	q, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, "", nil, errors.Join(fmt.Errorf("failed to declare queue: %w", err), ch.Close(), conn.Close())
	}

	closer := func() error {
		return errors.Join(ch.Close(), conn.Close())
	}
	return ch, q.Name, closer, nil
}

var _ Sender = (*AMQPSender)(nil)
var _ Publisher = (*amqp.Channel)(nil)
