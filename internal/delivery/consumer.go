// internal/delivery/consumer.go
package delivery

import (
	"context"
	"encoding/json"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/unclebandit/baz-scheduler/internal/logger"
)

// Consumer drains the delivery queue and hands each decoded item to Transport.
// Undecodable messages are dropped. A failed item is requeued once and dropped
// when it fails again.
type Consumer struct {
	Transport Sender
}

// Consume blocks until msgs is closed or ctx is done.
func (c *Consumer) Consume(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-msgs:
			if !ok {
				return nil
			}
			c.process(ctx, m)
		}
	}
}

func (c *Consumer) process(ctx context.Context, m amqp.Delivery) {
	var d Delivery
	if err := json.Unmarshal(m.Body, &d); err != nil {
		logger.Warn("invalid delivery message", zap.Error(err))
		ack(m)
		return
	}

	if err := c.Transport.Send(ctx, d); err != nil {
		requeue := !m.Redelivered
		logger.Warn("delivery handling failed",
			zap.Int("target_id", d.TargetID),
			zap.Bool("requeue", requeue),
			zap.Error(err),
		)
		if nerr := m.Nack(false, requeue); nerr != nil {
			logger.Error("nack failed", zap.Error(nerr))
		}
		return
	}
	ack(m)
}

func ack(m amqp.Delivery) {
	if err := m.Ack(false); err != nil {
		logger.Error("ack failed", zap.Error(err))
	}
}

// LogTransport stands in for a real mail transport: it logs the delivery that
// would be sent.
type LogTransport struct{}

func (LogTransport) Send(ctx context.Context, d Delivery) error {
	logger.Info("Prepare to send Email",
		zap.String("to", d.TargetEmail),
		zap.Time("time", d.ScheduledAt),
		zap.String("content", d.Content),
		zap.Int("interval", d.Interval),
	)
	return ctx.Err()
}

var _ Sender = LogTransport{}
