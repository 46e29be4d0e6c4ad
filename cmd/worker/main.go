// cmd/worker/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/unclebandit/baz-scheduler/internal/config"
	"github.com/unclebandit/baz-scheduler/internal/delivery"
	"github.com/unclebandit/baz-scheduler/internal/logger"
)

// The worker drains the delivery queue the scheduler publishes to.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.AMQPURL == "" {
		logger.L().Fatal("AMQP_URL is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	msgs, closer, err := delivery.DialConsumer(cfg.AMQPURL, cfg.DeliveryQueue)
	if err != nil {
		logger.L().Fatal("failed to start consumer", zap.Error(err))
	}
	defer closer()

	logger.Info("worker running, waiting for messages", zap.String("queue", cfg.DeliveryQueue))
	consumer := &delivery.Consumer{Transport: delivery.LogTransport{}}
	if err := consumer.Consume(ctx, msgs); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", zap.Error(err))
	}
}
