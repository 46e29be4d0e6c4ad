// cmd/scheduler/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/unclebandit/baz-scheduler/internal/config"
	"github.com/unclebandit/baz-scheduler/internal/db"
	"github.com/unclebandit/baz-scheduler/internal/delivery"
	"github.com/unclebandit/baz-scheduler/internal/logger"
	"github.com/unclebandit/baz-scheduler/internal/repository"
	"github.com/unclebandit/baz-scheduler/internal/service"
)

func main() {
	if err := run(); err != nil {
		logger.Error("scheduler failed", zap.Error(err))
		_ = logger.Sync()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("connecting to database",
		zap.String("driver", cfg.DBDriver),
		zap.String("dsn", cfg.MaskedDatabaseURL()),
	)
	conn, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn); err != nil {
		return err
	}

	sender, closeSender, err := delivery.Open(cfg.AMQPURL, cfg.DeliveryQueue)
	if err != nil {
		return err
	}
	defer closeSender()
	if cfg.AMQPURL == "" {
		logger.Warn("AMQP_URL not set, deliveries are mocked")
	}

	sched := service.NewScheduler(
		&repository.EnrollmentRepository{DB: conn},
		&repository.TargetRepository{DB: conn},
		&repository.SendRecordRepository{DB: conn},
		sender,
	)
	sched.Location = cfg.Location

	if cfg.ScheduleCron == "" {
		_, err := sched.Run(ctx)
		return err
	}
	return runCron(ctx, cfg, sched)
}

// runCron triggers a pass on every tick until ctx is cancelled. A tick that
// fires while the previous pass is still running is skipped.
func runCron(ctx context.Context, cfg *config.Config, sched *service.Scheduler) error {
	c := cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithLogger(logger.Cron()),
		cron.WithChain(
			cron.Recover(logger.Cron()),
			cron.SkipIfStillRunning(logger.Cron()),
		),
	)
	_, err := c.AddFunc(cfg.ScheduleCron, func() {
		if _, err := sched.Run(ctx); err != nil {
			logger.Error("pass failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid SCHEDULE_CRON %q: %w", cfg.ScheduleCron, err)
	}

	c.Start()
	logger.Info("scheduler running", zap.String("schedule", cfg.ScheduleCron))
	<-ctx.Done()

	logger.Info("shutting down, waiting for running pass")
	<-c.Stop().Done()
	return nil
}
