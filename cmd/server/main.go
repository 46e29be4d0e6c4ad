// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/unclebandit/baz-scheduler/internal/config"
	"github.com/unclebandit/baz-scheduler/internal/controller"
	"github.com/unclebandit/baz-scheduler/internal/db"
	"github.com/unclebandit/baz-scheduler/internal/delivery"
	"github.com/unclebandit/baz-scheduler/internal/handler"
	"github.com/unclebandit/baz-scheduler/internal/logger"
	"github.com/unclebandit/baz-scheduler/internal/repository"
	"github.com/unclebandit/baz-scheduler/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	conn, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logger.L().Fatal("failed to open database", zap.String("dsn", cfg.MaskedDatabaseURL()), zap.Error(err))
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn); err != nil {
		logger.L().Fatal("failed to migrate", zap.Error(err))
	}

	sender, closeSender, err := delivery.Open(cfg.AMQPURL, cfg.DeliveryQueue)
	if err != nil {
		logger.L().Fatal("failed to open delivery queue", zap.Error(err))
	}
	defer closeSender()

	enrollmentRepo := &repository.EnrollmentRepository{DB: conn}
	targetRepo := &repository.TargetRepository{DB: conn}
	sendRecordRepo := &repository.SendRecordRepository{DB: conn}

	sched := service.NewScheduler(enrollmentRepo, targetRepo, sendRecordRepo, sender)
	sched.Location = cfg.Location
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, targetRepo, sendRecordRepo)
	enrollmentService.Location = cfg.Location

	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	passController := controller.NewPassController(sched)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Enrollment routes
	enrollmentHandler.Routes(r)
	// Pass trigger
	r.Post("/passes", passController.RunPass)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server running", zap.String("addr", cfg.HTTPAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
