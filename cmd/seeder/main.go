// cmd/seeder/main.go
package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/unclebandit/baz-scheduler/internal/config"
	"github.com/unclebandit/baz-scheduler/internal/db"
	"github.com/unclebandit/baz-scheduler/internal/logger"
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

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logger.L().Fatal("failed to open database", zap.String("dsn", cfg.MaskedDatabaseURL()), zap.Error(err))
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn); err != nil {
		logger.L().Fatal("failed to migrate", zap.Error(err))
	}
	if err := db.Seed(ctx, conn); err != nil {
		logger.L().Fatal("failed to seed", zap.Error(err))
	}
	logger.Info("database seeding completed", zap.String("driver", cfg.DBDriver))
}
