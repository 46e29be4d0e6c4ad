// internal/logger/cron.go
package logger

import (
	"github.com/robfig/cron/v3"
)

// cronLogger routes cron's key/value logging through the process logger.
type cronLogger struct{}

// Cron returns a cron.Logger backed by L().
func Cron() cron.Logger { return cronLogger{} }

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	L().Sugar().Debugw("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	L().Sugar().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
