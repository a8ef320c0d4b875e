// Package logger holds the process-wide zap logger. It is a no-op until Init
// runs, so packages can log unconditionally from tests.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "property-marketplace"

var (
	Logger = zap.NewNop()
)

// Init builds the process logger. Production gets JSON at info level with
// sampling; anything else gets colored console output at debug level.
func Init(environment string) error {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.InitialFields = map[string]any{
		"service":     serviceName,
		"environment": environment,
	}

	built, err := config.Build(
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return err
	}

	Replace(built)
	return nil
}

// Replace swaps the process logger and returns a func restoring the previous
// one. Tests use it with zaptest/observer to assert on emitted events.
func Replace(l *zap.Logger) (restore func()) {
	prev := Logger
	Logger = l
	undoGlobals := zap.ReplaceGlobals(l)
	return func() {
		Logger = prev
		undoGlobals()
	}
}

func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// WithRequestID is for code that logs several entries about one request.
// The returned logger is not wrapped, so it reports its own caller.
func WithRequestID(requestID string) *zap.Logger {
	if requestID == "" {
		return Logger.WithOptions(zap.AddCallerSkip(-1))
	}
	return Logger.WithOptions(zap.AddCallerSkip(-1)).With(zap.String("request_id", requestID))
}

// Named returns an unwrapped child logger for components that take a
// *zap.Logger, such as the MQTT client.
func Named(name string) *zap.Logger {
	return Logger.WithOptions(zap.AddCallerSkip(-1)).Named(name)
}

func Debug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Logger.Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	Logger.Fatal(msg, fields...)
}
