package logging

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger: console output in development, JSON otherwise.
func New(dev bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// RequestLogger plugs zap into chi's middleware.RequestLogger.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return middleware.RequestLogger(&formatter{log: log})
}

type formatter struct {
	log *zap.Logger
}

func (f *formatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &entry{log: f.log.With(
		zap.String("requestId", middleware.GetReqID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("remote", r.RemoteAddr),
	)}
}

type entry struct {
	log *zap.Logger
}

func (e *entry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	fields := []zap.Field{
		zap.Int("status", status),
		zap.Int("bytes", bytes),
		zap.Duration("duration", elapsed),
	}
	switch {
	case status >= 500:
		e.log.Error("request", fields...)
	case status >= 400:
		e.log.Warn("request", fields...)
	default:
		e.log.Info("request", fields...)
	}
}

func (e *entry) Panic(v interface{}, stack []byte) {
	e.log.Error("panic", zap.Any("panic", v), zap.ByteString("stack", stack))
}
