package log

import (
	"context"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type requestIDKey struct{}

var (
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger = build(os.Stderr)
	guard  sync.RWMutex
)

func build(w io.Writer) *zap.SugaredLogger {
	encoder := zap.NewProductionEncoderConfig()
	encoder.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoder), zapcore.AddSync(w), level)

	return zap.New(core).Sugar()
}

func get() *zap.SugaredLogger {
	guard.RLock()
	defer guard.RUnlock()

	return logger
}

// SetDebug enables or disables debug level logging.
func SetDebug(enabled bool) {
	if enabled {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.InfoLevel)
	}
}

// SetOutput redirects all log output to w. Used by tests to capture log lines.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	guard.Lock()
	defer guard.Unlock()

	logger = build(w)
}

func Debugf(format string, args ...any) {
	get().Debugf(format, args...)
}

func Infof(format string, args ...any) {
	get().Infof(format, args...)
}

func Warnf(format string, args ...any) {
	get().Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	get().Errorf(format, args...)
}

// WithRequestID returns a copy of ctx carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID attached to ctx, if any.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)

	return id, ok
}

// Request logs an info line tagged with the request ID carried by ctx.
func Request(ctx context.Context, msg string, fields ...any) {
	if id, ok := RequestID(ctx); ok {
		fields = append(fields, "request_id", id)
	}

	get().Infow(msg, fields...)
}

// RequestError logs an error line tagged with the request ID carried by ctx.
func RequestError(ctx context.Context, msg string, fields ...any) {
	if id, ok := RequestID(ctx); ok {
		fields = append(fields, "request_id", id)
	}

	get().Errorw(msg, fields...)
}
