package dispatch

import (
	"context"
	"log/slog"
	"time"
)

// Middleware is a function that wraps a Handler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next Handler) Handler

// PanicRecoveryMiddleware returns a middleware that turns handler panics
// into *PanicError values.
func PanicRecoveryMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, payload []byte) (resp []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp = nil
					err = &PanicError{Value: r}
				}
			}()
			return next(ctx, payload)
		}
	}
}

// LoggingMiddleware logs every invocation at debug level and failures at
// warn level.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			attrs := []any{"bytes", len(payload)}
			if cc, ok := CallContextFrom(ctx); ok {
				attrs = append(attrs, "capability", cc.Capability(), "module", cc.Module())
			}

			start := time.Now()
			resp, err := next(ctx, payload)
			attrs = append(attrs, "duration", time.Since(start))
			if err != nil {
				logger.WarnContext(ctx, "invocation failed", append(attrs, "error", err)...)
			} else {
				logger.DebugContext(ctx, "invocation completed", attrs...)
			}
			return resp, err
		}
	}
}
