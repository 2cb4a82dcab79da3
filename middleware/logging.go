package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Logging logs one line per call: method, duration, and error if any.
// Grounded on middleware/logging_middleware.go's log.Printf call,
// switched to structured zap fields per the ambient logging stack.
func Logging(logger *zap.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			start := time.Now()
			out, err := next(ctx, payload)
			fields := []zap.Field{
				zap.String("method", MethodName(ctx)),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
				logger.Warn("handler call failed", fields...)
			} else {
				logger.Info("handler call completed", fields...)
			}
			return out, err
		}
	}
}
