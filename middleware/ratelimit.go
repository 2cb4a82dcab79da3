package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"framewire/rpcerr"
)

// ErrRateLimited is returned when the token bucket has no tokens left.
var ErrRateLimited = rpcerr.New("middleware: rate limit exceeded")

// RateLimit builds a token-bucket rate limiter middleware, carried over
// from middleware/rate_limit_middleware.go's golang.org/x/time/rate
// usage.
func RateLimit(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			if !limiter.Allow() {
				return nil, ErrRateLimited
			}
			return next(ctx, payload)
		}
	}
}
