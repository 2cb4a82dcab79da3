package middleware

import (
	"context"
	"time"

	"framewire/rpcerr"
)

// ErrTimeout is returned when a handler doesn't complete within the
// configured deadline.
var ErrTimeout = rpcerr.New("middleware: request timed out")

// Timeout bounds how long next may run, carried over from
// middleware/timeout_middleware.go essentially unchanged: the shape of
// the handler signature changed, the race between ctx.Done() and a
// buffered result channel did not.
func Timeout(d time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			type result struct {
				out []byte
				err error
			}
			done := make(chan result, 1)
			go func() {
				out, err := next(ctx, payload)
				done <- result{out, err}
			}()

			select {
			case r := <-done:
				return r.out, r.err
			case <-ctx.Done():
				return nil, ErrTimeout
			}
		}
	}
}
