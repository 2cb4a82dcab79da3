// Package middleware wraps registry.Handler values with cross-cutting
// behavior — logging, deadlines, rate limiting — generalized from
// middleware/middleware.go's *message.RPCMessage request/response shape
// to the opaque ([]byte) ([]byte, error) handler contract used
// everywhere else in this module.
//
// Grounded on middleware/middleware.go's HandlerFunc/Middleware/Chain.
// Retry middleware is deliberately not carried over: retry semantics are
// a named non-goal.
package middleware

import "context"

// methodNameKey is the context key dispatch stores the current method
// name under before invoking a handler, so middleware wrapping a handler
// has something to log/label without changing the handler signature.
type methodNameKeyType struct{}

var methodNameKey = methodNameKeyType{}

// WithMethodName attaches method to ctx for middleware to read back with
// MethodName.
func WithMethodName(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, methodNameKey, method)
}

// MethodName retrieves the method name WithMethodName attached, or ""
// if none was set.
func MethodName(ctx context.Context) string {
	method, _ := ctx.Value(methodNameKey).(string)
	return method
}

// HandlerFunc matches registry.Handler's shape, kept as its own type
// here so this package doesn't need to import registry.
type HandlerFunc func(ctx context.Context, payload []byte) ([]byte, error)

// Middleware wraps one HandlerFunc with another.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middlewares into one, applied outermost-first: the
// first middleware in the list sees the request first and the response
// last.
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
