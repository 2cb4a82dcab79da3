// Package registry implements the per-connection service method table
// (spec §4.E, §6 "register_service"/"deregister_service").
//
// Grounded on server.service/server.NewService's reflection scan of
// (args *A, reply *R) error methods, generalized: the core contract
// registers a raw func(context.Context, []byte) ([]byte, error) handler,
// since payload stays an opaque blob at this boundary per the
// structured-record-serialization Non-goal. RegisterTyped is opt-in
// sugar mirroring that typed convention, encoding/decoding with
// encoding/json exactly as server.businessHandler does.
package registry

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"

	"framewire/rpcerr"
)

// Handler processes one request's payload and returns the response
// payload, or an error to carry back as a nonzero application error_code.
type Handler func(ctx context.Context, payload []byte) ([]byte, error)

// Registry is a read-mostly, concurrency-safe method table.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds name to h. Re-registering a name replaces the handler.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Deregister removes name from the table, if present.
func (r *Registry) Deregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, name)
}

// Lookup returns the handler bound to name, and whether one was found.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// RegisterTyped registers a method with server/service.go's own
// (args *A, reply *R) error shape, wrapping it in a Handler that decodes
// the request payload as JSON into a fresh *A, calls fn, and encodes the
// resulting *R as the response payload.
func RegisterTyped(r *Registry, name string, fn any) error {
	fnType := reflect.TypeOf(fn)
	if fnType == nil || fnType.Kind() != reflect.Func {
		return rpcerr.Newf("registry: %s: fn must be a function", name)
	}
	if fnType.NumIn() != 2 || fnType.NumOut() != 1 || fnType.Out(0) != errorType ||
		fnType.In(0).Kind() != reflect.Ptr || fnType.In(1).Kind() != reflect.Ptr {
		return rpcerr.Newf("registry: %s: fn must have signature func(*Args, *Reply) error", name)
	}

	argType := fnType.In(0).Elem()
	replyType := fnType.In(1).Elem()
	fnValue := reflect.ValueOf(fn)

	r.Register(name, func(ctx context.Context, payload []byte) ([]byte, error) {
		argv := reflect.New(argType)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, argv.Interface()); err != nil {
				return nil, rpcerr.Wrapf(err, "registry: %s: decode args", name)
			}
		}
		replyv := reflect.New(replyType)

		results := fnValue.Call([]reflect.Value{argv, replyv})
		if !results[0].IsNil() {
			return nil, results[0].Interface().(error)
		}

		out, err := json.Marshal(replyv.Interface())
		if err != nil {
			return nil, rpcerr.Wrapf(err, "registry: %s: encode reply", name)
		}
		return out, nil
	})
	return nil
}
