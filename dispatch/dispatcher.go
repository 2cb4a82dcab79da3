// Package dispatch turns one classify.ClassifyResult into the concrete
// action its Disposition names (spec §4.E). It is the layer above
// classify.Classify: the classifier decides what a frame means, dispatch
// carries that meaning out against the registry, the pending table, and
// the outbound sender.
//
// Grounded on transport.ClientTransport.handleMessage's switch over
// message kinds (request/response/heartbeat), generalized to the eight
// dispositions the richer classifier can produce.
package dispatch

import (
	"context"

	"go.uber.org/zap"

	"framewire/classify"
	"framewire/middleware"
	"framewire/outbound"
	"framewire/pending"
	"framewire/registry"
	"framewire/rpcerr"
	"framewire/wire"
)

// Application-level error codes dispatch itself assigns to response
// headers. These live above the wire's ProtocolErrorCode space, which is
// reserved for transport-level protocol violations, not business errors.
const (
	ErrUnknownMethod int32 = -1
	ErrHandlerFailed int32 = -2
)

// Sender is the outbound half of a connection: write one frame, or tear
// the connection down. Dispatch depends only on this narrow interface so
// it can be tested without a real transport.Stream.
type Sender interface {
	SendFrame(f *wire.Frame) error
	Close() error
}

// Dispatcher wires one connection's registry and pending table to its
// Sender.
type Dispatcher struct {
	Registry *registry.Registry
	Pending  *pending.Table
	Sender   Sender
	Logger   *zap.Logger
	// Chain wraps every request/event handler call, e.g. with
	// middleware.Logging, middleware.Timeout, middleware.RateLimit. Nil
	// means handlers run unwrapped.
	Chain middleware.Middleware
}

// New builds a Dispatcher. A nil logger is replaced with a no-op one.
func New(reg *registry.Registry, tbl *pending.Table, sender Sender, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{Registry: reg, Pending: tbl, Sender: sender, Logger: logger}
}

func (d *Dispatcher) wrap(method string, h registry.Handler) registry.Handler {
	if d.Chain == nil {
		return h
	}
	wrapped := d.Chain(middleware.HandlerFunc(h))
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		return wrapped(middleware.WithMethodName(ctx, method), payload)
	}
}

// Handle carries out the action named by result.Disposition. It never
// blocks on a service handler: request and event delivery run the
// handler in its own goroutine so one slow method can't stall frame
// processing for the rest of the connection.
func (d *Dispatcher) Handle(ctx context.Context, result classify.ClassifyResult) {
	switch result.Disposition {
	case classify.DeliverRequestToService:
		d.deliverRequest(ctx, result)

	case classify.DeliverResponseToProxy:
		d.deliverResponse(result)

	case classify.DeliverEventToService:
		d.deliverEvent(ctx, result)

	case classify.ProcessConfig:
		d.Logger.Debug("config frame processed")

	case classify.HandleProtocolError:
		d.Logger.Warn("peer reported protocol error", zap.Stringer("code", result.Error.Code))

	case classify.SendProtocolError:
		frame := outbound.BuildProtocolErrorFrame(result.ErrorCode)
		if err := d.Sender.SendFrame(frame); err != nil {
			d.Logger.Warn("failed to send protocol error frame", zap.Error(err))
		}

	case classify.HangUp:
		d.Logger.Warn("hanging up on peer", zap.Stringer("code", result.ErrorCode))
		d.Sender.Close()

	case classify.Indeterminate:
		d.Logger.Error("classifier reached an indeterminate state, closing connection")
		d.Sender.Close()

	default:
		d.Logger.Error("unrecognized disposition, closing connection", zap.Stringer("disposition", result.Disposition))
		d.Sender.Close()
	}
}

func (d *Dispatcher) deliverRequest(ctx context.Context, result classify.ClassifyResult) {
	requestID := result.Headers.RequestID
	method := result.Headers.MethodName

	handler, ok := d.Registry.Lookup(method)
	if !ok {
		d.sendResponse(requestID, method, ErrUnknownMethod, nil)
		return
	}
	handler = d.wrap(method, handler)

	go func() {
		payload, err := handler(ctx, result.Payload)
		if err != nil {
			d.Logger.Warn("service handler failed", zap.String("method", method), zap.Error(err))
			d.sendResponse(requestID, method, ErrHandlerFailed, nil)
			return
		}
		d.sendResponse(requestID, method, 0, payload)
	}()
}

func (d *Dispatcher) sendResponse(requestID uint32, method string, errorCode int32, payload []byte) {
	frame := outbound.BuildFrame(requestID, method, wire.PayloadResponse, errorCode, payload, nil)
	if err := d.Sender.SendFrame(frame); err != nil {
		d.Logger.Warn("failed to send response frame", zap.Uint32("request_id", requestID), zap.Error(err))
	}
}

func (d *Dispatcher) deliverResponse(result classify.ClassifyResult) {
	requestID := result.Headers.RequestID
	if result.Headers.ErrorCode != 0 {
		d.Pending.CompleteError(requestID, rpcerr.Newf("remote error %d from method %s", result.Headers.ErrorCode, result.Headers.MethodName))
		return
	}
	d.Pending.Complete(requestID, result.Payload)
}

func (d *Dispatcher) deliverEvent(ctx context.Context, result classify.ClassifyResult) {
	method := result.Headers.MethodName
	handler, ok := d.Registry.Lookup(method)
	if !ok {
		d.Logger.Debug("no handler for event, dropping", zap.String("method", method))
		return
	}
	handler = d.wrap(method, handler)
	go func() {
		if _, err := handler(ctx, result.Payload); err != nil {
			d.Logger.Warn("event handler failed", zap.String("method", method), zap.Error(err))
		}
	}()
}
