// Package conn implements the single symmetric Connection type every
// framewire peer uses, client or server side alike (spec §6). Where
// client.Client (dial, pool, Call) and server.Server (Serve, Accept
// loop, per-request goroutines) are separate types, framewire unifies
// them because the wire protocol itself is symmetric — either side can
// send a request, a response, an event, or a config frame, and the
// classifier doesn't care which role produced a given frame.
//
// Grounded on transport.ClientTransport (recvLoop as the sole reader,
// heartbeatLoop, the pending-table pattern) and server.Server.handleConn
// (one reader goroutine, one handler goroutine per inbound message).
package conn

import (
	"context"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"framewire/classify"
	"framewire/config"
	"framewire/dispatch"
	"framewire/idgen"
	"framewire/logging"
	"framewire/middleware"
	"framewire/outbound"
	"framewire/pending"
	"framewire/registry"
	"framewire/rpcerr"
	"framewire/transport"
	"framewire/wire"
)

// Connection is one live peer relationship: it owns the request-ID
// allocator and outstanding-request table for requests it originates,
// and the method registry for requests it serves.
type Connection struct {
	variant   classify.Variant
	transport transport.Transport
	ids       *idgen.Allocator
	pending   *pending.Table
	registry  *registry.Registry
	dispatch  *dispatch.Dispatcher
	logger    *zap.Logger
	cfg       config.Connection

	closeOnce sync.Once
	closed    chan struct{}
	wg        sync.WaitGroup
}

// Option customizes a Connection at construction time.
type Option func(*Connection)

// WithMiddleware wraps every served request/event handler with chain.
func WithMiddleware(chain middleware.Middleware) Option {
	return func(c *Connection) { c.dispatch.Chain = chain }
}

// WithLogger overrides the default per-role zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Connection) {
		c.logger = logger
		c.dispatch.Logger = logger
	}
}

// New builds a Connection over an already-established Transport. role
// decides the parity of request IDs this connection allocates for
// outgoing requests (spec §4.D); variant selects which classifier rules
// this connection's peer speaks.
func New(t transport.Transport, role idgen.Role, variant classify.Variant, cfg config.Connection, opts ...Option) *Connection {
	reg := registry.New()
	tbl := pending.NewTableWithHint(cfg.PendingTableHint)

	c := &Connection{
		variant:   variant,
		transport: t,
		ids:       idgen.NewAllocator(role),
		pending:   tbl,
		registry:  reg,
		logger:    logging.New(roleName(role)),
		cfg:       cfg,
		closed:    make(chan struct{}),
	}
	c.dispatch = dispatch.New(reg, tbl, senderAdapter{t}, c.logger)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// senderAdapter satisfies dispatch.Sender over a transport.Transport,
// since dispatch depends on its own narrow interface rather than
// transport's, to stay unit-testable without a real transport.
type senderAdapter struct {
	t transport.Transport
}

func (s senderAdapter) SendFrame(f *wire.Frame) error { return s.t.WriteFrame(f) }
func (s senderAdapter) Close() error                  { return s.t.Close() }

func roleName(role idgen.Role) string {
	if role == idgen.Client {
		return "client"
	}
	return "server"
}

// Start launches the connection's background goroutines: the single
// frame-reading loop, and — for the richer variant, when a heartbeat
// interval is configured — a periodic Config-frame heartbeat. Start
// must be called at most once.
func (c *Connection) Start() {
	c.wg.Add(1)
	go c.recvLoop()

	if c.variant == classify.Rich && c.cfg.HeartbeatInterval > 0 {
		c.wg.Add(1)
		go c.heartbeatLoop()
	}
}

// recvLoop is the connection's single frame reader (spec §5: "exactly
// one goroutine reads a given connection's incoming byte stream").
// Everything past classification — service handlers, response delivery —
// runs in its own goroutine via dispatch.Dispatcher, so a slow handler
// never stalls frame intake.
func (c *Connection) recvLoop() {
	defer c.wg.Done()
	ctx := context.Background()
	for {
		frame, err := c.transport.ReadFrame()
		if err != nil {
			c.logger.Debug("read loop ending", zap.Error(err))
			c.teardown()
			return
		}
		result := classify.Classify(c.variant, frame)
		c.dispatch.Handle(ctx, result)
	}
}

func (c *Connection) heartbeatLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			frame := outbound.BuildConfigFrame(wire.HeartbeatConfig(c.cfg.ProtocolVersion))
			if err := c.transport.WriteFrame(frame); err != nil {
				c.logger.Debug("heartbeat write failed, connection likely closed", zap.Error(err))
				return
			}
		case <-c.closed:
			return
		}
	}
}

// RequestResponse sends a request frame and blocks until the matching
// response arrives, ctx is cancelled, or the connection tears down.
func (c *Connection) RequestResponse(ctx context.Context, method string, payload []byte) ([]byte, error) {
	requestID, err := c.ids.Next()
	if err != nil {
		return nil, err
	}

	ch, cancel := c.pending.Register(requestID)
	frame := outbound.BuildFrame(requestID, method, wire.PayloadRequest, 0, payload, nil)
	if err := c.transport.WriteFrame(frame); err != nil {
		cancel()
		return nil, rpcerr.Wrap(err, "conn: writing request frame")
	}

	select {
	case result := <-ch:
		return result.Payload, result.Err
	case <-ctx.Done():
		cancel()
		return nil, ctx.Err()
	}
}

// SendEvent sends a fire-and-forget event frame (richer variant only;
// the lean variant's classifier rejects Event payload types, spec §8
// open question). There is no response to wait for.
func (c *Connection) SendEvent(method string, payload []byte) error {
	requestID, err := c.ids.Next()
	if err != nil {
		return err
	}
	frame := outbound.BuildFrame(requestID, method, wire.PayloadEvent, 0, payload, nil)
	return c.transport.WriteFrame(frame)
}

// Register binds a raw Handler to method on this connection's registry.
func (c *Connection) Register(method string, h registry.Handler) {
	c.registry.Register(method, h)
}

// Deregister removes method from this connection's registry.
func (c *Connection) Deregister(method string) {
	c.registry.Deregister(method)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// RegisterService scans rcvr's exported methods for the server/service.go
// convention — func(args *A, reply *R) error — and registers
// each one as "TypeName.MethodName", grounded on server.service.go's
// NewService/RegisterMethods reflection scan.
func (c *Connection) RegisterService(rcvr any) error {
	typ := reflect.TypeOf(rcvr)
	if typ == nil || typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		return rpcerr.New("conn: RegisterService requires a pointer to a struct")
	}
	serviceName := typ.Elem().Name()

	registered := 0
	for i := 0; i < typ.NumMethod(); i++ {
		method := typ.Method(i)
		if method.Type.NumIn() != 3 || method.Type.NumOut() != 1 || method.Type.Out(0) != errorType ||
			method.Type.In(1).Kind() != reflect.Ptr || method.Type.In(2).Kind() != reflect.Ptr {
			continue
		}
		boundMethod := reflect.ValueOf(rcvr).Method(i)
		fn := reflect.MakeFunc(reflect.FuncOf(
			[]reflect.Type{method.Type.In(1), method.Type.In(2)},
			[]reflect.Type{errorType},
			false,
		), func(args []reflect.Value) []reflect.Value {
			return boundMethod.Call(args)
		}).Interface()

		name := serviceName + "." + method.Name
		if err := registry.RegisterTyped(c.registry, name, fn); err != nil {
			return err
		}
		registered++
	}
	if registered == 0 {
		return rpcerr.Newf("conn: %s exposes no RPC-shaped methods", serviceName)
	}
	return nil
}

// DeregisterService removes every method previously registered under
// reflect.TypeOf(rcvr).Elem().Name()'s prefix.
func (c *Connection) DeregisterService(rcvr any) {
	typ := reflect.TypeOf(rcvr)
	if typ == nil || typ.Kind() != reflect.Ptr {
		return
	}
	serviceName := typ.Elem().Name()
	for i := 0; i < typ.NumMethod(); i++ {
		method := typ.Method(i)
		if method.Type.NumIn() != 3 || method.Type.NumOut() != 1 || method.Type.Out(0) != errorType ||
			method.Type.In(1).Kind() != reflect.Ptr || method.Type.In(2).Kind() != reflect.Ptr {
			continue
		}
		c.registry.Deregister(serviceName + "." + method.Name)
	}
}

// Stop tears the connection down: closes the transport, unblocks every
// outstanding RequestResponse call, and waits for background goroutines
// to exit.
func (c *Connection) Stop() error {
	err := c.transport.Close()
	c.teardown()
	c.wg.Wait()
	return err
}

func (c *Connection) teardown() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.pending.Close()
	})
}
