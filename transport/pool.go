// Pool is a connection pool of Streams to one address, adapted from
// transport.ConnPool/PoolConn, whose own doc comment notes it is
// retained as an alternative to the client's round-robin transport
// slice, useful "when connections are used exclusively (one request at
// a time per connection)". Nothing else in this module draws from a
// Pool: conn.Connection multiplexes all calls over a single Transport.
package transport

import (
	"net"
	"sync"

	"framewire/rpcerr"
)

// Pool manages a bounded set of reusable Stream connections to a single
// address, created lazily via factory.
type Pool struct {
	mu       sync.Mutex
	conns    chan *PooledStream
	addr     string
	maxConns int
	curConns int
	factory  func() (net.Conn, error)
}

// PooledStream is a Stream borrowed from a Pool, remembering which pool
// to return itself to and whether it was marked broken while borrowed.
type PooledStream struct {
	*Stream
	pool     *Pool
	unusable bool
}

// NewPool creates a connection pool bounded at maxConns, grown lazily as
// Get is called.
func NewPool(addr string, maxConns int, factory func() (net.Conn, error)) *Pool {
	return &Pool{
		conns:    make(chan *PooledStream, maxConns),
		addr:     addr,
		maxConns: maxConns,
		factory:  factory,
	}
}

// Get returns an existing idle Stream if one is available, creates a new
// one if the pool has room, or blocks until one is returned if the pool
// is at capacity.
func (p *Pool) Get() (*PooledStream, error) {
	select {
	case conn := <-p.conns:
		if conn.unusable {
			return p.createNew()
		}
		return conn, nil
	default:
		p.mu.Lock()
		underLimit := p.curConns < p.maxConns
		p.mu.Unlock()
		if underLimit {
			return p.createNew()
		}
		conn := <-p.conns
		return conn, nil
	}
}

// Put returns conn to the pool, or closes and discards it if it was
// marked unusable.
func (p *Pool) Put(conn *PooledStream) {
	if conn.unusable {
		conn.Close()
		p.mu.Lock()
		p.curConns--
		p.mu.Unlock()
		return
	}
	p.conns <- conn
}

// MarkUnusable flags conn so the next Put discards it instead of
// recycling it, used after a read/write error.
func (p *PooledStream) MarkUnusable() {
	p.unusable = true
}

// Close shuts the pool down, closing every idle connection.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	close(p.conns)
	for conn := range p.conns {
		conn.Close()
		p.curConns--
	}
	return nil
}

func (p *Pool) createNew() (*PooledStream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.curConns >= p.maxConns {
		return nil, rpcerr.New("transport: connection pool exhausted")
	}

	netConn, err := p.factory()
	if err != nil {
		return nil, err
	}

	p.curConns++
	return &PooledStream{Stream: NewStream(netConn), pool: p}, nil
}
