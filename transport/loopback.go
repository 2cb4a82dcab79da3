// Loopback is a supplemented transport (SPEC_FULL.md "Supplemented
// features"): an in-process, unbuffered-channel pair implementing
// Transport, with no net.Conn or socket involved at all. The repository has
// no equivalent — it only ever speaks real TCP — but every pack example
// that tests its transport layer in-process (rather than against a real
// listener) does so against some hand-rolled in-memory double, so this
// earns its place as first-class plumbing rather than test-only scaffolding.
package transport

import (
	"framewire/rpcerr"
	"framewire/wire"
)

// ErrLoopbackClosed is returned from ReadFrame/WriteFrame on an endpoint
// once that endpoint has been closed.
var ErrLoopbackClosed = rpcerr.New("transport: loopback closed")

// Loopback is one endpoint of an in-process Transport pair.
type Loopback struct {
	out    chan *wire.Frame
	in     chan *wire.Frame
	closed chan struct{}
}

// NewLoopbackPair builds two connected Loopback endpoints: frames
// written to one are read from the other.
func NewLoopbackPair() (a, b *Loopback) {
	ab := make(chan *wire.Frame)
	ba := make(chan *wire.Frame)
	a = &Loopback{out: ab, in: ba, closed: make(chan struct{})}
	b = &Loopback{out: ba, in: ab, closed: make(chan struct{})}
	return a, b
}

// ReadFrame blocks until a frame arrives or this endpoint is closed.
func (l *Loopback) ReadFrame() (*wire.Frame, error) {
	select {
	case f, ok := <-l.in:
		if !ok {
			return nil, ErrLoopbackClosed
		}
		return f, nil
	case <-l.closed:
		return nil, ErrLoopbackClosed
	}
}

// WriteFrame blocks until the peer reads the frame or this endpoint is
// closed.
func (l *Loopback) WriteFrame(f *wire.Frame) error {
	select {
	case l.out <- f:
		return nil
	case <-l.closed:
		return ErrLoopbackClosed
	}
}

// Close tears down this endpoint: its blocked and later ReadFrame and
// WriteFrame calls return ErrLoopbackClosed. The peer is not notified:
// its ReadFrame keeps blocking and its WriteFrame blocks with no reader,
// until the peer endpoint itself is closed.
func (l *Loopback) Close() error {
	select {
	case <-l.closed:
	default:
		close(l.closed)
	}
	return nil
}
