// Stream wraps a net.Conn with framewire's self-describing frame codec.
//
// Grounded on transport.ClientTransport: its sending sync.Mutex around
// protocol.Encode is carried over here as writeMu, for the same reason —
// multiple goroutines share one Stream (a request-sending goroutine and
// whatever else races to push a frame out), and an interleaved write
// would corrupt the stream exactly as it would in the original fixed
// 14-byte-header framing. Reading has no equivalent lock: per spec §5,
// framewire dedicates exactly one goroutine to reading a given Stream.
package transport

import (
	"net"
	"sync"

	"framewire/wire"
)

// Stream is a Transport backed by a single net.Conn.
type Stream struct {
	conn    net.Conn
	writeMu sync.Mutex
}

// NewStream wraps conn as a Transport.
func NewStream(conn net.Conn) *Stream {
	return &Stream{conn: conn}
}

// ReadFrame blocks until one full frame has been read from the
// underlying connection.
func (s *Stream) ReadFrame() (*wire.Frame, error) {
	return wire.DecodeFrame(s.conn)
}

// WriteFrame serializes and writes one frame, serialized against
// concurrent writers.
func (s *Stream) WriteFrame(f *wire.Frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return wire.EncodeFrame(s.conn, f)
}

// Close closes the underlying connection.
func (s *Stream) Close() error {
	return s.conn.Close()
}

// Conn returns the underlying net.Conn, e.g. to set deadlines.
func (s *Stream) Conn() net.Conn {
	return s.conn
}
