// Package transport carries wire.Frame values across a byte stream or an
// in-process channel pair. It is the layer below classify/dispatch:
// classify never touches a net.Conn, and transport never inspects frame
// contents.
package transport

import "framewire/wire"

// Transport is the narrow interface conn.Connection depends on: read one
// frame, write one frame, tear the whole thing down.
type Transport interface {
	ReadFrame() (*wire.Frame, error)
	WriteFrame(f *wire.Frame) error
	Close() error
}
