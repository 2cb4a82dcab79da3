// Package idgen implements the per-connection request-ID allocator
// (spec §4.D).
//
// Grounded on transport.ClientTransport's seq uint32 counter (there: a
// plain increment taken under the sending mutex), generalized to a
// lock-free atomic counter with the client/server parity split the
// richer spec requires, so both sides of one connection can allocate
// request IDs concurrently without coordinating.
package idgen

import (
	"sync/atomic"

	"framewire/rpcerr"
)

// Role determines the starting parity of a connection's allocator: a
// client connection's first allocated ID is 1 (odd); a server
// connection's first is 2 (even). This keeps client-initiated and
// server-initiated IDs disjoint over one connection.
type Role int

const (
	Client Role = iota
	Server
)

// maxRequestID is the largest request ID the wire format's u32 can
// carry. Allocation beyond it is a fatal per-connection condition
// (spec §4.D).
const maxRequestID = ^uint32(0)

// Allocator is an atomic, parity-split request-ID allocator. The zero
// value is not usable; construct with NewAllocator.
type Allocator struct {
	counter uint64 // widened to u64 so the client's "-1" start wraps cleanly under AddUint64
}

// NewAllocator creates an allocator for the given connection role.
// Client connections start at -1 so the first allocated ID is 1 (odd);
// server connections start at 0 so the first is 2 (even). The client
// start uses uint64's wraparound: 2^64-1 plus 2 is 1, exactly as a
// signed -1 plus 2 would be.
func NewAllocator(role Role) *Allocator {
	a := &Allocator{}
	if role == Client {
		a.counter = ^uint64(0)
	}
	return a
}

// Next allocates the next request ID for this connection. It fails once
// the underlying counter would exceed 2^32-1.
func (a *Allocator) Next() (uint32, error) {
	next := atomic.AddUint64(&a.counter, 2)
	if next > uint64(maxRequestID) {
		return 0, rpcerr.New("idgen: exhausted request IDs")
	}
	return uint32(next), nil
}
