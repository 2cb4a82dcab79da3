// Package pending implements the outstanding-request table: the
// client-side record of requests awaiting their matching response
// (spec §3 "Outstanding request", §4.D).
//
// Grounded on transport.ClientTransport's sync.Map of
// chan *message.RPCMessage plus its closeAllPending, generalized with
// explicit per-entry cancellation and a mutex+map instead of sync.Map —
// the same tradeoff transport/pool.go makes, because the
// drain-on-teardown logic here needs to iterate-and-clear atomically,
// which sync.Map does not make easy.
package pending

import (
	"sync"

	"framewire/rpcerr"
)

// Result is what a completed outstanding request resolves to.
type Result struct {
	Payload []byte
	Err     error // non-nil on cancellation, connection teardown, or CompleteError
}

// Entry is one outstanding request: a completion channel the caller is
// blocked reading from, plus a cancel function that unblocks it early.
type Entry struct {
	ch     chan Result
	cancel func()
}

// ErrConnectionClosed is delivered to every outstanding entry still
// pending when the connection tears down.
var ErrConnectionClosed = rpcerr.New("pending: connection closed")

// ErrCancelled is delivered to an entry whose cancellation was
// triggered before a response arrived.
var ErrCancelled = rpcerr.New("pending: request cancelled")

// Table is the concurrent outstanding-request table for one connection.
type Table struct {
	mu      sync.Mutex
	entries map[uint32]*Entry
}

// NewTable creates an empty outstanding-request table.
func NewTable() *Table {
	return &Table{entries: make(map[uint32]*Entry)}
}

// NewTableWithHint creates an empty outstanding-request table whose
// backing map is pre-sized for sizeHint concurrent entries, avoiding
// growth reallocation on connections expected to run many requests
// in flight at once.
func NewTableWithHint(sizeHint int) *Table {
	if sizeHint <= 0 {
		return NewTable()
	}
	return &Table{entries: make(map[uint32]*Entry, sizeHint)}
}

// Register inserts a new outstanding entry for requestID, to be
// completed later by Complete, Cancel, or Close. Returns the channel to
// block on and a cancel function.
func (t *Table) Register(requestID uint32) (<-chan Result, func()) {
	ch := make(chan Result, 1) // buffered: completion never blocks on a reader that already left

	t.mu.Lock()
	entry := &Entry{ch: ch}
	entry.cancel = func() { t.Cancel(requestID) }
	t.entries[requestID] = entry
	t.mu.Unlock()

	return ch, entry.cancel
}

// Complete delivers a successful response payload to the waiter for
// requestID. If there is no such entry — a duplicate or late response —
// the result is dropped, per spec §4.E.
func (t *Table) Complete(requestID uint32, payload []byte) (delivered bool) {
	t.mu.Lock()
	entry, ok := t.entries[requestID]
	if ok {
		delete(t.entries, requestID)
	}
	t.mu.Unlock()

	if !ok {
		return false
	}
	entry.ch <- Result{Payload: payload}
	return true
}

// CompleteError delivers an application-level failure to the waiter for
// requestID — used when a response frame's headers carry a nonzero
// error_code (spec §4.E DeliverResponseToProxy). Like Complete, a
// missing entry is a dropped duplicate/late response.
func (t *Table) CompleteError(requestID uint32, err error) (delivered bool) {
	t.mu.Lock()
	entry, ok := t.entries[requestID]
	if ok {
		delete(t.entries, requestID)
	}
	t.mu.Unlock()

	if !ok {
		return false
	}
	entry.ch <- Result{Err: err}
	return true
}

// Cancel completes requestID's entry with a cancellation failure and
// removes it. Any response that arrives afterward finds no entry and is
// dropped.
func (t *Table) Cancel(requestID uint32) {
	t.mu.Lock()
	entry, ok := t.entries[requestID]
	if ok {
		delete(t.entries, requestID)
	}
	t.mu.Unlock()

	if ok {
		entry.ch <- Result{Err: ErrCancelled}
	}
}

// Close drains every outstanding entry with a "connection closed"
// failure. Called once, on connection teardown (spec §4.D).
func (t *Table) Close() {
	t.mu.Lock()
	entries := t.entries
	t.entries = make(map[uint32]*Entry)
	t.mu.Unlock()

	for _, entry := range entries {
		entry.ch <- Result{Err: ErrConnectionClosed}
	}
}

// Len reports the number of outstanding entries, for diagnostics/tests.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
