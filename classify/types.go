// Package classify implements the frame protocol classifier: a total,
// pure, synchronous state machine that turns one decoded wire.Frame into
// a ClassifyResult telling the surrounding transport what to do next.
//
// The classifier never performs I/O, never suspends, and never returns a
// Go error — internal invariant violations degrade to the Indeterminate
// disposition instead (spec §4.C, §7). It is the trust boundary between
// raw network bytes and the dispatch layer: every malformed case maps to
// a precise, externally observable protocol-error code without
// panicking or leaking partial state.
package classify

import "framewire/wire"

// Variant selects which of the two repository protocol variants this
// classifier speaks. The lean variant only ever delivers
// request/response; the richer variant adds optional layer data,
// configuration frames, protocol-error frames, and event delivery.
type Variant int

const (
	Lean Variant = iota
	Rich
)

// Disposition is the classifier's output directive to the dispatcher.
type Disposition int

const (
	Indeterminate Disposition = iota
	DeliverRequestToService
	DeliverResponseToProxy
	DeliverEventToService
	ProcessConfig
	HandleProtocolError
	SendProtocolError
	HangUp
)

func (d Disposition) String() string {
	switch d {
	case Indeterminate:
		return "Indeterminate"
	case DeliverRequestToService:
		return "DeliverRequestToService"
	case DeliverResponseToProxy:
		return "DeliverResponseToProxy"
	case DeliverEventToService:
		return "DeliverEventToService"
	case ProcessConfig:
		return "ProcessConfig"
	case HandleProtocolError:
		return "HandleProtocolError"
	case SendProtocolError:
		return "SendProtocolError"
	case HangUp:
		return "HangUp"
	default:
		return "UnknownDisposition"
	}
}

// ClassifyResult is the classifier's total output (spec §3).
type ClassifyResult struct {
	Disposition Disposition
	Headers     *wire.Headers
	LayerData   []byte // borrowed from the original frame buffer, never copied
	Payload     []byte // borrowed from the original frame buffer, never copied
	Error       *wire.ProtocolError
	ErrorCode   wire.ProtocolErrorCode
}

// stateKind is the sum-type tag for one step of the classifier state
// machine (spec §4.C "State set").
type stateKind int

const (
	stateExpectFrame stateKind = iota
	stateExpectFirstFramelet
	stateExpectHeaders
	stateExpectOptionalLayerData
	stateExpectPayload
	stateExpectEndOfFrame
	stateFrameComplete
	stateValidFrame
	stateExpectConfig
	stateExpectProtocolError
	stateClassifiedValidFrame // terminal: success
	stateMalformedFrame       // terminal: SendProtocolError(errorCode)
	stateErrorInErrorFrame    // terminal: HangUp, ERROR_IN_ERROR
	stateInternalStateError   // terminal: Indeterminate

	stateCount = iota // number of distinct states, used by the transition-count safety net
)

// classifyState is the state value threaded through the fold. Outputs
// are returned as a new state value, never via out-parameters, per
// spec §9's design note.
type classifyState struct {
	kind    stateKind
	variant Variant

	frame *wire.Frame

	headers      *wire.Headers
	hasLayerData bool
	layerData    []byte
	payload      []byte
	expectedEnd  int // exact framelet count this frame must have, set by stepExpectPayload

	disposition Disposition
	errorCode   wire.ProtocolErrorCode
	protoErr    *wire.ProtocolError
}

func internalStateError() classifyState {
	return classifyState{kind: stateInternalStateError}
}

func malformed(variant Variant, code wire.ProtocolErrorCode) classifyState {
	return classifyState{kind: stateMalformedFrame, variant: variant, errorCode: code}
}
