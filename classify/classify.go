package classify

import "framewire/wire"

// maxTransitions bounds how many times the driver will fold before
// bailing out to Indeterminate. No observed execution should hit this —
// it exists only to prevent an infinite loop in the presence of a bug
// (spec §4.C "Safety net").
const maxTransitions = stateCount + 2

// Classify is the classifier's total, pure entry point. It never
// suspends, never performs I/O, and never returns a Go error.
func Classify(variant Variant, frame *wire.Frame) ClassifyResult {
	s := stepExpectFrame(classifyState{kind: stateExpectFrame, variant: variant}, frame)

	transitions := 0
	for !isTerminal(s.kind) {
		s = step(s)
		transitions++
		if transitions > maxTransitions {
			return toResult(internalStateError())
		}
	}
	return toResult(s)
}

func isTerminal(k stateKind) bool {
	switch k {
	case stateClassifiedValidFrame, stateMalformedFrame, stateErrorInErrorFrame, stateInternalStateError:
		return true
	default:
		return false
	}
}

// step dispatches a non-terminal state to its transition function.
func step(s classifyState) classifyState {
	switch s.kind {
	case stateExpectFirstFramelet:
		return stepExpectFirstFramelet(s)
	case stateExpectHeaders:
		return stepExpectHeaders(s)
	case stateExpectOptionalLayerData:
		return stepExpectOptionalLayerData(s)
	case stateExpectPayload:
		return stepExpectPayload(s)
	case stateExpectEndOfFrame:
		return stepExpectEndOfFrame(s)
	case stateFrameComplete:
		return stepFrameComplete(s)
	case stateValidFrame:
		return stepValidFrame(s)
	case stateExpectConfig:
		return stepExpectConfig(s)
	case stateExpectProtocolError:
		return stepExpectProtocolError(s)
	default:
		return internalStateError()
	}
}

func toResult(s classifyState) ClassifyResult {
	switch s.kind {
	case stateClassifiedValidFrame:
		return ClassifyResult{
			Disposition: s.disposition,
			Headers:     s.headers,
			LayerData:   s.layerData,
			Payload:     s.payload,
			Error:       s.protoErr,
		}
	case stateMalformedFrame:
		return ClassifyResult{Disposition: SendProtocolError, ErrorCode: s.errorCode}
	case stateErrorInErrorFrame:
		return ClassifyResult{Disposition: HangUp, ErrorCode: wire.ErrorInError}
	default: // stateInternalStateError and any unreachable kind
		return ClassifyResult{Disposition: Indeterminate}
	}
}

// stepExpectFrame is the sole state with external input: the frame
// itself. A null frame is an internal-state error, not a malformed
// frame — it indicates the driver was invoked without a frame at all
// (spec §4.C "ExpectFrame: frame null → InternalStateError").
func stepExpectFrame(s classifyState, frame *wire.Frame) classifyState {
	if s.kind != stateExpectFrame {
		return internalStateError()
	}
	if frame == nil {
		return internalStateError()
	}
	s.frame = frame
	s.kind = stateExpectFirstFramelet
	return s
}

func stepExpectFirstFramelet(s classifyState) classifyState {
	if s.kind != stateExpectFirstFramelet {
		return internalStateError()
	}
	if s.frame == nil {
		return internalStateError()
	}
	if len(s.frame.Framelets) == 0 {
		return malformed(s.variant, wire.MalformedData)
	}

	first := s.frame.Framelets[0].Type
	switch first {
	case wire.TypeHeaders:
		s.kind = stateExpectHeaders
		return s
	case wire.TypeConfig:
		if s.variant != Rich {
			return malformed(s.variant, wire.MalformedData)
		}
		s.kind = stateExpectConfig
		return s
	case wire.TypeProtocolError:
		if s.variant != Rich {
			return malformed(s.variant, wire.MalformedData)
		}
		s.kind = stateExpectProtocolError
		return s
	default:
		return malformed(s.variant, wire.MalformedData)
	}
}

func stepExpectHeaders(s classifyState) classifyState {
	if s.kind != stateExpectHeaders {
		return internalStateError()
	}
	if s.frame == nil || len(s.frame.Framelets) == 0 {
		return internalStateError()
	}

	headers, err := wire.DecodeHeaders(s.frame.Framelets[0].Contents)
	if err != nil {
		return malformed(s.variant, wire.MalformedData)
	}
	s.headers = headers

	if s.variant == Rich {
		s.kind = stateExpectOptionalLayerData
	} else {
		s.kind = stateExpectPayload
	}
	return s
}

func stepExpectOptionalLayerData(s classifyState) classifyState {
	if s.kind != stateExpectOptionalLayerData {
		return internalStateError()
	}
	if s.frame == nil || s.headers == nil {
		return internalStateError()
	}
	if s.variant != Rich {
		return internalStateError()
	}

	if s.frame.Count() < 2 {
		return malformed(s.variant, wire.MalformedData)
	}

	switch s.frame.Framelets[1].Type {
	case wire.TypePayloadData:
		s.hasLayerData = false
	case wire.TypeLayerData:
		s.hasLayerData = true
		s.layerData = s.frame.Framelets[1].Contents
	default:
		return malformed(s.variant, wire.MalformedData)
	}

	s.kind = stateExpectPayload
	return s
}

func stepExpectPayload(s classifyState) classifyState {
	if s.kind != stateExpectPayload {
		return internalStateError()
	}
	if s.frame == nil || s.headers == nil {
		return internalStateError()
	}

	index := 1
	if s.variant == Rich && s.hasLayerData {
		index = 2
	}

	if index >= s.frame.Count() || s.frame.Framelets[index].Type != wire.TypePayloadData {
		return malformed(s.variant, wire.MalformedData)
	}

	s.payload = s.frame.Framelets[index].Contents
	s.expectedEnd = index + 1
	s.kind = stateExpectEndOfFrame
	return s
}

func stepExpectEndOfFrame(s classifyState) classifyState {
	if s.kind != stateExpectEndOfFrame {
		return internalStateError()
	}
	if s.frame == nil {
		return internalStateError()
	}
	if s.expectedEnd == 0 {
		return internalStateError()
	}

	if s.frame.Count() != s.expectedEnd {
		return malformed(s.variant, wire.MalformedData)
	}

	s.kind = stateFrameComplete
	return s
}

func stepFrameComplete(s classifyState) classifyState {
	if s.kind != stateFrameComplete {
		return internalStateError()
	}
	if s.headers == nil {
		return internalStateError()
	}

	switch s.headers.PayloadType {
	case wire.PayloadRequest, wire.PayloadResponse:
		s.kind = stateValidFrame
		return s
	case wire.PayloadEvent:
		if s.variant == Rich {
			s.kind = stateValidFrame
			return s
		}
		// Lean variant edge case (spec §4.C, §9 Open Question): event
		// delivery is not implemented in the lean variant, so Event is
		// rejected here even though ExpectHeaders/ExpectPayload already
		// accepted it structurally.
		return malformed(s.variant, wire.NotSupported)
	default:
		return malformed(s.variant, wire.NotSupported)
	}
}

func stepValidFrame(s classifyState) classifyState {
	if s.kind != stateValidFrame {
		return internalStateError()
	}
	if s.headers == nil {
		return internalStateError()
	}

	switch s.headers.PayloadType {
	case wire.PayloadRequest:
		s.disposition = DeliverRequestToService
	case wire.PayloadResponse:
		s.disposition = DeliverResponseToProxy
	case wire.PayloadEvent:
		s.disposition = DeliverEventToService
	default:
		return internalStateError()
	}

	s.kind = stateClassifiedValidFrame
	return s
}

func stepExpectConfig(s classifyState) classifyState {
	if s.kind != stateExpectConfig {
		return internalStateError()
	}
	if s.frame == nil {
		return internalStateError()
	}
	if s.variant != Rich {
		return internalStateError()
	}

	if s.frame.Count() != 1 {
		return malformed(s.variant, wire.MalformedData)
	}

	if _, err := wire.DecodeConfig(s.frame.Framelets[0].Contents); err != nil {
		return malformed(s.variant, wire.MalformedData)
	}

	s.disposition = ProcessConfig
	s.kind = stateClassifiedValidFrame
	return s
}

func stepExpectProtocolError(s classifyState) classifyState {
	if s.kind != stateExpectProtocolError {
		return internalStateError()
	}
	if s.frame == nil {
		return internalStateError()
	}
	if s.variant != Rich {
		return internalStateError()
	}

	if s.frame.Count() != 1 {
		return classifyState{kind: stateErrorInErrorFrame}
	}

	protoErr, err := wire.DecodeProtocolError(s.frame.Framelets[0].Contents)
	if err != nil {
		return classifyState{kind: stateErrorInErrorFrame}
	}

	s.protoErr = protoErr
	s.disposition = HandleProtocolError
	s.kind = stateClassifiedValidFrame
	return s
}
