package classify

import (
	"bytes"
	"testing"

	"framewire/outbound"
	"framewire/wire"
)

// --- End-to-end classify properties (spec §8) ---

func TestClassifyNullFrame(t *testing.T) {
	result := Classify(Rich, nil)
	if result.Disposition != Indeterminate {
		t.Fatalf("expect Indeterminate, got %v", result.Disposition)
	}
	if result.Headers != nil || result.Payload != nil {
		t.Fatalf("expect no headers/payload on a null frame, got %+v", result)
	}
}

func TestClassifyEmptyFrame(t *testing.T) {
	result := Classify(Rich, &wire.Frame{})
	if result.Disposition != SendProtocolError {
		t.Fatalf("expect SendProtocolError, got %v", result.Disposition)
	}
	if result.ErrorCode != wire.MalformedData {
		t.Fatalf("expect MALFORMED_DATA, got %v", result.ErrorCode)
	}
}

func TestClassifyRequestFrame(t *testing.T) {
	payload := []byte("shave-yaks-args")
	frame := outbound.BuildFrame(1, "ShaveYaks", wire.PayloadRequest, 0, payload, nil)

	result := Classify(Rich, frame)
	if result.Disposition != DeliverRequestToService {
		t.Fatalf("expect DeliverRequestToService, got %v", result.Disposition)
	}
	if result.Headers == nil || result.Headers.RequestID != 1 || result.Headers.MethodName != "ShaveYaks" {
		t.Fatalf("headers mismatch: %+v", result.Headers)
	}
	if !bytes.Equal(result.Payload, payload) {
		t.Fatalf("payload mismatch: got %s", result.Payload)
	}
}

func TestClassifyResponseFrame(t *testing.T) {
	payload := []byte("shave-yaks-reply")
	frame := outbound.BuildFrame(1, "ShaveYaks", wire.PayloadResponse, 0, payload, nil)

	result := Classify(Rich, frame)
	if result.Disposition != DeliverResponseToProxy {
		t.Fatalf("expect DeliverResponseToProxy, got %v", result.Disposition)
	}
	if result.Headers == nil || result.Headers.RequestID != 1 {
		t.Fatalf("headers mismatch: %+v", result.Headers)
	}
	if !bytes.Equal(result.Payload, payload) {
		t.Fatalf("payload mismatch: got %s", result.Payload)
	}
}

func TestClassifyTrailingFramelet(t *testing.T) {
	frame := outbound.BuildFrame(1, "m", wire.PayloadRequest, 0, []byte("p"), nil)
	frame.Framelets = append(frame.Framelets, wire.Framelet{Type: wire.TypePayloadData, Contents: []byte("extra")})

	result := Classify(Rich, frame)
	if result.Disposition != SendProtocolError || result.ErrorCode != wire.MalformedData {
		t.Fatalf("expect SendProtocolError(MALFORMED_DATA), got %v/%v", result.Disposition, result.ErrorCode)
	}
}

func TestClassifyFrameletsReversed(t *testing.T) {
	headers := &wire.Headers{RequestID: 1, PayloadType: wire.PayloadRequest, MethodName: "m"}
	frame := &wire.Frame{Framelets: []wire.Framelet{
		{Type: wire.TypePayloadData, Contents: []byte("p")},
		{Type: wire.TypeHeaders, Contents: wire.EncodeHeaders(headers)},
	}}

	result := Classify(Rich, frame)
	if result.Disposition != SendProtocolError || result.ErrorCode != wire.MalformedData {
		t.Fatalf("expect SendProtocolError(MALFORMED_DATA), got %v/%v", result.Disposition, result.ErrorCode)
	}
}

func TestClassifyDuplicateHeaders(t *testing.T) {
	headers := &wire.Headers{RequestID: 1, PayloadType: wire.PayloadRequest, MethodName: "m"}
	encoded := wire.EncodeHeaders(headers)
	frame := &wire.Frame{Framelets: []wire.Framelet{
		{Type: wire.TypeHeaders, Contents: encoded},
		{Type: wire.TypeHeaders, Contents: encoded},
	}}

	result := Classify(Rich, frame)
	if result.Disposition != SendProtocolError {
		t.Fatalf("expect SendProtocolError, got %v", result.Disposition)
	}
}

func TestClassifyMissingPayload(t *testing.T) {
	headers := &wire.Headers{RequestID: 1, PayloadType: wire.PayloadRequest, MethodName: "m"}
	frame := &wire.Frame{Framelets: []wire.Framelet{
		{Type: wire.TypeHeaders, Contents: wire.EncodeHeaders(headers)},
	}}

	result := Classify(Rich, frame)
	if result.Disposition != SendProtocolError {
		t.Fatalf("expect SendProtocolError, got %v", result.Disposition)
	}
}

func TestClassifyLeanRejectsEvent(t *testing.T) {
	frame := outbound.BuildFrame(1, "m", wire.PayloadEvent, 0, []byte("p"), nil)

	result := Classify(Lean, frame)
	if result.Disposition != SendProtocolError {
		t.Fatalf("lean variant: expect SendProtocolError for Event, got %v", result.Disposition)
	}
	if result.ErrorCode != wire.NotSupported {
		t.Fatalf("expect NOT_SUPPORTED, got %v", result.ErrorCode)
	}
}

func TestClassifyRichDeliversEvent(t *testing.T) {
	payload := []byte("evt")
	frame := outbound.BuildFrame(1, "m", wire.PayloadEvent, 0, payload, nil)

	result := Classify(Rich, frame)
	if result.Disposition != DeliverEventToService {
		t.Fatalf("rich variant: expect DeliverEventToService, got %v", result.Disposition)
	}
	if !bytes.Equal(result.Payload, payload) {
		t.Fatalf("payload mismatch: got %s", result.Payload)
	}
}

func TestClassifyLeanRejectsConfigFrame(t *testing.T) {
	frame := outbound.BuildConfigFrame(wire.HeartbeatConfig("v1"))
	result := Classify(Lean, frame)
	if result.Disposition != SendProtocolError {
		t.Fatalf("lean variant: expect SendProtocolError for Config frame, got %v", result.Disposition)
	}
}

func TestClassifyRichConfigFrame(t *testing.T) {
	frame := outbound.BuildConfigFrame(wire.HeartbeatConfig("v1"))
	result := Classify(Rich, frame)
	if result.Disposition != ProcessConfig {
		t.Fatalf("expect ProcessConfig, got %v", result.Disposition)
	}
}

func TestClassifyRichMalformedConfigFrame(t *testing.T) {
	frame := &wire.Frame{Framelets: []wire.Framelet{
		{Type: wire.TypeConfig, Contents: []byte{0x00}}, // too short to decode
	}}
	result := Classify(Rich, frame)
	if result.Disposition != SendProtocolError || result.ErrorCode != wire.MalformedData {
		t.Fatalf("expect SendProtocolError(MALFORMED_DATA), got %v/%v", result.Disposition, result.ErrorCode)
	}
}

func TestClassifyRichProtocolErrorFrame(t *testing.T) {
	frame := outbound.BuildProtocolErrorFrame(wire.NotSupported)
	result := Classify(Rich, frame)
	if result.Disposition != HandleProtocolError {
		t.Fatalf("expect HandleProtocolError, got %v", result.Disposition)
	}
	if result.Error == nil || result.Error.Code != wire.NotSupported {
		t.Fatalf("expect error NOT_SUPPORTED, got %+v", result.Error)
	}
}

func TestClassifyRichErrorInError(t *testing.T) {
	// A "protocol error" frame with a second trailing framelet is itself
	// malformed: the peer sent a broken error report.
	frame := &wire.Frame{Framelets: []wire.Framelet{
		{Type: wire.TypeProtocolError, Contents: wire.EncodeProtocolError(&wire.ProtocolError{Code: wire.MalformedData})},
		{Type: wire.TypeProtocolError, Contents: []byte{0x00}},
	}}
	result := Classify(Rich, frame)
	if result.Disposition != HangUp {
		t.Fatalf("expect HangUp, got %v", result.Disposition)
	}
	if result.ErrorCode != wire.ErrorInError {
		t.Fatalf("expect ERROR_IN_ERROR, got %v", result.ErrorCode)
	}
}

func TestClassifyRichProtocolErrorUndecodable(t *testing.T) {
	frame := &wire.Frame{Framelets: []wire.Framelet{
		{Type: wire.TypeProtocolError, Contents: nil},
	}}
	result := Classify(Rich, frame)
	if result.Disposition != HangUp || result.ErrorCode != wire.ErrorInError {
		t.Fatalf("expect HangUp(ERROR_IN_ERROR), got %v/%v", result.Disposition, result.ErrorCode)
	}
}

// --- Round trips (spec §8) ---

func TestClassifyRoundTripAllKinds(t *testing.T) {
	cases := []struct {
		name    string
		kind    wire.PayloadType
		variant Variant
		want    Disposition
	}{
		{"request", wire.PayloadRequest, Rich, DeliverRequestToService},
		{"response", wire.PayloadResponse, Rich, DeliverResponseToProxy},
		{"event-rich", wire.PayloadEvent, Rich, DeliverEventToService},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := []byte("round-trip-payload-" + tc.name)
			frame := outbound.BuildFrame(99, "Service.Method", tc.kind, 0, payload, nil)

			result := Classify(tc.variant, frame)
			if result.Disposition != tc.want {
				t.Fatalf("expect %v, got %v", tc.want, result.Disposition)
			}
			if result.Headers.RequestID != 99 {
				t.Fatalf("RequestID mismatch: got %d", result.Headers.RequestID)
			}
			if result.Headers.MethodName != "Service.Method" {
				t.Fatalf("MethodName mismatch: got %s", result.Headers.MethodName)
			}
			if !bytes.Equal(result.Payload, payload) {
				t.Fatalf("payload mismatch: got %s", result.Payload)
			}
		})
	}
}

func TestClassifyRoundTripWithLayerData(t *testing.T) {
	payload := []byte("p")
	layer := []byte("layer-envelope")
	frame := outbound.BuildFrame(5, "m", wire.PayloadRequest, 0, payload, layer)

	result := Classify(Rich, frame)
	if result.Disposition != DeliverRequestToService {
		t.Fatalf("expect DeliverRequestToService, got %v", result.Disposition)
	}
	if !bytes.Equal(result.LayerData, layer) {
		t.Fatalf("layer data mismatch: got %s", result.LayerData)
	}
	if !bytes.Equal(result.Payload, payload) {
		t.Fatalf("payload mismatch: got %s", result.Payload)
	}
}

// --- Idempotence (spec §8) ---

func TestClassifyIsIdempotent(t *testing.T) {
	frame := outbound.BuildFrame(7, "m", wire.PayloadRequest, 0, []byte("p"), nil)

	first := Classify(Rich, frame)
	second := Classify(Rich, frame)

	if first.Disposition != second.Disposition {
		t.Fatalf("classify is not idempotent: %v vs %v", first.Disposition, second.Disposition)
	}
	if first.Headers.RequestID != second.Headers.RequestID {
		t.Fatalf("classify is not idempotent on headers")
	}
}

// --- Concrete literal scenarios (spec §8) ---

func TestConcreteScenario1RequestDelivered(t *testing.T) {
	frame := outbound.BuildFrame(1, "ShaveYaks", wire.PayloadRequest, 0, []byte("E"), nil)
	result := Classify(Rich, frame)
	if result.Disposition != DeliverRequestToService {
		t.Fatalf("expect DeliverRequestToService, got %v", result.Disposition)
	}
	if result.Headers.RequestID != 1 || result.Headers.MethodName != "ShaveYaks" {
		t.Fatalf("headers not echoed: %+v", result.Headers)
	}
	if string(result.Payload) != "E" {
		t.Fatalf("payload mismatch: got %s", result.Payload)
	}
}

func TestConcreteScenario2ResponseDelivered(t *testing.T) {
	frame := outbound.BuildFrame(1, "ShaveYaks", wire.PayloadResponse, 0, []byte("E"), nil)
	result := Classify(Rich, frame)
	if result.Disposition != DeliverResponseToProxy {
		t.Fatalf("expect DeliverResponseToProxy, got %v", result.Disposition)
	}
}

func TestConcreteScenario3EventVariantSplit(t *testing.T) {
	frame := outbound.BuildFrame(1, "ShaveYaks", wire.PayloadEvent, 0, []byte("E"), nil)

	lean := Classify(Lean, frame)
	if lean.Disposition != SendProtocolError {
		t.Fatalf("lean: expect SendProtocolError, got %v", lean.Disposition)
	}

	rich := Classify(Rich, frame)
	if rich.Disposition != DeliverEventToService {
		t.Fatalf("rich: expect DeliverEventToService, got %v", rich.Disposition)
	}
}

func TestConcreteScenario4ExtraPayload(t *testing.T) {
	headers := &wire.Headers{RequestID: 1, PayloadType: wire.PayloadRequest}
	frame := &wire.Frame{Framelets: []wire.Framelet{
		{Type: wire.TypeHeaders, Contents: wire.EncodeHeaders(headers)},
		{Type: wire.TypePayloadData, Contents: []byte("a")},
		{Type: wire.TypePayloadData, Contents: []byte("b")},
	}}
	result := Classify(Rich, frame)
	if result.Disposition != SendProtocolError || result.ErrorCode != wire.MalformedData {
		t.Fatalf("expect SendProtocolError(MALFORMED_DATA), got %v/%v", result.Disposition, result.ErrorCode)
	}
}

func TestConcreteScenario5EmptyFrame(t *testing.T) {
	result := Classify(Rich, &wire.Frame{})
	if result.Disposition != SendProtocolError || result.ErrorCode != wire.MalformedData {
		t.Fatalf("expect SendProtocolError(MALFORMED_DATA), got %v/%v", result.Disposition, result.ErrorCode)
	}
}

func TestConcreteScenario6ReversedFramelets(t *testing.T) {
	headers := &wire.Headers{RequestID: 1, PayloadType: wire.PayloadRequest}
	frame := &wire.Frame{Framelets: []wire.Framelet{
		{Type: wire.TypePayloadData, Contents: []byte("a")},
		{Type: wire.TypeHeaders, Contents: wire.EncodeHeaders(headers)},
	}}
	result := Classify(Rich, frame)
	if result.Disposition != SendProtocolError || result.ErrorCode != wire.MalformedData {
		t.Fatalf("expect SendProtocolError(MALFORMED_DATA), got %v/%v", result.Disposition, result.ErrorCode)
	}
}

// --- Per-transition properties (spec §8) ---

func validHeadersFrame() *wire.Frame {
	return outbound.BuildFrame(1, "m", wire.PayloadRequest, 0, []byte("p"), nil)
}

func TestTransitionExpectFrameWrongState(t *testing.T) {
	s := classifyState{kind: stateExpectHeaders}
	got := stepExpectFrame(s, validHeadersFrame())
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError from wrong starting state, got kind %v", got.kind)
	}
}

func TestTransitionExpectFrameNullFrame(t *testing.T) {
	s := classifyState{kind: stateExpectFrame}
	got := stepExpectFrame(s, nil)
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError for null frame, got kind %v", got.kind)
	}
}

func TestTransitionExpectFrameHappyPath(t *testing.T) {
	s := classifyState{kind: stateExpectFrame}
	got := stepExpectFrame(s, validHeadersFrame())
	if got.kind != stateExpectFirstFramelet {
		t.Fatalf("expect ExpectFirstFramelet, got kind %v", got.kind)
	}
}

func TestTransitionExpectFirstFrameletWrongState(t *testing.T) {
	s := classifyState{kind: stateExpectFrame, frame: validHeadersFrame()}
	got := stepExpectFirstFramelet(s)
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError, got kind %v", got.kind)
	}
}

func TestTransitionExpectFirstFrameletMissingFrame(t *testing.T) {
	s := classifyState{kind: stateExpectFirstFramelet}
	got := stepExpectFirstFramelet(s)
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError for missing frame, got kind %v", got.kind)
	}
}

func TestTransitionExpectFirstFrameletEmptyFrame(t *testing.T) {
	s := classifyState{kind: stateExpectFirstFramelet, frame: &wire.Frame{}}
	got := stepExpectFirstFramelet(s)
	if got.kind != stateMalformedFrame || got.errorCode != wire.MalformedData {
		t.Fatalf("expect MalformedFrame(MALFORMED_DATA), got %v/%v", got.kind, got.errorCode)
	}
}

func TestTransitionExpectHeadersWrongState(t *testing.T) {
	s := classifyState{kind: stateExpectFirstFramelet, frame: validHeadersFrame()}
	got := stepExpectHeaders(s)
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError, got kind %v", got.kind)
	}
}

func TestTransitionExpectHeadersMalformed(t *testing.T) {
	s := classifyState{kind: stateExpectHeaders, frame: &wire.Frame{Framelets: []wire.Framelet{
		{Type: wire.TypeHeaders, Contents: []byte{0x01}}, // too short
	}}}
	got := stepExpectHeaders(s)
	if got.kind != stateMalformedFrame || got.errorCode != wire.MalformedData {
		t.Fatalf("expect MalformedFrame(MALFORMED_DATA), got %v/%v", got.kind, got.errorCode)
	}
}

func TestTransitionExpectOptionalLayerDataWrongState(t *testing.T) {
	s := classifyState{kind: stateExpectHeaders, variant: Rich, frame: validHeadersFrame(), headers: &wire.Headers{}}
	got := stepExpectOptionalLayerData(s)
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError, got kind %v", got.kind)
	}
}

func TestTransitionExpectOptionalLayerDataMissingHeaders(t *testing.T) {
	s := classifyState{kind: stateExpectOptionalLayerData, variant: Rich, frame: validHeadersFrame()}
	got := stepExpectOptionalLayerData(s)
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError for missing headers, got kind %v", got.kind)
	}
}

func TestTransitionExpectOptionalLayerDataTooFewFramelets(t *testing.T) {
	headers := &wire.Headers{RequestID: 1, PayloadType: wire.PayloadRequest}
	frame := &wire.Frame{Framelets: []wire.Framelet{
		{Type: wire.TypeHeaders, Contents: wire.EncodeHeaders(headers)},
	}}
	s := classifyState{kind: stateExpectOptionalLayerData, variant: Rich, frame: frame, headers: headers}
	got := stepExpectOptionalLayerData(s)
	if got.kind != stateMalformedFrame {
		t.Fatalf("expect MalformedFrame, got kind %v", got.kind)
	}
}

func TestTransitionExpectPayloadWrongState(t *testing.T) {
	s := classifyState{kind: stateExpectHeaders, frame: validHeadersFrame(), headers: &wire.Headers{}}
	got := stepExpectPayload(s)
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError, got kind %v", got.kind)
	}
}

func TestTransitionExpectPayloadMissingPrerequisites(t *testing.T) {
	s := classifyState{kind: stateExpectPayload}
	got := stepExpectPayload(s)
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError for missing frame/headers, got kind %v", got.kind)
	}
}

func TestTransitionExpectEndOfFrameWrongState(t *testing.T) {
	s := classifyState{kind: stateExpectPayload, frame: validHeadersFrame(), expectedEnd: 2}
	got := stepExpectEndOfFrame(s)
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError, got kind %v", got.kind)
	}
}

func TestTransitionExpectEndOfFrameMissingPrerequisite(t *testing.T) {
	s := classifyState{kind: stateExpectEndOfFrame, frame: validHeadersFrame()}
	got := stepExpectEndOfFrame(s)
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError for missing expectedEnd, got kind %v", got.kind)
	}
}

func TestTransitionFrameCompleteWrongState(t *testing.T) {
	s := classifyState{kind: stateExpectEndOfFrame, headers: &wire.Headers{PayloadType: wire.PayloadRequest}}
	got := stepFrameComplete(s)
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError, got kind %v", got.kind)
	}
}

func TestTransitionFrameCompleteMissingHeaders(t *testing.T) {
	s := classifyState{kind: stateFrameComplete}
	got := stepFrameComplete(s)
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError for missing headers, got kind %v", got.kind)
	}
}

func TestTransitionValidFrameWrongState(t *testing.T) {
	s := classifyState{kind: stateFrameComplete, headers: &wire.Headers{PayloadType: wire.PayloadRequest}}
	got := stepValidFrame(s)
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError, got kind %v", got.kind)
	}
}

func TestTransitionExpectConfigWrongState(t *testing.T) {
	s := classifyState{kind: stateExpectFirstFramelet, variant: Rich, frame: outbound.BuildConfigFrame(wire.HeartbeatConfig("v1"))}
	got := stepExpectConfig(s)
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError, got kind %v", got.kind)
	}
}

func TestTransitionExpectConfigMissingFrame(t *testing.T) {
	s := classifyState{kind: stateExpectConfig, variant: Rich}
	got := stepExpectConfig(s)
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError for missing frame, got kind %v", got.kind)
	}
}

func TestTransitionExpectConfigWrongVariant(t *testing.T) {
	s := classifyState{kind: stateExpectConfig, variant: Lean, frame: outbound.BuildConfigFrame(wire.HeartbeatConfig("v1"))}
	got := stepExpectConfig(s)
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError for lean variant, got kind %v", got.kind)
	}
}

func TestTransitionExpectProtocolErrorWrongState(t *testing.T) {
	s := classifyState{kind: stateExpectFirstFramelet, variant: Rich, frame: outbound.BuildProtocolErrorFrame(wire.NotSupported)}
	got := stepExpectProtocolError(s)
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError, got kind %v", got.kind)
	}
}

func TestTransitionExpectProtocolErrorMissingFrame(t *testing.T) {
	s := classifyState{kind: stateExpectProtocolError, variant: Rich}
	got := stepExpectProtocolError(s)
	if got.kind != stateInternalStateError {
		t.Fatalf("expect InternalStateError for missing frame, got kind %v", got.kind)
	}
}
