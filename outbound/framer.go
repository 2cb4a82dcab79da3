// Package outbound builds wire.Frame values for sending. It is the
// mirror image of classify: where classify turns bytes into a
// disposition, outbound turns a logical message into bytes, always in
// the one canonical framelet order the wire format allows (spec §4.F,
// §6).
//
// Grounded on transport.ClientTransport.Send, which
// inlines header-build and body-encode in one place; split out here into
// its own pure function per the component table's separate share for the
// outbound framer.
package outbound

import "framewire/wire"

// BuildFrame assembles a message frame: Headers, then optional
// LayerData, then PayloadData. No other frame shape is legal on the
// wire (spec §4.F).
func BuildFrame(requestID uint32, method string, payloadType wire.PayloadType, errorCode int32, payload []byte, layerData []byte) *wire.Frame {
	headers := &wire.Headers{
		RequestID:   requestID,
		PayloadType: payloadType,
		MethodName:  method,
		ErrorCode:   errorCode,
	}

	framelets := make([]wire.Framelet, 0, 3)
	framelets = append(framelets, wire.Framelet{Type: wire.TypeHeaders, Contents: wire.EncodeHeaders(headers)})
	if layerData != nil {
		framelets = append(framelets, wire.Framelet{Type: wire.TypeLayerData, Contents: layerData})
	}
	framelets = append(framelets, wire.Framelet{Type: wire.TypePayloadData, Contents: payload})

	return &wire.Frame{Framelets: framelets}
}

// BuildConfigFrame assembles a single-framelet Config frame, used for
// the richer variant's heartbeat (SPEC_FULL.md §3).
func BuildConfigFrame(cfg *wire.ConfigRecord) *wire.Frame {
	return &wire.Frame{Framelets: []wire.Framelet{
		{Type: wire.TypeConfig, Contents: wire.EncodeConfig(cfg)},
	}}
}

// BuildProtocolErrorFrame assembles a single-framelet ProtocolError
// frame, sent in response to a SendProtocolError disposition.
func BuildProtocolErrorFrame(code wire.ProtocolErrorCode) *wire.Frame {
	return &wire.Frame{Framelets: []wire.Framelet{
		{Type: wire.TypeProtocolError, Contents: wire.EncodeProtocolError(&wire.ProtocolError{Code: code})},
	}}
}
