package wire

import (
	"encoding/binary"

	"framewire/rpcerr"
)

// HeaderSchemaVersion is bumped whenever the binary layout of Headers
// changes. Grounded on protocol.Header's own frame Version byte
// (protocol.Version), carried here at the record level instead of the
// frame level since framelets, not frames, are versioned independently.
const HeaderSchemaVersion byte = 1

// PayloadType distinguishes request, response, and event headers.
// Decode does not reject values outside this set — membership is a
// classifier-level check (FrameComplete, spec §4.C), not a codec-level
// one, so an unrecognized payload type still decodes successfully and is
// rejected later with a precise error code.
type PayloadType uint8

const (
	PayloadRequest  PayloadType = 0
	PayloadResponse PayloadType = 1
	PayloadEvent    PayloadType = 2
)

func (p PayloadType) String() string {
	switch p {
	case PayloadRequest:
		return "Request"
	case PayloadResponse:
		return "Response"
	case PayloadEvent:
		return "Event"
	default:
		return "Unknown"
	}
}

// Headers is the structured record carried in a message frame's first
// framelet (spec §3).
type Headers struct {
	RequestID   uint32
	PayloadType PayloadType
	MethodName  string // required for Request/Event, echoed back on Response
	ErrorCode   int32  // zero = success
}

// EncodeHeaders serializes h using the repository's fast length-prefixed
// binary record encoding (schema version 1), the same scheme the
// codec.BinaryCodec uses for RPCMessage.
func EncodeHeaders(h *Headers) []byte {
	methodBytes := []byte(h.MethodName)
	total := 1 + 1 + 4 + 2 + len(methodBytes) + 4
	buf := make([]byte, total)

	offset := 0
	buf[offset] = HeaderSchemaVersion
	offset++
	buf[offset] = byte(h.PayloadType)
	offset++
	binary.LittleEndian.PutUint32(buf[offset:offset+4], h.RequestID)
	offset += 4
	binary.LittleEndian.PutUint16(buf[offset:offset+2], uint16(len(methodBytes)))
	offset += 2
	copy(buf[offset:offset+len(methodBytes)], methodBytes)
	offset += len(methodBytes)
	binary.LittleEndian.PutUint32(buf[offset:offset+4], uint32(h.ErrorCode))

	return buf
}

// DecodeHeaders deserializes a Headers record. Decode failure (wrong
// schema version, truncated buffer) is the only validation performed
// here; an unrecognized PayloadType value decodes successfully and is
// rejected by the classifier instead (see PayloadType doc).
func DecodeHeaders(data []byte) (*Headers, error) {
	if len(data) < 1+1+4+2 {
		return nil, rpcerr.New("wire: headers buffer too short")
	}

	offset := 0
	version := data[offset]
	offset++
	if version != HeaderSchemaVersion {
		return nil, rpcerr.Newf("wire: unsupported headers schema version %d", version)
	}

	payloadType := PayloadType(data[offset])
	offset++

	requestID := binary.LittleEndian.Uint32(data[offset : offset+4])
	offset += 4

	methodLen := int(binary.LittleEndian.Uint16(data[offset : offset+2]))
	offset += 2
	if offset+methodLen+4 > len(data) {
		return nil, rpcerr.New("wire: headers buffer truncated in method name/error code")
	}
	methodName := string(data[offset : offset+methodLen])
	offset += methodLen

	errorCode := int32(binary.LittleEndian.Uint32(data[offset : offset+4]))

	return &Headers{
		RequestID:   requestID,
		PayloadType: payloadType,
		MethodName:  methodName,
		ErrorCode:   errorCode,
	}, nil
}
