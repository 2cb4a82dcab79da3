package wire

import "framewire/rpcerr"

// ProtocolErrorCode enumerates the wire-visible protocol error codes
// (spec §6).
type ProtocolErrorCode uint8

const (
	MalformedData ProtocolErrorCode = 0
	NotSupported  ProtocolErrorCode = 1
	ErrorInError  ProtocolErrorCode = 2
)

func (c ProtocolErrorCode) String() string {
	switch c {
	case MalformedData:
		return "MALFORMED_DATA"
	case NotSupported:
		return "NOT_SUPPORTED"
	case ErrorInError:
		return "ERROR_IN_ERROR"
	default:
		return "UNKNOWN_PROTOCOL_ERROR"
	}
}

// ProtocolError is the record carried by a ProtocolError framelet.
type ProtocolError struct {
	Code ProtocolErrorCode
}

// EncodeProtocolError serializes a ProtocolError record (one byte).
func EncodeProtocolError(e *ProtocolError) []byte {
	return []byte{byte(e.Code)}
}

// DecodeProtocolError deserializes a ProtocolError record.
func DecodeProtocolError(data []byte) (*ProtocolError, error) {
	if len(data) < 1 {
		return nil, rpcerr.New("wire: protocol error buffer too short")
	}
	return &ProtocolError{Code: ProtocolErrorCode(data[0])}, nil
}
