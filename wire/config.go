package wire

import (
	"encoding/binary"

	"framewire/rpcerr"
)

// ConfigRecord is opaque in this revision — its deserializability is the
// only validation performed (spec §3, §9). It carries just enough
// structure for the periodic heartbeat conn.Connection sends, which
// rides the richer variant's no-op ProcessConfig disposition. No
// handshake is exchanged at Start.
type ConfigRecord struct {
	ProtocolVersion string
	Heartbeat       bool
}

// EncodeConfig serializes a ConfigRecord.
func EncodeConfig(c *ConfigRecord) []byte {
	versionBytes := []byte(c.ProtocolVersion)
	buf := make([]byte, 2+len(versionBytes)+1)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(len(versionBytes)))
	copy(buf[2:2+len(versionBytes)], versionBytes)
	if c.Heartbeat {
		buf[len(buf)-1] = 1
	}
	return buf
}

// DecodeConfig deserializes a ConfigRecord. A truncated or malformed
// buffer is the only decode failure; the classifier treats any nonzero
// decode error as MalformedFrame(MALFORMED_DATA) (spec §4.C ExpectConfig).
func DecodeConfig(data []byte) (*ConfigRecord, error) {
	if len(data) < 3 {
		return nil, rpcerr.New("wire: config buffer too short")
	}
	versionLen := int(binary.LittleEndian.Uint16(data[0:2]))
	if 2+versionLen+1 > len(data) {
		return nil, rpcerr.New("wire: config buffer truncated")
	}
	version := string(data[2 : 2+versionLen])
	heartbeat := data[2+versionLen] != 0
	return &ConfigRecord{ProtocolVersion: version, Heartbeat: heartbeat}, nil
}

// HeartbeatConfig builds the small Config record used as a liveness
// ping (SPEC_FULL.md §"Supplemented features").
func HeartbeatConfig(protocolVersion string) *ConfigRecord {
	return &ConfigRecord{ProtocolVersion: protocolVersion, Heartbeat: true}
}
