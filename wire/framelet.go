// Package wire implements the on-the-wire framelet container and the
// small structured records (Headers, ConfigRecord, ProtocolError) that
// ride inside it.
//
// Wire layout of a frame:
//
//	frame    := framelet_count:u16 framelet*
//	framelet := type:u16 length:u32 contents:length bytes
//
// All integers are little-endian. A frame has no overall length prefix
// of its own — termination is established by framelet_count, exactly as
// many framelets as declared and no more.
package wire

import (
	"encoding/binary"
	"io"

	"framewire/rpcerr"
)

// FrameletType identifies the semantic kind of one framelet.
type FrameletType uint16

// Stable wire codes. Values are implementation choices so long as they
// are fixed and disjoint (spec: "exact two-byte codes are implementation
// choices").
const (
	TypeHeaders       FrameletType = 0x4844 // "HD"
	TypePayloadData   FrameletType = 0x4450 // "DP"
	TypeLayerData     FrameletType = 0x4C44 // "LD"
	TypeConfig        FrameletType = 0x434E // "CN"
	TypeProtocolError FrameletType = 0x4550 // "EP"
)

// Framelet is one typed, length-tagged byte segment within a frame.
type Framelet struct {
	Type     FrameletType
	Contents []byte
}

// Frame is an ordered, nonempty sequence of framelets that travels as a
// unit. Order is significant and part of validity.
type Frame struct {
	Framelets []Framelet
}

// Count returns the number of framelets in the frame.
func (f *Frame) Count() int {
	if f == nil {
		return 0
	}
	return len(f.Framelets)
}

// EncodeFrame writes a frame to w using the wire layout above.
func EncodeFrame(w io.Writer, f *Frame) error {
	if f == nil || len(f.Framelets) == 0 {
		return rpcerr.New("wire: cannot encode a nil or empty frame")
	}
	if len(f.Framelets) > 0xFFFF {
		return rpcerr.New("wire: too many framelets for a u16 count")
	}

	countBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(countBuf, uint16(len(f.Framelets)))
	if _, err := w.Write(countBuf); err != nil {
		return rpcerr.Wrap(err, "wire: write framelet count")
	}

	head := make([]byte, 6)
	for _, fl := range f.Framelets {
		binary.LittleEndian.PutUint16(head[0:2], uint16(fl.Type))
		binary.LittleEndian.PutUint32(head[2:6], uint32(len(fl.Contents)))
		if _, err := w.Write(head); err != nil {
			return rpcerr.Wrap(err, "wire: write framelet header")
		}
		if len(fl.Contents) > 0 {
			if _, err := w.Write(fl.Contents); err != nil {
				return rpcerr.Wrap(err, "wire: write framelet contents")
			}
		}
	}
	return nil
}

// DecodeFrame reads one frame from r. It rejects count == 0 and any
// framelet whose declared length would run past what was actually
// readable, surfacing io.ErrUnexpectedEOF/io.EOF from the reader as-is
// so callers can distinguish "peer closed" from "malformed length."
func DecodeFrame(r io.Reader) (*Frame, error) {
	countBuf := make([]byte, 2)
	if _, err := io.ReadFull(r, countBuf); err != nil {
		return nil, err
	}
	count := binary.LittleEndian.Uint16(countBuf)
	if count == 0 {
		return nil, rpcerr.New("wire: framelet count is zero")
	}

	framelets := make([]Framelet, 0, count)
	head := make([]byte, 6)
	for i := uint16(0); i < count; i++ {
		if _, err := io.ReadFull(r, head); err != nil {
			return nil, err
		}
		typ := FrameletType(binary.LittleEndian.Uint16(head[0:2]))
		length := binary.LittleEndian.Uint32(head[2:6])

		contents := make([]byte, length)
		if length > 0 {
			if _, err := io.ReadFull(r, contents); err != nil {
				return nil, err
			}
		}
		framelets = append(framelets, Framelet{Type: typ, Contents: contents})
	}

	return &Frame{Framelets: framelets}, nil
}

// DecodeFrameBytes decodes a single frame from an in-memory buffer,
// rejecting any declared framelet length that exceeds the remaining
// buffer (spec §4.A).
func DecodeFrameBytes(buf []byte) (*Frame, error) {
	if len(buf) < 2 {
		return nil, rpcerr.New("wire: buffer too short for framelet count")
	}
	count := binary.LittleEndian.Uint16(buf[0:2])
	if count == 0 {
		return nil, rpcerr.New("wire: framelet count is zero")
	}

	offset := 2
	framelets := make([]Framelet, 0, count)
	for i := uint16(0); i < count; i++ {
		if offset+6 > len(buf) {
			return nil, rpcerr.New("wire: truncated framelet header")
		}
		typ := FrameletType(binary.LittleEndian.Uint16(buf[offset : offset+2]))
		length := binary.LittleEndian.Uint32(buf[offset+2 : offset+6])
		offset += 6

		if uint64(offset)+uint64(length) > uint64(len(buf)) {
			return nil, rpcerr.New("wire: framelet length exceeds remaining buffer")
		}
		contents := buf[offset : offset+int(length)]
		offset += int(length)

		framelets = append(framelets, Framelet{Type: typ, Contents: contents})
	}

	return &Frame{Framelets: framelets}, nil
}
