package pppoe

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/katalix/go-ppp/wire"
)

// Frame represents a PPPoE frame of either kind: the 6 byte PPPoE header
// followed by its payload.
type Frame struct {
	// Kind selects the code enumeration the frame belongs to.
	Kind Kind
	// Version is the 4 bit protocol version, 1 per RFC2516.
	Version uint8
	// Type is the 4 bit protocol type, 1 per RFC2516.
	Type uint8
	// Code identifies the packet.  Session frames use CodeSession.
	Code Code
	// SessionID is zero until a session has been established.
	SessionID SessionID
	// Length is the value of the length field as read from the wire.
	// It is informational only: ToBytes always writes the length of
	// Payload.
	Length uint16
	// Payload is everything following the header.
	Payload []byte
}

// pppoeHeader is the on-the-wire structure which we use for parsing
// raw data buffers.
type pppoeHeader struct {
	VerType   uint8
	Code      uint8
	SessionID uint16
	Length    uint16
}

// NewFrame returns a version 1, type 1 PPPoE frame.
func NewFrame(kind Kind, code Code, sid SessionID, payload []byte) *Frame {
	return &Frame{
		Kind:      kind,
		Version:   defaultVerTyp >> 4,
		Type:      defaultVerTyp & 0x0f,
		Code:      code,
		SessionID: sid,
		Payload:   payload,
	}
}

// NewSessionFrame returns a PPPoE session frame carrying a PPP frame.
func NewSessionFrame(sid SessionID, payload []byte) *Frame {
	return NewFrame(KindSession, CodeSession, sid, payload)
}

// String provides a human-readable representation of Frame.
func (f *Frame) String() string {
	return fmt.Sprintf("%v %v: ver %d, type %d, session %v, %d bytes payload",
		f.Kind, f.Code, f.Version, f.Type, f.SessionID, len(f.Payload))
}

// DecodeFrame parses a PPPoE frame of the specified kind.
//
// The payload runs to the end of b.  The header's length field is only
// checked against the bytes available, so a frame followed by link layer
// padding still decodes.  Codes outside the kind's enumeration are not an
// error; see Kind.ValidCode.
func DecodeFrame(kind Kind, b []byte) (frame *Frame, n int, err error) {
	var hdr pppoeHeader

	if err = wire.Need(b, headerLen, fmt.Sprintf("%v header", kind)); err != nil {
		return nil, 0, err
	}
	if err = binary.Read(bytes.NewReader(b), binary.BigEndian, &hdr); err != nil {
		return nil, 0, err
	}

	remaining := len(b) - headerLen
	if int(hdr.Length) > remaining {
		return nil, 0, fmt.Errorf("%w: %v length %d exceeds buffer bounds of %d",
			wire.ErrTruncatedInput, kind, hdr.Length, remaining)
	}

	frame = &Frame{
		Kind:      kind,
		Version:   hdr.VerType >> 4,
		Type:      hdr.VerType & 0x0f,
		Code:      Code(hdr.Code),
		SessionID: SessionID(hdr.SessionID),
		Length:    hdr.Length,
		Payload:   wire.Clone(b[headerLen:]),
	}
	return frame, len(b), nil
}

// ToBytes renders the frame to a byte slice.  The length field is
// computed from Payload.
func (f *Frame) ToBytes() (encoded []byte, err error) {
	if f.Version > 0x0f || f.Type > 0x0f {
		return nil, fmt.Errorf("%w: version %d and type %d must fit in 4 bits",
			wire.ErrFieldOverflow, f.Version, f.Type)
	}

	encBuf := new(bytes.Buffer)

	// bytes.Buffer.Write always returns a nil error

	// PPPoE header: VerType, code, session ID, length placeholder
	_, _ = encBuf.Write([]byte{f.Version<<4 | f.Type, byte(f.Code)})
	err = binary.Write(encBuf, binary.BigEndian, f.SessionID)
	if err != nil {
		return nil, fmt.Errorf("unable to write session ID: %v", err)
	}
	_, _ = encBuf.Write([]byte{0, 0})
	_, _ = encBuf.Write(f.Payload)

	encoded = encBuf.Bytes()
	if err = wire.PatchUint16(encoded, 4, len(encoded)-headerLen); err != nil {
		return nil, fmt.Errorf("unable to write data length: %w", err)
	}
	return encoded, nil
}
