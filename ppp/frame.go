package ppp

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/katalix/go-ppp/wire"
)

// Frame represents a PPP frame: an optional HDLC-like address and control
// prefix, the protocol field and the information field.
//
// PPP carries no length of its own; the payload runs to the end of the
// buffer the frame was decoded from.
type Frame struct {
	// Framing selects whether Address and Control are present.
	Framing Framing
	// Address is the HDLC address byte, normally 0xff.
	Address uint8
	// Control is the HDLC control byte, normally 0x03.
	Control uint8
	// Protocol identifies the datagram in Payload.
	Protocol Protocol
	// Payload is the frame's information field.
	Payload []byte
}

// NewFrame returns an unprefixed PPP frame, as carried by PPPoE.
func NewFrame(protocol Protocol, payload []byte) *Frame {
	return &Frame{
		Framing:  FramingRaw,
		Protocol: protocol,
		Payload:  payload,
	}
}

// NewHDLCFrame returns a PPP frame with the RFC1662 all-stations address
// and unnumbered information control field.
func NewHDLCFrame(protocol Protocol, payload []byte) *Frame {
	return &Frame{
		Framing:  FramingHDLC,
		Address:  hdlcAddress,
		Control:  hdlcControl,
		Protocol: protocol,
		Payload:  payload,
	}
}

// SelectFraming peeks at the first byte of b to decide how the frame is
// framed.  An address byte of 0xff can never start a protocol field, so it
// marks an HDLC-framed frame.
func SelectFraming(b []byte) Framing {
	if len(b) > 0 && b[0] == hdlcAddress {
		return FramingHDLC
	}
	return FramingRaw
}

// HeaderLen returns the number of bytes preceding the payload.
func (f *Frame) HeaderLen() int {
	if f.Framing == FramingHDLC {
		return hdlcHeaderLen + protocolLen
	}
	return protocolLen
}

// String provides a human-readable representation of Frame.
func (f *Frame) String() string {
	if f.Framing == FramingHDLC {
		return fmt.Sprintf("PPP (HDLC 0x%02x/0x%02x): protocol %v, %d bytes payload",
			f.Address, f.Control, f.Protocol, len(f.Payload))
	}
	return fmt.Sprintf("PPP: protocol %v, %d bytes payload", f.Protocol, len(f.Payload))
}

// DecodeFrame parses a PPP frame.  The whole of b belongs to the frame,
// so the returned count is always len(b).
func DecodeFrame(b []byte) (frame *Frame, n int, err error) {
	frame = &Frame{Framing: SelectFraming(b)}

	hdrLen := frame.HeaderLen()
	if err = wire.Need(b, hdrLen, fmt.Sprintf("%v PPP header", frame.Framing)); err != nil {
		return nil, 0, err
	}

	cursor := 0
	if frame.Framing == FramingHDLC {
		frame.Address = b[0]
		frame.Control = b[1]
		cursor = hdlcHeaderLen
	}
	frame.Protocol = Protocol(binary.BigEndian.Uint16(b[cursor:]))
	frame.Payload = wire.Clone(b[hdrLen:])

	return frame, len(b), nil
}

// ToBytes renders the frame to a byte slice.
func (f *Frame) ToBytes() (encoded []byte, err error) {
	encBuf := new(bytes.Buffer)

	if f.Framing == FramingHDLC {
		_, _ = encBuf.Write([]byte{f.Address, f.Control})
	}
	err = binary.Write(encBuf, binary.BigEndian, f.Protocol)
	if err != nil {
		return nil, fmt.Errorf("unable to write protocol: %v", err)
	}
	_, _ = encBuf.Write(f.Payload)

	return encBuf.Bytes(), nil
}
