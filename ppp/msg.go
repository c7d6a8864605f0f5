package ppp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/katalix/go-ppp/wire"
)

// ErrBodyMismatch is returned when a ControlMessage's body does not suit
// its code: options on a code which carries opaque data, data on a
// Configure code, or both at once.
var ErrBodyMismatch = errors.New("message body does not match code")

// controlHeader is the on-the-wire header shared by LCP, IPCP and ECP
// packets.
type controlHeader struct {
	Code uint8
	ID   uint8
	Len  uint16
}

// ControlMessage represents an LCP, IPCP or ECP packet.
//
// Configure-Request, -Ack, -Nak and -Reject packets carry an ordered list
// of options in Options.  Every other code carries an opaque body in Data,
// e.g. the magic number and data of an Echo-Request or the rejected
// packet of a Code-Reject.
//
// The packet length is not stored: ToBytes always derives it from the
// encoded body.
type ControlMessage struct {
	// Protocol is the control protocol the message belongs to.  It picks
	// the option space used to interpret Options.
	Protocol Protocol
	// Code identifies the packet type.
	Code Code
	// ID is used to match requests and replies.
	ID uint8
	// Options holds the configuration options of Configure packets.
	Options []Option
	// Data holds the body of all other packets.
	Data []byte
}

// NewLCPMessage returns an LCP packet holding the specified options.
func NewLCPMessage(code Code, id uint8, opts ...Option) *ControlMessage {
	return &ControlMessage{Protocol: ProtocolLCP, Code: code, ID: id, Options: opts}
}

// NewIPCPMessage returns an IPCP packet holding the specified options.
func NewIPCPMessage(code Code, id uint8, opts ...Option) *ControlMessage {
	return &ControlMessage{Protocol: ProtocolIPCP, Code: code, ID: id, Options: opts}
}

// NewECPMessage returns an ECP packet holding the specified options.
func NewECPMessage(code Code, id uint8, opts ...Option) *ControlMessage {
	return &ControlMessage{Protocol: ProtocolECP, Code: code, ID: id, Options: opts}
}

// NewEchoRequest returns an LCP Echo-Request carrying the sender's magic
// number followed by data.
func NewEchoRequest(id uint8, magic uint32, data []byte) *ControlMessage {
	body := binary.BigEndian.AppendUint32(nil, magic)
	return &ControlMessage{
		Protocol: ProtocolLCP,
		Code:     CodeEchoRequest,
		ID:       id,
		Data:     append(body, data...),
	}
}

// Append appends an option to the message.
func (m *ControlMessage) Append(opt Option) {
	m.Options = append(m.Options, opt)
}

// FindOption returns the first option of the specified type.
func (m *ControlMessage) FindOption(typ OptionType) (Option, error) {
	for _, opt := range m.Options {
		if opt.Type() == typ {
			return opt, nil
		}
	}
	return nil, fmt.Errorf("no option %d found", typ)
}

// Magic returns the magic number leading the body of Echo-Request,
// Echo-Reply and Discard-Request packets.
func (m *ControlMessage) Magic() (uint32, error) {
	switch m.Code {
	case CodeEchoRequest, CodeEchoReply, CodeDiscardRequest:
	default:
		return 0, fmt.Errorf("%v carries no magic number", m.Code)
	}
	if err := wire.Need(m.Data, 4, "magic number"); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(m.Data), nil
}

// Len returns the length the message will have once encoded.
func (m *ControlMessage) Len() (int, error) {
	if !m.Code.HasOptions() {
		return controlHeaderLen + len(m.Data), nil
	}
	n, err := optionsLengthBytes(m.Options)
	return controlHeaderLen + n, err
}

// String provides a human-readable representation of ControlMessage.
func (m *ControlMessage) String() string {
	name := "PPP control"
	if space, ok := OptionSpaceFor(m.Protocol); ok {
		name = space.String()
	}
	s := fmt.Sprintf("%s %v: id %d", name, m.Code, m.ID)
	if !m.Code.HasOptions() {
		return s + fmt.Sprintf(", data %#v", m.Data)
	}
	s += ", options:"
	for _, opt := range m.Options {
		s += fmt.Sprintf(" %v,", opt)
	}
	return s
}

// DecodeControlMessage parses the control packet at the start of b,
// interpreting options with the specified option space.
//
// Only the number of bytes given by the packet's length field is parsed;
// the returned count tells the caller where any trailing bytes start.
func DecodeControlMessage(space *OptionSpace, b []byte) (msg *ControlMessage, n int, err error) {
	var hdr controlHeader

	if err = wire.Need(b, controlHeaderLen, fmt.Sprintf("%v header", space)); err != nil {
		return nil, 0, err
	}
	if err = binary.Read(bytes.NewReader(b), binary.BigEndian, &hdr); err != nil {
		return nil, 0, err
	}

	if hdr.Len < controlHeaderLen {
		return nil, 0, fmt.Errorf("%w: %v length %d is less than its %d byte header",
			wire.ErrInvalidHeaderLength, space, hdr.Len, controlHeaderLen)
	}
	if int(hdr.Len) > len(b) {
		return nil, 0, fmt.Errorf("%w: %v length %d exceeds buffer bounds of %d",
			wire.ErrTruncatedInput, space, hdr.Len, len(b))
	}

	msg = &ControlMessage{
		Protocol: space.Protocol(),
		Code:     Code(hdr.Code),
		ID:       hdr.ID,
	}

	body := b[controlHeaderLen:hdr.Len]
	if msg.Code.HasOptions() {
		msg.Options, err = DecodeOptions(space, body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to parse %v %v options: %w", space, msg.Code, err)
		}
	} else {
		msg.Data = wire.Clone(body)
	}

	return msg, int(hdr.Len), nil
}

// Validate checks that the message carries the body its code calls for:
// options for Configure codes, opaque data for all others.
func (m *ControlMessage) Validate() error {
	if len(m.Options) > 0 && len(m.Data) > 0 {
		return fmt.Errorf("%w: %v has both options and data", ErrBodyMismatch, m.Code)
	}
	if m.Code.HasOptions() {
		if len(m.Data) > 0 {
			return fmt.Errorf("%w: %v carries options, not data", ErrBodyMismatch, m.Code)
		}
	} else if len(m.Options) > 0 {
		return fmt.Errorf("%w: %v carries data, not options", ErrBodyMismatch, m.Code)
	}
	return nil
}

// ToBytes renders the message to a byte slice.  The length field is
// computed from the encoded body.
func (m *ControlMessage) ToBytes() (encoded []byte, err error) {
	if err = m.Validate(); err != nil {
		return nil, err
	}

	encBuf := new(bytes.Buffer)

	// bytes.Buffer.Write always returns a nil error

	// Header: code, id, length placeholder
	_, _ = encBuf.Write([]byte{byte(m.Code), m.ID, 0, 0})

	if m.Code.HasOptions() {
		opts, err := EncodeOptions(m.Options)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %v options: %w", m.Code, err)
		}
		_, _ = encBuf.Write(opts)
	} else {
		_, _ = encBuf.Write(m.Data)
	}

	encoded = encBuf.Bytes()
	if err = wire.PatchUint16(encoded, 2, len(encoded)); err != nil {
		return nil, fmt.Errorf("unable to write %v length: %w", m.Code, err)
	}
	return encoded, nil
}
