package ppp

import "fmt"

// Protocol is the value of the PPP protocol field, identifying the
// datagram carried in the frame's information field.
type Protocol uint16

// Code identifies the kind of a control protocol packet.  LCP, IPCP and
// ECP share the same code space.
type Code uint8

// OptionType identifies a configuration option within an option space.
// The same numeric value means different things in different spaces.
type OptionType uint8

// Framing indicates whether a PPP frame carries the HDLC-like address and
// control prefix.
type Framing int

// PPP protocol field values.
const (
	ProtocolIPv4   Protocol = 0x0021
	ProtocolIPv6   Protocol = 0x0057
	ProtocolIPCP   Protocol = 0x8021
	ProtocolECP    Protocol = 0x8053
	ProtocolIPv6CP Protocol = 0x8057
	ProtocolCCP    Protocol = 0x80fd
	ProtocolLCP    Protocol = 0xc021
	ProtocolPAP    Protocol = 0xc023
	ProtocolLQR    Protocol = 0xc025
	ProtocolCHAP   Protocol = 0xc223
	ProtocolEAP    Protocol = 0xc227
)

// Control protocol packet codes per RFC1661 and RFC1968.
const (
	CodeConfigureRequest Code = 1
	CodeConfigureAck     Code = 2
	CodeConfigureNak     Code = 3
	CodeConfigureReject  Code = 4
	CodeTerminateRequest Code = 5
	CodeTerminateAck     Code = 6
	CodeCodeReject       Code = 7
	CodeProtocolReject   Code = 8
	CodeEchoRequest      Code = 9
	CodeEchoReply        Code = 10
	CodeDiscardRequest   Code = 11
	CodeResetRequest     Code = 14
	CodeResetAck         Code = 15
)

// LCP option types per RFC1661.
const (
	LCPOptionMRU                            OptionType = 1
	LCPOptionAuthProtocol                   OptionType = 3
	LCPOptionQualityProtocol                OptionType = 4
	LCPOptionMagicNumber                    OptionType = 5
	LCPOptionProtocolFieldCompression       OptionType = 7
	LCPOptionAddressControlFieldCompression OptionType = 8
)

// IPCP option types per RFC1332 and RFC1877.
const (
	IPCPOptionIPAddresses           OptionType = 1
	IPCPOptionIPCompressionProtocol OptionType = 2
	IPCPOptionIPAddress             OptionType = 3
	IPCPOptionMobileIPv4            OptionType = 4
	IPCPOptionPrimaryDNS            OptionType = 129
	IPCPOptionPrimaryNBNS           OptionType = 130
	IPCPOptionSecondaryDNS          OptionType = 131
	IPCPOptionSecondaryNBNS         OptionType = 132
)

// ECP option types per RFC1968 and RFC1969.
const (
	ECPOptionOUI  OptionType = 0
	ECPOptionDESE OptionType = 1
)

// Framing modes.
const (
	// FramingRaw frames start directly with the protocol field.
	FramingRaw Framing = iota
	// FramingHDLC frames carry an address and control byte ahead of the
	// protocol field, as described by RFC1662.
	FramingHDLC
)

// internal constants
const (
	hdlcAddress      = 0xff
	hdlcControl      = 0x03
	hdlcHeaderLen    = 2 // bytes: address, control
	protocolLen      = 2
	controlHeaderLen = 4 // bytes: code, id, 2 for length
	optionHeaderLen  = 2 // bytes: type, length
)

// Fixed total lengths of the fixed-shape option variants.
const (
	mruOptionLen             = 4
	authProtocolOptionMinLen = 4
	authProtocolOptionLen    = 5
	qualityOptionLen         = 4
	magicNumberOptionLen     = 6
	compressionOptionLen     = 2
	ipAddressOptionLen       = 6
	ouiOptionMinLen          = 6
)

// String provides a human-readable representation of Protocol.
func (p Protocol) String() string {
	if name, ok := protocolNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (0x%04x)", uint16(p))
}

// String provides a human-readable representation of Code.
func (code Code) String() string {
	switch code {
	case CodeConfigureRequest:
		return "Configure-Request"
	case CodeConfigureAck:
		return "Configure-Ack"
	case CodeConfigureNak:
		return "Configure-Nak"
	case CodeConfigureReject:
		return "Configure-Reject"
	case CodeTerminateRequest:
		return "Terminate-Request"
	case CodeTerminateAck:
		return "Terminate-Ack"
	case CodeCodeReject:
		return "Code-Reject"
	case CodeProtocolReject:
		return "Protocol-Reject"
	case CodeEchoRequest:
		return "Echo-Request"
	case CodeEchoReply:
		return "Echo-Reply"
	case CodeDiscardRequest:
		return "Discard-Request"
	case CodeResetRequest:
		return "Reset-Request"
	case CodeResetAck:
		return "Reset-Ack"
	}
	return fmt.Sprintf("Code(%d)", uint8(code))
}

// HasOptions reports whether packets with this code carry a
// configuration option list.  All other codes carry opaque data.
func (code Code) HasOptions() bool {
	switch code {
	case CodeConfigureRequest,
		CodeConfigureAck,
		CodeConfigureNak,
		CodeConfigureReject:
		return true
	}
	return false
}

// String provides a human-readable representation of Framing.
func (f Framing) String() string {
	switch f {
	case FramingRaw:
		return "raw"
	case FramingHDLC:
		return "HDLC"
	}
	return "???"
}
