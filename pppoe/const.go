package pppoe

// Kind distinguishes the two PPPoE stages.  Both share the same header
// layout and differ only in the set of valid codes and their Ethernet type.
type Kind int

// Code indicates the PPPoE packet type.
type Code uint8

// SessionID, in combination with the peer's Ethernet addresses,
// uniquely identifies a given PPPoE session.
type SessionID uint16

// TagType identifies the tags contained in the data payload of
// PPPoE discovery packets.
type TagType uint16

// PPPoE stages.
const (
	// KindDiscovery frames carry the PPPoE Active Discovery protocol.
	KindDiscovery Kind = iota
	// KindSession frames carry PPP frames for an established session.
	KindSession
)

// PPPoE packet codes.
const (
	// Session data packet
	CodeSession Code = 0x00
	// PPPoE Active Discovery Initiation packet
	CodePADI Code = 0x09
	// PPPoE Active Discovery Offer packet
	CodePADO Code = 0x07
	// PPPoE Active Discovery Request packet
	CodePADR Code = 0x19
	// PPPoE Active Discovery Session-confirmation packet
	CodePADS Code = 0x65
	// PPPoE Active Discovery Terminate packet
	CodePADT Code = 0xa7
)

// PPPoE Tag types.
//
// PPPoE discovery packets may contain zero or more tags, which are
// TLV constructs.
const (
	TagTypeEOL              TagType = 0x0000
	TagTypeServiceName      TagType = 0x0101
	TagTypeACName           TagType = 0x0102
	TagTypeHostUniq         TagType = 0x0103
	TagTypeACCookie         TagType = 0x0104
	TagTypeVendorSpecific   TagType = 0x0105
	TagTypeRelaySessionID   TagType = 0x0110
	TagTypePPPMaxPayload    TagType = 0x0120
	TagTypeServiceNameError TagType = 0x0201
	TagTypeACSystemError    TagType = 0x0202
	TagTypeGenericError     TagType = 0x0203
)

// Ethernet types of the two PPPoE stages.
const (
	EtherTypeDiscovery uint16 = 0x8863
	EtherTypeSession   uint16 = 0x8864
)

// internal constants
const (
	headerLen     = 6 // bytes: ver/type, code, 2 for session ID, 2 for length
	tagHeaderLen  = 4 // bytes: 2 for type, 2 for length
	defaultVerTyp = 0x11
)

// String provides a human-readable representation of Kind.
func (kind Kind) String() string {
	switch kind {
	case KindDiscovery:
		return "PPPoE Discovery"
	case KindSession:
		return "PPPoE Session"
	}
	return "???"
}

// EtherType returns the Ethernet type which carries frames of this kind.
func (kind Kind) EtherType() uint16 {
	if kind == KindSession {
		return EtherTypeSession
	}
	return EtherTypeDiscovery
}

// ValidCode reports whether code belongs to the kind's code enumeration.
func (kind Kind) ValidCode(code Code) bool {
	switch kind {
	case KindSession:
		return code == CodeSession
	case KindDiscovery:
		switch code {
		case CodePADI, CodePADO, CodePADR, CodePADS, CodePADT:
			return true
		}
	}
	return false
}

// String provides a human-readable representation of Code.
func (code Code) String() string {
	switch code {
	case CodeSession:
		return "Session"
	case CodePADI:
		return "PADI"
	case CodePADO:
		return "PADO"
	case CodePADR:
		return "PADR"
	case CodePADS:
		return "PADS"
	case CodePADT:
		return "PADT"
	}
	return "???"
}

// String provides a human-readable representation of TagType.
func (typ TagType) String() string {
	switch typ {
	case TagTypeEOL:
		return "EOL"
	case TagTypeServiceName:
		return "Service Name"
	case TagTypeACName:
		return "AC Name"
	case TagTypeHostUniq:
		return "Host Uniq"
	case TagTypeACCookie:
		return "AC Cookie"
	case TagTypeVendorSpecific:
		return "Vendor Specific"
	case TagTypeRelaySessionID:
		return "Relay Session ID"
	case TagTypePPPMaxPayload:
		return "PPP Max Payload"
	case TagTypeServiceNameError:
		return "Service Name Error"
	case TagTypeACSystemError:
		return "AC System Error"
	case TagTypeGenericError:
		return "Generic Error"
	default:
		return "Unknown"
	}
}
