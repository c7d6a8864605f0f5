package ppp

// OptionDecoder builds an option variant from the value region of an
// option, i.e. the bytes following its type and length.  It returns false
// if the value does not have the shape the variant requires.
type OptionDecoder func(typ OptionType, value []byte) (Option, bool)

type optionInfo struct {
	optType OptionType
	name    string
	decode  OptionDecoder
}

// OptionSpace maps option type codes to option variants for one control
// protocol.  The three spaces are independent: type 3 is
// Authentication-Protocol for LCP but IP-Address for IPCP.
//
// Spaces are populated during package initialisation and are read-only
// afterwards, so they may be shared freely between goroutines.
type OptionSpace struct {
	name     string
	protocol Protocol
	options  map[OptionType]optionInfo
}

// A nil decoder in these tables names a type this package does not parse;
// such options decode as RawOption.

var lcpOptionTable = [...]optionInfo{
	{optType: LCPOptionMRU, name: "Maximum-Receive-Unit", decode: decodeMRUOption},
	{optType: LCPOptionAuthProtocol, name: "Authentication-Protocol", decode: decodeAuthProtocolOption},
	{optType: LCPOptionQualityProtocol, name: "Quality-Protocol", decode: decodeQualityProtocolOption},
	{optType: LCPOptionMagicNumber, name: "Magic-Number", decode: decodeMagicNumberOption},
	{optType: LCPOptionProtocolFieldCompression, name: "Protocol-Field-Compression", decode: decodeProtocolFieldCompressionOption},
	{optType: LCPOptionAddressControlFieldCompression, name: "Address-and-Control-Field-Compression", decode: decodeAddressControlFieldCompressionOption},
}

var ipcpOptionTable = [...]optionInfo{
	{optType: IPCPOptionIPAddresses, name: "IP-Addresses"},
	{optType: IPCPOptionIPCompressionProtocol, name: "IP-Compression-Protocol"},
	{optType: IPCPOptionIPAddress, name: "IP-Address", decode: decodeIPAddressOption},
	{optType: IPCPOptionMobileIPv4, name: "Mobile-IPv4"},
	{optType: IPCPOptionPrimaryDNS, name: "Primary-DNS-Address", decode: decodeIPAddressOption},
	{optType: IPCPOptionPrimaryNBNS, name: "Primary-NBNS-Address", decode: decodeIPAddressOption},
	{optType: IPCPOptionSecondaryDNS, name: "Secondary-DNS-Address", decode: decodeIPAddressOption},
	{optType: IPCPOptionSecondaryNBNS, name: "Secondary-NBNS-Address", decode: decodeIPAddressOption},
}

var ecpOptionTable = [...]optionInfo{
	{optType: ECPOptionOUI, name: "OUI", decode: decodeOUIOption},
	{optType: ECPOptionDESE, name: "DESE"},
}

var (
	// LCPOptions is the option space of the Link Control Protocol.
	LCPOptions = newOptionSpace("LCP", ProtocolLCP, lcpOptionTable[:])
	// IPCPOptions is the option space of the IP Control Protocol.
	IPCPOptions = newOptionSpace("IPCP", ProtocolIPCP, ipcpOptionTable[:])
	// ECPOptions is the option space of the Encryption Control Protocol.
	ECPOptions = newOptionSpace("ECP", ProtocolECP, ecpOptionTable[:])
)

func newOptionSpace(name string, protocol Protocol, table []optionInfo) *OptionSpace {
	space := &OptionSpace{
		name:     name,
		protocol: protocol,
		options:  make(map[OptionType]optionInfo),
	}
	for _, info := range table {
		space.register(info)
	}
	return space
}

// register associates an option type with its variant.  A later
// registration for the same type replaces an earlier one.
func (s *OptionSpace) register(info optionInfo) {
	s.options[info.optType] = info
}

// Resolve returns the decoder for an option type.  Types without a
// registered variant resolve to the raw decoder, so resolution never fails.
func (s *OptionSpace) Resolve(typ OptionType) OptionDecoder {
	if info, ok := s.options[typ]; ok && info.decode != nil {
		return info.decode
	}
	return decodeRawOption
}

// Known reports whether the option type has a registered variant.
func (s *OptionSpace) Known(typ OptionType) bool {
	info, ok := s.options[typ]
	return ok && info.decode != nil
}

// TypeName returns the name of an option type within the space.
func (s *OptionSpace) TypeName(typ OptionType) string {
	if info, ok := s.options[typ]; ok {
		return info.name
	}
	return "Unknown"
}

// Protocol returns the PPP protocol number of the control protocol
// which uses the space.
func (s *OptionSpace) Protocol() Protocol {
	return s.protocol
}

func (s *OptionSpace) String() string {
	return s.name
}

// OptionSpaceFor returns the option space used by a control protocol.
func OptionSpaceFor(p Protocol) (*OptionSpace, bool) {
	switch p {
	case ProtocolLCP:
		return LCPOptions, true
	case ProtocolIPCP:
		return IPCPOptions, true
	case ProtocolECP:
		return ECPOptions, true
	}
	return nil, false
}
