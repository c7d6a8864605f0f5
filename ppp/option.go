package ppp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"

	"github.com/katalix/go-ppp/wire"
)

// Option represents one type-length-value configuration option carried
// in the body of an LCP, IPCP or ECP Configure packet.
//
// The set of implementations is closed: each option space decodes into
// its own variants, and anything it does not recognise becomes a
// RawOption.  The length field is never stored; it is recomputed from the
// encoded value whenever the option is serialized.
type Option interface {
	fmt.Stringer
	// Type returns the option type code.
	Type() OptionType
	// appendValue appends the encoded option value, excluding the
	// type and length header, to b.
	appendValue(b []byte) ([]byte, error)
}

// RawOption is an option whose value is kept as an uninterpreted byte
// blob.  It is produced for option types a space does not recognise, and
// for recognised types whose declared length does not match the variant's
// shape.
type RawOption struct {
	OptType OptionType
	Data    []byte
}

// MRUOption is the LCP Maximum-Receive-Unit option.
type MRUOption struct {
	MRU uint16
}

// AuthProtocolOption is the LCP Authentication-Protocol option.  Data
// holds any bytes following the protocol, e.g. the CHAP algorithm.
type AuthProtocolOption struct {
	Protocol Protocol
	Data     []byte
}

// QualityProtocolOption is the LCP Quality-Protocol option.
type QualityProtocolOption struct {
	Protocol Protocol
}

// MagicNumberOption is the LCP Magic-Number option.
type MagicNumberOption struct {
	Magic uint32
}

// ProtocolFieldCompressionOption is the LCP Protocol-Field-Compression
// option.  It has no value.
type ProtocolFieldCompressionOption struct{}

// AddressControlFieldCompressionOption is the LCP
// Address-and-Control-Field-Compression option.  It has no value.
type AddressControlFieldCompressionOption struct{}

// IPAddressOption is any of the IPCP options carrying a single IPv4
// address: IP-Address and the RFC1877 DNS and NBNS server addresses.
//
// An IPAddressOption built as a literal with the zero Addr encodes as
// 0.0.0.0 but decodes as a valid 0.0.0.0; use NewIPAddressOption to get the
// decoded form directly.
//
// Garbage holds bytes found after the address when the option is longer
// than six bytes.  They are not interpreted, only carried so the option
// re-encodes exactly as received.
type IPAddressOption struct {
	OptType OptionType
	Addr    netip.Addr
	Garbage []byte
}

// OUIOption is the ECP vendor-specific option of RFC1968.
type OUIOption struct {
	OUI     [3]byte
	Subtype uint8
	Data    []byte
}

var (
	_ Option = (*RawOption)(nil)
	_ Option = (*MRUOption)(nil)
	_ Option = (*AuthProtocolOption)(nil)
	_ Option = (*QualityProtocolOption)(nil)
	_ Option = (*MagicNumberOption)(nil)
	_ Option = (*ProtocolFieldCompressionOption)(nil)
	_ Option = (*AddressControlFieldCompressionOption)(nil)
	_ Option = (*IPAddressOption)(nil)
	_ Option = (*OUIOption)(nil)
)

// NewIPAddressOption returns an IPCP option of the specified type holding
// addr.  The zero Addr is stored as 0.0.0.0, which is what a peer sends to
// request an address, and IPv4-mapped IPv6 addresses are unmapped.  Either
// way the option compares equal to its own decoding.
func NewIPAddressOption(typ OptionType, addr netip.Addr) *IPAddressOption {
	if !addr.IsValid() {
		addr = netip.IPv4Unspecified()
	} else if addr.Is4In6() {
		addr = addr.Unmap()
	}
	return &IPAddressOption{OptType: typ, Addr: addr}
}

// NewCHAPOption returns an LCP Authentication-Protocol option requesting
// CHAP with the given algorithm, e.g. 5 for MD5.
func NewCHAPOption(algorithm uint8) *AuthProtocolOption {
	return &AuthProtocolOption{Protocol: ProtocolCHAP, Data: []byte{algorithm}}
}

func (o *RawOption) Type() OptionType { return o.OptType }

func (o *RawOption) appendValue(b []byte) ([]byte, error) {
	return append(b, o.Data...), nil
}

func (o *RawOption) String() string {
	return fmt.Sprintf("option %d: %#v", o.OptType, o.Data)
}

func (o *MRUOption) Type() OptionType { return LCPOptionMRU }

func (o *MRUOption) appendValue(b []byte) ([]byte, error) {
	return binary.BigEndian.AppendUint16(b, o.MRU), nil
}

func (o *MRUOption) String() string {
	return fmt.Sprintf("Maximum-Receive-Unit: %d", o.MRU)
}

func (o *AuthProtocolOption) Type() OptionType { return LCPOptionAuthProtocol }

func (o *AuthProtocolOption) appendValue(b []byte) ([]byte, error) {
	b = binary.BigEndian.AppendUint16(b, uint16(o.Protocol))
	return append(b, o.Data...), nil
}

func (o *AuthProtocolOption) String() string {
	if len(o.Data) > 0 {
		return fmt.Sprintf("Authentication-Protocol: %v %#v", o.Protocol, o.Data)
	}
	return fmt.Sprintf("Authentication-Protocol: %v", o.Protocol)
}

func (o *QualityProtocolOption) Type() OptionType { return LCPOptionQualityProtocol }

func (o *QualityProtocolOption) appendValue(b []byte) ([]byte, error) {
	return binary.BigEndian.AppendUint16(b, uint16(o.Protocol)), nil
}

func (o *QualityProtocolOption) String() string {
	return fmt.Sprintf("Quality-Protocol: %v", o.Protocol)
}

func (o *MagicNumberOption) Type() OptionType { return LCPOptionMagicNumber }

func (o *MagicNumberOption) appendValue(b []byte) ([]byte, error) {
	return binary.BigEndian.AppendUint32(b, o.Magic), nil
}

func (o *MagicNumberOption) String() string {
	return fmt.Sprintf("Magic-Number: 0x%08x", o.Magic)
}

func (o *ProtocolFieldCompressionOption) Type() OptionType {
	return LCPOptionProtocolFieldCompression
}

func (o *ProtocolFieldCompressionOption) appendValue(b []byte) ([]byte, error) {
	return b, nil
}

func (o *ProtocolFieldCompressionOption) String() string {
	return "Protocol-Field-Compression"
}

func (o *AddressControlFieldCompressionOption) Type() OptionType {
	return LCPOptionAddressControlFieldCompression
}

func (o *AddressControlFieldCompressionOption) appendValue(b []byte) ([]byte, error) {
	return b, nil
}

func (o *AddressControlFieldCompressionOption) String() string {
	return "Address-and-Control-Field-Compression"
}

func (o *IPAddressOption) Type() OptionType { return o.OptType }

func (o *IPAddressOption) appendValue(b []byte) ([]byte, error) {
	var addr [4]byte
	if o.Addr.IsValid() {
		if !o.Addr.Is4() && !o.Addr.Is4In6() {
			return nil, fmt.Errorf("%w: %v is not an IPv4 address", wire.ErrFieldOverflow, o.Addr)
		}
		addr = o.Addr.As4()
	}
	b = append(b, addr[:]...)
	return append(b, o.Garbage...), nil
}

func (o *IPAddressOption) String() string {
	name := IPCPOptions.TypeName(o.OptType)
	if len(o.Garbage) > 0 {
		return fmt.Sprintf("%s: %v garbage %#v", name, o.Addr, o.Garbage)
	}
	return fmt.Sprintf("%s: %v", name, o.Addr)
}

func (o *OUIOption) Type() OptionType { return ECPOptionOUI }

func (o *OUIOption) appendValue(b []byte) ([]byte, error) {
	b = append(b, o.OUI[:]...)
	b = append(b, o.Subtype)
	return append(b, o.Data...), nil
}

func (o *OUIOption) String() string {
	return fmt.Sprintf("OUI: %02x:%02x:%02x subtype %d %#v",
		o.OUI[0], o.OUI[1], o.OUI[2], o.Subtype, o.Data)
}

// Variant decoders.  Each receives the value region of an option, that is
// the bytes following the two-byte header, and reports false if the
// region does not have the variant's shape.

func decodeRawOption(typ OptionType, value []byte) (Option, bool) {
	return &RawOption{OptType: typ, Data: wire.Clone(value)}, true
}

func decodeMRUOption(_ OptionType, value []byte) (Option, bool) {
	if len(value) != mruOptionLen-optionHeaderLen {
		return nil, false
	}
	return &MRUOption{MRU: binary.BigEndian.Uint16(value)}, true
}

func decodeAuthProtocolOption(_ OptionType, value []byte) (Option, bool) {
	if len(value) < authProtocolOptionMinLen-optionHeaderLen {
		return nil, false
	}
	return &AuthProtocolOption{
		Protocol: Protocol(binary.BigEndian.Uint16(value)),
		Data:     wire.Clone(value[2:]),
	}, true
}

func decodeQualityProtocolOption(_ OptionType, value []byte) (Option, bool) {
	if len(value) != qualityOptionLen-optionHeaderLen {
		return nil, false
	}
	return &QualityProtocolOption{Protocol: Protocol(binary.BigEndian.Uint16(value))}, true
}

func decodeMagicNumberOption(_ OptionType, value []byte) (Option, bool) {
	if len(value) != magicNumberOptionLen-optionHeaderLen {
		return nil, false
	}
	return &MagicNumberOption{Magic: binary.BigEndian.Uint32(value)}, true
}

func decodeProtocolFieldCompressionOption(_ OptionType, value []byte) (Option, bool) {
	if len(value) != compressionOptionLen-optionHeaderLen {
		return nil, false
	}
	return &ProtocolFieldCompressionOption{}, true
}

func decodeAddressControlFieldCompressionOption(_ OptionType, value []byte) (Option, bool) {
	if len(value) != compressionOptionLen-optionHeaderLen {
		return nil, false
	}
	return &AddressControlFieldCompressionOption{}, true
}

func decodeIPAddressOption(typ OptionType, value []byte) (Option, bool) {
	if len(value) < ipAddressOptionLen-optionHeaderLen {
		return nil, false
	}
	return &IPAddressOption{
		OptType: typ,
		Addr:    netip.AddrFrom4([4]byte(value[:4])),
		Garbage: wire.Clone(value[4:]),
	}, true
}

func decodeOUIOption(_ OptionType, value []byte) (Option, bool) {
	if len(value) < ouiOptionMinLen-optionHeaderLen {
		return nil, false
	}
	return &OUIOption{
		OUI:     [3]byte(value[:3]),
		Subtype: value[3],
		Data:    wire.Clone(value[4:]),
	}, true
}

// DecodeOption decodes the single option at the start of b, using space
// to pick the option variant.  It returns the option along with the number
// of bytes it occupies.
//
// Option types unknown to the space never cause an error: they decode as
// a RawOption preserving the value bytes.
func DecodeOption(space *OptionSpace, b []byte) (opt Option, n int, err error) {
	if err = wire.Need(b, optionHeaderLen, "option header"); err != nil {
		return nil, 0, err
	}

	typ, length := OptionType(b[0]), int(b[1])
	if length < optionHeaderLen {
		return nil, 0, fmt.Errorf("%w: %v option %d has length %d, less than its %d byte header",
			wire.ErrInvalidHeaderLength, space, typ, length, optionHeaderLen)
	}
	if length > len(b) {
		return nil, 0, fmt.Errorf("%w: %v option %d length %d exceeds buffer bounds of %d",
			wire.ErrTruncatedInput, space, typ, length, len(b))
	}

	value := b[optionHeaderLen:length]
	opt, ok := space.Resolve(typ)(typ, value)
	if !ok {
		opt, _ = decodeRawOption(typ, value)
	}
	return opt, length, nil
}

// EncodeOption renders an option, computing its length field from the
// encoded value.
func EncodeOption(opt Option) ([]byte, error) {
	return appendOption(nil, opt)
}

func appendOption(b []byte, opt Option) ([]byte, error) {
	start := len(b)

	// length is a placeholder until the value is in place
	b = append(b, byte(opt.Type()), 0)
	b, err := opt.appendValue(b)
	if err != nil {
		return nil, fmt.Errorf("unable to encode %v: %w", opt, err)
	}
	if err = wire.PatchUint8(b, start+1, len(b)-start); err != nil {
		return nil, fmt.Errorf("unable to encode %v: %w", opt, err)
	}
	return b, nil
}

// DecodeOptions decodes the densely packed option list which exactly
// fills b.  An option which would run past the end of b is reported as
// ErrMalformedOptionList.
func DecodeOptions(space *OptionSpace, b []byte) (opts []Option, err error) {
	for len(b) > 0 {
		if len(b) < optionHeaderLen {
			return nil, fmt.Errorf("%w: %d trailing bytes cannot hold an option header",
				wire.ErrMalformedOptionList, len(b))
		}

		opt, n, err := DecodeOption(space, b)
		if err != nil {
			if errors.Is(err, wire.ErrTruncatedInput) {
				return nil, fmt.Errorf("%w: %v", wire.ErrMalformedOptionList, err)
			}
			return nil, err
		}

		opts = append(opts, opt)
		b = b[n:]
	}
	return opts, nil
}

// EncodeOptions renders an option list, preserving the order of opts.
func EncodeOptions(opts []Option) (encoded []byte, err error) {
	for _, opt := range opts {
		encoded, err = appendOption(encoded, opt)
		if err != nil {
			return nil, err
		}
	}
	return encoded, nil
}

// optionsLengthBytes returns the encoded size of an option list.
func optionsLengthBytes(opts []Option) (int, error) {
	b, err := EncodeOptions(opts)
	return len(b), err
}
