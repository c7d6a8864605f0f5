package stack

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/katalix/go-ppp/ppp"
	"github.com/katalix/go-ppp/pppoe"
	"github.com/katalix/go-ppp/wire"
)

// Layer is one decoded header in a Packet.  Layers do not hold the bytes
// of the layers inside them: those are rebuilt by Encode.
type Layer interface {
	fmt.Stringer
	// Codec identifies the codec which produced the layer.
	Codec() CodecID
	// discriminant returns the value used to look up the next codec.
	// Layers which never have an inner layer return false.
	discriminant() (uint32, bool)
	// encode renders the layer around the already encoded inner layers.
	// The last padding bytes of inner are trailers of inner layers which
	// no inner length field covers.
	encode(inner []byte, padding int) ([]byte, error)
	// trailerLen is the number of bytes the layer appends after its inner
	// layers without covering them by a length field.
	trailerLen() int
}

// A layerDecoder parses the header at the start of b, returning the layer
// and the bytes belonging to the next layer.
type layerDecoder func(b []byte) (Layer, []byte, error)

const (
	ethernetHeaderLen = 14
	ethernetMinLen    = 60
	sllHeaderLen      = 16
	sllMaxAddrLen     = 8
	ipv4MinHeaderLen  = 20
)

// EthernetLayer is an Ethernet II header.
type EthernetLayer struct {
	DstMAC       net.HardwareAddr
	SrcMAC       net.HardwareAddr
	EthernetType layers.EthernetType
	// Length is set for IEEE 802.3 frames only.
	Length uint16
	// Trailer holds bytes beyond an IEEE 802.3 length.
	Trailer []byte
}

func decodeEthernet(b []byte) (Layer, []byte, error) {
	var eth layers.Ethernet

	if err := wire.Need(b, ethernetHeaderLen, "Ethernet header"); err != nil {
		return nil, nil, err
	}
	if err := eth.DecodeFromBytes(b, gopacket.NilDecodeFeedback); err != nil {
		return nil, nil, fmt.Errorf("failed to parse Ethernet header: %v", err)
	}
	consumed := len(eth.Contents) + len(eth.Payload)
	return &EthernetLayer{
		DstMAC:       append(net.HardwareAddr(nil), eth.DstMAC...),
		SrcMAC:       append(net.HardwareAddr(nil), eth.SrcMAC...),
		EthernetType: eth.EthernetType,
		Length:       eth.Length,
		Trailer:      wire.Clone(b[consumed:]),
	}, eth.Payload, nil
}

func (l *EthernetLayer) Codec() CodecID { return CodecEthernet }

func (l *EthernetLayer) discriminant() (uint32, bool) {
	return uint32(l.EthernetType), l.Length == 0
}

// encode pads frames to the Ethernet minimum frame size.
func (l *EthernetLayer) encode(inner []byte, _ int) ([]byte, error) {
	payload := append(inner, l.Trailer...)
	if short := ethernetMinLen - ethernetHeaderLen - len(payload); short > 0 {
		payload = append(payload, make([]byte, short)...)
	}
	eth := &layers.Ethernet{
		DstMAC:       l.DstMAC,
		SrcMAC:       l.SrcMAC,
		EthernetType: l.EthernetType,
		Length:       l.Length,
	}
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, eth, gopacket.Payload(payload)); err != nil {
		return nil, fmt.Errorf("unable to write Ethernet header: %v", err)
	}
	return buf.Bytes(), nil
}

func (l *EthernetLayer) trailerLen() int { return len(l.Trailer) }

func (l *EthernetLayer) String() string {
	return fmt.Sprintf("Ethernet: src %v, dst %v, type %v", l.SrcMAC, l.DstMAC, l.EthernetType)
}

// LinuxSLLLayer is a Linux cooked capture header.
type LinuxSLLLayer struct {
	PacketType   layers.LinuxSLLPacketType
	AddrType     uint16
	Addr         net.HardwareAddr
	EthernetType layers.EthernetType
}

type sllHeader struct {
	PacketType uint16
	AddrType   uint16
	AddrLen    uint16
	Addr       [sllMaxAddrLen]byte
	Protocol   uint16
}

func decodeLinuxSLL(b []byte) (Layer, []byte, error) {
	var sll layers.LinuxSLL

	if err := wire.Need(b, sllHeaderLen, "Linux cooked capture header"); err != nil {
		return nil, nil, err
	}
	if addrLen := binary.BigEndian.Uint16(b[4:]); addrLen > sllMaxAddrLen {
		return nil, nil, fmt.Errorf("%w: Linux cooked capture address length %d exceeds %d",
			wire.ErrInvalidHeaderLength, addrLen, sllMaxAddrLen)
	}
	if err := sll.DecodeFromBytes(b, gopacket.NilDecodeFeedback); err != nil {
		return nil, nil, fmt.Errorf("failed to parse Linux cooked capture header: %v", err)
	}
	return &LinuxSLLLayer{
		PacketType:   sll.PacketType,
		AddrType:     sll.AddrType,
		Addr:         append(net.HardwareAddr(nil), sll.Addr...),
		EthernetType: sll.EthernetType,
	}, b[sllHeaderLen:], nil
}

func (l *LinuxSLLLayer) Codec() CodecID { return CodecLinuxSLL }

func (l *LinuxSLLLayer) discriminant() (uint32, bool) {
	return uint32(l.EthernetType), true
}

func (l *LinuxSLLLayer) encode(inner []byte, _ int) ([]byte, error) {
	if len(l.Addr) > sllMaxAddrLen {
		return nil, fmt.Errorf("%w: Linux cooked capture address %v exceeds %d bytes",
			wire.ErrFieldOverflow, l.Addr, sllMaxAddrLen)
	}
	hdr := sllHeader{
		PacketType: uint16(l.PacketType),
		AddrType:   l.AddrType,
		AddrLen:    uint16(len(l.Addr)),
		Protocol:   uint16(l.EthernetType),
	}
	copy(hdr.Addr[:], l.Addr)

	encBuf := new(bytes.Buffer)
	if err := binary.Write(encBuf, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("unable to write Linux cooked capture header: %v", err)
	}
	_, _ = encBuf.Write(inner)
	return encBuf.Bytes(), nil
}

func (l *LinuxSLLLayer) trailerLen() int { return 0 }

func (l *LinuxSLLLayer) String() string {
	return fmt.Sprintf("LinuxSLL: %v, addr %v, type %v", l.PacketType, l.Addr, l.EthernetType)
}

// PPPoELayer is a PPPoE header of either kind.
type PPPoELayer struct {
	Kind      pppoe.Kind
	Version   uint8
	Type      uint8
	Code      pppoe.Code
	SessionID pppoe.SessionID
	// Length is the value read from the wire; encoding recomputes it.
	Length uint16
}

// pppoeDecoder hands everything after the header to the inner codec.
// Inner layers with their own length field keep link layer padding as
// their trailer.
func pppoeDecoder(kind pppoe.Kind) layerDecoder {
	return func(b []byte) (Layer, []byte, error) {
		frame, _, err := pppoe.DecodeFrame(kind, b)
		if err != nil {
			return nil, nil, err
		}
		return &PPPoELayer{
			Kind:      frame.Kind,
			Version:   frame.Version,
			Type:      frame.Type,
			Code:      frame.Code,
			SessionID: frame.SessionID,
			Length:    frame.Length,
		}, frame.Payload, nil
	}
}

func (l *PPPoELayer) Codec() CodecID {
	if l.Kind == pppoe.KindSession {
		return CodecPPPoE
	}
	return CodecPPPoEDiscovery
}

func (l *PPPoELayer) discriminant() (uint32, bool) {
	return uint32(l.Code), true
}

// encode computes the length from inner, less the padding carried in
// inner layer trailers.
func (l *PPPoELayer) encode(inner []byte, padding int) ([]byte, error) {
	if padding > len(inner) {
		padding = len(inner)
	}
	covered := len(inner) - padding
	frame := &pppoe.Frame{
		Kind:      l.Kind,
		Version:   l.Version,
		Type:      l.Type,
		Code:      l.Code,
		SessionID: l.SessionID,
		Payload:   inner[:covered],
	}
	encoded, err := frame.ToBytes()
	if err != nil {
		return nil, err
	}
	return append(encoded, inner[covered:]...), nil
}

func (l *PPPoELayer) trailerLen() int { return 0 }

func (l *PPPoELayer) String() string {
	return fmt.Sprintf("%v %v: session 0x%04x, length %d", l.Kind, l.Code, uint16(l.SessionID), l.Length)
}

// DiscoveryTagsLayer is the tag list of a PPPoE discovery packet.
type DiscoveryTagsLayer struct {
	Tags []*pppoe.Tag
	// Trailer holds bytes following an End-Of-List tag or too short to
	// form a tag.
	Trailer []byte
}

func decodeDiscoveryTags(b []byte) (Layer, []byte, error) {
	tags, n, err := pppoe.DecodeTags(b)
	if err != nil {
		return nil, nil, err
	}
	return &DiscoveryTagsLayer{Tags: tags, Trailer: wire.Clone(b[n:])}, nil, nil
}

func (l *DiscoveryTagsLayer) Codec() CodecID { return CodecDiscoveryTags }

func (l *DiscoveryTagsLayer) discriminant() (uint32, bool) { return 0, false }

func (l *DiscoveryTagsLayer) encode(inner []byte, _ int) ([]byte, error) {
	encoded, err := pppoe.EncodeTags(l.Tags)
	if err != nil {
		return nil, err
	}
	return append(encoded, l.Trailer...), nil
}

func (l *DiscoveryTagsLayer) trailerLen() int { return len(l.Trailer) }

func (l *DiscoveryTagsLayer) String() string {
	s := "PPPoE tags:"
	for _, tag := range l.Tags {
		s += fmt.Sprintf(" %v,", tag)
	}
	return s
}

// PPPLayer is a PPP header, with or without HDLC-like framing.
type PPPLayer struct {
	Framing  ppp.Framing
	Address  uint8
	Control  uint8
	Protocol ppp.Protocol
}

func decodePPP(b []byte) (Layer, []byte, error) {
	frame, _, err := ppp.DecodeFrame(b)
	if err != nil {
		return nil, nil, err
	}
	return &PPPLayer{
		Framing:  frame.Framing,
		Address:  frame.Address,
		Control:  frame.Control,
		Protocol: frame.Protocol,
	}, b[frame.HeaderLen():], nil
}

func (l *PPPLayer) Codec() CodecID { return CodecPPP }

func (l *PPPLayer) discriminant() (uint32, bool) {
	return uint32(l.Protocol), true
}

func (l *PPPLayer) encode(inner []byte, _ int) ([]byte, error) {
	frame := &ppp.Frame{
		Framing:  l.Framing,
		Address:  l.Address,
		Control:  l.Control,
		Protocol: l.Protocol,
		Payload:  inner,
	}
	return frame.ToBytes()
}

func (l *PPPLayer) trailerLen() int { return 0 }

func (l *PPPLayer) String() string {
	if l.Framing == ppp.FramingHDLC {
		return fmt.Sprintf("PPP (HDLC): protocol %v", l.Protocol)
	}
	return fmt.Sprintf("PPP: protocol %v", l.Protocol)
}

// ControlLayer is an LCP, IPCP or ECP packet.
type ControlLayer struct {
	Message *ppp.ControlMessage
	// Trailer holds bytes beyond the packet's length field.
	Trailer []byte
}

func controlDecoder(space *ppp.OptionSpace) layerDecoder {
	return func(b []byte) (Layer, []byte, error) {
		msg, n, err := ppp.DecodeControlMessage(space, b)
		if err != nil {
			return nil, nil, err
		}
		return &ControlLayer{Message: msg, Trailer: wire.Clone(b[n:])}, nil, nil
	}
}

func (l *ControlLayer) Codec() CodecID {
	switch l.Message.Protocol {
	case ppp.ProtocolIPCP:
		return CodecIPCP
	case ppp.ProtocolECP:
		return CodecECP
	}
	return CodecLCP
}

func (l *ControlLayer) discriminant() (uint32, bool) { return 0, false }

func (l *ControlLayer) encode(inner []byte, _ int) ([]byte, error) {
	encoded, err := l.Message.ToBytes()
	if err != nil {
		return nil, err
	}
	return append(encoded, l.Trailer...), nil
}

func (l *ControlLayer) trailerLen() int { return len(l.Trailer) }

func (l *ControlLayer) String() string {
	return l.Message.String()
}

// IPv4Layer is an IPv4 header.  The header checksum is written as decoded;
// lengths are recomputed on encode.
type IPv4Layer struct {
	Header layers.IPv4
	// Trailer holds bytes beyond the datagram's total length.
	Trailer []byte
}

func decodeIPv4(b []byte) (Layer, []byte, error) {
	var ip layers.IPv4

	if err := wire.Need(b, ipv4MinHeaderLen, "IPv4 header"); err != nil {
		return nil, nil, err
	}
	if total := int(binary.BigEndian.Uint16(b[2:])); total > len(b) {
		return nil, nil, fmt.Errorf("%w: IPv4 total length %d exceeds buffer bounds of %d",
			wire.ErrTruncatedInput, total, len(b))
	}
	if err := ip.DecodeFromBytes(b, gopacket.NilDecodeFeedback); err != nil {
		return nil, nil, fmt.Errorf("failed to parse IPv4 header: %v", err)
	}

	payload := ip.Payload
	consumed := len(ip.Contents) + len(payload)
	ip.BaseLayer = layers.BaseLayer{}
	return &IPv4Layer{Header: ip, Trailer: wire.Clone(b[consumed:])}, payload, nil
}

func (l *IPv4Layer) Codec() CodecID { return CodecIPv4 }

func (l *IPv4Layer) discriminant() (uint32, bool) {
	return uint32(l.Header.Protocol), true
}

func (l *IPv4Layer) encode(inner []byte, _ int) ([]byte, error) {
	ip := l.Header
	buf := gopacket.NewSerializeBuffer()
	err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true}, &ip, gopacket.Payload(inner))
	if err != nil {
		return nil, fmt.Errorf("unable to write IPv4 header: %v", err)
	}
	return append(buf.Bytes(), l.Trailer...), nil
}

func (l *IPv4Layer) trailerLen() int { return len(l.Trailer) }

func (l *IPv4Layer) String() string {
	return fmt.Sprintf("IPv4: %v > %v, protocol %v, ttl %d",
		l.Header.SrcIP, l.Header.DstIP, l.Header.Protocol, l.Header.TTL)
}

// PayloadLayer holds bytes which no binding claimed.
type PayloadLayer struct {
	Data []byte
}

func decodePayload(b []byte) (Layer, []byte, error) {
	return &PayloadLayer{Data: wire.Clone(b)}, nil, nil
}

func (l *PayloadLayer) Codec() CodecID { return CodecPayload }

func (l *PayloadLayer) discriminant() (uint32, bool) { return 0, false }

func (l *PayloadLayer) encode(inner []byte, _ int) ([]byte, error) {
	return append(append([]byte(nil), l.Data...), inner...), nil
}

func (l *PayloadLayer) trailerLen() int { return 0 }

func (l *PayloadLayer) String() string {
	return fmt.Sprintf("Payload: %d bytes", len(l.Data))
}

var layerDecoders = map[CodecID]layerDecoder{
	CodecEthernet:       decodeEthernet,
	CodecLinuxSLL:       decodeLinuxSLL,
	CodecPPPoEDiscovery: pppoeDecoder(pppoe.KindDiscovery),
	CodecPPPoE:          pppoeDecoder(pppoe.KindSession),
	CodecDiscoveryTags:  decodeDiscoveryTags,
	CodecPPP:            decodePPP,
	CodecLCP:            controlDecoder(ppp.LCPOptions),
	CodecIPCP:           controlDecoder(ppp.IPCPOptions),
	CodecECP:            controlDecoder(ppp.ECPOptions),
	CodecIPv4:           decodeIPv4,
	CodecPayload:        decodePayload,
}
