package pppoe

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/katalix/go-ppp/wire"
)

// Tag represents the TLV data structures which make up
// the data payload of PPPoE discovery packets.
type Tag struct {
	Type TagType
	Data []byte
}

// Packet represents a PPPoE discovery packet.
type Packet struct {
	// Code is the code per RFC2516 which identifes the packet.
	Code Code
	// SessionID is the allocated session ID, once it has been set.
	// Up until that point in the discovery sequence the ID is zero.
	SessionID SessionID
	// Tags is the data payload of the packet.
	Tags []*Tag
}

type tagHeader struct {
	Type   TagType
	Length uint16
}

// String provides a human-readable representation of Tag.
//
// For tags specified by the RFC to contain strings, a string representation
// of the tag data is rendered.  For all other tags a dump of the raw hex bytes
// is provided.
func (tag *Tag) String() string {
	// Render string tag payloads as strings
	switch tag.Type {
	case TagTypeServiceName,
		TagTypeACName,
		TagTypeServiceNameError,
		TagTypeACSystemError,
		TagTypeGenericError:
		return fmt.Sprintf("%v: '%s'", tag.Type, string(tag.Data))
	}
	return fmt.Sprintf("%v: %#v", tag.Type, tag.Data)
}

// String provides a human-readable representation of Packet.
func (packet *Packet) String() string {
	s := fmt.Sprintf("%s: session %v, tags:", packet.Code, packet.SessionID)
	for _, tag := range packet.Tags {
		s += fmt.Sprintf(" %s,", tag)
	}
	return s
}

// NewPADI returns a PADI packet with the RFC-mandated service name
// tag included.
//
// PADI packets are used by the client to initiate the PPPoE discovery
// sequence.
//
// Clients which wish to use any service available should pass an empty
// string.
func NewPADI(serviceName string) *Packet {
	packet := &Packet{Code: CodePADI}
	packet.AddServiceNameTag(serviceName)
	return packet
}

// NewPADO returns a PADO packet with the RFC-mandated service name and
// AC name tags included.
//
// PADO packets are used by the server respond to a client's PADI.
func NewPADO(serviceName string, acName string) *Packet {
	packet := &Packet{Code: CodePADO}
	packet.AddServiceNameTag(serviceName)
	packet.AddACNameTag(acName)
	return packet
}

// NewPADR returns a PADR packet with the RFC-mandated service name
// tag included.
//
// The service name tag should be derived from the PADO packet received
// from the server.
func NewPADR(serviceName string) *Packet {
	packet := &Packet{Code: CodePADR}
	packet.AddServiceNameTag(serviceName)
	return packet
}

// NewPADS returns a PADS packet including an allocated session ID and the
// RFC-mandated service name tag.
//
// If the PADS packet indicates success, the session ID should be a non-zero
// value which is unique for the PPPoE peers.
//
// If the PADS packet indicates failure, the session ID should be zero, and
// the packet should have the TagTypeServiceNameError tag appended.
func NewPADS(serviceName string, sid SessionID) *Packet {
	packet := &Packet{Code: CodePADS, SessionID: sid}
	packet.AddServiceNameTag(serviceName)
	return packet
}

// NewPADT returns a PADT packet for the specified session ID.
func NewPADT(sid SessionID) *Packet {
	return &Packet{Code: CodePADT, SessionID: sid}
}

func findTag(typ TagType, tags []*Tag) (tag *Tag, err error) {
	for _, tag = range tags {
		if tag.Type == typ {
			return tag, nil
		}
	}
	return nil, fmt.Errorf("no tag %v found", typ)
}

// packetSpec is used to define the requirements of each PPPoE packet
// as per RFC2516, allowing packets to be validated on receipt and prior
// to transmission.
type packetSpec struct {
	zeroSessionID bool
	mandatoryTags []TagType
}

var packetSpecs = map[Code]*packetSpec{
	CodePADI: {
		zeroSessionID: true,
		mandatoryTags: []TagType{TagTypeServiceName},
	},
	CodePADO: {
		zeroSessionID: true,
		mandatoryTags: []TagType{TagTypeServiceName, TagTypeACName},
	},
	CodePADR: {
		zeroSessionID: true,
		mandatoryTags: []TagType{TagTypeServiceName},
	},
	// CodePADS is a special case :-|
	CodePADT: {
		zeroSessionID: false,
	},
}

// Validate validates a packet meets the requirements of RFC2516, checking
// the mandatory tags are included and the session ID is set correctly.
func (packet *Packet) Validate() (err error) {
	spec, ok := packetSpecs[packet.Code]
	if !ok {
		// PADS is a special case: its mandatory tag list varies depending on whether
		// the access concentrator likes the service name in the PADR or not.  The session
		// ID is used to determine whether it's the happy or sad path: session ID of zero
		// is used in the sad path.
		if packet.Code != CodePADS {
			return fmt.Errorf("unrecognised packet code %v", packet.Code)
		}
		if packet.SessionID == 0 {
			spec = &packetSpec{
				zeroSessionID: true,
				mandatoryTags: []TagType{TagTypeServiceNameError},
			}
		} else {
			spec = &packetSpec{
				zeroSessionID: false,
				mandatoryTags: []TagType{TagTypeServiceName},
			}
		}
	}

	if spec.zeroSessionID {
		if packet.SessionID != 0 {
			return fmt.Errorf("nonzero session ID in %v; must have zero", packet.Code)
		}
	} else {
		if packet.SessionID == 0 {
			return fmt.Errorf("zero session ID in %v; must have nonzero", packet.Code)
		}
	}

	if len(packet.Tags) < len(spec.mandatoryTags) {
		return fmt.Errorf("expect minimum of %d tags in %v; only got %d",
			len(spec.mandatoryTags), packet.Code, len(packet.Tags))
	}

	for _, tagType := range spec.mandatoryTags {
		_, err := findTag(tagType, packet.Tags)
		if err != nil {
			return fmt.Errorf("missing mandatory tag %v in %v", tagType, packet.Code)
		}
	}
	return nil
}

// DecodeTags parses a discovery tag list.
//
// Parsing stops after an End-Of-List tag, or when fewer bytes remain than
// a tag header needs.  The returned count tells the caller where any
// unparsed bytes, such as link layer padding, start.
func DecodeTags(b []byte) (tags []*Tag, n int, err error) {
	for len(b)-n >= tagHeaderLen {
		var hdr tagHeader

		if err = binary.Read(bytes.NewReader(b[n:]), binary.BigEndian, &hdr); err != nil {
			return nil, 0, err
		}

		start := n + tagHeaderLen
		if int(hdr.Length) > len(b)-start {
			return nil, 0, fmt.Errorf("%w: %v tag length %d exceeds buffer bounds of %d",
				wire.ErrMalformedOptionList, hdr.Type, hdr.Length, len(b)-start)
		}

		tags = append(tags, &Tag{
			Type: hdr.Type,
			Data: append([]byte{}, b[start:start+int(hdr.Length)]...),
		})
		n = start + int(hdr.Length)

		if hdr.Type == TagTypeEOL {
			break
		}
	}
	return tags, n, nil
}

func (tag *Tag) toBytes() (encoded []byte, err error) {
	encBuf := new(bytes.Buffer)

	err = binary.Write(encBuf, binary.BigEndian, tag.Type)
	if err != nil {
		return nil, fmt.Errorf("unable to write tag type: %v", err)
	}

	// length placeholder
	_, _ = encBuf.Write([]byte{0, 0})
	_, _ = encBuf.Write(tag.Data)

	encoded = encBuf.Bytes()
	if err = wire.PatchUint16(encoded, 2, len(tag.Data)); err != nil {
		return nil, fmt.Errorf("unable to write %v tag length: %w", tag.Type, err)
	}
	return encoded, nil
}

// EncodeTags renders a discovery tag list, preserving the order of tags.
func EncodeTags(tags []*Tag) (encoded []byte, err error) {
	encBuf := new(bytes.Buffer)
	for _, tag := range tags {
		encodedTag, err := tag.toBytes()
		if err != nil {
			return nil, fmt.Errorf("failed to encode tag %v: %w", tag, err)
		}
		_, _ = encBuf.Write(encodedTag)
	}
	return encBuf.Bytes(), nil
}

// ParsePacket parses the payload of a discovery frame into a discovery
// packet and validates it.
//
// Tags are read from the region covered by the frame's length field, so
// any padding following the PPPoE payload is ignored.
func ParsePacket(frame *Frame) (packet *Packet, err error) {
	if frame.Kind != KindDiscovery || !KindDiscovery.ValidCode(frame.Code) {
		return nil, fmt.Errorf("unrecognised packet code %v for %v", frame.Code, frame.Kind)
	}

	region := frame.Payload
	if int(frame.Length) <= len(region) {
		region = region[:frame.Length]
	}

	tags, _, err := DecodeTags(region)
	if err != nil {
		return nil, fmt.Errorf("failed to parse packet tags: %w", err)
	}

	packet = &Packet{
		Code:      frame.Code,
		SessionID: frame.SessionID,
		Tags:      tags,
	}

	err = packet.Validate()
	if err != nil {
		return nil, fmt.Errorf("failed to validate packet: %v", err)
	}
	return packet, nil
}

// ToFrame renders the packet's tags into the payload of a discovery frame.
//
// Prior to calling ToFrame a packet should ideally be validated using
// Validate to ensure it adheres to the RFC requirements.
func (packet *Packet) ToFrame() (frame *Frame, err error) {
	encodedTags, err := EncodeTags(packet.Tags)
	if err != nil {
		return nil, err
	}
	return NewFrame(KindDiscovery, packet.Code, packet.SessionID, encodedTags), nil
}

// ToBytes renders the packet to a byte slice holding the PPPoE header
// and tags.
func (packet *Packet) ToBytes() (encoded []byte, err error) {
	frame, err := packet.ToFrame()
	if err != nil {
		return nil, err
	}
	return frame.ToBytes()
}

// GetTag searches a packet's tags to find one of the specified type.
//
// The first tag matching the specified type is returned on success.
func (packet *Packet) GetTag(typ TagType) (tag *Tag, err error) {
	return findTag(typ, packet.Tags)
}

// AddTag adds a generic tag to the packet.
// The caller is responsible for ensuring that the data type matches the tag type.
func (packet *Packet) AddTag(typ TagType, data []byte) {
	packet.Tags = append(packet.Tags, &Tag{Type: typ, Data: data})
}

// AddServiceNameTag adds a service name tag to the packet.
// The service name is an arbitrary string.
func (packet *Packet) AddServiceNameTag(name string) {
	packet.AddTag(TagTypeServiceName, []byte(name))
}

// AddACNameTag adds an access concentrator name tag to the packet.
func (packet *Packet) AddACNameTag(name string) {
	packet.AddTag(TagTypeACName, []byte(name))
}

// AddHostUniqTag adds a host unique tag to the packet.
// The host unique value is an arbitrary byte slice which is used by
// the client to associate a given response (PADO or PADS) to a particular
// request (PADI or PADR).
func (packet *Packet) AddHostUniqTag(hostUniq []byte) {
	packet.AddTag(TagTypeHostUniq, hostUniq)
}

// AddACCookieTag adds an access concentrator cookie tag to the packet.
func (packet *Packet) AddACCookieTag(cookie []byte) {
	packet.AddTag(TagTypeACCookie, cookie)
}

// AddPPPMaxPayloadTag adds an RFC4638 PPP-Max-Payload tag to the packet.
func (packet *Packet) AddPPPMaxPayloadTag(mtu uint16) {
	packet.AddTag(TagTypePPPMaxPayload, binary.BigEndian.AppendUint16(nil, mtu))
}

// AddServiceNameErrorTag adds a service name error tag to the packet.
// The value may be an empty string, but should preferably be a human-readable
// string explaining why the request was denied.
func (packet *Packet) AddServiceNameErrorTag(reason string) {
	packet.AddTag(TagTypeServiceNameError, []byte(reason))
}

// AddACSystemErrorTag adds an access concentrator system error tag to the packet.
func (packet *Packet) AddACSystemErrorTag(reason string) {
	packet.AddTag(TagTypeACSystemError, []byte(reason))
}

// AddGenericErrorTag adds an generic error tag to the packet.
func (packet *Packet) AddGenericErrorTag(reason string) {
	packet.AddTag(TagTypeGenericError, []byte(reason))
}
