package pppoe

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/katalix/go-ppp/wire"
)

func TestSessionFrameLengthRecomputed(t *testing.T) {
	payload := []byte{0xc0, 0x21, 0x09, 0x01, 0x00}
	cases := []struct {
		name string
		in   []byte
	}{
		{
			name: "correct length",
			in:   append([]byte{0x11, 0x00, 0x12, 0x34, 0x00, 0x05}, payload...),
		},
		{
			name: "zero length",
			in:   append([]byte{0x11, 0x00, 0x12, 0x34, 0x00, 0x00}, payload...),
		},
		{
			name: "short length",
			in:   append([]byte{0x11, 0x00, 0x12, 0x34, 0x00, 0x02}, payload...),
		},
	}
	want := []byte{0x11, 0x00, 0x12, 0x34, 0x00, 0x05, 0xc0, 0x21, 0x09, 0x01, 0x00}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			frame, n, err := DecodeFrame(KindSession, c.in)
			if err != nil {
				t.Fatalf("DecodeFrame(%x): %v", c.in, err)
			}
			if n != len(c.in) {
				t.Errorf("DecodeFrame consumed %d bytes; want %d", n, len(c.in))
			}
			if frame.Version != 1 || frame.Type != 1 {
				t.Errorf("version/type %d/%d; want 1/1", frame.Version, frame.Type)
			}
			if frame.Code != CodeSession || frame.SessionID != 0x1234 {
				t.Errorf("unexpected header in %v", frame)
			}
			if !bytes.Equal(frame.Payload, payload) {
				t.Errorf("payload %x; want %x", frame.Payload, payload)
			}

			encoded, err := frame.ToBytes()
			if err != nil {
				t.Fatalf("ToBytes: %v", err)
			}
			if !bytes.Equal(encoded, want) {
				t.Errorf("re-encoded %x; want %x", encoded, want)
			}
		})
	}
}

func TestFrameRenderAndParse(t *testing.T) {
	cases := []struct {
		name  string
		frame *Frame
	}{
		{
			name:  "session",
			frame: NewSessionFrame(0x0001, []byte{0x80, 0x21, 0x01, 0x01, 0x00, 0x04}),
		},
		{
			name:  "session empty",
			frame: NewSessionFrame(0xffff, nil),
		},
		{
			name:  "discovery",
			frame: NewFrame(KindDiscovery, CodePADI, 0, []byte{0x01, 0x01, 0x00, 0x00}),
		},
		{
			name: "odd version and type",
			frame: &Frame{
				Kind:      KindDiscovery,
				Version:   2,
				Type:      0x0f,
				Code:      0x42,
				SessionID: 7,
				Payload:   []byte{0xaa},
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			encoded, err := c.frame.ToBytes()
			if err != nil {
				t.Fatalf("ToBytes: %v", err)
			}
			if len(encoded) != headerLen+len(c.frame.Payload) {
				t.Fatalf("encoded %d bytes; want %d", len(encoded), headerLen+len(c.frame.Payload))
			}
			parsed, _, err := DecodeFrame(c.frame.Kind, encoded)
			if err != nil {
				t.Fatalf("DecodeFrame(%x): %v", encoded, err)
			}
			if int(parsed.Length) != len(c.frame.Payload) {
				t.Errorf("length field %d; want %d", parsed.Length, len(c.frame.Payload))
			}
			parsed.Length = c.frame.Length
			if !reflect.DeepEqual(parsed, c.frame) {
				t.Errorf("Expect: %v, got: %v", c.frame, parsed)
			}
		})
	}
}

func TestDecodeFrameBad(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
	}{
		{
			name: "short header",
			in:   []byte{0x11, 0x00, 0x12, 0x34, 0x00},
		},
		{
			name: "length exceeds buffer",
			in:   []byte{0x11, 0x00, 0x12, 0x34, 0x00, 0x06, 0x01, 0x02, 0x03, 0x04, 0x05},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			frame, _, err := DecodeFrame(KindSession, c.in)
			if !errors.Is(err, wire.ErrTruncatedInput) {
				t.Fatalf("DecodeFrame(%x): expected ErrTruncatedInput, got %v", c.in, err)
			}
			if frame != nil {
				t.Errorf("DecodeFrame(%x): expected nil frame on error", c.in)
			}
		})
	}
}

func TestFrameOverflow(t *testing.T) {
	cases := []*Frame{
		NewSessionFrame(1, make([]byte, 0x10000)),
		{Kind: KindSession, Version: 0x10, Type: 1},
	}
	for _, frame := range cases {
		if _, err := frame.ToBytes(); !errors.Is(err, wire.ErrFieldOverflow) {
			t.Errorf("ToBytes(%v): expected ErrFieldOverflow, got %v", frame, err)
		}
	}
}

func TestValidCode(t *testing.T) {
	cases := []struct {
		kind Kind
		code Code
		want bool
	}{
		{KindSession, CodeSession, true},
		{KindSession, CodePADI, false},
		{KindDiscovery, CodeSession, false},
		{KindDiscovery, CodePADI, true},
		{KindDiscovery, CodePADO, true},
		{KindDiscovery, CodePADR, true},
		{KindDiscovery, CodePADS, true},
		{KindDiscovery, CodePADT, true},
		{KindDiscovery, 0x42, false},
	}
	for _, c := range cases {
		if got := c.kind.ValidCode(c.code); got != c.want {
			t.Errorf("%v.ValidCode(%v) = %v; want %v", c.kind, c.code, got, c.want)
		}
	}
}

func TestTagRenderAndParse(t *testing.T) {
	cases := []struct {
		name string
		tags []*Tag
	}{
		{
			name: "service name",
			tags: []*Tag{
				{
					Type: TagTypeServiceName,
					Data: []byte("myMagicService"),
				},
			},
		},
		{
			name: "ac name",
			tags: []*Tag{
				{
					Type: TagTypeACName,
					Data: []byte("ThisSpecialAC"),
				},
			},
		},
		{
			name: "host uniq",
			tags: []*Tag{
				{
					Type: TagTypeHostUniq,
					Data: []byte{0x42, 0x81, 0xba, 0x3b, 0xc6, 0x1e, 0x94, 0xb1},
				},
			},
		},
		{
			name: "cookie",
			tags: []*Tag{
				{
					Type: TagTypeACCookie,
					Data: []byte{0x37, 0xd0, 0xba, 0x3b, 0x94, 0x82, 0xc6, 0x1e, 0x01, 0xc3, 0x42, 0x81, 0xa5, 0x93, 0xf9, 0x13},
				},
			},
		},
		{
			name: "service name error",
			tags: []*Tag{
				{
					Type: TagTypeServiceNameError,
					Data: []byte{},
				},
			},
		},
		{
			name: "ac system error",
			tags: []*Tag{
				{
					Type: TagTypeACSystemError,
					Data: []byte("insufficient resources to create a virtual circuit"),
				},
			},
		},
		{
			name: "generic error",
			tags: []*Tag{
				{
					Type: TagTypeGenericError,
					Data: []byte("out of cheese error"),
				},
			},
		},
		{
			name: "ppp max payload",
			tags: []*Tag{
				{
					Type: TagTypePPPMaxPayload,
					Data: []byte{0x05, 0xdc},
				},
			},
		},
		{
			name: "multiple tags",
			tags: []*Tag{
				{
					Type: TagTypeHostUniq,
					Data: []byte{0x42, 0x81, 0xba, 0x3b, 0xc6, 0x1e, 0x94, 0xb1},
				},
				{
					Type: TagTypeACCookie,
					Data: []byte{0x37, 0xd0, 0xba, 0x3b, 0x94, 0x82, 0xc6, 0x1e, 0x01, 0xc3, 0x42, 0x81, 0xa5, 0x93, 0xf9, 0x13},
				},
				{
					Type: TagTypeServiceName,
					Data: []byte("myMagicService"),
				},
				{
					Type: TagTypeACName,
					Data: []byte("ThisSpecialAC"),
				},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			// use PADT because it doesn't contain any tags by default
			pkt := NewPADT(15241)
			for _, tag := range c.tags {
				pkt.AddTag(tag.Type, tag.Data)
			}
			encoded, err := EncodeTags(pkt.Tags)
			if err != nil {
				t.Fatalf("EncodeTags(%v): %v", pkt.Tags, err)
			}
			got, n, err := DecodeTags(encoded)
			if err != nil {
				t.Fatalf("DecodeTags(%x): %v", encoded, err)
			}
			if n != len(encoded) {
				t.Errorf("DecodeTags consumed %d bytes; want %d", n, len(encoded))
			}
			if !reflect.DeepEqual(got, c.tags) {
				t.Errorf("Expect: %v, got: %v", c.tags, got)
			}
		})
	}
}

func TestDecodeTagsStopsAtEOL(t *testing.T) {
	in := []byte{
		0x01, 0x01, 0x00, 0x00, // Service-Name, empty
		0x00, 0x00, 0x00, 0x00, // End-Of-List
		0x00, 0x00, 0x00, 0x00, 0x00, // padding
	}
	tags, n, err := DecodeTags(in)
	if err != nil {
		t.Fatalf("DecodeTags(%x): %v", in, err)
	}
	if n != 8 {
		t.Errorf("DecodeTags consumed %d bytes; want 8", n)
	}
	want := []*Tag{
		{Type: TagTypeServiceName, Data: []byte{}},
		{Type: TagTypeEOL, Data: []byte{}},
	}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("Expect: %v, got: %v", want, tags)
	}
}

func TestDecodeTagsBad(t *testing.T) {
	in := []byte{0x01, 0x01, 0x00, 0x08, 0x41, 0x42}
	tags, _, err := DecodeTags(in)
	if !errors.Is(err, wire.ErrMalformedOptionList) {
		t.Errorf("DecodeTags(%x): expected ErrMalformedOptionList, got %v", in, err)
	}
	if tags != nil {
		t.Errorf("DecodeTags(%x): expected no tags on error", in)
	}
}

func TestPacketRenderAndParse(t *testing.T) {
	cases := []struct {
		name      string
		genPacket func() *Packet
	}{
		{
			name: "PADI",
			genPacket: func() *Packet {
				packet := NewPADI("MegaCorpAC")
				packet.AddHostUniqTag([]byte("wakw39485ryjn398"))
				packet.AddPPPMaxPayloadTag(1500)
				return packet
			},
		},
		{
			name: "PADI any service",
			genPacket: func() *Packet {
				return NewPADI("")
			},
		},
		{
			name: "PADO",
			genPacket: func() *Packet {
				packet := NewPADO("MegaCorpAC", "WunderAC_2001")
				for _, sn := range []string{"WomblesFC", "BatmanLives", "CuriousEarthling", "WilliamWonka"} {
					packet.AddServiceNameTag(sn)
				}
				packet.AddHostUniqTag([]byte("wakw39485ryjn398"))
				packet.AddACCookieTag([]byte("0912340u9q23ejow3er09u235oih"))
				return packet
			},
		},
		{
			name: "PADR",
			genPacket: func() *Packet {
				packet := NewPADR("MegaCorpAC")
				packet.AddHostUniqTag([]byte("wakw39485ryjn398"))
				packet.AddACCookieTag([]byte("0912340u9q23ejow3er09u235oih"))
				return packet
			},
		},
		{
			name: "PADS",
			genPacket: func() *Packet {
				packet := NewPADS("MegaCorpAC", 12345)
				packet.AddHostUniqTag([]byte("wakw39485ryjn398"))
				return packet
			},
		},
		{
			name: "PADSError",
			genPacket: func() *Packet {
				packet := NewPADS("MegaCorpAC", 0)
				packet.AddHostUniqTag([]byte("wakw39485ryjn398"))
				packet.AddServiceNameErrorTag("I don't like this service name after all, sorry")
				return packet
			},
		},
		{
			name: "PADT",
			genPacket: func() *Packet {
				packet := NewPADT(12345)
				packet.AddACSystemErrorTag("OUT OF CHEESE ERROR")
				return packet
			},
		},
		{
			name: "PADT bare",
			genPacket: func() *Packet {
				return NewPADT(1)
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			packet := c.genPacket()
			if err := packet.Validate(); err != nil {
				t.Fatalf("Validate(%v): %v", packet, err)
			}
			encoded, err := packet.ToBytes()
			if err != nil {
				t.Fatalf("ToBytes: %v", err)
			}
			// trailing Ethernet padding must not disturb the tag list
			encoded = append(encoded, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)

			frame, _, err := DecodeFrame(KindDiscovery, encoded)
			if err != nil {
				t.Fatalf("DecodeFrame(%x): %v", encoded, err)
			}
			parsed, err := ParsePacket(frame)
			if err != nil {
				t.Fatalf("ParsePacket(%v): %v", frame, err)
			}
			if !reflect.DeepEqual(parsed, packet) {
				t.Errorf("Expect: %v, got: %v", packet, parsed)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		packet *Packet
	}{
		{
			name:   "PADI nonzero session",
			packet: &Packet{Code: CodePADI, SessionID: 1, Tags: []*Tag{{Type: TagTypeServiceName}}},
		},
		{
			name:   "PADO without AC name",
			packet: NewPADR("svc"),
		},
		{
			name:   "PADS success without service name",
			packet: &Packet{Code: CodePADS, SessionID: 1},
		},
		{
			name:   "PADS failure without error tag",
			packet: NewPADS("svc", 0),
		},
		{
			name:   "PADT zero session",
			packet: NewPADT(0),
		},
		{
			name:   "session code",
			packet: &Packet{Code: CodeSession},
		},
	}
	// the PADO case borrows a PADR with its code swapped
	cases[1].packet.Code = CodePADO

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := c.packet.Validate(); err == nil {
				t.Errorf("Validate(%v): expected error", c.packet)
			}
		})
	}
}

func TestParsePacketRejectsSession(t *testing.T) {
	frame := NewSessionFrame(1, []byte{0xc0, 0x21})
	if _, err := ParsePacket(frame); err == nil {
		t.Errorf("ParsePacket(%v): expected error", frame)
	}
}
