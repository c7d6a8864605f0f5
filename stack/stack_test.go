package stack

import (
	"bytes"
	"encoding/hex"
	"errors"
	"net"
	"net/netip"
	"strings"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/gopacket/layers"
	"github.com/katalix/go-ppp/ppp"
	"github.com/katalix/go-ppp/pppoe"
	"github.com/katalix/go-ppp/wire"
)

var cmpOpts = []cmp.Option{
	cmpopts.EquateEmpty(),
	cmp.Comparer(func(a, b netip.Addr) bool { return a == b }),
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

var (
	testDstMAC = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	testSrcMAC = net.HardwareAddr{0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb}
)

func TestDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		first CodecID
		in    string
		want  []Layer
		// out is the re-encoding when it differs from in
		out string
	}{
		{
			name:  "ethernet pppoe session lcp",
			first: CodecEthernet,
			in: "001122334455 66778899aabb 8864" +
				"1100 1234 000a" +
				"c021 0101 0008 0304 c023" +
				strings.Repeat("00", 30),
			want: []Layer{
				&EthernetLayer{DstMAC: testDstMAC, SrcMAC: testSrcMAC, EthernetType: layers.EthernetTypePPPoESession},
				&PPPoELayer{
					Kind:      pppoe.KindSession,
					Version:   1,
					Type:      1,
					Code:      pppoe.CodeSession,
					SessionID: 0x1234,
					Length:    10,
				},
				&PPPLayer{Framing: ppp.FramingRaw, Protocol: ppp.ProtocolLCP},
				&ControlLayer{
					Message: ppp.NewLCPMessage(ppp.CodeConfigureRequest, 1,
						&ppp.AuthProtocolOption{Protocol: ppp.ProtocolPAP}),
					Trailer: make([]byte, 30),
				},
			},
		},
		{
			name:  "ethernet pppoe discovery padi",
			first: CodecEthernet,
			in: "ffffffffffff 66778899aabb 8863" +
				"1109 0000 000c" +
				"0101 0000 0103 0004 cafef00d" +
				strings.Repeat("00", 28),
			want: []Layer{
				&EthernetLayer{
					DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
					SrcMAC:       testSrcMAC,
					EthernetType: layers.EthernetTypePPPoEDiscovery,
				},
				&PPPoELayer{
					Kind:    pppoe.KindDiscovery,
					Version: 1,
					Type:    1,
					Code:    pppoe.CodePADI,
					Length:  12,
				},
				&DiscoveryTagsLayer{
					Tags: []*pppoe.Tag{
						{Type: pppoe.TagTypeServiceName, Data: []byte{}},
						{Type: pppoe.TagTypeHostUniq, Data: []byte{0xca, 0xfe, 0xf0, 0x0d}},
						{Type: pppoe.TagTypeEOL, Data: []byte{}},
					},
					Trailer: make([]byte, 24),
				},
			},
			// zero padding reads as an End-Of-List tag, which the
			// recomputed length then covers
			out: "ffffffffffff 66778899aabb 8863" +
				"1109 0000 0010" +
				"0101 0000 0103 0004 cafef00d 0000 0000" +
				strings.Repeat("00", 24),
		},
		{
			name:  "linux sll ipcp",
			first: CodecLinuxSLL,
			in: "0000 0001 0006 66778899aabb 0000 8021" +
				"0101 000a 0306 c0a80101",
			want: []Layer{
				&LinuxSLLLayer{
					PacketType:   layers.LinuxSLLPacketTypeHost,
					AddrType:     1,
					Addr:         testSrcMAC,
					EthernetType: layers.EthernetType(0x8021),
				},
				&ControlLayer{Message: ppp.NewIPCPMessage(ppp.CodeConfigureRequest, 1,
					ppp.NewIPAddressOption(ppp.IPCPOptionIPAddress, netip.MustParseAddr("192.168.1.1")))},
			},
		},
		{
			name:  "hdlc ppp ecp with trailer",
			first: CodecPPP,
			in:    "ff03 8053 0e05 0004 ffff",
			want: []Layer{
				&PPPLayer{Framing: ppp.FramingHDLC, Address: 0xff, Control: 0x03, Protocol: ppp.ProtocolECP},
				&ControlLayer{
					Message: &ppp.ControlMessage{Protocol: ppp.ProtocolECP, Code: ppp.CodeResetRequest, ID: 5},
					Trailer: []byte{0xff, 0xff},
				},
			},
		},
		{
			name:  "pppoe session with wrong length",
			first: CodecPPPoE,
			in:    "1100 1234 0000 0102030405",
			want: []Layer{
				&PPPoELayer{
					Kind:      pppoe.KindSession,
					Version:   1,
					Type:      1,
					SessionID: 0x1234,
				},
				&PPPLayer{Framing: ppp.FramingRaw, Protocol: ppp.Protocol(0x0102)},
				&PayloadLayer{Data: []byte{0x03, 0x04, 0x05}},
			},
			out: "1100 1234 0005 0102030405",
		},
		{
			name:  "pppoe session with short length",
			first: CodecPPPoE,
			in:    "1100 1234 0002 c021 0901 0008 00000000",
			want: []Layer{
				&PPPoELayer{
					Kind:      pppoe.KindSession,
					Version:   1,
					Type:      1,
					SessionID: 0x1234,
					Length:    2,
				},
				&PPPLayer{Framing: ppp.FramingRaw, Protocol: ppp.ProtocolLCP},
				&ControlLayer{Message: &ppp.ControlMessage{
					Protocol: ppp.ProtocolLCP,
					Code:     ppp.CodeEchoRequest,
					ID:       1,
					Data:     []byte{0, 0, 0, 0},
				}},
			},
			out: "1100 1234 000a c021 0901 0008 00000000",
		},
		{
			name:  "unbound ppp protocol",
			first: CodecPPP,
			in:    "c023 0101 0006 0000",
			want: []Layer{
				&PPPLayer{Framing: ppp.FramingRaw, Protocol: ppp.ProtocolPAP},
				&PayloadLayer{Data: []byte{0x01, 0x01, 0x00, 0x06, 0x00, 0x00}},
			},
		},
	}

	dec := NewDecoder(DefaultTable(), nil)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := mustHex(t, c.in)
			got, err := dec.Decode(c.first, in)
			if err != nil {
				t.Fatalf("Decode(%v, %x): %v", c.first, in, err)
			}
			if diff := cmp.Diff(&Packet{Layers: c.want}, got, cmpOpts...); diff != "" {
				t.Fatalf("Decode(%v, %x) mismatch (-want +got):\n%s", c.first, in, diff)
			}
			encoded, err := Encode(got)
			if err != nil {
				t.Fatalf("Encode(%v): %v", got, err)
			}
			want := in
			if c.out != "" {
				want = mustHex(t, c.out)
			}
			if !bytes.Equal(encoded, want) {
				t.Errorf("re-encoded %x; want %x", encoded, want)
			}
		})
	}
}

func TestDecodeIPv4(t *testing.T) {
	in := mustHex(t, "ff03 0021"+
		"4500 0018 0001 0000 4011 0000 0a000001 0a000002"+
		"deadbeef"+
		"0000")

	got, err := NewDecoder(nil, nil).Decode(CodecPPP, in)
	if err != nil {
		t.Fatalf("Decode(%x): %v", in, err)
	}
	if len(got.Layers) != 3 {
		t.Fatalf("expected 3 layers, got %v", got)
	}
	ip, ok := got.Layers[1].(*IPv4Layer)
	if !ok {
		t.Fatalf("expected *IPv4Layer, got %T", got.Layers[1])
	}
	if ip.Header.Protocol != layers.IPProtocolUDP {
		t.Errorf("protocol %v; want %v", ip.Header.Protocol, layers.IPProtocolUDP)
	}
	if !ip.Header.SrcIP.Equal(net.IPv4(10, 0, 0, 1)) || !ip.Header.DstIP.Equal(net.IPv4(10, 0, 0, 2)) {
		t.Errorf("addresses %v > %v; want 10.0.0.1 > 10.0.0.2", ip.Header.SrcIP, ip.Header.DstIP)
	}
	if !bytes.Equal(ip.Trailer, []byte{0x00, 0x00}) {
		t.Errorf("trailer %x; want 0000", ip.Trailer)
	}
	payload, ok := got.Layers[2].(*PayloadLayer)
	if !ok || !bytes.Equal(payload.Data, []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Errorf("expected payload deadbeef, got %v", got.Layers[2])
	}

	encoded, err := Encode(got)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(encoded, in) {
		t.Errorf("re-encoded %x; want %x", encoded, in)
	}
}

func TestDecodeLogsMissingBinding(t *testing.T) {
	var buf bytes.Buffer
	logger := level.NewFilter(log.NewLogfmtLogger(&buf), level.AllowDebug())

	in := mustHex(t, "c023 0101 0006 0000")
	if _, err := NewDecoder(DefaultTable(), logger).Decode(CodecPPP, in); err != nil {
		t.Fatalf("Decode(%x): %v", in, err)
	}
	if !strings.Contains(buf.String(), "no binding") || !strings.Contains(buf.String(), "0xc023") {
		t.Errorf("expected missing binding to be logged, got %q", buf.String())
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name  string
		first CodecID
		in    string
		want  error
	}{
		{
			name:  "short ethernet",
			first: CodecEthernet,
			in:    "0011223344556677",
			want:  wire.ErrTruncatedInput,
		},
		{
			name:  "pppoe length overrun",
			first: CodecPPPoE,
			in:    "1100 0001 0008 c021",
			want:  wire.ErrTruncatedInput,
		},
		{
			name:  "pppoe session truncated lcp",
			first: CodecPPPoE,
			in:    "1100 1234 0002 c021 0101 00",
			want:  wire.ErrTruncatedInput,
		},
		{
			name:  "lcp length overrun",
			first: CodecPPP,
			in:    "c021 0101 0010 0104 05dc",
			want:  wire.ErrTruncatedInput,
		},
		{
			name:  "lcp length too small",
			first: CodecPPP,
			in:    "c021 0101 0002",
			want:  wire.ErrInvalidHeaderLength,
		},
		{
			name:  "malformed lcp options",
			first: CodecPPP,
			in:    "c021 0101 0007 0104 05",
			want:  wire.ErrMalformedOptionList,
		},
		{
			name:  "malformed discovery tags",
			first: CodecPPPoEDiscovery,
			in:    "1109 0000 0006 0101 0008 4142",
			want:  wire.ErrMalformedOptionList,
		},
		{
			name:  "sll address too long",
			first: CodecLinuxSLL,
			in:    "0000 0001 0009 0000000000000000 8864",
			want:  wire.ErrInvalidHeaderLength,
		},
	}
	dec := NewDecoder(nil, nil)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := mustHex(t, c.in)
			p, err := dec.Decode(c.first, in)
			if !errors.Is(err, c.want) {
				t.Fatalf("Decode(%v, %x): expected %v, got %v", c.first, in, c.want, err)
			}
			if p != nil {
				t.Errorf("Decode(%v, %x): expected no packet on error", c.first, in)
			}
		})
	}
}

func TestEncodeComputesLengths(t *testing.T) {
	p := &Packet{Layers: []Layer{
		&EthernetLayer{DstMAC: testDstMAC, SrcMAC: testSrcMAC, EthernetType: layers.EthernetTypePPPoESession},
		&PPPoELayer{Kind: pppoe.KindSession, Version: 1, Type: 1, SessionID: 0x0042, Length: 999},
		&PPPLayer{Framing: ppp.FramingRaw, Protocol: ppp.ProtocolLCP},
		&ControlLayer{Message: ppp.NewLCPMessage(ppp.CodeConfigureRequest, 7,
			&ppp.MRUOption{MRU: 1492},
			&ppp.MagicNumberOption{Magic: 0x01020304})},
	}}

	encoded, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(encoded) != ethernetMinLen {
		t.Errorf("encoded %d bytes; want padding to %d", len(encoded), ethernetMinLen)
	}
	// PPP header 2, LCP header 4, MRU 4, magic 6
	want := mustHex(t, "001122334455 66778899aabb 8864"+
		"1100 0042 0010"+
		"c021 0107 000e 0104 05d4 0506 01020304")
	if !bytes.Equal(encoded[:len(want)], want) {
		t.Errorf("encoded %x; want prefix %x", encoded, want)
	}

	parsed, err := NewDecoder(nil, nil).Decode(CodecEthernet, encoded)
	if err != nil {
		t.Fatalf("Decode(%x): %v", encoded, err)
	}
	ctrl, ok := parsed.Layer(CodecLCP).(*ControlLayer)
	if !ok {
		t.Fatalf("no LCP layer in %v", parsed)
	}
	if diff := cmp.Diff(p.Layers[3].(*ControlLayer).Message, ctrl.Message, cmpOpts...); diff != "" {
		t.Errorf("LCP mismatch (-want +got):\n%s", diff)
	}
	session := parsed.Layer(CodecPPPoE).(*PPPoELayer)
	if session.Length != 16 {
		t.Errorf("PPPoE length %d; want 16", session.Length)
	}
}

func TestEncodeOverflow(t *testing.T) {
	p := &Packet{Layers: []Layer{
		&PPPoELayer{Kind: pppoe.KindSession, Version: 1, Type: 1},
		&PayloadLayer{Data: make([]byte, 0x10000)},
	}}
	if _, err := Encode(p); !errors.Is(err, wire.ErrFieldOverflow) {
		t.Errorf("Encode: expected ErrFieldOverflow, got %v", err)
	}
}
