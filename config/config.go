/*
Package config implements a parser for PPP and PPPoE frame descriptions
represented in the TOML format: https://github.com/toml-lang/toml.

Please refer to the TOML repos for an in-depth description of the syntax.

Frame instances are called out in the configuration file using named
TOML tables.  Each frame table describes the link the frame is sent on,
the PPPoE session, and either a PPP control protocol packet or a PPPoE
discovery packet.

	# This is a frame instance named "confreq"
	[frame.confreq]

	# link specifies the outermost header of the frame.
	# Currently supported values are "ethernet", "sll", "pppoe" and "ppp".
	# The default is "ethernet".
	link = "ethernet"

	# src and dst specify the Ethernet addresses for "ethernet" links.
	# src is also used as the address of "sll" links.
	# By default src is all zeros and dst is the broadcast address.
	src = "02:00:00:00:00:01"
	dst = "02:00:00:00:00:02"

	# session_id specifies the PPPoE session ID.
	session_id = 0x1234

	# framing specifies the PPP framing.
	# Currently supported values are "raw" and "hdlc".
	# The default is "raw", as used by PPPoE.
	framing = "raw"

	# protocol specifies the PPP control protocol of the packet.
	# Currently supported values are "lcp", "ipcp" and "ecp".
	protocol = "lcp"

	# code specifies the packet code, either by name (e.g.
	# "configure-request", "echo-request") or by number.
	# The default is "configure-request".
	code = "configure-request"

	# id specifies the packet identifier.  The default is 1.
	id = 1

	# data specifies the body of packets which carry no options, such as
	# Echo-Request or Terminate-Request, either as a byte array or a hex
	# string.  Configure packets carry options instead, so data is not
	# set here.
	#data = "00000000"

	# option tables are appended to the packet's option list in order.
	# type is either an option name or an option number.  Numbered options
	# are encoded verbatim from their data.
	[[frame.confreq.option]]
	type = "mru"
	value = 1492

	[[frame.confreq.option]]
	type = "auth"
	protocol = "chap"
	data = [ 0x05 ]

	[[frame.confreq.option]]
	type = "magic"
	magic = 0xcafef00d

	[[frame.confreq.option]]
	type = 17
	data = [ 0x05, 0xdc ]

	# This is a PPPoE discovery frame.  Discovery frames are not valid on
	# "ppp" links.
	[frame.padi]

	# discovery specifies the discovery packet code.
	# Currently supported values are "padi", "pado", "padr", "pads" and "padt".
	discovery = "padi"
	service_name = "broadband"
	ac_name = "ac1"
	host_uniq = [ 0xde, 0xad, 0xbe, 0xef ]

Option keys per type:

	LCP:  "mru" (value), "auth" (protocol, data), "quality" (protocol),
	      "magic" (magic), "pfc", "acfc"
	IPCP: "ip-address", "primary-dns", "secondary-dns", "primary-nbns",
	      "secondary-nbns" (address, garbage); address defaults to 0.0.0.0
	ECP:  "oui" (oui, subtype, data)
*/
package config

import (
	"encoding/hex"
	"fmt"
	"net"
	"net/netip"
	"sort"
	"strings"

	"github.com/google/gopacket/layers"
	"github.com/katalix/go-ppp/ppp"
	"github.com/katalix/go-ppp/pppoe"
	"github.com/katalix/go-ppp/stack"
	"github.com/pelletier/go-toml"
)

// Config contains the frame descriptions parsed from a configuration.
type Config struct {
	// The entire tree as a map as parsed from the TOML representation.
	// Apps may access this tree to handle their own config tables.
	Map map[string]interface{}
	// All the frames defined in the configuration, ordered by name.
	Frames []*Frame
}

// Frame describes one frame to be generated.
type Frame struct {
	// The frame's name as specified in the config file.
	Name string
	// Link is the codec of the outermost header.
	Link stack.CodecID
	// SrcHWAddr and DstHWAddr are used by Ethernet and Linux cooked
	// capture links.
	SrcHWAddr net.HardwareAddr
	DstHWAddr net.HardwareAddr
	// SessionID is the PPPoE session ID.
	SessionID pppoe.SessionID
	// Framing is the PPP framing.
	Framing ppp.Framing
	// Message is the PPP control packet carried by session frames.
	Message *ppp.ControlMessage
	// Discovery is the PPPoE discovery packet carried by discovery
	// frames.  It is nil for session frames.
	Discovery *pppoe.Packet
}

// go-toml's ToMap function represents numbers as either uint64 or int64.
// So when we are converting numbers, we need to figure out which one it
// has picked and range check to ensure that the number from the config
// fits within the range of the destination type.
func toByte(v interface{}) (byte, error) {
	if b, ok := v.(int64); ok {
		if b < 0x0 || b > 0xff {
			return 0, fmt.Errorf("value %x out of range", b)
		}
		return byte(b), nil
	} else if b, ok := v.(uint64); ok {
		if b > 0xff {
			return 0, fmt.Errorf("value %x out of range", b)
		}
		return byte(b), nil
	}
	return 0, fmt.Errorf("unexpected %T value %v", v, v)
}

func toUint16(v interface{}) (uint16, error) {
	if b, ok := v.(int64); ok {
		if b < 0x0 || b > 0xffff {
			return 0, fmt.Errorf("value %x out of range", b)
		}
		return uint16(b), nil
	} else if b, ok := v.(uint64); ok {
		if b > 0xffff {
			return 0, fmt.Errorf("value %x out of range", b)
		}
		return uint16(b), nil
	}
	return 0, fmt.Errorf("unexpected %T value %v", v, v)
}

func toUint32(v interface{}) (uint32, error) {
	if b, ok := v.(int64); ok {
		if b < 0x0 || b > 0xffffffff {
			return 0, fmt.Errorf("value %x out of range", b)
		}
		return uint32(b), nil
	} else if b, ok := v.(uint64); ok {
		if b > 0xffffffff {
			return 0, fmt.Errorf("value %x out of range", b)
		}
		return uint32(b), nil
	}
	return 0, fmt.Errorf("unexpected %T value %v", v, v)
}

func toString(v interface{}) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("supplied value could not be parsed as a string")
}

// toBytes accepts either an array of byte values or a hex string.
func toBytes(v interface{}) ([]byte, error) {
	out := []byte{}

	if s, ok := v.(string); ok {
		b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
		if err != nil {
			return nil, fmt.Errorf("bad hex string: %v", err)
		}
		return b, nil
	}

	// First ensure that the supplied value is actually an array
	numbers, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected array or hex string value")
	}

	// TOML arrays can be mixed type, so we have to check on a value-by-value
	// basis that the value in the array can be represented as a byte.
	for _, number := range numbers {
		b, err := toByte(number)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func toHWAddr(v interface{}) (net.HardwareAddr, error) {
	s, err := toString(v)
	if err != nil {
		return nil, err
	}
	addr, err := net.ParseMAC(s)
	if err != nil {
		return nil, err
	}
	if len(addr) != 6 {
		return nil, fmt.Errorf("expect a 6 byte Ethernet address")
	}
	return addr, nil
}

func toAddr(v interface{}) (netip.Addr, error) {
	s, err := toString(v)
	if err != nil {
		return netip.Addr{}, err
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, err
	}
	if !addr.Is4() {
		return netip.Addr{}, fmt.Errorf("expect an IPv4 address")
	}
	return addr, nil
}

func toLink(v interface{}) (stack.CodecID, error) {
	s, err := toString(v)
	if err == nil {
		switch s {
		case "ethernet":
			return stack.CodecEthernet, nil
		case "sll":
			return stack.CodecLinuxSLL, nil
		case "pppoe":
			return stack.CodecPPPoE, nil
		case "ppp":
			return stack.CodecPPP, nil
		}
		return 0, fmt.Errorf("expect 'ethernet', 'sll', 'pppoe' or 'ppp'")
	}
	return 0, err
}

func toFraming(v interface{}) (ppp.Framing, error) {
	s, err := toString(v)
	if err == nil {
		switch s {
		case "raw":
			return ppp.FramingRaw, nil
		case "hdlc":
			return ppp.FramingHDLC, nil
		}
		return 0, fmt.Errorf("expect 'raw' or 'hdlc'")
	}
	return 0, err
}

func toControlProtocol(v interface{}) (ppp.Protocol, error) {
	s, err := toString(v)
	if err == nil {
		switch s {
		case "lcp":
			return ppp.ProtocolLCP, nil
		case "ipcp":
			return ppp.ProtocolIPCP, nil
		case "ecp":
			return ppp.ProtocolECP, nil
		}
		return 0, fmt.Errorf("expect 'lcp', 'ipcp' or 'ecp'")
	}
	return 0, err
}

var authProtocols = map[string]ppp.Protocol{
	"pap":  ppp.ProtocolPAP,
	"chap": ppp.ProtocolCHAP,
	"eap":  ppp.ProtocolEAP,
	"lqr":  ppp.ProtocolLQR,
}

// toProtocol accepts a PPP protocol number or one of the names in
// authProtocols.
func toProtocol(v interface{}) (ppp.Protocol, error) {
	if s, ok := v.(string); ok {
		if p, ok := authProtocols[s]; ok {
			return p, nil
		}
		return 0, fmt.Errorf("unrecognised protocol '%v'", s)
	}
	u, err := toUint16(v)
	return ppp.Protocol(u), err
}

var codeNames = func() map[string]ppp.Code {
	m := make(map[string]ppp.Code)
	for c := ppp.CodeConfigureRequest; c <= ppp.CodeResetAck; c++ {
		name := c.String()
		if strings.HasPrefix(name, "Code(") {
			continue
		}
		m[strings.ToLower(name)] = c
	}
	return m
}()

func toCode(v interface{}) (ppp.Code, error) {
	if s, ok := v.(string); ok {
		if c, ok := codeNames[s]; ok {
			return c, nil
		}
		return 0, fmt.Errorf("unrecognised code '%v'", s)
	}
	u, err := toByte(v)
	return ppp.Code(u), err
}

func toDiscoveryCode(v interface{}) (pppoe.Code, error) {
	s, err := toString(v)
	if err == nil {
		switch s {
		case "padi":
			return pppoe.CodePADI, nil
		case "pado":
			return pppoe.CodePADO, nil
		case "padr":
			return pppoe.CodePADR, nil
		case "pads":
			return pppoe.CodePADS, nil
		case "padt":
			return pppoe.CodePADT, nil
		}
		return 0, fmt.Errorf("expect 'padi', 'pado', 'padr', 'pads' or 'padt'")
	}
	return 0, err
}

var ipcpAddressOptions = map[string]ppp.OptionType{
	"ip-address":     ppp.IPCPOptionIPAddress,
	"primary-dns":    ppp.IPCPOptionPrimaryDNS,
	"secondary-dns":  ppp.IPCPOptionSecondaryDNS,
	"primary-nbns":   ppp.IPCPOptionPrimaryNBNS,
	"secondary-nbns": ppp.IPCPOptionSecondaryNBNS,
}

func newOption(protocol ppp.Protocol, omap map[string]interface{}) (ppp.Option, error) {
	typ, ok := omap["type"]
	if !ok {
		return nil, fmt.Errorf("option has no type")
	}

	var err error
	var opt ppp.Option

	// Numbered options are encoded verbatim
	if _, isName := typ.(string); !isName {
		raw := &ppp.RawOption{}
		var t byte
		if t, err = toByte(typ); err != nil {
			return nil, fmt.Errorf("failed to process type: %v", err)
		}
		raw.OptType = ppp.OptionType(t)
		opt = raw
	} else {
		name := typ.(string)
		if addrType, ok := ipcpAddressOptions[name]; ok && protocol == ppp.ProtocolIPCP {
			opt = ppp.NewIPAddressOption(addrType, netip.Addr{})
		} else {
			switch {
			case name == "mru" && protocol == ppp.ProtocolLCP:
				opt = &ppp.MRUOption{}
			case name == "auth" && protocol == ppp.ProtocolLCP:
				opt = &ppp.AuthProtocolOption{}
			case name == "quality" && protocol == ppp.ProtocolLCP:
				opt = &ppp.QualityProtocolOption{}
			case name == "magic" && protocol == ppp.ProtocolLCP:
				opt = &ppp.MagicNumberOption{}
			case name == "pfc" && protocol == ppp.ProtocolLCP:
				opt = &ppp.ProtocolFieldCompressionOption{}
			case name == "acfc" && protocol == ppp.ProtocolLCP:
				opt = &ppp.AddressControlFieldCompressionOption{}
			case name == "oui" && protocol == ppp.ProtocolECP:
				opt = &ppp.OUIOption{}
			default:
				return nil, fmt.Errorf("unrecognised %v option type '%v'", protocol, name)
			}
		}
	}

	for k, v := range omap {
		if k == "type" {
			continue
		}
		switch o := opt.(type) {
		case *ppp.RawOption:
			switch k {
			case "data":
				o.Data, err = toBytes(v)
			default:
				return nil, fmt.Errorf("unrecognised parameter '%v'", k)
			}
		case *ppp.MRUOption:
			switch k {
			case "value":
				o.MRU, err = toUint16(v)
			default:
				return nil, fmt.Errorf("unrecognised parameter '%v'", k)
			}
		case *ppp.AuthProtocolOption:
			switch k {
			case "protocol":
				o.Protocol, err = toProtocol(v)
			case "data":
				o.Data, err = toBytes(v)
			default:
				return nil, fmt.Errorf("unrecognised parameter '%v'", k)
			}
		case *ppp.QualityProtocolOption:
			switch k {
			case "protocol":
				o.Protocol, err = toProtocol(v)
			default:
				return nil, fmt.Errorf("unrecognised parameter '%v'", k)
			}
		case *ppp.MagicNumberOption:
			switch k {
			case "magic":
				o.Magic, err = toUint32(v)
			default:
				return nil, fmt.Errorf("unrecognised parameter '%v'", k)
			}
		case *ppp.IPAddressOption:
			switch k {
			case "address":
				o.Addr, err = toAddr(v)
			case "garbage":
				o.Garbage, err = toBytes(v)
			default:
				return nil, fmt.Errorf("unrecognised parameter '%v'", k)
			}
		case *ppp.OUIOption:
			switch k {
			case "oui":
				var b []byte
				if b, err = toBytes(v); err == nil {
					if len(b) != len(o.OUI) {
						err = fmt.Errorf("expect %d bytes", len(o.OUI))
					} else {
						copy(o.OUI[:], b)
					}
				}
			case "subtype":
				o.Subtype, err = toByte(v)
			case "data":
				o.Data, err = toBytes(v)
			default:
				return nil, fmt.Errorf("unrecognised parameter '%v'", k)
			}
		default:
			return nil, fmt.Errorf("unrecognised parameter '%v'", k)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to process %v: %v", k, err)
		}
	}
	return opt, nil
}

// toOptionMaps handles the two representations go-toml may use for an
// array of tables.
func toOptionMaps(v interface{}) ([]map[string]interface{}, error) {
	switch opts := v.(type) {
	case []map[string]interface{}:
		return opts, nil
	case []interface{}:
		var out []map[string]interface{}
		for _, o := range opts {
			omap, ok := o.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("options must be tables, e.g. '[[frame.myframe.option]]'")
			}
			out = append(out, omap)
		}
		return out, nil
	}
	return nil, fmt.Errorf("options must be tables, e.g. '[[frame.myframe.option]]'")
}

func newFrame(name string, fcfg map[string]interface{}) (*Frame, error) {
	f := &Frame{
		Name:      name,
		Link:      stack.CodecEthernet,
		SrcHWAddr: net.HardwareAddr{0, 0, 0, 0, 0, 0},
		DstHWAddr: net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		Framing:   ppp.FramingRaw,
		Message:   ppp.NewLCPMessage(ppp.CodeConfigureRequest, 1),
	}

	var discoveryCode pppoe.Code
	var serviceName, acName string
	var hostUniq []byte
	var options interface{}

	for k, v := range fcfg {
		var err error
		switch k {
		case "link":
			f.Link, err = toLink(v)
		case "src":
			f.SrcHWAddr, err = toHWAddr(v)
		case "dst":
			f.DstHWAddr, err = toHWAddr(v)
		case "session_id":
			var sid uint16
			sid, err = toUint16(v)
			f.SessionID = pppoe.SessionID(sid)
		case "framing":
			f.Framing, err = toFraming(v)
		case "protocol":
			f.Message.Protocol, err = toControlProtocol(v)
		case "code":
			f.Message.Code, err = toCode(v)
		case "id":
			f.Message.ID, err = toByte(v)
		case "data":
			f.Message.Data, err = toBytes(v)
		case "option":
			// parsed once the protocol is known
			options = v
		case "discovery":
			discoveryCode, err = toDiscoveryCode(v)
		case "service_name":
			serviceName, err = toString(v)
		case "ac_name":
			acName, err = toString(v)
		case "host_uniq":
			hostUniq, err = toBytes(v)
		default:
			return nil, fmt.Errorf("unrecognised parameter '%v'", k)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to process %v: %v", k, err)
		}
	}

	if discoveryCode != 0 {
		if f.Link == stack.CodecPPP {
			return nil, fmt.Errorf("discovery frames need a PPPoE header")
		}
		f.Message = nil
		f.Discovery = newDiscoveryPacket(discoveryCode, f.SessionID, serviceName, acName, hostUniq)
		if err := f.Discovery.Validate(); err != nil {
			return nil, fmt.Errorf("invalid discovery packet: %v", err)
		}
		return f, nil
	}

	if options != nil {
		omaps, err := toOptionMaps(options)
		if err != nil {
			return nil, err
		}
		for i, omap := range omaps {
			opt, err := newOption(f.Message.Protocol, omap)
			if err != nil {
				return nil, fmt.Errorf("option %d: %v", i, err)
			}
			f.Message.Append(opt)
		}
	}
	if err := f.Message.Validate(); err != nil {
		return nil, fmt.Errorf("invalid control packet: %v", err)
	}
	return f, nil
}

func newDiscoveryPacket(code pppoe.Code, sid pppoe.SessionID, serviceName, acName string, hostUniq []byte) *pppoe.Packet {
	var packet *pppoe.Packet
	switch code {
	case pppoe.CodePADI:
		packet = pppoe.NewPADI(serviceName)
	case pppoe.CodePADO:
		packet = pppoe.NewPADO(serviceName, acName)
	case pppoe.CodePADR:
		packet = pppoe.NewPADR(serviceName)
	case pppoe.CodePADS:
		packet = pppoe.NewPADS(serviceName, sid)
		if sid == 0 {
			packet.AddServiceNameErrorTag("")
		}
	default:
		packet = pppoe.NewPADT(sid)
	}
	if len(hostUniq) > 0 {
		packet.AddHostUniqTag(hostUniq)
	}
	return packet
}

// Build assembles the layer stack described by the frame, ready for
// stack.Encode.
func (f *Frame) Build() (*stack.Packet, error) {
	var layerStack []stack.Layer

	kind := pppoe.KindSession
	code := pppoe.CodeSession
	if f.Discovery != nil {
		kind = pppoe.KindDiscovery
		code = f.Discovery.Code
	}

	switch f.Link {
	case stack.CodecEthernet:
		layerStack = append(layerStack, &stack.EthernetLayer{
			DstMAC:       f.DstHWAddr,
			SrcMAC:       f.SrcHWAddr,
			EthernetType: layers.EthernetType(kind.EtherType()),
		})
	case stack.CodecLinuxSLL:
		layerStack = append(layerStack, &stack.LinuxSLLLayer{
			PacketType:   layers.LinuxSLLPacketTypeOutgoing,
			AddrType:     1, // ARPHRD_ETHER
			Addr:         f.SrcHWAddr,
			EthernetType: layers.EthernetType(kind.EtherType()),
		})
	case stack.CodecPPPoE, stack.CodecPPP:
	default:
		return nil, fmt.Errorf("unsupported link %v", f.Link)
	}

	if f.Link != stack.CodecPPP {
		layerStack = append(layerStack, &stack.PPPoELayer{
			Kind:      kind,
			Version:   1,
			Type:      1,
			Code:      code,
			SessionID: f.SessionID,
		})
	}

	if f.Discovery != nil {
		if f.Link == stack.CodecPPP {
			return nil, fmt.Errorf("discovery frames need a PPPoE header")
		}
		layerStack = append(layerStack, &stack.DiscoveryTagsLayer{Tags: f.Discovery.Tags})
		return &stack.Packet{Layers: layerStack}, nil
	}

	if f.Message == nil {
		return nil, fmt.Errorf("frame %v has no content", f.Name)
	}

	pppLayer := &stack.PPPLayer{Framing: f.Framing, Protocol: f.Message.Protocol}
	if f.Framing == ppp.FramingHDLC {
		pppLayer.Address, pppLayer.Control = 0xff, 0x03
	}
	layerStack = append(layerStack, pppLayer, &stack.ControlLayer{Message: f.Message})
	return &stack.Packet{Layers: layerStack}, nil
}

func (cfg *Config) loadFrames() error {
	var frames map[string]interface{}

	// Extract the frame map from the configuration tree
	if got, ok := cfg.Map["frame"]; ok {
		frames, ok = got.(map[string]interface{})
		if !ok {
			return fmt.Errorf("frame instances must be named, e.g. '[frame.myframe]'")
		}
	} else {
		return fmt.Errorf("no frame table present")
	}

	// Iterate through the map and build frame instances
	for name, got := range frames {
		fmap, ok := got.(map[string]interface{})
		if !ok {
			return fmt.Errorf("frame instances must be named, e.g. '[frame.myframe]'")
		}
		f, err := newFrame(name, fmap)
		if err != nil {
			return fmt.Errorf("frame %v: %v", name, err)
		}
		cfg.Frames = append(cfg.Frames, f)
	}
	sort.Slice(cfg.Frames, func(i, j int) bool {
		return cfg.Frames[i].Name < cfg.Frames[j].Name
	})
	return nil
}

func newConfig(tree *toml.Tree) (*Config, error) {
	cfg := &Config{Map: tree.ToMap()}
	err := cfg.loadFrames()
	if err != nil {
		return nil, fmt.Errorf("failed to parse frames: %v", err)
	}
	return cfg, nil
}

// LoadFile loads configuration from the specified file.
func LoadFile(path string) (*Config, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %v", err)
	}
	return newConfig(tree)
}

// LoadString loads configuration from the specified string.
func LoadString(content string) (*Config, error) {
	tree, err := toml.Load(content)
	if err != nil {
		return nil, fmt.Errorf("failed to load config string: %v", err)
	}
	return newConfig(tree)
}
