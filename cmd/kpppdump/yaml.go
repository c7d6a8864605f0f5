package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/katalix/go-ppp/stack"
	"gopkg.in/yaml.v3"
)

type yamlPacket struct {
	Frame  int         `yaml:"frame"`
	Layers []yamlLayer `yaml:"layers"`
}

type yamlLayer struct {
	Codec   string            `yaml:"codec"`
	Fields  map[string]string `yaml:"fields,omitempty"`
	Options []string          `yaml:"options,omitempty"`
	Tags    []string          `yaml:"tags,omitempty"`
	Trailer string            `yaml:"trailer,omitempty"`
}

func hex16(v uint16) string {
	return fmt.Sprintf("0x%04x", v)
}

func newYAMLLayer(l stack.Layer) yamlLayer {
	out := yamlLayer{Codec: l.Codec().String(), Fields: make(map[string]string)}

	switch l := l.(type) {
	case *stack.EthernetLayer:
		out.Fields["src"] = l.SrcMAC.String()
		out.Fields["dst"] = l.DstMAC.String()
		out.Fields["type"] = hex16(uint16(l.EthernetType))
		if l.Length != 0 {
			out.Fields["length"] = fmt.Sprint(l.Length)
		}
		out.Trailer = hex.EncodeToString(l.Trailer)
	case *stack.LinuxSLLLayer:
		out.Fields["packet_type"] = fmt.Sprint(l.PacketType)
		out.Fields["addr_type"] = fmt.Sprint(l.AddrType)
		out.Fields["addr"] = hex.EncodeToString(l.Addr)
		out.Fields["type"] = hex16(uint16(l.EthernetType))
	case *stack.PPPoELayer:
		out.Fields["version"] = fmt.Sprint(l.Version)
		out.Fields["type"] = fmt.Sprint(l.Type)
		out.Fields["code"] = l.Code.String()
		out.Fields["session_id"] = hex16(uint16(l.SessionID))
		out.Fields["length"] = fmt.Sprint(l.Length)
	case *stack.DiscoveryTagsLayer:
		for _, tag := range l.Tags {
			out.Tags = append(out.Tags, tag.String())
		}
		out.Trailer = hex.EncodeToString(l.Trailer)
	case *stack.PPPLayer:
		out.Fields["framing"] = l.Framing.String()
		out.Fields["protocol"] = l.Protocol.String()
	case *stack.ControlLayer:
		out.Fields["code"] = l.Message.Code.String()
		out.Fields["id"] = fmt.Sprint(l.Message.ID)
		for _, opt := range l.Message.Options {
			out.Options = append(out.Options, opt.String())
		}
		if len(l.Message.Data) > 0 {
			out.Fields["data"] = hex.EncodeToString(l.Message.Data)
		}
		out.Trailer = hex.EncodeToString(l.Trailer)
	case *stack.IPv4Layer:
		out.Fields["src"] = l.Header.SrcIP.String()
		out.Fields["dst"] = l.Header.DstIP.String()
		out.Fields["protocol"] = l.Header.Protocol.String()
		out.Fields["ttl"] = fmt.Sprint(l.Header.TTL)
		out.Trailer = hex.EncodeToString(l.Trailer)
	case *stack.PayloadLayer:
		out.Fields["data"] = hex.EncodeToString(l.Data)
	}
	return out
}

// writePacketYAML writes p as a single YAML document.
func writePacketYAML(w io.Writer, frame int, p *stack.Packet) error {
	doc := yamlPacket{Frame: frame}
	for _, l := range p.Layers {
		doc.Layers = append(doc.Layers, newYAMLLayer(l))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to write YAML: %v", err)
	}
	return enc.Close()
}
