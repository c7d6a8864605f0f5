// Package stack chains the PPP and PPPoE codecs, together with the link
// and network layers around them, into complete packet decoders and
// encoders.
//
// Which codec handles the bytes following a header is decided by a Table
// of bindings from (outer codec, discriminant) pairs to inner codecs.
// Tables are immutable once built and are passed explicitly to the
// Decoder.
package stack

import (
	"fmt"
	"sort"

	"github.com/google/gopacket/layers"
	"github.com/katalix/go-ppp/ppp"
	"github.com/katalix/go-ppp/pppoe"
)

// CodecID identifies a codec which may appear in a layer stack.
type CodecID int

// Codecs known to the stack.
const (
	CodecEthernet CodecID = iota
	CodecLinuxSLL
	CodecPPPoEDiscovery
	CodecPPPoE
	CodecDiscoveryTags
	CodecPPP
	CodecLCP
	CodecIPCP
	CodecECP
	CodecIPv4
	// CodecPayload holds bytes no binding claimed.
	CodecPayload
)

// String provides a human-readable representation of CodecID.
func (id CodecID) String() string {
	switch id {
	case CodecEthernet:
		return "Ethernet"
	case CodecLinuxSLL:
		return "LinuxSLL"
	case CodecPPPoEDiscovery:
		return "PPPoE-Discovery"
	case CodecPPPoE:
		return "PPPoE"
	case CodecDiscoveryTags:
		return "PPPoE-Tags"
	case CodecPPP:
		return "PPP"
	case CodecLCP:
		return "LCP"
	case CodecIPCP:
		return "IPCP"
	case CodecECP:
		return "ECP"
	case CodecIPv4:
		return "IPv4"
	case CodecPayload:
		return "Payload"
	}
	return fmt.Sprintf("Codec(%d)", int(id))
}

// Binding associates a discriminant value found in an outer codec's header
// with the codec which handles the bytes that follow.
type Binding struct {
	Outer CodecID
	Value uint32
	Inner CodecID
}

type bindingKey struct {
	outer CodecID
	value uint32
}

// Table is an immutable set of bindings.
type Table struct {
	bindings map[bindingKey]CodecID
}

// NewTable builds a table from the bindings given.  Where two bindings share
// an outer codec and value, the later one wins.
func NewTable(bindings ...Binding) *Table {
	t := &Table{bindings: make(map[bindingKey]CodecID, len(bindings))}
	for _, b := range bindings {
		t.bindings[bindingKey{outer: b.Outer, value: b.Value}] = b.Inner
	}
	return t
}

// Lookup returns the codec bound to a discriminant value of an outer codec.
// Binding is value-exact.
func (t *Table) Lookup(outer CodecID, value uint32) (inner CodecID, ok bool) {
	inner, ok = t.bindings[bindingKey{outer: outer, value: value}]
	return
}

// Bindings returns the table's bindings ordered by outer codec and value.
func (t *Table) Bindings() []Binding {
	out := make([]Binding, 0, len(t.bindings))
	for k, inner := range t.bindings {
		out = append(out, Binding{Outer: k.outer, Value: k.value, Inner: inner})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Outer != out[j].Outer {
			return out[i].Outer < out[j].Outer
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Extend returns a new table holding t's bindings plus those given, which
// take precedence.  t itself is unchanged.
func (t *Table) Extend(bindings ...Binding) *Table {
	return NewTable(append(t.Bindings(), bindings...)...)
}

func defaultBindings() []Binding {
	var bindings []Binding

	for _, link := range []CodecID{CodecEthernet, CodecLinuxSLL} {
		bindings = append(bindings,
			Binding{link, uint32(pppoe.EtherTypeDiscovery), CodecPPPoEDiscovery},
			Binding{link, uint32(pppoe.EtherTypeSession), CodecPPPoE},
			Binding{link, uint32(ppp.ProtocolIPCP), CodecIPCP},
			Binding{link, uint32(ppp.ProtocolECP), CodecECP},
		)
	}

	bindings = append(bindings, Binding{CodecPPPoE, uint32(pppoe.CodeSession), CodecPPP})
	for _, code := range []pppoe.Code{
		pppoe.CodePADI,
		pppoe.CodePADO,
		pppoe.CodePADR,
		pppoe.CodePADS,
		pppoe.CodePADT,
	} {
		bindings = append(bindings, Binding{CodecPPPoEDiscovery, uint32(code), CodecDiscoveryTags})
	}

	return append(bindings,
		Binding{CodecPPP, uint32(ppp.ProtocolIPv4), CodecIPv4},
		Binding{CodecPPP, uint32(ppp.ProtocolLCP), CodecLCP},
		Binding{CodecPPP, uint32(ppp.ProtocolIPCP), CodecIPCP},
		Binding{CodecPPP, uint32(ppp.ProtocolECP), CodecECP},
	)
}

var defaultTable = NewTable(defaultBindings()...)

// DefaultTable returns the bindings between the Ethernet, Linux cooked
// capture, PPPoE, PPP, LCP, IPCP, ECP and IPv4 codecs.  The table is
// shared and must be treated as read-only; use Extend to add bindings.
func DefaultTable() *Table {
	return defaultTable
}

// LinkTypePPPWithDir is DLT_PPP_WITH_DIR: a PPP frame preceded by a byte
// which is 0 for frames received and 1 for frames sent.
const LinkTypePPPWithDir layers.LinkType = 204

// LinkTypeCodec returns the codec which decodes frames captured with the
// given pcap link type, once LinkTypePrefixLen bytes are skipped.
func LinkTypeCodec(lt layers.LinkType) (CodecID, bool) {
	switch lt {
	case layers.LinkTypeEthernet:
		return CodecEthernet, true
	case layers.LinkTypeLinuxSLL:
		return CodecLinuxSLL, true
	case layers.LinkTypePPP, layers.LinkTypePPP_HDLC, LinkTypePPPWithDir:
		return CodecPPP, true
	case layers.LinkTypePPPEthernet:
		return CodecPPPoE, true
	}
	return 0, false
}

// LinkTypePrefixLen returns the number of bytes a capture of link type lt
// carries ahead of the frame.
func LinkTypePrefixLen(lt layers.LinkType) int {
	if lt == LinkTypePPPWithDir {
		return 1
	}
	return 0
}

// CodecLinkType is the inverse of LinkTypeCodec, used when writing
// captures.
func CodecLinkType(id CodecID) (layers.LinkType, bool) {
	switch id {
	case CodecEthernet:
		return layers.LinkTypeEthernet, true
	case CodecLinuxSLL:
		return layers.LinkTypeLinuxSLL, true
	case CodecPPP:
		return layers.LinkTypePPP, true
	case CodecPPPoE:
		return layers.LinkTypePPPEthernet, true
	}
	return 0, false
}
