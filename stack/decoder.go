package stack

import (
	"fmt"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// Packet is a decoded stack of layers, outermost first.
type Packet struct {
	Layers []Layer
}

// Layer returns the first layer produced by the given codec, or nil.
func (p *Packet) Layer(id CodecID) Layer {
	for _, l := range p.Layers {
		if l.Codec() == id {
			return l
		}
	}
	return nil
}

// String provides a human-readable representation of Packet.
func (p *Packet) String() string {
	s := ""
	for i, l := range p.Layers {
		if i > 0 {
			s += " / "
		}
		s += l.String()
	}
	return s
}

// Decoder decodes byte buffers into layer stacks by following the bindings
// of a Table.  A Decoder holds no per-call state and may be used from
// several goroutines at once.
type Decoder struct {
	table  *Table
	logger log.Logger
}

// NewDecoder returns a decoder using the bindings in table.  A nil table
// selects DefaultTable, and a nil logger discards log output.
func NewDecoder(table *Table, logger log.Logger) *Decoder {
	if table == nil {
		table = DefaultTable()
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Decoder{table: table, logger: logger}
}

// Decode parses b starting with the codec first.
//
// Each layer's discriminant selects the codec for the bytes following it.
// A discriminant without a binding is not an error: the remaining bytes
// become a PayloadLayer.  Decoding stops when no bytes remain.  Any error
// from a codec aborts the whole decode.
func (d *Decoder) Decode(first CodecID, b []byte) (*Packet, error) {
	p := &Packet{}
	codec := first

	for {
		dec, ok := layerDecoders[codec]
		if !ok {
			return nil, fmt.Errorf("no decoder for codec %v", codec)
		}

		layer, rest, err := dec(b)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %v layer %d: %w", codec, len(p.Layers), err)
		}
		p.Layers = append(p.Layers, layer)

		if len(rest) == 0 {
			return p, nil
		}

		next := CodecPayload
		if value, ok := layer.discriminant(); ok {
			if inner, found := d.table.Lookup(codec, value); found {
				next = inner
			} else {
				level.Debug(d.logger).Log(
					"message", "no binding",
					"codec", codec,
					"value", fmt.Sprintf("0x%04x", value),
					"payload_bytes", len(rest))
			}
		}
		codec, b = next, rest
	}
}

// Encode renders a layer stack to bytes.  Layers are encoded innermost
// first so that every length field is computed from the bytes it covers.
// Trailers of inner layers, such as link layer padding, are not counted
// in the PPPoE length.
func Encode(p *Packet) (encoded []byte, err error) {
	padding := 0
	for i := len(p.Layers) - 1; i >= 0; i-- {
		encoded, err = p.Layers[i].encode(encoded, padding)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %v layer %d: %w", p.Layers[i].Codec(), i, err)
		}
		padding += p.Layers[i].trailerLen()
	}
	return encoded, nil
}
