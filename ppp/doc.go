/*
Package ppp is a codec for Point-to-Point Protocol frames and the control
protocols negotiated over them.

PPP is specified by RFC1661.  Frames carried over serial links use the
HDLC-like framing of RFC1662, while frames carried by PPPoE (RFC2516)
start directly with the protocol field.

Currently package ppp implements:

 * Parsing and rendering of PPP frames, with the framing picked by
   peeking at the first byte of the frame.

 * Parsing and rendering of LCP (RFC1661), IPCP (RFC1332, RFC1877) and
   ECP (RFC1968) packets, including their configuration options.

Each control protocol has its own option space.  Options with a type the
space knows are decoded into typed variants such as MRUOption or
IPAddressOption; anything else is carried as a RawOption so that unknown
or vendor options never cause a parse failure and re-encode byte for byte.

Length fields are never taken from the caller: rendering a message
serializes the body first and writes the measured length into the header
afterwards.

Negotiation itself (the RFC1661 option negotiation automaton) is outside
the scope of package ppp.

Usage

	# Note we're ignoring errors for brevity

	import (
		"fmt"
		"github.com/katalix/go-ppp/ppp"
	)

	// Build an LCP Configure-Request asking for a 1492 byte MRU and CHAP-MD5.
	msg := ppp.NewLCPMessage(ppp.CodeConfigureRequest, 1,
		&ppp.MRUOption{MRU: 1492},
		ppp.NewCHAPOption(5))
	body, _ := msg.ToBytes()

	// Wrap it in a PPP frame ready for PPPoE encapsulation.
	b, _ := ppp.NewFrame(ppp.ProtocolLCP, body).ToBytes()

	// Parse it again.
	frame, _, _ := ppp.DecodeFrame(b)
	space, _ := ppp.OptionSpaceFor(frame.Protocol)
	parsed, _, _ := ppp.DecodeControlMessage(space, frame.Payload)
	fmt.Printf("received: %v\n", parsed)
*/
package ppp
