/*
Package pppoe is a codec for PPP over Ethernet frames.

PPPoE is specified by RFC2516, and is widely used in home broadband
links when connecting the client's router into the Internet Service
Provider network.

Currently package pppoe implements:

  - Parsing and rendering of the 6 byte PPPoE header for both the
    discovery and session stages.  The two stages share one codec,
    parametrised by Kind, which differ only in their set of valid codes.

  - Parsing, rendering and validation of PPPoE Active Discovery packets
    and their tags.  This is a simple sequence of messages which is used
    to instantiate and tear down a PPPoE connection.

The length field of the PPPoE header is always computed from the payload
when rendering a frame.  The value found on the wire when decoding is kept
in Frame.Length for inspection only.

Session payloads are PPP frames and are handled by package ppp.

Usage

	# Note we're ignoring errors for brevity

	import (
		"fmt"
		"github.com/katalix/go-ppp/pppoe"
	)

	// Build a PADI packet to kick off the discovery process.
	// Add two service name tags indicating the services we're interested in.
	padi := pppoe.NewPADI("SuperBroadbandServiceName")
	padi.AddServiceNameTag("MegaBroadbandServiceName")

	// Encode the packet ready to place in an Ethernet frame.
	b, _ := padi.ToBytes()

	// Parse it again.
	frame, _, _ := pppoe.DecodeFrame(pppoe.KindDiscovery, b)
	parsed, _ := pppoe.ParsePacket(frame)
	fmt.Printf("received: %v\n", parsed)
*/
package pppoe
