/*
Package wire holds the pieces shared by the PPP and PPPoE codecs: the
error taxonomy reported by every decoder, and the length bookkeeping used
when a header length field can only be filled in once the payload behind
it has been serialized.

Encoders in this module build the body of a structure first, then write
the measured length into a placeholder in the header.  The Patch helpers
perform that second step and report ErrFieldOverflow when the measured
length cannot be represented in the field.
*/
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrTruncatedInput is returned when a length declared on the wire
	// exceeds the number of bytes actually available.
	ErrTruncatedInput = errors.New("truncated input")
	// ErrMalformedOptionList is returned when an option's declared length
	// is inconsistent with the bounded region holding the option list.
	ErrMalformedOptionList = errors.New("malformed option list")
	// ErrInvalidHeaderLength is returned when a length field is smaller
	// than the fixed header it is supposed to include.
	ErrInvalidHeaderLength = errors.New("invalid header length")
	// ErrFieldOverflow is returned by encoders when a value is too large
	// for the width of the field it must be written to.
	ErrFieldOverflow = errors.New("field overflow")
)

// Need checks that b holds at least n bytes.
func Need(b []byte, n int, what string) error {
	if len(b) < n {
		return fmt.Errorf("%w: %s needs %d bytes, have %d", ErrTruncatedInput, what, n, len(b))
	}
	return nil
}

// PatchUint8 writes the length n into the single byte at offset off.
func PatchUint8(b []byte, off int, n int) error {
	if n < 0 || n > 0xff {
		return fmt.Errorf("%w: length %d does not fit in 8 bits", ErrFieldOverflow, n)
	}
	b[off] = byte(n)
	return nil
}

// PatchUint16 writes the length n big-endian into the two bytes at
// offset off.
func PatchUint16(b []byte, off int, n int) error {
	if n < 0 || n > 0xffff {
		return fmt.Errorf("%w: length %d does not fit in 16 bits", ErrFieldOverflow, n)
	}
	binary.BigEndian.PutUint16(b[off:], uint16(n))
	return nil
}

// Clone returns a copy of b which the caller owns.  Empty input yields nil.
func Clone(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return append([]byte(nil), b...)
}
