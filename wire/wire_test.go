package wire

import (
	"errors"
	"testing"
)

func TestNeed(t *testing.T) {
	if err := Need([]byte{1, 2, 3}, 3, "header"); err != nil {
		t.Errorf("Need(3 bytes, 3): %v", err)
	}
	err := Need([]byte{1, 2}, 3, "header")
	if !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("Need(2 bytes, 3): expected ErrTruncatedInput, got %v", err)
	}
}

func TestPatch(t *testing.T) {
	cases := []struct {
		name     string
		patch    func(b []byte) error
		want     []byte
		overflow bool
	}{
		{
			name:  "uint8",
			patch: func(b []byte) error { return PatchUint8(b, 1, 0x2a) },
			want:  []byte{0xaa, 0x2a, 0xaa, 0xaa},
		},
		{
			name:     "uint8 overflow",
			patch:    func(b []byte) error { return PatchUint8(b, 1, 256) },
			overflow: true,
		},
		{
			name:  "uint16",
			patch: func(b []byte) error { return PatchUint16(b, 2, 0x1234) },
			want:  []byte{0xaa, 0xaa, 0x12, 0x34},
		},
		{
			name:     "uint16 overflow",
			patch:    func(b []byte) error { return PatchUint16(b, 2, 0x10000) },
			overflow: true,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := []byte{0xaa, 0xaa, 0xaa, 0xaa}
			err := c.patch(b)
			if c.overflow {
				if !errors.Is(err, ErrFieldOverflow) {
					t.Fatalf("expected ErrFieldOverflow, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("patch: %v", err)
			}
			if string(b) != string(c.want) {
				t.Errorf("Expect: %x, got: %x", c.want, b)
			}
		})
	}
}

func TestClone(t *testing.T) {
	if got := Clone(nil); got != nil {
		t.Errorf("Clone(nil) = %v, want nil", got)
	}
	if got := Clone([]byte{}); got != nil {
		t.Errorf("Clone([]byte{}) = %v, want nil", got)
	}
	in := []byte{1, 2, 3}
	got := Clone(in)
	in[0] = 9
	if got[0] != 1 {
		t.Errorf("Clone shares storage with its input")
	}
}
