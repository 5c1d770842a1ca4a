package buf

import "testing"

func TestEndianHelpers(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67}

	if got := U16LE(data); got != 0x2301 {
		t.Fatalf("U16LE = 0x%x, want 0x2301", got)
	}
	if got := U32LE(data); got != 0x67452301 {
		t.Fatalf("U32LE = 0x%x, want 0x67452301", got)
	}

	short := []byte{0xAA}
	if U16LE(short) != 0 || U32LE(short) != 0 {
		t.Fatalf("short reads should return 0")
	}

	out := make([]byte, 6)
	PutU16LE(out, 0x2301)
	PutU32LE(out[2:], 0x67452301)
	for i, want := range []byte{0x01, 0x23, 0x01, 0x23, 0x45, 0x67} {
		if out[i] != want {
			t.Fatalf("byte %d = 0x%x, want 0x%x", i, out[i], want)
		}
	}
}
