package gpmf

import (
	"encoding/binary"
	"math/rand"
	"testing"
)

// ─────────────────────────────────────────────────────────────────────────────
// Helpers — build minimal KLV binary data
// ─────────────────────────────────────────────────────────────────────────────

func klvItem(key string, typ byte, size uint8, repeat uint16, payload []byte) []byte {
	hdr := make([]byte, klvHeaderSize)
	copy(hdr[0:4], key)
	hdr[4] = typ
	hdr[5] = size
	binary.BigEndian.PutUint16(hdr[6:8], repeat)
	out := append(hdr, payload...)
	padded := ceil4(len(payload))
	for len(out) < klvHeaderSize+padded {
		out = append(out, 0)
	}
	return out
}

func container(key string, children ...[]byte) []byte {
	var payload []byte
	for _, c := range children {
		payload = append(payload, c...)
	}
	return klvItem(key, 0x00, 1, uint16(len(payload)), payload)
}

func TestCeil4(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{-5, 0}, {0, 0}, {1, 4}, {4, 4}, {5, 8}, {8, 8}, {9, 12},
	}
	for _, c := range cases {
		if got := ceil4(c.in); got != c.want {
			t.Errorf("ceil4(%d) = %d, want %d", c.in, got, c.want)
		}
		if got := ceil4(c.in); got%4 != 0 {
			t.Errorf("ceil4(%d) = %d is not a multiple of 4", c.in, got)
		}
		if c.in > 0 && ceil4(c.in) < c.in {
			t.Errorf("ceil4(%d) = %d is less than input", c.in, ceil4(c.in))
		}
	}
}

func TestReader_Framing(t *testing.T) {
	a := klvItem("AAAA", 'L', 4, 1, []byte{0, 0, 0, 1})
	b := klvItem("BBBB", 'c', 1, 3, []byte("hi\x00"))
	c := klvItem("CCCC", 'l', 4, 2, []byte{0, 0, 0, 0, 0, 0, 0, 2})
	data := append(append(a, b...), c...)

	items := ReadAll(data)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	wantLen := len(a) + len(b) + len(c)
	if wantLen != len(data) {
		t.Fatalf("test construction error")
	}
	if items[0].Key.String() != "AAAA" || items[1].Key.String() != "BBBB" || items[2].Key.String() != "CCCC" {
		t.Errorf("unexpected keys: %v %v %v", items[0].Key, items[1].Key, items[2].Key)
	}
}

func TestReader_Endianness(t *testing.T) {
	data := klvItem("VALU", 'l', 4, 1, []byte{0x00, 0x00, 0x00, 0x2A})
	items := ReadAll(data)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	vals := items[0].Int32s()
	if len(vals) != 1 || vals[0] != 42 {
		t.Errorf("expected [42], got %v", vals)
	}
}

func TestReader_TruncatedTrailingItem(t *testing.T) {
	first := klvItem("GOOD", 'l', 4, 1, []byte{0, 0, 0, 9})
	// Second item claims 8 bytes of payload (size=4,repeat=2) but only 4 are present.
	secondHeader := make([]byte, klvHeaderSize)
	copy(secondHeader[0:4], "BAD1")
	secondHeader[4] = 'l'
	secondHeader[5] = 4
	binary.BigEndian.PutUint16(secondHeader[6:8], 2)
	data := append(first, secondHeader...)
	data = append(data, 0, 0, 0, 7) // only 4 of the required 8 payload bytes

	items := ReadAll(data)
	if len(items) != 2 {
		t.Fatalf("expected 2 items (first intact, second clamped), got %d", len(items))
	}
	if got := items[0].Int32s(); len(got) != 1 || got[0] != 9 {
		t.Errorf("first item corrupted: %v", got)
	}
	if len(items[1].Payload) != 4 {
		t.Errorf("expected clamped payload of 4 bytes, got %d", len(items[1].Payload))
	}

	r := NewReader(data)
	for {
		if _, ok := r.Next(); !ok {
			break
		}
	}
	if _, ok := r.Next(); ok {
		t.Error("expected reader to terminate after clamped final item")
	}
}

func TestReader_Robustness_RandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(500)
		buf := make([]byte, n)
		rng.Read(buf)

		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("panic on random input (trial %d, len %d): %v", trial, n, r)
				}
			}()
			items := ReadAll(buf)
			if len(items) > n { // each item consumes at least 8 bytes, so never more than n items
				t.Fatalf("yielded suspiciously many items: %d from %d bytes", len(items), n)
			}
		}()
	}
}

func TestStringTrimming(t *testing.T) {
	payload := append([]byte("GoPro HERO11"), ' ', 0, 0, 0)
	it := KLVItem{Type: 'c', Payload: payload}
	if got := it.ASCIIString(); got != "GoPro HERO11" {
		t.Errorf("ASCIIString() = %q, want %q", got, "GoPro HERO11")
	}
}

func TestIsContainer(t *testing.T) {
	cases := []struct {
		name string
		item KLVItem
		want bool
	}{
		{"type zero", KLVItem{Type: 0x00}, true},
		{"unknown type, zero size", KLVItem{Type: '!', Size: 0}, true},
		{"unknown type, nonzero size", KLVItem{Type: '!', Size: 4}, false},
		{"known scalar type", KLVItem{Type: 'L', Size: 4}, false},
	}
	for _, c := range cases {
		if got := c.item.IsContainer(); got != c.want {
			t.Errorf("%s: IsContainer() = %v, want %v", c.name, got, c.want)
		}
	}
}
