package gpmf

import "encoding/binary"

const klvHeaderSize = 8

// KLVItem is one decoded GPMF Key-Length-Value tuple. Payload is a
// non-owning view into the buffer the Reader was built from — it must
// not be retained past the lifetime of that buffer. See spec.md §3
// ("Ownership and lifecycle").
type KLVItem struct {
	Key     FourCC
	Type    byte
	Size    uint8
	Repeat  uint16
	Payload []byte
}

// IsContainer reports whether the item carries nested KLV items as its
// payload rather than typed scalar data — spec.md §3: type == 0x00, or
// an unrecognized type code with Size == 0.
func (it KLVItem) IsContainer() bool {
	if it.Type == 0x00 {
		return true
	}
	_, known := typeTable[it.Type]
	return !known && it.Size == 0
}

// Reader yields a lazy, non-restartable sequence of KLVItem values from
// a byte slice, per spec.md §4.1. It never panics and never returns an
// error: truncated input surfaces as early termination or a clipped
// final payload.
type Reader struct {
	data   []byte
	offset int
}

// NewReader builds a Reader over data. data must outlive every KLVItem
// the Reader yields.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Next returns the next KLV item and true, or a zero item and false
// once fewer than 8 bytes remain.
func (r *Reader) Next() (KLVItem, bool) {
	remaining := len(r.data) - r.offset
	if remaining < klvHeaderSize {
		return KLVItem{}, false
	}

	hdr := r.data[r.offset : r.offset+klvHeaderSize]
	var key FourCC
	copy(key[:], hdr[0:4])
	typ := hdr[4]
	size := hdr[5]
	repeat := binary.BigEndian.Uint16(hdr[6:8])

	rawSize := int(size) * int(repeat)
	paddedSize := ceil4(rawSize)

	r.offset += klvHeaderSize
	remaining = len(r.data) - r.offset

	take := paddedSize
	if take > remaining {
		take = remaining
	}
	if take < 0 {
		take = 0
	}
	payload := r.data[r.offset : r.offset+take]
	// Advance by the full padded size even when clamped, so the next
	// call observes a terminal (sub-8-byte) remainder.
	r.offset += paddedSize

	return KLVItem{
		Key:     key,
		Type:    typ,
		Size:    size,
		Repeat:  repeat,
		Payload: payload,
	}, true
}

// ReadAll materializes every item in data, in on-wire order. Provided
// as a convenience over Reader for callers that want the whole stream
// at once (e.g. gpmf.ReadKLV, tree projection); Reader itself stays
// lazy for callers that want to bail out early.
func ReadAll(data []byte) []KLVItem {
	r := NewReader(data)
	var items []KLVItem
	for {
		it, ok := r.Next()
		if !ok {
			return items
		}
		items = append(items, it)
	}
}

// ReadKLV is the low-level core API surface entry point from spec.md §6.
func ReadKLV(data []byte) []KLVItem {
	return ReadAll(data)
}
