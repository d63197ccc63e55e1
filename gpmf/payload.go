package gpmf

import (
	"encoding/binary"
	"math"
)

// elementCount returns how many width-sized elements fit in payload,
// bounds-checked against the actual payload slice rather than the
// nominal Size*Repeat (spec.md §4.3: a truncated payload silently
// yields fewer elements).
func elementCount(payload []byte, width int) int {
	if width <= 0 {
		return 0
	}
	return len(payload) / width
}

// Int32s decodes a big-endian int32 array. Returns nil for any type
// other than 'l'.
func (it KLVItem) Int32s() []int32 {
	if lookupType(it.Type).kind != kindInt32 {
		return nil
	}
	n := elementCount(it.Payload, 4)
	out := make([]int32, n)
	for i := 0; i < n; i++ {
		out[i] = int32(binary.BigEndian.Uint32(it.Payload[i*4:]))
	}
	return out
}

// Uint32s decodes a big-endian uint32 array. Returns nil for any type
// other than 'L'.
func (it KLVItem) Uint32s() []uint32 {
	if lookupType(it.Type).kind != kindUint32 {
		return nil
	}
	n := elementCount(it.Payload, 4)
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = binary.BigEndian.Uint32(it.Payload[i*4:])
	}
	return out
}

// Int16s decodes a big-endian int16 array. Returns nil for any type
// other than 's'.
func (it KLVItem) Int16s() []int16 {
	if lookupType(it.Type).kind != kindInt16 {
		return nil
	}
	n := elementCount(it.Payload, 2)
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(binary.BigEndian.Uint16(it.Payload[i*2:]))
	}
	return out
}

// Uint16s decodes a big-endian uint16 array. Returns nil for any type
// other than 'S'.
func (it KLVItem) Uint16s() []uint16 {
	if lookupType(it.Type).kind != kindUint16 {
		return nil
	}
	n := elementCount(it.Payload, 2)
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = binary.BigEndian.Uint16(it.Payload[i*2:])
	}
	return out
}

// Float32s decodes a big-endian float32 array. Returns nil for any
// type other than 'f'.
func (it KLVItem) Float32s() []float32 {
	if lookupType(it.Type).kind != kindFloat32 {
		return nil
	}
	n := elementCount(it.Payload, 4)
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.BigEndian.Uint32(it.Payload[i*4:]))
	}
	return out
}

// Float64s decodes a big-endian float64 array. Returns nil for any
// type other than 'd'.
func (it KLVItem) Float64s() []float64 {
	if lookupType(it.Type).kind != kindFloat64 {
		return nil
	}
	n := elementCount(it.Payload, 8)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float64frombits(binary.BigEndian.Uint64(it.Payload[i*8:]))
	}
	return out
}

// ASCIIString returns the payload as an ASCII string with trailing
// 0x00/0x20 bytes stripped (no leading trim, interior bytes untouched;
// spec.md §4.3).
func (it KLVItem) ASCIIString() string {
	end := len(it.Payload)
	for end > 0 && (it.Payload[end-1] == 0x00 || it.Payload[end-1] == 0x20) {
		end--
	}
	return string(it.Payload[:end])
}

// AsFloat64s converts whatever numeric type the item carries into a
// []float64, one entry per element. GPS5/GPS9 scale vectors (SCAL) can
// arrive as any signed/unsigned integer width or either float width;
// this is the one place that needs to treat all of them uniformly.
// Unknown/container types yield nil.
func (it KLVItem) AsFloat64s() []float64 {
	switch lookupType(it.Type).kind {
	case kindFloat64:
		return it.Float64s()
	case kindFloat32:
		vals := it.Float32s()
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = float64(v)
		}
		return out
	case kindInt32:
		vals := it.Int32s()
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = float64(v)
		}
		return out
	case kindUint32:
		vals := it.Uint32s()
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = float64(v)
		}
		return out
	case kindInt16:
		vals := it.Int16s()
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = float64(v)
		}
		return out
	case kindUint16:
		vals := it.Uint16s()
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = float64(v)
		}
		return out
	case kindInt8:
		out := make([]float64, len(it.Payload))
		for i, b := range it.Payload {
			out[i] = float64(int8(b))
		}
		return out
	case kindUint8:
		out := make([]float64, len(it.Payload))
		for i, b := range it.Payload {
			out[i] = float64(b)
		}
		return out
	case kindInt64:
		n := elementCount(it.Payload, 8)
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			out[i] = float64(int64(binary.BigEndian.Uint64(it.Payload[i*8:])))
		}
		return out
	case kindUint64:
		n := elementCount(it.Payload, 8)
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			out[i] = float64(binary.BigEndian.Uint64(it.Payload[i*8:]))
		}
		return out
	default:
		return nil
	}
}

// firstUint32 returns the first element of a 'L' item and true, or 0
// and false if the item is absent, empty, or a different type.
func (it *KLVItem) firstUint32() (uint32, bool) {
	if it == nil {
		return 0, false
	}
	vals := it.Uint32s()
	if len(vals) == 0 {
		return 0, false
	}
	return vals[0], true
}

// firstUint16 returns the first element of an 'S' item, or 0 if
// absent/empty/different type.
func (it *KLVItem) firstUint16() (uint16, bool) {
	if it == nil {
		return 0, false
	}
	vals := it.Uint16s()
	if len(vals) == 0 {
		return 0, false
	}
	return vals[0], true
}
