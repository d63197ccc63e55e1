package gpmf

import "encoding/binary"

// countGPSSamples returns how many GPS fixes a single DEVC node's
// first GPS-bearing STRM would decode to, without fully decoding it.
func countGPSSamples(devc *Node) int {
	for _, strm := range devc.Items(keySTRM) {
		if gps9 := strm.GetFirst(keyGPS9); gps9 != nil && gps9.Kind == NodeLeaf {
			return int(gps9.Item.Repeat)
		}
		if gps5 := strm.GetFirst(keyGPS5); gps5 != nil && gps5.Kind == NodeLeaf {
			return len(gps5.Item.Int32s()) / gps5ElementsPerSample
		}
	}
	return 0
}

// WriteSample walks the top-level KLV stream of data (spec.md §4.1)
// and copies whole DEVC containers, verbatim, into the returned
// buffer until at least n GPS samples have been emitted — the GPMF
// analogue of the Race-Keeper exporter's CreateSampleRKD, for
// building small structurally-valid fixtures out of a large capture.
// Non-DEVC top-level items (rare, but the format does not forbid
// them) are passed through unconditionally.
func WriteSample(data []byte, n int) []byte {
	out := make([]byte, 0, len(data))
	offset := 0
	count := 0

	for offset+klvHeaderSize <= len(data) {
		hdr := data[offset : offset+klvHeaderSize]
		var key FourCC
		copy(key[:], hdr[0:4])
		typ := hdr[4]
		size := hdr[5]
		repeat := binary.BigEndian.Uint16(hdr[6:8])

		paddedSize := ceil4(int(size) * int(repeat))
		itemEnd := offset + klvHeaderSize + paddedSize
		if itemEnd > len(data) {
			break
		}
		item := data[offset:itemEnd]
		out = append(out, item...)

		probe := KLVItem{Key: key, Type: typ, Size: size, Repeat: repeat}
		if probe.IsContainer() && key == keyDEVC {
			sub := ProjectTree(data[offset+klvHeaderSize : itemEnd])
			count += countGPSSamples(&sub)
		}

		offset = itemEnd
		if n > 0 && count >= n {
			break
		}
	}
	return out
}
