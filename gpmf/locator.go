package gpmf

import "strconv"

// gpsStream bundles the STRM node carrying a GPS payload together
// with the DEVC node it lives under, so device metadata and GPS
// metadata can both be pulled from the right place.
type gpsStream struct {
	devc   *Node
	strm   *Node
	format GPSFormat
}

// findGPSStream walks the top-level DEVC container(s) in order and,
// within each, its STRM children in order, returning the first STRM
// whose direct children include GPS9 or GPS5 (spec.md §4.4). GPS9
// takes precedence over GPS5 when a single STRM somehow carries both.
func findGPSStream(tree *Node) (gpsStream, bool) {
	for _, devc := range tree.Items(keyDEVC) {
		for _, strm := range devc.Items(keySTRM) {
			if strm.Get(keyGPS9) != nil {
				return gpsStream{devc: devc, strm: strm, format: FormatGPS9}, true
			}
			if strm.Get(keyGPS5) != nil {
				return gpsStream{devc: devc, strm: strm, format: FormatGPS5}, true
			}
		}
	}
	return gpsStream{}, false
}

// deviceInfoFrom extracts device_id/device_name from a DEVC node,
// defaulting per spec.md §4.4 when the corresponding leaf is absent.
func deviceInfoFrom(devc *Node) (id, name string) {
	id, name = "unknown", "GoPro"
	if devc == nil {
		return id, name
	}
	if dvid := devc.GetFirst(keyDVID); dvid != nil && dvid.Kind == NodeLeaf {
		if v, ok := dvid.Item.firstUint32(); ok {
			id = strconv.FormatUint(uint64(v), 10)
		}
	}
	if dvnm := devc.GetFirst(keyDVNM); dvnm != nil && dvnm.Kind == NodeLeaf {
		if s := dvnm.Item.ASCIIString(); s != "" {
			name = s
		}
	}
	return id, name
}

// DetectFormat is the locator-only core API surface entry point from
// spec.md §6: it walks the tree and reports which GPS payload variant
// the first GPS-bearing stream carries, without decoding samples.
func DetectFormat(data []byte) GPSFormat {
	tree := ProjectTree(data)
	stream, ok := findGPSStream(&tree)
	if !ok {
		return FormatUnknown
	}
	return stream.format
}

// DeviceInfo is the locator-only core API surface entry point from
// spec.md §6: device_id/device_name of the DEVC that carries the
// first GPS-bearing stream, or those of the first DEVC if no GPS
// stream is present but a DEVC exists, or the global defaults if
// there is no DEVC at all.
func DeviceInfo(data []byte) (id, name string) {
	tree := ProjectTree(data)
	if stream, ok := findGPSStream(&tree); ok {
		return deviceInfoFrom(stream.devc)
	}
	if devc := tree.GetFirst(keyDEVC); devc != nil {
		return deviceInfoFrom(devc)
	}
	return "unknown", "GoPro"
}
