package gpmf

import "time"

// Parse is the full-decode core API surface entry point from spec.md
// §6: raw GPMF bytes in, a normalized GPSTrack out. Absence of a GPS
// container, of the primary GPS5/GPS9 payload, or an unrecognized
// format all yield an empty-but-valid track rather than an error
// (spec.md §4.5.4/§7).
func Parse(data []byte) GPSTrack {
	return parseAt(data, time.Now().UTC())
}

// parseAt is Parse with the GPS5 wall-clock fallback time pinned, used
// by tests that need a deterministic base time when GPSU is absent
// (spec.md §9's resolved open question).
func parseAt(data []byte, now time.Time) GPSTrack {
	tree := ProjectTree(data)
	stream, ok := findGPSStream(&tree)
	if !ok {
		return GPSTrack{DeviceID: "unknown", DeviceName: "GoPro", Format: FormatUnknown}
	}

	id, name := deviceInfoFrom(stream.devc)
	track := GPSTrack{DeviceID: id, DeviceName: name, Format: stream.format}

	switch stream.format {
	case FormatGPS9:
		track.Samples = decodeGPS9(stream.strm)
	case FormatGPS5:
		track.Samples = decodeGPS5(stream.strm, now)
	}
	return track
}

// ParseStrict behaves like Parse but returns a *MalformedInputError if
// the defensive recursion-depth or item-count bound is exceeded while
// projecting the tree, instead of silently truncating (spec.md §5/§7).
func ParseStrict(data []byte) (GPSTrack, error) {
	tree, err := ProjectTreeStrict(data)
	if err != nil {
		return GPSTrack{}, err
	}
	stream, ok := findGPSStream(&tree)
	if !ok {
		return GPSTrack{DeviceID: "unknown", DeviceName: "GoPro", Format: FormatUnknown}, nil
	}

	id, name := deviceInfoFrom(stream.devc)
	track := GPSTrack{DeviceID: id, DeviceName: name, Format: stream.format}

	switch stream.format {
	case FormatGPS9:
		track.Samples = decodeGPS9(stream.strm)
	case FormatGPS5:
		track.Samples = decodeGPS5(stream.strm, time.Now().UTC())
	}
	return track, nil
}
