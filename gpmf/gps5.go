package gpmf

import (
	"strconv"
	"strings"
	"time"
)

const gps5SampleRateHz = 18
const gps5ElementsPerSample = 5

// scales returns SCAL's elements as float64, padded with 1.0 out to
// at least n entries (spec.md §9: "substitute 1.0 rather than indexing
// past the end"). A missing SCAL entirely yields an all-1.0 vector.
func scales(strm *Node, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1.0
	}
	scal := strm.GetFirst(keySCAL)
	if scal == nil || scal.Kind != NodeLeaf {
		return out
	}
	vals := scal.Item.AsFloat64s()
	for i := 0; i < n && i < len(vals); i++ {
		out[i] = vals[i]
	}
	return out
}

func units(strm *Node, def string) string {
	unit := strm.GetFirst(keyUNIT)
	if unit == nil || unit.Kind != NodeLeaf {
		return def
	}
	s := unit.Item.ASCIIString()
	if s == "" {
		return def
	}
	return s
}

// parseGPSU parses a GPSU-style "yymmddhhmmss[.fff]" ASCII timestamp
// into a UTC time.Time (spec.md §4.5.2). ok is false if the string
// cannot be parsed as such.
func parseGPSU(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	datePart := raw
	fracDigits := "000"
	if dot := strings.IndexByte(raw, '.'); dot >= 0 {
		datePart = raw[:dot]
		frac := raw[dot+1:]
		if len(frac) > 3 {
			frac = frac[:3]
		}
		for len(frac) < 3 {
			frac += "0"
		}
		fracDigits = frac
	}
	if len(datePart) != 12 {
		return time.Time{}, false
	}
	field := func(s string) (int, bool) {
		v, err := strconv.Atoi(s)
		return v, err == nil
	}
	yy, ok := field(datePart[0:2])
	if !ok {
		return time.Time{}, false
	}
	mm, ok := field(datePart[2:4])
	if !ok {
		return time.Time{}, false
	}
	dd, ok := field(datePart[4:6])
	if !ok {
		return time.Time{}, false
	}
	hh, ok := field(datePart[6:8])
	if !ok {
		return time.Time{}, false
	}
	mi, ok := field(datePart[8:10])
	if !ok {
		return time.Time{}, false
	}
	ss, ok := field(datePart[10:12])
	if !ok {
		return time.Time{}, false
	}
	ms, _ := field(fracDigits)

	return time.Date(2000+yy, time.Month(mm), dd, hh, mi, ss, ms*int(time.Millisecond), time.UTC), true
}

// decodeGPS5 interprets a GPS5 payload plus its sibling SCAL/GPSU/
// GPSP/GPSF/UNIT metadata into normalized samples (spec.md §4.5.2).
// now is the fallback base time used when GPSU is missing or
// unparseable.
func decodeGPS5(strm *Node, now time.Time) []GPSSample {
	gps5 := strm.GetFirst(keyGPS5)
	if gps5 == nil || gps5.Kind != NodeLeaf {
		return nil
	}
	raw := gps5.Item.Int32s()
	n := len(raw) / gps5ElementsPerSample
	if n == 0 {
		return nil
	}

	sc := scales(strm, gps5ElementsPerSample)
	u := units(strm, "deg,deg,m,m/s,m/s")

	base := now
	if gpsu := strm.GetFirst(keyGPSU); gpsu != nil && gpsu.Kind == NodeLeaf {
		if t, ok := parseGPSU(gpsu.Item.ASCIIString()); ok {
			base = t
		}
	}

	precision := uint16(9999)
	if gpsp := strm.GetFirst(keyGPSP); gpsp != nil && gpsp.Kind == NodeLeaf {
		if v, ok := gpsp.Item.firstUint16(); ok {
			precision = v
		}
	}

	fix := 0
	if gpsf := strm.GetFirst(keyGPSF); gpsf != nil && gpsf.Kind == NodeLeaf {
		if v, ok := gpsf.Item.firstUint32(); ok {
			fix = int(v)
		}
	}

	samples := make([]GPSSample, n)
	for i := 0; i < n; i++ {
		off := i * gps5ElementsPerSample
		offsetMs := (i * 1000) / gps5SampleRateHz
		// A zero scale is allowed through to plain float division
		// (spec.md §4.5.1): Go's float64 arithmetic yields +/-Inf or
		// NaN rather than panicking, and that value is emitted as-is.
		samples[i] = GPSSample{
			Description:   "GPS5",
			Timestamp:     base.Add(time.Duration(offsetMs) * time.Millisecond),
			PrecisionX100: precision,
			Fix:           fix,
			Lat:           float64(raw[off]) / sc[0],
			Lon:           float64(raw[off+1]) / sc[1],
			Alt:           float64(raw[off+2]) / sc[2],
			Speed2D:       float64(raw[off+3]) / sc[3],
			Speed3D:       float64(raw[off+4]) / sc[4],
			Units:         u,
			NPoints:       n,
		}
	}
	return samples
}
