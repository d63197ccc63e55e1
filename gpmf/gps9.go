package gpmf

import (
	"encoding/binary"
	"time"
)

const gps9ElementsForScale = 7

var gps9Epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// decodeGPS9 interprets a GPS9 payload (spec.md §4.5.3). Each sample
// is a fixed-stride record (stride = the KLV item's Size field,
// typically 36 bytes); sample count is the KLV Repeat field, not a
// division of payload length, since GPS9's per-sample layout is
// heterogeneous (mixed int32/int16/uint16/uint8 fields).
func decodeGPS9(strm *Node) []GPSSample {
	gps9 := strm.GetFirst(keyGPS9)
	if gps9 == nil || gps9.Kind != NodeLeaf {
		return nil
	}
	it := gps9.Item
	stride := int(it.Size)
	n := int(it.Repeat)
	if stride <= 0 || n == 0 {
		return nil
	}

	sc := scales(strm, gps9ElementsForScale)
	u := units(strm, "deg,deg,m,m/s,m/s")

	samples := make([]GPSSample, 0, n)
	for i := 0; i < n; i++ {
		start := i * stride
		end := start + 25 // fields used run through byte offset 24 inclusive
		if end > len(it.Payload) {
			break
		}
		rec := it.Payload[start:]

		lat := int32(binary.BigEndian.Uint32(rec[0:4]))
		lon := int32(binary.BigEndian.Uint32(rec[4:8]))
		alt := int32(binary.BigEndian.Uint32(rec[8:12]))
		speed2d := int16(binary.BigEndian.Uint16(rec[12:14]))
		speed3d := int16(binary.BigEndian.Uint16(rec[14:16]))
		days := binary.BigEndian.Uint16(rec[16:18])
		secs := binary.BigEndian.Uint32(rec[18:22])
		dop := binary.BigEndian.Uint16(rec[22:24])
		fix := rec[24]

		secsScaled := float64(secs) / sc[6]
		ts := gps9Epoch.
			AddDate(0, 0, int(days)).
			Add(time.Duration(int64(secsScaled*1000)) * time.Millisecond)

		samples = append(samples, GPSSample{
			Description:   "GPS9",
			Timestamp:     ts,
			PrecisionX100: dop,
			Fix:           int(fix),
			Lat:           float64(lat) / sc[0],
			Lon:           float64(lon) / sc[1],
			Alt:           float64(alt) / sc[2],
			Speed2D:       float64(speed2d) / sc[3],
			Speed3D:       float64(speed3d) / sc[4],
			Units:         u,
			NPoints:       n,
		})
	}
	return samples
}
