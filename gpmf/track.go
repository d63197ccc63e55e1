package gpmf

import (
	"math"
	"time"

	"github.com/samber/lo"
)

// GPSFormat identifies which GPMF GPS payload variant a stream carries.
type GPSFormat int

const (
	FormatUnknown GPSFormat = iota
	FormatGPS5
	FormatGPS9
)

func (f GPSFormat) String() string {
	switch f {
	case FormatGPS5:
		return "gps5"
	case FormatGPS9:
		return "gps9"
	default:
		return "unknown"
	}
}

// GPSSample is one normalized GPS measurement (spec.md §3).
type GPSSample struct {
	Description    string
	Timestamp      time.Time
	PrecisionX100  uint16
	Fix            int
	Lat            float64
	Lon            float64
	Alt            float64
	Speed2D        float64
	Speed3D        float64
	Units          string
	NPoints        int
}

// DOP returns the dilution of precision as a float (PrecisionX100 / 100).
func (s GPSSample) DOP() float64 {
	return float64(s.PrecisionX100) / 100.0
}

// HasValidFix reports fix >= 2.
func (s GPSSample) HasValidFix() bool {
	return s.Fix >= 2
}

// Has3DFix reports fix >= 3.
func (s GPSSample) Has3DFix() bool {
	return s.Fix >= 3
}

// GPSTrack is the decoded, normalized result of gpmf.Parse.
type GPSTrack struct {
	DeviceID   string
	DeviceName string
	Format     GPSFormat
	Samples    []GPSSample
}

// ValidOnly returns the subset of Samples with HasValidFix() true,
// per spec.md §3's derived "valid_only" view.
func (t GPSTrack) ValidOnly() []GPSSample {
	return lo.Filter(t.Samples, func(s GPSSample, _ int) bool {
		return s.HasValidFix()
	})
}

// BoundingBox returns the lat/lon extent of all samples. ok is false
// when the track has no samples.
func (t GPSTrack) BoundingBox() (minLat, maxLat, minLon, maxLon float64, ok bool) {
	if len(t.Samples) == 0 {
		return 0, 0, 0, 0, false
	}
	minLat, maxLat = t.Samples[0].Lat, t.Samples[0].Lat
	minLon, maxLon = t.Samples[0].Lon, t.Samples[0].Lon
	for _, s := range t.Samples[1:] {
		minLat = math.Min(minLat, s.Lat)
		maxLat = math.Max(maxLat, s.Lat)
		minLon = math.Min(minLon, s.Lon)
		maxLon = math.Max(maxLon, s.Lon)
	}
	return minLat, maxLat, minLon, maxLon, true
}

// DurationSeconds returns the wall-clock span between the first and
// last sample's timestamp.
func (t GPSTrack) DurationSeconds() float64 {
	if len(t.Samples) < 2 {
		return 0
	}
	return t.Samples[len(t.Samples)-1].Timestamp.Sub(t.Samples[0].Timestamp).Seconds()
}

// MaxSpeedMS returns the maximum Speed2D across all samples.
func (t GPSTrack) MaxSpeedMS() float64 {
	max := 0.0
	for _, s := range t.Samples {
		if s.Speed2D > max {
			max = s.Speed2D
		}
	}
	return max
}

// TotalDistanceKm returns total distance in km, summing the haversine
// distance between consecutive samples.
func (t GPSTrack) TotalDistanceKm() float64 {
	if len(t.Samples) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(t.Samples); i++ {
		total += Haversine(
			t.Samples[i-1].Lat, t.Samples[i-1].Lon,
			t.Samples[i].Lat, t.Samples[i].Lon,
		)
	}
	return total
}

// Haversine returns the great-circle distance in km between two
// lat/lon points in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
