package gpmf

import (
	"fmt"
	"strings"
)

// PrintTrackInfo prints a human-readable summary of a decoded
// GPSTrack, in the style of the Race-Keeper exporter's
// PrintSessionInfo: a bordered header, then device/format/sample
// counts, then range statistics when samples are present.
func PrintTrackInfo(track GPSTrack) {
	sep := strings.Repeat("═", 60)
	fmt.Printf("\n%s\n", sep)
	fmt.Printf("  GPMF Track: %s (%s)\n", track.DeviceName, track.DeviceID)
	fmt.Printf("%s\n", sep)
	fmt.Printf("  Format:        %s\n", track.Format)
	fmt.Printf("  Samples:       %s\n", formatInt(len(track.Samples)))
	fmt.Printf("  Valid fixes:   %s\n", formatInt(len(track.ValidOnly())))

	if len(track.Samples) > 0 {
		dur := track.DurationSeconds()
		maxSpeed := track.MaxSpeedMS()
		dist := track.TotalDistanceKm()

		fmt.Printf("\n  GPS data:\n")
		fmt.Printf("    First fix:    %s\n", track.Samples[0].Timestamp.Format("2006-01-02T15:04:05.000Z"))
		fmt.Printf("    Duration:     %.1fs\n", dur)
		fmt.Printf("    Max speed:    %.1f m/s (%.1f km/h)\n", maxSpeed, maxSpeed*3.6)
		fmt.Printf("    Distance:     %.3f km\n", dist)

		if minLat, maxLat, minLon, maxLon, ok := track.BoundingBox(); ok {
			fmt.Printf("    Lat range:    %.7f – %.7f\n", minLat, maxLat)
			fmt.Printf("    Lon range:    %.7f – %.7f\n", minLon, maxLon)
		}
	}

	fmt.Printf("%s\n\n", sep)
}

func formatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}
