package gpmf

import (
	"testing"
	"time"
)

func gps5DEVC(devname string, samples int) []byte {
	n := samples * gps5ElementsPerSample
	raw := make([]int32, n)
	for i := range raw {
		raw[i] = int32(i + 1)
	}
	gps5 := klvItem("GPS5", 'l', 4, uint16(n), be32s(raw...))
	strm := container("STRM", gps5)
	dvnm := klvItem("DVNM", 'c', 1, uint16(len(devname)), []byte(devname))
	return container("DEVC", append(append([]byte{}, dvnm...), strm...))
}

func TestParse_GPS5End2End(t *testing.T) {
	data := gps5DEVC("Hero11 Black", 3)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	track := parseAt(data, now)

	if track.Format != FormatGPS5 {
		t.Fatalf("Format = %v, want gps5", track.Format)
	}
	if track.DeviceName != "Hero11 Black" {
		t.Errorf("DeviceName = %q", track.DeviceName)
	}
	if len(track.Samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(track.Samples))
	}
}

func TestParse_NoGPSStreamYieldsEmptyTrack(t *testing.T) {
	strm := container("STRM", klvItem("ACCL", 'f', 4, 3, make([]byte, 12)))
	devc := container("DEVC", strm)

	track := Parse(devc)
	if track.Format != FormatUnknown {
		t.Errorf("Format = %v, want unknown", track.Format)
	}
	if len(track.Samples) != 0 {
		t.Errorf("expected no samples, got %d", len(track.Samples))
	}
}

func TestParse_EmptyInputYieldsEmptyTrack(t *testing.T) {
	track := Parse(nil)
	if track.Format != FormatUnknown || len(track.Samples) != 0 {
		t.Errorf("Parse(nil) = %+v, want empty unknown track", track)
	}
}

func TestParse_GarbageInputDoesNotPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Parse panicked on garbage input: %v", r)
		}
	}()
	garbage := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02, 0x03}
	_ = Parse(garbage)
}

func TestParse_ValidFixFiltering(t *testing.T) {
	n := 2 * gps5ElementsPerSample
	raw := make([]int32, n)
	for i := range raw {
		raw[i] = int32(i + 1)
	}
	gps5 := klvItem("GPS5", 'l', 4, uint16(n), be32s(raw...))
	gpsf := klvItem("GPSF", 'L', 4, 1, be32(0)) // no fix
	strm := container("STRM", append(append([]byte{}, gps5...), gpsf...))
	devc := container("DEVC", strm)

	track := Parse(devc)
	if len(track.Samples) != 2 {
		t.Fatalf("expected 2 raw samples, got %d", len(track.Samples))
	}
	if valid := track.ValidOnly(); len(valid) != 0 {
		t.Errorf("expected 0 valid-fix samples when GPSF=0, got %d", len(valid))
	}
}

func TestParseStrict_DepthExceeded(t *testing.T) {
	leaf := klvItem("LEAF", 'L', 4, 1, be32(1))
	data := leaf
	for i := 0; i < defaultMaxDepth+5; i++ {
		data = container("NEST", data)
	}
	if _, err := ParseStrict(data); err == nil {
		t.Error("expected error from ParseStrict on over-deep input")
	}
}

func TestParseStrict_WellFormedSucceeds(t *testing.T) {
	data := gps5DEVC("Hero11 Black", 1)
	track, err := ParseStrict(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(track.Samples) != 1 {
		t.Errorf("expected 1 sample, got %d", len(track.Samples))
	}
}

func TestParse_MultipleDEVCUsesFirstGPSBearing(t *testing.T) {
	noGPS := container("STRM", klvItem("ACCL", 'f', 4, 3, make([]byte, 12)))
	devc1 := container("DEVC", noGPS)
	devc2 := gps5DEVC("Second Camera", 1)
	data := append(append([]byte{}, devc1...), devc2...)

	track := Parse(data)
	if track.Format != FormatGPS5 {
		t.Fatalf("Format = %v, want gps5", track.Format)
	}
	if track.DeviceName != "Second Camera" {
		t.Errorf("DeviceName = %q, want Second Camera", track.DeviceName)
	}
}
