// Package gpx formats a decoded gpmf.GPSTrack as GPX 1.1 XML, the
// external "GPX formatter" collaborator described in spec.md §6. It
// has no knowledge of GPMF framing — it consumes the already-decoded
// track.
package gpx

import (
	"fmt"
	"io"
	"os"

	"github.com/gpmf-track/gpmf-telemetry/gpmf"
)

// Options controls the GPX rendering, per spec.md §6's "optional
// creator, name, valid_fix_only flags" collaborator contract.
type Options struct {
	Creator      string // defaults to "gpmf-track"
	Name         string // defaults to the track's device name
	ValidFixOnly bool   // emit only samples with HasValidFix()
	Minimal      bool   // emit only lat/lon attributes on trkpt, no children
}

// Write renders track to w as GPX 1.1.
func Write(w io.Writer, track gpmf.GPSTrack, opts Options) error {
	creator := opts.Creator
	if creator == "" {
		creator = "gpmf-track"
	}
	name := opts.Name
	if name == "" {
		name = track.DeviceName
	}

	samples := track.Samples
	if opts.ValidFixOnly {
		samples = track.ValidOnly()
	}

	bw := &errWriter{w: w}
	bw.printf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	bw.printf("<gpx version=\"1.1\" creator=\"%s\"\n", xmlEscape(creator))
	bw.printf("     xmlns=\"http://www.topografix.com/GPX/1/1\"\n")
	bw.printf("     xmlns:xsi=\"http://www.w3.org/2001/XMLSchema-instance\"\n")
	bw.printf("     xsi:schemaLocation=\"http://www.topografix.com/GPX/1/1 ")
	bw.printf("http://www.topografix.com/GPX/1/1/gpx.xsd\">\n")

	if !opts.Minimal {
		bw.printf("  <metadata>\n")
		bw.printf("    <name>%s</name>\n", xmlEscape(name))
		bw.printf("    <desc>GPMF telemetry — device %s (%s)</desc>\n", xmlEscape(track.DeviceName), xmlEscape(track.DeviceID))
		if len(samples) > 0 {
			bw.printf("    <time>%s</time>\n", isoTime(samples[0]))
		}
		bw.printf("  </metadata>\n")
	}

	bw.printf("  <trk>\n")
	bw.printf("    <name>%s</name>\n", xmlEscape(name))
	bw.printf("    <trkseg>\n")

	for _, s := range samples {
		if opts.Minimal {
			bw.printf("      <trkpt lat=\"%.7f\" lon=\"%.7f\"/>\n", s.Lat, s.Lon)
			continue
		}
		bw.printf("      <trkpt lat=\"%.7f\" lon=\"%.7f\">\n", s.Lat, s.Lon)
		bw.printf("        <ele>%.2f</ele>\n", s.Alt)
		bw.printf("        <time>%s</time>\n", isoTime(s))
		bw.printf("        <extensions>\n")
		bw.printf("          <speed>%.2f</speed>\n", s.Speed2D)
		bw.printf("          <speed3d>%.2f</speed3d>\n", s.Speed3D)
		bw.printf("          <fix>%s</fix>\n", fixLabel(s.Fix))
		bw.printf("          <hdop>%.2f</hdop>\n", s.DOP())
		bw.printf("        </extensions>\n")
		bw.printf("      </trkpt>\n")
	}

	bw.printf("    </trkseg>\n")
	bw.printf("  </trk>\n")
	bw.printf("</gpx>\n")
	return bw.err
}

// WriteFile is a convenience wrapper around Write that creates path
// and writes the GPX document to it.
func WriteFile(path string, track gpmf.GPSTrack, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Write(f, track, opts)
}

func isoTime(s gpmf.GPSSample) string {
	t := s.Timestamp.UTC()
	return t.Format("2006-01-02T15:04:05.") + fmt.Sprintf("%03dZ", t.Nanosecond()/1e6)
}

func fixLabel(fix int) string {
	switch {
	case fix >= 3:
		return "3d"
	case fix >= 2:
		return "2d"
	default:
		return "none"
	}
}

// xmlEscape escapes the XML special characters GPX attributes/text
// content can legally contain.
func xmlEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			out = append(out, []byte("&amp;")...)
		case '<':
			out = append(out, []byte("&lt;")...)
		case '>':
			out = append(out, []byte("&gt;")...)
		case '"':
			out = append(out, []byte("&quot;")...)
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}

// errWriter lets the sequence of fmt.Fprintf calls above read linearly
// while still surfacing the first write error instead of ignoring it.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
