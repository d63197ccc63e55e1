// gpmf-track — GPMF GPS telemetry extractor & GPX exporter.
//
// Decodes GoPro GPMF telemetry (from a raw .gpmf/.bin blob or directly
// from a GoPro .mp4 file) and exports the normalized GPS track to GPX
// 1.1, or prints a human-readable summary.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/gpmf-track/gpmf-telemetry/gpmf"
	"github.com/gpmf-track/gpmf-telemetry/gpx"
	"github.com/gpmf-track/gpmf-telemetry/mp4gpmf"
)

// loadTrackBytes reads the raw GPMF byte buffer for path, demuxing
// through mp4gpmf first when the extension looks like an MP4
// container (spec.md §6's external MP4 demuxer collaborator).
func loadTrackBytes(path string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".mp4") {
		return mp4gpmf.ExtractTrack(path)
	}
	return os.ReadFile(path)
}

func findInputFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".gpmf", ".bin", ".mp4":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func cmdParse(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("missing input file", 1)
	}
	data, err := loadTrackBytes(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("reading %s: %v", path, err), 1)
	}

	track := gpmf.Parse(data)
	if track.Format == gpmf.FormatUnknown {
		log.Warnf("%s: no GPS-bearing stream found", path)
	}

	out := c.String("gpx")
	if out == "" {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		out = filepath.Join(filepath.Dir(path), stem+".gpx")
	}

	opts := gpx.Options{
		ValidFixOnly: c.Bool("valid-only"),
		Minimal:      c.Bool("minimal"),
	}
	if err := gpx.WriteFile(out, track, opts); err != nil {
		return cli.Exit(fmt.Sprintf("writing %s: %v", out, err), 1)
	}
	fmt.Printf("  GPX: %s (%d trackpoints)\n", out, len(track.Samples))
	return nil
}

func cmdInfo(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("missing input file", 1)
	}
	data, err := loadTrackBytes(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("reading %s: %v", path, err), 1)
	}
	track := gpmf.Parse(data)
	gpmf.PrintTrackInfo(track)
	return nil
}

func cmdDetectFormat(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("missing input file", 1)
	}
	data, err := loadTrackBytes(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("reading %s: %v", path, err), 1)
	}
	fmt.Println(gpmf.DetectFormat(data))
	return nil
}

func cmdSample(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("missing input file", 1)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("reading %s: %v", path, err), 1)
	}

	n := c.Int("n")
	out := c.String("out")
	if out == "" {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		out = filepath.Join(filepath.Dir(path), "sample_"+stem+".gpmf")
	}

	trimmed := gpmf.WriteSample(data, n)
	if err := os.WriteFile(out, trimmed, 0644); err != nil {
		return cli.Exit(fmt.Sprintf("writing %s: %v", out, err), 1)
	}
	fmt.Printf("  Sample: %s (%d bytes)\n", out, len(trimmed))
	return nil
}

func cmdAllIn(c *cli.Context) error {
	dir := c.String("all-in")
	files, err := findInputFiles(dir)
	if err != nil {
		return cli.Exit(fmt.Sprintf("scanning directory: %v", err), 1)
	}
	if len(files) == 0 {
		return cli.Exit(fmt.Sprintf("no .gpmf/.bin/.mp4 files found in %s", dir), 1)
	}
	fmt.Printf("Found %d file(s)\n\n", len(files))
	for _, f := range files {
		data, err := loadTrackBytes(f)
		if err != nil {
			log.Errorf("%s: %v", f, err)
			continue
		}
		gpmf.PrintTrackInfo(gpmf.Parse(data))
	}
	return nil
}

func buildApp() *cli.App {
	return &cli.App{
		Name:  "gpmf-track",
		Usage: "decode GoPro GPMF telemetry into GPX tracks and summaries",
		Commands: []*cli.Command{
			{
				Name:      "parse",
				Usage:     "decode a GPMF/MP4 file and write a GPX track",
				ArgsUsage: "<file.gpmf|file.mp4>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "gpx", Usage: "output GPX path (default: alongside input)"},
					&cli.BoolFlag{Name: "valid-only", Usage: "emit only samples with a valid GPS fix"},
					&cli.BoolFlag{Name: "minimal", Usage: "emit only lat/lon attributes per trkpt"},
				},
				Action: cmdParse,
			},
			{
				Name:      "info",
				Usage:     "print a human-readable track summary",
				ArgsUsage: "<file.gpmf|file.mp4>",
				Action:    cmdInfo,
			},
			{
				Name:      "detect-format",
				Usage:     "print gps5, gps9, or unknown",
				ArgsUsage: "<file.gpmf|file.mp4>",
				Action:    cmdDetectFormat,
			},
			{
				Name:      "sample",
				Usage:     "truncate a GPMF file to its first N GPS samples",
				ArgsUsage: "<file.gpmf>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "n", Value: 10, Usage: "number of GPS samples to keep"},
					&cli.StringFlag{Name: "out", Usage: "output path (default: sample_<name>.gpmf)"},
				},
				Action: cmdSample,
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "all-in", Usage: "recursively process every .gpmf/.bin/.mp4 file in DIR"},
		},
		Action: func(c *cli.Context) error {
			if dir := c.String("all-in"); dir != "" {
				return cmdAllIn(c)
			}
			return cli.ShowAppHelp(c)
		},
	}
}

func main() {
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	if err := buildApp().Run(os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
