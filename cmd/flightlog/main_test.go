package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/tunnel/internal/config"
	"github.com/ivlev/tunnel/internal/director"
)

func TestParseFlagsGeometry(t *testing.T) {
	o, err := parseFlags([]string{"-points", "6", "-segments", "24", "-radius", "1.5", "-radial", "8", "-detector", "fast"})
	if err != nil {
		t.Fatal(err)
	}
	cfg := o.cfg
	if cfg.PointCount != 6 || cfg.CurveSegments != 24 || cfg.TubeRadius != 1.5 || cfg.RadialSegments != 8 {
		t.Errorf("geometry flags ignored: %+v", cfg)
	}
	if cfg.Detector != "fast" {
		t.Errorf("Detector = %q", cfg.Detector)
	}

	if _, err := parseFlags([]string{"-radial", "2"}); !errors.Is(err, config.ErrInvalidConfiguration) {
		t.Errorf("radial 2: err = %v", err)
	}
}

func TestParseFlagsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tunnel.yaml")
	if err := os.WriteFile(path, []byte("point_count: 7\ntube_radius: 2\nseed: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	o, err := parseFlags([]string{"-config", path, "-seed", "4"})
	if err != nil {
		t.Fatal(err)
	}
	if o.cfg.PointCount != 7 || o.cfg.TubeRadius != 2 || o.cfg.Seed != 4 {
		t.Errorf("config file then flags: %+v", o.cfg)
	}
}

func TestRunRecordsCustomTunnel(t *testing.T) {
	out := filepath.Join(t.TempDir(), "flight.yaml")
	o, err := parseFlags([]string{"-points", "5", "-segments", "16", "-radial", "6", "-seed", "11",
		"-step", "0.05", "-keyframe-every", "4", "-output", out, "-preview", "48", "-print"})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	scenario, err := run(o, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if scenario.Frames != 19 {
		t.Errorf("Frames = %d, want one cycle of 19", scenario.Frames)
	}

	read, err := director.ReadScenario(out)
	if err != nil {
		t.Fatal(err)
	}
	if p := read.Tunnel.Params(); p.PointCount != 5 || p.CurveSegments != 16 || p.RadialSegments != 6 {
		t.Errorf("recorded tunnel params = %+v", p)
	}
	if read.Seed != 11 {
		t.Errorf("Seed = %d", read.Seed)
	}
	for _, want := range []string{"[+++] Полет сохранен", "coverage mean", "keyframes:"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output lacks %q:\n%s", want, buf.String())
		}
	}
}

func TestRunRejectsUnknownDetector(t *testing.T) {
	o, err := parseFlags([]string{"-detector", "contrast"})
	if err != nil {
		t.Fatal(err)
	}
	o.output = filepath.Join(t.TempDir(), "never.yaml")
	if _, err := run(o, &bytes.Buffer{}); !errors.Is(err, config.ErrInvalidConfiguration) {
		t.Errorf("run() = %v, want ErrInvalidConfiguration", err)
	}
	if _, err := os.Stat(o.output); !os.IsNotExist(err) {
		t.Errorf("scenario written despite the error")
	}
}
