package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.PointCount != 20 || cfg.CurveSegments != 256 || cfg.TubeRadius != 3 || cfg.RadialSegments != 50 {
		t.Errorf("tunnel defaults = %d/%d/%g/%d", cfg.PointCount, cfg.CurveSegments, cfg.TubeRadius, cfg.RadialSegments)
	}
	if cfg.ProgressIncrement != 0.001 || cfg.RollIncrement != 0.01 {
		t.Errorf("animation defaults = %g/%g", cfg.ProgressIncrement, cfg.RollIncrement)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"one point", func(c *Config) { c.PointCount = 1 }},
		{"no segments", func(c *Config) { c.CurveSegments = 0 }},
		{"zero radius", func(c *Config) { c.TubeRadius = 0 }},
		{"negative radius", func(c *Config) { c.TubeRadius = -1 }},
		{"two radial sides", func(c *Config) { c.RadialSegments = 2 }},
		{"zero increment", func(c *Config) { c.ProgressIncrement = 0 }},
		{"full increment", func(c *Config) { c.ProgressIncrement = 1 }},
		{"zero fps", func(c *Config) { c.FPS = 0 }},
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"no supersample", func(c *Config) { c.Supersample = 0 }},
		{"bad color", func(c *Config) { c.PointColor = "#12345" }},
		{"bad surface", func(c *Config) { c.Surface = "canvas" }},
		{"odd video", func(c *Config) { c.Surface = SurfaceVideo; c.Width = 641 }},
		{"clip planes", func(c *Config) { c.Near = 10; c.Far = 5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("error %v does not wrap ErrInvalidConfiguration", err)
			}
			t.Logf("%s: %v", tt.name, err)
		})
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tunnel.yaml")
	data := []byte("point_count: 8\ntube_radius: 1.5\nsurface: png\neffects: [hud]\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PointCount != 8 || cfg.TubeRadius != 1.5 || cfg.Surface != SurfacePNG {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.CurveSegments != 256 {
		t.Errorf("default lost: curve segments %d", cfg.CurveSegments)
	}
	if len(cfg.Effects) != 1 || cfg.Effects[0] != "hud" {
		t.Errorf("effects = %v", cfg.Effects)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.Seed = 99
	cfg.Fog = 120
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Seed != 99 || got.Fog != 120 {
		t.Errorf("loaded seed=%d fog=%g", got.Seed, got.Fog)
	}
}

func TestApplyPreset(t *testing.T) {
	cfg := Default()
	cfg.Preset = "9:16"
	if err := cfg.ApplyPreset(); err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 720 || cfg.Height != 1280 {
		t.Errorf("9:16 preset gave %dx%d", cfg.Width, cfg.Height)
	}

	cfg.Preset = "21:9"
	if err := cfg.ApplyPreset(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("unknown preset error = %v", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b uint8
		wantErr bool
	}{
		{"#ffffff", 255, 255, 255, false},
		{"000", 0, 0, 0, false},
		{"#0f8", 0x00, 0xff, 0x88, false},
		{"#zzzzzz", 0, 0, 0, true},
		{"", 0, 0, 0, true},
	}
	for _, tt := range tests {
		c, err := ParseColor(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseColor(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if c.R != tt.r || c.G != tt.g || c.B != tt.b || c.A != 255 {
			t.Errorf("ParseColor(%q) = %v", tt.in, c)
		}
	}
}
