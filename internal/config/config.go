package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfiguration is wrapped by every validation failure.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Surface names accepted in Config.Surface.
const (
	SurfaceTerminal = "terminal"
	SurfaceVideo    = "video"
	SurfacePNG      = "png"
)

type Config struct {
	// Tunnel geometry
	PointCount     int     `yaml:"point_count"`
	CurveSegments  int     `yaml:"curve_segments"`
	TubeRadius     float64 `yaml:"tube_radius"`
	RadialSegments int     `yaml:"radial_segments"`
	Seed           int64   `yaml:"seed"` // 0 = fresh entropy seed

	// Animation
	ProgressIncrement float64 `yaml:"progress_increment"`
	RollIncrement     float64 `yaml:"roll_increment"`

	// Camera
	FOV  float64 `yaml:"fov"` // vertical, degrees
	Near float64 `yaml:"near"`
	Far  float64 `yaml:"far"`

	// Rendering
	Surface      string   `yaml:"surface"`
	OutputPath   string   `yaml:"output"`
	Width        int      `yaml:"width"`
	Height       int      `yaml:"height"`
	Preset       string   `yaml:"preset"`
	FPS          int      `yaml:"fps"`
	Frames       int      `yaml:"frames"` // 0 = one full cycle offline, unbounded live
	Workers      int      `yaml:"workers"`
	PointSize    float64  `yaml:"point_size"`
	MaxPointSize float64  `yaml:"max_point_size"`
	PointColor   string   `yaml:"point_color"`
	Background   string   `yaml:"background"`
	Fog          float64  `yaml:"fog"` // distance at which points fade out, 0 = off
	Supersample  int      `yaml:"supersample"`
	Effects      []string `yaml:"effects"`

	// Video
	VideoEncoder string  `yaml:"video_encoder"`
	Quality      int     `yaml:"quality"`
	FadeDuration float64 `yaml:"fade"`
	AudioPath    string  `yaml:"audio"`
	ToneHz       float64 `yaml:"tone"`

	// Flight recording
	ScenarioInput    string `yaml:"scenario"`
	ScenarioOutput   string `yaml:"scenario_output"`
	KeyframeInterval int    `yaml:"keyframe_interval"`

	LogPath      string `yaml:"log"`
	ShowStats    bool   `yaml:"stats"`
	Detector     string `yaml:"detector"` // frame coverage analysis for the stats report
	BuildVersion string `yaml:"-"`
}

// Default returns the classic flythrough:
// 20 control points, 256 tube segments of radius 3 with 50 sides, a step
// of 0.001 and a roll of 0.01 radians per frame.
func Default() *Config {
	return &Config{
		PointCount:        20,
		CurveSegments:     256,
		TubeRadius:        3,
		RadialSegments:    50,
		ProgressIncrement: 0.001,
		RollIncrement:     0.01,
		FOV:               50,
		Near:              0.1,
		Far:               2000,
		Surface:           SurfaceTerminal,
		Width:             1280,
		Height:            720,
		FPS:               60,
		Workers:           runtime.NumCPU(),
		PointSize:         0.2,
		MaxPointSize:      24,
		PointColor:        "#ffffff",
		Background:        "#000000",
		Supersample:       1,
		Quality:           23,
		FadeDuration:      0.5,
		KeyframeInterval:  10,
		Detector:          "luma",
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyPreset resolves a named aspect preset into Width and Height.
func (c *Config) ApplyPreset() error {
	switch c.Preset {
	case "":
	case "16:9":
		c.Width, c.Height = 1280, 720
	case "9:16":
		c.Width, c.Height = 720, 1280
	case "4:5":
		c.Width, c.Height = 1080, 1350
	case "1:1":
		c.Width, c.Height = 1080, 1080
	default:
		return fmt.Errorf("%w: unknown preset %q", ErrInvalidConfiguration, c.Preset)
	}
	return nil
}

// Validate fails fast on anything that would produce a malformed tunnel or
// an animation that leaves the curve's domain.
func (c *Config) Validate() error {
	if err := ValidateTunnel(c.PointCount, c.CurveSegments, c.TubeRadius, c.RadialSegments); err != nil {
		return err
	}
	if err := ValidateIncrement(c.ProgressIncrement); err != nil {
		return err
	}

	switch {
	case c.FOV <= 0 || c.FOV >= 180:
		return invalid("fov must be in (0, 180), got %g", c.FOV)
	case c.Near <= 0 || c.Far <= c.Near:
		return invalid("clip planes must satisfy 0 < near < far, got %g..%g", c.Near, c.Far)
	case c.FPS <= 0:
		return invalid("fps must be positive, got %d", c.FPS)
	case c.Frames < 0:
		return invalid("frames must not be negative, got %d", c.Frames)
	case c.Workers < 1:
		return invalid("workers must be at least 1, got %d", c.Workers)
	case c.Supersample < 1:
		return invalid("supersample must be at least 1, got %d", c.Supersample)
	case c.PointSize <= 0:
		return invalid("point size must be positive, got %g", c.PointSize)
	case c.Fog < 0:
		return invalid("fog distance must not be negative, got %g", c.Fog)
	case c.KeyframeInterval < 1:
		return invalid("keyframe interval must be at least 1, got %d", c.KeyframeInterval)
	}

	if _, err := ParseColor(c.PointColor); err != nil {
		return err
	}
	if _, err := ParseColor(c.Background); err != nil {
		return err
	}

	surface := strings.ToLower(c.Surface)
	switch surface {
	case SurfaceTerminal:
	case SurfaceVideo, SurfacePNG:
		if c.Width <= 0 || c.Height <= 0 {
			return invalid("surface size must be positive, got %dx%d", c.Width, c.Height)
		}
		if surface == SurfaceVideo && (c.Width%2 != 0 || c.Height%2 != 0) {
			return invalid("video size must be even for yuv420p, got %dx%d", c.Width, c.Height)
		}
	default:
		return invalid("unknown surface %q", c.Surface)
	}
	return nil
}

// ValidateTunnel checks the generator inputs.
func ValidateTunnel(pointCount, curveSegments int, tubeRadius float64, radialSegments int) error {
	switch {
	case pointCount < 2:
		return invalid("point count must be at least 2, got %d", pointCount)
	case curveSegments < 1:
		return invalid("curve segments must be at least 1, got %d", curveSegments)
	case !(tubeRadius > 0):
		return invalid("tube radius must be positive, got %g", tubeRadius)
	case radialSegments < 3:
		return invalid("radial segments must be at least 3, got %d", radialSegments)
	}
	return nil
}

// ValidateIncrement checks that a per-frame progress step lies in (0, 1).
func ValidateIncrement(inc float64) error {
	if !(inc > 0 && inc < 1) {
		return invalid("progress increment must be in (0, 1), got %g", inc)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfiguration}, args...)...)
}
