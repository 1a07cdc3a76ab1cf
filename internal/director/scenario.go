package director

import (
	"fmt"

	"github.com/ivlev/tunnel/internal/config"
	"github.com/ivlev/tunnel/internal/geom"
	"github.com/ivlev/tunnel/internal/tunnel"
)

// ScenarioVersion is written into every recorded flight.
const ScenarioVersion = "1.0"

// Scenario is a recorded flight: everything needed to regenerate the tunnel
// plus camera keyframes sampled along the way.
type Scenario struct {
	Version           string       `yaml:"version"`
	Seed              int64        `yaml:"seed"`
	Tunnel            TunnelParams `yaml:"tunnel"`
	ProgressIncrement float64      `yaml:"progress_increment"`
	RollIncrement     float64      `yaml:"roll_increment"`
	FPS               int          `yaml:"fps"`
	Frames            uint64       `yaml:"frames"`
	Keyframes         []Keyframe   `yaml:"keyframes"`
}

// TunnelParams mirrors tunnel.Params with YAML names.
type TunnelParams struct {
	PointCount     int     `yaml:"point_count"`
	CurveSegments  int     `yaml:"curve_segments"`
	TubeRadius     float64 `yaml:"tube_radius"`
	RadialSegments int     `yaml:"radial_segments"`
}

// Keyframe is the camera placement of one frame.
type Keyframe struct {
	Frame    uint64    `yaml:"frame"`
	Progress float64   `yaml:"progress"`
	Roll     float64   `yaml:"roll"`
	Position geom.Vec3 `yaml:"position,flow"`
	Target   geom.Vec3 `yaml:"target,flow"`
	Wrapped  bool      `yaml:"wrapped,omitempty"`
}

func paramsOf(p tunnel.Params) TunnelParams {
	return TunnelParams{
		PointCount:     p.PointCount,
		CurveSegments:  p.CurveSegments,
		TubeRadius:     p.TubeRadius,
		RadialSegments: p.RadialSegments,
	}
}

// Params converts back to generator inputs.
func (t TunnelParams) Params() tunnel.Params {
	return tunnel.Params{
		PointCount:     t.PointCount,
		CurveSegments:  t.CurveSegments,
		TubeRadius:     t.TubeRadius,
		RadialSegments: t.RadialSegments,
	}
}

// Validate checks a scenario read from disk before it is replayed.
func (s *Scenario) Validate() error {
	if err := s.Tunnel.Params().Validate(); err != nil {
		return err
	}
	if err := config.ValidateIncrement(s.ProgressIncrement); err != nil {
		return err
	}
	if len(s.Keyframes) == 0 {
		return fmt.Errorf("%w: scenario has no keyframes", config.ErrInvalidConfiguration)
	}
	for i := 1; i < len(s.Keyframes); i++ {
		if s.Keyframes[i].Frame <= s.Keyframes[i-1].Frame {
			return fmt.Errorf("%w: keyframe %d is not after frame %d",
				config.ErrInvalidConfiguration, s.Keyframes[i].Frame, s.Keyframes[i-1].Frame)
		}
	}
	return nil
}

// Last returns the final recorded frame number.
func (s *Scenario) Last() uint64 {
	if len(s.Keyframes) == 0 {
		return 0
	}
	return s.Keyframes[len(s.Keyframes)-1].Frame
}
