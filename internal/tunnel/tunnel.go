// Package tunnel generates the flythrough geometry: a randomized skeleton of
// control points, the smooth curve through them and the tube of particles
// around that curve.
package tunnel

import (
	"github.com/ivlev/tunnel/internal/config"
	"github.com/ivlev/tunnel/internal/geom"
	"github.com/ivlev/tunnel/internal/source"
)

// Params are the generator inputs.
type Params struct {
	PointCount     int
	CurveSegments  int
	TubeRadius     float64
	RadialSegments int
}

// DefaultParams matches config.Default.
func DefaultParams() Params {
	return Params{PointCount: 20, CurveSegments: 256, TubeRadius: 3, RadialSegments: 50}
}

// ParamsFrom extracts the generator inputs from a configuration.
func ParamsFrom(cfg *config.Config) Params {
	return Params{
		PointCount:     cfg.PointCount,
		CurveSegments:  cfg.CurveSegments,
		TubeRadius:     cfg.TubeRadius,
		RadialSegments: cfg.RadialSegments,
	}
}

func (p Params) Validate() error {
	return config.ValidateTunnel(p.PointCount, p.CurveSegments, p.TubeRadius, p.RadialSegments)
}

// Tunnel is the generated geometry. It is read-only once returned and may be
// shared between goroutines.
type Tunnel struct {
	ControlPoints []geom.Vec3
	Curve         *Curve
	Field         *ParticleField
}

// Generate draws control points from rng, fits the curve and sweeps the
// particle tube. Invalid parameters fail before anything is built.
func Generate(rng source.Random, p Params) (*Tunnel, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	points := GenerateControlPoints(rng, p.PointCount)
	curve, err := NewCurve(points)
	if err != nil {
		return nil, err
	}

	return &Tunnel{
		ControlPoints: points,
		Curve:         curve,
		Field:         Sweep(curve, p.CurveSegments, p.TubeRadius, p.RadialSegments),
	}, nil
}
