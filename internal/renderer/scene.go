// Package renderer turns a particle scene and a camera into RGBA frames.
package renderer

import (
	"image/color"

	"github.com/ivlev/tunnel/internal/config"
	"github.com/ivlev/tunnel/internal/geom"
)

// Scene is what gets drawn every frame: the particle positions and how they
// look. Points is shared with the generator and must not be modified.
type Scene struct {
	Points []geom.Vec3

	PointSize    float64 // world units
	MaxPointSize float64 // pixels, 0 = unbounded
	Color        color.RGBA
	Background   color.RGBA
	Fog          float64 // depth at which points vanish, 0 = off
}

// NewScene builds a scene over points with the look taken from cfg.
func NewScene(points []geom.Vec3, cfg *config.Config) *Scene {
	return &Scene{
		Points:       points,
		PointSize:    cfg.PointSize,
		MaxPointSize: cfg.MaxPointSize,
		Color:        config.MustColor(cfg.PointColor),
		Background:   config.MustColor(cfg.Background),
		Fog:          cfg.Fog,
	}
}
