// Package camera holds the flythrough camera and the per-frame step that
// moves it along the tunnel curve.
package camera

import (
	"math"

	"github.com/ivlev/tunnel/internal/geom"
)

// Camera is a perspective camera: a position, an orientation and the
// projection that maps view space onto the surface.
type Camera struct {
	Position geom.Vec3
	Basis    geom.Basis

	FOV    float64 // vertical field of view in degrees
	Aspect float64 // width / height
	Near   float64
	Far    float64
}

// New returns a camera at the origin looking down -Z.
func New(fov, aspect, near, far float64) *Camera {
	return &Camera{
		Basis:  geom.Identity(),
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
}

// Default is a 50° camera with a 0.1..2000 clip range.
func Default() *Camera {
	return New(50, 1, 0.1, 2000)
}

// SetViewport updates the aspect ratio for a surface of the given size.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float64(width) / float64(height)
}

// LookAt turns the camera towards target, keeping world up at the top.
func (c *Camera) LookAt(target geom.Vec3) {
	c.Basis = geom.LookAt(c.Position, target, geom.WorldUp)
}

// Roll rotates the camera about its own viewing axis.
func (c *Camera) Roll(angle float64) {
	c.Basis = c.Basis.Roll(angle)
}

// Forward returns the viewing direction.
func (c *Camera) Forward() geom.Vec3 { return c.Basis.Forward }

// Project maps a world point to surface pixel coordinates. depth is the
// distance along the viewing axis; ok is false outside the near/far range.
// Points behind the sides of the frustum are still returned so callers can
// clip sprites that straddle the edge.
func (c *Camera) Project(p geom.Vec3, width, height int) (x, y, depth float64, ok bool) {
	local := c.Basis.ToLocal(p.Sub(c.Position))
	depth = local.Z
	if depth < c.Near || depth > c.Far {
		return 0, 0, depth, false
	}

	f := c.focal()
	ndcX := local.X * f / (c.Aspect * depth)
	ndcY := local.Y * f / depth
	x = (ndcX + 1) / 2 * float64(width)
	y = (1 - ndcY) / 2 * float64(height)
	return x, y, depth, true
}

// focal is 1 / tan(fov/2).
func (c *Camera) focal() float64 {
	return 1 / math.Tan(c.FOV*math.Pi/360)
}
