package tunnel

import (
	"math"

	"github.com/ivlev/tunnel/internal/geom"
)

// Frames holds one rotation-minimizing frame per tube slice.
type Frames struct {
	Tangents, Normals, Binormals []geom.Vec3
}

// ComputeFrames builds segments+1 frames along the curve. The first normal
// is taken perpendicular to the tangent's smallest component; each next one
// is the previous normal turned by the rotation carrying the previous
// tangent onto the current one, so the tube does not twist.
func ComputeFrames(c *Curve, segments int) Frames {
	n := segments + 1
	f := Frames{
		Tangents:  make([]geom.Vec3, n),
		Normals:   make([]geom.Vec3, n),
		Binormals: make([]geom.Vec3, n),
	}
	for i := 0; i < n; i++ {
		f.Tangents[i] = c.TangentAt(float64(i) / float64(segments))
	}

	t0 := f.Tangents[0]
	var normal geom.Vec3
	smallest := math.MaxFloat64
	if ax := math.Abs(t0.X); ax <= smallest {
		smallest = ax
		normal = geom.Vec3{X: 1}
	}
	if ay := math.Abs(t0.Y); ay <= smallest {
		smallest = ay
		normal = geom.Vec3{Y: 1}
	}
	if az := math.Abs(t0.Z); az <= smallest {
		normal = geom.Vec3{Z: 1}
	}
	v := t0.Cross(normal).Norm()
	f.Normals[0] = t0.Cross(v)
	f.Binormals[0] = t0.Cross(f.Normals[0])

	for i := 1; i < n; i++ {
		f.Normals[i] = f.Normals[i-1]
		axis := f.Tangents[i-1].Cross(f.Tangents[i])
		if axis.Len() > geom.Epsilon {
			axis = axis.Norm()
			cos := f.Tangents[i-1].Dot(f.Tangents[i])
			theta := math.Acos(math.Max(-1, math.Min(1, cos)))
			f.Normals[i] = f.Normals[i].RotateAxis(axis, theta)
		}
		f.Binormals[i] = f.Tangents[i].Cross(f.Normals[i])
	}
	return f
}

// ParticleField is the point cloud of a tube swept around a curve. Ring i
// is centred on the curve at i/Segments of its length; ring vertex j sits at
// angle 2πj/RadialSegments.
type ParticleField struct {
	Points         []geom.Vec3
	Segments       int
	RadialSegments int
	Radius         float64
}

// Sweep builds the tube around c. The result holds exactly
// (segments+1)·radialSegments points.
func Sweep(c *Curve, segments int, radius float64, radialSegments int) *ParticleField {
	frames := ComputeFrames(c, segments)
	field := &ParticleField{
		Points:         make([]geom.Vec3, 0, (segments+1)*radialSegments),
		Segments:       segments,
		RadialSegments: radialSegments,
		Radius:         radius,
	}

	for i := 0; i <= segments; i++ {
		center := c.PointAt(float64(i) / float64(segments))
		n, b := frames.Normals[i], frames.Binormals[i]
		for j := 0; j < radialSegments; j++ {
			angle := float64(j) / float64(radialSegments) * 2 * math.Pi
			sin, cos := math.Sin(angle), -math.Cos(angle)
			dir := n.Scale(cos).Add(b.Scale(sin)).Norm()
			field.Points = append(field.Points, center.Add(dir.Scale(radius)))
		}
	}
	return field
}

// Len returns the number of points.
func (f *ParticleField) Len() int { return len(f.Points) }

// Bounds returns the axis-aligned box enclosing every point.
func (f *ParticleField) Bounds() (lo, hi geom.Vec3) {
	if len(f.Points) == 0 {
		return
	}
	lo, hi = f.Points[0], f.Points[0]
	for _, p := range f.Points[1:] {
		lo = geom.Vec3{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = geom.Vec3{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return lo, hi
}
