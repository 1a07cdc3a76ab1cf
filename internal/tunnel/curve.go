package tunnel

import (
	"fmt"
	"math"

	"github.com/ivlev/tunnel/internal/config"
	"github.com/ivlev/tunnel/internal/geom"
)

// ArcDivisions is the resolution of the arc-length table behind PointAt.
const ArcDivisions = 200

// Curve is an open centripetal Catmull-Rom spline through its control
// points. It passes through every point and is C1 continuous. End tangents
// come from reflecting the neighbour of each end point.
type Curve struct {
	points  []geom.Vec3
	lengths []float64
}

// NewCurve fits a curve through points. At least two points are required.
func NewCurve(points []geom.Vec3) (*Curve, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: a curve needs at least 2 points, got %d", config.ErrInvalidConfiguration, len(points))
	}
	c := &Curve{points: append([]geom.Vec3(nil), points...)}
	c.lengths = c.arcLengths(ArcDivisions)
	return c, nil
}

// Length returns the approximate arc length of the whole curve.
func (c *Curve) Length() float64 {
	return c.lengths[len(c.lengths)-1]
}

// Point samples the curve by its raw spline parameter t in [0, 1]. Equal
// steps in t are not equal distances along the curve; see PointAt.
func (c *Curve) Point(t float64) geom.Vec3 {
	t = clamp01(t)
	pts := c.points
	l := len(pts)

	p := float64(l-1) * t
	seg := int(math.Floor(p))
	weight := p - float64(seg)
	if seg >= l-1 {
		seg = l - 2
		weight = 1
	}

	var p0, p3 geom.Vec3
	if seg > 0 {
		p0 = pts[seg-1]
	} else {
		p0 = pts[0].Sub(pts[1]).Add(pts[0])
	}
	p1 := pts[seg]
	p2 := pts[seg+1]
	if seg+2 < l {
		p3 = pts[seg+2]
	} else {
		p3 = pts[l-1].Sub(pts[l-2]).Add(pts[l-1])
	}

	// Centripetal knot spacing: sqrt of the chord length.
	dt0 := math.Pow(p0.DistSq(p1), 0.25)
	dt1 := math.Pow(p1.DistSq(p2), 0.25)
	dt2 := math.Pow(p2.DistSq(p3), 0.25)
	if dt1 < 1e-4 {
		dt1 = 1
	}
	if dt0 < 1e-4 {
		dt0 = dt1
	}
	if dt2 < 1e-4 {
		dt2 = dt1
	}

	return geom.Vec3{
		X: nonUniformCubic(p0.X, p1.X, p2.X, p3.X, dt0, dt1, dt2).eval(weight),
		Y: nonUniformCubic(p0.Y, p1.Y, p2.Y, p3.Y, dt0, dt1, dt2).eval(weight),
		Z: nonUniformCubic(p0.Z, p1.Z, p2.Z, p3.Z, dt0, dt1, dt2).eval(weight),
	}
}

// PointAt samples the curve at normalized distance u in [0, 1]: u = 0.5 is
// halfway along the curve's length. PointAt(0) and PointAt(1) are the first
// and last control points.
func (c *Curve) PointAt(u float64) geom.Vec3 {
	return c.Point(c.paramAt(u))
}

// TangentAt returns the unit direction of travel at normalized distance u.
func (c *Curve) TangentAt(u float64) geom.Vec3 {
	const delta = 1e-4
	t := c.paramAt(u)
	t1 := math.Max(t-delta, 0)
	t2 := math.Min(t+delta, 1)
	return c.Point(t2).Sub(c.Point(t1)).Norm()
}

func (c *Curve) arcLengths(divisions int) []float64 {
	lengths := make([]float64, divisions+1)
	last := c.Point(0)
	for i := 1; i <= divisions; i++ {
		cur := c.Point(float64(i) / float64(divisions))
		lengths[i] = lengths[i-1] + cur.Sub(last).Len()
		last = cur
	}
	return lengths
}

// paramAt maps a normalized distance to the spline parameter using the
// arc-length table.
func (c *Curve) paramAt(u float64) float64 {
	u = clamp01(u)
	lengths := c.lengths
	n := len(lengths)
	total := lengths[n-1]
	if total == 0 {
		return u
	}
	target := u * total

	low, high := 0, n-1
	for low <= high {
		i := low + (high-low)/2
		switch cmp := lengths[i] - target; {
		case cmp < 0:
			low = i + 1
		case cmp > 0:
			high = i - 1
		default:
			return float64(i) / float64(n-1)
		}
	}

	i := high
	if i < 0 {
		return 0
	}
	if i >= n-1 {
		return 1
	}
	before, after := lengths[i], lengths[i+1]
	fraction := (target - before) / (after - before)
	return (float64(i) + fraction) / float64(n-1)
}

// cubic is c0 + c1·t + c2·t² + c3·t³.
type cubic struct {
	c0, c1, c2, c3 float64
}

// hermite builds the cubic running from x0 to x1 with tangents t0 and t1.
func hermite(x0, x1, t0, t1 float64) cubic {
	return cubic{
		c0: x0,
		c1: t0,
		c2: -3*x0 + 3*x1 - 2*t0 - t1,
		c3: 2*x0 - 2*x1 + t0 + t1,
	}
}

// nonUniformCubic is the Catmull-Rom segment between x1 and x2 with knot
// intervals dt0, dt1, dt2.
func nonUniformCubic(x0, x1, x2, x3, dt0, dt1, dt2 float64) cubic {
	t1 := (x1-x0)/dt0 - (x2-x0)/(dt0+dt1) + (x2-x1)/dt1
	t2 := (x2-x1)/dt1 - (x3-x1)/(dt1+dt2) + (x3-x2)/dt2
	return hermite(x1, x2, t1*dt1, t2*dt1)
}

func (c cubic) eval(t float64) float64 {
	t2 := t * t
	return c.c0 + c.c1*t + c.c2*t2 + c.c3*t2*t
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}
