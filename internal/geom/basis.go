package geom

import "math"

// WorldUp is the up convention used when orienting a camera.
var WorldUp = Vec3{0, 1, 0}

// Basis is a right-handed orthonormal frame. Forward is the viewing
// direction; a camera sees along +Forward with Up towards the top of the
// screen and Right towards the right edge.
type Basis struct {
	Right, Up, Forward Vec3
}

// Identity looks down -Z with +Y up.
func Identity() Basis {
	return Basis{Right: Vec3{1, 0, 0}, Up: Vec3{0, 1, 0}, Forward: Vec3{0, 0, -1}}
}

// LookAt builds the basis of an observer at eye facing target.
// When the view direction is parallel to up the forward axis is nudged so
// the frame stays defined.
func LookAt(eye, target, up Vec3) Basis {
	back := eye.Sub(target)
	if back.Dot(back) == 0 {
		back = Vec3{0, 0, 1}
	}
	back = back.Norm()

	right := up.Cross(back)
	if right.Dot(right) == 0 {
		if math.Abs(up.Z) == 1 {
			back.X += 0.0001
		} else {
			back.Z += 0.0001
		}
		back = back.Norm()
		right = up.Cross(back)
	}
	right = right.Norm()
	upv := back.Cross(right)

	return Basis{Right: right, Up: upv, Forward: back.Scale(-1)}
}

// Roll turns the frame by angle radians about its own forward axis. It is
// applied after LookAt, so the view direction is unchanged.
func (b Basis) Roll(angle float64) Basis {
	c, s := math.Cos(angle), math.Sin(angle)
	return Basis{
		Right:   b.Right.Scale(c).Add(b.Up.Scale(s)),
		Up:      b.Up.Scale(c).Sub(b.Right.Scale(s)),
		Forward: b.Forward,
	}
}

// ToLocal expresses the world direction d in the frame: x right, y up,
// z along forward.
func (b Basis) ToLocal(d Vec3) Vec3 {
	return Vec3{d.Dot(b.Right), d.Dot(b.Up), d.Dot(b.Forward)}
}

// Orthonormal reports whether all three axes are unit length and mutually
// perpendicular within tol.
func (b Basis) Orthonormal(tol float64) bool {
	unit := func(v Vec3) bool { return math.Abs(v.Len()-1) <= tol }
	return unit(b.Right) && unit(b.Up) && unit(b.Forward) &&
		math.Abs(b.Right.Dot(b.Up)) <= tol &&
		math.Abs(b.Right.Dot(b.Forward)) <= tol &&
		math.Abs(b.Up.Dot(b.Forward)) <= tol
}
