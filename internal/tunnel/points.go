package tunnel

import (
	"math"

	"github.com/ivlev/tunnel/internal/geom"
	"github.com/ivlev/tunnel/internal/source"
)

// ControlOffset is the minimum advance per axis between consecutive
// control points. The random part adds up to twice as much again.
const ControlOffset = 10.0

// GenerateControlPoints walks count points from the origin. Every axis
// advances independently by ControlOffset + round(r·2·ControlOffset), so
// the path moves forward on all three axes and can never fold back on
// itself.
func GenerateControlPoints(rng source.Random, count int) []geom.Vec3 {
	if count < 1 {
		return nil
	}
	step := func() float64 {
		return ControlOffset + math.Round(rng.Float64()*ControlOffset*2)
	}

	points := make([]geom.Vec3, count)
	for i := 1; i < count; i++ {
		prev := points[i-1]
		x := prev.X + step()
		y := prev.Y + step()
		z := prev.Z + step()
		points[i] = geom.Vec3{X: x, Y: y, Z: z}
	}
	return points
}
