package camera

import (
	"errors"
	"math"
	"testing"

	"github.com/ivlev/tunnel/internal/config"
	"github.com/ivlev/tunnel/internal/geom"
	"github.com/ivlev/tunnel/internal/source"
	"github.com/ivlev/tunnel/internal/tunnel"
)

// linePath runs along +X from the origin.
type linePath struct{ length float64 }

func (l linePath) PointAt(u float64) geom.Vec3 { return geom.V(u*l.length, 0, 0) }

// recordingPath remembers every progress it was sampled at.
type recordingPath struct {
	linePath
	samples []float64
}

func (r *recordingPath) PointAt(u float64) geom.Vec3 {
	r.samples = append(r.samples, u)
	return r.linePath.PointAt(u)
}

func testCurve(t *testing.T) *tunnel.Curve {
	t.Helper()
	c, err := tunnel.NewCurve(tunnel.GenerateControlPoints(source.NewSeeded(42), 20))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestAdvanceHalfStepOscillates(t *testing.T) {
	st := NewState(0.5, 0.01)
	cam := Default()
	path := linePath{length: 10}

	s := Advance(path, cam, st)
	if st.Progress != 0.5 || s.Progress != 0 || s.Wrapped {
		t.Fatalf("after first call progress=%v sampled=%v wrapped=%v", st.Progress, s.Progress, s.Wrapped)
	}

	for i := 0; i < 10; i++ {
		s = Advance(path, cam, st)
		if !s.Wrapped || s.Progress != 0 {
			t.Fatalf("call %d sampled progress %v (wrapped=%v), want reset to 0", i+2, s.Progress, s.Wrapped)
		}
		if st.Progress != 0.5 {
			t.Fatalf("call %d left progress %v, want 0.5", i+2, st.Progress)
		}
	}
}

func TestAdvanceLookAheadStaysInDomain(t *testing.T) {
	for _, inc := range []float64{0.5, 0.25, 0.1, 0.03, 0.01, 0.001, 0.0007} {
		st := NewState(inc, 0.01)
		path := &recordingPath{linePath: linePath{length: 1}}
		cam := Default()

		for i := 0; i < 5*CycleLength(inc)+3; i++ {
			before := st.Progress
			s := Advance(path, cam, st)

			if before > st.WrapThreshold() && s.Progress != 0 {
				t.Fatalf("inc %g call %d: progress %v past threshold was not reset", inc, i, before)
			}
			if s.Progress < 0 || s.Progress > 1-inc {
				t.Fatalf("inc %g call %d: sampled progress %v outside [0, %v]", inc, i, s.Progress, 1-inc)
			}
			if st.Progress < 0 || st.Progress > 1 {
				t.Fatalf("inc %g call %d: progress %v outside [0, 1]", inc, i, st.Progress)
			}
		}
		for _, u := range path.samples {
			if u < 0 || u > 1 {
				t.Fatalf("inc %g: curve sampled at %v", inc, u)
			}
		}
	}
}

func TestAdvancePeriodicity(t *testing.T) {
	// Distance on the unit cycle: progress 1 and 0 are the same place.
	cyclic := func(a, b float64) float64 {
		d := math.Abs(a - b)
		return math.Min(d, 1-d)
	}

	for _, inc := range []float64{0.5, 0.25, 0.125, 0.1, 0.003, 0.001} {
		st := NewState(inc, 0.01)
		cam := Default()
		path := linePath{length: 1}
		start := st.Progress

		n := int(math.Floor(1 / inc))
		for i := 0; i < n; i++ {
			Advance(path, cam, st)
		}
		if d := cyclic(st.Progress, start); d > inc+1e-9 {
			t.Errorf("inc %g: after %d calls progress %v is %v away from start", inc, n, st.Progress, d)
		}
	}
}

func TestRollAccumulatesExactly(t *testing.T) {
	const initial = 0.3
	st := NewState(0.001, 0.01)
	st.Roll = initial
	cam := Default()
	path := linePath{length: 1}

	for k := 1; k <= 5000; k++ {
		Advance(path, cam, st)
		if want := initial + float64(k)*0.01; st.Roll != want {
			t.Fatalf("after %d calls roll = %v, want %v", k, st.Roll, want)
		}
	}
	if st.Frame != 5000 {
		t.Errorf("frame counter %d", st.Frame)
	}
}

func TestAdvancePlacesCamera(t *testing.T) {
	curve := testCurve(t)
	st := NewState(0.001, 0.01)
	cam := Default()

	for i := 0; i < 1500; i++ {
		s := Advance(curve, cam, st)
		if cam.Position != s.Position {
			t.Fatalf("frame %d: camera at %v, sample at %v", i, cam.Position, s.Position)
		}
		want := s.Target.Sub(s.Position).Norm()
		if !cam.Forward().Near(want, 1e-9) {
			t.Fatalf("frame %d: forward %v, want %v", i, cam.Forward(), want)
		}
		if !cam.Basis.Orthonormal(1e-9) {
			t.Fatalf("frame %d: basis not orthonormal", i)
		}
		unrolled := geom.LookAt(s.Position, s.Target, geom.WorldUp)
		cos := math.Max(-1, math.Min(1, cam.Basis.Right.Dot(unrolled.Right)))
		if got, want := math.Acos(cos), math.Abs(math.Remainder(s.Roll, 2*math.Pi)); math.Abs(got-want) > 1e-6 {
			t.Fatalf("frame %d: rolled by %v, want %v", i, got, want)
		}
	}
}

func TestSeek(t *testing.T) {
	st := NewState(0.01, 0.02)
	st.Seek(50, 0.5)
	if st.Frame != 50 || st.Progress != 0.5 || st.Roll != float64(st.Frame)*st.RollIncrement {
		t.Errorf("seek gave frame=%d progress=%v roll=%v", st.Frame, st.Progress, st.Roll)
	}

	a := NewState(0.01, 0.02)
	b := NewState(0.01, 0.02)
	path := linePath{length: 5}
	for i := 0; i < 30; i++ {
		Advance(path, Default(), a)
	}
	b.Seek(a.Frame, a.Progress)
	sa := Advance(path, Default(), a)
	sb := Advance(path, Default(), b)
	if sa != sb {
		t.Errorf("seeked state diverged: %+v vs %+v", sa, sb)
	}
}

func TestStateValidate(t *testing.T) {
	for _, inc := range []float64{0, -0.1, 1, 2, math.NaN()} {
		if err := NewState(inc, 0).Validate(); !errors.Is(err, config.ErrInvalidConfiguration) {
			t.Errorf("increment %v: error %v", inc, err)
		}
	}
	if err := NewState(0.001, 0).Validate(); err != nil {
		t.Errorf("valid increment rejected: %v", err)
	}
}

func TestCycleLength(t *testing.T) {
	tests := []struct {
		inc  float64
		want int
	}{
		{0.5, 1},
		{0.3, 3},
		{0.25, 3},
		{0.1, 10},
		{0.05, 19},
		{0.01, 99},
		{0.001, 999},
		{0, 0},
		{1, 0},
	}
	for _, tt := range tests {
		if got := CycleLength(tt.inc); got != tt.want {
			t.Errorf("CycleLength(%v) = %d, want %d", tt.inc, got, tt.want)
		}
	}
}

func TestCycleLengthMatchesWraps(t *testing.T) {
	for _, inc := range []float64{0.5, 0.3, 0.25, 0.1, 0.013, 0.001} {
		n := CycleLength(inc)
		st := NewState(inc, 0)
		cam := Default()
		path := linePath{length: 1}

		Advance(path, cam, st)
		for i := 1; i < n; i++ {
			if s := Advance(path, cam, st); s.Wrapped {
				t.Fatalf("inc %g: wrapped at frame %d, before the cycle of %d", inc, s.Frame, n)
			}
		}
		s := Advance(path, cam, st)
		if !s.Wrapped || s.Progress != 0 || s.Frame != uint64(n) {
			t.Errorf("inc %g: frame %d sampled %v (wrapped %v), want a wrap at frame %d", inc, s.Frame, s.Progress, s.Wrapped, n)
		}
	}
}

func TestProjectCentersTarget(t *testing.T) {
	cam := Default()
	cam.SetViewport(1280, 720)
	eye, target := geom.V(1, 2, 3), geom.V(12, 14, 13)
	Place(cam, eye, target, 0.7)

	x, y, depth, ok := cam.Project(target, 1280, 720)
	if !ok {
		t.Fatal("target not visible")
	}
	if math.Abs(x-640) > 1e-6 || math.Abs(y-360) > 1e-6 {
		t.Errorf("target projected to (%f, %f), want centre", x, y)
	}
	if want := target.Sub(eye).Len(); math.Abs(depth-want) > 1e-9 {
		t.Errorf("depth %f, want %f", depth, want)
	}

	behind := eye.Sub(target.Sub(eye))
	if _, _, _, ok := cam.Project(behind, 1280, 720); ok {
		t.Error("point behind the camera reported visible")
	}
}

func TestProjectEdges(t *testing.T) {
	cam := Default()
	cam.SetViewport(200, 100)
	half := math.Tan(cam.FOV * math.Pi / 360)

	// Identity basis looks down -Z: x right, y up.
	const z = 10.0
	right := geom.V(cam.Aspect*half*z, 0, -z)
	x, y, _, ok := cam.Project(right, 200, 100)
	if !ok || math.Abs(x-200) > 1e-9 || math.Abs(y-50) > 1e-9 {
		t.Errorf("right edge projected to (%f, %f, %v)", x, y, ok)
	}

	top := geom.V(0, half*z, -z)
	x, y, _, ok = cam.Project(top, 200, 100)
	if !ok || math.Abs(x-100) > 1e-9 || math.Abs(y) > 1e-9 {
		t.Errorf("top edge projected to (%f, %f, %v)", x, y, ok)
	}

	if _, _, _, ok := cam.Project(geom.V(0, 0, -(cam.Far + 1)), 200, 100); ok {
		t.Error("point past the far plane reported visible")
	}
}

func TestSetViewportIgnoresEmpty(t *testing.T) {
	cam := Default()
	cam.SetViewport(0, 10)
	if cam.Aspect != 1 {
		t.Errorf("aspect changed to %v for an empty viewport", cam.Aspect)
	}
	cam.SetViewport(300, 150)
	if cam.Aspect != 2 {
		t.Errorf("aspect = %v, want 2", cam.Aspect)
	}
}
