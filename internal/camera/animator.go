package camera

import (
	"math"

	"github.com/ivlev/tunnel/internal/config"
	"github.com/ivlev/tunnel/internal/geom"
)

// Path is anything the camera can fly along. PointAt takes a normalized
// progress in [0, 1].
type Path interface {
	PointAt(u float64) geom.Vec3
}

// State is the animation progress. Advance is its only writer.
type State struct {
	Progress          float64
	ProgressIncrement float64
	Roll              float64
	RollIncrement     float64

	// Frame counts completed Advance calls. Roll is derived from it so the
	// accumulated angle is always rollOrigin + Frame·RollIncrement.
	Frame      uint64
	rollOrigin float64
}

// NewState starts at progress 0 with no roll.
func NewState(progressIncrement, rollIncrement float64) *State {
	return &State{ProgressIncrement: progressIncrement, RollIncrement: rollIncrement}
}

func (s *State) Validate() error {
	return config.ValidateIncrement(s.ProgressIncrement)
}

// WrapThreshold is the progress at which the next Advance restarts from 0.
func (s *State) WrapThreshold() float64 {
	return 1 - s.ProgressIncrement
}

// Seek jumps to the given frame with an explicit progress, as if Advance had
// been called frame times.
func (s *State) Seek(frame uint64, progress float64) {
	if s.Frame == 0 {
		s.rollOrigin = s.Roll
	}
	s.Frame = frame
	s.Progress = progress
	s.Roll = s.rollOrigin + float64(frame)*s.RollIncrement
}

// Sample describes the camera placement of one Advance call.
type Sample struct {
	Frame    uint64
	Progress float64
	Roll     float64
	Position geom.Vec3
	Target   geom.Vec3
	Wrapped  bool
}

// Advance places the camera for the current frame and steps the state.
//
// Progress is reset to exactly 0 once it reaches 1 - ProgressIncrement, so
// the look-ahead sample at Progress + ProgressIncrement never leaves the
// curve. The last partial step before the end is skipped rather than
// clamped.
func Advance(path Path, cam *Camera, st *State) Sample {
	if st.Frame == 0 {
		st.rollOrigin = st.Roll
	}

	// >= rather than >: the two only disagree when a multiple of the
	// increment lands exactly on the threshold, which needs an increment
	// that is exact in binary (0.5, 0.25, ...).
	wrapped := false
	if st.Progress >= st.WrapThreshold() {
		st.Progress = 0
		wrapped = true
	}

	p1 := path.PointAt(st.Progress)
	p2 := path.PointAt(st.Progress + st.ProgressIncrement)
	Place(cam, p1, p2, st.Roll)

	s := Sample{
		Frame:    st.Frame,
		Progress: st.Progress,
		Roll:     st.Roll,
		Position: p1,
		Target:   p2,
		Wrapped:  wrapped,
	}

	st.Progress += st.ProgressIncrement
	st.Frame++
	st.Roll = st.rollOrigin + float64(st.Frame)*st.RollIncrement
	return s
}

// Place positions the camera at eye, facing target, rolled by roll radians
// about the viewing axis.
func Place(cam *Camera, eye, target geom.Vec3, roll float64) {
	cam.Position = eye
	cam.LookAt(target)
	cam.Roll(roll)
}

// maxSimulatedCycle bounds the frames CycleLength steps through.
const maxSimulatedCycle = 1 << 24

// CycleLength is the number of frames between two wraps: starting from
// progress 0, frame CycleLength is the first to sample progress 0 again. It
// repeats Advance's own float sums, so 0.001 gives 999 frames, not 1000:
// 999 additions of 0.001 already reach the 0.999 threshold.
func CycleLength(progressIncrement float64) int {
	if !(progressIncrement > 0 && progressIncrement < 1) {
		return 0
	}
	if 1/progressIncrement > maxSimulatedCycle {
		return int(math.Floor(1 / progressIncrement))
	}
	threshold := 1 - progressIncrement
	n := 0
	for p := 0.0; p < threshold; p += progressIncrement {
		n++
	}
	return n
}
