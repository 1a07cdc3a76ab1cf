package renderer

import (
	"sort"

	"github.com/ivlev/tunnel/internal/director"
)

// CameraState is the animation state of one replayed frame.
type CameraState struct {
	Progress float64
	Roll     float64
}

// InterpolateKeyframes reconstructs the camera state at frame from a
// recorded flight. Progress is stepped forward from the nearest keyframe at
// or before frame with the recorded increment and wrap rule, so replay
// matches the live animation between keyframes. Roll is interpolated
// linearly towards the next keyframe, or extrapolated past the last one.
func InterpolateKeyframes(s *director.Scenario, frame uint64) CameraState {
	kfs := s.Keyframes
	if len(kfs) == 0 {
		return CameraState{}
	}

	// If before first keyframe, use first keyframe
	if frame <= kfs[0].Frame {
		return CameraState{Progress: kfs[0].Progress, Roll: kfs[0].Roll}
	}

	i := sort.Search(len(kfs), func(i int) bool { return kfs[i].Frame > frame }) - 1
	prev := kfs[i]
	steps := frame - prev.Frame

	progress := prev.Progress
	threshold := 1 - s.ProgressIncrement
	for k := uint64(0); k < steps; k++ {
		progress += s.ProgressIncrement
		if progress >= threshold {
			progress = 0
		}
	}

	roll := prev.Roll + float64(steps)*s.RollIncrement
	if i+1 < len(kfs) {
		next := kfs[i+1]
		t := float64(steps) / float64(next.Frame-prev.Frame)
		roll = lerp(prev.Roll, next.Roll, t)
	}

	return CameraState{Progress: progress, Roll: roll}
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
