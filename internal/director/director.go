// Package director records camera flights through a tunnel and stores them
// as YAML scenarios that can be replayed later.
package director

import (
	"fmt"

	"github.com/ivlev/tunnel/internal/camera"
	"github.com/ivlev/tunnel/internal/tunnel"
)

// Recorder collects keyframes from the samples of a running animation.
// A keyframe is kept every Interval frames, on every wrap and for the last
// observed frame.
type Recorder struct {
	Interval int

	scenario *Scenario
	last     *camera.Sample
}

// NewRecorder starts an empty scenario for a tunnel generated from seed.
func NewRecorder(seed int64, params tunnel.Params, st *camera.State, fps, interval int) *Recorder {
	if interval < 1 {
		interval = 1
	}
	return &Recorder{
		Interval: interval,
		scenario: &Scenario{
			Version:           ScenarioVersion,
			Seed:              seed,
			Tunnel:            paramsOf(params),
			ProgressIncrement: st.ProgressIncrement,
			RollIncrement:     st.RollIncrement,
			FPS:               fps,
		},
	}
}

// Observe is called with the result of every Advance.
func (r *Recorder) Observe(s camera.Sample) {
	if s.Frame%uint64(r.Interval) == 0 || s.Wrapped {
		r.scenario.Keyframes = append(r.scenario.Keyframes, keyframeOf(s))
		r.last = nil
		return
	}
	r.last = &s
}

// Scenario closes the recording and returns it.
func (r *Recorder) Scenario() *Scenario {
	if r.last != nil {
		r.scenario.Keyframes = append(r.scenario.Keyframes, keyframeOf(*r.last))
		r.last = nil
	}
	if len(r.scenario.Keyframes) > 0 {
		r.scenario.Frames = r.scenario.Last() + 1
	}
	return r.scenario
}

func keyframeOf(s camera.Sample) Keyframe {
	return Keyframe{
		Frame:    s.Frame,
		Progress: s.Progress,
		Roll:     s.Roll,
		Position: s.Position,
		Target:   s.Target,
		Wrapped:  s.Wrapped,
	}
}

// Director flies a camera through a tunnel without rendering anything and
// returns the recorded flight.
type Director struct {
	Interval int
	FPS      int
}

func NewDirector(interval, fps int) *Director {
	return &Director{Interval: interval, FPS: fps}
}

// GenerateScenario advances st for frames frames along t's curve.
func (d *Director) GenerateScenario(t *tunnel.Tunnel, seed int64, params tunnel.Params, st *camera.State, frames int) (*Scenario, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("no frames to record")
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}

	rec := NewRecorder(seed, params, st, d.FPS, d.Interval)
	cam := camera.Default()
	for i := 0; i < frames; i++ {
		rec.Observe(camera.Advance(t.Curve, cam, st))
	}
	return rec.Scenario(), nil
}
