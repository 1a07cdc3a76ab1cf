// Package audio synthesizes the drone soundtrack muxed into encoded flights.
package audio

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/wav"
)

// DefaultSampleRate of written tracks.
const DefaultSampleRate = beep.SampleRate(48000)

// Options shape the drone.
type Options struct {
	SampleRate beep.SampleRate
	Tone       float64       // base frequency in Hz
	RollRate   float64       // camera roll in radians per second, drives the stereo pan
	Volume     float64       // linear gain, 1 = unchanged
	Fade       time.Duration // fade in and out
}

// Drone is an endless two-voice tone (root and fifth) whose stereo image
// turns with the camera roll.
type Drone struct {
	sr       beep.SampleRate
	tone     float64
	rollRate float64
	pos      int
}

func NewDrone(sr beep.SampleRate, tone, rollRate float64) *Drone {
	return &Drone{sr: sr, tone: tone, rollRate: rollRate}
}

func (d *Drone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(d.pos) / float64(d.sr)
		v := 0.6*math.Sin(2*math.Pi*d.tone*t) + 0.4*math.Sin(2*math.Pi*d.tone*1.5*t)
		// slow swell on top of the roll-driven pan
		v *= 0.8 + 0.2*math.Sin(2*math.Pi*0.1*t)
		pan := math.Sin(d.rollRate * t)
		samples[i][0] = 0.5 * v * (1 - 0.5*pan)
		samples[i][1] = 0.5 * v * (1 + 0.5*pan)
		d.pos++
	}
	return len(samples), true
}

func (d *Drone) Err() error { return nil }

// fader ramps the stream in at the start and out at the end.
type fader struct {
	streamer beep.Streamer
	pos      int
	ramp     int
	total    int
}

func (f *fader) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		g := 1.0
		if f.ramp > 0 {
			if f.pos < f.ramp {
				g = float64(f.pos) / float64(f.ramp)
			}
			if left := f.total - f.pos; left < f.ramp {
				g = math.Min(g, float64(left)/float64(f.ramp))
			}
		}
		samples[i][0] *= g
		samples[i][1] *= g
		f.pos++
	}
	return n, ok
}

func (f *fader) Err() error { return f.streamer.Err() }

// Track is a drone of length d with fades and volume applied.
func Track(d time.Duration, opts Options) beep.Streamer {
	sr := opts.SampleRate
	if sr == 0 {
		sr = DefaultSampleRate
	}
	total := sr.N(d)
	ramp := sr.N(opts.Fade)
	if 2*ramp > total {
		ramp = total / 2
	}

	var s beep.Streamer = beep.Take(total, NewDrone(sr, opts.Tone, opts.RollRate))
	s = &fader{streamer: s, ramp: ramp, total: total}
	return newVolume(s, opts.Volume)
}

// newVolume maps a linear gain onto beep's logarithmic volume; 0 is silence.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// WriteDrone renders a track of length d to a 16-bit stereo WAV file.
func WriteDrone(path string, d time.Duration, opts Options) error {
	if d <= 0 {
		return fmt.Errorf("drone length must be positive, got %s", d)
	}
	if opts.Tone <= 0 {
		return fmt.Errorf("drone tone must be positive, got %g", opts.Tone)
	}
	if opts.SampleRate == 0 {
		opts.SampleRate = DefaultSampleRate
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	format := beep.Format{SampleRate: opts.SampleRate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, Track(d, opts), format); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
