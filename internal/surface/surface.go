// Package surface defines where rendered frames go. The engine draws into
// an RGBA buffer of Size() and hands it to Present.
package surface

import "image"

// Size of a drawable area in pixels.
type Size struct {
	W, H int
}

func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// Surface receives finished frames. Present must not keep frame after it
// returns; the buffer is reused for later frames.
type Surface interface {
	Size() (w, h int)
	Present(frame *image.RGBA) error
	Close() error
}

// Viewport is implemented by surfaces whose size changes while running. A
// new size is sent after the change; slow readers only see the latest one.
type Viewport interface {
	Resized() <-chan Size
}

// Interrupter is implemented by surfaces that can ask the frame loop to
// stop, such as a terminal in raw mode catching Ctrl-C.
type Interrupter interface {
	Interrupted() <-chan struct{}
}

// Realtime is implemented by surfaces that must be paced at the frame rate.
// Surfaces without it are written as fast as frames can be produced.
type Realtime interface {
	Realtime() bool
}

// IsRealtime reports whether s wants ticker pacing.
func IsRealtime(s Surface) bool {
	r, ok := s.(Realtime)
	return ok && r.Realtime()
}
