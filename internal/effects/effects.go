// Package effects draws overlays on rendered frames before they are
// presented.
package effects

import (
	"fmt"
	"image"
	"strings"
)

// FrameInfo is what an effect may show about the frame it decorates.
type FrameInfo struct {
	Frame    uint64
	Progress float64
	Roll     float64
	Wrapped  bool
	FPS      int
}

// Effect modifies a finished frame in place. Implementations are called from
// rasterization workers and must be safe for concurrent use.
type Effect interface {
	Apply(frame *image.RGBA, info FrameInfo)
}

// Options configure the effects built by New.
type Options struct {
	Seed   int64
	Label  string // text encoded in the seed badge
	Margin int
}

// New creates an effect by name.
func New(name string, opts Options) (Effect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hud":
		return NewHUD(opts.Margin), nil
	case "badge", "qr":
		return NewSeedBadge(opts.Label, opts.Margin)
	case "vignette":
		return &Vignette{Strength: 0.6}, nil
	default:
		return nil, fmt.Errorf("unknown effect: %s", name)
	}
}

// Chain is a list of effects applied in order.
type Chain []Effect

// NewChain builds the effects named in names, skipping empty names.
func NewChain(names []string, opts Options) (Chain, error) {
	var chain Chain
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		e, err := New(name, opts)
		if err != nil {
			return nil, err
		}
		chain = append(chain, e)
	}
	return chain, nil
}

func (c Chain) Apply(frame *image.RGBA, info FrameInfo) {
	for _, e := range c {
		e.Apply(frame, info)
	}
}
