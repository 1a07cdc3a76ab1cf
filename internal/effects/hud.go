package effects

import (
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// HUD prints the animation counters in the bottom-left corner.
type HUD struct {
	Margin int
	Color  color.RGBA
	Box    color.RGBA
}

func NewHUD(margin int) *HUD {
	if margin <= 0 {
		margin = 4
	}
	return &HUD{
		Margin: margin,
		Color:  color.RGBA{255, 220, 0, 255},
		Box:    color.RGBA{0, 0, 0, 160},
	}
}

// Text is the line drawn for info.
func (h *HUD) Text(info FrameInfo) string {
	s := fmt.Sprintf("frame %d  progress %.3f  roll %.2f", info.Frame, info.Progress, info.Roll)
	if info.FPS > 0 {
		s += fmt.Sprintf("  t %.2fs", float64(info.Frame)/float64(info.FPS))
	}
	return s
}

func (h *HUD) Apply(frame *image.RGBA, info FrameInfo) {
	face := basicfont.Face7x13
	text := h.Text(info)

	d := &font.Drawer{Dst: frame, Src: image.NewUniform(h.Color), Face: face}
	width := d.MeasureString(text).Ceil()
	metrics := face.Metrics()
	height := metrics.Height.Ceil()

	b := frame.Bounds()
	box := image.Rect(b.Min.X+h.Margin, b.Max.Y-h.Margin-height-2, b.Min.X+h.Margin+width+4, b.Max.Y-h.Margin)
	xdraw.Draw(frame, box.Intersect(b), image.NewUniform(h.Box), image.Point{}, xdraw.Over)

	d.Dot = fixed.P(box.Min.X+2, box.Max.Y-1-metrics.Descent.Ceil())
	d.DrawString(text)
}
