package analyzer

import (
	"fmt"
	"image"
	"image/color"
)

// LumaDetector counts samples whose Rec. 601 luma exceeds Threshold.
type LumaDetector struct {
	Threshold uint8
	Step      int // inspect every Step-th pixel on both axes
}

func NewLumaDetector() *LumaDetector {
	return &LumaDetector{Threshold: 16, Step: 1}
}

func (d *LumaDetector) Detect(img image.Image) (Coverage, error) {
	if img == nil {
		return Coverage{}, fmt.Errorf("no image")
	}
	step := max(d.Step, 1)
	b := img.Bounds()
	rgba, fast := img.(*image.RGBA)

	var c Coverage
	var sum float64
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			var l uint8
			if fast {
				i := rgba.PixOffset(x, y)
				l = Luma(rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2])
			} else {
				g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
				l = g.Y
			}

			c.Total++
			sum += float64(l)
			if l <= d.Threshold {
				continue
			}
			c.Lit++
			minX, minY = min(minX, x), min(minY, y)
			maxX, maxY = max(maxX, x), max(maxY, y)
		}
	}

	if c.Total > 0 {
		c.MeanLuma = sum / float64(c.Total)
	}
	if c.Lit > 0 {
		c.Bounds = image.Rect(minX, minY, maxX+1, maxY+1)
	}
	return c, nil
}

// Luma is the Rec. 601 luma of an opaque color, with color.GrayModel's
// weighting and rounding.
func Luma(r, g, b uint8) uint8 {
	y := (19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16
	return uint8(y)
}
