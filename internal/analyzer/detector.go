// Package analyzer inspects rendered frames. It is used to catch frames that
// came out empty, for example when the camera leaves the tube.
package analyzer

import "image"

// Coverage summarizes the lit pixels of a frame.
type Coverage struct {
	Lit      int             // samples brighter than the threshold
	Total    int             // samples inspected
	Bounds   image.Rectangle // smallest rectangle holding every lit sample
	MeanLuma float64         // 0..255 over all samples
}

// Ratio is the lit fraction of the frame.
func (c Coverage) Ratio() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Lit) / float64(c.Total)
}

func (c Coverage) Blank() bool { return c.Lit == 0 }

// Detector is the interface for frame analysis strategies
type Detector interface {
	Detect(img image.Image) (Coverage, error)
}
