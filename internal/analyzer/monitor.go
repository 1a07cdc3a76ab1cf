package analyzer

import (
	"fmt"
	"image"
)

// Monitor runs a detector over every Every-th frame and keeps totals.
// It is not safe for concurrent use.
type Monitor struct {
	Detector Detector
	Every    uint64

	analyzed int
	blank    []uint64
	ratioSum float64
	minRatio float64
	lumaSum  float64
	extent   image.Rectangle
}

func NewMonitor(d Detector, every uint64) *Monitor {
	if every == 0 {
		every = 1
	}
	return &Monitor{Detector: d, Every: every, minRatio: 1}
}

// Observe analyzes frame if its number is due. It reports whether the frame
// was found blank.
func (m *Monitor) Observe(frame uint64, img image.Image) (bool, error) {
	if frame%m.Every != 0 {
		return false, nil
	}
	c, err := m.Detector.Detect(img)
	if err != nil {
		return false, fmt.Errorf("analyze frame %d: %w", frame, err)
	}

	m.analyzed++
	r := c.Ratio()
	m.ratioSum += r
	m.minRatio = min(m.minRatio, r)
	m.lumaSum += c.MeanLuma
	m.extent = m.extent.Union(c.Bounds)
	if c.Blank() {
		m.blank = append(m.blank, frame)
	}
	return c.Blank(), nil
}

// Summary of the analyzed frames.
type Summary struct {
	Analyzed    int
	BlankFrames []uint64
	MeanRatio   float64
	MinRatio    float64
	MeanLuma    float64
	// Extent is the union of the lit bounds of every analyzed frame. A small
	// extent means the particles never reached the frame edges.
	Extent image.Rectangle
}

func (m *Monitor) Summary() Summary {
	s := Summary{Analyzed: m.analyzed, BlankFrames: m.blank, Extent: m.extent}
	if m.analyzed > 0 {
		s.MeanRatio = m.ratioSum / float64(m.analyzed)
		s.MinRatio = m.minRatio
		s.MeanLuma = m.lumaSum / float64(m.analyzed)
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("analyzed %d frames | coverage mean %.2f%% min %.2f%% | luma mean %.1f | lit extent %v | blank %d",
		s.Analyzed, s.MeanRatio*100, s.MinRatio*100, s.MeanLuma, s.Extent, len(s.BlankFrames))
}
