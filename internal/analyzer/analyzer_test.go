package analyzer

import (
	"image"
	"image/color"
	"math"
	"strings"
	"testing"
)

func testFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	// A white square, like a cluster of near particles
	for y := 50; y < 150; y++ {
		for x := 60; x < 110; x++ {
			img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	return img
}

func TestLumaDetector(t *testing.T) {
	detector := NewLumaDetector()
	c, err := detector.Detect(testFrame())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if c.Lit != 100*50 || c.Total != 200*200 {
		t.Errorf("Expected 5000 of 40000 lit, got %d of %d", c.Lit, c.Total)
	}
	if c.Bounds != image.Rect(60, 50, 110, 150) {
		t.Errorf("Unexpected bounds %v", c.Bounds)
	}
	if math.Abs(c.Ratio()-0.125) > 1e-12 {
		t.Errorf("Unexpected ratio %f", c.Ratio())
	}
	if math.Abs(c.MeanLuma-255*0.125) > 1e-9 {
		t.Errorf("Unexpected mean luma %f", c.MeanLuma)
	}
	t.Logf("Coverage: %+v", c)
}

func TestLumaDetectorGenericImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	img.SetGray(3, 4, color.Gray{Y: 200})

	c, err := NewLumaDetector().Detect(img)
	if err != nil {
		t.Fatal(err)
	}
	if c.Lit != 1 || c.Bounds != image.Rect(3, 4, 4, 5) {
		t.Errorf("Unexpected coverage %+v", c)
	}

	c, err = NewLumaDetector().Detect(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if err != nil || !c.Blank() || c.Ratio() != 0 {
		t.Errorf("Expected a blank frame, got %+v (%v)", c, err)
	}
}

func TestDetectorRegistry(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{"luma", false},
		{"", false}, // default
		{"fast", false},
		{"contrast", true},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			detector, err := NewDetector(tt.variant)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if detector == nil {
					t.Error("Expected detector, got nil")
				}
			}
		})
	}
}

func TestMonitor(t *testing.T) {
	m := NewMonitor(NewLumaDetector(), 2)
	lit, dark := testFrame(), image.NewRGBA(image.Rect(0, 0, 20, 20))

	frames := []*image.RGBA{lit, dark, dark, lit, lit}
	for i, img := range frames {
		blank, err := m.Observe(uint64(i), img)
		if err != nil {
			t.Fatal(err)
		}
		if want := i == 2; blank != want {
			t.Errorf("Frame %d: blank=%v, want %v", i, blank, want)
		}
	}

	s := m.Summary()
	if s.Analyzed != 3 {
		t.Errorf("Expected 3 analyzed frames, got %d", s.Analyzed)
	}
	if len(s.BlankFrames) != 1 || s.BlankFrames[0] != 2 {
		t.Errorf("Unexpected blank frames %v", s.BlankFrames)
	}
	if s.MinRatio != 0 || math.Abs(s.MeanRatio-0.25/3) > 1e-12 {
		t.Errorf("Unexpected ratios %+v", s)
	}
	if math.Abs(s.MeanLuma-255*0.125*2/3) > 1e-9 {
		t.Errorf("Unexpected mean luma %f", s.MeanLuma)
	}
	if s.Extent != image.Rect(60, 50, 110, 150) {
		t.Errorf("Unexpected lit extent %v", s.Extent)
	}
	if str := s.String(); !strings.Contains(str, "luma mean 21.") || !strings.Contains(str, "(60,50)-(110,150)") {
		t.Errorf("Summary string lacks luma or extent: %s", str)
	}
	t.Log(s)
}

func TestLuma(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    uint8
	}{
		{0, 0, 0, 0},
		{255, 255, 255, 255},
		{255, 0, 0, 76},
		{0, 255, 0, 150},
		{0, 0, 255, 29},
	}
	for _, tt := range tests {
		if got := Luma(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("Luma(%d, %d, %d) = %d, want %d", tt.r, tt.g, tt.b, got, tt.want)
		}
		gray := color.GrayModel.Convert(color.RGBA{tt.r, tt.g, tt.b, 255}).(color.Gray)
		if got := Luma(tt.r, tt.g, tt.b); got != gray.Y {
			t.Errorf("Luma(%d, %d, %d) = %d, GrayModel gives %d", tt.r, tt.g, tt.b, got, gray.Y)
		}
	}
}
