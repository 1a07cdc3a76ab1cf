package surface

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestPNGSequence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	s, err := NewPNGSequence(dir, 8, 6)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := s.Size(); w != 8 || h != 6 {
		t.Errorf("Size = %dx%d", w, h)
	}
	if IsRealtime(s) {
		t.Error("PNG surface should not be paced")
	}

	frame := image.NewRGBA(image.Rect(0, 0, 8, 6))
	frame.SetRGBA(2, 3, color.RGBA{255, 0, 0, 255})
	for i := 0; i < 3; i++ {
		if err := s.Present(frame); err != nil {
			t.Fatalf("Present %d: %v", i, err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if s.Written() != 3 {
		t.Errorf("Written = %d", s.Written())
	}

	f, err := os.Open(filepath.Join(dir, "frame_00002.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if r, _, _, _ := img.At(2, 3).RGBA(); r != 0xffff {
		t.Errorf("Pixel lost in round trip: %v", img.At(2, 3))
	}
}

func TestPNGSequenceRejectsEmptySize(t *testing.T) {
	if _, err := NewPNGSequence(t.TempDir(), 0, 10); err == nil {
		t.Error("Expected error for zero width")
	}
}

func TestSizeEmpty(t *testing.T) {
	if !(Size{0, 5}).Empty() || (Size{1, 1}).Empty() {
		t.Error("Unexpected Empty result")
	}
}
