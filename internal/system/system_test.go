package system

import (
	"image"
	"testing"
)

func TestImagePoolReusesBySize(t *testing.T) {
	p := NewImagePool()

	img := p.Get(image.Rect(10, 10, 74, 58))
	if img.Bounds() != image.Rect(0, 0, 64, 48) {
		t.Fatalf("Expected a 64x48 image at the origin, got %v", img.Bounds())
	}
	img.Pix[0] = 42
	p.Put(img)

	// sync.Pool may drop entries, so only the shape is guaranteed.
	again := p.Get(image.Rect(0, 0, 64, 48))
	if again.Bounds() != img.Bounds() || len(again.Pix) != 64*48*4 {
		t.Errorf("Unexpected image %v with %d bytes", again.Bounds(), len(again.Pix))
	}

	other := p.Get(image.Rect(0, 0, 8, 8))
	if other.Bounds().Size() != (image.Point{8, 8}) {
		t.Errorf("Expected 8x8, got %v", other.Bounds())
	}

	p.Put(nil)
}

func TestPickEncoder(t *testing.T) {
	tests := []struct {
		list string
		want string
	}{
		{" V....D h264_nvenc  NVIDIA NVENC H.264 encoder", "h264_nvenc"},
		{" V....D h264_videotoolbox VideoToolbox H.264 Encoder\n V....D h264_nvenc", "h264_videotoolbox"},
		{" V....D libx264 libx264 H.264", "libx264"},
		{"", "libx264"},
	}
	for _, tt := range tests {
		if got := pickEncoder(tt.list); got != tt.want {
			t.Errorf("pickEncoder(%q) = %s, want %s", tt.list, got, tt.want)
		}
	}
}

func TestDefaultQuality(t *testing.T) {
	if DefaultQuality("h264_videotoolbox") != 75 || DefaultQuality("h264_nvenc") != 28 || DefaultQuality("libx264") != 23 {
		t.Error("Unexpected default qualities")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{3 << 20, "3.0 MiB"},
		{5 << 30, "5.0 GiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}

func TestDescribeHost(t *testing.T) {
	h := DescribeHost()
	if h.LogicalCores < 1 {
		t.Errorf("Expected at least one logical core, got %d", h.LogicalCores)
	}
	if RecommendedWorkers() < 1 {
		t.Error("Expected at least one worker")
	}
	t.Logf("Host: %s", h)

	if rss, err := ProcessRSS(); err == nil && rss == 0 {
		t.Error("Process RSS reported as zero")
	}
}
