package effects

import (
	"fmt"
	"image"
	"sync"

	qrcode "github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
)

// SeedBadge stamps a QR code with the run's seed and parameters into the
// top-right corner, so a frame can be traced back to the tunnel it shows.
type SeedBadge struct {
	Margin int
	code   *qrcode.QRCode

	mu      sync.Mutex
	symbols map[int]image.Image
}

// NewSeedBadge encodes label once. Symbols are cached per size.
func NewSeedBadge(label string, margin int) (*SeedBadge, error) {
	if label == "" {
		return nil, fmt.Errorf("seed badge needs a label")
	}
	if margin <= 0 {
		margin = 4
	}
	code, err := qrcode.New(label, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode badge: %w", err)
	}
	return &SeedBadge{Margin: margin, code: code, symbols: make(map[int]image.Image)}, nil
}

// Size is the badge edge in pixels for a frame of the given height.
func (s *SeedBadge) Size(frameHeight int) int {
	return max(frameHeight/6, 48)
}

func (s *SeedBadge) Apply(frame *image.RGBA, _ FrameInfo) {
	b := frame.Bounds()
	size := s.Size(b.Dy())
	if size+2*s.Margin > b.Dx() || size+2*s.Margin > b.Dy() {
		return
	}

	symbol := s.symbol(size)
	dst := image.Rect(b.Max.X-s.Margin-size, b.Min.Y+s.Margin, b.Max.X-s.Margin, b.Min.Y+s.Margin+size)
	xdraw.NearestNeighbor.Scale(frame, dst, symbol, symbol.Bounds(), xdraw.Src, nil)
}

// BadgeLabel formats the text a badge encodes.
func BadgeLabel(seed int64, points, segments int, radius float64, radial int) string {
	return fmt.Sprintf("tunnel seed=%d points=%d segments=%d radius=%g radial=%d", seed, points, segments, radius, radial)
}

func (s *SeedBadge) symbol(size int) image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.symbols[size]
	if !ok {
		img = s.code.Image(size)
		s.symbols[size] = img
	}
	return img
}
