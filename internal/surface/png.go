package surface

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// FramePattern names the files written by PNGSequence.
const FramePattern = "frame_%05d.png"

// PNGSequence writes every presented frame as a numbered PNG in a directory.
type PNGSequence struct {
	dir     string
	size    Size
	encoder png.Encoder
	next    int
}

func NewPNGSequence(dir string, width, height int) (*PNGSequence, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("png surface size must be positive, got %dx%d", width, height)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &PNGSequence{
		dir:     dir,
		size:    Size{width, height},
		encoder: png.Encoder{CompressionLevel: png.BestSpeed},
	}, nil
}

func (p *PNGSequence) Size() (int, int) { return p.size.W, p.size.H }

// Written is the number of frames saved so far.
func (p *PNGSequence) Written() int { return p.next }

// Path returns the file name of frame i.
func (p *PNGSequence) Path(i int) string {
	return filepath.Join(p.dir, fmt.Sprintf(FramePattern, i))
}

func (p *PNGSequence) Present(frame *image.RGBA) error {
	path := p.Path(p.next)
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	if err := p.encoder.Encode(w, frame); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	p.next++
	return nil
}

func (p *PNGSequence) Close() error { return nil }
