// Package terminal presents frames in a terminal. Every character cell
// shows a 2x4 block of pixels as a braille pattern colored with the average
// of its lit pixels.
package terminal

import (
	"image"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/ivlev/tunnel/internal/analyzer"
	"github.com/ivlev/tunnel/internal/surface"
)

// Pixels per character cell.
const (
	CellWidth  = 2
	CellHeight = 4
)

const brailleBase = 0x2800

// dotBits maps a pixel inside a cell to its braille dot.
var dotBits = [CellHeight][CellWidth]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Screen is a live surface on a tcell screen.
type Screen struct {
	screen    tcell.Screen
	Threshold uint8 // minimum luma for a dot to be set

	mu   sync.Mutex
	cols int
	rows int

	resized     chan surface.Size
	interrupted chan struct{}
	stopOnce    sync.Once
	done        chan struct{}
}

// New opens the process terminal.
func New() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(s)
}

// NewWithScreen takes over an existing screen, initializing it.
func NewWithScreen(s tcell.Screen) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.HideCursor()
	s.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack))
	s.Clear()

	cols, rows := s.Size()
	t := &Screen{
		screen:      s,
		Threshold:   24,
		cols:        cols,
		rows:        rows,
		resized:     make(chan surface.Size, 1),
		interrupted: make(chan struct{}),
		done:        make(chan struct{}),
	}
	go t.poll()
	return t, nil
}

// Size is the pixel size: two pixels per column and four per row.
func (t *Screen) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cols * CellWidth, t.rows * CellHeight
}

func (t *Screen) Realtime() bool { return true }

func (t *Screen) Resized() <-chan surface.Size { return t.resized }

func (t *Screen) Interrupted() <-chan struct{} { return t.interrupted }

// Present draws frame into the cells it covers and shows the screen. A
// frame rendered for an older size is drawn clipped.
func (t *Screen) Present(frame *image.RGBA) error {
	t.mu.Lock()
	cols, rows := t.cols, t.rows
	t.mu.Unlock()

	b := frame.Bounds()
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			r, c, ok := Cell(frame, b.Min.X+cx*CellWidth, b.Min.Y+cy*CellHeight, t.Threshold)
			style := tcell.StyleDefault.Background(tcell.ColorBlack)
			if !ok {
				t.screen.SetContent(cx, cy, ' ', nil, style)
				continue
			}
			fg := tcell.NewRGBColor(int32(c[0]), int32(c[1]), int32(c[2]))
			t.screen.SetContent(cx, cy, r, nil, style.Foreground(fg))
		}
	}
	t.screen.Show()
	return nil
}

// Cell converts the 2x4 block at (x, y) into a braille rune and the mean
// color of its lit pixels. ok is false when no pixel is lit.
func Cell(img *image.RGBA, x, y int, threshold uint8) (r rune, c [3]uint8, ok bool) {
	var bits rune
	var sum [3]int
	n := 0
	for dy := 0; dy < CellHeight; dy++ {
		for dx := 0; dx < CellWidth; dx++ {
			p := image.Point{x + dx, y + dy}
			if !p.In(img.Rect) {
				continue
			}
			i := img.PixOffset(p.X, p.Y)
			pr, pg, pb := img.Pix[i], img.Pix[i+1], img.Pix[i+2]
			if analyzer.Luma(pr, pg, pb) <= threshold {
				continue
			}
			bits |= dotBits[dy][dx]
			sum[0] += int(pr)
			sum[1] += int(pg)
			sum[2] += int(pb)
			n++
		}
	}
	if n == 0 {
		return ' ', c, false
	}
	for k := range c {
		c[k] = uint8(sum[k] / n)
	}
	return brailleBase + bits, c, true
}

// poll turns tcell events into resize and interrupt notifications until the
// screen is closed.
func (t *Screen) poll() {
	defer close(t.done)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			cols, rows := ev.Size()
			t.mu.Lock()
			t.cols, t.rows = cols, rows
			t.mu.Unlock()
			t.screen.Sync()
			t.notifyResize(surface.Size{W: cols * CellWidth, H: rows * CellHeight})
		case *tcell.EventKey:
			if IsStopKey(ev) {
				t.stopOnce.Do(func() { close(t.interrupted) })
			}
		}
	}
}

// notifyResize replaces a pending size that was not read yet.
func (t *Screen) notifyResize(s surface.Size) {
	for {
		select {
		case t.resized <- s:
			return
		default:
		}
		select {
		case <-t.resized:
		default:
		}
	}
}

// IsStopKey reports whether ev should end the flythrough: Esc, Ctrl-C or q.
func IsStopKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

// Close restores the terminal.
func (t *Screen) Close() error {
	t.screen.Fini()
	<-t.done
	return nil
}
