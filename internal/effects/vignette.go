package effects

import "image"

// Vignette darkens the frame towards its corners.
type Vignette struct {
	Strength float64 // 0..1, darkening at the corners
}

func (v *Vignette) Apply(frame *image.RGBA, _ FrameInfo) {
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 || v.Strength <= 0 {
		return
	}
	cx, cy := float64(w)/2, float64(h)/2
	maxD := cx*cx + cy*cy

	for y := 0; y < h; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+w*4]
		dy := float64(y) + 0.5 - cy
		for x := 0; x < w; x++ {
			dx := float64(x) + 0.5 - cx
			k := max(1-v.Strength*(dx*dx+dy*dy)/maxD, 0)
			i := x * 4
			row[i] = uint8(float64(row[i]) * k)
			row[i+1] = uint8(float64(row[i+1]) * k)
			row[i+2] = uint8(float64(row[i+2]) * k)
		}
	}
}
