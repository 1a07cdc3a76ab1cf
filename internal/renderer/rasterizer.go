package renderer

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/tunnel/internal/camera"
	"github.com/ivlev/tunnel/internal/system"
)

// Rasterizer draws scenes as screen-aligned squares with perspective size
// attenuation. It holds no per-frame state and can be shared by workers.
type Rasterizer struct {
	// Supersample renders at this multiple of the target size and scales
	// down with a Catmull-Rom filter. Values below 2 render directly.
	Supersample int
}

// Render clears dst to the scene background and draws every visible point.
// cam is only read.
func (r *Rasterizer) Render(dst *image.RGBA, scene *Scene, cam *camera.Camera) {
	s := r.Supersample
	if s < 2 {
		rasterize(dst, scene, cam)
		return
	}

	b := dst.Bounds()
	big := system.GetImage(image.Rect(0, 0, b.Dx()*s, b.Dy()*s))
	defer system.PutImage(big)

	rasterize(big, scene, cam)
	xdraw.CatmullRom.Scale(dst, b, big, big.Bounds(), xdraw.Src, nil)
}

func rasterize(dst *image.RGBA, scene *Scene, cam *camera.Camera) {
	fillBackground(dst, scene.Background.R, scene.Background.G, scene.Background.B)

	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}
	scale := float64(h) / 2

	for _, p := range scene.Points {
		x, y, depth, ok := cam.Project(p, w, h)
		if !ok {
			continue
		}

		size := scene.PointSize * scale / depth
		if scene.MaxPointSize > 0 && size > scene.MaxPointSize {
			size = scene.MaxPointSize
		}

		// Sub-pixel points keep their area as coverage.
		alpha := 1.0
		if size < 1 {
			alpha = size * size
			size = 1
		}
		if scene.Fog > 0 {
			alpha *= 1 - depth/scene.Fog
			if alpha <= 0 {
				continue
			}
		}

		half := size / 2
		x0, x1 := int(math.Round(x-half)), int(math.Round(x+half))
		y0, y1 := int(math.Round(y-half)), int(math.Round(y+half))
		if x1 == x0 {
			x1++
		}
		if y1 == y0 {
			y1++
		}
		fill(dst, x0, y0, x1, y1, scene, alpha)
	}
}

func fillBackground(img *image.RGBA, r, g, b uint8) {
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = r
		pix[i+1] = g
		pix[i+2] = b
		pix[i+3] = 0xff
	}
}

// fill blends the point color over the rectangle [x0,x1)×[y0,y1), given in
// coordinates relative to the image origin.
func fill(img *image.RGBA, x0, y0, x1, y1 int, scene *Scene, alpha float64) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, w), min(y1, h)
	if x0 >= x1 || y0 >= y1 {
		return
	}

	a := uint32(alpha*255 + 0.5)
	if a > 255 {
		a = 255
	}
	c := scene.Color
	for y := y0; y < y1; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := x0; x < x1; x++ {
			i := x * 4
			row[i] = blend(row[i], c.R, a)
			row[i+1] = blend(row[i+1], c.G, a)
			row[i+2] = blend(row[i+2], c.B, a)
			row[i+3] = 0xff
		}
	}
}

func blend(dst, src uint8, a uint32) uint8 {
	return uint8((uint32(dst)*(255-a) + uint32(src)*a + 127) / 255)
}
