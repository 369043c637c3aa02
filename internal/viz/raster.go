package viz

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Raster is an in-memory RGBA surface. The backing image is the logical
// size multiplied by the device pixel ratio.
type Raster struct {
	Background color.Color

	img           *image.RGBA
	width, height int
	dpr           float64
}

func NewRaster(bg color.Color) *Raster {
	if bg == nil {
		bg = color.Black
	}
	return &Raster{Background: bg, img: image.NewRGBA(image.Rect(0, 0, 0, 0)), dpr: 1}
}

func (r *Raster) SetSize(width, height int, dpr float64) {
	if dpr <= 0 {
		dpr = 1
	}
	r.width, r.height, r.dpr = width, height, dpr
	bw := int(math.Floor(float64(width) * dpr))
	bh := int(math.Floor(float64(height) * dpr))
	r.img = image.NewRGBA(image.Rect(0, 0, bw, bh))
	r.Clear()
}

func (r *Raster) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(r.Background), image.Point{}, draw.Src)
}

// FillRect paints every backing pixel whose center is inside the scaled
// rectangle.
func (r *Raster) FillRect(x, y, w, h float64, c color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	x0, y0 := x*r.dpr, y*r.dpr
	x1, y1 := (x+w)*r.dpr, (y+h)*r.dpr

	rect := image.Rect(
		int(math.Ceil(x0-0.5)), int(math.Ceil(y0-0.5)),
		int(math.Ceil(x1-0.5)), int(math.Ceil(y1-0.5)),
	).Intersect(r.img.Bounds())
	if rect.Empty() {
		return
	}
	draw.Draw(r.img, rect, image.NewUniform(c), image.Point{}, draw.Over)
}

func (r *Raster) Image() *image.RGBA      { return r.img }
func (r *Raster) Size() (int, int)        { return r.width, r.height }
func (r *Raster) DPR() float64            { return r.dpr }
func (r *Raster) Bounds() image.Rectangle { return r.img.Bounds() }
func (r *Raster) At(x, y int) color.Color { return r.img.At(x, y) }
func (r *Raster) ColorModel() color.Model { return r.img.ColorModel() }
