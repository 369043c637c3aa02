package export

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/pixelcanvas/internal/field"
	"github.com/san-kum/pixelcanvas/internal/pixel"
)

func hex(c color.Color) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}

func header(sb *strings.Builder, w, h float64, bg color.Color) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, hex(bg)))
}

// ImageToSVG emits one rect per horizontal run of same-colored pixels that
// differ from bg. Scale multiplies every coordinate.
func ImageToSVG(img image.Image, bg color.Color, scale float64) string {
	if img == nil {
		return ""
	}
	if scale <= 0 {
		scale = 1
	}
	b := img.Bounds()
	bgRGBA := color.RGBAModel.Convert(bg)

	var sb strings.Builder
	header(&sb, float64(b.Dx())*scale, float64(b.Dy())*scale, bg)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; {
			c := color.RGBAModel.Convert(img.At(x, y))
			if c == bgRGBA {
				x++
				continue
			}
			run := 1
			for x+run < b.Max.X && color.RGBAModel.Convert(img.At(x+run, y)) == c {
				run++
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%g" y="%g" width="%g" height="%g" fill="%s"/>
`, float64(x-b.Min.X)*scale, float64(y-b.Min.Y)*scale, float64(run)*scale, scale, hex(c)))
			x += run
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// FieldToSVG draws the current size of every visible pixel as a vector
// square, using the same centering as the live renderer.
func FieldToSVG(f *field.Field, bg color.Color, scale float64) string {
	if f == nil {
		return ""
	}
	if scale <= 0 {
		scale = 1
	}

	var sb strings.Builder
	header(&sb, float64(f.Width())*scale, float64(f.Height())*scale, bg)

	for _, p := range f.Pixels() {
		if p.Size() <= 0 {
			continue
		}
		off := pixel.MaxSizeInteger/2 - p.Size()/2
		sb.WriteString(fmt.Sprintf(`<rect x="%.3f" y="%.3f" width="%.3f" height="%.3f" fill="%s"/>
`, (p.X()+off)*scale, (p.Y()+off)*scale, p.Size()*scale, p.Size()*scale, hex(p.Color())))
	}

	sb.WriteString("</svg>")
	return sb.String()
}
