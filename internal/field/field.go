package field

import (
	"fmt"
	"math"

	"github.com/san-kum/pixelcanvas/internal/pixel"
)

// Variant selects the reference point used for appearance delays.
type Variant string

const (
	// VariantDefault staggers from the bottom-left corner (full-surface backgrounds).
	VariantDefault Variant = "default"
	// VariantIcon staggers from the center (compact icon effects).
	VariantIcon Variant = "icon"
)

// ParseVariant maps unknown names to VariantDefault.
func ParseVariant(s string) Variant {
	if Variant(s) == VariantIcon {
		return VariantIcon
	}
	return VariantDefault
}

// Options holds normalized construction parameters.
type Options struct {
	Gap           int
	Speed         float64 // scaled base speed, e.g. 0.035
	Palette       []pixel.Swatch
	Variant       Variant
	ReducedMotion bool
}

// Field is the ordered pixel grid for one surface.
type Field struct {
	width, height int
	gap           int
	pixels        []*pixel.Pixel
}

// New tiles a width x height surface with pixels every opts.Gap units.
// A zero-sized surface yields an empty field.
func New(width, height int, opts Options, src pixel.Source) (*Field, error) {
	if src == nil {
		return nil, pixel.ErrNilSource
	}
	if len(opts.Palette) == 0 {
		return nil, pixel.ErrEmptyPalette
	}
	if opts.Gap <= 0 {
		return nil, fmt.Errorf("gap must be positive, got %d", opts.Gap)
	}

	f := &Field{width: width, height: height, gap: opts.Gap}
	if width <= 0 || height <= 0 {
		return f, nil
	}

	speed := opts.Speed
	if opts.ReducedMotion {
		speed = 0
	}
	counterBase := float64(width+height) * 0.01

	cols := (width + opts.Gap - 1) / opts.Gap
	rows := (height + opts.Gap - 1) / opts.Gap
	f.pixels = make([]*pixel.Pixel, 0, cols*rows)

	for x := 0; x < width; x += opts.Gap {
		for y := 0; y < height; y += opts.Gap {
			swatch, err := pixel.Pick(opts.Palette, src)
			if err != nil {
				return nil, err
			}

			delay := 0.0
			if !opts.ReducedMotion {
				delay = f.delay(opts.Variant, float64(x), float64(y))
			}

			f.pixels = append(f.pixels, pixel.New(float64(x), float64(y), swatch, speed, delay, counterBase, src))
		}
	}

	return f, nil
}

func (f *Field) delay(v Variant, x, y float64) float64 {
	if v == VariantIcon {
		return DistanceToCenter(x, y, f.width, f.height)
	}
	return DistanceToBottomLeft(x, y, f.height)
}

// DistanceToCenter is the euclidean distance from (x, y) to the surface center.
func DistanceToCenter(x, y float64, width, height int) float64 {
	dx := x - float64(width)/2
	dy := y - float64(height)/2
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceToBottomLeft is the euclidean distance from (x, y) to (0, height).
func DistanceToBottomLeft(x, y float64, height int) float64 {
	dy := float64(height) - y
	return math.Sqrt(x*x + dy*dy)
}

func (f *Field) Width() int             { return f.width }
func (f *Field) Height() int            { return f.height }
func (f *Field) Gap() int               { return f.gap }
func (f *Field) Len() int               { return len(f.pixels) }
func (f *Field) Pixels() []*pixel.Pixel { return f.pixels }
func (f *Field) At(i int) *pixel.Pixel  { return f.pixels[i] }
func (f *Field) Empty() bool            { return len(f.pixels) == 0 }
