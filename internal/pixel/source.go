package pixel

import (
	"image/color"
	"math/rand/v2"
)

// Source is the random stream used for every per-pixel draw.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// NewSource returns a deterministic source for the given seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Painter is the minimal drawing surface a pixel needs.
type Painter interface {
	FillRect(x, y, w, h float64, c color.Color)
}

// Swatch is one palette entry: the configured token and its parsed color.
type Swatch struct {
	Token string
	RGBA  color.RGBA
}

// Pick draws a swatch uniformly from the palette.
func Pick(palette []Swatch, src Source) (Swatch, error) {
	if len(palette) == 0 {
		return Swatch{}, ErrEmptyPalette
	}
	return palette[src.IntN(len(palette))], nil
}

func between(src Source, min, max float64) float64 {
	return src.Float64()*(max-min) + min
}
