package pixel

import "errors"

var (
	// ErrEmptyPalette indicates a palette without any usable color.
	ErrEmptyPalette = errors.New("pixel: palette has no colors")

	// ErrNilSource indicates a missing random source.
	ErrNilSource = errors.New("pixel: random source is nil")
)
