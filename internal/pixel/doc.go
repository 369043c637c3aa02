// Package pixel implements a single animated cell of the reveal effect.
//
// A [Pixel] moves through a small set of phases driven by two programs:
//
//   - Appear: wait for its delay, grow to its max size, then shimmer
//   - Disappear: shrink back to zero and go idle
//
//	p := pixel.New(x, y, swatch, baseSpeed, delay, counterBase, src)
//	p.Appear(canvas)
//
// # Thread Safety
//
// Pixels are owned by a single field and are NOT safe for concurrent use.
package pixel
