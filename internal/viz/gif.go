package viz

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"os"

	"github.com/san-kum/pixelcanvas/internal/pixel"
)

var ErrNoFrames = errors.New("viz: no frames recorded")

// Recorder collects paletted frames for an animated GIF.
type Recorder struct {
	// Delay between frames in hundredths of a second.
	Delay int
	// MaxFrames bounds memory; zero means unbounded.
	MaxFrames int

	palette color.Palette
	frames  []*image.Paletted
}

// NewRecorder builds the GIF palette from the background and swatches.
func NewRecorder(bg color.Color, swatches []pixel.Swatch, delay int) *Recorder {
	if delay <= 0 {
		delay = 2
	}
	pal := color.Palette{color.RGBAModel.Convert(bg)}
	seen := map[color.RGBA]bool{pal[0].(color.RGBA): true}
	for _, s := range swatches {
		if len(pal) == 256 {
			break
		}
		c := opaque(s.RGBA)
		if seen[c] {
			continue
		}
		seen[c] = true
		pal = append(pal, c)
	}
	return &Recorder{Delay: delay, palette: pal}
}

// Capture quantizes img to the recorder palette and appends it.
func (r *Recorder) Capture(img image.Image) {
	if r.MaxFrames > 0 && len(r.frames) >= r.MaxFrames {
		return
	}
	b := img.Bounds()
	frame := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), r.palette)
	draw.Draw(frame, frame.Bounds(), img, b.Min, draw.Src)
	r.frames = append(r.frames, frame)
}

// CaptureCanvas rasterizes a braille canvas with each dot drawn as a
// charW/2 x charH/4 block.
func (r *Recorder) CaptureCanvas(c *Canvas, charW, charH int) {
	if r.MaxFrames > 0 && len(r.frames) >= r.MaxFrames {
		return
	}
	imgW, imgH := c.Width*charW, c.Height*charH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), r.palette)
	dotW, dotH := charW/2, charH/4
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			cell := c.Grid[row][col]
			if cell == blank {
				continue
			}
			idx := uint8(img.Palette.Index(opaque(c.Colors[row][col])))
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if cell&rune(pixelMap[dy][dx]) == 0 {
						continue
					}
					baseX, baseY := col*charW+dx*dotW, row*charH+dy*dotH
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+px, baseY+py, idx)
						}
					}
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

func (r *Recorder) Len() int { return len(r.frames) }

func (r *Recorder) Reset() { r.frames = nil }

// Encode writes the looping animation to w.
func (r *Recorder) Encode(w io.Writer) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.Delay)
	}
	return gif.EncodeAll(w, &anim)
}

// Save encodes the animation to path.
func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
