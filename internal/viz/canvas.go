package viz

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille terminal surface. One logical pixel maps to one
// braille dot (scaled by dpr); each cell remembers the last color painted
// into it.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]color.RGBA

	dpr    float64
	styles map[color.RGBA]lipgloss.Style
}

// NewCanvas returns a canvas of w x h cells.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{dpr: 1, styles: make(map[color.RGBA]lipgloss.Style)}
	c.alloc(w, h)
	return c
}

func (c *Canvas) alloc(w, h int) {
	c.Width, c.Height = w, h
	c.Grid = make([][]rune, h)
	c.Colors = make([][]color.RGBA, h)
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]color.RGBA, w)
	}
	c.Clear()
}

// SetSize resizes the canvas to hold width x height logical pixels.
func (c *Canvas) SetSize(width, height int, dpr float64) {
	if dpr <= 0 {
		dpr = 1
	}
	c.dpr = dpr
	dotsW := int(math.Ceil(float64(width) * dpr))
	dotsH := int(math.Ceil(float64(height) * dpr))
	c.alloc((dotsW+1)/2, (dotsH+3)/4)
}

// Dots returns the canvas size in braille dots.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights the dot at (x, y) in sub-cell coordinates.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Unset clears a dot.
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] &^= rune(pixelMap[y%4][x%2])
	if c.Grid[row][col] < blank {
		c.Grid[row][col] = blank
	}
}

// Lit reports whether the dot at (x, y) is set.
func (c *Canvas) Lit(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Colors[i][j] = color.RGBA{}
		}
	}
}

// FillRect lights every dot whose center lies inside the rectangle.
func (c *Canvas) FillRect(x, y, w, h float64, col color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	x0, y0 := x*c.dpr, y*c.dpr
	x1, y1 := (x+w)*c.dpr, (y+h)*c.dpr

	rgba := color.RGBAModel.Convert(col).(color.RGBA)
	for dy := int(math.Floor(y0)); float64(dy) < y1; dy++ {
		cy := float64(dy) + 0.5
		if cy < y0 || cy >= y1 {
			continue
		}
		for dx := int(math.Floor(x0)); float64(dx) < x1; dx++ {
			cx := float64(dx) + 0.5
			if cx < x0 || cx >= x1 {
				continue
			}
			c.Set(dx, dy)
			if dx >= 0 && dy >= 0 && dx/2 < c.Width && dy/4 < c.Height {
				c.Colors[dy/4][dx/2] = rgba
			}
		}
	}
}

// String renders the canvas without color.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render renders the canvas with each cell in its painted color.
func (c *Canvas) Render() string {
	var b strings.Builder
	for i, row := range c.Grid {
		for j, r := range row {
			if r == blank {
				b.WriteRune(r)
				continue
			}
			b.WriteString(c.style(c.Colors[i][j]).Render(string(r)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (c *Canvas) style(rgba color.RGBA) lipgloss.Style {
	if s, ok := c.styles[rgba]; ok {
		return s
	}
	cf, _ := colorful.MakeColor(opaque(rgba))
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(cf.Hex()))
	c.styles[rgba] = s
	return s
}

func opaque(c color.RGBA) color.RGBA {
	c.A = 0xff
	return c
}
