package tui

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"
	"time"

	"golang.org/x/term"
)

const (
	clearScreen = "\033[2J\033[H"
	cursorHome  = "\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
	resetColor  = "\033[0m"
)

type cell struct {
	size float64
	rgba color.RGBA
}

// LiveRenderer is a plain ANSI surface. Each character cell covers one
// logical pixel across and two down; the glyph shade follows the largest
// square painted into the cell.
type LiveRenderer struct {
	out       io.Writer
	frameRate int
	lastFrame time.Time
	cells     [][]cell
	dpr       float64
}

func NewLiveRenderer(out io.Writer, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 60
	}
	return &LiveRenderer{out: out, frameRate: frameRate, dpr: 1}
}

func (r *LiveRenderer) SetSize(width, height int, dpr float64) {
	if dpr <= 0 {
		dpr = 1
	}
	r.dpr = dpr
	cols := int(math.Ceil(float64(width) * dpr))
	rows := int(math.Ceil(float64(height) * dpr / 2))
	r.cells = make([][]cell, rows)
	for i := range r.cells {
		r.cells[i] = make([]cell, cols)
	}
}

func (r *LiveRenderer) Clear() {
	for y := range r.cells {
		for x := range r.cells[y] {
			r.cells[y][x] = cell{}
		}
	}
}

// FillRect records the square in the cell under its center.
func (r *LiveRenderer) FillRect(x, y, w, h float64, c color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	col := int(math.Floor((x + w/2) * r.dpr))
	row := int(math.Floor((y + h/2) * r.dpr / 2))
	if row < 0 || row >= len(r.cells) || col < 0 || col >= len(r.cells[row]) {
		return
	}
	if w >= r.cells[row][col].size {
		r.cells[row][col] = cell{size: w, rgba: color.RGBAModel.Convert(c).(color.RGBA)}
	}
}

// Size returns the grid in character cells.
func (r *LiveRenderer) Size() (cols, rows int) {
	if len(r.cells) == 0 {
		return 0, 0
	}
	return len(r.cells[0]), len(r.cells)
}

func glyph(size float64) rune {
	switch {
	case size >= 1.5:
		return '█'
	case size >= 1:
		return '▓'
	case size >= 0.5:
		return '▒'
	case size > 0:
		return '░'
	}
	return ' '
}

// Glyph returns the character drawn at a cell.
func (r *LiveRenderer) Glyph(col, row int) rune {
	if row < 0 || row >= len(r.cells) || col < 0 || col >= len(r.cells[row]) {
		return ' '
	}
	return glyph(r.cells[row][col].size)
}

// Render builds one full frame followed by the status line.
func (r *LiveRenderer) Render(status string) string {
	var b strings.Builder
	for _, row := range r.cells {
		var cur color.RGBA
		colored := false
		for _, c := range row {
			g := glyph(c.size)
			if g == ' ' {
				b.WriteRune(g)
				continue
			}
			if !colored || c.rgba != cur {
				fmt.Fprintf(&b, "\033[38;2;%d;%d;%dm", c.rgba.R, c.rgba.G, c.rgba.B)
				cur, colored = c.rgba, true
			}
			b.WriteRune(g)
		}
		if colored {
			b.WriteString(resetColor)
		}
		b.WriteString("\n")
	}
	b.WriteString(status)
	return b.String()
}

// Flush writes the frame unless the last write was less than one frame
// period ago. It reports whether anything was written.
func (r *LiveRenderer) Flush(now time.Time, status string) (bool, error) {
	if !r.lastFrame.IsZero() && now.Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return false, nil
	}
	r.lastFrame = now
	_, err := io.WriteString(r.out, cursorHome+r.Render(status))
	return err == nil, err
}

func (r *LiveRenderer) Start() { io.WriteString(r.out, hideCursor+clearScreen) }
func (r *LiveRenderer) Stop()  { io.WriteString(r.out, resetColor+showCursor+"\n") }

// TermSize returns the terminal size of fd, or 80x24 when fd is not a
// terminal.
func TermSize(fd int) (cols, rows int) {
	if fd >= 0 && term.IsTerminal(fd) {
		if w, h, err := term.GetSize(fd); err == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	return 80, 24
}
