package field

import (
	"fmt"

	"github.com/san-kum/pixelcanvas/internal/pixel"
)

// Program is one of the two animation directions.
type Program int

const (
	Appear Program = iota
	Disappear
)

func (p Program) String() string {
	switch p {
	case Appear:
		return "appear"
	case Disappear:
		return "disappear"
	}
	return fmt.Sprintf("program(%d)", int(p))
}

// ParseProgram accepts "appear" or "disappear".
func ParseProgram(s string) (Program, error) {
	switch s {
	case "appear":
		return Appear, nil
	case "disappear":
		return Disappear, nil
	}
	return 0, fmt.Errorf("unknown program: %s", s)
}

// Tick runs one step of prog over every pixel in field order and reports
// whether all of them are idle afterwards.
func Tick(f *Field, prog Program, dst pixel.Painter) bool {
	allIdle := true
	for _, p := range f.pixels {
		switch prog {
		case Appear:
			p.Appear(dst)
		case Disappear:
			p.Disappear(dst)
		}
		if !p.IsIdle() {
			allIdle = false
		}
	}
	return allIdle
}

// Stats summarizes a field at one instant.
type Stats struct {
	Pixels     int
	Waiting    int
	Growing    int
	Shimmering int
	Shrinking  int
	Idle       int
	MeanSize   float64
}

// Active counts pixels that still need per-frame work.
func (s Stats) Active() int { return s.Pixels - s.Idle }

func (f *Field) Stats() Stats {
	s := Stats{Pixels: len(f.pixels)}
	total := 0.0
	for _, p := range f.pixels {
		switch p.Phase() {
		case pixel.Waiting:
			s.Waiting++
		case pixel.Growing:
			s.Growing++
		case pixel.Shimmering:
			s.Shimmering++
		case pixel.Shrinking:
			s.Shrinking++
		case pixel.Idle:
			s.Idle++
		}
		total += p.Size()
	}
	if s.Pixels > 0 {
		s.MeanSize = total / float64(s.Pixels)
	}
	return s
}
