package pixel

import (
	"image/color"
	"math"
)

const (
	MinSize        = 0.5
	MaxSizeInteger = 2.0
	MaxSizeStep    = 0.4
	ShrinkStep     = 0.1

	// sizes closer to zero than this are treated as zero
	sizeEpsilon = 1e-9
)

// Phase is the animation sub-state of a pixel.
type Phase int

const (
	Waiting Phase = iota
	Growing
	Shimmering
	Shrinking
	Idle
)

func (p Phase) String() string {
	switch p {
	case Waiting:
		return "waiting"
	case Growing:
		return "growing"
	case Shimmering:
		return "shimmering"
	case Shrinking:
		return "shrinking"
	case Idle:
		return "idle"
	}
	return "unknown"
}

// Pixel is one grid cell of the reveal effect.
type Pixel struct {
	x, y        float64
	swatch      Swatch
	speed       float64
	size        float64
	sizeStep    float64
	maxSize     float64
	delay       float64
	counter     float64
	counterStep float64
	phase       Phase
	// shrinking direction while shimmering
	reverse bool
}

// New creates a pixel at (x, y). baseSpeed is the already scaled global
// speed; the pixel keeps a random fraction of it in [0.1, 0.9).
// counterBase is the deterministic part of the counter step, usually
// (width+height)*0.01 of the surface.
func New(x, y float64, swatch Swatch, baseSpeed, delay, counterBase float64, src Source) *Pixel {
	return &Pixel{
		x:           x,
		y:           y,
		swatch:      swatch,
		speed:       between(src, 0.1, 0.9) * baseSpeed,
		sizeStep:    src.Float64() * MaxSizeStep,
		maxSize:     between(src, MinSize, MaxSizeInteger),
		delay:       delay,
		counterStep: src.Float64()*4 + counterBase,
		phase:       Waiting,
	}
}

func (p *Pixel) X() float64         { return p.x }
func (p *Pixel) Y() float64         { return p.y }
func (p *Pixel) Color() color.RGBA  { return p.swatch.RGBA }
func (p *Pixel) Token() string      { return p.swatch.Token }
func (p *Pixel) Speed() float64     { return p.speed }
func (p *Pixel) Size() float64      { return p.size }
func (p *Pixel) SizeStep() float64  { return p.sizeStep }
func (p *Pixel) MaxSize() float64   { return p.maxSize }
func (p *Pixel) Delay() float64     { return p.delay }
func (p *Pixel) Counter() float64   { return p.counter }
func (p *Pixel) Phase() Phase       { return p.phase }
func (p *Pixel) IsIdle() bool       { return p.phase == Idle }
func (p *Pixel) IsShimmering() bool { return p.phase == Shimmering }

// Draw fills the pixel's square, centered inside its max-size box.
// A nil painter only advances state.
func (p *Pixel) Draw(dst Painter) {
	if dst == nil {
		return
	}
	off := MaxSizeInteger*0.5 - p.size*0.5
	dst.FillRect(p.x+off, p.y+off, p.size, p.size, p.swatch.RGBA)
}

// Appear advances the grow-and-shimmer program by one tick.
func (p *Pixel) Appear(dst Painter) {
	if p.counter <= p.delay {
		p.counter += p.counterStep
		p.phase = Waiting
		return
	}

	switch p.phase {
	case Waiting, Shrinking, Idle:
		p.phase = Growing
	}
	if p.phase == Growing && p.size >= p.maxSize {
		p.phase = Shimmering
	}

	switch p.phase {
	case Shimmering:
		p.shimmer()
	case Growing:
		p.size = math.Min(p.size+p.sizeStep, p.maxSize)
	}

	p.Draw(dst)
}

// Disappear advances the shrink-to-nothing program by one tick.
func (p *Pixel) Disappear(dst Painter) {
	p.counter = 0

	if p.size <= 0 {
		p.size = 0
		p.phase = Idle
		return
	}

	p.size -= ShrinkStep
	if p.size <= sizeEpsilon {
		p.size = 0
		p.phase = Idle
		return
	}
	p.phase = Shrinking

	p.Draw(dst)
}

func (p *Pixel) shimmer() {
	if p.size >= p.maxSize {
		p.reverse = true
	} else if p.size <= MinSize {
		p.reverse = false
	}

	if p.reverse {
		p.size = math.Max(p.size-p.speed, MinSize)
	} else {
		p.size = math.Min(p.size+p.speed, p.maxSize)
	}
}
