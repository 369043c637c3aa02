package surface

import (
	"image/color"
	"math"
	"time"

	"github.com/san-kum/pixelcanvas/internal/config"
	"github.com/san-kum/pixelcanvas/internal/driver"
	"github.com/san-kum/pixelcanvas/internal/field"
	"github.com/san-kum/pixelcanvas/internal/pixel"
)

// Surface is a resizable drawable area.
type Surface interface {
	// SetSize sets the logical size; the backing store is scaled by dpr.
	SetSize(width, height int, dpr float64)
	Clear()
	FillRect(x, y, w, h float64, c color.Color)
}

// Adapter binds one pixel field and one driver to a surface.
type Adapter struct {
	opts   config.Options
	surf   Surface
	src    pixel.Source
	field  *field.Field
	driver *driver.Driver
	width  int
	height int
	closed bool
}

// New returns an adapter for surf. A nil surface or source yields a
// permanently disabled adapter on which every call is a no-op.
func New(opts config.Options, surf Surface, src pixel.Source) *Adapter {
	return &Adapter{
		opts:   opts,
		surf:   surf,
		src:    src,
		driver: driver.New(opts.Interval()),
	}
}

// Disabled reports whether the adapter can never draw.
func (a *Adapter) Disabled() bool {
	return a.surf == nil || a.src == nil || a.closed
}

// Resize applies a new measured size. Fractional sizes are floored, a zero
// dimension is ignored and an unchanged size keeps the current field.
// Otherwise the field is rebuilt before returning.
func (a *Adapter) Resize(width, height float64) error {
	if a.Disabled() {
		return nil
	}
	w, h := int(math.Floor(width)), int(math.Floor(height))
	if w <= 0 || h <= 0 {
		return nil
	}
	if a.field != nil && w == a.width && h == a.height {
		return nil
	}

	f, err := field.New(w, h, a.opts.Field, a.src)
	if err != nil {
		return err
	}

	a.surf.SetSize(w, h, a.opts.DPR)
	a.width, a.height = w, h
	a.field = f
	return nil
}

// Handle maps a trigger to a program. Focus triggers are ignored when the
// adapter was configured with NoFocus.
func (a *Adapter) Handle(t Trigger) {
	if a.Disabled() {
		return
	}
	if t.isFocus() && a.opts.NoFocus {
		return
	}

	switch t {
	case PointerEnter, FocusIn, PlayAppear:
		a.Play(field.Appear)
	case PointerLeave, FocusOut, PlayDisappear:
		a.Play(field.Disappear)
	}
}

// Play starts prog immediately, preempting any running program.
func (a *Adapter) Play(prog field.Program) {
	if a.Disabled() {
		return
	}
	a.driver.Run(prog)
}

// Frame is the per-refresh callback. It reports whether more frames are wanted.
func (a *Adapter) Frame(now time.Time) bool {
	if a.Disabled() || a.field == nil {
		return false
	}
	return a.driver.Frame(now, a.field, a.surf)
}

// Close cancels any running program and disables the adapter.
func (a *Adapter) Close() {
	a.driver.Cancel()
	a.closed = true
}

func (a *Adapter) Field() *field.Field     { return a.field }
func (a *Adapter) Size() (int, int)        { return a.width, a.height }
func (a *Adapter) Active() bool            { return a.driver.Active() }
func (a *Adapter) Program() field.Program  { return a.driver.Program() }
func (a *Adapter) Frames() int             { return a.driver.Frames() }
func (a *Adapter) Options() config.Options { return a.opts }
