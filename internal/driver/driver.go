package driver

import (
	"time"

	"github.com/san-kum/pixelcanvas/internal/field"
	"github.com/san-kum/pixelcanvas/internal/pixel"
)

// DefaultInterval is one frame at 60 updates per second.
const DefaultInterval = time.Second / 60

// Canvas is what the driver draws into each processed frame.
type Canvas interface {
	pixel.Painter
	Clear()
}

type Driver struct {
	interval time.Duration
	program  field.Program
	active   bool
	prev     time.Time
	frames   int
}

func New(interval time.Duration) *Driver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Driver{interval: interval}
}

// IntervalForRate converts a target rate in Hz to a frame interval.
func IntervalForRate(fps int) time.Duration {
	if fps <= 0 {
		return DefaultInterval
	}
	return time.Second / time.Duration(fps)
}

// Run starts prog, replacing any program already in flight.
func (d *Driver) Run(prog field.Program) {
	d.program = prog
	d.active = true
}

// Cancel stops the active program without touching pixel state.
func (d *Driver) Cancel() { d.active = false }

func (d *Driver) Active() bool            { return d.active }
func (d *Driver) Program() field.Program  { return d.program }
func (d *Driver) Frames() int             { return d.frames }
func (d *Driver) Interval() time.Duration { return d.interval }

// Frame processes at most one tick of the active program and reports
// whether the driver still wants frames. Calls that arrive sooner than the
// interval after the last processed frame are skipped.
func (d *Driver) Frame(now time.Time, f *field.Field, c Canvas) bool {
	if !d.active {
		return false
	}

	if !d.prev.IsZero() {
		elapsed := now.Sub(d.prev)
		if elapsed < d.interval {
			return true
		}
		d.prev = now.Add(-(elapsed % d.interval))
	} else {
		d.prev = now
	}

	if f == nil || c == nil {
		return true
	}

	c.Clear()
	d.frames++
	if field.Tick(f, d.program, c) {
		d.active = false
	}
	return d.active
}
