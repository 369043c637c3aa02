package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/san-kum/pixelcanvas/internal/config"
	"github.com/san-kum/pixelcanvas/internal/driver"
	"github.com/san-kum/pixelcanvas/internal/pixel"
	"github.com/san-kum/pixelcanvas/internal/surface"
)

// Live binds an adapter to a renderer as a driver.FrameHost.
type Live struct {
	Adapter  *surface.Adapter
	Renderer *LiveRenderer
	Label    string
}

func (l *Live) Frame(now time.Time) bool {
	more := l.Adapter.Frame(now)

	status := l.Label + "  idle"
	if f := l.Adapter.Field(); f != nil {
		st := f.Stats()
		state := "idle"
		if l.Adapter.Active() {
			state = l.Adapter.Program().String()
		}
		status = fmt.Sprintf("%s  %-9s  pixels=%d active=%d mean=%.2f  ctrl+c to quit",
			l.Label, state, st.Pixels, st.Active(), st.MeanSize)
	}
	if _, err := l.Renderer.Flush(now, status); err != nil {
		log.Printf("LIVE | write failed err=%v", err)
	}
	return more
}

// LiveOptions configure RunLive.
type LiveOptions struct {
	Label string
	// Cycle toggles between appear and disappear at this period; zero
	// plays appear once.
	Cycle time.Duration
	// FD is polled for terminal size changes; negative means 80x24.
	FD int
}

const resizePoll = 250 * time.Millisecond

// RunLive animates a field in the terminal until ctx is done.
func RunLive(ctx context.Context, opts config.Options, src pixel.Source, out io.Writer, lo LiveOptions) error {
	r := NewLiveRenderer(out, opts.FPS)
	a := surface.New(opts, r, src)
	defer a.Close()

	dpr := opts.DPR
	if dpr <= 0 {
		dpr = 1
	}
	resize := func(cols, rows int) {
		// one line is kept for the status
		if err := a.Resize(float64(cols)/dpr, float64(max(1, rows-1)*2)/dpr); err != nil {
			log.Printf("LIVE | resize failed err=%v", err)
		}
	}
	cols, rows := TermSize(lo.FD)
	resize(cols, rows)

	loop := driver.NewLoop(opts.Interval())
	host := &Live{Adapter: a, Renderer: r, Label: lo.Label}

	r.Start()
	defer r.Stop()
	a.Handle(surface.PlayAppear)

	go func() {
		var cycle <-chan time.Time
		if lo.Cycle > 0 {
			t := time.NewTicker(lo.Cycle)
			defer t.Stop()
			cycle = t.C
		}
		poll := time.NewTicker(resizePoll)
		defer poll.Stop()

		showing := true
		for {
			select {
			case <-ctx.Done():
				return
			case <-cycle:
				showing = !showing
				trig := surface.PlayDisappear
				if showing {
					trig = surface.PlayAppear
				}
				if !loop.Do(func() { a.Handle(trig) }) {
					return
				}
			case <-poll.C:
				c, rr := TermSize(lo.FD)
				if c == cols && rr == rows {
					continue
				}
				cols, rows = c, rr
				if !loop.Do(func() { resize(c, rr) }) {
					return
				}
			}
		}
	}()

	err := loop.Run(ctx, host)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
