package driver

import (
	"context"
	"sync"
	"time"
)

// FrameHost receives one callback per tick.
type FrameHost interface {
	Frame(now time.Time) bool
}

// Loop is a fixed-tick scheduler. Frames and posted actions all run on
// the goroutine that called Run.
type Loop struct {
	interval time.Duration
	actions  chan func()
	done     chan struct{}
	stopOnce sync.Once
}

func NewLoop(interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		interval: interval,
		actions:  make(chan func(), 64),
		done:     make(chan struct{}),
	}
}

// Do queues fn to run on the loop goroutine before the next frame.
// It reports false once the loop has stopped.
func (l *Loop) Do(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.actions <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Stop ends Run. Safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// Run ticks host until ctx is canceled or Stop is called.
func (l *Loop) Run(ctx context.Context, host FrameHost) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	defer l.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.actions:
			fn()
		case now := <-ticker.C:
			l.drain()
			host.Frame(now)
		}
	}
}

// drain runs every queued action so a resize posted before a tick is
// always applied before that tick draws.
func (l *Loop) drain() {
	for {
		select {
		case fn := <-l.actions:
			fn()
		default:
			return
		}
	}
}
