// Package driver schedules the reveal programs frame by frame.
//
// A [Driver] is passive: the host calls [Driver.Frame] once per display
// refresh and the driver decides whether enough time has passed to do work.
// At most one program is active per driver; [Driver.Run] preempts the
// previous one immediately.
//
// [Loop] is a fixed-tick host for environments without a paint callback.
// It owns a single goroutine and serializes every action posted with
// [Loop.Do] against the frame ticks, so callers never need a lock.
package driver
