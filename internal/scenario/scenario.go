// Package scenario plays scripted trigger timelines against a surface
// adapter on a virtual clock and records per-frame field statistics.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"sort"
	"time"

	"github.com/san-kum/pixelcanvas/internal/config"
	"github.com/san-kum/pixelcanvas/internal/field"
	"github.com/san-kum/pixelcanvas/internal/pixel"
	"github.com/san-kum/pixelcanvas/internal/surface"
	"gopkg.in/yaml.v3"
)

// TriggerResize is the pseudo-trigger that applies a new measured size.
const TriggerResize = "resize"

// DefaultTail is how long a scenario runs past its last step when it
// sets no max_duration.
const DefaultTail = 10 * time.Second

var (
	ErrUnknownTrigger = errors.New("scenario: unknown trigger")
	ErrNoSize         = errors.New("scenario: width and height must be positive")
)

// Scenario is a scripted sequence of triggers.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Preset      string        `yaml:"preset"`
	Width       float64       `yaml:"width"`
	Height      float64       `yaml:"height"`
	Steps       []Step        `yaml:"steps"`
	UntilIdle   bool          `yaml:"until_idle"`
	MaxDuration time.Duration `yaml:"max_duration"`
}

// Step fires one trigger at a virtual time offset.
type Step struct {
	At      time.Duration `yaml:"at"`
	Trigger string        `yaml:"trigger"`
	Width   float64       `yaml:"width"`
	Height  float64       `yaml:"height"`
}

// durationNode reads a duration written either with a unit ("1500ms",
// "2s") or as a bare integer of milliseconds.
func durationNode(n *yaml.Node) (time.Duration, error) {
	if n.Kind == 0 {
		return 0, nil
	}
	if n.Tag == "!!int" {
		var ms int64
		if err := n.Decode(&ms); err != nil {
			return 0, err
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	var d time.Duration
	if err := n.Decode(&d); err != nil {
		return 0, fmt.Errorf("line %d: bad duration %q", n.Line, n.Value)
	}
	return d, nil
}

func (st *Step) UnmarshalYAML(n *yaml.Node) error {
	var raw struct {
		At      yaml.Node `yaml:"at"`
		Trigger string    `yaml:"trigger"`
		Width   float64   `yaml:"width"`
		Height  float64   `yaml:"height"`
	}
	if err := n.Decode(&raw); err != nil {
		return err
	}
	at, err := durationNode(&raw.At)
	if err != nil {
		return err
	}
	*st = Step{At: at, Trigger: raw.Trigger, Width: raw.Width, Height: raw.Height}
	return nil
}

func (sc *Scenario) UnmarshalYAML(n *yaml.Node) error {
	var raw struct {
		Name        string    `yaml:"name"`
		Description string    `yaml:"description"`
		Preset      string    `yaml:"preset"`
		Width       float64   `yaml:"width"`
		Height      float64   `yaml:"height"`
		Steps       []Step    `yaml:"steps"`
		UntilIdle   bool      `yaml:"until_idle"`
		MaxDuration yaml.Node `yaml:"max_duration"`
	}
	if err := n.Decode(&raw); err != nil {
		return err
	}
	maxDur, err := durationNode(&raw.MaxDuration)
	if err != nil {
		return err
	}
	*sc = Scenario{
		Name:        raw.Name,
		Description: raw.Description,
		Preset:      raw.Preset,
		Width:       raw.Width,
		Height:      raw.Height,
		Steps:       raw.Steps,
		UntilIdle:   raw.UntilIdle,
		MaxDuration: maxDur,
	}
	return nil
}

// FrameStat is the field state after one processed frame.
type FrameStat struct {
	At      time.Duration
	Program string
	field.Stats
}

// Result is the outcome of one scenario run.
type Result struct {
	Name      string
	Width     int
	Height    int
	Interval  time.Duration
	Elapsed   time.Duration
	IdleAt    time.Duration
	Frames    []FrameStat
	Metrics   map[string]float64
	Truncated bool
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks sizes and trigger names.
func (sc *Scenario) Validate() error {
	if sc.Width <= 0 || sc.Height <= 0 {
		return ErrNoSize
	}
	for i, st := range sc.Steps {
		if st.Trigger == TriggerResize {
			if st.Width <= 0 || st.Height <= 0 {
				return fmt.Errorf("step %d: %w", i+1, ErrNoSize)
			}
			continue
		}
		if _, err := surface.ParseTrigger(st.Trigger); err != nil {
			return fmt.Errorf("step %d: %w: %q", i+1, ErrUnknownTrigger, st.Trigger)
		}
	}
	return nil
}

// Default is the hover-then-leave scenario used when none is given.
func Default() *Scenario {
	return &Scenario{
		Name:   "hover",
		Width:  100,
		Height: 100,
		Steps: []Step{
			{At: 0, Trigger: "pointer-enter"},
			{At: 2 * time.Second, Trigger: "pointer-leave"},
		},
		UntilIdle:   true,
		MaxDuration: 10 * time.Second,
	}
}

// Deadline is the last virtual instant the scenario may run to.
func (sc *Scenario) Deadline() time.Duration {
	if sc.MaxDuration > 0 {
		return sc.MaxDuration
	}
	var last time.Duration
	for _, st := range sc.Steps {
		last = max(last, st.At)
	}
	return last + DefaultTail
}

// FrameFunc observes every processed frame together with the field it
// was drawn from.
type FrameFunc func(FrameStat, *field.Field)

// Run plays sc against surf. Time is virtual: the loop advances by the
// frame interval and never sleeps, so results depend only on the seed.
func Run(ctx context.Context, sc *Scenario, opts config.Options, surf surface.Surface, src pixel.Source) (*Result, error) {
	return RunWith(ctx, sc, opts, surf, src, nil)
}

// RunWith is Run with a per-frame observer.
func RunWith(ctx context.Context, sc *Scenario, opts config.Options, surf surface.Surface, src pixel.Source, onFrame FrameFunc) (*Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if surf == nil {
		surf = discard{}
	}

	a := surface.New(opts, surf, src)
	defer a.Close()
	if err := a.Resize(sc.Width, sc.Height); err != nil {
		return nil, err
	}

	steps := append([]Step(nil), sc.Steps...)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].At < steps[j].At })

	interval := opts.Interval()
	deadline := sc.Deadline()
	epoch := time.Unix(0, 0)

	res := &Result{Name: sc.Name, Interval: interval, IdleAt: -1}
	next := 0
	var t time.Duration
	for ; t <= deadline; t += interval {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		for next < len(steps) && steps[next].At <= t {
			if err := apply(a, steps[next]); err != nil {
				return res, fmt.Errorf("step %d: %w", next+1, err)
			}
			next++
		}

		wasActive := a.Active()
		before := a.Frames()
		a.Frame(epoch.Add(t))
		if a.Frames() > before {
			fs := FrameStat{
				At:      t,
				Program: a.Program().String(),
				Stats:   a.Field().Stats(),
			}
			res.Frames = append(res.Frames, fs)
			if onFrame != nil {
				onFrame(fs, a.Field())
			}
		}
		if wasActive && !a.Active() {
			res.IdleAt = t
		}

		if sc.UntilIdle && next == len(steps) && !a.Active() {
			break
		}
	}
	res.Truncated = t > deadline && a.Active()
	res.Elapsed = min(t, deadline)
	res.Width, res.Height = a.Size()
	res.Metrics = Summarize(res.Frames)
	return res, nil
}

func apply(a *surface.Adapter, st Step) error {
	if st.Trigger == TriggerResize {
		return a.Resize(st.Width, st.Height)
	}
	trig, err := surface.ParseTrigger(st.Trigger)
	if err != nil {
		return err
	}
	a.Handle(trig)
	return nil
}

// Summarize reduces frame stats to named metrics.
func Summarize(frames []FrameStat) map[string]float64 {
	m := map[string]float64{"frames": float64(len(frames))}
	if len(frames) == 0 {
		return m
	}
	var peak int
	var sum, peakSize float64
	for _, f := range frames {
		peak = max(peak, f.Active())
		sum += f.MeanSize
		peakSize = max(peakSize, f.MeanSize)
	}
	m["peak_active"] = float64(peak)
	m["peak_mean_size"] = peakSize
	m["avg_mean_size"] = sum / float64(len(frames))
	m["pixels"] = float64(frames[len(frames)-1].Pixels)
	return m
}

type discard struct{}

func (discard) SetSize(int, int, float64)                  {}
func (discard) Clear()                                     {}
func (discard) FillRect(_, _, _, _ float64, _ color.Color) {}
