package field

import (
	"image/color"
	"math"
	"sort"
	"testing"

	"github.com/san-kum/pixelcanvas/internal/pixel"
)

type fixedSource struct{ v float64 }

func (s fixedSource) Float64() float64 { return s.v }
func (s fixedSource) IntN(n int) int   { return 0 }

// floorSource keeps draws away from zero so every pixel grows in bounded time.
type floorSource struct {
	pixel.Source
	min float64
}

func (s floorSource) Float64() float64 { return math.Max(s.Source.Float64(), s.min) }

type nopPainter struct{ fills int }

func (p *nopPainter) FillRect(x, y, w, h float64, c color.Color) { p.fills++ }

var black = []pixel.Swatch{{Token: "#000000", RGBA: color.RGBA{0, 0, 0, 255}}}

func defaultOptions() Options {
	return Options{Gap: 10, Speed: 0.035, Palette: black, Variant: VariantDefault}
}

func TestNew_GridCount(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		gap           int
		expected      int
	}{
		{"square", 100, 100, 10, 100},
		{"partial cells", 101, 99, 10, 110},
		{"min gap", 40, 40, 4, 100},
		{"single", 3, 3, 5, 1},
		{"zero width", 0, 100, 10, 0},
		{"zero height", 100, 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			opts.Gap = tt.gap
			f, err := New(tt.width, tt.height, opts, pixel.NewSource(1))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Len() != tt.expected {
				t.Errorf("expected %d pixels, got %d", tt.expected, f.Len())
			}
		})
	}
}

func TestNew_FreshPixelsUniqueAndOrdered(t *testing.T) {
	f, err := New(100, 100, defaultOptions(), pixel.NewSource(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[[2]float64]bool)
	for i, p := range f.Pixels() {
		key := [2]float64{p.X(), p.Y()}
		if seen[key] {
			t.Fatalf("duplicate position %v", key)
		}
		seen[key] = true
		if p.Size() != 0 || p.IsIdle() {
			t.Errorf("pixel %d should start at size 0 and not idle", i)
		}
	}

	// x-major order
	if f.At(1).X() != 0 || f.At(1).Y() != 10 {
		t.Errorf("expected second pixel at (0,10), got (%v,%v)", f.At(1).X(), f.At(1).Y())
	}
}

func TestNew_Errors(t *testing.T) {
	opts := defaultOptions()
	opts.Palette = nil
	if _, err := New(10, 10, opts, pixel.NewSource(1)); err != pixel.ErrEmptyPalette {
		t.Errorf("expected ErrEmptyPalette, got %v", err)
	}

	if _, err := New(10, 10, defaultOptions(), nil); err != pixel.ErrNilSource {
		t.Errorf("expected ErrNilSource, got %v", err)
	}

	opts = defaultOptions()
	opts.Gap = 0
	if _, err := New(10, 10, opts, pixel.NewSource(1)); err == nil {
		t.Error("expected error for zero gap")
	}
}

func TestNew_Delays(t *testing.T) {
	f, err := New(100, 100, defaultOptions(), pixel.NewSource(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range f.Pixels() {
		want := DistanceToBottomLeft(p.X(), p.Y(), 100)
		if p.Delay() != want {
			t.Fatalf("pixel (%v,%v): delay %f, want %f", p.X(), p.Y(), p.Delay(), want)
		}
	}

	opts := defaultOptions()
	opts.Variant = VariantIcon
	f, err = New(100, 100, opts, pixel.NewSource(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range f.Pixels() {
		want := DistanceToCenter(p.X(), p.Y(), 100, 100)
		if p.Delay() != want {
			t.Fatalf("pixel (%v,%v): delay %f, want %f", p.X(), p.Y(), p.Delay(), want)
		}
	}
}

func TestDistances(t *testing.T) {
	if d := DistanceToBottomLeft(0, 100, 100); d != 0 {
		t.Errorf("bottom-left corner should be 0, got %f", d)
	}
	if d := DistanceToBottomLeft(30, 60, 100); math.Abs(d-50) > 1e-12 {
		t.Errorf("expected 50, got %f", d)
	}
	if d := DistanceToCenter(50, 50, 100, 100); d != 0 {
		t.Errorf("center should be 0, got %f", d)
	}
	if d := DistanceToCenter(80, 90, 100, 100); math.Abs(d-50) > 1e-12 {
		t.Errorf("expected 50, got %f", d)
	}
}

func TestNew_ReducedMotion(t *testing.T) {
	opts := defaultOptions()
	opts.ReducedMotion = true
	f, err := New(100, 100, opts, pixel.NewSource(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range f.Pixels() {
		if p.Delay() != 0 || p.Speed() != 0 {
			t.Fatalf("expected zero delay and speed, got delay=%f speed=%f", p.Delay(), p.Speed())
		}
	}

	// one waiting tick, then growth starts for every pixel at once
	dst := &nopPainter{}
	Tick(f, Appear, dst)
	Tick(f, Appear, dst)
	for _, p := range f.Pixels() {
		if p.Phase() == pixel.Waiting {
			t.Fatal("reduced motion should not stagger growth")
		}
	}
}

func TestTick_AppearOrderedByDelay(t *testing.T) {
	f, err := New(100, 100, defaultOptions(), fixedSource{v: 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Len() != 100 {
		t.Fatalf("expected 100 pixels, got %d", f.Len())
	}

	firstGrowth := make([]int, f.Len())
	prevSize := make([]float64, f.Len())
	dst := &nopPainter{}

	for tick := 1; tick <= 200; tick++ {
		Tick(f, Appear, dst)
		for i, p := range f.Pixels() {
			if firstGrowth[i] == 0 && p.Size() > 0 {
				firstGrowth[i] = tick
			}
			if !p.IsShimmering() && p.Size() < prevSize[i] {
				t.Fatalf("pixel %d shrank while growing", i)
			}
			if p.Counter() <= p.Delay() && p.Size() > 0 {
				t.Fatalf("pixel %d grew before its delay elapsed", i)
			}
			prevSize[i] = p.Size()
		}
	}

	idx := make([]int, f.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return f.At(idx[a]).Delay() < f.At(idx[b]).Delay() })

	for k := 1; k < len(idx); k++ {
		prev, cur := idx[k-1], idx[k]
		if firstGrowth[cur] == 0 {
			t.Fatalf("pixel %d never grew", cur)
		}
		if firstGrowth[cur] < firstGrowth[prev] {
			t.Errorf("pixel with delay %f grew at tick %d, before delay %f at tick %d",
				f.At(cur).Delay(), firstGrowth[cur], f.At(prev).Delay(), firstGrowth[prev])
		}
	}

	last := idx[len(idx)-1]
	for i := range firstGrowth {
		if firstGrowth[i] > firstGrowth[last] {
			t.Errorf("pixel %d grew after the largest-delay pixel", i)
		}
	}
}

func TestTick_DisappearFromFullSize(t *testing.T) {
	f, err := New(50, 50, defaultOptions(), floorSource{Source: pixel.NewSource(9), min: 0.05})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dst := &nopPainter{}

	for i := 0; i < 500; i++ {
		Tick(f, Appear, dst)
	}
	if s := f.Stats(); s.Shimmering != s.Pixels {
		t.Fatalf("expected every pixel shimmering, got %+v", s)
	}

	maxTicks := 0
	for _, p := range f.Pixels() {
		n := int(math.Ceil(p.MaxSize()/pixel.ShrinkStep)) + 1
		if n > maxTicks {
			maxTicks = n
		}
	}

	idle := false
	ticks := 0
	for !idle {
		idle = Tick(f, Disappear, dst)
		ticks++
		if ticks > maxTicks {
			t.Fatalf("field not idle after %d ticks", ticks)
		}
	}
	for _, p := range f.Pixels() {
		if p.Size() != 0 {
			t.Errorf("idle pixel with size %f", p.Size())
		}
	}
}

func TestStats(t *testing.T) {
	f, err := New(20, 20, defaultOptions(), pixel.NewSource(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := f.Stats()
	if s.Pixels != 4 || s.Waiting != 4 || s.Active() != 4 || s.MeanSize != 0 {
		t.Errorf("unexpected fresh stats %+v", s)
	}

	Tick(f, Disappear, &nopPainter{})
	s = f.Stats()
	if s.Idle != 4 || s.Active() != 0 {
		t.Errorf("expected all idle, got %+v", s)
	}

	empty, _ := New(0, 0, defaultOptions(), pixel.NewSource(2))
	if s := empty.Stats(); s.Pixels != 0 || s.MeanSize != 0 {
		t.Errorf("unexpected empty stats %+v", s)
	}
}

func TestParse(t *testing.T) {
	if ParseVariant("icon") != VariantIcon {
		t.Error("expected icon variant")
	}
	if ParseVariant("bogus") != VariantDefault {
		t.Error("unknown variant should fall back to default")
	}

	p, err := ParseProgram("disappear")
	if err != nil || p != Disappear {
		t.Errorf("ParseProgram(disappear) = %v, %v", p, err)
	}
	if _, err := ParseProgram("spin"); err == nil {
		t.Error("expected error for unknown program")
	}
	if Appear.String() != "appear" || Program(7).String() != "program(7)" {
		t.Error("unexpected program names")
	}
}
