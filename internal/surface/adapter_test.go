package surface_test

import (
	"image/color"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pixelcanvas/internal/config"
	"github.com/san-kum/pixelcanvas/internal/field"
	"github.com/san-kum/pixelcanvas/internal/pixel"
	"github.com/san-kum/pixelcanvas/internal/surface"
)

type fakeSurface struct {
	width, height int
	dpr           float64
	sizes         int
	clears        int
	fills         int
}

func (s *fakeSurface) SetSize(width, height int, dpr float64) {
	s.width, s.height, s.dpr = width, height, dpr
	s.sizes++
}

func (s *fakeSurface) Clear() { s.clears++ }

func (s *fakeSurface) FillRect(x, y, w, h float64, c color.Color) { s.fills++ }

func options(mutate func(*config.Config)) config.Options {
	cfg := config.DefaultConfig()
	cfg.Gap = 10
	cfg.Colors = "#000000"
	if mutate != nil {
		mutate(cfg)
	}
	opts, err := cfg.Options()
	Expect(err).NotTo(HaveOccurred())
	return opts
}

// clock hands out timestamps exactly one interval apart.
type clock struct {
	now  time.Time
	step time.Duration
}

func (c *clock) tick() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

func runUntilIdle(a *surface.Adapter, c *clock, limit int) int {
	frames := 0
	for a.Frame(c.tick()) {
		frames++
		if frames > limit {
			break
		}
	}
	return frames
}

var _ = Describe("Adapter", func() {
	var (
		surf *fakeSurface
		a    *surface.Adapter
		clk  *clock
	)

	BeforeEach(func() {
		surf = &fakeSurface{}
		a = surface.New(options(nil), surf, pixel.NewSource(1))
		clk = &clock{now: time.Unix(0, 0), step: time.Second / 60}
	})

	Describe("Resize", func() {
		It("builds a 10x10 field for a 100x100 surface at gap 10", func() {
			Expect(a.Resize(100, 100)).To(Succeed())
			Expect(a.Field().Len()).To(Equal(100))
			Expect(surf.width).To(Equal(100))
			Expect(surf.height).To(Equal(100))
			for _, p := range a.Field().Pixels() {
				Expect(p.Size()).To(BeZero())
				Expect(p.IsIdle()).To(BeFalse())
			}
		})

		It("floors fractional sizes", func() {
			Expect(a.Resize(99.9, 50.5)).To(Succeed())
			w, h := a.Size()
			Expect(w).To(Equal(99))
			Expect(h).To(Equal(50))
		})

		It("ignores zero measurements", func() {
			Expect(a.Resize(0, 100)).To(Succeed())
			Expect(a.Field()).To(BeNil())
			Expect(surf.sizes).To(BeZero())
		})

		It("keeps the field when the size is unchanged", func() {
			Expect(a.Resize(100, 100)).To(Succeed())
			before := a.Field()
			Expect(a.Resize(100, 100)).To(Succeed())
			Expect(a.Field()).To(BeIdenticalTo(before))
		})

		It("rebuilds from scratch on every change", func() {
			Expect(a.Resize(100, 100)).To(Succeed())
			a.Handle(surface.PointerEnter)
			runUntilIdle(a, clk, 30)

			Expect(a.Resize(60, 40)).To(Succeed())
			Expect(a.Field().Len()).To(Equal(24))
			for _, p := range a.Field().Pixels() {
				Expect(p.Size()).To(BeZero())
				Expect(p.Phase()).To(Equal(pixel.Waiting))
			}
			Expect(a.Active()).To(BeTrue())
		})

		It("passes the device pixel ratio to the surface", func() {
			a = surface.New(options(func(c *config.Config) { c.DPR = 2 }), surf, pixel.NewSource(1))
			Expect(a.Resize(30, 20)).To(Succeed())
			Expect(surf.dpr).To(Equal(2.0))
		})
	})

	Describe("triggers", func() {
		BeforeEach(func() {
			Expect(a.Resize(100, 100)).To(Succeed())
		})

		It("maps pointer and focus events to programs", func() {
			a.Handle(surface.PointerEnter)
			Expect(a.Active()).To(BeTrue())
			Expect(a.Program()).To(Equal(field.Appear))

			a.Handle(surface.PointerLeave)
			Expect(a.Program()).To(Equal(field.Disappear))

			a.Handle(surface.FocusIn)
			Expect(a.Program()).To(Equal(field.Appear))

			a.Handle(surface.FocusOut)
			Expect(a.Program()).To(Equal(field.Disappear))
		})

		It("ignores focus events when focus is disabled", func() {
			a = surface.New(options(func(c *config.Config) { c.NoFocus = true }), surf, pixel.NewSource(1))
			Expect(a.Resize(100, 100)).To(Succeed())

			a.Handle(surface.FocusIn)
			Expect(a.Active()).To(BeFalse())

			a.Handle(surface.PlayAppear)
			Expect(a.Active()).To(BeTrue())
		})

		It("keeps appearing forever because shimmer never idles", func() {
			a.Handle(surface.PointerEnter)
			frames := runUntilIdle(a, clk, 500)
			Expect(frames).To(BeNumerically(">", 500))
			Expect(a.Active()).To(BeTrue())
		})

		It("stops once every pixel has disappeared", func() {
			a.Handle(surface.PointerEnter)
			runUntilIdle(a, clk, 200)

			a.Handle(surface.PointerLeave)
			runUntilIdle(a, clk, 500)
			Expect(a.Active()).To(BeFalse())
			Expect(a.Field().Stats().Idle).To(Equal(100))
		})

		It("preempts a running program without resetting pixels", func() {
			a.Handle(surface.PointerEnter)
			runUntilIdle(a, clk, 100)
			sizes := make([]float64, a.Field().Len())
			for i, p := range a.Field().Pixels() {
				sizes[i] = p.Size()
			}

			a.Handle(surface.PointerLeave)
			Expect(a.Frame(clk.tick())).To(BeTrue())
			for i, p := range a.Field().Pixels() {
				if sizes[i] > 0 {
					Expect(p.Size()).To(BeNumerically("~", max(0, sizes[i]-pixel.ShrinkStep), 1e-9))
				}
			}
		})
	})

	Describe("frame throttling", func() {
		BeforeEach(func() {
			Expect(a.Resize(20, 20)).To(Succeed())
			a.Handle(surface.PointerEnter)
		})

		It("skips frames that arrive early", func() {
			start := time.Unix(100, 0)
			a.Frame(start)
			Expect(a.Frames()).To(Equal(1))

			a.Frame(start.Add(5 * time.Millisecond))
			Expect(a.Frames()).To(Equal(1))

			a.Frame(start.Add(17 * time.Millisecond))
			Expect(a.Frames()).To(Equal(2))
			Expect(surf.clears).To(Equal(2))
		})
	})

	Describe("disabled instances", func() {
		It("treats a missing surface as permanently disabled", func() {
			a = surface.New(options(nil), nil, pixel.NewSource(1))
			Expect(a.Disabled()).To(BeTrue())
			Expect(a.Resize(100, 100)).To(Succeed())
			a.Handle(surface.PointerEnter)
			Expect(a.Active()).To(BeFalse())
			Expect(a.Frame(clk.tick())).To(BeFalse())
		})

		It("releases everything on Close", func() {
			Expect(a.Resize(100, 100)).To(Succeed())
			a.Handle(surface.PointerEnter)
			a.Close()

			Expect(a.Active()).To(BeFalse())
			Expect(a.Frame(clk.tick())).To(BeFalse())
			a.Handle(surface.PointerEnter)
			Expect(a.Active()).To(BeFalse())
			Expect(surf.clears).To(BeZero())
		})
	})

	Describe("reduced motion", func() {
		It("grows every pixel without stagger", func() {
			a = surface.New(options(func(c *config.Config) { c.ReducedMotion = true }), surf, pixel.NewSource(4))
			Expect(a.Resize(100, 100)).To(Succeed())
			a.Handle(surface.PointerEnter)

			a.Frame(clk.tick())
			a.Frame(clk.tick())
			Expect(a.Field().Stats().Waiting).To(BeZero())
			for _, p := range a.Field().Pixels() {
				Expect(p.Delay()).To(BeZero())
				Expect(p.Speed()).To(BeZero())
			}
		})
	})
})

var _ = Describe("Trigger", func() {
	It("round trips names", func() {
		for _, t := range []surface.Trigger{
			surface.PointerEnter, surface.PointerLeave, surface.FocusIn,
			surface.FocusOut, surface.PlayAppear, surface.PlayDisappear,
		} {
			parsed, err := surface.ParseTrigger(t.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(t))
		}
		_, err := surface.ParseTrigger("hover")
		Expect(err).To(HaveOccurred())
	})
})
