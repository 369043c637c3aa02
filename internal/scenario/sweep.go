package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/san-kum/pixelcanvas/internal/config"
	"github.com/san-kum/pixelcanvas/internal/pixel"
)

var ErrUnknownParam = errors.New("scenario: unknown sweep parameter")

// SweepResult summarizes one run of a parameter sweep.
type SweepResult struct {
	Value      float64
	Frames     int
	PeakActive int
	IdleAt     time.Duration
}

// Sweep reruns sc once per value of param ("gap" or "speed") with the same
// seed so only the parameter varies.
func Sweep(ctx context.Context, sc *Scenario, base *config.Config, param string, values []float64, seed uint64) ([]SweepResult, error) {
	results := make([]SweepResult, 0, len(values))
	for i, v := range values {
		cfg := *base
		switch param {
		case "gap":
			cfg.Gap = int(v)
		case "speed":
			cfg.Speed = v
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownParam, param)
		}

		opts, err := cfg.Options()
		if err != nil {
			return results, err
		}
		res, err := Run(ctx, sc, opts, nil, pixel.NewSource(seed))
		if err != nil {
			return results, fmt.Errorf("sweep %s=%g: %w", param, v, err)
		}

		results = append(results, SweepResult{
			Value:      v,
			Frames:     len(res.Frames),
			PeakActive: int(res.Metrics["peak_active"]),
			IdleAt:     res.IdleAt,
		})
		log.Printf("SWEEP | %d/%d %s=%g frames=%d idle_at=%s", i+1, len(values), param, v, len(res.Frames), res.IdleAt)
	}
	return results, nil
}

// TrialResult is one seeded run.
type TrialResult struct {
	Seed      uint64
	Frames    int
	IdleAt    time.Duration
	Truncated bool
}

// RunTrials reruns sc with n consecutive seeds starting at seed. Trials
// run concurrently; results keep seed order.
func RunTrials(ctx context.Context, sc *Scenario, opts config.Options, n int, seed uint64) ([]TrialResult, error) {
	results := make([]TrialResult, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			s := seed + uint64(idx)
			res, err := Run(ctx, sc, opts, nil, pixel.NewSource(s))
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx] = TrialResult{
				Seed:      s,
				Frames:    len(res.Frames),
				IdleAt:    res.IdleAt,
				Truncated: res.Truncated,
			}
		}(i)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", i, err)
		}
	}
	return results, nil
}

// TrialStats returns the range and mean of the idle times of the trials
// that reached idle, and how many did not.
func TrialStats(results []TrialResult) (lo, hi, mean time.Duration, unsettled int) {
	var sum time.Duration
	n := 0
	for _, r := range results {
		if r.IdleAt < 0 {
			unsettled++
			continue
		}
		if n == 0 || r.IdleAt < lo {
			lo = r.IdleAt
		}
		hi = max(hi, r.IdleAt)
		sum += r.IdleAt
		n++
	}
	if n > 0 {
		mean = sum / time.Duration(n)
	}
	return
}
