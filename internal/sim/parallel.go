package sim

import (
	"context"
	"sync"
)

// Builder creates an independent driver for one ensemble member.
type Builder func(seed int64) (*Driver, error)

// Ensemble runs several independently seeded sessions concurrently.
type Ensemble struct {
	build     Builder
	numRuns   int
	seedStart int64
}

func NewEnsemble(build Builder, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

type RunResult struct {
	Seed    int64
	Ticks   uint64
	Metrics map[string]float64
}

// Run advances every member for ticks steps of dt and collects the final
// metric values.
func (e *Ensemble) Run(ctx context.Context, dt float64, ticks int) ([]RunResult, error) {
	results := make([]RunResult, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := e.seedStart + int64(idx)
			d, err := e.build(seed)
			if err != nil {
				errs[idx] = err
				return
			}
			defer d.Close()

			if err := Run(ctx, d, NewFixedClock(dt), ticks, nil); err != nil {
				errs[idx] = err
				return
			}
			results[idx] = RunResult{Seed: seed, Ticks: d.Tick(), Metrics: d.Metrics()}
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
