package sim

import (
	"context"
	"sync"
	"time"
)

// Builder constructs an independent simulation for one ensemble member.
type Builder func(seed int64) (*Simulation, error)

// Ensemble steps several independent simulations concurrently. Each
// simulation is confined to its own goroutine, so no state is shared.
type Ensemble struct {
	build     Builder
	numRuns   int
	seedStart int64
}

type RunResult struct {
	Seed      int64
	Frames    int
	Live      int
	Pooled    int
	Fallbacks int
	Elapsed   time.Duration
}

func NewEnsemble(build Builder, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, frames int) ([]RunResult, error) {
	results := make([]RunResult, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := e.seedStart + int64(idx)
			s, err := e.build(seed)
			if err != nil {
				errs[idx] = err
				return
			}

			start := time.Now()
			n, err := s.Run(ctx, frames)
			results[idx] = RunResult{
				Seed:      seed,
				Frames:    n,
				Live:      s.Count(),
				Pooled:    s.PoolSize(""),
				Fallbacks: s.Fallbacks(),
				Elapsed:   time.Since(start),
			}
			errs[idx] = err
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
