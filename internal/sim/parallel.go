package sim

import (
	"context"
	"sync"

	"github.com/san-kum/blobsim/internal/dynamo"
)

// Ensemble runs independent sessions with the same settings concurrently.
// Each run gets its own session, so nothing is shared between goroutines.
type Ensemble struct {
	settings  Settings
	numRuns   int
	seedStart int64
	opts      []Option
	metrics   func() []dynamo.Metric
}

func NewEnsemble(s Settings, numRuns int, seedStart int64, opts ...Option) *Ensemble {
	return &Ensemble{settings: s, numRuns: numRuns, seedStart: seedStart, opts: opts}
}

// WithMetrics gives every run a fresh set of metrics from newMetrics.
func (e *Ensemble) WithMetrics(newMetrics func() []dynamo.Metric) *Ensemble {
	e.metrics = newMetrics
	return e
}

// Run drives every session for frames frames. drive receives the run's seed.
func (e *Ensemble) Run(ctx context.Context, frames int, drive func(seed int64) Driver) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			sess, err := NewSession(e.settings, e.opts...)
			if err != nil {
				errs[idx] = err
				return
			}
			defer sess.Teardown()

			if e.metrics != nil {
				for _, m := range e.metrics() {
					sess.AddMetric(m)
				}
			}

			var d Driver
			if drive != nil {
				d = drive(e.seedStart + int64(idx))
			}
			results[idx], errs[idx] = Run(ctx, sess, RunConfig{Frames: frames, Drive: d})
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
