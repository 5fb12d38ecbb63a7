package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/blobsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Driver sets a session's inputs before frame n.
type Driver func(s *Session, frame int) error

type RunConfig struct {
	Frames int
	Drive  Driver
}

// Run advances s headlessly for cfg.Frames frames, collecting the centroid
// trace, discarded-frame errors and final metric values.
func Run(ctx context.Context, s *Session, cfg RunConfig) (*Result, error) {
	if cfg.Frames <= 0 {
		return nil, fmt.Errorf("frames must be positive, got %d", cfg.Frames)
	}

	s.mu.Lock()
	metrics := s.metrics
	s.mu.Unlock()
	for _, m := range metrics {
		m.Reset()
	}

	result := &Result{
		Centroids: make([]r2.Vec, 0, cfg.Frames),
		Metrics:   make(map[string]float64),
	}
	startResets := s.Resets()

	err := RunWithCallback(ctx, s, cfg.Frames, cfg.Drive, func(r dynamo.FrameReport) bool {
		result.Frames++
		result.Centroids = append(result.Centroids, r.Centroid)
		if r.Err != nil {
			result.Errors = append(result.Errors, r.Err)
		}
		return true
	})
	if err != nil {
		return result, err
	}

	result.Resets = s.Resets() - startResets
	if result.Final, err = s.Vertices(); err != nil {
		return result, err
	}
	for _, m := range metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

// RunWithCallback advances s frame by frame, handing each report to callback
// until it returns false, the frame count is reached or ctx is done.
func RunWithCallback(ctx context.Context, s *Session, frames int, drive Driver, callback func(dynamo.FrameReport) bool) error {
	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if drive != nil {
			if err := drive(s, i); err != nil {
				return fmt.Errorf("frame %d: drive: %w", i, err)
			}
		}
		if err := s.Step(); err != nil {
			return err
		}

		report, err := s.Snapshot()
		if err != nil {
			return err
		}
		if !callback(report) {
			return nil
		}
	}
	return nil
}
