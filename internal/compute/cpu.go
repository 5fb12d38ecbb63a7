package compute

import (
	"math"
	"runtime"

	"github.com/san-kum/blobsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultParallelThreshold is the ring size at which the pressure pass fans out.
const DefaultParallelThreshold = 256

type CPUBackend struct {
	workers   int
	threshold int
}

// NewCPUBackend returns a backend that goes parallel once a ring has at least
// threshold particles. Zero values pick NumCPU workers and the default threshold.
func NewCPUBackend(workers, threshold int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if threshold <= 0 {
		threshold = DefaultParallelThreshold
	}
	return &CPUBackend{workers: workers, threshold: threshold}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}

func (c *CPUBackend) Pressure(pos []r2.Vec, p PressureParams, acc []r2.Vec) {
	n := len(pos)
	if n < 4 {
		// every other particle is a spring neighbor
		return
	}

	if n < c.threshold || c.workers <= 1 {
		pressureRange(pos, p, acc, 0, n)
		return
	}

	dynamo.ParallelFor(n, c.threshold/c.workers+1, c.workers, func(start, end int) {
		pressureRange(pos, p, acc, start, end)
	})
}

// pressureRange accumulates into acc[i] for i in [start, end) only, visiting j in
// ascending order, so the sum for each particle is the same whatever the split.
func pressureRange(pos []r2.Vec, p PressureParams, acc []r2.Vec, start, end int) {
	n := len(pos)
	r2R := p.Radius * p.Radius
	scale := p.Strength / float64(n)

	for i := start; i < end; i++ {
		prev, next := dynamo.Wrap(i-1, n), dynamo.Wrap(i+1, n)
		xi, yi := pos[i].X, pos[i].Y
		var ax, ay float64

		for j := 0; j < n; j++ {
			if j == i || j == prev || j == next {
				continue
			}

			dx := pos[j].X - xi
			dy := pos[j].Y - yi
			den := clampDenominator(dx*dx+dy*dy-r2R, p.MinDenominator)

			c, s := dynamo.Direction(dx, dy)
			f := -scale / den
			ax += f * c
			ay += f * s
		}

		acc[i].X += ax
		acc[i].Y += ay
	}
}

// clampDenominator keeps |den| >= min while preserving its sign; zero counts as positive.
func clampDenominator(den, min float64) float64 {
	if math.Abs(den) >= min {
		return den
	}
	if den < 0 {
		return -min
	}
	return min
}
