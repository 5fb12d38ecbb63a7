package analysis

import (
	"context"
	"math"

	"github.com/san-kum/blobsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

// Sensitivity runs two sessions whose gravity differs by eps in x and
// returns the mean log growth rate of their largest vertex separation per
// frame. Frames where either run reset are skipped.
func Sensitivity(ctx context.Context, s sim.Settings, frames int, eps float64) (float64, error) {
	a, err := sim.NewSession(s)
	if err != nil {
		return 0, err
	}
	defer a.Teardown()
	b, err := sim.NewSession(s)
	if err != nil {
		return 0, err
	}
	defer b.Teardown()

	if err := b.SetGravity(eps, 1); err != nil {
		return 0, err
	}

	sumLog := 0.0
	count := 0
	for f := 1; f <= frames; f++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := a.AdvanceFrame(); err != nil {
			return 0, err
		}
		if err := b.AdvanceFrame(); err != nil {
			return 0, err
		}

		va, _ := a.Vertices()
		vb, _ := b.Vertices()
		sep := 0.0
		for i := range va {
			sep = math.Max(sep, r2.Norm(r2.Sub(va[i], vb[i])))
		}
		if sep > 0 {
			sumLog += math.Log(sep/eps) / float64(f)
			count++
		}
	}

	if count == 0 || a.Resets() != 0 || b.Resets() != 0 {
		return 0, nil
	}
	return sumLog / float64(count), nil
}
