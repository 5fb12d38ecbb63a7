package compute

import "gonum.org/v1/gonum/spatial/r2"

// PressureParams configures the pairwise repulsion pass.
type PressureParams struct {
	Radius         float64 // body radius R; the denominator is d² − R²
	Strength       float64 // pressure constant
	MinDenominator float64 // |d² − R²| is clamped up to this value
}

type Backend interface {
	Name() string
	Available() bool
	// Pressure adds the repulsion from every non-adjacent particle to acc.
	// Results must not depend on scheduling.
	Pressure(pos []r2.Vec, p PressureParams, acc []r2.Vec)
	Cleanup()
}
