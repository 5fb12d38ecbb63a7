package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Body is the particle buffer a force field reads and an integrator advances.
// The returned slices are the live buffers, indexed in ring order.
type Body interface {
	Len() int
	Radius() float64
	RestLength() float64
	Positions() []r2.Vec
	Velocities() []r2.Vec
	Anchors() []float64
}

// Control is the input snapshot used for every sub-step of one frame.
type Control struct {
	Gravity  r2.Vec
	Dragging bool
	Target   r2.Vec

	// SkipCoincident leaves particles sitting exactly on Target unpulled.
	SkipCoincident bool
}

type ForceField interface {
	Accelerate(b Body, u Control, acc []r2.Vec)
}

type Integrator interface {
	Step(b Body, acc []r2.Vec, dt float64)
}

// FrameReport describes one completed (or discarded) frame.
type FrameReport struct {
	Frame    int
	Vertices []r2.Vec
	Centroid r2.Vec
	Control  Control
	Reset    bool
	Err      error
}

// Configurable exposes named float parameters for live tuning.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Metric interface {
	Name() string
	Observe(r FrameReport)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(r FrameReport)
}

// Finite reports whether both components are neither NaN nor infinite.
func Finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// FirstNonFinite returns the index of the first non-finite vector, or -1.
func FirstNonFinite(vs []r2.Vec) int {
	for i, v := range vs {
		if !Finite(v) {
			return i
		}
	}
	return -1
}

// Centroid returns the arithmetic mean of vs.
func Centroid(vs []r2.Vec) r2.Vec {
	if len(vs) == 0 {
		return r2.Vec{}
	}
	var c r2.Vec
	for _, v := range vs {
		c.X += v.X
		c.Y += v.Y
	}
	n := float64(len(vs))
	return r2.Vec{X: c.X / n, Y: c.Y / n}
}

// Area returns the signed shoelace area of the closed polygon vs.
func Area(vs []r2.Vec) float64 {
	n := len(vs)
	area := 0.0
	for i := 0; i < n; i++ {
		a, b := vs[i], vs[(i+1)%n]
		area += a.X*b.Y - a.Y*b.X
	}
	return area / 2
}

// Cap clamps x into [-limit, limit]. NaN passes through unchanged.
func Cap(x, limit float64) float64 {
	if x > limit {
		return limit
	}
	if x < -limit {
		return -limit
	}
	return x
}

// Wrap returns n modulo m in [0, m).
func Wrap(n, m int) int {
	return ((n % m) + m) % m
}

// Direction is the unit vector along (dx, dy), the (cos, sin) of its angle.
// A zero vector maps to (1, 0); non-finite input stays non-finite.
func Direction(dx, dy float64) (c, s float64) {
	d := math.Hypot(dx, dy)
	if d == 0 {
		return 1, 0
	}
	return dx / d, dy / d
}
