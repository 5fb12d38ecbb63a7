package physics

import (
	"math"

	"github.com/san-kum/blobsim/internal/compute"
	"github.com/san-kum/blobsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// ForceModel sums the per-particle accelerations of a soft ring: neighbor
// springs, pairwise pressure, gravity, soft boundaries, enclosed-area pressure
// and drag. Each axis of the sum is clamped to ±AccelCap.
type ForceModel struct {
	params  Params
	backend compute.Backend
}

// NewForceModel runs pressure on a CPU backend sized by p.Workers and
// p.ParallelAt until WithBackend replaces it.
func NewForceModel(p Params) *ForceModel {
	return &ForceModel{params: p, backend: compute.NewCPUBackend(p.Workers, p.ParallelAt)}
}

// WithBackend routes the pressure pass through b.
func (f *ForceModel) WithBackend(b compute.Backend) *ForceModel {
	f.backend = b
	return f
}

func (f *ForceModel) Params() Params { return f.params }

func (f *ForceModel) GetParams() map[string]float64 { return f.params.GetParams() }

// SetParam changes one constant. An invalid value leaves the model unchanged.
func (f *ForceModel) SetParam(name string, value float64) error {
	return f.params.SetParam(name, value)
}

// Accelerate overwrites acc with the capped acceleration of every particle.
func (f *ForceModel) Accelerate(b dynamo.Body, u dynamo.Control, acc []r2.Vec) {
	pos := b.Positions()
	n := len(pos)
	for i := range acc[:n] {
		acc[i] = r2.Vec{}
	}

	f.springs(b, acc)

	if f.params.Pressure != 0 {
		f.backend.Pressure(pos, compute.PressureParams{
			Radius:         b.Radius(),
			Strength:       f.params.Pressure,
			MinDenominator: f.params.MinDenominator,
		}, acc)
	}

	if f.params.AreaPressure != 0 {
		f.areaPressure(b, acc)
	}

	g := r2.Scale(f.params.Gravity, u.Gravity)
	for i := 0; i < n; i++ {
		acc[i] = r2.Add(acc[i], g)
		acc[i] = r2.Add(acc[i], f.boundary(pos[i]))
	}

	if u.Dragging {
		f.drag(b, u, acc)
	}

	limit := f.params.AccelCap
	for i := 0; i < n; i++ {
		acc[i].X = dynamo.Cap(acc[i].X, limit)
		acc[i].Y = dynamo.Cap(acc[i].Y, limit)
	}
}

// springs pulls each particle toward its two ring neighbours with
// magnitude (d² − rest²)·Tension.
func (f *ForceModel) springs(b dynamo.Body, acc []r2.Vec) {
	pos := b.Positions()
	n := len(pos)
	rest2 := b.RestLength() * b.RestLength()
	k := f.params.Tension

	for i := 0; i < n; i++ {
		p := pos[i]
		for _, j := range [2]int{dynamo.Wrap(i-1, n), dynamo.Wrap(i+1, n)} {
			if j == i {
				continue
			}
			dx := pos[j].X - p.X
			dy := pos[j].Y - p.Y
			mag := (dx*dx + dy*dy - rest2) * k
			c, s := dynamo.Direction(dx, dy)
			acc[i].X += mag * c
			acc[i].Y += mag * s
		}
	}
}

// areaPressure pushes particles out along the local edge normal while the
// enclosed area is below the resting area πR².
func (f *ForceModel) areaPressure(b dynamo.Body, acc []r2.Vec) {
	pos := b.Positions()
	n := len(pos)
	if n < 3 {
		return
	}

	rest := math.Pi * b.Radius() * b.Radius()
	area := dynamo.Area(pos)
	if area >= rest {
		return
	}
	if floor := rest * 1e-3; area < floor {
		area = floor
	}
	mag := f.params.AreaPressure * (rest/area - 1)

	for i := 0; i < n; i++ {
		t := r2.Sub(pos[dynamo.Wrap(i+1, n)], pos[dynamo.Wrap(i-1, n)])
		l := r2.Norm(t)
		if l == 0 || math.IsNaN(l) {
			continue
		}
		acc[i].X += mag * t.Y / l
		acc[i].Y -= mag * t.X / l
	}
}

// boundary is the soft floor at +HalfHeight and, with Walls set, the side
// walls and ceiling. Overshoot is pushed back proportionally.
func (f *ForceModel) boundary(p r2.Vec) r2.Vec {
	var a r2.Vec
	k := f.params.Bounce
	floor := f.params.HalfHeight
	if p.Y > floor {
		a.Y -= (p.Y - floor) * k
	}
	if !f.params.Walls {
		return a
	}
	if p.Y < -floor {
		a.Y -= (p.Y + floor) * k
	}
	if w := f.params.HalfWidth; p.X > w {
		a.X -= (p.X - w) * k
	} else if p.X < -w {
		a.X -= (p.X + w) * k
	}
	return a
}

// drag pulls every particle toward the target. Particles grabbed close to the
// target (small anchor) are weighted more and settle at their anchor distance,
// so the grabbed region leads and the far side trails.
//
// A target sitting exactly on a particle has no direction. The resulting NaN
// is left for the stability check unless u.SkipCoincident is set.
func (f *ForceModel) drag(b dynamo.Body, u dynamo.Control, acc []r2.Vec) {
	target := u.Target
	pos := b.Positions()
	anchors := b.Anchors()
	r := b.Radius()
	k := f.params.DragTension

	for i := range pos {
		delta := r2.Sub(target, pos[i])
		d := r2.Norm(delta)
		if d == 0 && u.SkipCoincident {
			continue
		}
		w := r / (r + anchors[i])
		mag := k * w * (d - anchors[i])
		acc[i].X += mag * delta.X / d
		acc[i].Y += mag * delta.Y / d
	}
}
