package integrators

import (
	"math"

	"github.com/san-kum/blobsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// SymplecticEuler is the semi-implicit Euler step: velocity first, then
// position from the new velocity, then friction. Friction is the velocity
// factor over a whole frame; each sub-step applies Friction^dt.
type SymplecticEuler struct {
	Friction    float64
	VertexDecay float64
	BodyDecay   float64
}

func NewSymplecticEuler(friction float64) *SymplecticEuler {
	return &SymplecticEuler{Friction: friction}
}

func (e *SymplecticEuler) SetFriction(f float64) { e.Friction = f }
func (e *SymplecticEuler) Name() string          { return "euler" }

func (e *SymplecticEuler) Step(b dynamo.Body, acc []r2.Vec, dt float64) {
	pos := b.Positions()
	vel := b.Velocities()

	for i := range vel {
		vel[i].X += acc[i].X * dt
		vel[i].Y += acc[i].Y * dt
	}

	if e.VertexDecay != 0 || e.BodyDecay != 0 {
		decay(vel, e.VertexDecay*dt, e.BodyDecay*dt)
	}

	f := math.Pow(e.Friction, dt)
	for i := range pos {
		pos[i].X += vel[i].X * dt
		pos[i].Y += vel[i].Y * dt
		vel[i].X *= f
		vel[i].Y *= f
	}
}

// decay bleeds each velocity's deviation from the ring mean by rel, and the
// mean itself by body.
func decay(vel []r2.Vec, rel, body float64) {
	if len(vel) == 0 {
		return
	}
	var mean r2.Vec
	for _, v := range vel {
		mean = r2.Add(mean, v)
	}
	mean = r2.Scale(1/float64(len(vel)), mean)

	for i, v := range vel {
		d := r2.Sub(v, mean)
		vel[i].X -= d.X*rel + mean.X*body
		vel[i].Y -= d.Y*rel + mean.Y*body
	}
}
