package integrators

import (
	"math"

	"github.com/san-kum/blobsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Verlet is the position-delta variant: the new position comes from the
// previous displacement and the acceleration, and velocity is reconstructed
// from the displacement afterwards. Friction is per frame, like SymplecticEuler.
type Verlet struct {
	Friction float64
}

func NewVerlet(friction float64) *Verlet {
	return &Verlet{Friction: friction}
}

func (v *Verlet) SetFriction(f float64) { v.Friction = f }
func (v *Verlet) Name() string          { return "verlet" }

func (v *Verlet) Step(b dynamo.Body, acc []r2.Vec, dt float64) {
	pos := b.Positions()
	vel := b.Velocities()
	dt2 := dt * dt
	f := math.Pow(v.Friction, dt)

	for i := range pos {
		prev := pos[i]
		pos[i].X += vel[i].X*dt*f + acc[i].X*dt2
		pos[i].Y += vel[i].Y*dt*f + acc[i].Y*dt2
		vel[i].X = (pos[i].X - prev.X) / dt
		vel[i].Y = (pos[i].Y - prev.Y) / dt
	}
}
