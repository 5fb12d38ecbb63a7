package physics

import (
	"math"

	"github.com/san-kum/blobsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Ring is a closed loop of particles. Particle i is spring-linked to i-1 and
// i+1 (mod N) for its whole life; buffers are allocated once and reset in place.
type Ring struct {
	n          int
	radius     float64
	restLength float64
	pos        []r2.Vec
	vel        []r2.Vec
	anchors    []float64
	released   bool
}

// NewRing allocates a ring of n particles for a body of the given radius.
// Particles start collapsed at the origin; call Reset to lay them out.
func NewRing(n int, radius float64) (*Ring, error) {
	if n <= 1 {
		return nil, &dynamo.ParamError{Name: "vertices", Value: float64(n), Reason: "must be at least 2"}
	}
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, &dynamo.ParamError{Name: "radius", Value: radius, Reason: "must be positive and finite"}
	}

	r := &Ring{
		n:          n,
		radius:     radius,
		restLength: 2 * math.Pi * radius / float64(n),
		pos:        make([]r2.Vec, n),
		vel:        make([]r2.Vec, n),
		anchors:    make([]float64, n),
	}
	r.ResetAnchors()
	return r, nil
}

// Reset lays the particles evenly on the circle of radius R around the origin,
// at rest, with anchors back at R.
func (r *Ring) Reset() {
	for i := 0; i < r.n; i++ {
		s, c := math.Sincos(2 * math.Pi * float64(i) / float64(r.n))
		r.pos[i] = r2.Vec{X: r.radius * c, Y: r.radius * s}
		r.vel[i] = r2.Vec{}
	}
	r.ResetAnchors()
}

// RecordAnchors stores each particle's distance to the grab point.
func (r *Ring) RecordAnchors(grab r2.Vec) {
	for i, p := range r.pos {
		r.anchors[i] = r2.Norm(r2.Sub(p, grab))
	}
}

func (r *Ring) ResetAnchors() {
	for i := range r.anchors {
		r.anchors[i] = r.radius
	}
}

// Release drops the buffers. The ring is unusable afterwards.
func (r *Ring) Release() {
	r.pos, r.vel, r.anchors = nil, nil, nil
	r.released = true
}

func (r *Ring) Released() bool { return r.released }

func (r *Ring) Len() int             { return r.n }
func (r *Ring) Radius() float64      { return r.radius }
func (r *Ring) RestLength() float64  { return r.restLength }
func (r *Ring) Positions() []r2.Vec  { return r.pos }
func (r *Ring) Velocities() []r2.Vec { return r.vel }
func (r *Ring) Anchors() []float64   { return r.anchors }
func (r *Ring) Centroid() r2.Vec     { return dynamo.Centroid(r.pos) }
func (r *Ring) Area() float64        { return dynamo.Area(r.pos) }
func (r *Ring) RestArea() float64    { return math.Pi * r.radius * r.radius }

// Vertices returns a copy of the positions in ring order.
func (r *Ring) Vertices() []r2.Vec {
	out := make([]r2.Vec, len(r.pos))
	copy(out, r.pos)
	return out
}
