package control

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
)

// Keys is the directional (keyboard) input state.
type Keys struct {
	Left, Right, Up, Down bool
}

func (k Keys) Any() bool {
	return k.Left || k.Right || k.Up || k.Down
}

// Snapshot is a consistent copy of Inputs taken once per frame.
type Snapshot struct {
	Gravity r2.Vec
	Pointer bool
	Target  r2.Vec
	Keys    Keys
}

// Inputs is the mutable control state shared between input handlers and the
// frame loop.
type Inputs struct {
	mu sync.Mutex
	s  Snapshot
}

func NewInputs() *Inputs {
	return &Inputs{s: Snapshot{Gravity: r2.Vec{Y: 1}}}
}

func (in *Inputs) SetGravity(gx, gy float64) {
	in.mu.Lock()
	in.s.Gravity = r2.Vec{X: gx, Y: gy}
	in.mu.Unlock()
}

// SetDrag sets the pointer drag state. The target is kept while inactive so a
// release does not move it.
func (in *Inputs) SetDrag(active bool, x, y float64) {
	in.mu.Lock()
	in.s.Pointer = active
	if active {
		in.s.Target = r2.Vec{X: x, Y: y}
	}
	in.mu.Unlock()
}

func (in *Inputs) SetDirectional(k Keys) {
	in.mu.Lock()
	in.s.Keys = k
	in.mu.Unlock()
}

func (in *Inputs) Snapshot() Snapshot {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.s
}
