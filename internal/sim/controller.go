package sim

import (
	"github.com/charmbracelet/log"
	"github.com/san-kum/blobsim/internal/dynamo"
	"github.com/san-kum/blobsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// StepController advances a ring by one displayed frame: a fixed number of
// sub-steps under one control snapshot, then the stability check.
type StepController struct {
	ring     *physics.Ring
	forces   dynamo.ForceField
	integ    dynamo.Integrator
	subSteps int
	dt       float64
	acc      []r2.Vec
	state    State
	resets   int
	logger   *log.Logger

	// held is set when a drag caused a reset and stays set while the same
	// target is held.
	held   bool
	heldAt r2.Vec
}

func NewStepController(ring *physics.Ring, forces dynamo.ForceField, integ dynamo.Integrator, subSteps int, logger *log.Logger) *StepController {
	return &StepController{
		ring:     ring,
		forces:   forces,
		integ:    integ,
		subSteps: subSteps,
		dt:       1 / float64(subSteps),
		acc:      make([]r2.Vec, ring.Len()),
		logger:   logger,
	}
}

func (c *StepController) State() State { return c.state }
func (c *StepController) Resets() int  { return c.resets }
func (c *StepController) Dt() float64  { return c.dt }

// Advance runs one frame. If the result is not finite the frame is dropped,
// the ring is reset to its circle, and the report says so.
//
// After a reset under an active drag, particles landing exactly on the same
// held target are skipped by the drag force, so a pointer resting on a
// canonical position does not reset every frame.
func (c *StepController) Advance(frame int, u dynamo.Control) dynamo.FrameReport {
	if c.held && (!u.Dragging || u.Target != c.heldAt) {
		c.held = false
	}
	applied := u
	applied.SkipCoincident = c.held

	for k := 0; k < c.subSteps; k++ {
		c.forces.Accelerate(c.ring, applied, c.acc)
		c.integ.Step(c.ring, c.acc, c.dt)
	}

	report := dynamo.FrameReport{Frame: frame, Control: u}

	if bad := c.check(); bad >= 0 {
		c.state = Resetting
		c.ring.Reset()
		c.resets++
		report.Reset = true
		report.Err = &dynamo.DivergenceError{Frame: frame, Particle: bad}
		c.logger.Warn("frame discarded", "frame", frame, "particle", bad, "resets", c.resets)
		if u.Dragging {
			c.held, c.heldAt = true, u.Target
		}
		c.state = Running
	}

	report.Vertices = c.ring.Vertices()
	report.Centroid = dynamo.Centroid(report.Vertices)
	return report
}

// check returns the first particle with a non-finite position or velocity.
func (c *StepController) check() int {
	if i := dynamo.FirstNonFinite(c.ring.Positions()); i >= 0 {
		return i
	}
	return dynamo.FirstNonFinite(c.ring.Velocities())
}
