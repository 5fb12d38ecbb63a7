// Package dynamo provides the core primitives shared by the soft-body kernel.
//
// A soft body is a ring of particles held together by springs. The package
// defines the seams between the pieces that move it:
//
//   - [Body]: the particle buffers (positions, velocities, drag anchors)
//   - [Control]: the control inputs resolved once per displayed frame
//   - [ForceField]: produces one acceleration per particle
//   - [Integrator]: advances a body by one sub-step
//   - [Metric] and [Observer]: consume a [FrameReport] after every frame
//
// Positions and accelerations are gonum [r2.Vec] values held in contiguous
// slices; a body never reallocates its buffers after construction.
//
// # Example
//
//	ring, _ := physics.NewRing(50, 100)
//	forces := physics.NewForceModel(tuning)
//	integ := integrators.NewSymplecticEuler(0.99)
//	acc := make([]r2.Vec, ring.Len())
//	forces.Accelerate(ring, u, acc)
//	integ.Step(ring, acc, 1.0/40)
//
// # Thread Safety
//
// Bodies, force fields and integrators are NOT thread-safe. The session in
// package sim serializes access to them.
package dynamo
