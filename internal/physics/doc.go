// Package physics holds the soft body itself: a [Ring] of particles and the
// [ForceModel] that drives it.
//
// The ring's topology is fixed at construction. Particle i is joined to i-1
// and i+1 (mod N) and nothing ever changes that; only positions, velocities
// and drag anchors evolve. The force model is a pure function of the ring and
// a [dynamo.Control] snapshot:
//
//	ring, _ := physics.NewRing(50, 40)
//	ring.Reset()
//	fm := physics.NewForceModel(physics.DefaultParams())
//	acc := make([]r2.Vec, ring.Len())
//	fm.Accelerate(ring, dynamo.Control{Gravity: r2.Vec{Y: 1}}, acc)
//
// Integration lives in package integrators; frame stepping and divergence
// recovery live in package sim.
package physics
