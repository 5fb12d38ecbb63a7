// Package control holds the external control state of a blob and turns it
// into the per-frame [dynamo.Control] the force model consumes.
//
// Input collaborators write to an [Inputs] at any time; writes are
// last-write-wins and never wait on a running frame. At the start of each
// frame the session takes a [Snapshot] and calls [Resolve] once:
//
//	in := control.NewInputs()
//	in.SetDirectional(control.Keys{Right: true})
//	u := control.Resolve(in.Snapshot(), centroid, radius)
//	// u.Dragging, u.Target now describe a nudge to the right
//
// [GravityFromOrientation] maps device tilt angles onto a gravity vector.
package control
