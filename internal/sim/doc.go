// Package sim runs the blob: a [StepController] advances a ring through the
// sub-steps of one frame and enforces the stability check, and a [Session]
// is the host-facing boundary that owns the ring, the inputs and the frame
// counter.
//
// # Frame lifecycle
//
// Each AdvanceFrame takes one snapshot of the inputs, handles drag grab and
// release edges, resolves the drag command, then runs SubSteps integration
// steps of dt = 1/SubSteps. If any coordinate comes out NaN or infinite the
// frame is thrown away and the ring goes back to its circle:
//
//	Running --(non-finite state)--> Resetting --(ring.Reset)--> Running
//
// Resets are logged at warn level when a logger is attached with
// [WithLogger] and counted by [Session.Resets].
//
// # Concurrency
//
// Input setters may be called from any goroutine at any time; they only
// write the shared inputs. Frame advancement and the read accessors are
// serialised by the session. Observers and metrics run after each frame
// outside the session lock.
package sim
