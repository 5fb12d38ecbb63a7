// Package compute provides backends for the O(N²) pairwise pressure pass.
//
// The CPU backend runs serially for small rings and fans out over worker
// goroutines for large ones:
//
//	backend := compute.NewCPUBackend(0, 256)
//	backend.Pressure(positions, params, acc)
//
// The parallel path partitions by particle: each worker owns a contiguous
// range of output slots and sums its partners in index order, so the result
// is bit-identical to the serial pass for any worker count.
package compute
