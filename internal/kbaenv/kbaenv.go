// Package kbaenv implements the "Environment" external contract of
// spec.md §6: process-grid geometry, synchronized timing, a global sum,
// and neighbour face-buffer exchange. The real binary uses the MPI-backed
// implementation (github.com/cpmech/gosl/mpi, the same package a gofem
// run-loop uses for Start/Stop/IsOn/Rank/Size); tests and single-rank
// runs use the in-process Local implementation.
package kbaenv

import "time"

// Environment is the contract the sweep core consumes from its
// distributed-execution collaborator (spec.md §6 "Environment").
type Environment interface {
	NProcX() int
	NProcY() int
	ProcXThis() int
	ProcYThis() int

	ProcXMin() bool
	ProcXMax() bool
	ProcYMin() bool
	ProcYMax() bool

	// SyncedTime returns a timer value synchronised across ranks (a
	// barrier followed by a timestamp), per spec.md §6 "synced_time()".
	SyncedTime() time.Duration

	// SumD returns the global sum of x across all ranks (spec.md §6
	// "sum_d").
	SumD(x float64) float64

	// SendFaceX/RecvFaceX/SendFaceY/RecvFaceY exchange one rank's
	// slice of a face buffer with its (proc_x,proc_y) neighbour in the x
	// or y direction, for a given (step, octant_in_block). dirIsPlus
	// selects which neighbour (proc+1 or proc-1). Implementations must
	// not block a send before the matching receive has been posted
	// (spec.md §9, "never block on a send before its matching receive is
	// posted").
	SendFaceX(buf []float64, dirIsPlus bool, tag int) error
	RecvFaceX(buf []float64, dirIsPlus bool, tag int) error
	SendFaceY(buf []float64, dirIsPlus bool, tag int) error
	RecvFaceY(buf []float64, dirIsPlus bool, tag int) error

	// Wait blocks until all exchanges posted via Send/Recv above for this
	// step have completed (spec.md §4.6 step 4).
	Wait() error
}
