// Package quantities defines the contract the KBA sweep core consumes from
// its physics collaborator. See spec.md §6 ("Quantities (physics
// oracle)"); this package deliberately carries no implementation — the
// per-cell solve and boundary initialisation are out of scope for the core
// (spec.md §1, "OUT OF SCOPE (external collaborators)").
package quantities

import "github.com/cpmech/kbasweep/internal/dims"

// Quantities is the physics oracle the sweep core calls into. Every method
// must be safe to call concurrently from multiple sweeper threads, each
// with a distinct (octant, octant_in_block) and disjoint cell range —
// the sweeper guarantees that no two concurrent calls touch the same
// vslocal tile or the same face cell (spec.md §5, "Shared resources").
type Quantities interface {
	// InitFaceXY returns the boundary value for an xy-face cell on the
	// global z-boundary. (ixG,iyG,izG) are global cell coordinates (izG is
	// -1 or dims_g.NCellZ, i.e. just outside the grid).
	InitFaceXY(ixG, iyG, izG, ie, ia, iu, octant int, dimsG dims.Dims) float64

	// InitFaceXZ is the xz-face analogue of InitFaceXY (global y-boundary).
	InitFaceXZ(ixG, iyG, izG, ie, ia, iu, octant int, dimsG dims.Dims) float64

	// InitFaceYZ is the yz-face analogue of InitFaceXY (global x-boundary).
	InitFaceYZ(ixG, iyG, izG, ie, ia, iu, octant int, dimsG dims.Dims) float64

	// Solve performs the per-cell upstream-to-downstream update in place
	// for one angle ia: it reads and writes the angle-space lane
	// vslocal[threadA*dims.NU : threadA*dims.NU+dims.NU], where threadA is
	// ia's position in the current tile of nthreadA angles, and
	// reads/writes the three face buffers at (ix,iy,iz) (local) /
	// (ixG,iyG,izG) (global). Must be a no-op when isActive is false
	// (spec.md §4.3, step 4).
	Solve(
		vslocal []float64,
		ia, threadA, nthreadA int,
		facexy, facexz, faceyz []float64,
		ixLocal, iyLocal, izLocal, ie int,
		ixG, iyG, izG int,
		octant, octantInBlock, noctantPerBlock int,
		dimsB, dimsG dims.Dims,
		isActive bool,
	)

	// FlopsPerSolve is a cost-model estimate of the floating point
	// operations of one call to Solve (one angle of one cell) for a problem
	// of dims d, used only for reporting (spec.md §6).
	FlopsPerSolve(d dims.Dims) float64
}
