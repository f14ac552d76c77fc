// Package refquan implements a reference Quantities (spec.md §6): vacuum
// streaming through a medium with a constant total cross-section and an
// isotropic in-scatter fraction, plus an optional exogenous source and
// incident boundary flux, coupled cell-to-cell through the sweeper's face
// buffers (the upwind-read/downwind-write half of the per-cell contract,
// spec.md §6 "given upstream face values, and write-through to downstream
// face cells"). It exists for the end-to-end scenarios and the CLI's
// self-test, not for the sweep core itself (spec.md §1, "OUT OF SCOPE
// (external collaborators)"), the way gofem/ana's analytical solutions
// exist only for its tests.
package refquan

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/kbasweep/internal/dims"
)

// Quantities is a constant-coefficient transport medium: every cell
// attenuates its incoming angular flux by exp(-SigmaTotal*CellWidth) (the
// step/exponential scheme for vacuum streaming with a uniform removal
// cross-section) and replaces the attenuated fraction with an isotropic
// in-scatter term plus an exogenous source.
type Quantities struct {
	SigmaTotal  float64 // removal (absorption+scatter) cross-section, per unit length
	ScatterFrac float64 // fraction of removed flux returned isotropically, in [0,1]
	CellWidth   float64 // uniform cell width along the sweep direction

	// Source is the exogenous emission density S(x,y,z) added every cell,
	// evaluated at t=0 (the core has no notion of time, spec.md §1). Nil
	// means no source.
	Source fun.Func

	// BoundaryFlux is the incident flux at a global boundary face. Nil
	// means vacuum (zero incoming flux), the default minisweep test case.
	BoundaryFlux fun.Func

	transmission float64 // exp(-SigmaTotal*CellWidth), cached by Init
}

// Init validates the coefficients and caches the per-cell transmission
// factor, in the gofem/ele constructor-validates-then-caches style.
func (q *Quantities) Init() {
	if q.SigmaTotal < 0 {
		chk.Panic("SigmaTotal must be non-negative, got %g", q.SigmaTotal)
	}
	if q.ScatterFrac < 0 || q.ScatterFrac > 1 {
		chk.Panic("ScatterFrac must be in [0,1], got %g", q.ScatterFrac)
	}
	if q.CellWidth <= 0 {
		chk.Panic("CellWidth must be positive, got %g", q.CellWidth)
	}
	q.transmission = math.Exp(-q.SigmaTotal * q.CellWidth)
}

func (q *Quantities) boundaryValue(ixG, iyG, izG, ie, ia, iu, octant int) float64 {
	if q.BoundaryFlux == nil {
		return 0
	}
	x := []float64{float64(ixG), float64(iyG), float64(izG)}
	return q.BoundaryFlux.F(0, x)
}

// InitFaceXY, InitFaceXZ, InitFaceYZ all delegate to the same incident-flux
// closure: a constant-coefficient medium has no face-orientation-dependent
// boundary behaviour of its own.
func (q *Quantities) InitFaceXY(ixG, iyG, izG, ie, ia, iu, octant int, dimsG dims.Dims) float64 {
	return q.boundaryValue(ixG, iyG, izG, ie, ia, iu, octant)
}
func (q *Quantities) InitFaceXZ(ixG, iyG, izG, ie, ia, iu, octant int, dimsG dims.Dims) float64 {
	return q.boundaryValue(ixG, iyG, izG, ie, ia, iu, octant)
}
func (q *Quantities) InitFaceYZ(ixG, iyG, izG, ie, ia, iu, octant int, dimsG dims.Dims) float64 {
	return q.boundaryValue(ixG, iyG, izG, ie, ia, iu, octant)
}

// Solve applies the attenuate-and-replenish update to every lane of this
// angle's tile, reading the upwind incident flux off all three face
// buffers and writing the outgoing flux back through them for the next
// cell along each axis to pick up (the reused-face-buffer coupling
// boundary.go's boundary setters seed and sweeper.Sweeper.sweepCell
// threads through facexy/facexz/faceyz): v <- upwind*transmission +
// (1-transmission)*(scatter*v + source), where upwind is the mean of the
// three incident face values and v is this lane's own pre-update value
// standing in for the isotropic scattering moment (the real scattering
// source would come from the previous iteration's moments, out of scope
// for a reference medium with no iteration history of its own). Must be
// a no-op when isActive is false (spec.md §4.3 step 4).
func (q *Quantities) Solve(
	vslocal []float64,
	ia, threadA, nthreadA int,
	facexy, facexz, faceyz []float64,
	ixLocal, iyLocal, izLocal, ie int,
	ixG, iyG, izG int,
	octant, octantInBlock, noctantPerBlock int,
	dimsB, dimsG dims.Dims,
	isActive bool,
) {
	if !isActive {
		return
	}
	var s float64
	if q.Source != nil {
		x := []float64{float64(ixG), float64(iyG), float64(izG)}
		s = q.Source.F(0, x)
	}

	fxy := dims.FaceView{NA: dimsB.NA, NOctantPerBlock: noctantPerBlock, NA1: dimsB.NCellX, NA2: dimsB.NCellY, NE: dimsB.NE}
	fxz := dims.FaceView{NA: dimsB.NA, NOctantPerBlock: noctantPerBlock, NA1: dimsB.NCellX, NA2: dimsB.NCellZ, NE: dimsB.NE}
	fyz := dims.FaceView{NA: dimsB.NA, NOctantPerBlock: noctantPerBlock, NA1: dimsB.NCellY, NA2: dimsB.NCellZ, NE: dimsB.NE}

	base := threadA * dims.NU
	for iu := 0; iu < dims.NU; iu++ {
		xyIdx := fxy.Index(ixLocal, iyLocal, ie, ia, iu, octantInBlock)
		xzIdx := fxz.Index(ixLocal, izLocal, ie, ia, iu, octantInBlock)
		yzIdx := fyz.Index(iyLocal, izLocal, ie, ia, iu, octantInBlock)

		upwind := (facexy[xyIdx] + facexz[xzIdx] + faceyz[yzIdx]) / 3
		v := vslocal[base+iu]
		inscatter := q.ScatterFrac*v + s
		vOut := upwind*q.transmission + (1-q.transmission)*inscatter

		vslocal[base+iu] = vOut
		facexy[xyIdx] = vOut
		facexz[xzIdx] = vOut
		faceyz[yzIdx] = vOut
	}
}

// FlopsPerSolve estimates the cost of one Solve call (one angle of one
// cell): 4 flops per unknown (one multiply-add for transmission, one for
// in-scatter) times the dims.NU unknowns the call updates. The driver
// multiplies it by the number of Solve calls a sweep makes (cells x energy
// groups x angles x octants), the shape of src_common/main.c's run() flop
// formula (spec.md §6, "used only for reporting").
func (q *Quantities) FlopsPerSolve(d dims.Dims) float64 {
	return float64(dims.NU) * 4
}
