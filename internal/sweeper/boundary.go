package sweeper

import (
	"github.com/cpmech/kbasweep/internal/dims"
	"github.com/cpmech/kbasweep/quantities"
)

// The three boundary setters of spec.md §4.2: populate the rank's upstream
// face buffer with externally supplied values on the cells of the current
// semi-block's extent that sit on the global boundary. Callers (the
// semi-block loop) have already decided that the setter applies — that
// this is the right edge for the octant's direction, that the rank owns
// that global boundary, and that the current semi-block contains the
// edge — and pass only the (already-clipped, unpadded) local cell range
// and this thread's [eLo,eHi) energy range to fill. Restricting to
// [eLo,eHi) is required: spec.md §5 partitions FaceXY/XZ/YZ writes by
// (octant_in_block, thread_e), and a thread that wrote the full energy
// range would race with every other thread_e sharing the same edge.

func (s *Sweeper) setBoundaryXY(quan quantities.Quantities, octant, octantInBlock, izG int, xLo, xHi, yLo, yHi, eLo, eHi int) {
	d := s.cfg.DimsG
	v := s.faceXYView
	for ix := xLo; ix < xHi; ix++ {
		ixG := ix + s.cfg.IXBase
		for iy := yLo; iy < yHi; iy++ {
			iyG := iy + s.cfg.IYBase
			for ie := eLo; ie < eHi; ie++ {
				for ia := 0; ia < v.NA; ia++ {
					for iu := 0; iu < dims.NU; iu++ {
						val := quan.InitFaceXY(ixG, iyG, izG, ie, ia, iu, octant, d)
						s.FaceXY[v.Index(ix, iy, ie, ia, iu, octantInBlock)] = val
					}
				}
			}
		}
	}
}

func (s *Sweeper) setBoundaryXZ(quan quantities.Quantities, octant, octantInBlock, iyG, izBase int, xLo, xHi, zLo, zHi, eLo, eHi int) {
	d := s.cfg.DimsG
	v := s.faceXZView
	for ix := xLo; ix < xHi; ix++ {
		ixG := ix + s.cfg.IXBase
		for iz := zLo; iz < zHi; iz++ {
			izG := izBase + iz
			for ie := eLo; ie < eHi; ie++ {
				for ia := 0; ia < v.NA; ia++ {
					for iu := 0; iu < dims.NU; iu++ {
						val := quan.InitFaceXZ(ixG, iyG, izG, ie, ia, iu, octant, d)
						s.FaceXZ[v.Index(ix, iz, ie, ia, iu, octantInBlock)] = val
					}
				}
			}
		}
	}
}

func (s *Sweeper) setBoundaryYZ(quan quantities.Quantities, octant, octantInBlock, ixG, izBase int, yLo, yHi, zLo, zHi, eLo, eHi int) {
	d := s.cfg.DimsG
	v := s.faceYZView
	for iy := yLo; iy < yHi; iy++ {
		iyG := iy + s.cfg.IYBase
		for iz := zLo; iz < zHi; iz++ {
			izG := izBase + iz
			for ie := eLo; ie < eHi; ie++ {
				for ia := 0; ia < v.NA; ia++ {
					for iu := 0; iu < dims.NU; iu++ {
						val := quan.InitFaceYZ(ixG, iyG, izG, ie, ia, iu, octant, d)
						s.FaceYZ[v.Index(iy, iz, ie, ia, iu, octantInBlock)] = val
					}
				}
			}
		}
	}
}
