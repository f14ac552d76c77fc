package sweeper

import (
	"github.com/cpmech/kbasweep/internal/dims"
	"github.com/cpmech/kbasweep/internal/kbaenv"
	"github.com/cpmech/kbasweep/internal/threadteam"
	"github.com/cpmech/kbasweep/quantities"
)

// OctantWork is one octant_in_block slot's assignment for a block-sweep
// call: which octant it is and which z-block (spec.md §3 StepInfo,
// restricted to the active entries of one StepInfoAll).
type OctantWork struct {
	Octant        int
	OctantInBlock int
	BlockZ        int
}

// BlockSweep drives the semi-block / sub-block wavefront decomposition of
// spec.md §4.4-4.5 for one global step's active octants, then invokes the
// per-cell kernel (§4.3) in the correct order. isFirstTouch reports, for
// an active octant_in_block slot, whether this call is this sweep's first
// to touch that slot's target block_z (see DoBlockInit's doc).
func (s *Sweeper) BlockSweep(vi, vo []float64, quan quantities.Quantities, env kbaenv.Environment, work []OctantWork, isFirstTouch func(octantInBlock int) bool) {
	byOIB := make(map[int]OctantWork, len(work))
	for _, w := range work {
		byOIB[w.OctantInBlock] = w
	}
	doInit := NewBlockInit(isFirstTouch, s.cfg.NSemiblock, s.cfg.NOctantPerBlock)
	splitX, splitY, splitZ := splitAxesFromNSemiblock(s.cfg.NSemiblock)

	g := s.cfg.Geometry
	s.team.Run(func(id threadteam.ThreadID, sync *threadteam.Sync) {
		scratch := s.scratch[s.threadIndex(id)]
		oibLo := id.Octant * s.cfg.NOctantPerBlock / g.NThreadOctant
		oibHi := (id.Octant + 1) * s.cfg.NOctantPerBlock / g.NThreadOctant
		eLo := id.E * s.cfg.Dims.NE / g.NThreadE
		eHi := (id.E + 1) * s.cfg.Dims.NE / g.NThreadE

		for sblk := 0; sblk < s.cfg.NSemiblock; sblk++ {
			for oib := oibLo; oib < oibHi; oib++ {
				ow, active := byOIB[oib]
				if !active {
					continue
				}
				doBlockInitThis := doInit.Get(s.cfg.NSemiblock, sblk, ow.OctantInBlock)
				s.sweepSemiblockOctant(vi, vo, quan, env, ow, sblk, doBlockInitThis,
					splitX, splitY, splitZ, eLo, eHi, id, scratch, sync)
			}
			sync.SyncOctantThreads()
		}
	})
}

// splitAxesFromNSemiblock reports which axes the semi-block decomposition
// halves, per spec.md §4.4 ("x with >=2 octant threads, y with >=4, z with
// =8"): the first log2(nsemiblock) axes in (x,y,z) order.
func splitAxesFromNSemiblock(nsemiblock int) (splitX, splitY, splitZ bool) {
	switch nsemiblock {
	case 2:
		return true, false, false
	case 4:
		return true, true, false
	case 8:
		return true, true, true
	default:
		return false, false, false
	}
}

// axisRange computes, for one axis of one semi-block half, the exact
// (unpadded) cell range — used for boundary setters and for the
// is_elt_active mask — and the thread-uniform (possibly padded) range used
// to size the sub-block wavefront (spec.md §4.5, "round the upper bound up
// by one").
func axisRange(nCell int, split, low bool) (trueLo, trueHi, paddedLo, paddedHi int) {
	if !split {
		return 0, nCell, 0, nCell
	}
	half := (nCell + 1) / 2 // low half gets the larger (or equal) share
	if low {
		return 0, half, 0, half
	}
	return half, nCell, half, half + half
}

// sweepSemiblockOctant handles one (semiblock, octant_in_block) combination
// for one thread: applies the boundary setters if this combination owns a
// global-boundary edge, then drives the sub-block wavefront over this
// thread's (thread_y, thread_z) lane.
func (s *Sweeper) sweepSemiblockOctant(
	vi, vo []float64, quan quantities.Quantities, env kbaenv.Environment,
	ow OctantWork, sblk int, doBlockInitThis bool,
	splitX, splitY, splitZ bool, eLo, eHi int,
	id threadteam.ThreadID, scratch *threadScratch, sync *threadteam.Sync,
) {
	dirX := dims.DirX(ow.Octant)
	dirY := dims.DirY(ow.Octant)
	dirZ := dims.DirZ(ow.Octant)

	lowX := ((sblk>>0)&1 == 0) == (dirX == dims.DirUp)
	lowY := ((sblk>>1)&1 == 0) == (dirY == dims.DirUp)
	lowZ := ((sblk>>2)&1 == 0) == (dirZ == dims.DirUp)

	d := s.cfg.DimsB
	trueXLo, trueXHi, padXLo, padXHi := axisRange(d.NCellX, splitX, lowX)
	trueYLo, trueYHi, padYLo, padYHi := axisRange(d.NCellY, splitY, lowY)
	trueZLo, trueZHi, padZLo, padZHi := axisRange(d.NCellZ, splitZ, lowZ)

	izBase := ow.BlockZ * d.NCellZ

	if id.Y == 0 && id.Z == 0 {
		s.applyBoundaries(quan, env, ow, dirX, dirY, dirZ, lowX, lowY, lowZ,
			izBase, trueXLo, trueXHi, trueYLo, trueYHi, trueZLo, trueZHi, eLo, eHi)
	}
	sync.SyncYZThreads()

	s.sweepSubblockWavefront(vi, vo, quan, ow, doBlockInitThis, dirX, dirY, dirZ,
		eLo, eHi, izBase,
		trueXLo, trueXHi, padXLo, padXHi,
		trueYLo, trueYHi, padYLo, padYHi,
		trueZLo, trueZHi, padZLo, padZHi,
		id, scratch, sync)
}

func (s *Sweeper) applyBoundaries(
	quan quantities.Quantities, env kbaenv.Environment, ow OctantWork,
	dirX, dirY, dirZ dims.Dir, lowX, lowY, lowZ bool,
	izBase int, trueXLo, trueXHi, trueYLo, trueYHi, trueZLo, trueZHi, eLo, eHi int,
) {
	dg := s.cfg.DimsG

	zEdge := (dirZ == dims.DirUp && ow.BlockZ == 0) || (dirZ == dims.DirDn && ow.BlockZ == s.cfg.NBlockZ-1)
	zContains := (dirZ == dims.DirUp && lowZ) || (dirZ == dims.DirDn && !lowZ)
	if zEdge && zContains {
		izG := -1
		if dirZ == dims.DirDn {
			izG = dg.NCellZ
		}
		s.setBoundaryXY(quan, ow.Octant, ow.OctantInBlock, izG, trueXLo, trueXHi, trueYLo, trueYHi, eLo, eHi)
	}

	yEdge := (dirY == dims.DirUp && env.ProcYMin()) || (dirY == dims.DirDn && env.ProcYMax())
	yContains := (dirY == dims.DirUp && lowY) || (dirY == dims.DirDn && !lowY)
	if yEdge && yContains {
		iyG := -1
		if dirY == dims.DirDn {
			iyG = dg.NCellY
		}
		s.setBoundaryXZ(quan, ow.Octant, ow.OctantInBlock, iyG, izBase, trueXLo, trueXHi, trueZLo, trueZHi, eLo, eHi)
	}

	xEdge := (dirX == dims.DirUp && env.ProcXMin()) || (dirX == dims.DirDn && env.ProcXMax())
	xContains := (dirX == dims.DirUp && lowX) || (dirX == dims.DirDn && !lowX)
	if xEdge && xContains {
		ixG := -1
		if dirX == dims.DirDn {
			ixG = dg.NCellX
		}
		s.setBoundaryYZ(quan, ow.Octant, ow.OctantInBlock, ixG, izBase, trueYLo, trueYHi, trueZLo, trueZHi, eLo, eHi)
	}
}

// sweepSubblockWavefront implements the stacked-wavefront schedule of
// spec.md §4.4 for one (thread_y, thread_z) lane.
func (s *Sweeper) sweepSubblockWavefront(
	vi, vo []float64, quan quantities.Quantities, ow OctantWork, doBlockInitThis bool,
	dirX, dirY, dirZ dims.Dir, eLo, eHi, izBase int,
	trueXLo, trueXHi, padXLo, padXHi int,
	trueYLo, trueYHi, padYLo, padYHi int,
	trueZLo, trueZHi, padZLo, padZHi int,
	id threadteam.ThreadID, scratch *threadScratch, sync *threadteam.Sync,
) {
	cfg := s.cfg
	nthreadY := cfg.Geometry.NThreadY
	nthreadZ := cfg.Geometry.NThreadZ

	nsubblockX := dims.IDivUp(padXHi-padXLo, cfg.NCellXPerSubblock)
	nsubblockY := dims.IDivUp(padYHi-padYLo, cfg.NCellYPerSubblock)
	nsubblockZ := dims.IDivUp(padZHi-padZLo, cfg.NCellZPerSubblock)

	nchunkY := dims.IDivUp(nsubblockY, nthreadY)
	nchunkZ := dims.IDivUp(nsubblockZ, nthreadZ)
	nchunkYZ := nchunkY * nchunkZ

	nsubblockXPerChunkUp := nsubblockX
	if nthreadY > nsubblockXPerChunkUp {
		nsubblockXPerChunkUp = nthreadY
	}
	if t := dims.IDivUp(nthreadZ, nchunkY); t > nsubblockXPerChunkUp {
		nsubblockXPerChunkUp = t
	}

	nsxStackedTotal := nchunkYZ * nsubblockXPerChunkUp
	nwave := nsxStackedTotal + (nthreadY - 1) + (nthreadZ - 1)

	for w := 0; w < nwave; w++ {
		sxStacked := w - id.Y - id.Z
		active := sxStacked >= 0 && sxStacked < nsxStackedTotal

		if active {
			sxRaw := sxStacked
			if dirX != dims.DirUp {
				sxRaw = nsxStackedTotal - 1 - sxStacked
			}
			sx := sxRaw % nsubblockXPerChunkUp

			chunkYZ := sxStacked / nsubblockXPerChunkUp
			var chunkY, chunkZ int
			if dirZ == dims.DirUp {
				chunkZ = chunkYZ / nchunkY
			} else {
				chunkZ = (nchunkYZ - 1 - chunkYZ) / nchunkY
			}
			if dirY == dims.DirUp {
				chunkY = chunkYZ % nchunkY
			} else {
				chunkY = (nchunkYZ - 1 - chunkYZ) % nchunkY
			}

			inY := id.Y
			if dirY != dims.DirUp {
				inY = nthreadY - 1 - id.Y
			}
			sy := chunkY*nthreadY + inY

			inZ := id.Z
			if dirZ != dims.DirUp {
				inZ = nthreadZ - 1 - id.Z
			}
			sz := chunkZ*nthreadZ + inZ

			if sx < 0 || sx >= nsubblockX || sy < 0 || sy >= nsubblockY || sz < 0 || sz >= nsubblockZ {
				active = false
			} else {
				ixBeg := padXLo + sx*cfg.NCellXPerSubblock
				ixEnd := min(ixBeg+cfg.NCellXPerSubblock, padXHi)
				iyBeg := padYLo + sy*cfg.NCellYPerSubblock
				iyEnd := min(iyBeg+cfg.NCellYPerSubblock, padYHi)
				izBeg := padZLo + sz*cfg.NCellZPerSubblock
				izEnd := min(izBeg+cfg.NCellZPerSubblock, padZHi)

				s.sweepSubblockCells(vi, vo, quan, ow, doBlockInitThis, dirX, dirY, dirZ,
					eLo, eHi, izBase, ixBeg, ixEnd, iyBeg, iyEnd, izBeg, izEnd,
					trueXLo, trueXHi, trueYLo, trueYHi, trueZLo, trueZHi, scratch, sync)
			}
		}

		sync.SyncYZThreads()
	}
}

// sweepSubblockCells walks one active sub-block's cells in sweep order
// (spec.md §4.4, "ix from ixbeg to ixend with step dir_inc_x... likewise y,
// z") and invokes the per-cell kernel, masking cells outside the current
// semi-block's true (unpadded) extent.
func (s *Sweeper) sweepSubblockCells(
	vi, vo []float64, quan quantities.Quantities, ow OctantWork, doBlockInitThis bool,
	dirX, dirY, dirZ dims.Dir, eLo, eHi, izBase int,
	ixBeg, ixEnd, iyBeg, iyEnd, izBegLocal, izEndLocal int,
	trueXLo, trueXHi, trueYLo, trueYHi, trueZLo, trueZHi int,
	scratch *threadScratch, sync *threadteam.Sync,
) {
	for ie := eLo; ie < eHi; ie++ {
		iterRange(ixBeg, ixEnd, dirX, func(ix int) {
			xActive := ix >= trueXLo && ix < trueXHi
			iterRange(iyBeg, iyEnd, dirY, func(iy int) {
				yActive := iy >= trueYLo && iy < trueYHi
				iterRange(izBegLocal, izEndLocal, dirZ, func(izLocal int) {
					zActive := izLocal >= trueZLo && izLocal < trueZHi
					ca := cellArgs{
						octant:        ow.Octant,
						octantInBlock: ow.OctantInBlock,
						ie:            ie,
						ix:            ix,
						iy:            iy,
						izLocal:       izLocal,
						izBase:        izBase,
						doBlockInit:   doBlockInitThis,
						isEltActive:   xActive && yActive && zActive,
					}
					s.sweepCell(vi, vo, quan, ca, scratch, sync)
				})
			})
		})
	}
}

// iterRange calls fn for every index in [lo,hi), ascending if dir is
// DirUp, descending otherwise (spec.md §4.4's "dir_inc_x").
func iterRange(lo, hi int, dir dims.Dir, fn func(i int)) {
	if dir == dims.DirUp {
		for i := lo; i < hi; i++ {
			fn(i)
		}
		return
	}
	for i := hi - 1; i >= lo; i-- {
		fn(i)
	}
}
