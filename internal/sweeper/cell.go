package sweeper

import (
	"github.com/cpmech/kbasweep/internal/dims"
	"github.com/cpmech/kbasweep/internal/threadteam"
	"github.com/cpmech/kbasweep/quantities"
)

// cellArgs bundles a single cell invocation's coordinates and flags,
// grounded on Sweeper_sweep_cell's parameter list in the original kernels
// (sweeper_kba_c_kernels.h), collapsed to one value instead of threading a
// dozen scalars through every call (spec.md §9).
type cellArgs struct {
	octant, octantInBlock int
	ie, ix, iy, izLocal   int
	izBase                int // absolute z of the current block's origin
	doBlockInit           bool
	isEltActive           bool
}

// sweepCell is the per-cell kernel of spec.md §4.3: moment->angle
// transform, per-cell solve, angle->moment transform, store to vo. vi and
// vo are addressed with the rank's full Dims (z is never rank-split, so a
// cell's absolute z is simply izBase+izLocal).
//
// scratch is this goroutine's thread-local tiles (vilocal, vslocal,
// volocal), sized once at sweeper construction (spec.md §5) rather than
// allocated per cell.
func (s *Sweeper) sweepCell(vi, vo []float64, quan quantities.Quantities, a cellArgs, scratch *threadScratch, sy *threadteam.Sync) {
	na := s.cfg.DimsB.NA
	const nm = dims.NM
	const nu = dims.NU
	ntA := s.cfg.Geometry.NThreadA
	ntM := s.cfg.Geometry.NThreadM

	sv := dims.StateView{D: s.cfg.Dims}
	izAbs := a.izBase + a.izLocal
	ixG := a.ix + s.cfg.IXBase
	iyG := a.iy + s.cfg.IYBase
	izG := izAbs

	vilocal := scratch.vilocal // width NThreadM*NU
	vslocal := scratch.vslocal // width NThreadA*NU
	volocal := scratch.volocal // width NM*NU, persists across ia_base tiles

	for iaBase := 0; iaBase < na; iaBase += ntA {
		for imBase := 0; imBase < nm; imBase += ntM {
			if imBase != 0 {
				sy.SyncAMUThreads()
			}

			// step 2: load vi tile
			for tm := 0; tm < ntM; tm++ {
				im := imBase + tm
				if im >= nm || !a.isEltActive {
					continue
				}
				for iu := 0; iu < nu; iu++ {
					vilocal[tm*nu+iu] = vi[sv.Index(a.ix, a.iy, izAbs, a.ie, im, iu)]
				}
			}

			sy.SyncAMUThreads()

			// step 3: moment->angle transform
			for ta := 0; ta < ntA; ta++ {
				ia := iaBase + ta
				if ia >= na || !a.isEltActive {
					continue
				}
				var v [dims.NU]float64
				for tm := 0; tm < ntM; tm++ {
					im := imBase + tm
					if im >= nm {
						continue
					}
					aVal := s.aFromM[dims.AFromMIndex(na, im, ia, a.octant)]
					for iu := 0; iu < nu; iu++ {
						v[iu] += aVal * vilocal[tm*nu+iu]
					}
				}
				if imBase == 0 {
					copy(vslocal[ta*nu:ta*nu+nu], v[:])
				} else {
					for iu := 0; iu < nu; iu++ {
						vslocal[ta*nu+iu] += v[iu]
					}
				}
			}
		}

		// step 4: per-cell solve, one call per angle in this tile
		for ta := 0; ta < ntA; ta++ {
			ia := iaBase + ta
			quan.Solve(vslocal, ia, ta, ntA, s.FaceXY, s.FaceXZ, s.FaceYZ,
				a.ix, a.iy, a.izLocal, a.ie, ixG, iyG, izG,
				a.octant, a.octantInBlock, s.cfg.NOctantPerBlock,
				s.cfg.DimsB, s.cfg.DimsG, a.isEltActive && ia < na)
		}

		sy.SyncAMUThreads()

		// step 5: angle->moment transform, masked over out-of-range angles
		for im := 0; im < nm; im++ {
			if !a.isEltActive {
				continue
			}
			var w [dims.NU]float64
			for ta := 0; ta < ntA; ta++ {
				ia := iaBase + ta
				mask := ia < na
				var mVal float64
				if mask {
					mVal = s.mFromA[dims.MFromAIndex(nm, na, im, ia, a.octant)]
				}
				for iu := 0; iu < nu; iu++ {
					if mask {
						w[iu] += mVal * vslocal[ta*nu+iu]
					}
				}
			}
			if iaBase == 0 {
				copy(volocal[im*nu:im*nu+nu], w[:])
			} else {
				for iu := 0; iu < nu; iu++ {
					volocal[im*nu+iu] += w[iu]
				}
			}
		}
	}

	// step 6: store to vo, after the last angle tile
	if !a.isEltActive {
		return
	}
	for im := 0; im < nm; im++ {
		for iu := 0; iu < nu; iu++ {
			idx := sv.Index(a.ix, a.iy, izAbs, a.ie, im, iu)
			if a.doBlockInit {
				vo[idx] = volocal[im*nu+iu]
			} else {
				vo[idx] += volocal[im*nu+iu]
			}
		}
	}
}

// threadScratch is one goroutine's per-cell working memory, grounded on
// spec.md §3 "vilocal, vslocal, volocal... per-thread scratch allocated
// once at sweeper construction".
type threadScratch struct {
	vilocal []float64 // NThreadM * NU
	vslocal []float64 // NThreadA * NU
	volocal []float64 // NM * NU
}

func newThreadScratch(geom threadteam.Geometry) *threadScratch {
	return &threadScratch{
		vilocal: make([]float64, geom.NThreadM*dims.NU),
		vslocal: make([]float64, geom.NThreadA*dims.NU),
		volocal: make([]float64, dims.NM*dims.NU),
	}
}
