package sweeper

import (
	"github.com/cpmech/kbasweep/internal/dims"
	"github.com/cpmech/kbasweep/internal/kbaenv"
	"github.com/cpmech/kbasweep/internal/scheduler"
	"github.com/cpmech/kbasweep/quantities"
)

// Sweep drives one full sweep over every global step of sched (spec.md
// §4.6): for each step, post the neighbour face exchanges the schedule
// implies, drive the block-sweep, then wait for the exchanges to
// complete before advancing. The result is written into vo; vi and vo are
// not swapped — composing a sequence of sweeps is the caller's
// responsibility, by passing the
// previous vo back in as the next call's vi (spec.md §4.6, "swaps the
// roles of vi and vo between outer iterations").
func (s *Sweeper) Sweep(vi, vo []float64, quan quantities.Quantities, env kbaenv.Environment, sched *scheduler.Scheduler) {
	touched := make([]bool, s.cfg.NBlockZ)

	for step := 0; step < sched.NStep(); step++ {
		info := sched.Step(step)
		active := make([]OctantWork, 0, len(info.Step))
		for oib, si := range info.Step {
			if si.IsActive {
				active = append(active, OctantWork{Octant: si.Octant, OctantInBlock: oib, BlockZ: si.BlockZ})
			}
		}

		s.postExchanges(env, active, step)

		firstTouchByOIB := make(map[int]bool, len(active))
		for _, ow := range active {
			firstTouchByOIB[ow.OctantInBlock] = !touched[ow.BlockZ]
		}

		s.BlockSweep(vi, vo, quan, env, active, func(oib int) bool { return firstTouchByOIB[oib] })

		for _, ow := range active {
			touched[ow.BlockZ] = true
		}

		if err := env.Wait(); err != nil {
			panic(err) // environment errors are fatal at the core level (spec.md §7)
		}
	}
}

// postExchanges posts, for each active octant, the receive of its upstream
// x/y neighbour face (skipped when this rank owns that global boundary —
// the boundary setter fills it instead) and the send of its downstream
// face to the next rank in the pipeline (spec.md §9: "issue receives,
// then issue sends, then compute, then wait").
func (s *Sweeper) postExchanges(env kbaenv.Environment, active []OctantWork, step int) {
	for _, ow := range active {
		dirX := dims.DirX(ow.Octant)
		dirY := dims.DirY(ow.Octant)

		xUpstreamIsGlobalEdge := (dirX == dims.DirUp && env.ProcXMin()) || (dirX == dims.DirDn && env.ProcXMax())
		if !xUpstreamIsGlobalEdge {
			env.RecvFaceX(s.FaceYZ, dirX == dims.DirDn, step)
		}
		yUpstreamIsGlobalEdge := (dirY == dims.DirUp && env.ProcYMin()) || (dirY == dims.DirDn && env.ProcYMax())
		if !yUpstreamIsGlobalEdge {
			env.RecvFaceY(s.FaceXZ, dirY == dims.DirDn, step)
		}
	}
	for _, ow := range active {
		dirX := dims.DirX(ow.Octant)
		dirY := dims.DirY(ow.Octant)

		xDownstreamIsGlobalEdge := (dirX == dims.DirUp && env.ProcXMax()) || (dirX == dims.DirDn && env.ProcXMin())
		if !xDownstreamIsGlobalEdge {
			env.SendFaceX(s.FaceYZ, dirX == dims.DirUp, step)
		}
		yDownstreamIsGlobalEdge := (dirY == dims.DirUp && env.ProcYMax()) || (dirY == dims.DirDn && env.ProcYMin())
		if !yDownstreamIsGlobalEdge {
			env.SendFaceY(s.FaceXZ, dirY == dims.DirUp, step)
		}
	}
}
