// Package scheduler implements the KBA step schedule: spec.md §4.1. Given
// a rank's coordinates in the process grid and the problem's z-blocking,
// it enumerates the global steps of the sweep and reports, for each
// octant_in_block slot, which octant is being processed, which z-block,
// and whether the rank is active this step.
package scheduler

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/kbasweep/internal/dims"
)

// StepInfo is the work for one rank on one (step, octant_in_block), per
// spec.md §3.
type StepInfo struct {
	Octant   int  // 0..7
	BlockZ   int  // 0..NBlockZ-1, meaningless if !IsActive
	IsActive bool
}

// StepInfoAll is the set of StepInfo values for one global step, one per
// octant_in_block slot (spec.md §3).
type StepInfoAll struct {
	Step []StepInfo // length NOctantPerBlock
}

// Config is the configuration the scheduler needs: the process grid shape,
// this rank's coordinates, and the block/octant-grouping parameters.
type Config struct {
	NProcX, NProcY  int
	ProcX, ProcY    int
	NBlockZ         int
	NOctantPerBlock int // must divide dims.NOctant; one of 1,2,4,8
}

// Scheduler answers step-schedule queries for one rank (spec.md §4.1).
type Scheduler struct {
	cfg        Config
	nGroups    int
	nStepGroup int
}

// New validates cfg and builds a Scheduler. Configuration errors (spec.md
// §7.1) panic with a diagnostic naming the offending parameter, matching
// the gofem/ele constructor idiom (e.g. ele/factory.go's chk.Panic calls).
func New(cfg Config) *Scheduler {
	if cfg.NProcX <= 0 {
		chk.Panic("NProcX must be positive, got %d", cfg.NProcX)
	}
	if cfg.NProcY <= 0 {
		chk.Panic("NProcY must be positive, got %d", cfg.NProcY)
	}
	if cfg.ProcX < 0 || cfg.ProcX >= cfg.NProcX {
		chk.Panic("ProcX=%d out of range [0,%d)", cfg.ProcX, cfg.NProcX)
	}
	if cfg.ProcY < 0 || cfg.ProcY >= cfg.NProcY {
		chk.Panic("ProcY=%d out of range [0,%d)", cfg.ProcY, cfg.NProcY)
	}
	if cfg.NBlockZ <= 0 {
		chk.Panic("NBlockZ must be positive, got %d", cfg.NBlockZ)
	}
	switch cfg.NOctantPerBlock {
	case 1, 2, 4, 8:
	default:
		chk.Panic("NOctantPerBlock must be one of 1,2,4,8, got %d", cfg.NOctantPerBlock)
	}

	nGroups := dims.NOctant / cfg.NOctantPerBlock
	nStepGroup := cfg.NBlockZ + cfg.NProcX + cfg.NProcY - 2

	return &Scheduler{cfg: cfg, nGroups: nGroups, nStepGroup: nStepGroup}
}

// NStep returns the total number of global steps for one sweep: spec.md
// §4.1, "nblock_z + nproc_x + nproc_y - 2 per octant-group, summed over
// the octant-group schedule".
func (s *Scheduler) NStep() int {
	return s.nGroups * s.nStepGroup
}

// NStepPerGroup returns the number of steps one octant-group's pipeline
// takes to drain.
func (s *Scheduler) NStepPerGroup() int {
	return s.nStepGroup
}

// Step returns the StepInfoAll for global step s (0 <= s < NStep()).
func (s *Scheduler) Step(step int) StepInfoAll {
	if step < 0 || step >= s.NStep() {
		chk.Panic("step %d out of range [0,%d)", step, s.NStep())
	}
	group := step / s.nStepGroup
	sLocal := step % s.nStepGroup
	noct := s.cfg.NOctantPerBlock

	infos := make([]StepInfo, noct)
	for k := 0; k < noct; k++ {
		octant := group*noct + k
		infos[k] = s.stepInfoFor(octant, sLocal)
	}
	return StepInfoAll{Step: infos}
}

// stepInfoFor computes the StepInfo for a single octant at local step
// sLocal within its group's pipeline, per the diagonal-wave construction
// of spec.md §4.1: this rank's distance into the x/y wavefront offsets
// when it starts seeing each z-block.
func (s *Scheduler) stepInfoFor(octant, sLocal int) StepInfo {
	dirX := dims.DirX(octant)
	dirY := dims.DirY(octant)
	dirZ := dims.DirZ(octant)

	distX := s.cfg.ProcX
	if dirX == dims.DirDn {
		distX = s.cfg.NProcX - 1 - s.cfg.ProcX
	}
	distY := s.cfg.ProcY
	if dirY == dims.DirDn {
		distY = s.cfg.NProcY - 1 - s.cfg.ProcY
	}

	blockIndex := sLocal - distX - distY
	isActive := blockIndex >= 0 && blockIndex < s.cfg.NBlockZ
	blockZ := 0
	if isActive {
		blockZ = blockIndex
		if dirZ == dims.DirDn {
			blockZ = s.cfg.NBlockZ - 1 - blockIndex
		}
	}

	return StepInfo{Octant: octant, BlockZ: blockZ, IsActive: isActive}
}
