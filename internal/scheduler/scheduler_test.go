package scheduler

import "testing"

func TestNStepFormula(t *testing.T) {
	s := New(Config{NProcX: 2, NProcY: 3, ProcX: 0, ProcY: 0, NBlockZ: 4, NOctantPerBlock: 8})
	// one group (noctant_per_block==8): nblock_z+nproc_x+nproc_y-2
	want := 4 + 2 + 3 - 2
	if s.NStep() != want {
		t.Fatalf("NStep()=%d, want %d", s.NStep(), want)
	}
}

func TestNStepScalesWithGroups(t *testing.T) {
	base := New(Config{NProcX: 1, NProcY: 1, NBlockZ: 2, NOctantPerBlock: 8})
	quarter := New(Config{NProcX: 1, NProcY: 1, NBlockZ: 2, NOctantPerBlock: 2})
	if quarter.NStep() != 4*base.NStep() {
		t.Fatalf("quarter.NStep()=%d, base.NStep()=%d, want 4x", quarter.NStep(), base.NStep())
	}
}

// TestEveryZBlockVisitedExactlyOnce checks that, for a single-rank problem,
// each octant visits every block_z exactly once across the group's steps
// (spec.md §8 property 6, restricted to the scheduler's own bookkeeping).
func TestEveryZBlockVisitedExactlyOnce(t *testing.T) {
	nblockZ := 5
	s := New(Config{NProcX: 1, NProcY: 1, NBlockZ: nblockZ, NOctantPerBlock: 8})
	for octant := 0; octant < 8; octant++ {
		seen := make(map[int]bool)
		for step := 0; step < s.NStep(); step++ {
			info := s.Step(step).Step[octant]
			if !info.IsActive {
				continue
			}
			if seen[info.BlockZ] {
				t.Fatalf("octant %d: block_z %d visited twice", octant, info.BlockZ)
			}
			seen[info.BlockZ] = true
		}
		if len(seen) != nblockZ {
			t.Fatalf("octant %d: visited %d of %d z-blocks", octant, len(seen), nblockZ)
		}
	}
}

// TestMultiRankPipelineMonotone checks the pipeline of spec.md §5 from each
// rank's side: on a 3x2 process grid, every rank is active for octant 0 on
// exactly nblock_z steps, and its block_z advances by one on each of them.
func TestMultiRankPipelineMonotone(t *testing.T) {
	nprocX, nprocY, nblockZ := 3, 2, 4
	octant := 0 // dir_x=UP, dir_y=UP, dir_z=UP
	for procX := 0; procX < nprocX; procX++ {
		for procY := 0; procY < nprocY; procY++ {
			s := New(Config{NProcX: nprocX, NProcY: nprocY, ProcX: procX, ProcY: procY,
				NBlockZ: nblockZ, NOctantPerBlock: 8})
			lastBlockZ := -1
			activeSteps := 0
			for step := 0; step < s.NStep(); step++ {
				info := s.Step(step).Step[octant]
				if !info.IsActive {
					continue
				}
				if info.BlockZ != lastBlockZ+1 {
					t.Fatalf("proc(%d,%d): block_z jumped from %d to %d",
						procX, procY, lastBlockZ, info.BlockZ)
				}
				lastBlockZ = info.BlockZ
				activeSteps++
			}
			if activeSteps != nblockZ {
				t.Fatalf("proc(%d,%d): active for %d steps, want %d", procX, procY, activeSteps, nblockZ)
			}
		}
	}
}

func TestInvalidConfigPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for invalid NOctantPerBlock")
		}
	}()
	New(Config{NProcX: 1, NProcY: 1, NBlockZ: 1, NOctantPerBlock: 3})
}
