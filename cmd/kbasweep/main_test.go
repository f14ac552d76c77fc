package main

import (
	"testing"

	"github.com/cpmech/kbasweep/internal/kbaenv"
)

// the 6 end-to-end scenarios of spec.md §8, each run against a single
// in-process rank (kbaenv.NewLocalGrid(1,1), no real MPI needed).

func TestScenario1_SmallProblemConverges(t *testing.T) {
	env := kbaenv.NewLocalGrid(1, 1).Env(0, 0)
	argv := []string{"-nx", "3", "-ny", "5", "-nz", "6", "-ne", "2", "-na", "5", "-nblock_z", "2", "-nproc_x", "1", "-niterations", "1"}
	rd := run(env, argv)
	if rd.normsqdiff != 0 {
		t.Fatalf("normsqdiff=%v, want 0 (PASS)", rd.normsqdiff)
	}
}

func TestScenario2_RepeatedRunsAgree(t *testing.T) {
	env := kbaenv.NewLocalGrid(1, 1).Env(0, 0)
	argv := []string{"-nx", "3", "-ny", "5", "-nz", "6", "-ne", "2", "-na", "5", "-nblock_z", "2", "-nproc_x", "1", "-niterations", "1"}
	rd1 := run(env, argv)
	rd2 := run(env, argv)
	if rd1.normsq != rd2.normsq {
		t.Fatalf("normsq differs across repeated runs: %v != %v", rd1.normsq, rd2.normsq)
	}
}

func TestScenario3_StableAcrossOctantThreadCounts(t *testing.T) {
	base := []string{"-nx", "5", "-ny", "5", "-nz", "5", "-ne", "30", "-na", "33", "-niterations", "2"}
	var normsq float64
	for i, nthreadOctant := range []string{"1", "2", "4", "8"} {
		env := kbaenv.NewLocalGrid(1, 1).Env(0, 0)
		argv := append(append([]string{}, base...), "-nthread_octant", nthreadOctant)
		rd := run(env, argv)
		if rd.normsqdiff != 0 {
			t.Fatalf("nthread_octant=%s: normsqdiff=%v, want 0", nthreadOctant, rd.normsqdiff)
		}
		if i == 0 {
			normsq = rd.normsq
		} else if rd.normsq != normsq {
			t.Fatalf("nthread_octant=%s: normsq=%v, want %v (stable across thread counts)", nthreadOctant, rd.normsq, normsq)
		}
	}
}

func TestScenario4_IdenticalAcrossBlockZ(t *testing.T) {
	base := []string{"-nx", "4", "-ny", "4", "-nz", "8", "-niterations", "1"}
	var normsq float64
	for i, nblockZ := range []string{"1", "2", "4", "8"} {
		env := kbaenv.NewLocalGrid(1, 1).Env(0, 0)
		argv := append(append([]string{}, base...), "-nblock_z", nblockZ)
		rd := run(env, argv)
		if i == 0 {
			normsq = rd.normsq
		} else if rd.normsq != normsq {
			t.Fatalf("nblock_z=%s: normsq=%v, want %v (identical across nblock_z)", nblockZ, rd.normsq, normsq)
		}
	}
}

func TestScenario5_ZeroIterationsLeavesVoAtZero(t *testing.T) {
	env := kbaenv.NewLocalGrid(1, 1).Env(0, 0)
	argv := []string{"-nx", "3", "-ny", "3", "-nz", "3", "-ne", "1", "-na", "1", "-niterations", "0"}
	rd := run(env, argv)
	if rd.normsq != 0 {
		t.Fatalf("normsq=%v, want 0 (vo must be unchanged from its initial zero state)", rd.normsq)
	}
	if rd.normsqdiff != 0 {
		t.Fatalf("normsqdiff=%v, want 0", rd.normsqdiff)
	}
}

func TestScenario6_OddExtentWithSemiblocking(t *testing.T) {
	env := kbaenv.NewLocalGrid(1, 1).Env(0, 0)
	argv := []string{"-nx", "5", "-nsemiblock", "2"}
	rd := run(env, argv)
	if rd.normsqdiff != 0 {
		t.Fatalf("normsqdiff=%v, want 0 (odd extent with padding must still converge)", rd.normsqdiff)
	}
}

func TestSelfTestPasses(t *testing.T) {
	env := kbaenv.NewLocalGrid(1, 1).Env(0, 0)
	if !selfTest(env) {
		t.Fatal("selfTest (scenario 1/2 combined via compare_runs) must pass")
	}
}
