// Package threadteam implements the intra-rank "execution context" called
// for in spec.md §9: a capability trait exposing per-axis thread ids and
// barrier synchronisation, so the per-cell kernel is written once over an
// abstract thread team instead of being conditioned on a TARGET_HD macro.
//
// The team is a fixed set of goroutines addressed by a multi-axis thread
// id (e, octant, y, z, a, m, u — spec.md §5), spawned once per Team.Run
// call (one block-sweep step) rather than per cell. The pattern
// is grounded on the persistent worker pool in
// janpfeifer-go-highway/hwy/contrib/workerpool (a pool created once and
// driven with a blocking fan-out/fan-in call), rewritten here around
// named synchronisation points (sync_amu_threads, sync_yz_threads,
// sync_octant_threads — spec.md §5) instead of a generic ParallelFor.
package threadteam

import "sync"

// Geometry is the thread-count tuple of spec.md §3 SweeperConfig:
// nthread_{e,octant,y,z,a,m,u}.
type Geometry struct {
	NThreadE       int
	NThreadOctant  int
	NThreadY       int
	NThreadZ       int
	NThreadA       int
	NThreadM       int
	NThreadU       int
}

// Total returns the number of worker goroutines the geometry requires.
func (g Geometry) Total() int {
	return g.NThreadE * g.NThreadOctant * g.NThreadY * g.NThreadZ
}

// ThreadID is a rank-local thread's coordinates along the outer axes that
// map to distinct goroutines. The inner a/m/u axes (spec.md §5, "may be
// collapsed to a SIMD lane axis") are iterated serially inside a single
// goroutine rather than given their own thread, matching a CPU backend.
type ThreadID struct {
	E, Octant, Y, Z int
}

// Team runs a fixed pool of goroutines, one per (e, octant, y, z)
// combination, and provides the barriers spec.md §5 names.
type Team struct {
	geom    Geometry
	barrier *cyclicBarrier // SyncYZThreads of a single-thread team
	octant  *cyclicBarrier // SyncOctantThreads
}

// NewTeam allocates a team for the given geometry. The team does not spawn
// goroutines itself: Run below spawns exactly Total() goroutines (or calls
// fn inline when Total() is 1) for the duration of one call and tears them
// down afterwards, which is simpler
// and safe to call repeatedly across sweep steps; the persistent-pool
// grounding is in how within one Run the same barriers are reused across
// every semiblock/subblock-wavefront/cell synchronisation instead of
// allocating a new WaitGroup each time.
//
// SyncYZThreads and SyncOctantThreads get separate barriers, not one
// shared one: a thread whose [oibLo,oibHi) octant-in-block range is empty
// (NThreadOctant > NOctantPerBlock, spec.md §8 scenario 3) never calls
// SyncYZThreads but still calls SyncOctantThreads once per semiblock like
// every other thread, so a single shared barrier sized for the whole team
// would see divergent per-thread call counts and deadlock permanently. For
// the same reason Run gives each (thread_e, thread_octant) pair its own
// SyncYZThreads barrier, sized for that pair's y/z threads only.
func NewTeam(geom Geometry) *Team {
	n := geom.Total()
	return &Team{geom: geom, barrier: newCyclicBarrier(n), octant: newCyclicBarrier(n)}
}

// Geometry returns the team's thread geometry.
func (t *Team) Geometry() Geometry { return t.geom }

// Run invokes fn once per thread id in the team, in parallel, and blocks
// until every invocation returns. fn may call the barrier-sync methods on
// the passed *Sync to coordinate with its teammates.
func (t *Team) Run(fn func(id ThreadID, sync *Sync)) {
	geom := t.geom
	n := geom.Total()
	if n <= 1 {
		fn(ThreadID{}, &Sync{barrier: t.barrier, octant: t.octant, amu: newCyclicBarrier(1)})
		return
	}

	// a, m and u run serially inside each goroutine, so sync_amu_threads
	// has no other party to wait for.
	amuBarrier := newCyclicBarrier(1)

	var wg sync.WaitGroup
	wg.Add(n)
	idx := 0
	for ie := 0; ie < geom.NThreadE; ie++ {
		for io := 0; io < geom.NThreadOctant; io++ {
			// sync_yz_threads spans the y/z threads of this (e, octant) pair.
			yzBarrier := newCyclicBarrier(geom.NThreadY * geom.NThreadZ)
			for iy := 0; iy < geom.NThreadY; iy++ {
				for iz := 0; iz < geom.NThreadZ; iz++ {
					id := ThreadID{E: ie, Octant: io, Y: iy, Z: iz}
					go func(id ThreadID) {
						defer wg.Done()
						fn(id, &Sync{barrier: yzBarrier, octant: t.octant, amu: amuBarrier})
					}(id)
					idx++
				}
			}
		}
	}
	wg.Wait()
}

// Sync is the set of barrier operations a thread may call from inside
// Team.Run. It corresponds to spec.md §5's named suspension points.
type Sync struct {
	barrier *cyclicBarrier
	octant  *cyclicBarrier
	amu     *cyclicBarrier
}

// SyncYZThreads is sync_yz_threads (spec.md §5): a barrier across the
// (thread_y, thread_z) axes of one (thread_e, thread_octant) pair, used between sub-block wavefronts and after
// boundary setters (spec.md §4.4, §4.5).
func (s *Sync) SyncYZThreads() { s.barrier.Wait() }

// SyncOctantThreads is sync_octant_threads (spec.md §5): a barrier across
// the thread_octant axis, used between semi-blocks (spec.md §4.5). Kept on
// its own barrier, separate from SyncYZThreads: every thread calls this one
// unconditionally once per semiblock regardless of whether its octant-in-
// block range was empty that semiblock (spec.md §8 scenario 3).
func (s *Sync) SyncOctantThreads() { s.octant.Wait() }

// SyncAMUThreads is sync_amu_threads (spec.md §5): a barrier inside one
// cell's kernel, between the moment-load, moment->angle, solve and
// angle->moment phases (spec.md §4.3). On a CPU backend where a,m,u are
// collapsed into a single goroutine's serial loop (spec.md §5), this is a
// no-op.
func (s *Sync) SyncAMUThreads() { s.amu.Wait() }

// cyclicBarrier is a reusable barrier for exactly n parties, usable across
// an unbounded number of phases (unlike sync.WaitGroup, which cannot be
// reused concurrently with Wait still pending).
type cyclicBarrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	n       int
	count   int
	gen     int
}

func newCyclicBarrier(n int) *cyclicBarrier {
	b := &cyclicBarrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until n parties have called Wait for the current generation.
func (b *cyclicBarrier) Wait() {
	if b.n <= 1 {
		return
	}
	b.mu.Lock()
	gen := b.gen
	b.count++
	if b.count == b.n {
		b.count = 0
		b.gen++
		b.cond.Broadcast()
	} else {
		for gen == b.gen {
			b.cond.Wait()
		}
	}
	b.mu.Unlock()
}
