package kbaenv

import (
	"fmt"
	"sync"
	"time"
)

// LocalGrid is an in-process stand-in for the MPI process grid: it lets a
// single test process run several "ranks" as goroutines exchanging face
// buffers over channels, so spec.md §8 property 2 (self-consistency
// across partitions) can be exercised without a real MPI runtime. It
// plays the role a single-process (mpi.IsOn()==false) path plays in a
// gofem run-loop.
type LocalGrid struct {
	nprocX, nprocY int
	mu             sync.Mutex
	mailboxes      map[string]chan []float64

	sumMu     sync.Mutex
	sumCond   *sync.Cond
	sumGen    int
	sumCount  int
	sumAccum  float64
	sumResult float64
}

// NewLocalGrid allocates a grid of nprocX*nprocY virtual ranks.
func NewLocalGrid(nprocX, nprocY int) *LocalGrid {
	g := &LocalGrid{
		nprocX:    nprocX,
		nprocY:    nprocY,
		mailboxes: make(map[string]chan []float64),
	}
	g.sumCond = sync.NewCond(&g.sumMu)
	return g
}

// Env returns the Environment for virtual rank (procX, procY).
func (g *LocalGrid) Env(procX, procY int) *LocalEnv {
	return &LocalEnv{grid: g, procX: procX, procY: procY}
}

func (g *LocalGrid) mailbox(key string) chan []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.mailboxes[key]
	if !ok {
		ch = make(chan []float64, 1)
		g.mailboxes[key] = ch
	}
	return ch
}

func channelKey(fromX, fromY, toX, toY, tag int) string {
	return fmt.Sprintf("%d,%d->%d,%d#%d", fromX, fromY, toX, toY, tag)
}

// LocalEnv is one virtual rank's view of a LocalGrid.
type LocalEnv struct {
	grid         *LocalGrid
	procX, procY int
	pendingSends []localExchange
	pendingRecvs []localExchange
}

type localExchange struct {
	buf   []float64
	peerX int
	peerY int
	tag   int
}

func (e *LocalEnv) NProcX() int    { return e.grid.nprocX }
func (e *LocalEnv) NProcY() int    { return e.grid.nprocY }
func (e *LocalEnv) ProcXThis() int { return e.procX }
func (e *LocalEnv) ProcYThis() int { return e.procY }

func (e *LocalEnv) ProcXMin() bool { return e.procX == 0 }
func (e *LocalEnv) ProcXMax() bool { return e.procX == e.grid.nprocX-1 }
func (e *LocalEnv) ProcYMin() bool { return e.procY == 0 }
func (e *LocalEnv) ProcYMax() bool { return e.procY == e.grid.nprocY-1 }

func (e *LocalEnv) SyncedTime() time.Duration {
	e.SumD(0) // barrier across the grid's virtual ranks
	return time.Duration(time.Now().UnixNano())
}

// SumD is a barrier-style all-reduce across every virtual rank in the
// grid: each call blocks until every rank has contributed its value, then
// all callers see the same total (spec.md §6 "sum_d"). Requires every
// rank in the grid to call SumD the same number of times, as the driver's
// run() does (through SyncedTime and for the flop and norm reports).
func (e *LocalEnv) SumD(x float64) float64 {
	g := e.grid
	n := g.nprocX * g.nprocY

	g.sumMu.Lock()
	defer g.sumMu.Unlock()

	gen := g.sumGen
	g.sumAccum += x
	g.sumCount++
	if g.sumCount == n {
		g.sumResult = g.sumAccum
		g.sumAccum = 0
		g.sumCount = 0
		g.sumGen++
		g.sumCond.Broadcast()
	} else {
		for gen == g.sumGen {
			g.sumCond.Wait()
		}
	}
	return g.sumResult
}

func (e *LocalEnv) SendFaceX(buf []float64, dirIsPlus bool, tag int) error {
	peerX := e.procX + 1
	if !dirIsPlus {
		peerX = e.procX - 1
	}
	if peerX < 0 || peerX >= e.grid.nprocX {
		return nil
	}
	e.pendingSends = append(e.pendingSends, localExchange{buf: buf, peerX: peerX, peerY: e.procY, tag: tag})
	return nil
}

func (e *LocalEnv) RecvFaceX(buf []float64, dirIsPlus bool, tag int) error {
	peerX := e.procX + 1
	if !dirIsPlus {
		peerX = e.procX - 1
	}
	if peerX < 0 || peerX >= e.grid.nprocX {
		return nil
	}
	e.pendingRecvs = append(e.pendingRecvs, localExchange{buf: buf, peerX: peerX, peerY: e.procY, tag: tag})
	return nil
}

func (e *LocalEnv) SendFaceY(buf []float64, dirIsPlus bool, tag int) error {
	peerY := e.procY + 1
	if !dirIsPlus {
		peerY = e.procY - 1
	}
	if peerY < 0 || peerY >= e.grid.nprocY {
		return nil
	}
	e.pendingSends = append(e.pendingSends, localExchange{buf: buf, peerX: e.procX, peerY: peerY, tag: tag})
	return nil
}

func (e *LocalEnv) RecvFaceY(buf []float64, dirIsPlus bool, tag int) error {
	peerY := e.procY + 1
	if !dirIsPlus {
		peerY = e.procY - 1
	}
	if peerY < 0 || peerY >= e.grid.nprocY {
		return nil
	}
	e.pendingRecvs = append(e.pendingRecvs, localExchange{buf: buf, peerX: e.procX, peerY: peerY, tag: tag})
	return nil
}

// Wait completes every queued receive, blocking on each until its data has
// arrived, before it delivers any queued send (spec.md §9).
func (e *LocalEnv) Wait() error {
	defer func() {
		e.pendingSends = e.pendingSends[:0]
		e.pendingRecvs = e.pendingRecvs[:0]
	}()

	for _, r := range e.pendingRecvs {
		ch := e.grid.mailbox(channelKey(r.peerX, r.peerY, e.procX, e.procY, r.tag))
		data := <-ch
		copy(r.buf, data)
	}
	for _, s := range e.pendingSends {
		ch := e.grid.mailbox(channelKey(e.procX, e.procY, s.peerX, s.peerY, s.tag))
		cp := make([]float64, len(s.buf))
		copy(cp, s.buf)
		ch <- cp
	}
	return nil
}
