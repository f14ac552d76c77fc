package kbaenv

import (
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/mpi"
)

// MPIEnv is the Environment implementation backed by
// github.com/cpmech/gosl/mpi, used the same way a gofem run-loop and its
// root main.go bring MPI up: mpi.Start/mpi.Stop bracket the process,
// mpi.IsOn/mpi.Rank/mpi.Size drive the process-grid geometry.
type MPIEnv struct {
	comm            *mpi.Communicator
	nprocX, nprocY  int
	procX, procY    int
	pending         []pendingExchange
}

type pendingExchange struct {
	recv bool
	buf  []float64
	proc int
	tag  int
}

// NewMPIEnv builds an Environment over the current MPI communicator,
// laying the ranks out on an nprocX x nprocY grid in row-major order
// (rank = procY*nprocX + procX), matching the process-grid convention
// spec.md §6 describes (nproc_x, nproc_y, proc_x_this, proc_y_this).
func NewMPIEnv(nprocX, nprocY int) *MPIEnv {
	if nprocX <= 0 || nprocY <= 0 {
		chk.Panic("NewMPIEnv: invalid process grid %dx%d", nprocX, nprocY)
	}
	if mpi.Size() != nprocX*nprocY {
		chk.Panic("NewMPIEnv: mpi.Size()=%d does not match process grid %dx%d",
			mpi.Size(), nprocX, nprocY)
	}
	rank := mpi.Rank()
	return &MPIEnv{
		comm:   mpi.NewCommunicator(nil),
		nprocX: nprocX,
		nprocY: nprocY,
		procX:  rank % nprocX,
		procY:  rank / nprocX,
	}
}

func (e *MPIEnv) NProcX() int    { return e.nprocX }
func (e *MPIEnv) NProcY() int    { return e.nprocY }
func (e *MPIEnv) ProcXThis() int { return e.procX }
func (e *MPIEnv) ProcYThis() int { return e.procY }

func (e *MPIEnv) ProcXMin() bool { return e.procX == 0 }
func (e *MPIEnv) ProcXMax() bool { return e.procX == e.nprocX-1 }
func (e *MPIEnv) ProcYMin() bool { return e.procY == 0 }
func (e *MPIEnv) ProcYMax() bool { return e.procY == e.nprocY-1 }

func (e *MPIEnv) SyncedTime() time.Duration {
	e.comm.Barrier()
	return time.Duration(time.Now().UnixNano())
}

func (e *MPIEnv) SumD(x float64) float64 {
	return e.comm.AllReduceSum([]float64{x})[0]
}

func (e *MPIEnv) rankOf(px, py int) int { return py*e.nprocX + px }

func (e *MPIEnv) SendFaceX(buf []float64, dirIsPlus bool, tag int) error {
	px := e.procX + 1
	if !dirIsPlus {
		px = e.procX - 1
	}
	if px < 0 || px >= e.nprocX {
		return nil
	}
	e.pending = append(e.pending, pendingExchange{recv: false, buf: buf, proc: e.rankOf(px, e.procY), tag: tag})
	return nil
}

func (e *MPIEnv) RecvFaceX(buf []float64, dirIsPlus bool, tag int) error {
	px := e.procX + 1
	if !dirIsPlus {
		px = e.procX - 1
	}
	if px < 0 || px >= e.nprocX {
		return nil
	}
	e.pending = append(e.pending, pendingExchange{recv: true, buf: buf, proc: e.rankOf(px, e.procY), tag: tag})
	return nil
}

func (e *MPIEnv) SendFaceY(buf []float64, dirIsPlus bool, tag int) error {
	py := e.procY + 1
	if !dirIsPlus {
		py = e.procY - 1
	}
	if py < 0 || py >= e.nprocY {
		return nil
	}
	e.pending = append(e.pending, pendingExchange{recv: false, buf: buf, proc: e.rankOf(e.procX, py), tag: tag})
	return nil
}

func (e *MPIEnv) RecvFaceY(buf []float64, dirIsPlus bool, tag int) error {
	py := e.procY + 1
	if !dirIsPlus {
		py = e.procY - 1
	}
	if py < 0 || py >= e.nprocY {
		return nil
	}
	e.pending = append(e.pending, pendingExchange{recv: true, buf: buf, proc: e.rankOf(e.procX, py), tag: tag})
	return nil
}

// Wait performs every queued receive (each RecvD blocks until its data has
// arrived) before it issues any queued send (spec.md §9: "never block on a
// send before its matching receive is posted").
func (e *MPIEnv) Wait() error {
	defer func() { e.pending = e.pending[:0] }()

	for _, p := range e.pending {
		if p.recv {
			if err := e.comm.RecvD(p.buf, p.proc, p.tag); err != nil {
				return err
			}
		}
	}
	for _, p := range e.pending {
		if !p.recv {
			if err := e.comm.SendD(p.buf, p.proc, p.tag); err != nil {
				return err
			}
		}
	}
	return nil
}
