package kbaenv

import (
	"sync"
	"testing"
)

func TestLocalGridExchangeXDelivers(t *testing.T) {
	g := NewLocalGrid(2, 1)
	left := g.Env(0, 0)
	right := g.Env(1, 0)

	sendBuf := []float64{1, 2, 3}
	recvBuf := make([]float64, 3)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		left.SendFaceX(sendBuf, true, 7)
		if err := left.Wait(); err != nil {
			t.Error(err)
		}
	}()
	go func() {
		defer wg.Done()
		right.RecvFaceX(recvBuf, false, 7)
		if err := right.Wait(); err != nil {
			t.Error(err)
		}
	}()
	wg.Wait()

	for i, v := range sendBuf {
		if recvBuf[i] != v {
			t.Fatalf("recvBuf[%d]=%v, want %v", i, recvBuf[i], v)
		}
	}
}

func TestLocalGridSumDAllReduce(t *testing.T) {
	g := NewLocalGrid(2, 2)
	var wg sync.WaitGroup
	results := make([]float64, 4)
	idx := 0
	for px := 0; px < 2; px++ {
		for py := 0; py < 2; py++ {
			wg.Add(1)
			i := idx
			env := g.Env(px, py)
			go func() {
				defer wg.Done()
				results[i] = env.SumD(float64(i + 1))
			}()
			idx++
		}
	}
	wg.Wait()
	want := 1.0 + 2 + 3 + 4
	for i, r := range results {
		if r != want {
			t.Fatalf("results[%d]=%v, want %v", i, r, want)
		}
	}
}

func TestLocalEnvBoundaryPredicates(t *testing.T) {
	g := NewLocalGrid(3, 2)
	e := g.Env(0, 1)
	if !e.ProcXMin() || e.ProcXMax() {
		t.Fatal("expected ProcXMin true, ProcXMax false for procX=0")
	}
	if e.ProcYMin() || !e.ProcYMax() {
		t.Fatal("expected ProcYMin false, ProcYMax true for procY=1 of 2")
	}
}
