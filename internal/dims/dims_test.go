package dims

import "testing"

func TestOctantRoundTrip(t *testing.T) {
	for _, dx := range []Dir{DirUp, DirDn} {
		for _, dy := range []Dir{DirUp, DirDn} {
			for _, dz := range []Dir{DirUp, DirDn} {
				o := Octant(dx, dy, dz)
				if DirX(o) != dx || DirY(o) != dy || DirZ(o) != dz {
					t.Fatalf("octant %d did not round-trip: got (%v,%v,%v) want (%v,%v,%v)",
						o, DirX(o), DirY(o), DirZ(o), dx, dy, dz)
				}
			}
		}
	}
}

func TestOctantCoversAllEight(t *testing.T) {
	seen := make(map[int]bool)
	for _, dx := range []Dir{DirUp, DirDn} {
		for _, dy := range []Dir{DirUp, DirDn} {
			for _, dz := range []Dir{DirUp, DirDn} {
				seen[Octant(dx, dy, dz)] = true
			}
		}
	}
	if len(seen) != NOctant {
		t.Fatalf("expected %d distinct octants, got %d", NOctant, len(seen))
	}
}

func TestStateViewIndexDistinct(t *testing.T) {
	d := Dims{NCellX: 3, NCellY: 4, NCellZ: 2, NE: 2, NM: NM}
	v := StateView{D: d}
	seen := make(map[int]bool)
	n := 0
	for ix := 0; ix < d.NCellX; ix++ {
		for iy := 0; iy < d.NCellY; iy++ {
			for iz := 0; iz < d.NCellZ; iz++ {
				for ie := 0; ie < d.NE; ie++ {
					for im := 0; im < d.NM; im++ {
						for iu := 0; iu < NU; iu++ {
							idx := v.Index(ix, iy, iz, ie, im, iu)
							if seen[idx] {
								t.Fatalf("duplicate index %d", idx)
							}
							seen[idx] = true
							n++
						}
					}
				}
			}
		}
	}
	if n != d.StateSize() {
		t.Fatalf("visited %d cells, StateSize()=%d", n, d.StateSize())
	}
	for idx := range seen {
		if idx < 0 || idx >= d.StateSize() {
			t.Fatalf("index %d out of range [0,%d)", idx, d.StateSize())
		}
	}
}

func TestSplitCoversWhole(t *testing.T) {
	n, nranks := 17, 5
	sum := 0
	for r := 0; r < nranks; r++ {
		s := Split(n, nranks, r)
		if s <= 0 {
			t.Fatalf("rank %d got non-positive share %d", r, s)
		}
		sum += s
	}
	if sum != n {
		t.Fatalf("shares summed to %d, want %d", sum, n)
	}
}

func TestFaceViewSizeAndIndex(t *testing.T) {
	f := FaceView{NA: 5, NOctantPerBlock: 8, NA1: 3, NA2: 4, NE: 2}
	seen := make(map[int]bool)
	for i1 := 0; i1 < f.NA1; i1++ {
		for i2 := 0; i2 < f.NA2; i2++ {
			for ie := 0; ie < f.NE; ie++ {
				for ia := 0; ia < f.NA; ia++ {
					for iu := 0; iu < NU; iu++ {
						for oib := 0; oib < f.NOctantPerBlock; oib++ {
							idx := f.Index(i1, i2, ie, ia, iu, oib)
							if idx < 0 || idx >= f.Size() {
								t.Fatalf("index %d out of range [0,%d)", idx, f.Size())
							}
							seen[idx] = true
						}
					}
				}
			}
		}
	}
	if len(seen) != f.Size() {
		t.Fatalf("covered %d distinct slots, want %d", len(seen), f.Size())
	}
}
