// Package sweeper implements the sweeper state (spec.md §2.4), the
// per-cell kernel (§2.5, §4.3), the sub-block/semi-block wavefront driver
// (§2.6, §4.4-4.5) and the top-level sweep loop (§2.7, §4.6).
package sweeper

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/kbasweep/internal/dims"
	"github.com/cpmech/kbasweep/internal/threadteam"
)

// Config is the immutable thread-geometry and blocking configuration of
// spec.md §3 "SweeperConfig", passed by value into the sweeper and its
// kernel rather than carried as shared mutable state on it (spec.md §9).
type Config struct {
	Geometry threadteam.Geometry

	NBlockZ           int
	NCellXPerSubblock int
	NCellYPerSubblock int
	NCellZPerSubblock int
	NSemiblock        int
	NOctantPerBlock   int

	// UseAtomicVO lifts Validate's NSemiblock >= NOctantPerBlock check
	// (spec.md §5, "Optional atomic-update mode"); Validate rejects
	// NSemiblock < NOctantPerBlock without it. The kernel does not read it:
	// writes into vo are plain stores and adds, not atomic ones.
	UseAtomicVO bool

	DimsG dims.Dims // whole-problem dims
	Dims  dims.Dims // this rank's dims (z is never rank-split, spec.md §3)
	DimsB dims.Dims // block dims: Dims with NCellZ = NCellZPerBlock

	// IXBase, IYBase are this rank's offset into the global grid along x
	// and y (main.c's quan->ix_base/iy_base), used to compute global
	// cell coordinates for boundary setters and Quantities.Solve calls.
	IXBase, IYBase int
}

// NCellZPerBlock returns the z-extent of one block.
func (c Config) NCellZPerBlock() int { return c.DimsB.NCellZ }

// Validate checks the invariants of spec.md §3 and §7.1, panicking with a
// diagnostic naming the offending parameter (gofem/ele constructor style).
func (c Config) Validate() {
	if c.DimsG.NCellX <= 0 || c.DimsG.NCellY <= 0 || c.DimsG.NCellZ <= 0 {
		chk.Panic("DimsG cell counts must be positive, got %+v", c.DimsG)
	}
	if c.Dims.NCellX <= 0 || c.Dims.NCellY <= 0 || c.Dims.NCellZ <= 0 {
		chk.Panic("Dims cell counts must be positive, got %+v", c.Dims)
	}
	if c.Dims.NE <= 0 {
		chk.Panic("Dims.NE must be positive, got %d", c.Dims.NE)
	}
	if c.Dims.NA <= 0 {
		chk.Panic("Dims.NA must be positive, got %d", c.Dims.NA)
	}
	if c.Dims.NM != dims.NM {
		chk.Panic("Dims.NM must equal the compile-time NM=%d, got %d", dims.NM, c.Dims.NM)
	}
	if c.DimsB.NM != dims.NM {
		chk.Panic("DimsB.NM must equal the compile-time NM=%d, got %d", dims.NM, c.DimsB.NM)
	}
	if c.NBlockZ <= 0 {
		chk.Panic("NBlockZ must be positive, got %d", c.NBlockZ)
	}
	if c.NBlockZ*c.DimsB.NCellZ != c.Dims.NCellZ {
		chk.Panic("NBlockZ*DimsB.NCellZ (%d*%d) must equal Dims.NCellZ (%d)",
			c.NBlockZ, c.DimsB.NCellZ, c.Dims.NCellZ)
	}
	switch c.NSemiblock {
	case 1, 2, 4, 8:
	default:
		chk.Panic("NSemiblock must be one of 1,2,4,8, got %d", c.NSemiblock)
	}
	switch c.NOctantPerBlock {
	case 1, 2, 4, 8:
	default:
		chk.Panic("NOctantPerBlock must be one of 1,2,4,8, got %d", c.NOctantPerBlock)
	}
	if c.UseAtomicVO == false && c.NSemiblock < c.NOctantPerBlock {
		chk.Panic("NSemiblock (%d) < NOctantPerBlock (%d) requires UseAtomicVO",
			c.NSemiblock, c.NOctantPerBlock)
	}
	if c.NCellXPerSubblock <= 0 || c.NCellYPerSubblock <= 0 || c.NCellZPerSubblock <= 0 {
		chk.Panic("NCell{X,Y,Z}PerSubblock must be positive, got (%d,%d,%d)",
			c.NCellXPerSubblock, c.NCellYPerSubblock, c.NCellZPerSubblock)
	}
	g := c.Geometry
	if g.NThreadA <= 0 || g.NThreadM <= 0 || g.NThreadU <= 0 {
		chk.Panic("NThreadA/M/U must be positive, got (%d,%d,%d)", g.NThreadA, g.NThreadM, g.NThreadU)
	}
	if g.NThreadE <= 0 || g.NThreadOctant <= 0 || g.NThreadY <= 0 || g.NThreadZ <= 0 {
		chk.Panic("NThreadE/Octant/Y/Z must be positive, got (%d,%d,%d,%d)",
			g.NThreadE, g.NThreadOctant, g.NThreadY, g.NThreadZ)
	}
}
