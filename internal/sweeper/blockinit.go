package sweeper

// DoBlockInit is the do_block_init bitmask of spec.md §9: one bit per
// (semiblock, octant_in_block), recording whether the cells that
// (semiblock, octant_in_block) combination writes are this block_z's first
// write to vo in the whole sweep (assignment) or a later one (accumulate).
// Kept as a 64-bit bitmask per spec.md §9 ("keep the representation, it
// fits"), wrapped in named accessors instead of raw bit-twiddling at call
// sites.
//
// Every octant eventually contributes to every cell of vo (its own
// angular range summed into the same moment, spec.md §4.3 step 6): a given
// block_z is visited once per octant-group over the course of a sweep, and
// within one group's call every active (semiblock, octant_in_block) writes
// a disjoint slice of that block's cells (spec.md §5, write-disjointness).
// So "is this the first write" is uniform across an entire call: true for
// every combination in the call that first touches block_z, false for
// every combination in every later call that touches it again.
type DoBlockInit uint64

func blockInitBit(nsemiblock int, semiblock, octantInBlock int) uint {
	return uint(octantInBlock*nsemiblock + semiblock)
}

// Set marks (semiblock, octantInBlock) as an initialising write.
func (d DoBlockInit) Set(nsemiblock int, semiblock, octantInBlock int) DoBlockInit {
	return d | (1 << blockInitBit(nsemiblock, semiblock, octantInBlock))
}

// Get reports whether (semiblock, octantInBlock) is an initialising write.
func (d DoBlockInit) Get(nsemiblock int, semiblock, octantInBlock int) bool {
	return d&(1<<blockInitBit(nsemiblock, semiblock, octantInBlock)) != 0
}

// NewBlockInit builds the do_block_init mask for one block-sweep call:
// for each active octant_in_block slot, every one of its semiblock bits is
// set to isFirstTouch(octantInBlock) — two octant_in_block slots in the
// same call can target different block_z values (spec.md §4.1's diagonal
// wave lets a group's octants sit at different distances into the
// pipeline), so first-touch status is tracked per slot, not for the call
// as a whole (see package doc on DoBlockInit).
func NewBlockInit(isFirstTouch func(octantInBlock int) bool, nsemiblock, noctantPerBlock int) DoBlockInit {
	var d DoBlockInit
	for octantInBlock := 0; octantInBlock < noctantPerBlock; octantInBlock++ {
		if !isFirstTouch(octantInBlock) {
			continue
		}
		for semiblock := 0; semiblock < nsemiblock; semiblock++ {
			d = d.Set(nsemiblock, semiblock, octantInBlock)
		}
	}
	return d
}
