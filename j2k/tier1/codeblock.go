package tier1

import "math/bits"

// CodeBlock is a rectangular subdivision of a subband, coded
// independently from MSB to LSB over its magnitude bit planes
// (spec.md §3). Width and height must each be in [1,1024]; this
// implementation's subbands use 64x64 blocks.
type CodeBlock struct {
	X, Y, W, H int

	// Mag/Neg are row-major, length W*H: non-negative magnitudes and
	// their signs. Encode reads them; Decode fills them.
	Mag []int32
	Neg []bool

	// BitPlanes is the number of bit planes to code, >= the highest set
	// bit of any magnitude in the block.
	BitPlanes int

	// Populated by Encode; consumed by Decode and by Tier-2 rate
	// allocation.
	Data        []byte
	NumPasses   int
	PassLengths []int // byte length contributed by each pass, in order
}

// BitPlanesFor returns the number of bit planes needed to represent the
// largest magnitude in mag (spec.md §3 invariant: bitPlanes >= highest
// set bit of any magnitude).
func BitPlanesFor(mag []int32) int {
	var max int32
	for _, m := range mag {
		if m > max {
			max = m
		}
	}
	if max == 0 {
		return 0
	}
	return bits.Len32(uint32(max))
}
