package tier2

import "github.com/cocosip/go-imagecodecs/j2k/tier1"

// SubbandRef groups the code-blocks of one subband for packet assembly.
// Precincts are not independently partitioned by this implementation: a
// subband is always its own single precinct, matching the default
// precinct-size exponent (15,15) written into the COD segment.
type SubbandRef struct {
	Component int
	Level     int // 0 = finest detail; numLevels = the coarsest LL
	Blocks    []*tier1.CodeBlock
}

// BuildPackets assembles every packet of the codestream in
// Layer-Resolution-Component-Position order and appends their wire
// encoding to dst. Resolution ranges over [0,numLevels]; within a
// resolution, subbands are visited in ascending component order, and a
// component contributes only the subbands whose Level equals that
// resolution (the LL subband's Level == numLevels, so it is naturally
// emitted at the final resolution).
func BuildPackets(dst []byte, subbands []SubbandRef, numLevels, numLayers int, opts Options) []byte {
	for layer := 0; layer < numLayers; layer++ {
		for res := 0; res <= numLevels; res++ {
			for comp := 0; ; comp++ {
				matched := false
				var refs []BlockRef
				for _, sb := range subbands {
					if sb.Component != comp {
						continue
					}
					matched = true
					if sb.Level != res {
						continue
					}
					for _, cb := range sb.Blocks {
						ppl := PassesPerLayer(cb.NumPasses, numLayers)
						start, end := LayerWindow(layer, ppl, cb.NumPasses)
						refs = append(refs, BlockRef{Block: cb, PassStart: start, PassEnd: end})
					}
				}
				if !matched {
					break
				}
				pkt := BuildPacket(refs)
				dst = WritePacket(dst, pkt, opts)
			}
		}
	}
	return dst
}

// ReadPackets is the inverse of BuildPackets: it walks src in the same
// LRCP order, appending each contribution's bytes and pass count onto the
// matching code-block's Data/NumPasses/PassLengths.
func ReadPackets(src []byte, subbands []SubbandRef, numLevels, numLayers int, opts Options) error {
	pos := 0
	for layer := 0; layer < numLayers; layer++ {
		for res := 0; res <= numLevels; res++ {
			for comp := 0; ; comp++ {
				var blocks []*tier1.CodeBlock
				matched := false
				for _, sb := range subbands {
					if sb.Component != comp {
						continue
					}
					matched = true
					if sb.Level != res {
						continue
					}
					blocks = append(blocks, sb.Blocks...)
				}
				if !matched {
					break
				}
				pkt, n, err := ReadPacket(src[pos:], opts)
				if err != nil {
					return err
				}
				pos += n
				for i, c := range pkt.Contributions {
					if i >= len(blocks) {
						break
					}
					cb := blocks[i]
					cb.BitPlanes = c.BitPlanes
					cb.Data = append(cb.Data, c.Data...)
					cb.PassLengths = append(cb.PassLengths, distributePassLengths(c.NewPasses, len(c.Data))...)
					cb.NumPasses += c.NewPasses
				}
			}
		}
	}
	return nil
}

// distributePassLengths recovers an approximate per-pass length sequence
// for a contribution whose individual pass boundaries were not carried on
// the wire (only the aggregate byte count was, per spec.md §4.5's
// simplified framing). It assigns the whole length to the first pass and
// zero to the rest; Tier-1's Decode treats cb.Data as one continuous MQ
// stream and does not depend on PassLengths, so only the aggregate
// ordering (preserved by appending contributions in layer order) matters.
func distributePassLengths(newPasses, byteLen int) []int {
	if newPasses <= 0 {
		return nil
	}
	lens := make([]int, newPasses)
	lens[0] = byteLen
	return lens
}
