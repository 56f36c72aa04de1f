package tier1

import "github.com/cocosip/go-imagecodecs/j2k/mqcoder"

// Decode is the inverse of Encode: it reconstructs cb.Mag and cb.Neg from
// cb.Data, given the same BitPlanes and orientation the encoder used.
// cb.Mag and cb.Neg must already be allocated to length W*H. cb.Data is
// decoded as a single continuous MQ stream; cb.PassLengths is rate-
// allocation bookkeeping only and is not needed for Decode.
func Decode(cb *CodeBlock, orient Orient) {
	w, h := cb.W, cb.H
	p := newPlane(w, h)
	dec := mqcoder.NewDecoder(cb.Data, NumContexts)

	for i := range cb.Mag {
		cb.Mag[i] = 0
		cb.Neg[i] = false
	}

	for plane := cb.BitPlanes - 1; plane >= 0; plane-- {
		p.resetPlaneMarks()
		bitMask := int32(1) << uint(plane)

		forEachStripeColumn(w, h, func(x, y int) {
			idx := p.idx(x, y)
			if p.sig[idx] {
				return
			}
			if !p.anySignificantNeighbor(idx) {
				return
			}
			p.coded[idx] = true
			hc, vc, d := p.neighborCounts(idx)
			ctx := zeroCodingContext(orient, hc, vc, d)
			bit := dec.Decode(ctx)
			mi := y*w + x
			if bit == 1 {
				cb.Mag[mi] |= bitMask
				neg := decodeSign(dec, p, idx)
				p.sig[idx] = true
				p.visited[idx] = true
				p.neg[idx] = neg
				cb.Neg[mi] = neg
			}
		})

		forEachStripeColumn(w, h, func(x, y int) {
			idx := p.idx(x, y)
			if !p.sig[idx] || p.visited[idx] || !p.ref[idx] {
				return
			}
			ctx := magRefContext(p.anySignificantAxialNeighbor(idx))
			bit := dec.Decode(ctx)
			if bit == 1 {
				cb.Mag[y*w+x] |= bitMask
			}
		})

		for ys := 0; ys < h; ys += 4 {
			ye := ys + 4
			full := ye <= h
			if ye > h {
				ye = h
			}
			for x := 0; x < w; x++ {
				if full && allEligibleForRunLength(p, x, ys) {
					any := dec.Decode(ctxRunLength)
					if any == 0 {
						continue
					}
					decodeCleanupColumn(dec, p, cb, w, x, ys, ys+4, bitMask, orient, true)
					continue
				}
				decodeCleanupColumn(dec, p, cb, w, x, ys, ye, bitMask, orient, false)
			}
		}

		p.promoteRefinements()
	}
}

func decodeCleanupColumn(dec *mqcoder.Decoder, p *plane, cb *CodeBlock, w, x, ys, ye int, bitMask int32, orient Orient, viaRunLength bool) {
	for y := ys; y < ye; y++ {
		idx := p.idx(x, y)
		if p.sig[idx] || p.coded[idx] {
			continue
		}
		var bit int
		if !viaRunLength {
			hc, vc, d := p.neighborCounts(idx)
			ctx := zeroCodingContext(orient, hc, vc, d)
			bit = dec.Decode(ctx)
		} else {
			ctx := zeroCodingContext(orient, 0, 0, 0)
			bit = dec.Decode(ctx)
		}
		mi := y*w + x
		if bit == 1 {
			cb.Mag[mi] |= bitMask
			neg := decodeSign(dec, p, idx)
			p.sig[idx] = true
			p.visited[idx] = true
			p.neg[idx] = neg
			cb.Neg[mi] = neg
		}
	}
}

func decodeSign(dec *mqcoder.Decoder, p *plane, idx int) bool {
	hC, vC := p.signContribs(idx)
	ctx, xorBit := signContext(hC, vC)
	raw := dec.Decode(ctx)
	return (raw ^ xorBit) == 1
}
