package tier1

import "github.com/cocosip/go-imagecodecs/j2k/mqcoder"

// forEachStripeColumn visits every (x,y) in [0,w)x[0,h) in the
// stripe-column order mandated by spec.md §4.4: four-row horizontal
// stripes, column by column within a stripe, row by row within a column.
func forEachStripeColumn(w, h int, visit func(x, y int)) {
	for ys := 0; ys < h; ys += 4 {
		ye := ys + 4
		if ye > h {
			ye = h
		}
		for x := 0; x < w; x++ {
			for y := ys; y < ye; y++ {
				visit(x, y)
			}
		}
	}
}

// Encode runs the three coding passes over every bit plane of cb, from
// cb.BitPlanes-1 down to 0, writing the compressed byte stream and pass
// length prefixes into cb.
func Encode(cb *CodeBlock, orient Orient) {
	w, h := cb.W, cb.H
	p := newPlane(w, h)
	enc := mqcoder.NewEncoder(NumContexts)

	cb.PassLengths = cb.PassLengths[:0]
	cb.NumPasses = 0

	// A code-block's arithmetic-coded data is one continuous MQ stream
	// (a single Flush at the very end); PassLengths records the delta of
	// encoder output position between pass boundaries (spec.md §4.4) for
	// Tier-2 rate allocation, not an independent per-pass byte boundary.
	// Because of MQ carry propagation the in-flight buffer length is only
	// an approximation of the final byte offset, so the last recorded
	// delta is corrected once Flush produces the true total (see the
	// reconciliation below).
	prevLen := 0
	recordPass := func() {
		cur := enc.BufferedLen()
		cb.NumPasses++
		cb.PassLengths = append(cb.PassLengths, cur-prevLen)
		prevLen = cur
	}

	for plane := cb.BitPlanes - 1; plane >= 0; plane-- {
		p.resetPlaneMarks()
		bitMask := int32(1) << uint(plane)

		// Significance-propagation pass.
		forEachStripeColumn(w, h, func(x, y int) {
			idx := p.idx(x, y)
			if p.sig[idx] {
				return
			}
			if !p.anySignificantNeighbor(idx) {
				return
			}
			p.coded[idx] = true
			h, v, d := p.neighborCounts(idx)
			ctx := zeroCodingContext(orient, h, v, d)
			mi := y*w + x
			bit := 0
			if cb.Mag[mi]&bitMask != 0 {
				bit = 1
			}
			enc.Encode(bit, ctx)
			if bit == 1 {
				p.sig[idx] = true
				p.visited[idx] = true
				p.neg[idx] = cb.Neg[mi]
				encodeSign(enc, p, idx, cb.Neg[mi])
			}
		})
		recordPass()

		// Magnitude-refinement pass.
		forEachStripeColumn(w, h, func(x, y int) {
			idx := p.idx(x, y)
			if !p.sig[idx] || p.visited[idx] || !p.ref[idx] {
				return
			}
			ctx := magRefContext(p.anySignificantAxialNeighbor(idx))
			mi := y*w + x
			bit := 0
			if cb.Mag[mi]&bitMask != 0 {
				bit = 1
			}
			enc.Encode(bit, ctx)
		})
		recordPass()

		// Cleanup pass, with the 4-sample run-length shortcut.
		for ys := 0; ys < h; ys += 4 {
			ye := ys + 4
			full := ye <= h
			if ye > h {
				ye = h
			}
			for x := 0; x < w; x++ {
				if full && allEligibleForRunLength(p, x, ys) {
					allZero := true
					for y := ys; y < ys+4; y++ {
						mi := y*w + x
						if cb.Mag[mi]&bitMask != 0 {
							allZero = false
							break
						}
					}
					if allZero {
						enc.Encode(0, ctxRunLength)
						continue
					}
					enc.Encode(1, ctxRunLength)
					codeCleanupColumn(enc, p, cb, w, x, ys, ys+4, bitMask, orient, true)
					continue
				}
				codeCleanupColumn(enc, p, cb, w, x, ys, ye, bitMask, orient, false)
			}
		}
		recordPass()

		p.promoteRefinements()
	}

	cb.Data = enc.Flush()
	reconcilePassLengths(cb)
}

// reconcilePassLengths corrects the approximate per-pass deltas recorded
// during encoding so they sum exactly to len(cb.Data), by folding the
// difference into the final pass (spec.md §3 invariant sum(passLengths)
// == len(encodedData)).
func reconcilePassLengths(cb *CodeBlock) {
	if len(cb.PassLengths) == 0 {
		return
	}
	sum := 0
	for _, n := range cb.PassLengths {
		sum += n
	}
	cb.PassLengths[len(cb.PassLengths)-1] += len(cb.Data) - sum
}

// allEligibleForRunLength reports whether all four samples in the column
// stripe [ys,ys+4) at column x are not significant and have no
// significant neighbor (the precondition for the run-length shortcut).
func allEligibleForRunLength(p *plane, x, ys int) bool {
	for y := ys; y < ys+4; y++ {
		idx := p.idx(x, y)
		if p.sig[idx] || p.coded[idx] || p.anySignificantNeighbor(idx) {
			return false
		}
	}
	return true
}

// codeCleanupColumn codes the remaining not-yet-coded, not-yet-significant
// samples of a column slice [ys,ye) in the cleanup pass. viaRunLength is
// set when a run-length "at least one set" decision already committed to
// per-sample coding of all four rows of a full stripe, in which case every
// row is coded unconditionally under the zero-neighbor context.
func codeCleanupColumn(enc *mqcoder.Encoder, p *plane, cb *CodeBlock, w, x, ys, ye int, bitMask int32, orient Orient, viaRunLength bool) {
	for y := ys; y < ye; y++ {
		idx := p.idx(x, y)
		if p.sig[idx] || p.coded[idx] {
			continue
		}
		mi := y*w + x
		bit := 0
		if cb.Mag[mi]&bitMask != 0 {
			bit = 1
		}
		if !viaRunLength {
			h, v, d := p.neighborCounts(idx)
			ctx := zeroCodingContext(orient, h, v, d)
			enc.Encode(bit, ctx)
		} else {
			ctx := zeroCodingContext(orient, 0, 0, 0)
			enc.Encode(bit, ctx)
		}
		if bit == 1 {
			p.sig[idx] = true
			p.visited[idx] = true
			p.neg[idx] = cb.Neg[mi]
			encodeSign(enc, p, idx, cb.Neg[mi])
		}
	}
}

func encodeSign(enc *mqcoder.Encoder, p *plane, idx int, negative bool) {
	hC, vC := p.signContribs(idx)
	ctx, xorBit := signContext(hC, vC)
	raw := 0
	if negative {
		raw = 1
	}
	enc.Encode(raw^xorBit, ctx)
}
