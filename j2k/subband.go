package j2k

import "github.com/cocosip/go-imagecodecs/j2k/tier1"

// codeBlockSize is this implementation's fixed code-block dimension
// (spec.md §3: "code-block width and height are powers of two between 4
// and 1024; this implementation uses 64").
const codeBlockSize = 64

// subband describes one LL/HL/LH/HH region of a component's transformed
// coefficient plane, in terms of its offset and extent within that
// full-size plane (the wavelet transform works in place and never
// relocates a subband's samples).
type subband struct {
	Orient          tier1.Orient
	Level           int // 0 = finest detail; numLevels = the coarsest LL
	OffX, OffY      int
	Width, Height   int
	Stride          int // row stride of the full component plane
}

// subbandSizes returns, for `levels` decomposition levels of a
// width x height plane, the sequence of active-region sizes
// sizes[0..levels] where sizes[0] = (width,height) and sizes[i+1] is the
// ceil(sizes[i]/2) LL split, matching wavelet.Forward2D97/53's recursion.
func subbandSizes(width, height, levels int) [][2]int {
	sizes := make([][2]int, levels+1)
	w, h := width, height
	sizes[0] = [2]int{w, h}
	for l := 0; l < levels; l++ {
		if w < 2 && h < 2 {
			sizes[l+1] = sizes[l]
			continue
		}
		w, h = (w+1)/2, (h+1)/2
		sizes[l+1] = [2]int{w, h}
	}
	return sizes
}

// subbandsForComponent lists every subband of a width x height component
// plane decomposed to `levels` levels, in the order the QCD segment
// lists step sizes: LL(levels) first, then HL,LH,HH per level from
// levels-1 down to 0.
func subbandsForComponent(width, height, levels int) []subband {
	sizes := subbandSizes(width, height, levels)
	llw, llh := sizes[levels][0], sizes[levels][1]
	out := []subband{{Orient: tier1.OrientLL, Level: levels, OffX: 0, OffY: 0, Width: llw, Height: llh, Stride: width}}
	for l := levels - 1; l >= 0; l-- {
		w, h := sizes[l][0], sizes[l][1]
		lw, lh := sizes[l+1][0], sizes[l+1][1]
		if w-lw > 0 && lh > 0 {
			out = append(out, subband{Orient: tier1.OrientHL, Level: l, OffX: lw, OffY: 0, Width: w - lw, Height: lh, Stride: width})
		}
		if lw > 0 && h-lh > 0 {
			out = append(out, subband{Orient: tier1.OrientLH, Level: l, OffX: 0, OffY: lh, Width: lw, Height: h - lh, Stride: width})
		}
		if w-lw > 0 && h-lh > 0 {
			out = append(out, subband{Orient: tier1.OrientHH, Level: l, OffX: lw, OffY: lh, Width: w - lw, Height: h - lh, Stride: width})
		}
	}
	return out
}

// blockRect is one code-block's position and size within its subband.
type blockRect struct {
	X, Y, W, H int
}

// tileSubband partitions a subband's width x height extent into
// codeBlockSize x codeBlockSize code-blocks (the last row/column of
// blocks may be smaller).
func tileSubband(width, height int) []blockRect {
	var out []blockRect
	for y := 0; y < height; y += codeBlockSize {
		h := codeBlockSize
		if y+h > height {
			h = height - y
		}
		for x := 0; x < width; x += codeBlockSize {
			w := codeBlockSize
			if x+w > width {
				w = width - x
			}
			out = append(out, blockRect{X: x, Y: y, W: w, H: h})
		}
	}
	return out
}
