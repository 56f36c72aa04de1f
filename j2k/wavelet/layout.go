package wavelet

// LLSize returns the width/height of the LL subband after a multilevel
// decomposition of a width x height plane with origin (0,0), matching the
// ceil(prev/2) split used by Forward2D97/Forward2D53 at each level.
func LLSize(width, height, levels int) (llWidth, llHeight int) {
	w, h := width, height
	for level := 0; level < levels; level++ {
		if w <= 1 && h <= 1 {
			break
		}
		w, h = (w+1)/2, (h+1)/2
	}
	return w, h
}

// Forward2D97 applies `levels` decomposition levels of the CDF 9/7 lifting
// transform to the width x height plane stored row-major in data (stride
// == width), in place. Each level transforms every active row, then every
// active column, then recurses on the upper-left LL quadrant.
func Forward2D97(data []float64, width, height, levels int) {
	w, h := width, height
	row := make([]float64, 0, width)
	col := make([]float64, 0, height)
	for level := 0; level < levels; level++ {
		if w < 2 && h < 2 {
			break
		}
		row = row[:w]
		for y := 0; y < h; y++ {
			copy(row, data[y*width:y*width+w])
			Forward97_1D(row)
			copy(data[y*width:y*width+w], row)
		}
		col = col[:h]
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				col[y] = data[y*width+x]
			}
			Forward97_1D(col)
			for y := 0; y < h; y++ {
				data[y*width+x] = col[y]
			}
		}
		w, h = (w+1)/2, (h+1)/2
	}
}

// Inverse2D97 undoes Forward2D97: levels are unwound coarsest-first,
// columns before rows within each level.
func Inverse2D97(data []float64, width, height, levels int) {
	sizes := make([][2]int, levels+1)
	w, h := width, height
	sizes[0] = [2]int{w, h}
	for level := 0; level < levels; level++ {
		if w < 2 && h < 2 {
			sizes[level+1] = sizes[level]
			continue
		}
		w, h = (w+1)/2, (h+1)/2
		sizes[level+1] = [2]int{w, h}
	}
	col := make([]float64, 0, height)
	row := make([]float64, 0, width)
	for level := levels - 1; level >= 0; level-- {
		aw, ah := sizes[level][0], sizes[level][1]
		if aw < 2 && ah < 2 {
			continue
		}
		col = col[:ah]
		for x := 0; x < aw; x++ {
			for y := 0; y < ah; y++ {
				col[y] = data[y*width+x]
			}
			Inverse97_1D(col)
			for y := 0; y < ah; y++ {
				data[y*width+x] = col[y]
			}
		}
		row = row[:aw]
		for y := 0; y < ah; y++ {
			copy(row, data[y*width:y*width+aw])
			Inverse97_1D(row)
			copy(data[y*width:y*width+aw], row)
		}
	}
}

// Forward2D53 is the integer-reversible equivalent of Forward2D97.
func Forward2D53(data []int32, width, height, levels int) {
	w, h := width, height
	row := make([]int32, 0, width)
	col := make([]int32, 0, height)
	for level := 0; level < levels; level++ {
		if w < 2 && h < 2 {
			break
		}
		row = row[:w]
		for y := 0; y < h; y++ {
			copy(row, data[y*width:y*width+w])
			Forward53_1D(row)
			copy(data[y*width:y*width+w], row)
		}
		col = col[:h]
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				col[y] = data[y*width+x]
			}
			Forward53_1D(col)
			for y := 0; y < h; y++ {
				data[y*width+x] = col[y]
			}
		}
		w, h = (w+1)/2, (h+1)/2
	}
}

// Inverse2D53 undoes Forward2D53 exactly, in integer arithmetic.
func Inverse2D53(data []int32, width, height, levels int) {
	sizes := make([][2]int, levels+1)
	w, h := width, height
	sizes[0] = [2]int{w, h}
	for level := 0; level < levels; level++ {
		if w < 2 && h < 2 {
			sizes[level+1] = sizes[level]
			continue
		}
		w, h = (w+1)/2, (h+1)/2
		sizes[level+1] = [2]int{w, h}
	}
	col := make([]int32, 0, height)
	row := make([]int32, 0, width)
	for level := levels - 1; level >= 0; level-- {
		aw, ah := sizes[level][0], sizes[level][1]
		if aw < 2 && ah < 2 {
			continue
		}
		col = col[:ah]
		for x := 0; x < aw; x++ {
			for y := 0; y < ah; y++ {
				col[y] = data[y*width+x]
			}
			Inverse53_1D(col)
			for y := 0; y < ah; y++ {
				data[y*width+x] = col[y]
			}
		}
		row = row[:aw]
		for y := 0; y < ah; y++ {
			copy(row, data[y*width:y*width+aw])
			Inverse53_1D(row)
			copy(data[y*width:y*width+aw], row)
		}
	}
}
