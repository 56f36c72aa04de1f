// Package colorspace implements the two inter-component transforms JPEG
// 2000 Part 1 defines: the reversible color transform (RCT, exact,
// paired with the CDF 5/3 lossless wavelet) and the irreversible color
// transform (ICT, an approximation of Rec. 601 YCbCr, paired with the
// CDF 9/7 lossy wavelet).
package colorspace

import "math"

// Transform identifies which inter-component transform a codestream's
// COD segment selects: the MCT byte is 1 for either transform and 0 for
// none, and the Transformation byte then picks RCT (CDF 5/3) or ICT
// (CDF 9/7).
type Transform int

const (
	TransformNone Transform = iota
	TransformRCT
	TransformICT
)

// ForwardRCT converts R,G,B samples to Y,Cb,Cr exactly (integer,
// invertible without rounding error).
func ForwardRCT(r, g, b int32) (y, cb, cr int32) {
	y = (r + 2*g + b) >> 2
	cb = b - g
	cr = r - g
	return
}

// InverseRCT is the exact inverse of ForwardRCT.
func InverseRCT(y, cb, cr int32) (r, g, b int32) {
	g = y - ((cb + cr) >> 2)
	r = cr + g
	b = cb + g
	return
}

// ForwardRCTComponents applies ForwardRCT across three equal-length
// component planes.
func ForwardRCTComponents(r, g, b []int32) (y, cb, cr []int32) {
	n := len(r)
	y, cb, cr = make([]int32, n), make([]int32, n), make([]int32, n)
	for i := 0; i < n; i++ {
		y[i], cb[i], cr[i] = ForwardRCT(r[i], g[i], b[i])
	}
	return
}

// InverseRCTComponents applies InverseRCT across three equal-length
// component planes.
func InverseRCTComponents(y, cb, cr []int32) (r, g, b []int32) {
	n := len(y)
	r, g, b = make([]int32, n), make([]int32, n), make([]int32, n)
	for i := 0; i < n; i++ {
		r[i], g[i], b[i] = InverseRCT(y[i], cb[i], cr[i])
	}
	return
}

// ForwardICT converts level-shifted R,G,B samples to Y,Cb,Cr using the
// ITU-R BT.601 coefficients ISO/IEC 15444-1 Annex G.2 specifies.
func ForwardICT(r, g, b float64) (y, cb, cr float64) {
	y = 0.299*r + 0.587*g + 0.114*b
	cb = -0.16875*r - 0.331260*g + 0.5*b
	cr = 0.5*r - 0.41869*g - 0.08131*b
	return
}

// InverseICT is the (lossy, floating point) inverse of ForwardICT.
func InverseICT(y, cb, cr float64) (r, g, b float64) {
	r = y + 1.402*cr
	g = y - 0.34413*cb - 0.71414*cr
	b = y + 1.772*cb
	return
}

// ForwardICTComponents applies ForwardICT across three equal-length
// component planes.
func ForwardICTComponents(r, g, b []float64) (y, cb, cr []float64) {
	n := len(r)
	y, cb, cr = make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		y[i], cb[i], cr[i] = ForwardICT(r[i], g[i], b[i])
	}
	return
}

// InverseICTComponents applies InverseICT across three equal-length
// component planes.
func InverseICTComponents(y, cb, cr []float64) (r, g, b []float64) {
	n := len(y)
	r, g, b = make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		r[i], g[i], b[i] = InverseICT(y[i], cb[i], cr[i])
	}
	return
}

// RoundToInt32 rounds a reconstructed ICT component to the nearest
// integer sample value.
func RoundToInt32(v float64) int32 {
	return int32(math.Round(v))
}
