package colorspace

import "testing"

func TestRCTRoundTripExact(t *testing.T) {
	cases := [][3]int32{{10, 20, 30}, {-5, 0, 5}, {255, 128, 0}, {0, 0, 0}}
	for _, c := range cases {
		y, cb, cr := ForwardRCT(c[0], c[1], c[2])
		r, g, b := InverseRCT(y, cb, cr)
		if r != c[0] || g != c[1] || b != c[2] {
			t.Fatalf("RCT round trip %v -> (%d,%d,%d) -> (%d,%d,%d)", c, y, cb, cr, r, g, b)
		}
	}
}

func TestICTRoundTripApprox(t *testing.T) {
	cases := [][3]float64{{10, 20, 30}, {-5, 0, 5}, {120, 64, -30}}
	for _, c := range cases {
		y, cb, cr := ForwardICT(c[0], c[1], c[2])
		r, g, b := InverseICT(y, cb, cr)
		if diff(r, c[0]) > 1e-6 || diff(g, c[1]) > 1e-6 || diff(b, c[2]) > 1e-6 {
			t.Fatalf("ICT round trip %v -> (%f,%f,%f) -> (%f,%f,%f)", c, y, cb, cr, r, g, b)
		}
	}
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

func TestComponentsRoundTrip(t *testing.T) {
	r := []int32{1, 2, 3, 4}
	g := []int32{5, 6, 7, 8}
	b := []int32{9, 10, 11, 12}
	y, cb, cr := ForwardRCTComponents(r, g, b)
	r2, g2, b2 := InverseRCTComponents(y, cb, cr)
	for i := range r {
		if r2[i] != r[i] || g2[i] != g[i] || b2[i] != b[i] {
			t.Fatalf("component round trip mismatch at %d", i)
		}
	}
}
