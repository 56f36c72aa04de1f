package wavelet

import (
	"math"
	"testing"
)

func TestForward97Inverse97_1D(t *testing.T) {
	sizes := []int{2, 3, 4, 5, 8, 15, 16, 33, 64}
	for _, n := range sizes {
		orig := make([]float64, n)
		for i := range orig {
			orig[i] = float64(i*7-n) + 0.25
		}
		data := append([]float64(nil), orig...)
		Forward97_1D(data)
		Inverse97_1D(data)
		for i := range orig {
			if math.Abs(data[i]-orig[i]) > 1e-6 {
				t.Fatalf("n=%d: round-trip mismatch at %d: got %v want %v", n, i, data[i], orig[i])
			}
		}
	}
}

func TestForward53Inverse53_1D(t *testing.T) {
	sizes := []int{2, 3, 4, 5, 8, 15, 16, 33, 64}
	for _, n := range sizes {
		orig := make([]int32, n)
		for i := range orig {
			orig[i] = int32(i*3 - n)
		}
		data := append([]int32(nil), orig...)
		Forward53_1D(data)
		Inverse53_1D(data)
		for i := range orig {
			if data[i] != orig[i] {
				t.Fatalf("n=%d: round-trip mismatch at %d: got %d want %d", n, i, data[i], orig[i])
			}
		}
	}
}

// TestDWT97RoundTrip2D exercises invariant 1 of the spec: forward then
// inverse on a W x H x levels plane recovers the input within 1e-4
// relative error per sample.
func TestDWT97RoundTrip2D(t *testing.T) {
	dims := []struct{ w, h, levels int }{
		{4, 4, 1}, {8, 8, 2}, {16, 16, 3}, {9, 7, 2}, {33, 17, 2},
	}
	for _, d := range dims {
		n := d.w * d.h
		orig := make([]float64, n)
		for i := range orig {
			orig[i] = float64((i*31)%97) - 48
		}
		data := append([]float64(nil), orig...)
		Forward2D97(data, d.w, d.h, d.levels)
		Inverse2D97(data, d.w, d.h, d.levels)
		for i := range orig {
			diff := math.Abs(data[i] - orig[i])
			denom := math.Max(1, math.Abs(orig[i]))
			if diff/denom > 1e-4 {
				t.Fatalf("%+v: sample %d: got %v want %v", d, i, data[i], orig[i])
			}
		}
	}
}

// TestDWT53RoundTrip2D exercises invariant 2: CDF 5/3 round-trips exactly.
func TestDWT53RoundTrip2D(t *testing.T) {
	dims := []struct{ w, h, levels int }{
		{4, 4, 1}, {8, 8, 2}, {16, 16, 3}, {9, 7, 2}, {33, 17, 2}, {1728, 1, 1},
	}
	for _, d := range dims {
		n := d.w * d.h
		orig := make([]int32, n)
		for i := range orig {
			orig[i] = int32((i*31)%97) - 48
		}
		data := append([]int32(nil), orig...)
		Forward2D53(data, d.w, d.h, d.levels)
		Inverse2D53(data, d.w, d.h, d.levels)
		for i := range orig {
			if data[i] != orig[i] {
				t.Fatalf("%+v: sample %d: got %d want %d", d, i, data[i], orig[i])
			}
		}
	}
}

func TestLLSize(t *testing.T) {
	w, h := LLSize(16, 16, 2)
	if w != 4 || h != 4 {
		t.Fatalf("LLSize(16,16,2) = %d,%d want 4,4", w, h)
	}
	w, h = LLSize(9, 7, 1)
	if w != 5 || h != 4 {
		t.Fatalf("LLSize(9,7,1) = %d,%d want 5,4", w, h)
	}
}
