package tier1

import "testing"

func makeBlock(w, h int, mag []int32, neg []bool) *CodeBlock {
	return &CodeBlock{
		W: w, H: h,
		Mag:       append([]int32(nil), mag...),
		Neg:       append([]bool(nil), neg...),
		BitPlanes: BitPlanesFor(mag),
	}
}

func roundTrip(t *testing.T, orient Orient, w, h int, mag []int32, neg []bool) {
	t.Helper()
	enc := makeBlock(w, h, mag, neg)
	Encode(enc, orient)

	dec := &CodeBlock{
		X: enc.X, Y: enc.Y, W: w, H: h,
		BitPlanes: enc.BitPlanes,
		Data:      enc.Data,
		Mag:       make([]int32, w*h),
		Neg:       make([]bool, w*h),
	}
	Decode(dec, orient)

	for i := range mag {
		if dec.Mag[i] != mag[i] {
			t.Fatalf("mag[%d] = %d, want %d", i, dec.Mag[i], mag[i])
		}
		if mag[i] != 0 && dec.Neg[i] != neg[i] {
			t.Fatalf("neg[%d] = %v, want %v", i, dec.Neg[i], neg[i])
		}
	}
}

func TestRoundTripAllZero(t *testing.T) {
	w, h := 8, 8
	mag := make([]int32, w*h)
	neg := make([]bool, w*h)
	roundTrip(t, OrientLL, w, h, mag, neg)
}

func TestRoundTripSparse(t *testing.T) {
	w, h := 8, 8
	mag := make([]int32, w*h)
	neg := make([]bool, w*h)
	mag[0] = 5
	mag[9] = 200
	neg[9] = true
	mag[63] = 1
	roundTrip(t, OrientHL, w, h, mag, neg)
}

func TestRoundTripPartialStripe(t *testing.T) {
	// Height not a multiple of 4 exercises the run-length shortcut's
	// exclusion of the final partial stripe.
	w, h := 5, 6
	mag := make([]int32, w*h)
	neg := make([]bool, w*h)
	seed := 7
	for i := range mag {
		seed = (seed*1103515245 + 12345) & 0x7fffffff
		if seed%5 == 0 {
			mag[i] = int32(seed % 64)
			neg[i] = seed%2 == 0
		}
	}
	roundTrip(t, OrientLH, w, h, mag, neg)
}

func TestRoundTripDense(t *testing.T) {
	w, h := 16, 16
	mag := make([]int32, w*h)
	neg := make([]bool, w*h)
	seed := 42
	for i := range mag {
		seed = (seed*1103515245 + 12345) & 0x7fffffff
		mag[i] = int32(seed % 512)
		neg[i] = (seed>>4)%2 == 0
	}
	roundTrip(t, OrientHH, w, h, mag, neg)
}

func TestBitPlanesFor(t *testing.T) {
	if got := BitPlanesFor([]int32{0, 0, 0}); got != 0 {
		t.Fatalf("BitPlanesFor(all zero) = %d, want 0", got)
	}
	if got := BitPlanesFor([]int32{0, 5, 3}); got != 3 {
		t.Fatalf("BitPlanesFor([0,5,3]) = %d, want 3", got)
	}
}
