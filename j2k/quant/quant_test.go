package quant

import "testing"

func TestQuantizeDequantizeMidpoint(t *testing.T) {
	coeffs := []float64{0.2, -3.7, 10.9, -0.1, 100}
	step := 2.5
	q := Quantize(coeffs, step)
	back := Dequantize(q, step)
	for i, v := range coeffs {
		// Reconstruction error must stay within one full step.
		diff := back[i] - v
		if diff < 0 {
			diff = -diff
		}
		if diff > step {
			t.Fatalf("sample %d: |%.3f - %.3f| = %.3f > step %.3f", i, back[i], v, diff, step)
		}
	}
}

func TestQuantizeIntLossless(t *testing.T) {
	coeffs := []int32{0, -5, 120, -3000, 7}
	q := QuantizeInt(coeffs, 1)
	back := DequantizeInt(q, 1)
	for i, v := range coeffs {
		if back[i] != v {
			t.Fatalf("lossless round-trip mismatch at %d: got %d want %d", i, back[i], v)
		}
	}
}

func TestStepSizeMonotonic(t *testing.T) {
	prev := StepSize(1, true, 0, 3, HL)
	for q := 10; q <= 99; q += 10 {
		cur := StepSize(q, true, 0, 3, HL)
		if cur > prev {
			t.Fatalf("StepSize not monotonically non-increasing: q=%d step=%v > prev=%v", q, cur, prev)
		}
		prev = cur
	}
	if StepSize(50, false, 0, 3, HL) != 1 {
		t.Fatalf("lossless step must be 1")
	}
}

func TestStepSizeEncodeDecodeRoundTrip(t *testing.T) {
	for _, step := range []float64{0.5, 1, 2.25, 10, 100} {
		enc := EncodeStep(step, 8)
		dec := DecodeStep(enc, 8)
		rel := (dec - step) / step
		if rel < 0 {
			rel = -rel
		}
		if rel > 0.01 {
			t.Fatalf("step %v: decoded %v, relative error %v", step, dec, rel)
		}
	}
}
