package mqcoder

import "testing"

// TestRoundTripSingleContext exercises scenario S6 from spec.md §8: encode
// 1,0,1,1,0,0,0,1 under context 0 (initial state, MPS=0), flush, and
// recover the same sequence from a fresh decoder.
func TestRoundTripSingleContext(t *testing.T) {
	bits := []int{1, 0, 1, 1, 0, 0, 0, 1}

	enc := NewEncoder(1)
	for _, b := range bits {
		enc.Encode(b, 0)
	}
	data := enc.Flush()

	dec := NewDecoder(data, 1)
	for i, want := range bits {
		got := dec.Decode(0)
		if got != want {
			t.Fatalf("bit %d: got %d want %d", i, got, want)
		}
	}
}

// TestRoundTripMultiContext exercises invariant 3: any sequence of
// (context, bit) pairs round-trips, with contexts independent.
func TestRoundTripMultiContext(t *testing.T) {
	const numCtx = 4
	type pair struct{ ctx, bit int }
	var seq []pair
	seed := 12345
	for i := 0; i < 2000; i++ {
		seed = (seed*1103515245 + 12345) & 0x7fffffff
		seq = append(seq, pair{ctx: seed % numCtx, bit: (seed >> 3) & 1})
	}

	enc := NewEncoder(numCtx)
	for _, p := range seq {
		enc.Encode(p.bit, p.ctx)
	}
	data := enc.Flush()

	dec := NewDecoder(data, numCtx)
	for i, p := range seq {
		got := dec.Decode(p.ctx)
		if got != p.bit {
			t.Fatalf("pair %d (ctx=%d): got %d want %d", i, p.ctx, got, p.bit)
		}
	}
}

// TestEncoderResetDecoderRebind exercises per-segment termination: each
// segment gets an independent byte boundary while contexts keep adapting
// across segments.
func TestEncoderResetDecoderRebind(t *testing.T) {
	segments := [][]int{
		{1, 0, 1, 1},
		{0, 0, 1, 0, 1},
		{1, 1, 1, 0, 0, 1},
	}

	enc := NewEncoder(2)
	var encoded [][]byte
	for _, seg := range segments {
		for i, b := range seg {
			enc.Encode(b, i%2)
		}
		encoded = append(encoded, enc.Flush())
		enc.Reset()
	}

	dec := NewDecoder(encoded[0], 2)
	for i, b := range segments[0] {
		if got := dec.Decode(i % 2); got != b {
			t.Fatalf("segment 0 bit %d: got %d want %d", i, got, b)
		}
	}
	for s := 1; s < len(segments); s++ {
		dec.Rebind(encoded[s])
		for i, b := range segments[s] {
			if got := dec.Decode(i % 2); got != b {
				t.Fatalf("segment %d bit %d: got %d want %d", s, i, got, b)
			}
		}
	}
}

func TestResetContexts(t *testing.T) {
	enc := NewEncoder(2)
	enc.Encode(1, 0)
	enc.Encode(1, 0)
	enc.ResetContexts()
	if enc.contexts[0].state != 0 || enc.contexts[0].mps != 0 {
		t.Fatalf("ResetContexts did not clear context state")
	}
}
