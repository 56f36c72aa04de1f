package huffman

import (
	"testing"

	"github.com/cocosip/go-imagecodecs/internal/bitio"
)

func allEntries(white bool) []RunCode {
	term, makeup := blackTerm, blackMakeup
	if white {
		term, makeup = whiteTerm, whiteMakeup
	}
	var all []RunCode
	all = append(all, term...)
	all = append(all, makeup...)
	all = append(all, extMakeup...)
	return all
}

func TestNoCodeIsPrefixOfAnother(t *testing.T) {
	for _, white := range []bool{true, false} {
		entries := allEntries(white)
		for i, a := range entries {
			for j, b := range entries {
				if i == j || a.Bits > b.Bits {
					continue
				}
				if a.Code == (b.Code >> uint(b.Bits-a.Bits)) {
					t.Fatalf("white=%v: code %#x/%d is a prefix of %#x/%d (runs %d,%d)",
						white, a.Code, a.Bits, b.Code, b.Bits, a.Run, b.Run)
				}
			}
		}
	}
}

func TestRunRoundTrip(t *testing.T) {
	for _, white := range []bool{true, false} {
		for _, n := range []int{0, 1, 7, 63, 64, 127, 1728, 1792, 2560, 2623, 4000} {
			w := bitio.NewMSBWriter()
			EncodeRun(w, n, white)
			r := bitio.NewMSBReader(w.Bytes())
			got, err := DecodeRun(r, white)
			if err != nil {
				t.Fatalf("white=%v n=%d: %v", white, n, err)
			}
			if got != n {
				t.Fatalf("white=%v n=%d: decoded %d", white, n, got)
			}
		}
	}
}

func TestModeRoundTrip(t *testing.T) {
	for _, m := range []Mode{ModePass, ModeHoriz, ModeV0, ModeVR1, ModeVR2, ModeVR3, ModeVL1, ModeVL2, ModeVL3} {
		w := bitio.NewMSBWriter()
		EncodeMode(w, m)
		r := bitio.NewMSBReader(w.Bytes())
		got, ok := DecodeMode(r)
		if !ok {
			t.Fatalf("mode %v: decode failed", m)
		}
		if got != m {
			t.Fatalf("mode %v: decoded %v", m, got)
		}
	}
}
