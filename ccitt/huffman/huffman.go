// Package huffman implements the Modified Huffman run-length codes CCITT
// Group 3/4 fax coding uses for white and black runs, plus the shared
// extended make-up codes and the two-dimensional mode codes.
//
// Reference: ITU-T T.4 Tables 2-4.
package huffman

import (
	"errors"

	"github.com/cocosip/go-imagecodecs/internal/bitio"
)

// ErrInvalidCode is returned when no table entry matches the next bits.
var ErrInvalidCode = errors.New("huffman: invalid code")

// RunCode is one (code, bit length, run length) entry.
type RunCode struct {
	Code uint32
	Bits int
	Run  int
}

// DecodeRun decodes one white or black run, following make-up codes with
// a terminating code as ITU-T T.4 4.1.2 requires.
func DecodeRun(r *bitio.MSBReader, white bool) (int, error) {
	total := 0
	for iter := 0; iter < bitio.MaxIterations; iter++ {
		run, ok := matchRun(r, white)
		if !ok {
			return 0, ErrInvalidCode
		}
		total += run
		if run < 64 {
			return total, nil
		}
	}
	return 0, bitio.ErrIterationLimit
}

func matchRun(r *bitio.MSBReader, white bool) (int, bool) {
	term, makeup := blackTerm, blackMakeup
	if white {
		term, makeup = whiteTerm, whiteMakeup
	}
	for bits := 1; bits <= 13; bits++ {
		v := r.PeekBits(bits)
		if e, ok := lookup(term, bits, v); ok {
			r.ReadBits(bits)
			return e.Run, true
		}
		if e, ok := lookup(makeup, bits, v); ok {
			r.ReadBits(bits)
			return e.Run, true
		}
		if e, ok := lookup(extMakeup, bits, v); ok {
			r.ReadBits(bits)
			return e.Run, true
		}
	}
	return 0, false
}

func lookup(table []RunCode, bits int, v uint32) (RunCode, bool) {
	for _, e := range table {
		if e.Bits == bits && e.Code == v {
			return e, true
		}
	}
	return RunCode{}, false
}

// EncodeRun appends w's run-length encoding of n (white or black) to w,
// splitting n into make-up codes (and an extended make-up code, if
// needed) followed by a terminating code.
func EncodeRun(w *bitio.MSBWriter, n int, white bool) {
	term, makeup := blackTerm, blackMakeup
	if white {
		term, makeup = whiteTerm, whiteMakeup
	}
	for n >= 2560 {
		e := findExact(extMakeup, 2560)
		w.WriteBits(e.Code, e.Bits)
		n -= 2560
	}
	for n >= 1792 {
		e := findLargestMakeup(extMakeup, n)
		w.WriteBits(e.Code, e.Bits)
		n -= e.Run
	}
	for n >= 64 {
		e := findLargestMakeup(makeup, n)
		w.WriteBits(e.Code, e.Bits)
		n -= e.Run
	}
	e := findExact(term, n)
	w.WriteBits(e.Code, e.Bits)
}

func findExact(table []RunCode, run int) RunCode {
	for _, e := range table {
		if e.Run == run {
			return e
		}
	}
	panic("huffman: no exact run-length code")
}

// findLargestMakeup returns the largest make-up code not exceeding n.
func findLargestMakeup(table []RunCode, n int) RunCode {
	best := table[0]
	for _, e := range table {
		if e.Run <= n && e.Run > best.Run {
			best = e
		}
	}
	return best
}

// Mode identifies a two-dimensional (G3-2D / G4) line-coding mode.
type Mode int

const (
	ModePass Mode = iota
	ModeHoriz
	ModeV0
	ModeVR1
	ModeVR2
	ModeVR3
	ModeVL1
	ModeVL2
	ModeVL3
	ModeEOL
)

type modeCode struct {
	Code uint32
	Bits int
	Mode Mode
}

var modeCodes = []modeCode{
	{0x1, 1, ModeV0},
	{0x3, 3, ModeVR1},
	{0x2, 3, ModeVL1},
	{0x1, 3, ModeHoriz},
	{0x1, 4, ModePass},
	{0x3, 6, ModeVR2},
	{0x2, 6, ModeVL2},
	{0x3, 7, ModeVR3},
	{0x2, 7, ModeVL3},
	{0x1, 12, ModeEOL},
}

// DecodeMode reads the next two-dimensional mode code.
func DecodeMode(r *bitio.MSBReader) (Mode, bool) {
	for bits := 1; bits <= 12; bits++ {
		v := r.PeekBits(bits)
		for _, e := range modeCodes {
			if e.Bits == bits && e.Code == v {
				r.ReadBits(bits)
				return e.Mode, true
			}
		}
	}
	return 0, false
}

// EncodeMode appends m's two-dimensional mode code to w.
func EncodeMode(w *bitio.MSBWriter, m Mode) {
	for _, e := range modeCodes {
		if e.Mode == m {
			w.WriteBits(e.Code, e.Bits)
			return
		}
	}
	panic("huffman: unknown mode")
}

// EOL is the synthetic end-of-line code (000000000001, 12 bits) that
// precedes each G3 row and terminates a G4 block (repeated twice, as
// EOFB) when EndOfBlock signaling is enabled.
const (
	EOLCode = 0x1
	EOLBits = 12
)
