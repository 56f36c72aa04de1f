// Package ccitt implements CCITT Group 3 (1D and 2D) and Group 4 fax
// compression, the scheme PDF's CCITTFaxDecode filter and TIFF's
// CCITT Fax codecs both use.
//
// Reference: ITU-T T.4 (Group 3), ITU-T T.6 (Group 4).
package ccitt

import (
	"errors"
	"fmt"

	"github.com/cocosip/go-imagecodecs/ccitt/huffman"
	"github.com/cocosip/go-imagecodecs/internal/bitio"
)

// ErrMalformed is returned for invalid mode/run codes or inconsistent
// geometry.
var ErrMalformed = errors.New("ccitt: malformed input")

// Options controls both Decode and Encode.
type Options struct {
	Group int // 3 or 4
	K     int // Group 3 only: 0 = pure 1D, >0 = mixed 1D/2D
	Width int

	// Rows bounds decoding to an exact row count, as callers that embed
	// dimensions elsewhere (TIFF IFD entries, a PDF /Height key) do. Zero
	// means decode until end-of-block/input instead.
	Rows int

	EncodedByteAlign bool
	EndOfLine        bool
	EndOfBlock       bool
	BlackIs1         bool

	// DamagedRowsBeforeError bounds how many rows Decode will substitute
	// with all-white content before giving up and reporting an error.
	DamagedRowsBeforeError int
}

// Bitmap is a 1-bit-per-pixel raster, row-major, one bool per pixel
// (true = black), independent of any wire-level bit polarity.
type Bitmap struct {
	Width, Height int
	Pix           []bool
}

func (b *Bitmap) row(y int) []bool {
	return b.Pix[y*b.Width : (y+1)*b.Width]
}

// Decode decodes a CCITT fax bitstream into a Bitmap of opts.Width columns,
// reading rows until opts.Rows rows are decoded (when Rows > 0), an
// end-of-block code ends the data, or the input is exhausted.
func Decode(data []byte, opts Options) (*Bitmap, error) {
	if opts.Width <= 0 || opts.Width > 32768 {
		return nil, fmt.Errorf("%w: width %d", ErrMalformed, opts.Width)
	}
	r := bitio.NewMSBReader(data)

	bmp := &Bitmap{Width: opts.Width}
	ref := make([]bool, opts.Width) // imaginary all-white line above the first row
	damaged := 0

	for iter := 0; ; iter++ {
		if iter >= bitio.MaxIterations {
			return nil, bitio.ErrIterationLimit
		}
		if opts.Rows > 0 && bmp.Height >= opts.Rows {
			break
		}
		if opts.EncodedByteAlign {
			r.AlignByte()
		}
		if r.AtEnd() {
			break
		}

		row, ok, eob, err := decodeRow(r, opts, ref)
		if err != nil {
			return nil, err
		}
		if eob {
			break
		}
		if !ok {
			damaged++
			if damaged > opts.DamagedRowsBeforeError {
				return nil, fmt.Errorf("%w: row %d undecodable", ErrMalformed, bmp.Height)
			}
			row = make([]bool, opts.Width) // substitute an all-white row
		}

		bmp.Pix = append(bmp.Pix, row...)
		bmp.Height++
		ref = row
	}

	return bmp, nil
}

// decodeRow decodes one scan line. ok is false if the row's codes could
// not be parsed (caller substitutes an all-white row and counts it as
// damaged); eob is true if an end-of-block/end-of-line condition says no
// more rows follow.
func decodeRow(r *bitio.MSBReader, opts Options, ref []bool) (row []bool, ok bool, eob bool, err error) {
	switch opts.Group {
	case 4:
		return decode2DRow(r, opts.Width, ref)
	case 3:
		if opts.K <= 0 {
			consumeEOL(r, opts)
			return decode1DRow(r, opts.Width)
		}
		consumeEOL(r, opts)
		tag := r.ReadBit() // 1 = 1D row, 0 = 2D row
		if tag == 1 {
			return decode1DRow(r, opts.Width)
		}
		return decode2DRow(r, opts.Width, ref)
	default:
		return nil, false, true, nil
	}
}

// consumeEOL skips any EOL codes (000000000001) at the current position;
// it is a no-op if the next bits are not an EOL. Fill bits ahead of an
// EOL are not skipped.
func consumeEOL(r *bitio.MSBReader, opts Options) {
	for r.PeekBits(huffman.EOLBits) == huffman.EOLCode {
		r.ReadBits(huffman.EOLBits)
	}
}

func decode1DRow(r *bitio.MSBReader, width int) ([]bool, bool, bool, error) {
	row := make([]bool, width)
	x := 0
	white := true
	for iter := 0; iter < bitio.MaxIterations; iter++ {
		if x >= width {
			return row, true, false, nil
		}
		run, err := huffman.DecodeRun(r, white)
		if err != nil {
			return nil, false, false, nil
		}
		end := x + run
		if end > width {
			end = width
		}
		if !white {
			for i := x; i < end; i++ {
				row[i] = true
			}
		}
		x = end
		white = !white
	}
	return nil, false, false, bitio.ErrIterationLimit
}

type transition struct {
	pos   int
	black bool
}

func transitionsOf(row []bool) []transition {
	var ts []transition
	prev := false
	for i, c := range row {
		if c != prev {
			ts = append(ts, transition{pos: i, black: c})
			prev = c
		}
	}
	return ts
}

// findB1B2 implements the T.4 4.2.1.3.1 definitions of b1 and b2 relative
// to a0 on the coding line, given the reference line's transitions and the
// current coding colour.
func findB1B2(ts []transition, width int, a0 int, black bool) (b1, b2 int) {
	i := 0
	for i < len(ts) && ts[i].pos <= a0 {
		i++
	}
	if i < len(ts) && ts[i].black == black {
		i++
	}
	if i < len(ts) {
		b1 = ts[i].pos
	} else {
		b1 = width
	}
	if i+1 < len(ts) {
		b2 = ts[i+1].pos
	} else {
		b2 = width
	}
	return
}

func decode2DRow(r *bitio.MSBReader, width int, ref []bool) ([]bool, bool, bool, error) {
	row := make([]bool, width)
	ts := transitionsOf(ref)

	a0 := -1
	black := false
	for iter := 0; iter < bitio.MaxIterations; iter++ {
		if a0 >= width {
			return row, true, false, nil
		}
		mode, ok := huffman.DecodeMode(r)
		if !ok {
			return nil, false, false, nil
		}
		if mode == huffman.ModeEOL {
			return nil, false, true, nil
		}

		b1, b2 := findB1B2(ts, width, a0, black)

		switch mode {
		case huffman.ModePass:
			fillRow(row, max0(a0), b2, black)
			a0 = b2

		case huffman.ModeHoriz:
			run1, err := huffman.DecodeRun(r, !black)
			if err != nil {
				return nil, false, false, nil
			}
			start := max0(a0)
			end1 := clamp(start+run1, width)
			fillRow(row, start, end1, black)

			run2, err := huffman.DecodeRun(r, black)
			if err != nil {
				return nil, false, false, nil
			}
			end2 := clamp(end1+run2, width)
			fillRow(row, end1, end2, !black)

			a0 = end2

		case huffman.ModeV0, huffman.ModeVR1, huffman.ModeVR2, huffman.ModeVR3,
			huffman.ModeVL1, huffman.ModeVL2, huffman.ModeVL3:
			a1 := b1 + verticalOffset(mode)
			fillRow(row, max0(a0), clamp(a1, width), black)
			a0 = a1
			black = !black

		default:
			return nil, false, false, nil
		}
	}
	return nil, false, false, bitio.ErrIterationLimit
}

func verticalOffset(m huffman.Mode) int {
	switch m {
	case huffman.ModeV0:
		return 0
	case huffman.ModeVR1:
		return 1
	case huffman.ModeVR2:
		return 2
	case huffman.ModeVR3:
		return 3
	case huffman.ModeVL1:
		return -1
	case huffman.ModeVL2:
		return -2
	case huffman.ModeVL3:
		return -3
	}
	return 0
}

func fillRow(row []bool, start, end int, black bool) {
	if !black || start >= end {
		return
	}
	for i := start; i < end; i++ {
		row[i] = true
	}
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clamp(v, max int) int {
	if v > max {
		return max
	}
	if v < 0 {
		return 0
	}
	return v
}

// Encode compresses bmp per opts.Group and opts.K. EncodedByteAlign and
// EndOfLine control row framing the way Decode expects them, and
// EndOfBlock appends an EOFB after a Group 4 block. BlackIs1 is not read
// here; only Pack applies it.
func Encode(bmp *Bitmap, opts Options) []byte {
	w := bitio.NewMSBWriter()
	ref := make([]bool, bmp.Width)

	for y := 0; y < bmp.Height; y++ {
		row := bmp.row(y)
		if opts.EncodedByteAlign {
			w.AlignByte()
		}
		switch opts.Group {
		case 4:
			encode2DRow(w, row, ref)
		case 3:
			if opts.K <= 0 {
				if opts.EndOfLine {
					w.WriteBits(huffman.EOLCode, huffman.EOLBits)
				}
				encode1DRow(w, row)
			} else {
				if opts.EndOfLine {
					w.WriteBits(huffman.EOLCode, huffman.EOLBits)
				}
				use1D := y%opts.K == 0
				if use1D {
					w.WriteBit(1)
					encode1DRow(w, row)
				} else {
					w.WriteBit(0)
					encode2DRow(w, row, ref)
				}
			}
		}
		ref = row
	}

	if opts.Group == 4 && opts.EndOfBlock {
		w.WriteBits(huffman.EOLCode, huffman.EOLBits)
		w.WriteBits(huffman.EOLCode, huffman.EOLBits)
	}

	return w.Bytes()
}

func encode1DRow(w *bitio.MSBWriter, row []bool) {
	x := 0
	white := true
	width := len(row)
	for x < width {
		run := 0
		for x+run < width && row[x+run] == !white {
			run++
		}
		huffman.EncodeRun(w, run, white)
		x += run
		white = !white
	}
}

func encode2DRow(w *bitio.MSBWriter, row []bool, ref []bool) {
	width := len(row)
	ts := transitionsOf(ref)
	codingTs := transitionsOf(row)

	a0 := -1
	black := false
	ci := 0 // index into codingTs of the next transition at or after a0+1

	for a0 < width {
		b1, b2 := findB1B2(ts, width, a0, black)

		// a1: next transition on the coding line strictly after a0.
		for ci < len(codingTs) && codingTs[ci].pos <= a0 {
			ci++
		}
		a1 := width
		if ci < len(codingTs) {
			a1 = codingTs[ci].pos
		}

		switch {
		case b2 < a1:
			huffman.EncodeMode(w, huffman.ModePass)
			a0 = b2

		case abs(a1-b1) <= 3:
			mode := verticalMode(a1 - b1)
			huffman.EncodeMode(w, mode)
			a0 = a1
			black = !black

		default:
			huffman.EncodeMode(w, huffman.ModeHoriz)
			start := max0(a0)
			run1 := a1 - start
			a2 := width
			if ci+1 < len(codingTs) {
				a2 = codingTs[ci+1].pos
			}
			run2 := a2 - a1
			huffman.EncodeRun(w, run1, !black)
			huffman.EncodeRun(w, run2, black)
			a0 = a2
		}
	}
}

func verticalMode(delta int) huffman.Mode {
	switch delta {
	case 0:
		return huffman.ModeV0
	case 1:
		return huffman.ModeVR1
	case 2:
		return huffman.ModeVR2
	case 3:
		return huffman.ModeVR3
	case -1:
		return huffman.ModeVL1
	case -2:
		return huffman.ModeVL2
	case -3:
		return huffman.ModeVL3
	}
	panic("ccitt: vertical offset out of range")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Pack converts a Bitmap into 1-bpp rows (MSB first), honoring BlackIs1.
func Pack(bmp *Bitmap, blackIs1 bool) []byte {
	stride := (bmp.Width + 7) / 8
	out := make([]byte, stride*bmp.Height)
	for y := 0; y < bmp.Height; y++ {
		row := bmp.row(y)
		for x, black := range row {
			bit := black == blackIs1
			if bit {
				out[y*stride+x/8] |= 1 << uint(7-x%8)
			}
		}
	}
	return out
}

// Unpack is the inverse of Pack.
func Unpack(data []byte, width, height int, blackIs1 bool) *Bitmap {
	stride := (width + 7) / 8
	bmp := &Bitmap{Width: width, Height: height, Pix: make([]bool, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			byteVal := data[y*stride+x/8]
			bit := (byteVal>>uint(7-x%8))&1 != 0
			bmp.Pix[y*width+x] = bit == blackIs1
		}
	}
	return bmp
}
