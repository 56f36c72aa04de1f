// Package gif implements the GIF87a/89a container: logical screen and
// image descriptors, graphics-control and NETSCAPE application
// extensions, Adam7 interlacing, and popularity-based palette
// quantization for multi-frame encoding. Entropy coding is delegated to
// gif/lzw.
package gif

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/cocosip/go-imagecodecs/gif/lzw"
	"github.com/cocosip/go-imagecodecs/internal/bitio"
)

// ErrMalformed is returned for an unrecognized signature, a block that
// violates its fixed-size framing, or geometry inconsistent with the
// logical screen.
var ErrMalformed = errors.New("gif: malformed input")

// RGB is one color-table entry.
type RGB struct{ R, G, B uint8 }

// BGRA is one decoded pixel in canonical top-down byte order.
type BGRA struct{ B, G, R, A uint8 }

// GraphicControl carries the optional 21 F9 extension that precedes an
// image descriptor.
type GraphicControl struct {
	DelayMS          int
	TransparentIndex int // -1 if none
	DisposalMethod   int
}

// Frame is one image descriptor plus its decoded pixel indices.
type Frame struct {
	Left, Top, Width, Height int
	Interlaced               bool
	LocalPalette             []RGB // nil if the frame uses the global table
	Indices                  []byte
	BGRA                     []BGRA // palette-resolved pixels, transparent index alpha = 0
	Control                  *GraphicControl
}

// File is a fully decoded GIF: logical screen plus an ordered frame list.
type File struct {
	Width, Height int
	GlobalPalette []RGB
	BackgroundIdx int
	LoopCount     int // -1 if no NETSCAPE2.0 extension was present
	Frames        []Frame
}

const (
	sigLen           = 6
	extIntroducer    = 0x21
	extGraphicCtrl   = 0xF9
	extApplication   = 0xFF
	imageSeparator   = 0x2C
	trailer          = 0x3B
	blockTerminator  = 0x00
)

// Decode parses a complete GIF87a/89a stream.
func Decode(data []byte) (*File, error) {
	r := bitio.NewLittleEndianReader(data)

	sig, err := r.Bytes(sigLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	sigStr := string(sig)
	if sigStr != "GIF87a" && sigStr != "GIF89a" {
		return nil, fmt.Errorf("%w: bad signature %q", ErrMalformed, sigStr)
	}

	width, err := r.U16()
	if err != nil {
		return nil, err
	}
	height, err := r.U16()
	if err != nil {
		return nil, err
	}
	packed, err := r.U8()
	if err != nil {
		return nil, err
	}
	bgIdx, err := r.U8()
	if err != nil {
		return nil, err
	}
	if _, err := r.U8(); err != nil { // pixel aspect ratio, unused
		return nil, err
	}

	f := &File{Width: int(width), Height: int(height), BackgroundIdx: int(bgIdx), LoopCount: -1}

	if packed&0x80 != 0 {
		size := 1 << ((packed & 0x07) + 1)
		pal, err := readPalette(r, size)
		if err != nil {
			return nil, err
		}
		f.GlobalPalette = pal
	}

	var pending *GraphicControl

	for iter := 0; iter < bitio.MaxIterations; iter++ {
		tag, err := r.U8()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		switch tag {
		case trailer:
			return f, nil

		case extIntroducer:
			label, err := r.U8()
			if err != nil {
				return nil, err
			}
			switch label {
			case extGraphicCtrl:
				body, err := readSubBlock(r)
				if err != nil || len(body) != 4 {
					return nil, fmt.Errorf("%w: graphic control extension", ErrMalformed)
				}
				if err := skipZeroBlock(r); err != nil {
					return nil, err
				}
				transparent := -1
				if body[0]&0x01 != 0 {
					transparent = int(body[3])
				}
				pending = &GraphicControl{
					DisposalMethod:   int(body[0]>>2) & 0x07,
					DelayMS:          int(body[1]) | int(body[2])<<8,
					TransparentIndex: transparent,
				}
				pending.DelayMS *= 10

			case extApplication:
				body, err := readSubBlock(r)
				if err != nil {
					return nil, err
				}
				if len(body) == 11 && string(body) == "NETSCAPE2.0" {
					sub, err := readSubBlock(r)
					if err != nil {
						return nil, err
					}
					if len(sub) == 3 && sub[0] == 1 {
						f.LoopCount = int(sub[1]) | int(sub[2])<<8
					}
				}
				if err := skipZeroBlock(r); err != nil {
					return nil, err
				}

			default:
				if err := skipZeroBlock(r); err != nil {
					return nil, err
				}
			}

		case imageSeparator:
			frame, err := decodeFrame(r, f.GlobalPalette)
			if err != nil {
				return nil, err
			}
			frame.Control = pending
			pending = nil
			pal := frame.LocalPalette
			if pal == nil {
				pal = f.GlobalPalette
			}
			frame.BGRA = resolveBGRA(frame.Indices, pal, frame.Control)
			f.Frames = append(f.Frames, frame)

		default:
			return nil, fmt.Errorf("%w: unknown block tag %#x", ErrMalformed, tag)
		}
	}
	return nil, bitio.ErrIterationLimit
}

func readPalette(r *bitio.LittleEndianReader, size int) ([]RGB, error) {
	raw, err := r.Bytes(size * 3)
	if err != nil {
		return nil, fmt.Errorf("%w: color table: %v", ErrMalformed, err)
	}
	pal := make([]RGB, size)
	for i := range pal {
		pal[i] = RGB{raw[i*3], raw[i*3+1], raw[i*3+2]}
	}
	return pal, nil
}

// readSubBlock reads exactly one length-prefixed sub-block's payload.
func readSubBlock(r *bitio.LittleEndianReader) ([]byte, error) {
	n, err := r.U8()
	if err != nil {
		return nil, err
	}
	return r.Bytes(int(n))
}

// skipZeroBlock consumes any remaining sub-blocks until the terminating
// zero-length block (extensions may carry more than one sub-block).
func skipZeroBlock(r *bitio.LittleEndianReader) error {
	for iter := 0; iter < bitio.MaxIterations; iter++ {
		n, err := r.U8()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if _, err := r.Bytes(int(n)); err != nil {
			return err
		}
	}
	return bitio.ErrIterationLimit
}

func decodeFrame(r *bitio.LittleEndianReader, global []RGB) (Frame, error) {
	left, err := r.U16()
	if err != nil {
		return Frame{}, err
	}
	top, err := r.U16()
	if err != nil {
		return Frame{}, err
	}
	width, err := r.U16()
	if err != nil {
		return Frame{}, err
	}
	height, err := r.U16()
	if err != nil {
		return Frame{}, err
	}
	packed, err := r.U8()
	if err != nil {
		return Frame{}, err
	}

	frame := Frame{
		Left: int(left), Top: int(top),
		Width: int(width), Height: int(height),
		Interlaced: packed&0x40 != 0,
	}

	if packed&0x80 != 0 {
		size := 1 << ((packed & 0x07) + 1)
		pal, err := readPalette(r, size)
		if err != nil {
			return Frame{}, err
		}
		frame.LocalPalette = pal
	}

	minCodeSize, err := r.U8()
	if err != nil {
		return Frame{}, err
	}

	var payload bytes.Buffer
	for iter := 0; ; iter++ {
		if iter >= bitio.MaxIterations {
			return Frame{}, bitio.ErrIterationLimit
		}
		n, err := r.U8()
		if err != nil {
			return Frame{}, err
		}
		if n == 0 {
			break
		}
		payload.WriteByte(byte(n))
		b, err := r.Bytes(int(n))
		if err != nil {
			return Frame{}, err
		}
		payload.Write(b)
	}

	indices, err := lzw.Decode(payload.Bytes(), int(minCodeSize))
	if err != nil {
		return Frame{}, fmt.Errorf("%w: frame lzw: %v", ErrMalformed, err)
	}
	if frame.Interlaced {
		indices = deinterlace(indices, frame.Width, frame.Height)
	}
	frame.Indices = indices

	return frame, nil
}

// resolveBGRA maps palette indices to canonical top-down BGRA-32 pixels.
// The graphic control's transparent index, if any, gets alpha 0; every
// other pixel is fully opaque.
func resolveBGRA(indices []byte, pal []RGB, ctrl *GraphicControl) []BGRA {
	transparent := -1
	if ctrl != nil {
		transparent = ctrl.TransparentIndex
	}
	out := make([]BGRA, len(indices))
	for i, idx := range indices {
		var c RGB
		if int(idx) < len(pal) {
			c = pal[idx]
		}
		a := uint8(255)
		if int(idx) == transparent {
			a = 0
		}
		out[i] = BGRA{B: c.B, G: c.G, R: c.R, A: a}
	}
	return out
}

// adam7Pass describes one interlacing pass: starting row and row step.
var adam7Pass = []struct{ start, step int }{
	{0, 8}, {4, 8}, {2, 4}, {1, 2},
}

// deinterlace reorders rows stored in Adam7 pass order back into
// top-to-bottom raster order.
func deinterlace(src []byte, width, height int) []byte {
	out := make([]byte, width*height)
	pos := 0
	for _, p := range adam7Pass {
		for y := p.start; y < height; y += p.step {
			copy(out[y*width:(y+1)*width], src[pos:pos+width])
			pos += width
		}
	}
	return out
}

// interlace is the inverse of deinterlace, used by Encode.
func interlace(src []byte, width, height int) []byte {
	out := make([]byte, 0, width*height)
	for _, p := range adam7Pass {
		for y := p.start; y < height; y += p.step {
			out = append(out, src[y*width:(y+1)*width]...)
		}
	}
	return out
}

// EncodeOptions controls Encode.
type EncodeOptions struct {
	Interlace bool
	LoopCount int // 0 = infinite loop (written iff more than one frame); negative = omit NETSCAPE2.0
}

// Encode writes f as a GIF89a stream. The first frame's pixels determine
// a single global palette built by popularity quantization; later frames
// are quantized to that same palette by nearest RGB distance.
func Encode(f *File, opts EncodeOptions) ([]byte, error) {
	if len(f.Frames) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrMalformed)
	}

	palette := f.GlobalPalette
	if palette == nil {
		palette = buildPalette(f.Frames[0])
	}

	w := bitio.NewLittleEndianWriter()
	w.WriteRaw([]byte("GIF89a"))
	w.U16(uint16(f.Width))
	w.U16(uint16(f.Height))

	paddedSize, bits := paddedPaletteSize(len(palette))
	w.U8(0x80 | byte(bits))
	w.U8(byte(f.BackgroundIdx))
	w.U8(0x00)
	writePalette(w, palette, paddedSize)

	if len(f.Frames) > 1 && opts.LoopCount >= 0 {
		w.WriteRaw([]byte{extIntroducer, extApplication, 11})
		w.WriteRaw([]byte("NETSCAPE2.0"))
		w.U8(3)
		w.U8(1)
		w.U16(uint16(opts.LoopCount))
		w.U8(0)
	}

	for _, frame := range f.Frames {
		// A frame without a local table already indexes the caller's
		// global palette; any other frame is re-indexed into palette.
		remapIndices := frame.LocalPalette != nil || f.GlobalPalette == nil
		encodeFrame(w, frame, palette, remapIndices, opts.Interlace)
	}

	w.U8(trailer)
	return w.Bytes(), nil
}

func encodeFrame(w *bitio.LittleEndianWriter, frame Frame, palette []RGB, remapIndices bool, interlaced bool) {
	if frame.Control != nil {
		c := frame.Control
		w.WriteRaw([]byte{extIntroducer, extGraphicCtrl, 4})
		flags := byte(c.DisposalMethod&0x07) << 2
		transparent := c.TransparentIndex >= 0
		if transparent {
			flags |= 0x01
		}
		w.U8(flags)
		w.U16(uint16(c.DelayMS / 10))
		idx := 0
		if transparent {
			idx = c.TransparentIndex
		}
		w.U8(byte(idx))
		w.U8(blockTerminator)
	}

	indices := frame.Indices
	if remapIndices {
		indices = remap(indices, frame.LocalPalette, palette)
	}

	w.U8(imageSeparator)
	w.U16(uint16(frame.Left))
	w.U16(uint16(frame.Top))
	w.U16(uint16(frame.Width))
	w.U16(uint16(frame.Height))

	packed := byte(0)
	if interlaced {
		packed |= 0x40
		indices = interlace(indices, frame.Width, frame.Height)
	}
	w.U8(packed)

	minCodeSize := 2
	for minCodeSize < 8 && 1<<uint(minCodeSize) < len(palette) {
		minCodeSize++
	}
	w.U8(byte(minCodeSize))

	sub := lzw.Encode(indices, minCodeSize)
	w.WriteRaw(sub)
}

func paddedPaletteSize(n int) (size, bitsMinus1 int) {
	size = 2
	bits := 1
	for size < n && size < 256 {
		size <<= 1
		bits++
	}
	return size, bits - 1
}

func writePalette(w *bitio.LittleEndianWriter, pal []RGB, paddedSize int) {
	for i := 0; i < paddedSize; i++ {
		if i < len(pal) {
			w.U8(pal[i].R)
			w.U8(pal[i].G)
			w.U8(pal[i].B)
		} else {
			w.U8(0)
			w.U8(0)
			w.U8(0)
		}
	}
}

// buildPalette performs popularity quantization: count color frequency
// in frame's source palette (LocalPalette, or fall back to a grayscale
// ramp if absent), and keep the most frequent up to 256 entries.
func buildPalette(frame Frame) []RGB {
	src := frame.LocalPalette
	if src == nil {
		src = make([]RGB, 256)
		for i := range src {
			src[i] = RGB{uint8(i), uint8(i), uint8(i)}
		}
	}

	counts := make([]int, len(src))
	for _, idx := range frame.Indices {
		if int(idx) < len(counts) {
			counts[idx]++
		}
	}

	type ranked struct {
		idx   int
		count int
	}
	ranks := make([]ranked, len(src))
	for i := range src {
		ranks[i] = ranked{i, counts[i]}
	}
	for i := 1; i < len(ranks); i++ {
		for j := i; j > 0 && ranks[j].count > ranks[j-1].count; j-- {
			ranks[j], ranks[j-1] = ranks[j-1], ranks[j]
		}
	}

	n := len(ranks)
	if n > 256 {
		n = 256
	}
	pal := make([]RGB, n)
	for i := 0; i < n; i++ {
		pal[i] = src[ranks[i].idx]
	}
	return pal
}

// remap re-indexes src (palette indices into fromPal, or a grayscale
// ramp if fromPal is nil) to the nearest color in toPal by squared RGB
// distance.
func remap(src []byte, fromPal, toPal []RGB) []byte {
	if fromPal == nil {
		fromPal = make([]RGB, 256)
		for i := range fromPal {
			fromPal[i] = RGB{uint8(i), uint8(i), uint8(i)}
		}
	}

	cache := make(map[byte]byte, 256)
	out := make([]byte, len(src))
	for i, idx := range src {
		if v, ok := cache[idx]; ok {
			out[i] = v
			continue
		}
		c := RGB{0, 0, 0}
		if int(idx) < len(fromPal) {
			c = fromPal[idx]
		}
		best, bestDist := 0, -1
		for j, p := range toPal {
			dr := int(c.R) - int(p.R)
			dg := int(c.G) - int(p.G)
			db := int(c.B) - int(p.B)
			d := dr*dr + dg*dg + db*db
			if bestDist < 0 || d < bestDist {
				bestDist = d
				best = j
			}
		}
		cache[idx] = byte(best)
		out[i] = byte(best)
	}
	return out
}
