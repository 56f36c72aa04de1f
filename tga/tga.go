// Package tga implements the Truevision TGA image format: the 18-byte
// header, optional color map, RLE and raw packet pixel coding across
// 8/16/24/32-bit depths, and orientation normalization to a canonical
// top-down, left-to-right BGRA-32 raster.
package tga

import (
	"errors"
	"fmt"

	"github.com/cocosip/go-imagecodecs/internal/bitio"
)

// ErrMalformed is returned for a header with inconsistent geometry, an
// unsupported image type, or a truncated pixel/RLE stream.
var ErrMalformed = errors.New("tga: malformed input")

// Image type tags, TGA header byte 2.
const (
	TypeNoImage        = 0
	TypeColorMapped    = 1
	TypeTrueColor      = 2
	TypeGrayscale      = 3
	TypeRLEColorMapped = 9
	TypeRLETrueColor   = 10
	TypeRLEGrayscale   = 11
)

const headerSize = 18

// Header mirrors the 18-byte TGA header fields, little-endian.
type Header struct {
	IDLength        uint8
	ColorMapType    uint8
	ImageType       uint8
	ColorMapOrigin  uint16
	ColorMapLength  uint16
	ColorMapDepth   uint8
	XOrigin         uint16
	YOrigin         uint16
	Width           uint16
	Height          uint16
	PixelDepth      uint8
	DescriptorByte  uint8
}

func (h Header) alphaBits() int       { return int(h.DescriptorByte & 0x0F) }
func (h Header) rightToLeft() bool    { return h.DescriptorByte&0x10 != 0 }
func (h Header) topDown() bool        { return h.DescriptorByte&0x20 != 0 }
func (h Header) rle() bool {
	switch h.ImageType {
	case TypeRLEColorMapped, TypeRLETrueColor, TypeRLEGrayscale:
		return true
	}
	return false
}

// BGRA is one canonical decoded pixel.
type BGRA struct{ B, G, R, A uint8 }

// Image is the decoded result: canonical top-down, left-to-right BGRA-32.
type Image struct {
	Width, Height int
	Pix           []BGRA
}

func (img *Image) at(x, y int) *BGRA { return &img.Pix[y*img.Width+x] }

const maxRLEIterations = 100_000_000

// Decode parses a complete TGA file into canonical top-down BGRA-32.
func Decode(data []byte) (*Image, error) {
	r := bitio.NewLittleEndianReader(data)

	var h Header
	var err error
	if h.IDLength, err = r.U8(); err != nil {
		return nil, wrap(err)
	}
	if h.ColorMapType, err = r.U8(); err != nil {
		return nil, wrap(err)
	}
	if h.ImageType, err = r.U8(); err != nil {
		return nil, wrap(err)
	}
	if h.ColorMapOrigin, err = r.U16(); err != nil {
		return nil, wrap(err)
	}
	if h.ColorMapLength, err = r.U16(); err != nil {
		return nil, wrap(err)
	}
	if h.ColorMapDepth, err = r.U8(); err != nil {
		return nil, wrap(err)
	}
	if h.XOrigin, err = r.U16(); err != nil {
		return nil, wrap(err)
	}
	if h.YOrigin, err = r.U16(); err != nil {
		return nil, wrap(err)
	}
	if h.Width, err = r.U16(); err != nil {
		return nil, wrap(err)
	}
	if h.Height, err = r.U16(); err != nil {
		return nil, wrap(err)
	}
	if h.PixelDepth, err = r.U8(); err != nil {
		return nil, wrap(err)
	}
	if h.DescriptorByte, err = r.U8(); err != nil {
		return nil, wrap(err)
	}

	if _, err := r.Bytes(int(h.IDLength)); err != nil {
		return nil, wrap(err)
	}

	var colorMap []BGRA
	if h.ColorMapType == 1 {
		colorMap, err = readColorMap(r, int(h.ColorMapLength), int(h.ColorMapDepth), h.alphaBits())
		if err != nil {
			return nil, err
		}
	}

	width, height := int(h.Width), int(h.Height)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: zero-sized image", ErrMalformed)
	}

	raster := make([]BGRA, width*height)

	bytesPerPixel := (int(h.PixelDepth) + 7) / 8
	if bytesPerPixel == 0 || bytesPerPixel > 4 {
		return nil, fmt.Errorf("%w: pixel depth %d", ErrMalformed, h.PixelDepth)
	}

	decodePixel := func(raw []byte) (BGRA, error) {
		return unpackPixel(h, raw, colorMap)
	}

	if h.rle() {
		if err := decodeRLE(r, raster, bytesPerPixel, decodePixel); err != nil {
			return nil, err
		}
	} else {
		if err := decodeRaw(r, raster, bytesPerPixel, decodePixel); err != nil {
			return nil, err
		}
	}

	img := &Image{Width: width, Height: height, Pix: make([]BGRA, width*height)}
	normalizeOrientation(img, raster, h)

	return img, nil
}

func wrap(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}

func readColorMap(r *bitio.LittleEndianReader, n, depthBits, alphaBits int) ([]BGRA, error) {
	bpp := (depthBits + 7) / 8
	raw, err := r.Bytes(n * bpp)
	if err != nil {
		return nil, wrap(err)
	}
	cm := make([]BGRA, n)
	for i := 0; i < n; i++ {
		entry := raw[i*bpp : i*bpp+bpp]
		cm[i] = unpackDirect(entry, depthBits, alphaBits)
	}
	return cm, nil
}

func unpackPixel(h Header, raw []byte, colorMap []BGRA) (BGRA, error) {
	switch h.ImageType {
	case TypeColorMapped, TypeRLEColorMapped:
		idx := int(raw[0])
		if len(raw) > 1 {
			idx = int(raw[0]) | int(raw[1])<<8
		}
		if idx < 0 || idx >= len(colorMap) {
			return BGRA{}, fmt.Errorf("%w: color map index %d out of range", ErrMalformed, idx)
		}
		return colorMap[idx], nil

	case TypeGrayscale, TypeRLEGrayscale:
		g := raw[0]
		a := uint8(255)
		if len(raw) > 1 {
			a = raw[1]
		}
		return BGRA{g, g, g, a}, nil

	case TypeTrueColor, TypeRLETrueColor:
		return unpackDirect(raw, int(h.PixelDepth), h.alphaBits()), nil

	default:
		return BGRA{}, fmt.Errorf("%w: image type %d", ErrMalformed, h.ImageType)
	}
}

// unpackDirect decodes one direct-color pixel (16/24/32-bit). alphaBits is
// the header's attribute bit count (descriptor byte bits 0-3): for 16-bit
// pixels, alpha is 0 only when alphaBits > 0 and the top bit is clear: a
// true-color 16-bit image with no attribute bits is fully opaque
// regardless of that bit's value.
func unpackDirect(raw []byte, depthBits, alphaBits int) BGRA {
	switch depthBits {
	case 32:
		return BGRA{raw[0], raw[1], raw[2], raw[3]}
	case 24:
		return BGRA{raw[0], raw[1], raw[2], 255}
	case 16:
		v := uint16(raw[0]) | uint16(raw[1])<<8
		r5 := uint8((v >> 10) & 0x1F)
		g5 := uint8((v >> 5) & 0x1F)
		b5 := uint8(v & 0x1F)
		a := uint8(255)
		if alphaBits > 0 && v&0x8000 == 0 {
			a = 0
		}
		return BGRA{b5 << 3, g5 << 3, r5 << 3, a}
	default:
		return BGRA{raw[0], raw[0], raw[0], 255}
	}
}

func decodeRaw(r *bitio.LittleEndianReader, raster []BGRA, bpp int, decode func([]byte) (BGRA, error)) error {
	for i := range raster {
		raw, err := r.Bytes(bpp)
		if err != nil {
			return wrap(err)
		}
		px, err := decode(raw)
		if err != nil {
			return err
		}
		raster[i] = px
	}
	return nil
}

// decodeRLE decodes TGA run-length packets: high bit of the packet header
// set means a repeated-pixel run of (low7+1); clear means (low7+1) raw
// pixels follow.
func decodeRLE(r *bitio.LittleEndianReader, raster []BGRA, bpp int, decode func([]byte) (BGRA, error)) error {
	i := 0
	for iter := 0; iter < maxRLEIterations && i < len(raster); iter++ {
		hdr, err := r.U8()
		if err != nil {
			return wrap(err)
		}
		count := int(hdr&0x7F) + 1
		if i+count > len(raster) {
			count = len(raster) - i
		}

		if hdr&0x80 != 0 {
			raw, err := r.Bytes(bpp)
			if err != nil {
				return wrap(err)
			}
			px, err := decode(raw)
			if err != nil {
				return err
			}
			for n := 0; n < count; n++ {
				raster[i] = px
				i++
			}
		} else {
			for n := 0; n < count; n++ {
				raw, err := r.Bytes(bpp)
				if err != nil {
					return wrap(err)
				}
				px, err := decode(raw)
				if err != nil {
					return err
				}
				raster[i] = px
				i++
			}
		}
	}
	if i < len(raster) {
		// The loop only stops short of a full raster when the ceiling trips.
		return bitio.ErrIterationLimit
	}
	return nil
}

// normalizeOrientation copies raster (decoded in the file's storage
// order) into img's canonical top-down, left-to-right layout, per the
// descriptor byte's bit 4 (right-to-left) and bit 5 (top-to-bottom).
func normalizeOrientation(img *Image, raster []BGRA, h Header) {
	width, height := img.Width, img.Height
	for srcY := 0; srcY < height; srcY++ {
		dstY := srcY
		if !h.topDown() {
			dstY = height - 1 - srcY
		}
		for srcX := 0; srcX < width; srcX++ {
			dstX := srcX
			if h.rightToLeft() {
				dstX = width - 1 - srcX
			}
			*img.at(dstX, dstY) = raster[srcY*width+srcX]
		}
	}
}

// EncodeOptions controls Encode.
type EncodeOptions struct {
	PixelDepth int // 24 or 32; 32 retains per-pixel alpha
	RLE        bool
}

// Encode writes img (already canonical top-down, left-to-right) as a
// true-color TGA, optionally RLE-compressed. The descriptor byte is
// always written with bit 5 set (top-down) since the source is already
// in that order.
func Encode(img *Image, opts EncodeOptions) ([]byte, error) {
	depth := opts.PixelDepth
	if depth != 24 && depth != 32 {
		depth = 32
	}

	w := bitio.NewLittleEndianWriter()
	w.U8(0) // no image ID
	w.U8(0) // no color map
	if opts.RLE {
		w.U8(TypeRLETrueColor)
	} else {
		w.U8(TypeTrueColor)
	}
	w.U16(0) // color map origin
	w.U16(0) // color map length
	w.U8(0)  // color map depth
	w.U16(0) // x origin
	w.U16(0) // y origin
	w.U16(uint16(img.Width))
	w.U16(uint16(img.Height))
	w.U8(uint8(depth))
	descriptor := byte(0x20) // top-down
	if depth == 32 {
		descriptor |= 0x08 // 8 alpha bits
	}
	w.U8(descriptor)

	packPixel := func(p BGRA) {
		w.U8(p.B)
		w.U8(p.G)
		w.U8(p.R)
		if depth == 32 {
			w.U8(p.A)
		}
	}

	if opts.RLE {
		encodeRLE(w, img.Pix, packPixel)
	} else {
		for _, p := range img.Pix {
			packPixel(p)
		}
	}

	return w.Bytes(), nil
}

func encodeRLE(w *bitio.LittleEndianWriter, pix []BGRA, pack func(BGRA)) {
	i := 0
	for i < len(pix) {
		run := 1
		for i+run < len(pix) && run < 128 && pix[i+run] == pix[i] {
			run++
		}
		if run >= 2 {
			w.U8(0x80 | byte(run-1))
			pack(pix[i])
			i += run
			continue
		}

		start := i
		count := 1
		for start+count < len(pix) && count < 128 {
			if start+count+1 < len(pix) && pix[start+count] == pix[start+count+1] {
				break
			}
			count++
		}
		w.U8(byte(count - 1))
		for n := 0; n < count; n++ {
			pack(pix[start+n])
		}
		i += count
	}
}
