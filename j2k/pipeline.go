package j2k

import (
	"fmt"

	"github.com/cocosip/go-imagecodecs/internal/bitio"
	"github.com/cocosip/go-imagecodecs/j2k/codestream"
	"github.com/cocosip/go-imagecodecs/j2k/colorspace"
	"github.com/cocosip/go-imagecodecs/j2k/quant"
	"github.com/cocosip/go-imagecodecs/j2k/tier1"
	"github.com/cocosip/go-imagecodecs/j2k/tier2"
	"github.com/cocosip/go-imagecodecs/j2k/wavelet"
)

// levelShift centers unsigned 8-bit samples around zero before the
// wavelet transform, per ISO/IEC 15444-1 Annex G.1's DC level shift.
const levelShift = 128

// codeBlockExp encodes codeBlockSize (64) as COD's code-block width and
// height exp fields: actual size = 1 << (exp+2).
const codeBlockExp = 4

func orientToBand(o tier1.Orient) quant.Band { return quant.Band(o) }

// Encode compresses img into a simplified JPEG 2000 Part 1 codestream
// per opts.
func Encode(img Image, opts EncodeOptions) ([]byte, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	levels := opts.Levels
	if levels <= 0 {
		levels = 5
	}
	layers := opts.Layers
	if layers <= 0 {
		layers = 1
	}
	quality := opts.Quality
	if quality <= 0 {
		quality = 80
	}

	useMCT := opts.MCT && img.Components == 3
	xform := colorspace.TransformNone
	if useMCT {
		if opts.Lossy {
			xform = colorspace.TransformICT
		} else {
			xform = colorspace.TransformRCT
		}
	}

	w, h := img.Width, img.Height
	n := w * h

	var f64planes [][]float64
	var i32planes [][]int32

	if opts.Lossy {
		f64planes = make([][]float64, img.Components)
		for c := 0; c < img.Components; c++ {
			src := img.Plane(c)
			p := make([]float64, n)
			for i, s := range src {
				p[i] = float64(int(s) - levelShift)
			}
			f64planes[c] = p
		}
		if xform == colorspace.TransformICT {
			f64planes[0], f64planes[1], f64planes[2] = colorspace.ForwardICTComponents(f64planes[0], f64planes[1], f64planes[2])
		}
		for c := range f64planes {
			wavelet.Forward2D97(f64planes[c], w, h, levels)
		}
	} else {
		i32planes = make([][]int32, img.Components)
		for c := 0; c < img.Components; c++ {
			src := img.Plane(c)
			p := make([]int32, n)
			for i, s := range src {
				p[i] = int32(int(s) - levelShift)
			}
			i32planes[c] = p
		}
		if xform == colorspace.TransformRCT {
			i32planes[0], i32planes[1], i32planes[2] = colorspace.ForwardRCTComponents(i32planes[0], i32planes[1], i32planes[2])
		}
		for c := range i32planes {
			wavelet.Forward2D53(i32planes[c], w, h, levels)
		}
	}

	sbs := subbandsForComponent(w, h, levels)

	var subbandRefs []tier2.SubbandRef
	var stepSizes []uint16
	const stepRefBitPlanes = 16

	for _, sb := range sbs {
		step := quant.StepSize(quality, opts.Lossy, sb.Level, levels, orientToBand(sb.Orient))
		stepSizes = append(stepSizes, quant.EncodeStep(step, stepRefBitPlanes))

		blocks := tileSubband(sb.Width, sb.Height)
		for c := 0; c < img.Components; c++ {
			ref := tier2.SubbandRef{Component: c, Level: sb.Level}
			for _, br := range blocks {
				mag, neg := extractBlock(sb, br, opts.Lossy, f64planes, i32planes, c, step)
				cb := &tier1.CodeBlock{X: br.X, Y: br.Y, W: br.W, H: br.H, Mag: mag, Neg: neg}
				cb.BitPlanes = tier1.BitPlanesFor(mag)
				tier1.Encode(cb, sb.Orient)
				ref.Blocks = append(ref.Blocks, cb)
			}
			subbandRefs = append(subbandRefs, ref)
		}
	}

	var packets []byte
	packets = tier2.BuildPackets(packets, subbandRefs, levels, layers, tier2.Options{})

	siz := codestream.SIZSegment{
		Xsiz: uint32(w), Ysiz: uint32(h),
		XTsiz: uint32(w), YTsiz: uint32(h),
		Csiz: uint16(img.Components),
	}
	for c := 0; c < img.Components; c++ {
		siz.Components = append(siz.Components, codestream.ComponentSize{Ssiz: 7, XRsiz: 1, YRsiz: 1})
	}

	var mctByte uint8
	if useMCT {
		mctByte = 1
	}
	var xformByte uint8
	if opts.Lossy {
		xformByte = 1
	}

	cod := codestream.CODSegment{
		ProgressionOrder:            0,
		NumberOfLayers:              uint16(layers),
		MultipleComponentTransform:  mctByte,
		NumberOfDecompositionLevels: uint8(levels),
		CodeBlockWidthExp:           codeBlockExp,
		CodeBlockHeightExp:          codeBlockExp,
		Transformation:              xformByte,
	}
	qcd := codestream.QCDSegment{Sqcd: 0, StepSizes: stepSizes}

	var buf []byte
	buf = codestream.WriteSOC(buf)
	buf = codestream.WriteSIZ(buf, siz)
	buf = codestream.WriteCOD(buf, cod)
	buf = codestream.WriteQCD(buf, qcd)
	buf = codestream.WriteSOT(buf, codestream.SOTSegment{Isot: 0, Psot: 0, TPsot: 0, TNsot: 1})
	buf = codestream.WriteSOD(buf)
	buf = append(buf, packets...)
	buf = codestream.WriteEOC(buf)
	return buf, nil
}

// extractBlock copies one code-block's coefficients out of a component's
// full-size transformed plane and quantizes them to magnitude/sign.
func extractBlock(sb subband, br blockRect, lossy bool, f64planes [][]float64, i32planes [][]int32, c int, step float64) ([]int32, []bool) {
	n := br.W * br.H
	mag := make([]int32, n)
	neg := make([]bool, n)

	if lossy {
		coeffs := make([]float64, n)
		plane := f64planes[c]
		idx := 0
		for y := 0; y < br.H; y++ {
			off := (sb.OffY+br.Y+y)*sb.Stride + sb.OffX + br.X
			copy(coeffs[idx:idx+br.W], plane[off:off+br.W])
			idx += br.W
		}
		for i, q := range quant.Quantize(coeffs, step) {
			mag[i], neg[i] = q.Mag, q.Neg
		}
	} else {
		coeffs := make([]int32, n)
		plane := i32planes[c]
		idx := 0
		for y := 0; y < br.H; y++ {
			off := (sb.OffY+br.Y+y)*sb.Stride + sb.OffX + br.X
			copy(coeffs[idx:idx+br.W], plane[off:off+br.W])
			idx += br.W
		}
		for i, q := range quant.QuantizeInt(coeffs, step) {
			mag[i], neg[i] = q.Mag, q.Neg
		}
	}
	return mag, neg
}

// depositBlock writes a decoded code-block's dequantized coefficients
// back into a component's full-size plane.
func depositBlock(sb subband, br blockRect, lossy bool, f64planes [][]float64, i32planes [][]int32, c int, step float64, cb *tier1.CodeBlock) {
	n := br.W * br.H
	q := make([]quant.Quantized, n)
	for i := range q {
		q[i] = quant.Quantized{Mag: cb.Mag[i], Neg: cb.Neg[i]}
	}

	if lossy {
		coeffs := quant.Dequantize(q, step)
		plane := f64planes[c]
		idx := 0
		for y := 0; y < br.H; y++ {
			off := (sb.OffY+br.Y+y)*sb.Stride + sb.OffX + br.X
			copy(plane[off:off+br.W], coeffs[idx:idx+br.W])
			idx += br.W
		}
	} else {
		coeffs := quant.DequantizeInt(q, step)
		plane := i32planes[c]
		idx := 0
		for y := 0; y < br.H; y++ {
			off := (sb.OffY+br.Y+y)*sb.Stride + sb.OffX + br.X
			copy(plane[off:off+br.W], coeffs[idx:idx+br.W])
			idx += br.W
		}
	}
}

// Decode reconstructs an Image from a simplified JPEG 2000 Part 1
// codestream produced by Encode.
func Decode(data []byte) (DecodeResult, error) {
	r := bitio.NewBigEndianReader(data)

	if err := codestream.ReadSOC(r); err != nil {
		return DecodeResult{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	siz, err := codestream.ReadSIZ(r)
	if err != nil {
		return DecodeResult{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	cod, err := codestream.ReadCOD(r)
	if err != nil {
		return DecodeResult{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	qcd, err := codestream.ReadQCD(r)
	if err != nil {
		return DecodeResult{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := codestream.ReadSOT(r); err != nil {
		return DecodeResult{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := codestream.ReadSOD(r); err != nil {
		return DecodeResult{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	w, h := int(siz.Xsiz), int(siz.Ysiz)
	components := len(siz.Components)
	levels := int(cod.NumberOfDecompositionLevels)
	layers := int(cod.NumberOfLayers)
	if layers < 1 {
		layers = 1
	}
	lossy := cod.Transformation == 1
	useMCT := cod.MultipleComponentTransform == 1

	remaining, err := r.Bytes(r.Len())
	if err != nil {
		return DecodeResult{}, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	packets := remaining
	if end := len(remaining) - 2; end >= 0 && remaining[end] == 0xFF && remaining[end+1] == 0xD9 {
		packets = remaining[:end]
	} else {
		return DecodeResult{}, fmt.Errorf("%w: missing EOC marker", ErrMalformed)
	}

	sbs := subbandsForComponent(w, h, levels)
	if len(qcd.StepSizes) != len(sbs) {
		return DecodeResult{}, fmt.Errorf("%w: QCD has %d step sizes, want %d", ErrMalformed, len(qcd.StepSizes), len(sbs))
	}

	const stepRefBitPlanes = 16

	type placement struct {
		sb   subband
		br   blockRect
		comp int
		step float64
	}
	var placements []placement
	var subbandRefs []tier2.SubbandRef

	for sbi, sb := range sbs {
		step := quant.DecodeStep(qcd.StepSizes[sbi], stepRefBitPlanes)
		blocks := tileSubband(sb.Width, sb.Height)
		for c := 0; c < components; c++ {
			ref := tier2.SubbandRef{Component: c, Level: sb.Level}
			for _, br := range blocks {
				cb := &tier1.CodeBlock{
					X: br.X, Y: br.Y, W: br.W, H: br.H,
					Mag: make([]int32, br.W*br.H),
					Neg: make([]bool, br.W*br.H),
				}
				ref.Blocks = append(ref.Blocks, cb)
				placements = append(placements, placement{sb: sb, br: br, comp: c, step: step})
			}
			subbandRefs = append(subbandRefs, ref)
		}
	}

	if err := tier2.ReadPackets(packets, subbandRefs, levels, layers, tier2.Options{}); err != nil {
		return DecodeResult{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var f64planes [][]float64
	var i32planes [][]int32
	n := w * h
	if lossy {
		f64planes = make([][]float64, components)
		for c := range f64planes {
			f64planes[c] = make([]float64, n)
		}
	} else {
		i32planes = make([][]int32, components)
		for c := range i32planes {
			i32planes[c] = make([]int32, n)
		}
	}

	i := 0
	for _, ref := range subbandRefs {
		for _, cb := range ref.Blocks {
			pl := placements[i]
			i++
			tier1.Decode(cb, pl.sb.Orient)
			depositBlock(pl.sb, pl.br, lossy, f64planes, i32planes, pl.comp, pl.step, cb)
		}
	}

	if lossy {
		wavelet.Inverse2D97(f64planes[0], w, h, levels)
		if useMCT && components == 3 {
			for c := 1; c < 3; c++ {
				wavelet.Inverse2D97(f64planes[c], w, h, levels)
			}
			f64planes[0], f64planes[1], f64planes[2] = colorspace.InverseICTComponents(f64planes[0], f64planes[1], f64planes[2])
		} else {
			for c := 1; c < components; c++ {
				wavelet.Inverse2D97(f64planes[c], w, h, levels)
			}
		}
	} else {
		wavelet.Inverse2D53(i32planes[0], w, h, levels)
		if useMCT && components == 3 {
			for c := 1; c < 3; c++ {
				wavelet.Inverse2D53(i32planes[c], w, h, levels)
			}
			i32planes[0], i32planes[1], i32planes[2] = colorspace.InverseRCTComponents(i32planes[0], i32planes[1], i32planes[2])
		} else {
			for c := 1; c < components; c++ {
				wavelet.Inverse2D53(i32planes[c], w, h, levels)
			}
		}
	}

	img := Image{Width: w, Height: h, Components: components}
	for c := 0; c < components; c++ {
		plane := make([]uint8, n)
		if lossy {
			for p, v := range f64planes[c] {
				plane[p] = clampSample(colorspace.RoundToInt32(v) + levelShift)
			}
		} else {
			for p, v := range i32planes[c] {
				plane[p] = clampSample(v + levelShift)
			}
		}
		img.SetPlane(c, plane)
	}

	return DecodeResult{Image: img, Lossy: lossy, Levels: levels}, nil
}

func clampSample(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
