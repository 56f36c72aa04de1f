package codestream

import "github.com/cocosip/go-imagecodecs/internal/bitio"

// writeSegment wraps body with marker, 2-byte length (body length + 2,
// per ISO/IEC 15444-1's length-field convention) and appends it to dst.
func writeSegment(dst []byte, marker uint16, body []byte) []byte {
	w := bitio.NewBigEndianWriter()
	w.U16(marker)
	w.U16(uint16(len(body) + 2))
	w.WriteRaw(body)
	return append(dst, w.Bytes()...)
}

// WriteSOC appends the bare start-of-codestream marker.
func WriteSOC(dst []byte) []byte {
	w := bitio.NewBigEndianWriter()
	w.U16(MarkerSOC)
	return append(dst, w.Bytes()...)
}

// WriteSIZ appends the SIZ segment.
func WriteSIZ(dst []byte, s SIZSegment) []byte {
	w := bitio.NewBigEndianWriter()
	w.U16(s.Rsiz)
	w.U32(s.Xsiz)
	w.U32(s.Ysiz)
	w.U32(s.XOsiz)
	w.U32(s.YOsiz)
	w.U32(s.XTsiz)
	w.U32(s.YTsiz)
	w.U32(s.XTOsiz)
	w.U32(s.YTOsiz)
	w.U16(s.Csiz)
	for _, c := range s.Components {
		w.U8(c.Ssiz)
		w.U8(c.XRsiz)
		w.U8(c.YRsiz)
	}
	return writeSegment(dst, MarkerSIZ, w.Bytes())
}

// WriteCOD appends the COD segment.
func WriteCOD(dst []byte, c CODSegment) []byte {
	w := bitio.NewBigEndianWriter()
	w.U8(c.Scod)
	w.U8(c.ProgressionOrder)
	w.U16(c.NumberOfLayers)
	w.U8(c.MultipleComponentTransform)
	w.U8(c.NumberOfDecompositionLevels)
	w.U8(c.CodeBlockWidthExp)
	w.U8(c.CodeBlockHeightExp)
	w.U8(c.CodeBlockStyle)
	w.U8(c.Transformation)
	w.WriteRaw(c.PrecinctBytes)
	return writeSegment(dst, MarkerCOD, w.Bytes())
}

// WriteQCD appends the QCD segment.
func WriteQCD(dst []byte, q QCDSegment) []byte {
	w := bitio.NewBigEndianWriter()
	w.U8(q.Sqcd)
	for _, s := range q.StepSizes {
		w.U16(s)
	}
	return writeSegment(dst, MarkerQCD, w.Bytes())
}

// WriteSOT appends the SOT segment.
func WriteSOT(dst []byte, s SOTSegment) []byte {
	w := bitio.NewBigEndianWriter()
	w.U16(s.Isot)
	w.U32(s.Psot)
	w.U8(s.TPsot)
	w.U8(s.TNsot)
	return writeSegment(dst, MarkerSOT, w.Bytes())
}

// WriteSOD appends the bare start-of-data marker.
func WriteSOD(dst []byte) []byte {
	w := bitio.NewBigEndianWriter()
	w.U16(MarkerSOD)
	return append(dst, w.Bytes()...)
}

// WriteEOC appends the bare end-of-codestream marker.
func WriteEOC(dst []byte) []byte {
	w := bitio.NewBigEndianWriter()
	w.U16(MarkerEOC)
	return append(dst, w.Bytes()...)
}
