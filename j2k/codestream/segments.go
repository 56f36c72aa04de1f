package codestream

// ComponentSize is one SIZ per-component entry.
type ComponentSize struct {
	Ssiz  uint8 // bit 7 = signed, bits 0-6 = bit depth - 1
	XRsiz uint8
	YRsiz uint8
}

// BitDepth returns the component's sample bit depth.
func (c ComponentSize) BitDepth() int { return int(c.Ssiz&0x7F) + 1 }

// IsSigned reports whether the component's samples are signed.
func (c ComponentSize) IsSigned() bool { return c.Ssiz&0x80 != 0 }

// SIZSegment is the image-and-tile-size marker segment (ISO/IEC
// 15444-1 A.5.1). This implementation always uses a single tile spanning
// the whole image (XTsiz=Xsiz, YTsiz=Ysiz, no tiling offsets).
type SIZSegment struct {
	Rsiz           uint16
	Xsiz, Ysiz     uint32
	XOsiz, YOsiz   uint32
	XTsiz, YTsiz   uint32
	XTOsiz, YTOsiz uint32
	Csiz           uint16
	Components     []ComponentSize
}

// CODSegment is the coding-style-default marker segment (ISO/IEC
// 15444-1 A.6.1), trimmed to the fields spec.md §6 enumerates: any
// precinct-size bytes are kept raw in PrecinctBytes, and there is no
// COC/POC.
type CODSegment struct {
	Scod                        uint8
	ProgressionOrder            uint8 // 0 = LRCP, the only order this module writes
	NumberOfLayers              uint16
	MultipleComponentTransform  uint8 // 0 = none, 1 = RCT with 5/3 or ICT with 9/7 (see Transformation)
	NumberOfDecompositionLevels uint8
	CodeBlockWidthExp           uint8 // actual size = 1 << (exp+2)
	CodeBlockHeightExp          uint8
	CodeBlockStyle              uint8
	Transformation              uint8 // 1 = CDF 9/7 (lossy), 0 = CDF 5/3 (lossless)
	PrecinctBytes               []byte
}

// QCDSegment is the quantization-default marker segment (ISO/IEC
// 15444-1 A.6.4). StepSizes holds one encoded (exponent<<11|mantissa)
// entry per subband, LL first then HL/LH/HH per level descending.
type QCDSegment struct {
	Sqcd      uint8
	StepSizes []uint16
}

// SOTSegment is the start-of-tile-part marker segment (ISO/IEC 15444-1
// A.4.2). This module always emits a single tile-part per tile
// (TPsot=0, TNsot=1).
type SOTSegment struct {
	Isot  uint16
	Psot  uint32
	TPsot uint8
	TNsot uint8
}
