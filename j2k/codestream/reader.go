package codestream

import (
	"fmt"

	"github.com/cocosip/go-imagecodecs/internal/bitio"
)

// ErrMarkerMismatch is returned when the next marker is not the one the
// caller expected.
type ErrMarkerMismatch struct {
	Want, Got uint16
}

func (e *ErrMarkerMismatch) Error() string {
	return fmt.Sprintf("codestream: expected marker %s (%#04x), got %s (%#04x)",
		MarkerName(e.Want), e.Want, MarkerName(e.Got), e.Got)
}

// readMarker reads a 2-byte marker and, for markers with a length field,
// returns its body (length-prefixed segment payload, excluding the
// 2-byte length field itself).
func readMarker(r *bitio.BigEndianReader, want uint16) ([]byte, error) {
	got, err := r.U16()
	if err != nil {
		return nil, err
	}
	if got != want {
		return nil, &ErrMarkerMismatch{Want: want, Got: got}
	}
	if !HasLength(want) {
		return nil, nil
	}
	length, err := r.U16()
	if err != nil {
		return nil, err
	}
	if length < 2 {
		return nil, fmt.Errorf("codestream: %s segment length %d too small", MarkerName(want), length)
	}
	return r.Bytes(int(length) - 2)
}

// ReadSOC consumes the start-of-codestream marker.
func ReadSOC(r *bitio.BigEndianReader) error {
	_, err := readMarker(r, MarkerSOC)
	return err
}

// ReadSIZ consumes and parses the SIZ segment.
func ReadSIZ(r *bitio.BigEndianReader) (SIZSegment, error) {
	var s SIZSegment
	body, err := readMarker(r, MarkerSIZ)
	if err != nil {
		return s, err
	}
	br := bitio.NewBigEndianReader(body)
	if s.Rsiz, err = br.U16(); err != nil {
		return s, err
	}
	for _, dst := range []*uint32{&s.Xsiz, &s.Ysiz, &s.XOsiz, &s.YOsiz, &s.XTsiz, &s.YTsiz, &s.XTOsiz, &s.YTOsiz} {
		if *dst, err = br.U32(); err != nil {
			return s, err
		}
	}
	if s.Csiz, err = br.U16(); err != nil {
		return s, err
	}
	s.Components = make([]ComponentSize, s.Csiz)
	for i := range s.Components {
		ssiz, err := br.U8()
		if err != nil {
			return s, err
		}
		xr, err := br.U8()
		if err != nil {
			return s, err
		}
		yr, err := br.U8()
		if err != nil {
			return s, err
		}
		s.Components[i] = ComponentSize{Ssiz: ssiz, XRsiz: xr, YRsiz: yr}
	}
	return s, nil
}

// ReadCOD consumes and parses the COD segment. Any trailing bytes after
// the fixed fields are returned verbatim as PrecinctBytes.
func ReadCOD(r *bitio.BigEndianReader) (CODSegment, error) {
	var c CODSegment
	body, err := readMarker(r, MarkerCOD)
	if err != nil {
		return c, err
	}
	br := bitio.NewBigEndianReader(body)
	if c.Scod, err = br.U8(); err != nil {
		return c, err
	}
	if c.ProgressionOrder, err = br.U8(); err != nil {
		return c, err
	}
	if c.NumberOfLayers, err = br.U16(); err != nil {
		return c, err
	}
	if c.MultipleComponentTransform, err = br.U8(); err != nil {
		return c, err
	}
	if c.NumberOfDecompositionLevels, err = br.U8(); err != nil {
		return c, err
	}
	if c.CodeBlockWidthExp, err = br.U8(); err != nil {
		return c, err
	}
	if c.CodeBlockHeightExp, err = br.U8(); err != nil {
		return c, err
	}
	if c.CodeBlockStyle, err = br.U8(); err != nil {
		return c, err
	}
	if c.Transformation, err = br.U8(); err != nil {
		return c, err
	}
	if br.Len() > 0 {
		c.PrecinctBytes, err = br.Bytes(br.Len())
		if err != nil {
			return c, err
		}
	}
	return c, nil
}

// ReadQCD consumes and parses the QCD segment.
func ReadQCD(r *bitio.BigEndianReader) (QCDSegment, error) {
	var q QCDSegment
	body, err := readMarker(r, MarkerQCD)
	if err != nil {
		return q, err
	}
	br := bitio.NewBigEndianReader(body)
	if q.Sqcd, err = br.U8(); err != nil {
		return q, err
	}
	for br.Len() >= 2 {
		v, err := br.U16()
		if err != nil {
			return q, err
		}
		q.StepSizes = append(q.StepSizes, v)
	}
	return q, nil
}

// ReadSOT consumes and parses the SOT segment.
func ReadSOT(r *bitio.BigEndianReader) (SOTSegment, error) {
	var s SOTSegment
	body, err := readMarker(r, MarkerSOT)
	if err != nil {
		return s, err
	}
	br := bitio.NewBigEndianReader(body)
	if s.Isot, err = br.U16(); err != nil {
		return s, err
	}
	if s.Psot, err = br.U32(); err != nil {
		return s, err
	}
	if s.TPsot, err = br.U8(); err != nil {
		return s, err
	}
	if s.TNsot, err = br.U8(); err != nil {
		return s, err
	}
	return s, nil
}

// ReadSOD consumes the start-of-data marker.
func ReadSOD(r *bitio.BigEndianReader) error {
	_, err := readMarker(r, MarkerSOD)
	return err
}

// ReadEOC consumes the end-of-codestream marker.
func ReadEOC(r *bitio.BigEndianReader) error {
	_, err := readMarker(r, MarkerEOC)
	return err
}
