package lzw

import (
	"bytes"
	"testing"
)

func TestRoundTripPatterns(t *testing.T) {
	cases := [][]byte{
		{0},
		{0, 0, 0, 0, 0, 0, 0, 0},
		{0, 1, 2, 3, 0, 1, 2, 3, 0, 1, 2, 3},
		bytes.Repeat([]byte{3}, 5000),
	}
	for _, minCodeSize := range []int{2, 8} {
		for i, src := range cases {
			enc := Encode(src, minCodeSize)
			dec, err := Decode(enc, minCodeSize)
			if err != nil {
				t.Fatalf("case %d minCodeSize=%d: decode: %v", i, minCodeSize, err)
			}
			if !bytes.Equal(dec, src) {
				t.Fatalf("case %d minCodeSize=%d: round trip mismatch, got len %d want %d", i, minCodeSize, len(dec), len(src))
			}
		}
	}
}

func TestRoundTripForcesDictionaryGrowthAndReset(t *testing.T) {
	src := make([]byte, 0, 20000)
	for i := 0; i < 20000; i++ {
		src = append(src, byte(i%251))
	}
	enc := Encode(src, 8)
	dec, err := Decode(enc, 8)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(dec, src) {
		t.Fatal("round trip mismatch on large varied input")
	}
}

func TestDecodeMalformedCode(t *testing.T) {
	// A clear code, one literal, then a reference to a code that was never
	// installed (not even the legitimate code==nextCode KwKwK case).
	w := newBitWriter()
	const minCodeSize = 2
	clearCode := 1 << minCodeSize
	endCode := clearCode + 1
	codeSize := minCodeSize + 1
	w.writeCode(clearCode, codeSize)
	w.writeCode(0, codeSize)
	w.writeCode(endCode+2, codeSize) // nextCode at this point is endCode+1; this is out of range but fits in codeSize bits
	data := w.bytes()

	if _, err := Decode(data, minCodeSize); err == nil {
		t.Fatal("expected malformed-code error")
	}
}
