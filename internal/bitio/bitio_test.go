package bitio

import "testing"

func TestBigEndianRoundTrip(t *testing.T) {
	w := NewBigEndianWriter()
	w.U8(0x12)
	w.U16(0xABCD)
	w.U32(0xDEADBEEF)

	r := NewBigEndianReader(w.Bytes())
	if v, err := r.U8(); err != nil || v != 0x12 {
		t.Fatalf("U8 = %x, %v", v, err)
	}
	if v, err := r.U16(); err != nil || v != 0xABCD {
		t.Fatalf("U16 = %x, %v", v, err)
	}
	if v, err := r.U32(); err != nil || v != 0xDEADBEEF {
		t.Fatalf("U32 = %x, %v", v, err)
	}
	if r.Len() != 0 {
		t.Fatalf("expected EOF, got %d bytes left", r.Len())
	}
}

func TestLittleEndianRoundTrip(t *testing.T) {
	w := NewLittleEndianWriter()
	w.U8(0x12)
	w.U16(0xABCD)

	r := NewLittleEndianReader(w.Bytes())
	if v, _ := r.U8(); v != 0x12 {
		t.Fatalf("U8 = %x", v)
	}
	if v, _ := r.U16(); v != 0xABCD {
		t.Fatalf("U16 = %x", v)
	}
}

func TestMSBBitsRoundTrip(t *testing.T) {
	w := NewMSBWriter()
	bits := []int{1, 0, 1, 1, 0, 0, 0, 1, 1, 1}
	for _, b := range bits {
		w.WriteBit(b)
	}
	data := w.Bytes()

	r := NewMSBReader(data)
	for i, want := range bits {
		got := r.ReadBit()
		if got != want {
			t.Fatalf("bit %d = %d, want %d", i, got, want)
		}
	}
}

func TestMSBPeekDoesNotAdvance(t *testing.T) {
	w := NewMSBWriter()
	w.WriteBits(0b1011, 4)
	r := NewMSBReader(w.Bytes())
	if p := r.PeekBits(4); p != 0b1011 {
		t.Fatalf("peek = %b", p)
	}
	if v := r.ReadBits(4); v != 0b1011 {
		t.Fatalf("read after peek = %b", v)
	}
}

func TestMSBAlignByte(t *testing.T) {
	w := NewMSBWriter()
	w.WriteBits(0b101, 3)
	w.AlignByte()
	w.WriteBits(0xAB, 8)
	data := w.Bytes()
	if len(data) != 2 {
		t.Fatalf("expected 2 bytes, got %d", len(data))
	}
	if data[1] != 0xAB {
		t.Fatalf("second byte = %x", data[1])
	}
}
