package tga

import "testing"

func makeImage(w, h int) *Image {
	img := &Image{Width: w, Height: h, Pix: make([]BGRA, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[y*w+x] = BGRA{uint8(x * 5), uint8(y * 7), uint8(x + y), 255}
		}
	}
	return img
}

func imagesEqual(a, b *Image) bool {
	if a.Width != b.Width || a.Height != b.Height {
		return false
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			return false
		}
	}
	return true
}

func TestRoundTrip32BitRaw(t *testing.T) {
	img := makeImage(10, 6)
	data, err := Encode(img, EncodeOptions{PixelDepth: 32})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !imagesEqual(got, img) {
		t.Fatal("32-bit raw round trip mismatch")
	}
}

func TestRoundTrip24BitRLE(t *testing.T) {
	img := &Image{Width: 8, Height: 4, Pix: make([]BGRA, 32)}
	for i := range img.Pix {
		// long runs of identical pixels, punctuated by a few unique ones
		v := uint8(i / 6)
		img.Pix[i] = BGRA{v, v, v, 255}
	}
	data, err := Encode(img, EncodeOptions{PixelDepth: 24, RLE: true})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := &Image{Width: img.Width, Height: img.Height, Pix: make([]BGRA, len(img.Pix))}
	for i, p := range img.Pix {
		want.Pix[i] = BGRA{p.B, p.G, p.R, 255}
	}
	if !imagesEqual(got, want) {
		t.Fatal("24-bit RLE round trip mismatch")
	}
}

func TestRoundTripNoisyRLE(t *testing.T) {
	img := makeImage(13, 9) // no long runs, exercises mostly-raw packets
	data, err := Encode(img, EncodeOptions{PixelDepth: 32, RLE: true})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !imagesEqual(got, img) {
		t.Fatal("noisy RLE round trip mismatch")
	}
}

func TestDecodeRejectsZeroSize(t *testing.T) {
	hdr := make([]byte, headerSize)
	hdr[2] = TypeTrueColor
	if _, err := Decode(hdr); err == nil {
		t.Fatal("expected error for zero-sized image")
	}
}

func TestOrientationNormalization(t *testing.T) {
	// Build a raw bottom-up, left-to-right 2x2 true-color image by hand
	// and confirm Decode flips it to top-down.
	hdr := make([]byte, headerSize)
	hdr[2] = TypeTrueColor
	hdr[12], hdr[13] = 2, 0 // width = 2
	hdr[14], hdr[15] = 2, 0 // height = 2
	hdr[16] = 24
	hdr[17] = 0x00 // bottom-up (bit 5 clear), left-to-right

	// Pixel rows in file storage order: bottom row first, then top row.
	bottomRow := []byte{0, 0, 1, 0, 0, 2} // two BGR pixels
	topRow := []byte{0, 0, 3, 0, 0, 4}
	data := append(append(hdr, bottomRow...), topRow...)

	img, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Pix[0].R != 3 || img.Pix[1].R != 4 {
		t.Fatalf("top row after normalization = %+v, %+v", img.Pix[0], img.Pix[1])
	}
	if img.Pix[2].R != 1 || img.Pix[3].R != 2 {
		t.Fatalf("bottom row after normalization = %+v, %+v", img.Pix[2], img.Pix[3])
	}
}
