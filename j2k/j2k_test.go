package j2k

import "testing"

func TestLosslessRoundTrip4x4(t *testing.T) {
	pixels := make([]uint8, 16)
	for i := range pixels {
		pixels[i] = uint8(i)
	}
	img := Image{Width: 4, Height: 4, Components: 1, Pixels: pixels}

	data, err := Encode(img, EncodeOptions{Quality: 100, Lossy: false, Levels: 1})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if data[0] != 0xFF || data[1] != 0x4F {
		t.Fatalf("codestream does not start with SOC: %x", data[:2])
	}
	if data[len(data)-2] != 0xFF || data[len(data)-1] != 0xD9 {
		t.Fatalf("codestream does not end with EOC: %x", data[len(data)-2:])
	}

	res, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Image.Width != 4 || res.Image.Height != 4 || res.Image.Components != 1 {
		t.Fatalf("decoded geometry mismatch: %+v", res.Image)
	}
	for i, want := range pixels {
		if res.Image.Pixels[i] != want {
			t.Fatalf("pixel %d: got %d, want %d (lossless round trip must be exact)", i, res.Image.Pixels[i], want)
		}
	}
}

func TestLossyRoundTripCheckerboard16x16(t *testing.T) {
	const w, h = 16, 16
	pixels := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tile := (x/8 + y/8) % 2
			v := uint8(0)
			if tile == 1 {
				v = 255
			}
			pixels[y*w+x] = v
		}
	}
	img := Image{Width: w, Height: h, Components: 1, Pixels: pixels}

	data, err := Encode(img, EncodeOptions{Quality: 75, Lossy: true, Levels: 2})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	res, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	var sumAbs int
	for i, want := range pixels {
		got := int(res.Image.Pixels[i])
		diff := got - int(want)
		if diff < 0 {
			diff = -diff
		}
		sumAbs += diff
	}
	mean := float64(sumAbs) / float64(len(pixels))
	if mean > 5 {
		t.Fatalf("mean absolute error %.3f exceeds 5", mean)
	}
}

func TestLosslessRoundTripRGBWithMCT(t *testing.T) {
	const w, h = 8, 8
	pixels := make([]uint8, w*h*3)
	for i := range pixels {
		pixels[i] = uint8((i * 37) % 256)
	}
	img := Image{Width: w, Height: h, Components: 3, Pixels: pixels}

	data, err := Encode(img, EncodeOptions{Quality: 100, Lossy: false, Levels: 2, MCT: true})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	res, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, want := range pixels {
		if res.Image.Pixels[i] != want {
			t.Fatalf("pixel %d: got %d, want %d", i, res.Image.Pixels[i], want)
		}
	}
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	img := Image{Width: 4, Height: 4, Components: 1, Pixels: make([]uint8, 16)}
	data, err := Encode(img, EncodeOptions{Quality: 100, Lossy: false, Levels: 1})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, err = Decode(data[:len(data)-4])
	if err == nil {
		t.Fatal("expected an error decoding truncated input")
	}
}

func TestEncodeRejectsInvalidImage(t *testing.T) {
	img := Image{Width: 0, Height: 4, Components: 1}
	if _, err := Encode(img, EncodeOptions{}); err == nil {
		t.Fatal("expected an error for zero width")
	}
}
