package tier2

import (
	"testing"

	"github.com/cocosip/go-imagecodecs/j2k/tier1"
)

func encodedBlock(t *testing.T, w, h int, seed int, orient tier1.Orient) *tier1.CodeBlock {
	t.Helper()
	mag := make([]int32, w*h)
	neg := make([]bool, w*h)
	for i := range mag {
		seed = (seed*1103515245 + 12345) & 0x7fffffff
		mag[i] = int32(seed % 64)
		neg[i] = seed%2 == 0
	}
	cb := &tier1.CodeBlock{W: w, H: h, Mag: mag, Neg: neg, BitPlanes: tier1.BitPlanesFor(mag)}
	tier1.Encode(cb, orient)
	return cb
}

func TestPassesPerLayerAndWindow(t *testing.T) {
	if got := PassesPerLayer(10, 3); got != 4 {
		t.Fatalf("PassesPerLayer(10,3) = %d, want 4", got)
	}
	start, end := LayerWindow(2, 4, 10)
	if start != 8 || end != 10 {
		t.Fatalf("LayerWindow(2,4,10) = (%d,%d), want (8,10)", start, end)
	}
}

func TestBuildAndReadPacketRoundTrip(t *testing.T) {
	cb := encodedBlock(t, 8, 8, 1, tier1.OrientLL)
	const numLayers = 3
	ppl := PassesPerLayer(cb.NumPasses, numLayers)

	var allData []byte
	var allLengths []int
	var numPasses int

	for layer := 0; layer < numLayers; layer++ {
		start, end := LayerWindow(layer, ppl, cb.NumPasses)
		pkt := BuildPacket([]BlockRef{{Block: cb, PassStart: start, PassEnd: end}})
		wire := WritePacket(nil, pkt, Options{UseSOP: true})

		got, n, err := ReadPacket(wire, Options{UseSOP: true})
		if err != nil {
			t.Fatalf("layer %d: ReadPacket error: %v", layer, err)
		}
		if n != len(wire) {
			t.Fatalf("layer %d: consumed %d bytes, want %d", layer, n, len(wire))
		}
		for _, c := range got.Contributions {
			allData = append(allData, c.Data...)
			allLengths = append(allLengths, c.NewPasses)
			numPasses += c.NewPasses
		}
	}

	if string(allData) != string(cb.Data) {
		t.Fatalf("reassembled data mismatch: got %d bytes, want %d bytes", len(allData), len(cb.Data))
	}
	if numPasses != cb.NumPasses {
		t.Fatalf("reassembled pass count = %d, want %d", numPasses, cb.NumPasses)
	}
}

func TestEmptyPacketRoundTrip(t *testing.T) {
	pkt := Packet{}
	wire := WritePacket(nil, pkt, Options{})
	if len(wire) != 1 || wire[0] != 0 {
		t.Fatalf("empty packet wire = %v, want [0]", wire)
	}
	got, n, err := ReadPacket(wire, Options{})
	if err != nil {
		t.Fatalf("ReadPacket error: %v", err)
	}
	if n != 1 || len(got.Contributions) != 0 {
		t.Fatalf("ReadPacket(empty) = %+v, n=%d", got, n)
	}
}

func TestBuildReadPacketsLRCPRoundTrip(t *testing.T) {
	const numLevels = 1
	const numLayers = 2

	ll := encodedBlock(t, 4, 4, 11, tier1.OrientLL)
	hl := encodedBlock(t, 4, 4, 22, tier1.OrientHL)
	lh := encodedBlock(t, 4, 4, 33, tier1.OrientLH)
	hh := encodedBlock(t, 4, 4, 44, tier1.OrientHH)

	subbands := []SubbandRef{
		{Component: 0, Level: 0, Blocks: []*tier1.CodeBlock{hl}},
		{Component: 0, Level: 0, Blocks: []*tier1.CodeBlock{lh}},
		{Component: 0, Level: 0, Blocks: []*tier1.CodeBlock{hh}},
		{Component: 0, Level: 1, Blocks: []*tier1.CodeBlock{ll}},
	}

	wire := BuildPackets(nil, subbands, numLevels, numLayers, Options{})

	decLL := &tier1.CodeBlock{W: 4, H: 4}
	decHL := &tier1.CodeBlock{W: 4, H: 4}
	decLH := &tier1.CodeBlock{W: 4, H: 4}
	decHH := &tier1.CodeBlock{W: 4, H: 4}
	decSubbands := []SubbandRef{
		{Component: 0, Level: 0, Blocks: []*tier1.CodeBlock{decHL}},
		{Component: 0, Level: 0, Blocks: []*tier1.CodeBlock{decLH}},
		{Component: 0, Level: 0, Blocks: []*tier1.CodeBlock{decHH}},
		{Component: 0, Level: 1, Blocks: []*tier1.CodeBlock{decLL}},
	}

	if err := ReadPackets(wire, decSubbands, numLevels, numLayers, Options{}); err != nil {
		t.Fatalf("ReadPackets error: %v", err)
	}

	for name, pair := range map[string][2]*tier1.CodeBlock{
		"LL": {ll, decLL}, "HL": {hl, decHL}, "LH": {lh, decLH}, "HH": {hh, decHH},
	} {
		if string(pair[1].Data) != string(pair[0].Data) {
			t.Fatalf("%s: reassembled data mismatch", name)
		}
		if pair[1].BitPlanes != pair[0].BitPlanes {
			t.Fatalf("%s: bit-plane count mismatch: got %d, want %d", name, pair[1].BitPlanes, pair[0].BitPlanes)
		}
	}
}
