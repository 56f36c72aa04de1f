// Package tier2 assembles EBCOT Tier-1 code-block contributions into
// packets, in Layer-Resolution-Component-Position order, with a simple
// uniform-division rate-allocation policy.
//
// The wire framing here is a deliberate simplification of ITU-T T.800's
// packet header (no tag trees, no zero-length-packet bitmap) and is not
// bit-exact to the standard.
package tier2

import (
	"encoding/binary"
	"fmt"

	"github.com/cocosip/go-imagecodecs/j2k/tier1"
)

// SOPMarker is written before a packet's body when Options.UseSOP is set.
const SOPMarker = 0xFF91

// BlockRef names one code-block contributing to a packet, together with
// the half-open window of passes ([PassStart,PassEnd)) being transmitted
// in this packet.
type BlockRef struct {
	Block     *tier1.CodeBlock
	PassStart int
	PassEnd   int
}

// Contribution is one code-block's payload within a packet. BitPlanes
// carries the code-block's total bit-plane count on every contribution
// (not just its first): real JPEG2000 packet headers signal this once
// via a tag tree, but this simplified framing repeats the one byte
// instead, since it already occupies a fixed per-contribution header.
type Contribution struct {
	NewPasses int
	BitPlanes int
	Data      []byte
}

// Packet is an ordered list of code-block contributions for one
// (layer, resolution, component, precinct) tuple.
type Packet struct {
	Contributions []Contribution
}

// PassesPerLayer implements the uniform rate-allocation policy:
// ceil(totalPasses / numLayers).
func PassesPerLayer(totalPasses, numLayers int) int {
	if numLayers < 1 {
		numLayers = 1
	}
	if totalPasses < 0 {
		totalPasses = 0
	}
	return (totalPasses + numLayers - 1) / numLayers
}

// LayerWindow returns the half-open pass range [start,end) assigned to
// layer (0-based), clamped to totalPasses.
func LayerWindow(layer, passesPerLayer, totalPasses int) (start, end int) {
	start = layer * passesPerLayer
	end = start + passesPerLayer
	if start > totalPasses {
		start = totalPasses
	}
	if end > totalPasses {
		end = totalPasses
	}
	return start, end
}

// passByteRange returns the byte offset and length within cb.Data covered
// by passes [start,end).
func passByteRange(cb *tier1.CodeBlock, start, end int) (offset, length int) {
	for i := 0; i < start && i < len(cb.PassLengths); i++ {
		offset += cb.PassLengths[i]
	}
	for i := start; i < end && i < len(cb.PassLengths); i++ {
		length += cb.PassLengths[i]
	}
	return offset, length
}

// BuildPacket forms a packet from refs, clamped by [0,255] new-pass counts
// and [0,65535] contribution byte lengths per spec.md §4.5. Every ref
// yields one contribution, in order, even when its pass window is empty,
// so ReadPackets can match contributions to code-blocks by position.
func BuildPacket(refs []BlockRef) Packet {
	var pkt Packet
	for _, r := range refs {
		if r.PassEnd < r.PassStart {
			r.PassEnd = r.PassStart
		}
		offset, length := passByteRange(r.Block, r.PassStart, r.PassEnd)
		pkt.Contributions = append(pkt.Contributions, Contribution{
			NewPasses: r.PassEnd - r.PassStart,
			BitPlanes: r.Block.BitPlanes,
			Data:      r.Block.Data[offset : offset+length],
		})
	}
	return pkt
}

// Options controls packet wire framing.
type Options struct {
	UseSOP bool
}

// WritePacket appends pkt's wire encoding to dst and returns the result.
func WritePacket(dst []byte, pkt Packet, opts Options) []byte {
	if opts.UseSOP {
		dst = binary.BigEndian.AppendUint16(dst, SOPMarker)
	}
	if len(pkt.Contributions) == 0 {
		return append(dst, 0)
	}
	dst = append(dst, 1)
	var countBuf [2]byte
	binary.BigEndian.PutUint16(countBuf[:], uint16(len(pkt.Contributions)))
	dst = append(dst, countBuf[:]...)
	for _, c := range pkt.Contributions {
		passes := c.NewPasses
		if passes > 255 {
			passes = 255
		}
		bitPlanes := c.BitPlanes
		if bitPlanes > 255 {
			bitPlanes = 255
		}
		n := len(c.Data)
		if n > 65535 {
			n = 65535
		}
		dst = append(dst, byte(passes), byte(bitPlanes))
		dst = binary.BigEndian.AppendUint16(dst, uint16(n))
		dst = append(dst, c.Data[:n]...)
	}
	return dst
}

// ReadPacket parses one packet from the front of src, returning the
// packet and the number of bytes consumed.
func ReadPacket(src []byte, opts Options) (Packet, int, error) {
	pos := 0
	if opts.UseSOP {
		if len(src) < 2 || binary.BigEndian.Uint16(src) != SOPMarker {
			return Packet{}, 0, fmt.Errorf("tier2: missing SOP marker")
		}
		pos += 2
	}
	if pos >= len(src) {
		return Packet{}, 0, fmt.Errorf("tier2: truncated packet header")
	}
	header := src[pos]
	pos++
	if header == 0 {
		return Packet{}, pos, nil
	}
	if header != 1 {
		return Packet{}, 0, fmt.Errorf("tier2: invalid packet header byte %#x", header)
	}
	if pos+2 > len(src) {
		return Packet{}, 0, fmt.Errorf("tier2: truncated contribution count")
	}
	count := int(binary.BigEndian.Uint16(src[pos:]))
	pos += 2

	var pkt Packet
	for i := 0; i < count; i++ {
		if pos+4 > len(src) {
			return Packet{}, 0, fmt.Errorf("tier2: truncated contribution header")
		}
		newPasses := int(src[pos])
		bitPlanes := int(src[pos+1])
		n := int(binary.BigEndian.Uint16(src[pos+2:]))
		pos += 4
		if pos+n > len(src) {
			return Packet{}, 0, fmt.Errorf("tier2: truncated contribution body")
		}
		pkt.Contributions = append(pkt.Contributions, Contribution{
			NewPasses: newPasses,
			BitPlanes: bitPlanes,
			Data:      src[pos : pos+n],
		})
		pos += n
	}
	return pkt, pos, nil
}
