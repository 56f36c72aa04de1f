package mqcoder

// Decoder implements the MQ context-adaptive binary arithmetic decoder,
// the exact inverse of Encoder.
type Decoder struct {
	data []byte // input, with a 0xFF 0xFF sentinel appended
	bp   int    // position of the last byte consumed into c

	a  uint32
	c  uint32
	ct int

	contexts []context
}

// NewDecoder returns a decoder over data, with numContexts independent
// contexts all initialized to state 0 / MPS 0.
func NewDecoder(data []byte, numContexts int) *Decoder {
	d := &Decoder{
		data:     append(append([]byte{}, data...), 0xFF, 0xFF),
		contexts: newContexts(numContexts),
	}
	d.init()
	return d
}

func (d *Decoder) init() {
	if len(d.data) > 2 {
		d.c = uint32(d.data[0]) << 16
	} else {
		d.c = 0xFF << 16
	}
	d.byteIn()
	d.c <<= 7
	d.ct -= 7
	d.a = 0x8000
}

// byteIn mirrors the encoder's byte-stuffing: a 0xFF byte followed by a
// byte > 0x8F is a marker and is not consumed further (spec.md §4.3).
func (d *Decoder) byteIn() {
	next := d.data[d.bp+1]
	if d.data[d.bp] == 0xFF {
		if next > 0x8F {
			d.c += 0xFF00
			d.ct = 8
		} else {
			d.bp++
			d.c += uint32(next) << 9
			d.ct = 7
		}
	} else {
		d.bp++
		d.c += uint32(next) << 8
		d.ct = 8
	}
}

func (d *Decoder) renorm() {
	for d.a < 0x8000 {
		if d.ct == 0 {
			d.byteIn()
		}
		d.a <<= 1
		d.c <<= 1
		d.ct--
	}
}

// Decode decodes a single bit under the given context.
func (d *Decoder) Decode(ctxID int) int {
	cx := &d.contexts[ctxID]
	qe := qeTable[cx.state]
	d.a -= qe

	var bit int
	if (d.c >> 16) < qe {
		// LPS region of the code register.
		if d.a < qe {
			d.a = qe
			bit = int(cx.mps)
			cx.state = nmpsTable[cx.state]
		} else {
			d.a = qe
			bit = 1 - int(cx.mps)
			if switchTable[cx.state] == 1 {
				cx.mps = 1 - cx.mps
			}
			cx.state = nlpsTable[cx.state]
		}
		d.renorm()
	} else {
		d.c -= qe << 16
		if d.a&0x8000 != 0 {
			return int(cx.mps)
		}
		if d.a < qe {
			bit = 1 - int(cx.mps)
			if switchTable[cx.state] == 1 {
				cx.mps = 1 - cx.mps
			}
			cx.state = nlpsTable[cx.state]
		} else {
			bit = int(cx.mps)
			cx.state = nmpsTable[cx.state]
		}
		d.renorm()
	}
	return bit
}

// Rebind reinitializes the decoder over a new segment of coded data while
// preserving context probability states, mirroring Encoder.Reset for a
// per-segment termination scheme. Tier-1 does not call it: it decodes
// each code-block as one continuous MQ stream.
func (d *Decoder) Rebind(data []byte) {
	d.data = append(append(d.data[:0:0], data...), 0xFF, 0xFF)
	d.bp = 0
	d.ct = 0
	d.init()
}

// ResetContext resets a single context to state 0 / MPS 0.
func (d *Decoder) ResetContext(ctxID int) {
	d.contexts[ctxID] = context{}
}

// ResetContexts resets every context to state 0 / MPS 0.
func (d *Decoder) ResetContexts() {
	for i := range d.contexts {
		d.contexts[i] = context{}
	}
}
