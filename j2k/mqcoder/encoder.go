package mqcoder

// Encoder implements the MQ context-adaptive binary arithmetic encoder.
//
// Reference: ISO/IEC 15444-1:2019 Annex C.
type Encoder struct {
	buffer []byte // output buffer; index 0 is a dummy byte
	bp     int

	a  uint32 // interval register
	c  uint32 // code register
	ct int    // output countdown

	contexts []context
}

// NewEncoder returns an encoder with numContexts independent contexts, all
// initialized to state 0 / MPS 0.
func NewEncoder(numContexts int) *Encoder {
	return &Encoder{
		buffer:   make([]byte, 1, 256),
		a:        0x8000,
		ct:       12,
		contexts: newContexts(numContexts),
	}
}

// Encode codes a single bit under the given context.
func (e *Encoder) Encode(bit int, ctxID int) {
	cx := &e.contexts[ctxID]
	qe := qeTable[cx.state]

	if bit == int(cx.mps) {
		e.a -= qe
		if e.a&0x8000 == 0 {
			if e.a < qe {
				e.a = qe
			} else {
				e.c += qe
			}
			cx.state = nmpsTable[cx.state]
			e.renorm()
		} else {
			e.c += qe
		}
	} else {
		e.a -= qe
		if e.a < qe {
			e.c += qe
		} else {
			e.a = qe
		}
		if switchTable[cx.state] == 1 {
			cx.mps = 1 - cx.mps
		}
		cx.state = nlpsTable[cx.state]
		e.renorm()
	}
}

func (e *Encoder) renorm() {
	for e.a < 0x8000 {
		e.a <<= 1
		e.c <<= 1
		e.ct--
		if e.ct == 0 {
			e.byteOut()
		}
	}
}

// byteOut emits one byte, propagating carries and stuffing a zero bit
// after any emitted 0xFF (spec.md §4.3).
func (e *Encoder) byteOut() {
	if e.buffer[e.bp] == 0xFF {
		e.bp++
		e.grow(e.bp)
		e.buffer[e.bp] = byte(e.c >> 20)
		e.c &= 0xFFFFF
		e.ct = 7
		return
	}
	if e.c&0x8000000 == 0 {
		e.bp++
		e.grow(e.bp)
		e.buffer[e.bp] = byte(e.c >> 19)
		e.c &= 0x7FFFF
		e.ct = 8
		return
	}
	e.buffer[e.bp]++
	if e.buffer[e.bp] == 0xFF {
		e.c &= 0x7FFFFFF
		e.bp++
		e.grow(e.bp)
		e.buffer[e.bp] = byte(e.c >> 20)
		e.c &= 0xFFFFF
		e.ct = 7
		return
	}
	e.bp++
	e.grow(e.bp)
	e.buffer[e.bp] = byte(e.c >> 19)
	e.c &= 0x7FFFF
	e.ct = 8
}

func (e *Encoder) grow(idx int) {
	if idx < len(e.buffer) {
		return
	}
	need := idx + 1
	if need <= cap(e.buffer) {
		e.buffer = e.buffer[:need]
		return
	}
	nb := make([]byte, need, 2*cap(e.buffer)+need)
	copy(nb, e.buffer)
	e.buffer = nb
}

// BufferedLen reports the number of bytes emitted so far, excluding the
// leading dummy byte. Because of carry propagation the last byte can
// still change before Flush, so this is an approximation suitable for
// progress tracking (e.g. Tier-1 pass-length bookkeeping) and not a
// stable byte offset.
func (e *Encoder) BufferedLen() int {
	return e.bp
}

// Flush pads the remaining bits with ones and returns the encoded bytes
// (excluding the leading dummy byte).
func (e *Encoder) Flush() []byte {
	tmp := e.c + e.a
	e.c |= 0xFFFF
	if e.c >= tmp {
		e.c -= 0x8000
	}
	e.c <<= uint(e.ct)
	e.byteOut()
	e.c <<= uint(e.ct)
	e.byteOut()

	if e.buffer[e.bp] != 0xFF {
		e.bp++
	}
	if e.bp < 1 {
		return nil
	}
	return e.buffer[1 : e.bp+1]
}

// Reset clears the encoder's output and state registers, preserving
// context probability states (use ResetContexts to also clear those).
func (e *Encoder) Reset() {
	e.buffer = make([]byte, 1, 256)
	e.bp = 0
	e.a = 0x8000
	e.c = 0
	e.ct = 12
}

// ResetContext resets a single context to state 0 / MPS 0.
func (e *Encoder) ResetContext(ctxID int) {
	e.contexts[ctxID] = context{}
}

// ResetContexts resets every context to state 0 / MPS 0.
func (e *Encoder) ResetContexts() {
	for i := range e.contexts {
		e.contexts[i] = context{}
	}
}
