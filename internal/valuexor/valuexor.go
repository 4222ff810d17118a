// Package valuexor encodes and decodes a sequence of IEEE-754 float64 values
// as an XOR bitstream with leading/trailing-zero window reuse, the value
// half of the Gorilla codec.
//
// Per-value encoding after the raw 64-bit first value: compute
// xor = bits(v_i) ^ bits(v_(i-1)).
//
//	xor == 0                                     -> bit 0
//	xor != 0, fits previous window                -> bits 10, meaningful bits
//	xor != 0, new window                           -> bits 11, 5-bit leading,
//	                                                  6-bit length, meaningful bits
//
// A meaningful length of 64 is stored as the 6-bit value 63; the encoder
// never emits a zero-length new window (meaningful_length is always >= 1).
package valuexor

import (
	"math"
	"math/bits"

	"github.com/gorilla-ts/codec/internal/bitio"
	"github.com/gorilla-ts/codec/internal/pool"
)

// Encoder accumulates a sequence of float64 values into an XOR bitstream.
// The zero value is not usable; construct with NewEncoder.
type Encoder struct {
	w             *bitio.Writer
	buf           *pool.ByteBuffer
	prevBits      uint64
	prevLeading   int
	prevTrailing  int
	prevMeaningLn int
	count         int
}

// NewEncoder creates an Encoder backed by a pooled byte buffer.
func NewEncoder() *Encoder {
	buf := pool.GetBuffer()
	return &Encoder{
		buf: buf,
		w:   bitio.NewWriter(buf),
	}
}

// Write encodes the next value in the sequence.
func (e *Encoder) Write(v float64) {
	if e.buf == nil {
		panic("valuexor: encoder already finished - cannot write after Finish()")
	}

	e.count++
	valBits := math.Float64bits(v)

	if e.count == 1 {
		e.w.WriteBits(valBits, 64)
		e.prevBits = valBits

		return
	}

	e.writeValue(valBits)
}

// WriteSlice encodes a slice of values in order.
func (e *Encoder) WriteSlice(values []float64) {
	for _, v := range values {
		e.Write(v)
	}
}

func (e *Encoder) writeValue(valBits uint64) {
	xor := valBits ^ e.prevBits
	e.prevBits = valBits

	if xor == 0 {
		e.w.WriteBit(0)
		return
	}

	leading := bits.LeadingZeros64(xor)
	trailing := bits.TrailingZeros64(xor)
	if leading > 31 {
		// The 5-bit leading field caps at 31; the extra zero bits above 31
		// are simply folded into the meaningful window instead (they're
		// zero, so including them changes nothing but the field we can
		// represent).
		leading = 31
	}
	meaningLn := 64 - leading - trailing

	if e.prevMeaningLn > 0 && leading >= e.prevLeading && trailing >= e.prevTrailing {
		// Window reuse: the previous window's trailing/length are still wide
		// enough to hold this xor's meaningful bits.
		e.w.WriteBits(0b10, 2)
		e.w.WriteBits(xor>>e.prevTrailing, e.prevMeaningLn)

		return
	}

	e.w.WriteBits(0b11, 2)
	e.w.WriteBits(uint64(leading), 5) //nolint:gosec // leading is always 0-31
	e.w.WriteBits(storedLength(meaningLn), 6)
	e.w.WriteBits(xor>>trailing, meaningLn)

	e.prevLeading = leading
	e.prevTrailing = trailing
	e.prevMeaningLn = meaningLn
}

// storedLength maps a meaningful length in [1, 64] to its unambiguous 6-bit
// field value in [0, 63] (stored = length-1), so length 64 is stored as 63
// without colliding with a genuine length of 63 (stored as 62).
func storedLength(length int) uint64 {
	return uint64(length - 1)
}

// loadedLength reverses storedLength.
func loadedLength(stored uint64) int {
	return int(stored) + 1
}

// Bytes returns the encoded bitstream, flushing any pending bits to a byte
// boundary (with zero padding).
func (e *Encoder) Bytes() []byte {
	if e.buf == nil {
		panic("valuexor: encoder already finished - cannot access bytes after Finish()")
	}

	e.w.Flush()

	return e.buf.Bytes()
}

// BitLen returns the number of bits written so far, before byte-boundary
// padding. This is the value the bit packer records as value_bits_length.
func (e *Encoder) BitLen() int {
	return e.w.BitLen()
}

// Len returns the number of values written.
func (e *Encoder) Len() int {
	return e.count
}

// Reset clears encoder state for reuse, retaining the underlying buffer.
func (e *Encoder) Reset() {
	e.buf.Reset()
	e.w.Reset()
	e.prevBits = 0
	e.prevLeading = 0
	e.prevTrailing = 0
	e.prevMeaningLn = 0
	e.count = 0
}

// Finish returns the underlying buffer to the pool. The encoder is unusable
// after Finish; callers must retrieve Bytes() first.
func (e *Encoder) Finish() {
	if e.buf == nil {
		return
	}

	pool.PutBuffer(e.buf)
	e.buf = nil
}

// Decoder reads a value XOR bitstream. It is stateless and safe to reuse or
// share across goroutines.
type Decoder struct{}

// NewDecoder creates a stateless Decoder.
func NewDecoder() Decoder {
	return Decoder{}
}

// DecodeAll decodes exactly count values from data, calling yield for each
// in order. It stops early if yield returns false, or if data is truncated
// or structurally corrupt before count values are produced (in which case ok
// is false).
func (Decoder) DecodeAll(data []byte, count int, yield func(float64) bool) (ok bool) {
	if count == 0 {
		return true
	}

	r := bitio.NewReader(data)

	firstBits, ok := r.ReadBits(64)
	if !ok {
		return false
	}
	prevBits := firstBits
	if !yield(math.Float64frombits(prevBits)) {
		return true
	}
	if count == 1 {
		return true
	}

	var prevLeading, prevTrailing, prevMeaningLn int

	for i := 1; i < count; i++ {
		ctrl0, ok := r.ReadBit()
		if !ok {
			return false
		}
		if ctrl0 == 0 {
			if !yield(math.Float64frombits(prevBits)) {
				return true
			}

			continue
		}

		ctrl1, ok := r.ReadBit()
		if !ok {
			return false
		}

		var leading, meaningLn, trailing int
		if ctrl1 == 0 {
			if prevMeaningLn == 0 {
				return false
			}
			leading = prevLeading
			trailing = prevTrailing
			meaningLn = prevMeaningLn
		} else {
			l, ok := r.ReadBits(5)
			if !ok {
				return false
			}
			lenStored, ok := r.ReadBits(6)
			if !ok {
				return false
			}
			leading = int(l)
			meaningLn = loadedLength(lenStored)
			if leading+meaningLn > 64 {
				return false
			}
			trailing = 64 - leading - meaningLn

			prevLeading = leading
			prevTrailing = trailing
			prevMeaningLn = meaningLn
		}

		meaningful, ok := r.ReadBits(meaningLn)
		if !ok {
			return false
		}

		prevBits ^= meaningful << trailing
		if !yield(math.Float64frombits(prevBits)) {
			return true
		}
	}

	return true
}
