// Package tsdelta encodes and decodes a sequence of signed 64-bit timestamps
// as delta-of-delta bitstreams using a five-bin variable-length prefix code,
// the timestamp half of the Gorilla codec.
//
// Wire format per element:
//
//	position 0:  first timestamp, raw 64 bits
//	position 1:  first delta D1 = t1 - t0, variable-length (below)
//	position 2+: delta-of-delta dod_i = D_i - D_(i-1), variable-length
//
// Both the first-delta and delta-of-delta fields use the same five-bin
// leading-unary prefix code:
//
//	prefix  range                body
//	0       d == 0               none
//	10      -63  <= d <= 64      7  bits, two's complement
//	110     -255 <= d <= 256     9  bits, two's complement
//	1110    -2047<= d <= 2048    12 bits, two's complement
//	1111    otherwise            32 bits, two's complement
//
// A value that does not fit in 32 signed bits is a precondition violation
// and is rejected with errs.ErrTimestampOutOfRange.
package tsdelta

import (
	"math/bits"

	"github.com/gorilla-ts/codec/errs"
	"github.com/gorilla-ts/codec/internal/bitio"
	"github.com/gorilla-ts/codec/internal/pool"
)

const (
	bin1Min, bin1Max = -63, 64
	bin2Min, bin2Max = -255, 256
	bin3Min, bin3Max = -2047, 2048
	bin4Min, bin4Max = int64(-1) << 31, int64(1)<<31 - 1
)

// Encoder accumulates a sequence of timestamps into a delta-of-delta
// bitstream. The zero value is not usable; construct with NewEncoder.
type Encoder struct {
	w         *bitio.Writer
	buf       *pool.ByteBuffer
	prevTS    int64
	prevDelta int64
	count     int
}

// NewEncoder creates an Encoder backed by a pooled byte buffer.
func NewEncoder() *Encoder {
	buf := pool.GetBuffer()
	return &Encoder{
		buf: buf,
		w:   bitio.NewWriter(buf),
	}
}

// Write encodes the next timestamp in the sequence. Returns
// errs.ErrTimestampOutOfRange if a delta or delta-of-delta falls outside the
// 32-bit signed range.
func (e *Encoder) Write(ts int64) error {
	if e.buf == nil {
		panic("tsdelta: encoder already finished - cannot write after Finish()")
	}

	e.count++

	switch e.count {
	case 1:
		e.w.WriteBits(uint64(ts), 64) //nolint:gosec // bit-pattern reinterpretation, not a numeric conversion
		e.prevTS = ts

		return nil
	case 2:
		delta := ts - e.prevTS
		if err := writeBinned(e.w, delta); err != nil {
			return err
		}
		e.prevDelta = delta
		e.prevTS = ts

		return nil
	default:
		delta := ts - e.prevTS
		dod := delta - e.prevDelta
		if err := writeBinned(e.w, dod); err != nil {
			return err
		}
		e.prevDelta = delta
		e.prevTS = ts

		return nil
	}
}

// WriteSlice encodes a slice of timestamps in order, stopping and returning
// an error at the first out-of-range delta.
func (e *Encoder) WriteSlice(timestamps []int64) error {
	for _, ts := range timestamps {
		if err := e.Write(ts); err != nil {
			return err
		}
	}

	return nil
}

// Bytes returns the encoded bitstream, flushing any pending bits to a byte
// boundary (with zero padding).
func (e *Encoder) Bytes() []byte {
	if e.buf == nil {
		panic("tsdelta: encoder already finished - cannot access bytes after Finish()")
	}

	e.w.Flush()

	return e.buf.Bytes()
}

// BitLen returns the number of bits written so far, before byte-boundary
// padding. This is the value the bit packer records as ts_bits_length.
func (e *Encoder) BitLen() int {
	return e.w.BitLen()
}

// Len returns the number of timestamps written.
func (e *Encoder) Len() int {
	return e.count
}

// Reset clears encoder state for reuse, retaining the underlying buffer.
func (e *Encoder) Reset() {
	e.buf.Reset()
	e.w.Reset()
	e.prevTS = 0
	e.prevDelta = 0
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

// writeBinned writes v using the five-bin prefix code shared by the
// first-delta and delta-of-delta fields.
//
// Bins 1-3 are asymmetric ([-(2^(w-1)-1), 2^(w-1)]): the w-bit body would
// naturally be two's-complement over [-2^(w-1), 2^(w-1)-1], but the lower
// bound of that range is excluded here and the positive value 2^(w-1) is
// written in its place, reusing the bit pattern that two's complement would
// otherwise assign to -2^(w-1) (a value this bin never needs to represent).
func writeBinned(w *bitio.Writer, v int64) error {
	switch {
	case v == 0:
		w.WriteBit(0)
	case v >= bin1Min && v <= bin1Max:
		w.WriteBits(0b10, 2)
		w.WriteBits(encodeBinBody(v, 7), 7)
	case v >= bin2Min && v <= bin2Max:
		w.WriteBits(0b110, 3)
		w.WriteBits(encodeBinBody(v, 9), 9)
	case v >= bin3Min && v <= bin3Max:
		w.WriteBits(0b1110, 4)
		w.WriteBits(encodeBinBody(v, 12), 12)
	case v >= bin4Min && v <= bin4Max:
		w.WriteBits(0b1111, 4)
		w.WriteBits(uint64(v)&0xFFFFFFFF, 32)
	default:
		return errs.ErrTimestampOutOfRange
	}

	return nil
}

// encodeBinBody encodes v into a width-bit body for one of the asymmetric
// bins (width 7, 9, or 12), special-casing the bumped positive boundary.
func encodeBinBody(v int64, width int) uint64 {
	bumped := int64(1) << (width - 1)
	if v == bumped {
		return uint64(bumped)
	}

	return uint64(v) & ((1 << width) - 1)
}

// decodeBinBody reverses encodeBinBody.
func decodeBinBody(raw uint64, width int) int64 {
	bumped := int64(1) << (width - 1)
	if int64(raw) == bumped {
		return bumped
	}

	return signExtend(raw, width)
}

// Decoder reads a delta-of-delta timestamp bitstream. It is stateless and
// safe to reuse or share across goroutines.
type Decoder struct{}

// NewDecoder creates a stateless Decoder.
func NewDecoder() Decoder {
	return Decoder{}
}

// DecodeAll decodes exactly count timestamps from data, calling yield for
// each in order. It stops early if yield returns false, or if data is
// truncated before count timestamps are produced (in which case ok is
// false).
func (Decoder) DecodeAll(data []byte, count int, yield func(int64) bool) (ok bool) {
	if count == 0 {
		return true
	}

	r := bitio.NewReader(data)

	firstBits, ok := r.ReadBits(64)
	if !ok {
		return false
	}
	ts := int64(firstBits) //nolint:gosec
	if !yield(ts) {
		return true
	}
	if count == 1 {
		return true
	}

	delta, ok := readBinned(r)
	if !ok {
		return false
	}
	ts += delta
	if !yield(ts) {
		return true
	}

	for i := 2; i < count; i++ {
		dod, ok := readBinned(r)
		if !ok {
			return false
		}
		delta += dod
		ts += delta
		if !yield(ts) {
			return true
		}
	}

	return true
}

// readBinned reads one five-bin-prefixed signed value.
func readBinned(r *bitio.Reader) (int64, bool) {
	b0, ok := r.ReadBit()
	if !ok {
		return 0, false
	}
	if b0 == 0 {
		return 0, true
	}

	b1, ok := r.ReadBit()
	if !ok {
		return 0, false
	}
	if b1 == 0 {
		body, ok := r.ReadBits(7)
		if !ok {
			return 0, false
		}

		return decodeBinBody(body, 7), true
	}

	b2, ok := r.ReadBit()
	if !ok {
		return 0, false
	}
	if b2 == 0 {
		body, ok := r.ReadBits(9)
		if !ok {
			return 0, false
		}

		return decodeBinBody(body, 9), true
	}

	b3, ok := r.ReadBit()
	if !ok {
		return 0, false
	}
	if b3 == 0 {
		body, ok := r.ReadBits(12)
		if !ok {
			return 0, false
		}

		return decodeBinBody(body, 12), true
	}

	body, ok := r.ReadBits(32)
	if !ok {
		return 0, false
	}

	return signExtend(body, 32), true
}

// signExtend interprets the low width bits of v as a two's-complement signed
// integer and sign-extends it to int64.
func signExtend(v uint64, width int) int64 {
	shift := uint(64 - width) //nolint:gosec // width is always 7, 9, 12, or 32
	return int64(v<<shift) >> shift
}

// bitWidth reports the minimum number of bits needed to represent a value's
// magnitude. Neither the codec nor its tests call it.
func bitWidth(v int64) int {
	if v < 0 {
		v = -v
	}

	return bits.Len64(uint64(v))
}
