// Package bitio provides the big-endian bit-level writer/reader shared by the
// timestamp delta codec and the value XOR codec. Both codecs accumulate
// variable-width fields (1 to 64 bits) into a byte-aligned stream; this
// package holds the 64-bit scratch-buffer machinery so neither codec repeats
// it.
package bitio

import (
	"encoding/binary"

	"github.com/gorilla-ts/codec/internal/pool"
)

// Writer accumulates bits into a pool.ByteBuffer, flushing complete bytes in
// big-endian order as the 64-bit scratch buffer fills.
type Writer struct {
	bitBuf   uint64
	buf      *pool.ByteBuffer
	bitCount int
	written  int
}

// NewWriter creates a Writer that appends flushed bytes to buf.
func NewWriter(buf *pool.ByteBuffer) *Writer {
	return &Writer{buf: buf}
}

// WriteBit writes a single bit (0 or 1).
func (w *Writer) WriteBit(bit uint64) {
	w.bitBuf = (w.bitBuf << 1) | (bit & 1)
	w.bitCount++
	w.written++

	if w.bitCount == 64 {
		w.flush()
	}
}

// WriteBits writes the low numBits bits of value, most significant bit
// first. numBits must be in [0, 64]; 0 is a no-op.
func (w *Writer) WriteBits(value uint64, numBits int) {
	if numBits == 0 {
		return
	}
	w.written += numBits

	if numBits < 64 {
		value &= (1 << numBits) - 1
	}

	available := 64 - w.bitCount
	if numBits <= available {
		w.bitBuf = (w.bitBuf << numBits) | value
		w.bitCount += numBits

		if w.bitCount == 64 {
			w.flush()
		}

		return
	}

	highBits := numBits - available
	w.bitBuf = (w.bitBuf << available) | (value >> highBits)
	w.bitCount = 64
	w.flush()

	w.bitBuf = value & ((1 << highBits) - 1)
	w.bitCount = highBits
}

// Flush writes any pending bits to the byte buffer, padding the final byte
// with zero bits. Safe to call multiple times; a no-op when nothing is
// pending.
func (w *Writer) Flush() {
	if w.bitCount > 0 {
		w.flush()
	}
}

func (w *Writer) flush() {
	if w.bitCount == 0 {
		return
	}

	numBytes := (w.bitCount + 7) / 8
	w.buf.Grow(numBytes)

	alignedBits := w.bitBuf << (64 - w.bitCount)

	startLen := w.buf.Len()
	w.buf.ExtendOrGrow(numBytes)
	bs := w.buf.Slice(startLen, startLen+numBytes)

	if numBytes == 8 {
		binary.BigEndian.PutUint64(bs, alignedBits)
	} else {
		for i := range numBytes {
			shift := 56 - (i * 8)
			bs[i] = byte(alignedBits >> shift)
		}
	}

	w.bitBuf = 0
	w.bitCount = 0
}

// BitLen returns the total number of bits written so far, including bits
// still pending in the scratch buffer and excluding the zero padding added
// by Flush.
func (w *Writer) BitLen() int {
	return w.written
}

// Reset clears the writer's pending-bit state and its BitLen count. It does
// not touch the underlying buffer; callers reset that separately.
func (w *Writer) Reset() {
	w.bitBuf = 0
	w.bitCount = 0
	w.written = 0
}
