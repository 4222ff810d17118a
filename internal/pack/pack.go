// Package pack implements the Bit Packer: it weaves the timestamp and value
// bitstreams into one byte-aligned Packed Block, prefixed by a fixed 32-byte
// inner header carrying enough metadata (count, first timestamp/value/delta,
// bit lengths) for the decoder to split the two streams apart again.
package pack

import (
	"encoding/binary"

	"github.com/gorilla-ts/codec/errs"
	"github.com/gorilla-ts/codec/internal/bitio"
	"github.com/gorilla-ts/codec/internal/pool"
)

// HeaderSize is the fixed size of the inner header, in bytes.
const HeaderSize = 32

// Header is the inner header prefixing every Packed Block.
type Header struct {
	Count          uint32
	FirstTimestamp int64
	FirstValueBits uint64
	FirstDelta     int32
	TSBitsLength   uint32
	ValueBitsLength uint32
}

// Bytes serializes h as the 32-byte big-endian inner header.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)

	binary.BigEndian.PutUint32(b[0:4], h.Count)
	binary.BigEndian.PutUint64(b[4:12], uint64(h.FirstTimestamp)) //nolint:gosec // bit-pattern reinterpretation
	binary.BigEndian.PutUint64(b[12:20], h.FirstValueBits)
	binary.BigEndian.PutUint32(b[20:24], uint32(h.FirstDelta)) //nolint:gosec // bit-pattern reinterpretation
	binary.BigEndian.PutUint32(b[24:28], h.TSBitsLength)
	binary.BigEndian.PutUint32(b[28:32], h.ValueBitsLength)

	return b
}

// ParseHeader parses the leading HeaderSize bytes of data as an inner
// header.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errs.ErrTruncatedPayload
	}

	var h Header
	h.Count = binary.BigEndian.Uint32(data[0:4])
	h.FirstTimestamp = int64(binary.BigEndian.Uint64(data[4:12])) //nolint:gosec
	h.FirstValueBits = binary.BigEndian.Uint64(data[12:20])
	h.FirstDelta = int32(binary.BigEndian.Uint32(data[20:24])) //nolint:gosec
	h.TSBitsLength = binary.BigEndian.Uint32(data[24:28])
	h.ValueBitsLength = binary.BigEndian.Uint32(data[28:32])

	return h, nil
}

// Pack concatenates the timestamp and value bitstreams (each already
// produced and individually byte-padded by their own codec, along with the
// exact bit length each codec reports) into one continuous Packed Block:
// inner header, then the two bitstreams back to back at the bit level (not
// byte level — each codec's own trailing pad bits are discarded and replaced
// by a single pad at the very end).
func Pack(count int, firstTS int64, firstValueBits uint64, firstDelta int32, tsData []byte, tsBits int, valueData []byte, valueBits int) []byte {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	buf.MustWrite(Header{
		Count:           uint32(count), //nolint:gosec // count is bounded by caller input length
		FirstTimestamp:  firstTS,
		FirstValueBits:  firstValueBits,
		FirstDelta:      firstDelta,
		TSBitsLength:    uint32(tsBits),    //nolint:gosec
		ValueBitsLength: uint32(valueBits), //nolint:gosec
	}.Bytes())

	w := bitio.NewWriter(buf)
	tsReader := bitio.NewReader(tsData)
	bitio.CopyBits(w, tsReader, tsBits)
	valueReader := bitio.NewReader(valueData)
	bitio.CopyBits(w, valueReader, valueBits)
	w.Flush()

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out
}

// Unpacked holds the two bitstreams split out of a Packed Block, ready for
// the timestamp and value decoders.
type Unpacked struct {
	Header    Header
	TSData    []byte
	ValueData []byte
}

// Unpack splits a Packed Block back into its inner header and the
// byte-padded timestamp/value bitstreams.
func Unpack(data []byte) (Unpacked, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return Unpacked{}, err
	}

	body := data[HeaderSize:]
	r := bitio.NewReader(body)

	tsBuf := pool.GetBuffer()
	defer pool.PutBuffer(tsBuf)
	tsW := bitio.NewWriter(tsBuf)
	if !bitio.CopyBits(tsW, r, int(h.TSBitsLength)) {
		return Unpacked{}, errs.ErrTruncatedPayload
	}
	tsW.Flush()
	tsOut := make([]byte, tsBuf.Len())
	copy(tsOut, tsBuf.Bytes())

	valBuf := pool.GetBuffer()
	defer pool.PutBuffer(valBuf)
	valW := bitio.NewWriter(valBuf)
	if !bitio.CopyBits(valW, r, int(h.ValueBitsLength)) {
		return Unpacked{}, errs.ErrTruncatedPayload
	}
	valW.Flush()
	valOut := make([]byte, valBuf.Len())
	copy(valOut, valBuf.Bytes())

	return Unpacked{Header: h, TSData: tsOut, ValueData: valOut}, nil
}

// TotalBits returns the total number of bits in the Packed Block that Pack
// produces for the given bit stream lengths, including the inner header and
// any trailing zero padding. Framer records
// this in the outer header's total_bits field.
func TotalBits(tsBits, valueBits int) int {
	total := HeaderSize*8 + tsBits + valueBits
	if rem := total % 8; rem != 0 {
		total += 8 - rem
	}

	return total
}
