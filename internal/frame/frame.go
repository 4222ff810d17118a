// Package frame implements the Framer: it wraps a Packed Block with a
// self-describing, integrity-checked outer header carrying the magic number,
// version, sizes, CRC-32, and flags needed to decode without any side
// channel.
package frame

import (
	"encoding/binary"
	"hash/crc32"
	"math"
	"time"

	"github.com/gorilla-ts/codec/errs"
	"github.com/gorilla-ts/codec/format"
)

// Magic is the fixed magic number identifying a Framed Block ("GORILLA").
const Magic uint64 = 0x474F52494C4C41

// Flag bits recorded in the outer header's flags field.
const (
	FlagVictoriaMetrics uint32 = 0x01
	FlagIsCounter       uint32 = 0x02
	FlagZstd            uint32 = 0x04
	FlagZlib            uint32 = 0x08
	// FlagLZ4 and FlagS2 claim two of the flags byte's reserved bits for
	// container options beyond the spec's required none/zlib/zstd trio; see
	// SPEC_FULL.md's domain-stack notes.
	FlagLZ4 uint32 = 0x10
	FlagS2  uint32 = 0x20
)

// Header is the outer header prefixing every Framed Block.
type Header struct {
	Version          format.Version
	Count            uint32
	CompressedSize   uint32
	OriginalSize     uint32
	CRC32            uint32
	FirstTimestamp   int64
	FirstDelta       int32
	FirstValueBits   uint64
	TSBitsLength     uint32
	ValueBitsLength  uint32
	TotalBits        uint32
	CompressionRatio float64
	CreationTime     int64
	Flags            uint32
	// ScaleDecimals is only meaningful (and only written) for Version2.
	ScaleDecimals uint32
}

// New builds a Header from Packed Block metadata, selecting v1 or v2
// according to the encoder policy: v1 when flags would be all-zero (neither
// the preprocessor nor a version-forcing container is in use), v2 otherwise.
//
// container == zlib never sets FlagZlib on its own: the header-version
// invariant requires flags == 0 whenever container is none or zlib and the
// preprocessor is disabled, so this encoder tracks a bare zlib container
// choice only through the caller's own Options, never through the frame
// header. zstd, lz4, and s2 are outside that {none, zlib} exception and so
// set their bit and force v2, same as the preprocessor flags.
func New(count int, compressedSize, originalSize int, crc uint32, firstTS int64, firstDelta int32, firstValueBits uint64, tsBits, valueBits, totalBits int, flags uint32, scaleDecimals int, creationTime time.Time) Header {
	version := format.Version1
	if flags != 0 {
		version = format.Version2
	}

	var ratio float64
	if originalSize > 0 {
		ratio = float64(compressedSize) / float64(originalSize)
	}

	return Header{
		Version:          version,
		Count:            uint32(count), //nolint:gosec
		CompressedSize:   uint32(compressedSize), //nolint:gosec
		OriginalSize:     uint32(originalSize), //nolint:gosec
		CRC32:            crc,
		FirstTimestamp:   firstTS,
		FirstDelta:       firstDelta,
		FirstValueBits:   firstValueBits,
		TSBitsLength:     uint32(tsBits), //nolint:gosec
		ValueBitsLength:  uint32(valueBits), //nolint:gosec
		TotalBits:        uint32(totalBits), //nolint:gosec
		CompressionRatio: ratio,
		CreationTime:     creationTime.Unix(),
		Flags:            flags,
		ScaleDecimals:    uint32(scaleDecimals), //nolint:gosec
	}
}

// Bytes serializes h as the 80-byte (v1) or 84-byte (v2) big-endian outer
// header.
func (h Header) Bytes() []byte {
	size := h.Version.HeaderSize()
	b := make([]byte, size)

	binary.BigEndian.PutUint64(b[0:8], Magic)
	binary.BigEndian.PutUint16(b[8:10], uint16(h.Version)) //nolint:gosec
	binary.BigEndian.PutUint16(b[10:12], uint16(size)) //nolint:gosec
	binary.BigEndian.PutUint32(b[12:16], h.Count)
	binary.BigEndian.PutUint32(b[16:20], h.CompressedSize)
	binary.BigEndian.PutUint32(b[20:24], h.OriginalSize)
	binary.BigEndian.PutUint32(b[24:28], h.CRC32)
	binary.BigEndian.PutUint64(b[28:36], uint64(h.FirstTimestamp)) //nolint:gosec
	binary.BigEndian.PutUint32(b[36:40], uint32(h.FirstDelta)) //nolint:gosec
	binary.BigEndian.PutUint64(b[40:48], h.FirstValueBits)
	binary.BigEndian.PutUint32(b[48:52], h.TSBitsLength)
	binary.BigEndian.PutUint32(b[52:56], h.ValueBitsLength)
	binary.BigEndian.PutUint32(b[56:60], h.TotalBits)
	binary.BigEndian.PutUint64(b[60:68], math.Float64bits(h.CompressionRatio))
	binary.BigEndian.PutUint64(b[68:76], uint64(h.CreationTime)) //nolint:gosec
	binary.BigEndian.PutUint32(b[76:80], h.Flags)

	if h.Version == format.Version2 {
		binary.BigEndian.PutUint32(b[80:84], h.ScaleDecimals)
	}

	return b
}

// ParseHeader parses the leading bytes of data as an outer header,
// validating magic, version, and header length.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < 80 {
		return Header{}, errs.ErrTruncatedPayload
	}
	if binary.BigEndian.Uint64(data[0:8]) != Magic {
		return Header{}, errs.ErrInvalidMagic
	}

	version := format.Version(binary.BigEndian.Uint16(data[8:10]))
	headerLen := int(binary.BigEndian.Uint16(data[10:12]))

	switch version {
	case format.Version1:
		if headerLen != 80 {
			return Header{}, errs.ErrInvalidHeaderLength
		}
	case format.Version2:
		if headerLen != 84 {
			return Header{}, errs.ErrInvalidHeaderLength
		}
	default:
		return Header{}, errs.ErrUnsupportedVersion
	}

	if len(data) < headerLen {
		return Header{}, errs.ErrTruncatedPayload
	}

	h := Header{Version: version}
	h.Count = binary.BigEndian.Uint32(data[12:16])
	h.CompressedSize = binary.BigEndian.Uint32(data[16:20])
	h.OriginalSize = binary.BigEndian.Uint32(data[20:24])
	h.CRC32 = binary.BigEndian.Uint32(data[24:28])
	h.FirstTimestamp = int64(binary.BigEndian.Uint64(data[28:36])) //nolint:gosec
	h.FirstDelta = int32(binary.BigEndian.Uint32(data[36:40])) //nolint:gosec
	h.FirstValueBits = binary.BigEndian.Uint64(data[40:48])
	h.TSBitsLength = binary.BigEndian.Uint32(data[48:52])
	h.ValueBitsLength = binary.BigEndian.Uint32(data[52:56])
	h.TotalBits = binary.BigEndian.Uint32(data[56:60])
	h.CompressionRatio = math.Float64frombits(binary.BigEndian.Uint64(data[60:68]))
	h.CreationTime = int64(binary.BigEndian.Uint64(data[68:76])) //nolint:gosec

	if version == format.Version1 {
		h.Flags = 0
		h.ScaleDecimals = 0

		return h, nil
	}

	h.Flags = binary.BigEndian.Uint32(data[76:80])
	h.ScaleDecimals = binary.BigEndian.Uint32(data[80:84])

	return h, nil
}

// CRC32 computes the IEEE-polynomial CRC-32 of a Packed Block, exactly as
// zlib does.
func CRC32(packedBlock []byte) uint32 {
	return crc32.ChecksumIEEE(packedBlock)
}

// Validate checks magic, version, header length, and CRC, without fully
// decoding the payload. A body shorter than the declared compressed size is
// reported as errs.ErrTruncatedPayload.
func Validate(data []byte) error {
	h, err := ParseHeader(data)
	if err != nil {
		return err
	}

	body := data[h.Version.HeaderSize():]
	if int(h.CompressedSize) > len(body) {
		return errs.ErrTruncatedPayload
	}

	packedBlock := body[:h.CompressedSize]
	if CRC32(packedBlock) != h.CRC32 {
		return errs.ErrChecksumMismatch
	}

	return nil
}
