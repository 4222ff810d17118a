package frame

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gorilla-ts/codec/errs"
	"github.com/gorilla-ts/codec/format"
)

func TestHeader_RoundTrip_V1(t *testing.T) {
	now := time.Unix(1700000000, 0)
	h := New(10, 128, 160, 0xDEADBEEF, 1000, 5, math.Float64bits(3.25), 96, 64, 1296, 0, 0, now)
	require.Equal(t, format.Version1, h.Version)

	b := h.Bytes()
	require.Len(t, b, 80)

	got, err := ParseHeader(b)
	require.NoError(t, err)
	require.Equal(t, h.Version, got.Version)
	require.Equal(t, h.Count, got.Count)
	require.Equal(t, h.CompressedSize, got.CompressedSize)
	require.Equal(t, h.OriginalSize, got.OriginalSize)
	require.Equal(t, h.CRC32, got.CRC32)
	require.Equal(t, h.FirstTimestamp, got.FirstTimestamp)
	require.Equal(t, h.FirstDelta, got.FirstDelta)
	require.Equal(t, h.FirstValueBits, got.FirstValueBits)
	require.Equal(t, h.TSBitsLength, got.TSBitsLength)
	require.Equal(t, h.ValueBitsLength, got.ValueBitsLength)
	require.Equal(t, h.TotalBits, got.TotalBits)
	require.InDelta(t, h.CompressionRatio, got.CompressionRatio, 1e-12)
	require.Equal(t, h.CreationTime, got.CreationTime)
	require.Equal(t, uint32(0), got.Flags)
}

func TestHeader_RoundTrip_V2(t *testing.T) {
	now := time.Unix(1700000001, 0)
	h := New(10, 128, 160, 0xDEADBEEF, 1000, 5, math.Float64bits(3.25), 96, 64, 1296, FlagVictoriaMetrics|FlagZstd, 4, now)
	require.Equal(t, format.Version2, h.Version)

	b := h.Bytes()
	require.Len(t, b, 84)

	got, err := ParseHeader(b)
	require.NoError(t, err)
	require.Equal(t, h.Flags, got.Flags)
	require.Equal(t, h.ScaleDecimals, got.ScaleDecimals)
}

func TestParseHeader_InvalidMagic(t *testing.T) {
	b := make([]byte, 80)
	_, err := ParseHeader(b)
	require.ErrorIs(t, err, errs.ErrInvalidMagic)
}

func TestParseHeader_Truncated(t *testing.T) {
	_, err := ParseHeader(make([]byte, 10))
	require.ErrorIs(t, err, errs.ErrTruncatedPayload)
}

func TestParseHeader_UnsupportedVersion(t *testing.T) {
	h := New(1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, time.Unix(0, 0))
	b := h.Bytes()
	b[9] = 99 // corrupt low byte of version field

	_, err := ParseHeader(b)
	require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
}

func TestParseHeader_InvalidHeaderLength(t *testing.T) {
	h := New(1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, time.Unix(0, 0))
	b := h.Bytes()
	b[11] = 50 // corrupt low byte of header length field

	_, err := ParseHeader(b)
	require.ErrorIs(t, err, errs.ErrInvalidHeaderLength)
}

func TestCRC32_MatchesIEEE(t *testing.T) {
	data := []byte("the quick brown fox")
	require.Equal(t, uint32(0x91C102CA), CRC32(data))
}

func TestValidate_Success(t *testing.T) {
	packed := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	h := New(1, len(packed), 16, CRC32(packed), 0, 0, 0, 0, 0, 0, 0, 0, time.Unix(0, 0))
	full := append(h.Bytes(), packed...)

	require.NoError(t, Validate(full))
}

func TestValidate_ChecksumMismatch(t *testing.T) {
	packed := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	h := New(1, len(packed), 16, CRC32(packed)^0xFF, 0, 0, 0, 0, 0, 0, 0, 0, time.Unix(0, 0))
	full := append(h.Bytes(), packed...)

	require.ErrorIs(t, Validate(full), errs.ErrChecksumMismatch)
}

func TestValidate_TruncatedBody(t *testing.T) {
	h := New(1, 1000, 16, 0, 0, 0, 0, 0, 0, 0, 0, 0, time.Unix(0, 0))
	full := h.Bytes() // no body bytes appended, but header claims 1000

	require.ErrorIs(t, Validate(full), errs.ErrTruncatedPayload)
}

func TestVersionSelection_V1WhenNoFlags(t *testing.T) {
	h := New(1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, time.Unix(0, 0))
	require.Equal(t, format.Version1, h.Version)
}

func TestVersionSelection_V2WhenAnyFlagSet(t *testing.T) {
	for _, f := range []uint32{FlagVictoriaMetrics, FlagIsCounter, FlagZstd, FlagLZ4, FlagS2} {
		h := New(1, 1, 1, 0, 0, 0, 0, 0, 0, 0, f, 0, time.Unix(0, 0))
		require.Equal(t, format.Version2, h.Version, "flag %#x should select v2", f)
	}
}

func TestMagicValue(t *testing.T) {
	require.Equal(t, uint64(0x474F52494C4C41), Magic)
}
