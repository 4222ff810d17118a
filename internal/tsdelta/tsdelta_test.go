package tsdelta

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, data []byte, count int) []int64 {
	t.Helper()

	var got []int64
	ok := NewDecoder().DecodeAll(data, count, func(ts int64) bool {
		got = append(got, ts)
		return true
	})
	require.True(t, ok)

	return got
}

func TestRoundTrip_Basic(t *testing.T) {
	timestamps := []int64{1609459200, 1609459260, 1609459320}

	enc := NewEncoder()
	defer enc.Finish()
	require.NoError(t, enc.WriteSlice(timestamps))

	data := enc.Bytes()
	got := collect(t, data, len(timestamps))

	require.Equal(t, timestamps, got)
}

func TestRoundTrip_Singleton(t *testing.T) {
	enc := NewEncoder()
	defer enc.Finish()
	require.NoError(t, enc.Write(1000))

	data := enc.Bytes()
	require.Equal(t, 64, enc.BitLen())

	got := collect(t, data, 1)
	require.Equal(t, []int64{1000}, got)
}

func TestRoundTrip_Empty(t *testing.T) {
	var got []int64
	ok := NewDecoder().DecodeAll(nil, 0, func(ts int64) bool {
		got = append(got, ts)
		return true
	})
	require.True(t, ok)
	require.Empty(t, got)
}

func TestBoundaryDeltas(t *testing.T) {
	boundaries := []int64{0, 1, -1, 63, -63, 64, -64, 65, -65, 255, -255, 256, -256, 257, -257, 2047, -2047, 2048, -2048, 2049, -2049, 1<<31 - 1, -(1 << 31)}

	for _, d := range boundaries {
		timestamps := []int64{1000, 1000 + d}

		enc := NewEncoder()
		require.NoError(t, enc.WriteSlice(timestamps))
		data := enc.Bytes()

		got := collect(t, data, 2)
		require.Equal(t, timestamps, got, "delta=%d", d)
		enc.Finish()
	}
}

func TestBoundaryDeltaOfDeltas(t *testing.T) {
	dods := []int64{0, 63, -63, 64, -64, 255, -255, 256, -256, 2047, -2047, 2048, -2048}

	for _, dod := range dods {
		// t0=0, t1=100 (delta=100), t2 chosen so delta2-delta1==dod
		delta2 := 100 + dod
		timestamps := []int64{0, 100, 100 + delta2}

		enc := NewEncoder()
		require.NoError(t, enc.WriteSlice(timestamps))
		data := enc.Bytes()

		got := collect(t, data, 3)
		require.Equal(t, timestamps, got, "dod=%d", dod)
		enc.Finish()
	}
}

func TestOutOfRangeDeltaRejected(t *testing.T) {
	enc := NewEncoder()
	defer enc.Finish()

	require.NoError(t, enc.Write(0))
	err := enc.Write(int64(1) << 32)
	require.Error(t, err)
}

func TestByteAlignment(t *testing.T) {
	enc := NewEncoder()
	defer enc.Finish()
	require.NoError(t, enc.WriteSlice([]int64{1, 2, 3, 4, 5}))

	data := enc.Bytes()
	require.Equal(t, 0, len(data)*8%8)
}

func TestTruncatedStreamReturnsFalse(t *testing.T) {
	enc := NewEncoder()
	require.NoError(t, enc.WriteSlice([]int64{1, 2, 3}))
	data := enc.Bytes()
	enc.Finish()

	ok := NewDecoder().DecodeAll(data[:1], 3, func(int64) bool { return true })
	require.False(t, ok)
}

func TestDecodeAll_EarlyStop(t *testing.T) {
	enc := NewEncoder()
	defer enc.Finish()
	require.NoError(t, enc.WriteSlice([]int64{10, 20, 30, 40}))
	data := enc.Bytes()

	var got []int64
	ok := NewDecoder().DecodeAll(data, 4, func(ts int64) bool {
		got = append(got, ts)
		return len(got) < 2
	})
	require.True(t, ok)
	require.Equal(t, []int64{10, 20}, got)
}
