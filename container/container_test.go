package container

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gorilla-ts/codec/format"
)

func payload() []byte {
	data := make([]byte, 2000)
	for i := range data {
		data[i] = byte(i % 17)
	}

	return data
}

func TestNoop_RoundTrip(t *testing.T) {
	c := NewNoopCodec()
	data := payload()

	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.Equal(t, data, compressed)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestZlib_RoundTrip(t *testing.T) {
	c := NewZlibCodec()
	data := payload()

	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.NotEmpty(t, compressed)
	require.Less(t, len(compressed), len(data))

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestZlib_EmptyInput(t *testing.T) {
	c := NewZlibCodec()

	compressed, err := c.Compress(nil)
	require.NoError(t, err)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Empty(t, decompressed)
}

func TestZstd_RoundTrip(t *testing.T) {
	c := NewZstdCodec()
	data := payload()

	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.Less(t, len(compressed), len(data))

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestZstd_EmptyInput(t *testing.T) {
	c := NewZstdCodec()

	decompressed, err := c.Decompress(nil)
	require.NoError(t, err)
	require.Nil(t, decompressed)
}

func TestS2_RoundTrip(t *testing.T) {
	c := NewS2Codec()
	data := payload()

	compressed, err := c.Compress(data)
	require.NoError(t, err)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestLZ4_RoundTrip(t *testing.T) {
	c := NewLZ4Codec()
	data := payload()

	compressed, err := c.Compress(data)
	require.NoError(t, err)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestLZ4_EmptyInput(t *testing.T) {
	c := NewLZ4Codec()

	compressed, err := c.Compress(nil)
	require.NoError(t, err)
	require.Nil(t, compressed)

	decompressed, err := c.Decompress(nil)
	require.NoError(t, err)
	require.Nil(t, decompressed)
}

func TestGet_AllKinds(t *testing.T) {
	for _, kind := range []format.Container{
		format.ContainerNone,
		format.ContainerZlib,
		format.ContainerZstd,
		format.ContainerLZ4,
		format.ContainerS2,
	} {
		c, err := Get(kind)
		require.NoError(t, err)
		require.NotNil(t, c)
	}
}

func TestGet_AutoIsUnavailableDirectly(t *testing.T) {
	_, err := Get(format.ContainerAuto)
	require.Error(t, err)
}

func TestResolve_Auto(t *testing.T) {
	require.Equal(t, format.ContainerZstd, Resolve(format.ContainerAuto))
	require.Equal(t, format.ContainerZlib, Resolve(format.ContainerZlib))
	require.Equal(t, format.ContainerLZ4, Resolve(format.ContainerLZ4))
}

func TestSniff_Zstd(t *testing.T) {
	compressed, err := NewZstdCodec().Compress(payload())
	require.NoError(t, err)

	kind, ok := Sniff(compressed)
	require.True(t, ok)
	require.Equal(t, format.ContainerZstd, kind)
}

func TestSniff_Zlib(t *testing.T) {
	compressed, err := NewZlibCodec().Compress(payload())
	require.NoError(t, err)

	kind, ok := Sniff(compressed)
	require.True(t, ok)
	require.Equal(t, format.ContainerZlib, kind)
}

func TestSniff_UnrecognizedFallsThrough(t *testing.T) {
	_, ok := Sniff([]byte{0x47, 0x4F, 0x52, 0x49})
	require.False(t, ok)
}

func TestLZ4_LargeExpansionTriggersBufferGrowth(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 1<<20)
	c := NewLZ4Codec()

	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.Less(t, len(compressed), len(data))

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}
