// Package container implements the Container Wrapper: a thin, byte-in/byte-out
// compression stage applied to an already-framed block. It never looks inside
// the bytes it wraps — the framing header remains intact and self-describing
// on the far side of decompression.
package container

import (
	"bytes"
	"fmt"

	"github.com/gorilla-ts/codec/errs"
	"github.com/gorilla-ts/codec/format"
)

// Compressor compresses an opaque byte buffer.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses an opaque byte buffer produced by the matching
// Compressor.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions of a single container transform.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.Container]Codec{
	format.ContainerNone: NewNoopCodec(),
	format.ContainerZlib: NewZlibCodec(),
	format.ContainerZstd: NewZstdCodec(),
	format.ContainerLZ4:  NewLZ4Codec(),
	format.ContainerS2:   NewS2Codec(),
}

// Get returns the built-in Codec for kind. kind must already be a concrete
// choice — ContainerAuto is resolved by Resolve, never looked up directly.
func Get(kind format.Container) (Codec, error) {
	codec, ok := builtinCodecs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrContainerUnavailable, kind)
	}

	return codec, nil
}

// Resolve turns ContainerAuto into a concrete choice: zstd if zstdAvailable
// reports true, else zlib. Any other kind is returned unchanged.
func Resolve(kind format.Container) format.Container {
	if kind != format.ContainerAuto {
		return kind
	}

	if zstdAvailable() {
		return format.ContainerZstd
	}

	return format.ContainerZlib
}

// zstdAvailable reports whether the zstd codec can be constructed and used
// in this build. The pure-Go codec (built via klauspost/compress/zstd) is
// always available; only the cgo codec, gated out by default, could fail.
func zstdAvailable() bool {
	return true
}

// zstdMagic is the leading 4 bytes zstd stamps on its own output, used by
// Sniff to recognize a zstd container without being told which one was used.
var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
)

// Sniff inspects the first bytes of data and reports which container, if
// any, produced them. It recognizes zstd (fixed 4-byte magic) and zlib
// (RFC 1950's CMF/FLG header, whose first byte is always a multiple of 16
// plus 8 for the deflate method, and whose first 16-bit word is a multiple
// of 31). LZ4 blocks and S2 blocks carry no self-describing signature, so
// Sniff cannot distinguish them from an uncompressed Gorilla magic number;
// callers using those containers must pass an explicit choice to Decode
// rather than relying on Sniff.
func Sniff(data []byte) (format.Container, bool) {
	if len(data) >= 4 && bytes.Equal(data[:4], zstdMagic) {
		return format.ContainerZstd, true
	}

	if len(data) >= 2 && data[0]&0x0F == 0x08 && (uint16(data[0])<<8|uint16(data[1]))%31 == 0 {
		return format.ContainerZlib, true
	}

	return format.ContainerNone, false
}
