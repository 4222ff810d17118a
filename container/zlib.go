package container

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// ZlibCodec wraps klauspost/compress/zlib, a drop-in faster reimplementation
// of the standard library's zlib package (RFC 1950). It favors compression
// ratio over raw throughput, and needs no cgo toolchain.
type ZlibCodec struct{}

var _ Codec = ZlibCodec{}

// NewZlibCodec returns a zlib container codec at the default compression
// level.
func NewZlibCodec() ZlibCodec {
	return ZlibCodec{}
}

func (ZlibCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("container compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("container compression failed: %w", err)
	}

	return buf.Bytes(), nil
}

func (ZlibCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("container decompression failed: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("container decompression failed: %w", err)
	}

	return out, nil
}
