//go:build nobuild

package container

import (
	"fmt"

	"github.com/valyala/gozstd"
)

// zstdDstRatioNum/zstdDstRatioDen mirror zstd_pure.go's ratio estimate: a
// Framed Block is already delta-of-delta and XOR residue, so it compresses
// far less than the teacher's tag-heavy multi-metric blobs. Seeding the
// destination near the expected ratio saves gozstd's own reallocation.
const (
	zstdDstRatioNum = 8
	zstdDstRatioDen = 10
)

// Compress compresses data via the cgo zstd bindings. Gated behind the
// nobuild tag: this build requires the C library, so it is opt-in rather
// than the default.
func (c ZstdCodec) Compress(data []byte) ([]byte, error) {
	dst := make([]byte, 0, len(data)*zstdDstRatioNum/zstdDstRatioDen)

	return gozstd.CompressLevel(dst, data, 3), nil
}

func (c ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, 0, len(data)*zstdDstRatioDen/zstdDstRatioNum)

	out, err := gozstd.Decompress(dst, data)
	if err != nil {
		return nil, fmt.Errorf("container decompression failed: %w", err)
	}

	return out, nil
}
