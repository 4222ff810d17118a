//go:build !nobuild

package container

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPool pools decoders for reuse. klauspost/compress/zstd is
// explicitly designed for this: the decoder reaches steady-state performance
// only after a warmup, so it should be kept around rather than recreated.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return encoder
	},
}

// zstdDstRatioNum/zstdDstRatioDen estimate the zstd ratio on a Framed Block.
// Unlike the teacher's multi-metric blobs (repeated tag strings, sparse
// numeric columns), the payload here is already delta-of-delta and XOR
// residue from the bit packer — high-entropy by construction, so zstd
// rarely buys back more than 15-25% on it. Seeding the destination near
// that ratio avoids EncodeAll/DecodeAll's internal buffer growth without
// over-allocating for data that won't compress much further.
const (
	zstdDstRatioNum = 8
	zstdDstRatioDen = 10
)

func (c ZstdCodec) Compress(data []byte) ([]byte, error) {
	encoder, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	dst := make([]byte, 0, len(data)*zstdDstRatioNum/zstdDstRatioDen)

	return encoder.EncodeAll(data, dst), nil
}

func (c ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	// Inverse of Compress's ratio estimate: the decoded form is never
	// smaller than its compressed input, so seed at roughly 1/0.8 of it.
	dst := make([]byte, 0, len(data)*zstdDstRatioDen/zstdDstRatioNum)

	decompressed, err := decoder.DecodeAll(data, dst)
	if err != nil {
		return nil, fmt.Errorf("container decompression failed: %w", err)
	}

	return decompressed, nil
}
