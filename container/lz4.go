package container

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances; each holds a hash table
// that benefits from reuse across calls.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec wraps LZ4 block compression, the fastest decompression of the
// available containers at the cost of a looser ratio than zstd or zlib.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

// NewLZ4Codec returns an LZ4 container codec.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

func (LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("container compression failed: %w", err)
	}

	return dst[:n], nil
}

// Decompress decompresses LZ4 block data. The block format carries no
// original-size field, so it grows a scratch buffer geometrically and
// retries on ErrInvalidSourceShortBuffer. The starting guess and safety cap
// are sized for a single Framed Block rather than the teacher's
// multi-metric blob sets: this container call decodes one ordered sequence
// per invocation (no chunking, no streaming — see the codec's concurrency
// model), so a 2x start covers the typical bit-packed residue without
// over-allocating, and a 32MB cap is already generous for one sequence
// while catching a corrupt or adversarial block far sooner than 128MB would.
func (LZ4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	bufSize := len(data) * 2
	const maxSize = 32 * 1024 * 1024

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)

		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2
				continue
			}

			return nil, fmt.Errorf("container decompression failed: %w", err)
		}

		return buf[:n], nil
	}

	return nil, fmt.Errorf("container decompression failed: %w", lz4.ErrInvalidSourceShortBuffer)
}
