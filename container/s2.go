package container

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

// S2Codec wraps S2, the Snappy-compatible extension shipped inside
// klauspost/compress. It favors throughput over ratio, sitting between zlib
// and raw/no-op on the space-speed tradeoff.
type S2Codec struct{}

var _ Codec = S2Codec{}

// NewS2Codec returns an S2 container codec with default settings.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

// Compress encodes data into a destination sized exactly by
// s2.MaxEncodedLen, instead of letting s2.Encode allocate and grow its own
// scratch buffer. A single Framed Block is one bounded, already-known-size
// allocation rather than a stream of unknown length, so there is nothing to
// gain from s2's lazy-growth path here.
func (S2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, s2.MaxEncodedLen(len(data)))

	return s2.Encode(dst, data), nil
}

// Decompress exploits S2's self-describing block format: unlike raw LZ4
// blocks, an S2 block encodes its own decoded length up front, so the
// destination can be sized exactly via s2.DecodedLen instead of guessing
// and retrying the way LZ4Codec.Decompress must.
func (S2Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("container decompression failed: %w", err)
	}

	out, err := s2.Decode(make([]byte, n), data)
	if err != nil {
		return nil, fmt.Errorf("container decompression failed: %w", err)
	}

	return out, nil
}
