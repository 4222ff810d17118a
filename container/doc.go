// Package container provides the outer compression stage applied after
// framing.
//
// # Overview
//
// The core pipeline produces a self-describing Framed Block — outer header
// plus Packed Block — that is already a complete, decodable unit. The
// container stage wraps those bytes in a general-purpose compressor, purely
// as an opaque transform:
//
//	codec, _ := container.Get(format.ContainerZstd)
//	wrapped, _ := codec.Compress(framedBlock)
//	// ... store or transmit wrapped ...
//	framedBlock, _ := codec.Decompress(wrapped)
//
// # Supported containers
//
//   - None: bytes pass through unchanged.
//   - Zlib: RFC 1950 deflate via klauspost/compress/zlib, moderate ratio and
//     speed, no cgo dependency.
//   - Zstd: best ratio of the set, via klauspost/compress/zstd (pure Go) with
//     an optional cgo-backed implementation behind a nobuild tag.
//   - LZ4: fastest decompression, via pierrec/lz4/v4 block compression.
//   - S2: Snappy-compatible, throughput-favoring, via klauspost/compress/s2.
//
// The container wraps the whole Framed Block, including its header, so a
// decoder cannot read the container choice back out of the (still-wrapped)
// outer header flags — it needs an explicit choice, or Sniff to recognize
// the wrapped bytes by their own format signature. ContainerAuto resolves to
// zstd when available, else zlib.
package container
