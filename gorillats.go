// Package codec implements a lossless codec for floating-point time-series:
// delta-of-delta encoding of integer timestamps and XOR-based encoding of
// IEEE-754 double values (Facebook's Gorilla compression), framed by a
// versioned, integrity-checked container. An optional VictoriaMetrics-style
// preprocessing stage may run counter-delta and decimal scaling before value
// encoding, and an optional outer compression stage may wrap the finished
// payload.
//
// # Basic usage
//
//	points := []codec.DataPoint{
//	    {Timestamp: 1609459200, Value: 23.5},
//	    {Timestamp: 1609459260, Value: 23.7},
//	}
//	encoded, err := codec.Encode(points)
//	if err != nil {
//	    return err
//	}
//
//	decoded, warnings, err := codec.Decode(encoded)
//	if err != nil {
//	    return err
//	}
package codec

import (
	"fmt"
	"math"
	"time"

	"github.com/gorilla-ts/codec/container"
	"github.com/gorilla-ts/codec/errs"
	"github.com/gorilla-ts/codec/format"
	"github.com/gorilla-ts/codec/internal/frame"
	"github.com/gorilla-ts/codec/internal/pack"
	"github.com/gorilla-ts/codec/internal/pool"
	"github.com/gorilla-ts/codec/internal/preprocess"
	"github.com/gorilla-ts/codec/internal/tsdelta"
	"github.com/gorilla-ts/codec/internal/valuexor"
)

// DataPoint is a single (timestamp, value) pair. Timestamps carry semantic
// time but the codec does not interpret them; they need not be monotonic.
type DataPoint struct {
	Timestamp int64
	Value     float64
}

// Warnings carries best-effort-recovery signals from Decode that do not rise
// to the level of a hard error.
type Warnings struct {
	// ChecksumFailed reports that the Packed Block's CRC-32 did not match
	// the outer header's recorded value. The decoded sequence may still be
	// correct; DecodeStrict turns this into a hard error instead.
	ChecksumFailed bool
}

// Options configures Encode. The zero value is the identity configuration:
// no preprocessing, no container compression.
type Options struct {
	preprocessor  preprocess.Options
	container     format.Container
	creationTime  time.Time
	hasCreateTime bool
}

// Option configures an Options value. It returns an error so that options
// with a validated domain (WithPreprocessor's scaleDecimals) can reject an
// out-of-range value at the call site instead of baking it silently into
// the wire format.
type Option func(*Options) error

// WithPreprocessor enables the VictoriaMetrics-style preprocessing stage.
// scaleDecimals must be preprocess.AutoScaleDecimals or a value in [0, 9];
// anything else returns errs.ErrInvalidInput.
func WithPreprocessor(isCounter bool, scaleDecimals int) Option {
	return func(o *Options) error {
		if err := preprocess.ValidateScaleDecimals(scaleDecimals); err != nil {
			return err
		}

		o.preprocessor = preprocess.Options{
			Enabled:       true,
			IsCounter:     isCounter,
			ScaleDecimals: scaleDecimals,
		}

		return nil
	}
}

// WithContainer selects the outer compression stage. format.ContainerAuto
// resolves to zstd if available, else zlib.
func WithContainer(c format.Container) Option {
	return func(o *Options) error {
		o.container = c

		return nil
	}
}

// WithCreationTime overrides the outer header's creation_time field,
// letting tests and callers get byte-identical output across repeated
// encodes of the same input and options.
func WithCreationTime(t time.Time) Option {
	return func(o *Options) error {
		o.creationTime = t
		o.hasCreateTime = true

		return nil
	}
}

func newOptions(opts []Option) (Options, error) {
	o := Options{container: format.ContainerNone}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return Options{}, err
		}
	}

	return o, nil
}

// Encode compresses points into a self-describing byte buffer. Integers
// passed as timestamps are carried exactly; values are always IEEE-754
// binary64.
func Encode(points []DataPoint, opts ...Option) ([]byte, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	timestamps, release := pool.GetInt64Slice(len(points))
	defer release()
	values, releaseValues := pool.GetFloat64Slice(len(points))
	defer releaseValues()

	for i, p := range points {
		timestamps[i] = p.Timestamp
		values[i] = p.Value
	}

	transformed, scale, releaseTransform, err := preprocess.Transform(values, o.preprocessor)
	if err != nil {
		return nil, err
	}
	defer releaseTransform()

	tsEnc := tsdelta.NewEncoder()
	defer tsEnc.Finish()
	if err := tsEnc.WriteSlice(timestamps); err != nil {
		return nil, err
	}

	valEnc := valuexor.NewEncoder()
	defer valEnc.Finish()
	valEnc.WriteSlice(transformed)

	var firstTS int64
	var firstDelta int32
	var firstValueBits uint64

	if len(points) > 0 {
		firstTS = timestamps[0]
		firstValueBits = math.Float64bits(transformed[0])
	}
	if len(points) > 1 {
		firstDelta = int32(timestamps[1] - timestamps[0]) //nolint:gosec // range already validated by tsEnc.WriteSlice
	}

	packed := pack.Pack(len(points), firstTS, firstValueBits, firstDelta,
		tsEnc.Bytes(), tsEnc.BitLen(), valEnc.Bytes(), valEnc.BitLen())

	totalBits := pack.TotalBits(tsEnc.BitLen(), valEnc.BitLen())

	flags := uint32(0)
	if o.preprocessor.Enabled {
		flags |= frame.FlagVictoriaMetrics
	}
	if o.preprocessor.Enabled && o.preprocessor.IsCounter {
		flags |= frame.FlagIsCounter
	}

	resolvedContainer := container.Resolve(o.container)
	switch resolvedContainer {
	case format.ContainerZstd:
		flags |= frame.FlagZstd
	case format.ContainerLZ4:
		flags |= frame.FlagLZ4
	case format.ContainerS2:
		flags |= frame.FlagS2
	case format.ContainerZlib, format.ContainerNone:
		// Neither forces v2 nor sets a header flag; see frame.New's doc
		// comment on the header-version-selection invariant.
	}

	creationTime := o.creationTime
	if !o.hasCreateTime {
		creationTime = time.Now()
	}

	h := frame.New(len(points), len(packed), len(points)*16, frame.CRC32(packed),
		firstTS, firstDelta, firstValueBits, tsEnc.BitLen(), valEnc.BitLen(), totalBits,
		flags, scale, creationTime)

	framed := make([]byte, 0, h.Version.HeaderSize()+len(packed))
	framed = append(framed, h.Bytes()...)
	framed = append(framed, packed...)

	codec, err := container.Get(resolvedContainer)
	if err != nil {
		return nil, err
	}

	out, err := codec.Compress(framed)
	if err != nil {
		return nil, fmt.Errorf("container compression failed: %w", err)
	}

	return out, nil
}

// Decode decompresses data produced by Encode, returning the original
// ordered sequence. override, if given, names the container the data was
// wrapped with; omit it to auto-detect via container.Sniff (works for
// zstd and zlib; LZ4 and S2 have no self-describing signature and require
// an explicit override).
func Decode(data []byte, override ...format.Container) ([]DataPoint, Warnings, error) {
	kind := format.ContainerNone
	if len(override) > 0 {
		kind = override[0]
	} else if sniffed, ok := container.Sniff(data); ok {
		kind = sniffed
	}

	codec, err := container.Get(kind)
	if err != nil {
		return nil, Warnings{}, err
	}

	framed, err := codec.Decompress(data)
	if err != nil {
		return nil, Warnings{}, fmt.Errorf("container decompression failed: %w", err)
	}

	h, err := frame.ParseHeader(framed)
	if err != nil {
		return nil, Warnings{}, err
	}

	body := framed[h.Version.HeaderSize():]
	if int(h.CompressedSize) > len(body) {
		return nil, Warnings{}, errs.ErrTruncatedPayload
	}
	packedBlock := body[:h.CompressedSize]

	var warnings Warnings
	if frame.CRC32(packedBlock) != h.CRC32 {
		warnings.ChecksumFailed = true
	}

	unpacked, err := pack.Unpack(packedBlock)
	if err != nil {
		return nil, warnings, err
	}
	count := int(unpacked.Header.Count)

	timestamps, release := pool.GetInt64Slice(count)
	defer release()
	values, releaseValues := pool.GetFloat64Slice(count)
	defer releaseValues()

	tsDec := tsdelta.NewDecoder()
	i := 0
	if !tsDec.DecodeAll(unpacked.TSData, count, func(ts int64) bool {
		timestamps[i] = ts
		i++

		return true
	}) {
		return nil, warnings, errs.ErrTruncatedPayload
	}

	valDec := valuexor.NewDecoder()
	j := 0
	if !valDec.DecodeAll(unpacked.ValueData, count, func(v float64) bool {
		values[j] = v
		j++

		return true
	}) {
		return nil, warnings, errs.ErrTruncatedPayload
	}

	isCounter := h.Flags&frame.FlagIsCounter != 0
	scale := int(h.ScaleDecimals)
	restored, releaseRestored := preprocess.Reverse(values, isCounter, scale)
	defer releaseRestored()

	points := make([]DataPoint, count)
	for k := range points {
		points[k] = DataPoint{Timestamp: timestamps[k], Value: restored[k]}
	}

	return points, warnings, nil
}

// DecodeStrict behaves like Decode but returns errs.ErrChecksumMismatch
// instead of a warning flag when the Packed Block's CRC does not match.
func DecodeStrict(data []byte, override ...format.Container) ([]DataPoint, error) {
	points, warnings, err := Decode(data, override...)
	if err != nil {
		return nil, err
	}
	if warnings.ChecksumFailed {
		return nil, errs.ErrChecksumMismatch
	}

	return points, nil
}

// HeaderSummary is the result of HeaderInfo: the outer header's fields
// relevant to a caller inspecting a buffer without fully decoding it.
type HeaderSummary struct {
	Version          format.Version
	Count            uint32
	FirstTimestamp   int64
	CompressionRatio float64
	Flags            uint32
}

// HeaderInfo parses only the outer header of an already-container-decoded
// Framed Block (the container wraps the whole Framed Block, header included,
// so the header is readable only once the container has been removed).
func HeaderInfo(framedBlock []byte) (HeaderSummary, error) {
	h, err := frame.ParseHeader(framedBlock)
	if err != nil {
		return HeaderSummary{}, err
	}

	return HeaderSummary{
		Version:          h.Version,
		Count:            h.Count,
		FirstTimestamp:   h.FirstTimestamp,
		CompressionRatio: h.CompressionRatio,
		Flags:            h.Flags,
	}, nil
}

// Validate verifies magic, version, header length, and CRC of an
// already-container-decoded Framed Block.
func Validate(framedBlock []byte) error {
	return frame.Validate(framedBlock)
}
