// Package errs defines the sentinel errors returned at the codec's external
// boundary (see spec §6, "Error surface at the boundary").
//
// Callers should compare with errors.Is against these sentinels rather than
// matching on error strings; internal components wrap them with additional
// context via fmt.Errorf("...: %w", err).
package errs

import "errors"

var (
	// ErrInvalidInput is returned for malformed call arguments: wrong pair
	// shape, nil sequence where one is required, or invalid option combinations.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimestampOutOfRange is returned when a first-delta or delta-of-delta
	// value falls outside the representable 32-bit signed range.
	ErrTimestampOutOfRange = errors.New("timestamp out of range")

	// ErrInvalidMagic is returned when the outer header's magic number does
	// not match the codec's fixed magic value.
	ErrInvalidMagic = errors.New("invalid magic")

	// ErrUnsupportedVersion is returned for an outer header version this
	// codec does not know how to parse.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrInvalidHeaderLength is returned when the header_length field does
	// not match the expected size for the declared version.
	ErrInvalidHeaderLength = errors.New("invalid header length")

	// ErrTruncatedPayload is returned when the byte or bit stream ends
	// before the header's declared count is satisfied.
	ErrTruncatedPayload = errors.New("truncated payload")

	// ErrChecksumMismatch is returned by Decode in strict mode when the
	// Packed Block's CRC-32 does not match the value recorded in the outer
	// header. In non-strict mode (the default) this condition is instead
	// reported via Warnings.ChecksumFailed.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrCorruptStream names a decoded bit-field combination that is
	// structurally impossible (e.g. leading+meaningful length exceeding 64
	// bits). No function in this module returns it: Decode reports such a
	// stream as ErrTruncatedPayload, the same as a truncated one.
	ErrCorruptStream = errors.New("corrupt stream")

	// ErrContainerUnavailable is returned when the caller explicitly
	// requests a container compressor that is not available in this build.
	ErrContainerUnavailable = errors.New("container not available")
)
