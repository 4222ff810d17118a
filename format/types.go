// Package format defines the small value types shared by the framing and
// container layers: the outer header version and the container compression
// kind.
package format

// Version identifies the outer header layout (spec §4.5).
type Version uint16

const (
	// Version1 is the 80-byte header emitted when neither the preprocessor
	// nor a flag-setting container (zstd, lz4, s2) is in use.
	Version1 Version = 1
	// Version2 is the 84-byte header carrying scale_decimals.
	Version2 Version = 2
)

// HeaderSize returns the byte length of the outer header for v, or 0 for an
// unknown version.
func (v Version) HeaderSize() int {
	switch v {
	case Version1:
		return 80
	case Version2:
		return 84
	default:
		return 0
	}
}

// Container identifies the outer compression transform applied after framing
// (spec §4.6). ContainerAuto is an Options-only selector, never written to
// the wire. The header flags record zstd, lz4 and s2 (including when
// ContainerAuto resolved to zstd); zlib and none leave the flags clear.
type Container uint8

const (
	ContainerNone Container = iota
	ContainerZlib
	ContainerZstd
	ContainerLZ4
	ContainerS2
	ContainerAuto
)

func (c Container) String() string {
	switch c {
	case ContainerNone:
		return "none"
	case ContainerZlib:
		return "zlib"
	case ContainerZstd:
		return "zstd"
	case ContainerLZ4:
		return "lz4"
	case ContainerS2:
		return "s2"
	case ContainerAuto:
		return "auto"
	default:
		return "unknown"
	}
}
