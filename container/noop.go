package container

// NoopCodec bypasses compression entirely, returning input unchanged.
//
// Use when the payload is already well-compressed by the codec pipeline
// itself, or when CPU cost matters more than the extra bytes.
type NoopCodec struct{}

var _ Codec = NoopCodec{}

// NewNoopCodec returns a codec whose Compress/Decompress are identity
// functions.
func NewNoopCodec() NoopCodec {
	return NoopCodec{}
}

func (NoopCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (NoopCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
