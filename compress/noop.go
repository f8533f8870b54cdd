package compress

import (
	"github.com/arloliu/lmkit/format"
)

// NoOpCodec stores data uncompressed.
type NoOpCodec struct{}

var _ Codec = NoOpCodec{}

func (NoOpCodec) Type() format.CompressionType { return format.CompressionNone }

// Compress returns data unchanged. The result shares memory with data.
func (NoOpCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data unchanged after checking its length.
func (NoOpCodec) Decompress(data []byte, size int) ([]byte, error) {
	return verifySize("none", data, size)
}
