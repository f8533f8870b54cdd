package compress

import (
	"errors"
	"fmt"

	"github.com/arloliu/lmkit/format"
)

// MaxDecodedSize bounds the decoded size a codec accepts, protecting readers from corrupt size
// fields.
const MaxDecodedSize = 1 << 30

var (
	// ErrUnsupported is returned for an unknown compression type.
	ErrUnsupported = errors.New("unsupported compression type")
	// ErrSizeMismatch is returned when decoded data does not have the announced size.
	ErrSizeMismatch = errors.New("decoded size mismatch")
)

// Codec compresses and decompresses snapshot bodies.
//
// Decompress takes the decoded size recorded next to the compressed payload, so codecs can
// allocate exactly once and reject payloads that decode to a different length. Codecs are safe
// for concurrent use.
type Codec interface {
	Type() format.CompressionType
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte, size int) ([]byte, error)
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NoOpCodec{},
	format.CompressionZstd: ZstdCodec{},
	format.CompressionS2:   S2Codec{},
	format.CompressionLZ4:  LZ4Codec{},
}

// Get returns the built-in codec for t.
func Get(t format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[t]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s (0x%02x)", ErrUnsupported, t, uint8(t))
}

// Ratio returns compressed/original, or 0 for empty input.
func Ratio(original, compressed int) float64 {
	if original == 0 {
		return 0
	}

	return float64(compressed) / float64(original)
}

func checkSize(name string, size int) error {
	if size < 0 || size > MaxDecodedSize {
		return fmt.Errorf("%s: %w: announced size %d outside [0, %d]", name, ErrSizeMismatch, size, MaxDecodedSize)
	}

	return nil
}

func verifySize(name string, out []byte, size int) ([]byte, error) {
	if len(out) != size {
		return nil, fmt.Errorf("%s: %w: got %d bytes, want %d", name, ErrSizeMismatch, len(out), size)
	}

	return out, nil
}
