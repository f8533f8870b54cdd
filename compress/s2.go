package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/lmkit/format"
)

// S2Codec uses S2 block compression. It favours speed over ratio.
type S2Codec struct{}

var _ Codec = S2Codec{}

func (S2Codec) Type() format.CompressionType { return format.CompressionS2 }

func (S2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

func (S2Codec) Decompress(data []byte, size int) ([]byte, error) {
	if err := checkSize("s2", size); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return verifySize("s2", nil, size)
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("s2: %w", err)
	}
	if n != size {
		return nil, fmt.Errorf("s2: %w: header says %d bytes, want %d", ErrSizeMismatch, n, size)
	}

	out, err := s2.Decode(make([]byte, size), data)
	if err != nil {
		return nil, fmt.Errorf("s2: %w", err)
	}

	return verifySize("s2", out, size)
}
