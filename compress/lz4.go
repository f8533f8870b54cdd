package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/lmkit/format"
)

// lz4.Compressor keeps a hash table between calls; pooling avoids reallocating it.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec uses LZ4 block compression. Blocks carry no length, so Decompress relies on the
// size recorded by the caller.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

func (LZ4Codec) Type() format.CompressionType { return format.CompressionLZ4 }

func (LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}
	// incompressible input yields n == 0
	if n == 0 {
		return nil, fmt.Errorf("lz4: input of %d bytes is incompressible", len(data))
	}

	return dst[:n], nil
}

func (LZ4Codec) Decompress(data []byte, size int) ([]byte, error) {
	if err := checkSize("lz4", size); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return verifySize("lz4", nil, size)
	}

	buf := make([]byte, size)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}

	return verifySize("lz4", buf[:n], size)
}
