// Package compress provides the codecs used for dataset snapshot bodies.
//
// Four codecs are built in, selected by format.CompressionType:
//
//   - None: stores the body as is
//   - Zstd: best ratio, klauspost/compress/zstd with pooled encoders and decoders
//   - S2: fast, klauspost/compress/s2
//   - LZ4: fast decompression, pierrec/lz4 block format with pooled compressors
//
// Every codec is told the decoded size on Decompress. The snapshot header records it, so
// codecs allocate once and a body that decodes to a different length is rejected with
// ErrSizeMismatch.
//
// Example:
//
//	codec, err := compress.Get(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(body)
//	...
//	body, err = codec.Decompress(packed, len(body))
package compress
