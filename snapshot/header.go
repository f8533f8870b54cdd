package snapshot

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/lmkit/compress"
	"github.com/arloliu/lmkit/errs"
	"github.com/arloliu/lmkit/format"
)

const (
	// Magic opens every snapshot.
	Magic = "LMKS"
	// Version is the snapshot layout version written by this package.
	Version uint8 = 1
	// HeaderSize is the fixed header length in bytes.
	HeaderSize = 32
)

// Header is the fixed-size snapshot header. All integers are little-endian.
//
//	0-3    magic "LMKS"
//	4      version
//	5      compression type
//	6-7    reserved, zero
//	8-15   xxHash64 of the uncompressed body
//	16-23  uncompressed body length
//	24-31  compressed payload length
type Header struct {
	Version     uint8                  `json:"version" yaml:"version"`
	Compression format.CompressionType `json:"compression" yaml:"compression"`
	Checksum    uint64                 `json:"checksum" yaml:"checksum"`
	BodySize    uint64                 `json:"body_size" yaml:"body_size"`
	PayloadSize uint64                 `json:"payload_size" yaml:"payload_size"`
}

// Bytes serializes the header.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	copy(b[0:4], Magic)
	b[4] = h.Version
	b[5] = uint8(h.Compression)
	binary.LittleEndian.PutUint64(b[8:16], h.Checksum)
	binary.LittleEndian.PutUint64(b[16:24], h.BodySize)
	binary.LittleEndian.PutUint64(b[24:32], h.PayloadSize)

	return b
}

// Parse reads the header from the first HeaderSize bytes of data.
func (h *Header) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: header needs %d bytes, got %d", errs.ErrCorruptSnapshot, HeaderSize, len(data))
	}
	if string(data[0:4]) != Magic {
		return fmt.Errorf("%w: bad magic %q", errs.ErrCorruptSnapshot, data[0:4])
	}

	h.Version = data[4]
	h.Compression = format.CompressionType(data[5])
	h.Checksum = binary.LittleEndian.Uint64(data[8:16])
	h.BodySize = binary.LittleEndian.Uint64(data[16:24])
	h.PayloadSize = binary.LittleEndian.Uint64(data[24:32])

	return h.validate()
}

// Ratio returns the payload size relative to the body size.
func (h Header) Ratio() float64 {
	return compress.Ratio(int(h.BodySize), int(h.PayloadSize))
}

func (h Header) validate() error {
	if h.Version != Version {
		return fmt.Errorf("%w: unsupported version %d", errs.ErrCorruptSnapshot, h.Version)
	}
	if _, err := compress.Get(h.Compression); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrCorruptSnapshot, err)
	}
	if h.BodySize > compress.MaxDecodedSize || h.PayloadSize > compress.MaxDecodedSize {
		return fmt.Errorf("%w: body %d or payload %d bytes exceeds limit", errs.ErrCorruptSnapshot, h.BodySize, h.PayloadSize)
	}

	return nil
}

// IsSnapshot reports whether data starts with the snapshot magic.
func IsSnapshot(data []byte) bool {
	return len(data) >= len(Magic) && string(data[:len(Magic)]) == Magic
}

// Inspect parses and validates the header of an encoded snapshot without decoding the body.
func Inspect(data []byte) (Header, error) {
	var h Header
	if err := h.Parse(data); err != nil {
		return Header{}, err
	}

	return h, nil
}
