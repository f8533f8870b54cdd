package hash

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Sum64 computes the xxHash64 of data.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Digest accumulates typed values into a single xxHash64.
// Strings are length-prefixed so that adjacent values cannot collide by concatenation.
type Digest struct {
	d   *xxhash.Digest
	buf [binary.MaxVarintLen64]byte
}

// NewDigest creates an empty digest.
func NewDigest() *Digest {
	return &Digest{d: xxhash.New()}
}

// AddString adds a length-prefixed string.
func (h *Digest) AddString(s string) {
	n := binary.PutUvarint(h.buf[:], uint64(len(s)))
	_, _ = h.d.Write(h.buf[:n])
	_, _ = h.d.WriteString(s)
}

// AddByte adds a single byte.
func (h *Digest) AddByte(b byte) {
	h.buf[0] = b
	_, _ = h.d.Write(h.buf[:1])
}

// AddUint64 adds a fixed-width unsigned integer.
func (h *Digest) AddUint64(v uint64) {
	binary.LittleEndian.PutUint64(h.buf[:8], v)
	_, _ = h.d.Write(h.buf[:8])
}

// AddFloat64 adds the IEEE-754 bits of v. All NaNs hash identically.
func (h *Digest) AddFloat64(v float64) {
	if math.IsNaN(v) {
		h.AddUint64(math.Float64bits(math.NaN()))
		return
	}
	h.AddUint64(math.Float64bits(v))
}

// Sum64 returns the current hash value.
func (h *Digest) Sum64() uint64 {
	return h.d.Sum64()
}
