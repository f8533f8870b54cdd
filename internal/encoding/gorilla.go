package encoding

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/arloliu/lmkit/internal/pool"
)

// ErrInvalidGorilla is returned when a Gorilla stream is truncated or malformed.
var ErrInvalidGorilla = errors.New("invalid gorilla stream")

// maxLeading is the largest leading-zero count the 5-bit field can hold.
const maxLeading = 31

// GorillaEncoder compresses float64 values into a pool.ByteBuffer.
//
// Stream layout, most significant bit first:
//
//	first value:   64 raw bits
//	unchanged:     '0'
//	same window:   '10' + meaningful bits of (v XOR prev) in the previous window
//	new window:    '11' + 5-bit leading zeros + 6-bit (width-1) + width meaningful bits
//
// The final byte is zero-padded by Flush.
type GorillaEncoder struct {
	acc   uint64
	nbits int

	prev     uint64
	leading  int
	trailing int
	width    int
	count    int

	scratch [8]byte
	buf     *pool.ByteBuffer
}

// NewGorillaEncoder creates an encoder appending to buf.
func NewGorillaEncoder(buf *pool.ByteBuffer) *GorillaEncoder {
	return &GorillaEncoder{buf: buf}
}

// Len returns the number of values written.
func (e *GorillaEncoder) Len() int {
	return e.count
}

// Write encodes one value.
func (e *GorillaEncoder) Write(v float64) {
	b := math.Float64bits(v)
	e.count++

	if e.count == 1 {
		e.prev = b
		e.writeBits(b, 64)

		return
	}

	xor := b ^ e.prev
	e.prev = b
	if xor == 0 {
		e.writeBits(0, 1)
		return
	}

	leading := min(bits.LeadingZeros64(xor), maxLeading)
	trailing := bits.TrailingZeros64(xor)

	if e.width > 0 && leading >= e.leading && trailing >= e.trailing {
		e.writeBits(0b10, 2)
		e.writeBits(xor>>e.trailing, e.width)

		return
	}

	width := 64 - leading - trailing
	e.writeBits(0b11, 2)
	e.writeBits(uint64(leading), 5) //nolint:gosec // 0..31
	e.writeBits(uint64(width-1), 6) //nolint:gosec // 0..63
	e.writeBits(xor>>trailing, width)

	e.leading, e.trailing, e.width = leading, trailing, width
}

// WriteSlice encodes values in order.
func (e *GorillaEncoder) WriteSlice(values []float64) {
	for _, v := range values {
		e.Write(v)
	}
}

// Flush writes the pending bits, padding the last byte with zeros. The encoder must not be
// written to afterwards.
func (e *GorillaEncoder) Flush() {
	if e.nbits == 0 {
		return
	}

	aligned := e.acc << (64 - e.nbits)
	binary.BigEndian.PutUint64(e.scratch[:], aligned)
	_, _ = e.buf.Write(e.scratch[:(e.nbits+7)/8])
	e.acc, e.nbits = 0, 0
}

func (e *GorillaEncoder) writeBits(v uint64, n int) {
	for n > 0 {
		k := min(n, 64-e.nbits)
		e.acc = e.acc<<k | (v>>(n-k))&mask(k)
		e.nbits += k
		n -= k

		if e.nbits == 64 {
			binary.BigEndian.PutUint64(e.scratch[:], e.acc)
			_, _ = e.buf.Write(e.scratch[:])
			e.acc, e.nbits = 0, 0
		}
	}
}

func mask(n int) uint64 {
	if n >= 64 {
		return math.MaxUint64
	}

	return 1<<n - 1
}

// AppendGorilla encodes values into buf as a uvarint byte length followed by the stream.
func AppendGorilla(buf *pool.ByteBuffer, values []float64) {
	tmp := pool.GetBuffer()
	defer pool.PutBuffer(tmp)

	enc := NewGorillaEncoder(tmp)
	enc.WriteSlice(values)
	enc.Flush()

	buf.AppendUvarint(uint64(tmp.Len()))
	_, _ = buf.Write(tmp.Bytes())
}

// DecodeGorilla decodes exactly n values from data. Every byte of data must be consumed,
// apart from the zero padding of the last one.
func DecodeGorilla(data []byte, n int) ([]float64, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrInvalidGorilla, n)
	}
	if n == 0 {
		if len(data) != 0 {
			return nil, fmt.Errorf("%w: %d bytes for zero values", ErrInvalidGorilla, len(data))
		}

		return []float64{}, nil
	}
	// first value is 64 bits, every later one at least 1
	if need := 64 + n - 1; need > 8*len(data) {
		return nil, fmt.Errorf("%w: %d values need at least %d bits, have %d", ErrInvalidGorilla, n, need, 8*len(data))
	}

	r := bitReader{data: data}
	out := make([]float64, n)

	prev := r.read(64)
	out[0] = math.Float64frombits(prev)

	var trailing, width int
	for i := 1; i < n && !r.short; i++ {
		if r.read(1) == 0 {
			out[i] = math.Float64frombits(prev)
			continue
		}

		if r.read(1) == 1 {
			leading := int(r.read(5))
			width = int(r.read(6)) + 1
			trailing = 64 - leading - width
			if trailing < 0 {
				return nil, fmt.Errorf("%w: window %d+%d exceeds 64 bits at value %d", ErrInvalidGorilla, leading, width, i)
			}
		} else if width == 0 {
			return nil, fmt.Errorf("%w: window reused before defined at value %d", ErrInvalidGorilla, i)
		}

		prev ^= r.read(width) << trailing
		out[i] = math.Float64frombits(prev)
	}

	if r.short {
		return nil, fmt.Errorf("%w: truncated after %d bits", ErrInvalidGorilla, r.pos)
	}
	if used := (r.pos + 7) / 8; used != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidGorilla, len(data)-used)
	}

	return out, nil
}

// bitReader reads big-endian bit fields. Reading past the end sets short and yields zeros.
type bitReader struct {
	data  []byte
	pos   int
	short bool
}

func (r *bitReader) read(n int) uint64 {
	if r.short || r.pos+n > 8*len(r.data) {
		r.short = true
		return 0
	}

	var v uint64
	for n > 0 {
		off := r.pos & 7
		avail := 8 - off
		k := min(avail, n)
		b := uint64(r.data[r.pos>>3]>>(avail-k)) & mask(k)
		v = v<<k | b
		r.pos += k
		n -= k
	}

	return v
}
