// Package pool provides pooled byte buffers for snapshot encoding.
package pool

import (
	"encoding/binary"
	"sync"
)

const (
	// DefaultBufferSize is the initial capacity of a pooled buffer.
	DefaultBufferSize = 64 * 1024
	// MaxPooledSize is the largest capacity returned to the pool; larger buffers are dropped.
	MaxPooledSize = 16 * 1024 * 1024
)

// ByteBuffer is an append-only byte slice with varint helpers.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a buffer with the given capacity.
func NewByteBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, capacity)}
}

// Bytes returns the underlying slice. It is only valid until the buffer is reset or pooled.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Len returns the number of bytes written.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Reset empties the buffer, keeping its capacity.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Grow ensures room for n more bytes. Small buffers grow by DefaultBufferSize, larger ones by
// a quarter of their capacity.
func (bb *ByteBuffer) Grow(n int) {
	if cap(bb.B)-len(bb.B) >= n {
		return
	}

	growBy := max(DefaultBufferSize, cap(bb.B)/4, n)
	buf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(buf, bb.B)
	bb.B = buf
}

// Write appends data. It never fails.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteByte appends a single byte. It never fails.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.B = append(bb.B, c)
	return nil
}

// AppendUvarint appends v as an unsigned varint.
func (bb *ByteBuffer) AppendUvarint(v uint64) {
	bb.B = binary.AppendUvarint(bb.B, v)
}

// AppendString appends s with a uvarint length prefix.
func (bb *ByteBuffer) AppendString(s string) {
	bb.Grow(binary.MaxVarintLen64 + len(s))
	bb.B = binary.AppendUvarint(bb.B, uint64(len(s)))
	bb.B = append(bb.B, s...)
}

var bufferPool = sync.Pool{
	New: func() any {
		return NewByteBuffer(DefaultBufferSize)
	},
}

// GetBuffer takes an empty buffer from the pool.
func GetBuffer() *ByteBuffer {
	bb, _ := bufferPool.Get().(*ByteBuffer)
	return bb
}

// PutBuffer returns bb to the pool. Buffers above MaxPooledSize are dropped.
func PutBuffer(bb *ByteBuffer) {
	if bb == nil || cap(bb.B) > MaxPooledSize {
		return
	}

	bb.Reset()
	bufferPool.Put(bb)
}
