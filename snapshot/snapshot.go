// Package snapshot stores datasets in a compact binary columnar format.
//
// A snapshot is a fixed 32-byte Header followed by the compressed body. The body holds the
// column count and row count as uvarints, then for each column its uvarint-length name, a
// one-byte format.ColumnType tag and its values: a uvarint-length Gorilla XOR stream for
// numeric columns, uvarint-length strings otherwise. The header carries the xxHash64 of the
// uncompressed body, which Decode verifies.
//
// Snapshots store datasets only; fitted models are never persisted.
package snapshot

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/lmkit/compress"
	"github.com/arloliu/lmkit/dataset"
	"github.com/arloliu/lmkit/errs"
	"github.com/arloliu/lmkit/format"
	"github.com/arloliu/lmkit/internal/encoding"
	"github.com/arloliu/lmkit/internal/hash"
	"github.com/arloliu/lmkit/internal/options"
	"github.com/arloliu/lmkit/internal/pool"
)

// Encode serializes ds into a snapshot.
func Encode(ds *dataset.Dataset, opts ...Option) ([]byte, error) {
	cfg, err := options.Build(defaultConfig(), opts...)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, fmt.Errorf("%w: nil dataset", errs.ErrInvalidInput)
	}

	codec, err := compress.Get(cfg.Compression)
	if err != nil {
		return nil, err
	}

	body := pool.GetBuffer()
	defer pool.PutBuffer(body)
	encodeBody(body, ds)

	payload, err := codec.Compress(body.Bytes())
	if err != nil {
		return nil, fmt.Errorf("snapshot: compress body: %w", err)
	}

	h := Header{
		Version:     Version,
		Compression: cfg.Compression,
		Checksum:    hash.Sum64(body.Bytes()),
		BodySize:    uint64(body.Len()),
		PayloadSize: uint64(len(payload)),
	}

	out := make([]byte, 0, HeaderSize+len(payload))
	out = append(out, h.Bytes()...)
	out = append(out, payload...)

	cfg.Logger.WithFields(logrus.Fields{
		"columns":     ds.NumColumns(),
		"rows":        ds.Rows(),
		"compression": cfg.Compression.String(),
		"body":        h.BodySize,
		"payload":     h.PayloadSize,
	}).Debug("encoded snapshot")

	return out, nil
}

// Decode parses a snapshot produced by Encode. Any structural problem, including a checksum
// mismatch or trailing bytes, fails with errs.ErrCorruptSnapshot.
func Decode(data []byte) (*dataset.Dataset, error) {
	h, err := Inspect(data)
	if err != nil {
		return nil, err
	}

	payload := data[HeaderSize:]
	if uint64(len(payload)) != h.PayloadSize {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", errs.ErrCorruptSnapshot, len(payload), h.PayloadSize)
	}

	return decodePayload(h, payload)
}

// Write encodes ds and writes the snapshot to w.
func Write(w io.Writer, ds *dataset.Dataset, opts ...Option) error {
	data, err := Encode(ds, opts...)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("snapshot: write: %w", err)
	}

	return nil
}

// Read reads one snapshot from r. It consumes exactly the snapshot's bytes.
func Read(r io.Reader) (*dataset.Dataset, error) {
	head := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, fmt.Errorf("%w: read header: %w", errs.ErrCorruptSnapshot, err)
	}

	var h Header
	if err := h.Parse(head); err != nil {
		return nil, err
	}

	payload := make([]byte, h.PayloadSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: read payload: %w", errs.ErrCorruptSnapshot, err)
	}

	return decodePayload(h, payload)
}

func decodePayload(h Header, payload []byte) (*dataset.Dataset, error) {
	codec, err := compress.Get(h.Compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCorruptSnapshot, err)
	}

	body, err := codec.Decompress(payload, int(h.BodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCorruptSnapshot, err)
	}
	if sum := hash.Sum64(body); sum != h.Checksum {
		return nil, fmt.Errorf("%w: checksum %016x, header says %016x", errs.ErrCorruptSnapshot, sum, h.Checksum)
	}

	return decodeBody(body)
}

func encodeBody(bb *pool.ByteBuffer, ds *dataset.Dataset) {
	bb.AppendUvarint(uint64(ds.NumColumns()))
	bb.AppendUvarint(uint64(ds.Rows()))

	for _, col := range ds.Columns() {
		bb.AppendString(col.Name())
		_ = bb.WriteByte(byte(col.Type()))

		if col.Type() == format.TypeNumeric {
			encoding.AppendGorilla(bb, col.Float64s())

			continue
		}

		for _, s := range col.Strings() {
			bb.AppendString(s)
		}
	}
}

func decodeBody(body []byte) (*dataset.Dataset, error) {
	br := &bodyReader{data: body}

	ncols := br.count()
	nrows := br.rows()

	cols := make([]dataset.Column, 0, ncols)
	for c := 0; c < ncols && br.err == nil; c++ {
		name := br.string()
		typ := format.ColumnType(br.byte())
		if br.err != nil {
			break
		}

		switch typ {
		case format.TypeNumeric:
			stream := br.bytes(br.count())
			if br.err != nil {
				break
			}
			values, err := encoding.DecodeGorilla(stream, nrows)
			if err != nil {
				br.fail("column %q: %v", name, err)
				break
			}
			cols = append(cols, dataset.NewNumeric(name, values))
		case format.TypeCategorical, format.TypeText:
			values := make([]string, 0, min(nrows, br.remaining()))
			for i := 0; i < nrows && br.err == nil; i++ {
				values = append(values, br.string())
			}
			if typ == format.TypeCategorical {
				cols = append(cols, dataset.NewCategorical(name, values))
			} else {
				cols = append(cols, dataset.NewText(name, values))
			}
		default:
			br.fail("column %q has unknown type 0x%02x", name, uint8(typ))
		}
	}

	if br.err != nil {
		return nil, br.err
	}
	if br.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing body bytes", errs.ErrCorruptSnapshot, br.remaining())
	}

	ds, err := dataset.New(cols...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCorruptSnapshot, err)
	}

	return ds, nil
}

// bodyReader walks a snapshot body. The first failure sticks and later reads return zero
// values.
type bodyReader struct {
	data []byte
	off  int
	err  error
}

func (r *bodyReader) remaining() int {
	return len(r.data) - r.off
}

func (r *bodyReader) fail(msg string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: "+msg, append([]any{errs.ErrCorruptSnapshot}, args...)...)
	}
}

func (r *bodyReader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}

	v, n := binary.Uvarint(r.data[r.off:])
	if n <= 0 {
		r.fail("bad uvarint at offset %d", r.off)
		return 0
	}
	r.off += n

	return v
}

// count reads a uvarint that sizes later reads. Every counted item takes at least one byte, so
// a count above the bytes left is corrupt.
func (r *bodyReader) count() int {
	v := r.uvarint()
	if v > uint64(r.remaining()) {
		r.fail("count %d exceeds remaining %d bytes", v, r.remaining())
		return 0
	}

	return int(v)
}

// rows reads the row count. A Gorilla value takes at least one bit.
func (r *bodyReader) rows() int {
	v := r.uvarint()
	if v > 8*uint64(r.remaining()) {
		r.fail("row count %d exceeds remaining %d bytes", v, r.remaining())
		return 0
	}

	return int(v)
}

func (r *bodyReader) byte() byte {
	if r.err != nil {
		return 0
	}
	if r.remaining() < 1 {
		r.fail("unexpected end of body at offset %d", r.off)
		return 0
	}
	b := r.data[r.off]
	r.off++

	return b
}

func (r *bodyReader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n

	return b
}

func (r *bodyReader) string() string {
	n := r.count()
	if r.err != nil {
		return ""
	}
	s := string(r.data[r.off : r.off+n])
	r.off += n

	return s
}
