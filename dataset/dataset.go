package dataset

import (
	"fmt"

	"github.com/arloliu/lmkit/errs"
	"github.com/arloliu/lmkit/internal/hash"
)

// Dataset is an immutable table of equally long named columns.
//
// Column order is preserved as given to New. The dataset fingerprint is computed once at
// construction and identifies the exact contents, so models and snapshots can record which
// data they were derived from.
type Dataset struct {
	cols        []Column
	index       map[string]int
	rows        int
	fingerprint uint64
}

// New creates a dataset from the given columns.
//
// It fails with errs.ErrInvalidInput when no columns are given, when the columns are empty or
// of different lengths, or when a column name is empty or repeated.
func New(cols ...Column) (*Dataset, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: dataset has no columns", errs.ErrInvalidInput)
	}

	rows := cols[0].Len()
	if rows == 0 {
		return nil, fmt.Errorf("%w: dataset has no rows", errs.ErrInvalidInput)
	}

	ds := &Dataset{
		cols:  make([]Column, len(cols)),
		index: make(map[string]int, len(cols)),
		rows:  rows,
	}

	for i, c := range cols {
		if c.name == "" {
			return nil, fmt.Errorf("%w: column %d has an empty name", errs.ErrInvalidInput, i)
		}
		if !c.typ.Valid() {
			return nil, fmt.Errorf("%w: column %q has invalid type %d", errs.ErrInvalidInput, c.name, c.typ)
		}
		if _, dup := ds.index[c.name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", errs.ErrInvalidInput, c.name)
		}
		if c.Len() != rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, expected %d", errs.ErrInvalidInput, c.name, c.Len(), rows)
		}

		ds.cols[i] = c
		ds.index[c.name] = i
	}

	ds.fingerprint = ds.computeFingerprint()

	return ds, nil
}

// Rows returns the number of rows.
func (d *Dataset) Rows() int {
	return d.rows
}

// NumColumns returns the number of columns.
func (d *Dataset) NumColumns() int {
	return len(d.cols)
}

// Columns returns the columns in order.
func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.cols))
	copy(out, d.cols)

	return out
}

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.name
	}

	return names
}

// Column looks up a column by name.
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}

	return d.cols[i], true
}

// Has reports whether the dataset contains a column with the given name.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Fingerprint returns the content hash of the dataset.
func (d *Dataset) Fingerprint() uint64 {
	return d.fingerprint
}

// Select returns a new dataset holding the given rows in the given order.
func (d *Dataset) Select(rows []int) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty row selection", errs.ErrInvalidInput)
	}
	for _, i := range rows {
		if i < 0 || i >= d.rows {
			return nil, fmt.Errorf("%w: row %d out of range [0, %d)", errs.ErrInvalidInput, i, d.rows)
		}
	}

	cols := make([]Column, len(d.cols))
	for i, c := range d.cols {
		cols[i] = c.subset(rows)
	}

	return New(cols...)
}

// Split partitions the dataset rows into training and test sets. See NewSplit.
func (d *Dataset) Split(fraction float64, seed uint64) (Split, error) {
	return NewSplit(d.rows, fraction, seed)
}

func (d *Dataset) computeFingerprint() uint64 {
	h := hash.NewDigest()
	h.AddUint64(uint64(d.rows))
	h.AddUint64(uint64(len(d.cols)))

	for _, c := range d.cols {
		h.AddString(c.name)
		h.AddByte(byte(c.typ))
		if c.typ == TypeNumeric {
			for _, v := range c.nums {
				h.AddFloat64(v)
			}

			continue
		}
		for _, s := range c.strs {
			h.AddString(s)
		}
	}

	return h.Sum64()
}
