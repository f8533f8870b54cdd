// Package design turns dataset columns into design matrices.
//
// An Encoder is built once from the training rows and then reused to encode any other rows
// (held-out data, new observations) into exactly the same column layout. Numeric predictors
// map to one column. Categorical predictors with k levels map to k−1 indicator columns
// against the lexically first level.
package design

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/lmkit/dataset"
	"github.com/arloliu/lmkit/errs"
	"github.com/arloliu/lmkit/format"
)

// InterceptName is the design column name of the intercept.
const InterceptName = "(Intercept)"

// Term is one predictor and the design columns it occupies.
type Term struct {
	Name string
	Type format.ColumnType
	// Levels holds every level seen at fit time, reference level first. Nil for numeric terms.
	Levels []string
	// Columns holds the design column names of this term.
	Columns []string
	// Start is the index of the term's first design column.
	Start int
}

// Width returns the number of design columns of the term.
func (t Term) Width() int {
	return len(t.Columns)
}

// Reference returns the reference level of a categorical term.
func (t Term) Reference() string {
	if len(t.Levels) == 0 {
		return ""
	}

	return t.Levels[0]
}

// Encoder maps predictor columns to design matrix columns.
type Encoder struct {
	terms   []Term
	names   []string
	indexOf []map[string]int
}

// NewEncoder builds an encoder for predictors from the given rows of ds.
//
// Categorical levels are taken from those rows only. It fails with errs.ErrInvalidSpec when a
// predictor is absent or text-typed, with errs.ErrMissingValue when a categorical predictor has
// an empty value in the rows, and with errs.ErrRankDeficiency when a categorical predictor has a
// single level in the rows.
func NewEncoder(ds *dataset.Dataset, predictors []string, rows []int) (*Encoder, error) {
	enc := &Encoder{
		terms:   make([]Term, 0, len(predictors)),
		names:   []string{InterceptName},
		indexOf: make([]map[string]int, 0, len(predictors)),
	}

	for _, name := range predictors {
		col, ok := ds.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: predictor %q not found", errs.ErrInvalidSpec, name)
		}

		term := Term{Name: name, Type: col.Type(), Start: len(enc.names)}
		var index map[string]int

		switch col.Type() {
		case format.TypeNumeric:
			term.Columns = []string{name}
		case format.TypeCategorical:
			for _, i := range rows {
				if col.IsMissing(i) {
					return nil, fmt.Errorf("%w: predictor %q row %d", errs.ErrMissingValue, name, i)
				}
			}

			term.Levels = col.Levels(rows)
			if len(term.Levels) < 2 {
				return nil, fmt.Errorf("%w: categorical predictor %q has %d level(s) in the fitted rows",
					errs.ErrRankDeficiency, name, len(term.Levels))
			}

			index = make(map[string]int, len(term.Levels))
			for k, lv := range term.Levels {
				index[lv] = k
				if k > 0 {
					term.Columns = append(term.Columns, name+lv)
				}
			}
		default:
			return nil, fmt.Errorf("%w: predictor %q has unsupported type %s", errs.ErrInvalidSpec, name, col.Type())
		}

		enc.names = append(enc.names, term.Columns...)
		enc.terms = append(enc.terms, term)
		enc.indexOf = append(enc.indexOf, index)
	}

	return enc, nil
}

// Terms returns the predictor terms in order.
func (e *Encoder) Terms() []Term {
	out := make([]Term, len(e.terms))
	for i, t := range e.terms {
		t.Levels = slices.Clone(t.Levels)
		t.Columns = slices.Clone(t.Columns)
		out[i] = t
	}

	return out
}

// ColumnNames returns the design column names, intercept first.
func (e *Encoder) ColumnNames() []string {
	return slices.Clone(e.names)
}

// Width returns the number of design columns including the intercept.
func (e *Encoder) Width() int {
	return len(e.names)
}

// Predictors returns the predictor names in order.
func (e *Encoder) Predictors() []string {
	names := make([]string, len(e.terms))
	for i, t := range e.terms {
		names[i] = t.Name
	}

	return names
}

// Matrix encodes the given rows of ds.
//
// It fails with errs.ErrSchemaMismatch when a predictor column is absent, has a different type
// than at fit time, or holds a level unseen at fit time, and with errs.ErrMissingValue when a
// predictor value is missing or non-finite.
func (e *Encoder) Matrix(ds *dataset.Dataset, rows []int) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows to encode", errs.ErrInsufficientData)
	}

	x := mat.NewDense(len(rows), len(e.names), nil)
	for r := range rows {
		x.Set(r, 0, 1)
	}

	for ti, term := range e.terms {
		col, ok := ds.Column(term.Name)
		if !ok {
			return nil, fmt.Errorf("%w: predictor %q not found", errs.ErrSchemaMismatch, term.Name)
		}
		if col.Type() != term.Type {
			return nil, fmt.Errorf("%w: predictor %q is %s, fitted as %s",
				errs.ErrSchemaMismatch, term.Name, col.Type(), term.Type)
		}

		for r, i := range rows {
			if col.IsMissing(i) {
				return nil, fmt.Errorf("%w: predictor %q row %d", errs.ErrMissingValue, term.Name, i)
			}

			if term.Type == format.TypeNumeric {
				x.Set(r, term.Start, col.Float64(i))
				continue
			}

			level := col.String(i)
			k, known := e.indexOf[ti][level]
			if !known {
				return nil, fmt.Errorf("%w: predictor %q has unseen level %q", errs.ErrSchemaMismatch, term.Name, level)
			}
			if k > 0 {
				x.Set(r, term.Start+k-1, 1)
			}
		}
	}

	return x, nil
}
