// Package correlation computes Pearson correlation matrices over the numeric columns of a
// dataset.
package correlation

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/lmkit/dataset"
	"github.com/arloliu/lmkit/errs"
	"github.com/arloliu/lmkit/format"
)

// Decimals is the number of decimal places correlations are rounded to.
const Decimals = 2

// Matrix is a symmetric correlation matrix with a unit diagonal.
//
// An entry is NaN when the pair has fewer than two complete observations or either column is
// constant over them.
type Matrix struct {
	names []string
	r     *mat.SymDense
	n     [][]int
}

// Pair is one off-diagonal entry.
type Pair struct {
	A string  `json:"a" yaml:"a"`
	B string  `json:"b" yaml:"b"`
	R float64 `json:"r" yaml:"r"`
	// N is the number of complete observations the coefficient was computed from.
	N int `json:"n" yaml:"n"`
}

// Table is the exported form of a Matrix, used for serialization.
type Table struct {
	Names []string    `json:"names" yaml:"names"`
	R     [][]float64 `json:"r" yaml:"r"`
	N     [][]int     `json:"n" yaml:"n"`
	Pairs []Pair      `json:"pairs" yaml:"pairs"`
}

// Table returns the matrix, the complete-observation counts and the ordered pairs.
func (m *Matrix) Table() Table {
	n := make([][]int, len(m.n))
	for i := range m.n {
		n[i] = slices.Clone(m.n[i])
	}

	return Table{Names: m.Names(), R: m.Rows(), N: n, Pairs: m.Pairs()}
}

// Names returns the column names in matrix order.
func (m *Matrix) Names() []string {
	return slices.Clone(m.names)
}

// Size returns the number of columns.
func (m *Matrix) Size() int {
	return len(m.names)
}

// At returns the coefficient of columns i and j.
func (m *Matrix) At(i, j int) float64 {
	return m.r.At(i, j)
}

// Get returns the coefficient of the named columns.
func (m *Matrix) Get(a, b string) (float64, bool) {
	i, j := slices.Index(m.names, a), slices.Index(m.names, b)
	if i < 0 || j < 0 {
		return math.NaN(), false
	}

	return m.r.At(i, j), true
}

// Rows returns the matrix as a slice of rows.
func (m *Matrix) Rows() [][]float64 {
	out := make([][]float64, len(m.names))
	for i := range out {
		out[i] = make([]float64, len(m.names))
		for j := range out[i] {
			out[i][j] = m.r.At(i, j)
		}
	}

	return out
}

// Pairs lists the off-diagonal pairs ordered by decreasing |r|, then by name. NaN entries sort
// last.
func (m *Matrix) Pairs() []Pair {
	k := len(m.names)
	pairs := make([]Pair, 0, k*(k-1)/2)
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			pairs = append(pairs, Pair{A: m.names[i], B: m.names[j], R: m.r.At(i, j), N: m.n[i][j]})
		}
	}

	slices.SortStableFunc(pairs, func(x, y Pair) int {
		xn, yn := math.IsNaN(x.R), math.IsNaN(y.R)
		switch {
		case xn && !yn:
			return 1
		case !xn && yn:
			return -1
		case !xn && !yn:
			if c := cmp.Compare(math.Abs(y.R), math.Abs(x.R)); c != 0 {
				return c
			}
		}

		return cmp.Or(cmp.Compare(x.A, y.A), cmp.Compare(x.B, y.B))
	})

	return pairs
}

// String renders the matrix as an aligned table.
func (m *Matrix) String() string {
	var sb strings.Builder

	width := 6
	for _, name := range m.names {
		width = max(width, len(name))
	}

	fmt.Fprintf(&sb, "%*s", width, "")
	for _, name := range m.names {
		fmt.Fprintf(&sb, " %*s", width, name)
	}
	for i, name := range m.names {
		fmt.Fprintf(&sb, "\n%*s", width, name)
		for j := range m.names {
			fmt.Fprintf(&sb, " %*.2f", width, m.r.At(i, j))
		}
	}

	return sb.String()
}

// Correlate computes the Pearson correlation of every pair of numeric columns of ds, in column
// order, using the rows where both values are present.
//
// It fails with errs.ErrInsufficientColumns when ds has fewer than two numeric columns.
func Correlate(ds *dataset.Dataset) (*Matrix, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: nil dataset", errs.ErrInsufficientColumns)
	}

	var cols []dataset.Column
	for _, c := range ds.Columns() {
		if c.Type() == format.TypeNumeric {
			cols = append(cols, c)
		}
	}
	k := len(cols)
	if k < 2 {
		return nil, fmt.Errorf("%w: need two numeric columns, got %d", errs.ErrInsufficientColumns, k)
	}

	m := &Matrix{
		names: make([]string, k),
		r:     mat.NewSymDense(k, nil),
		n:     make([][]int, k),
	}
	values := make([][]float64, k)
	for i, c := range cols {
		m.names[i] = c.Name()
		m.n[i] = make([]int, k)
		values[i] = c.Float64s()
	}

	for i := 0; i < k; i++ {
		m.r.SetSym(i, i, 1)
		for j := i + 1; j < k; j++ {
			r, n := pairwise(values[i], values[j])
			m.r.SetSym(i, j, round(r))
			m.n[i][j], m.n[j][i] = n, n
		}
		m.n[i][i] = complete(values[i])
	}

	return m, nil
}

// pairwise returns the correlation over the rows where both x and y are finite, and the number
// of such rows.
func pairwise(x, y []float64) (float64, int) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if finite(x[i]) && finite(y[i]) {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
		}
	}

	n := len(xs)
	if n < 2 || constant(xs) || constant(ys) {
		return math.NaN(), n
	}

	return stat.Correlation(xs, ys, nil), n
}

func complete(x []float64) int {
	n := 0
	for _, v := range x {
		if finite(v) {
			n++
		}
	}

	return n
}

func constant(x []float64) bool {
	return !slices.ContainsFunc(x, func(v float64) bool { return v != x[0] })
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round(r float64) float64 {
	if math.IsNaN(r) {
		return r
	}

	p := math.Pow(10, Decimals)
	r = math.Round(r*p) / p

	return math.Max(-1, math.Min(1, r))
}
