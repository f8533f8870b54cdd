package dataset

import (
	"math"
	"slices"
	"strconv"

	"github.com/arloliu/lmkit/format"
)

// Column is a named, typed sequence of values.
//
// Numeric columns store float64 values and mark missing entries with NaN. Categorical and
// text columns store strings and mark missing entries with the empty string. A Column never
// exposes its backing storage, so a Column value is safe to share once constructed.
type Column struct {
	name string
	typ  format.ColumnType
	nums []float64
	strs []string
}

// NewNumeric creates a numeric column. The values are copied.
func NewNumeric(name string, values []float64) Column {
	return Column{name: name, typ: format.TypeNumeric, nums: slices.Clone(values)}
}

// NewCategorical creates a categorical column. The values are copied.
func NewCategorical(name string, values []string) Column {
	return Column{name: name, typ: format.TypeCategorical, strs: slices.Clone(values)}
}

// NewText creates a free-text column. The values are copied.
func NewText(name string, values []string) Column {
	return Column{name: name, typ: format.TypeText, strs: slices.Clone(values)}
}

// Name returns the column name.
func (c Column) Name() string {
	return c.name
}

// Type returns the column type tag.
func (c Column) Type() format.ColumnType {
	return c.typ
}

// Len returns the number of values.
func (c Column) Len() int {
	if c.typ == format.TypeNumeric {
		return len(c.nums)
	}

	return len(c.strs)
}

// Float64 returns the numeric value at row i, or NaN for non-numeric columns.
func (c Column) Float64(i int) float64 {
	if c.typ != format.TypeNumeric {
		return math.NaN()
	}

	return c.nums[i]
}

// String returns the value at row i as a string. Numeric values are formatted with the
// shortest representation that round-trips; missing numeric values yield "".
func (c Column) String(i int) string {
	if c.typ == format.TypeNumeric {
		v := c.nums[i]
		if math.IsNaN(v) {
			return ""
		}

		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	return c.strs[i]
}

// IsMissing reports whether the value at row i is missing. Infinite numeric values
// count as missing because no model can use them.
func (c Column) IsMissing(i int) bool {
	if c.typ == format.TypeNumeric {
		v := c.nums[i]
		return math.IsNaN(v) || math.IsInf(v, 0)
	}

	return c.strs[i] == ""
}

// Float64s returns a copy of the numeric values, or nil for non-numeric columns.
func (c Column) Float64s() []float64 {
	if c.typ != format.TypeNumeric {
		return nil
	}

	return slices.Clone(c.nums)
}

// Strings returns a copy of the values as strings.
func (c Column) Strings() []string {
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.String(i)
	}

	return out
}

// Levels returns the sorted distinct non-missing values of the given rows, formatted as
// strings. A nil rows slice means every row.
func (c Column) Levels(rows []int) []string {
	seen := make(map[string]struct{})
	visit := func(i int) {
		if c.IsMissing(i) {
			return
		}
		seen[c.String(i)] = struct{}{}
	}

	if rows == nil {
		for i := 0; i < c.Len(); i++ {
			visit(i)
		}
	} else {
		for _, i := range rows {
			visit(i)
		}
	}

	levels := make([]string, 0, len(seen))
	for lv := range seen {
		levels = append(levels, lv)
	}
	slices.Sort(levels)

	return levels
}

// subset returns a new column holding the given rows in order.
func (c Column) subset(rows []int) Column {
	out := Column{name: c.name, typ: c.typ}
	if c.typ == format.TypeNumeric {
		out.nums = make([]float64, len(rows))
		for k, i := range rows {
			out.nums[k] = c.nums[i]
		}

		return out
	}

	out.strs = make([]string, len(rows))
	for k, i := range rows {
		out.strs[k] = c.strs[i]
	}

	return out
}
