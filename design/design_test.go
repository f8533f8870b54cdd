package design

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/lmkit/dataset"
	"github.com/arloliu/lmkit/errs"
)

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()

	ds, err := dataset.New(
		dataset.NewNumeric("y", []float64{1, 2, 3, 4, 5}),
		dataset.NewNumeric("x", []float64{0.5, 1.5, 2.5, 3.5, 4.5}),
		dataset.NewCategorical("g", []string{"b", "a", "c", "a", "b"}),
		dataset.NewText("note", []string{"p", "q", "r", "s", "t"}),
	)
	require.NoError(t, err)

	return ds
}

func TestEncoderLayout(t *testing.T) {
	ds := testDataset(t)

	enc, err := NewEncoder(ds, []string{"x", "g"}, dataset.AllRows(5))
	require.NoError(t, err)
	require.Equal(t, []string{InterceptName, "x", "gb", "gc"}, enc.ColumnNames())
	require.Equal(t, 4, enc.Width())
	require.Equal(t, []string{"x", "g"}, enc.Predictors())

	terms := enc.Terms()
	require.Len(t, terms, 2)
	require.Equal(t, 1, terms[0].Start)
	require.Equal(t, 2, terms[1].Start)
	require.Equal(t, 2, terms[1].Width())
	require.Equal(t, "a", terms[1].Reference())

	x, err := enc.Matrix(ds, []int{0, 1, 2})
	require.NoError(t, err)
	want := mat.NewDense(3, 4, []float64{
		1, 0.5, 1, 0,
		1, 1.5, 0, 0,
		1, 2.5, 0, 1,
	})
	require.True(t, mat.Equal(want, x))
}

func TestEncoderLevelsFromFittedRows(t *testing.T) {
	ds := testDataset(t)

	enc, err := NewEncoder(ds, []string{"g"}, []int{0, 1, 3, 4})
	require.NoError(t, err)
	require.Equal(t, []string{InterceptName, "gb"}, enc.ColumnNames())

	_, err = enc.Matrix(ds, []int{2})
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)
}

func TestEncoderRejects(t *testing.T) {
	ds := testDataset(t)

	_, err := NewEncoder(ds, []string{"missing"}, dataset.AllRows(5))
	require.ErrorIs(t, err, errs.ErrInvalidSpec)

	_, err = NewEncoder(ds, []string{"note"}, dataset.AllRows(5))
	require.ErrorIs(t, err, errs.ErrInvalidSpec)

	_, err = NewEncoder(ds, []string{"g"}, []int{0, 4})
	require.ErrorIs(t, err, errs.ErrRankDeficiency)
}

func TestMatrixSchemaChecks(t *testing.T) {
	ds := testDataset(t)
	enc, err := NewEncoder(ds, []string{"x", "g"}, dataset.AllRows(5))
	require.NoError(t, err)

	renamed, err := dataset.New(
		dataset.NewNumeric("z", []float64{1}),
		dataset.NewCategorical("g", []string{"a"}),
	)
	require.NoError(t, err)
	_, err = enc.Matrix(renamed, []int{0})
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)

	retyped, err := dataset.New(
		dataset.NewCategorical("x", []string{"1"}),
		dataset.NewCategorical("g", []string{"a"}),
	)
	require.NoError(t, err)
	_, err = enc.Matrix(retyped, []int{0})
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)

	missing, err := dataset.New(
		dataset.NewNumeric("x", []float64{math.NaN()}),
		dataset.NewCategorical("g", []string{"a"}),
	)
	require.NoError(t, err)
	_, err = enc.Matrix(missing, []int{0})
	require.ErrorIs(t, err, errs.ErrMissingValue)
}
