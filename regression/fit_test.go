package regression

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/lmkit/dataset"
	"github.com/arloliu/lmkit/design"
	"github.com/arloliu/lmkit/errs"
)

// linearDataset returns y = 1 + 2·x1 − x2 + 0.5·x3 + N(0, noise²) over n rows.
func linearDataset(tb testing.TB, n int, noise float64, seed uint64) *dataset.Dataset {
	tb.Helper()

	rng := rand.New(rand.NewPCG(seed, seed+1))
	x1 := make([]float64, n)
	x2 := make([]float64, n)
	x3 := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x1[i] = rng.Float64() * 10
		x2[i] = rng.NormFloat64() * 3
		x3[i] = float64(i % 7)
		y[i] = 1 + 2*x1[i] - x2[i] + 0.5*x3[i] + rng.NormFloat64()*noise
	}

	ds, err := dataset.New(
		dataset.NewNumeric("y", y),
		dataset.NewNumeric("x1", x1),
		dataset.NewNumeric("x2", x2),
		dataset.NewNumeric("x3", x3),
	)
	require.NoError(tb, err)

	return ds
}

func smallDataset(t *testing.T) *dataset.Dataset {
	t.Helper()

	ds, err := dataset.New(
		dataset.NewNumeric("y", []float64{2.1, 3.9, 6.2, 7.8, 10.1}),
		dataset.NewNumeric("x", []float64{1, 2, 3, 4, 5}),
	)
	require.NoError(t, err)

	return ds
}

func TestFitSimpleRegression(t *testing.T) {
	model, err := Fit(smallDataset(t), Spec{Response: "y", Predictors: []string{"x"}}, nil)
	require.NoError(t, err)

	require.True(t, model.IsFitted())
	require.False(t, (&Model{}).IsFitted())
	require.False(t, (*Model)(nil).IsFitted())

	s := model.Summary()
	require.Len(t, s.Coefficients, 2)

	intercept, ok := s.Coefficient(design.InterceptName)
	require.True(t, ok)
	slope, ok := s.Coefficient("x")
	require.True(t, ok)

	assert.InDelta(t, 0.05, intercept.Estimate, 1e-10)
	assert.InDelta(t, 1.99, slope.Estimate, 1e-10)
	assert.InDelta(t, math.Sqrt(0.107/3/10), slope.StdError, 1e-10)
	assert.InDelta(t, 1.99/math.Sqrt(0.107/3/10), slope.TValue, 1e-6)
	assert.Less(t, slope.PValue, 1e-4)
	assert.InDelta(t, 1-0.107/39.708, s.RSquared, 1e-10)
	assert.Equal(t, 3, s.DfResidual)
	assert.Equal(t, 1, s.DfModel)
	assert.Equal(t, 5, s.NumObs)
	assert.InDelta(t, math.Sqrt(0.107/3), model.Sigma(), 1e-10)
	assert.InDelta(t, math.Sqrt(0.107/5), s.RMSE, 1e-10)

	// with one predictor the F statistic is t²
	assert.InDelta(t, slope.TValue*slope.TValue, s.FStatistic, 1e-6)
	assert.InDelta(t, slope.PValue, s.FPValue, 1e-9)
}

func TestFitScenarioThreePredictors(t *testing.T) {
	ds := linearDataset(t, 100, 1.0, 7)
	split, err := ds.Split(0.7, 42)
	require.NoError(t, err)

	model, err := Fit(ds, Spec{Response: "y", Predictors: []string{"x1", "x2", "x3"}}, split.Train)
	require.NoError(t, err)

	s := model.Summary()
	require.Len(t, s.Coefficients, 4)
	require.Equal(t, 70, s.NumObs)
	require.Greater(t, s.RSquared, 0.5)
	require.LessOrEqual(t, s.AdjRSquared, s.RSquared)

	x1, _ := s.Coefficient("x1")
	require.InDelta(t, 2.0, x1.Estimate, 0.2)
	x2, _ := s.Coefficient("x2")
	require.InDelta(t, -1.0, x2.Estimate, 0.2)

	require.Equal(t, split.Train, model.Rows())
}

func TestFitNormalEquations(t *testing.T) {
	ds := linearDataset(t, 60, 2.0, 3)
	model, err := Fit(ds, Spec{Response: "y", Predictors: []string{"x1", "x2", "x3"}}, nil)
	require.NoError(t, err)

	x := model.Design()
	e := mat.NewVecDense(model.NumObs(), model.Residuals())

	var xte mat.VecDense
	xte.MulVec(x.T(), e)
	for j := 0; j < xte.Len(); j++ {
		require.InDelta(t, 0, xte.AtVec(j), 1e-8)
	}

	fitted := model.Fitted()
	resp := model.Response()
	res := model.Residuals()
	for i := range fitted {
		require.InDelta(t, resp[i], fitted[i]+res[i], 1e-12)
	}
}

func TestFitRSquaredBounds(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		ds := linearDataset(t, 30, 25, seed)
		model, err := Fit(ds, Spec{Response: "y", Predictors: []string{"x3"}}, nil)
		require.NoError(t, err)

		s := model.Summary()
		require.GreaterOrEqual(t, s.RSquared, 0.0)
		require.LessOrEqual(t, s.RSquared, 1.0)
		require.LessOrEqual(t, s.AdjRSquared, s.RSquared)
	}
}

func TestFitCategoricalPredictor(t *testing.T) {
	ds, err := dataset.New(
		dataset.NewNumeric("y", []float64{1, 1.2, 3, 3.2, 5, 5.2}),
		dataset.NewCategorical("g", []string{"a", "a", "b", "b", "c", "c"}),
	)
	require.NoError(t, err)

	model, err := Fit(ds, Spec{Response: "y", Predictors: []string{"g"}}, nil)
	require.NoError(t, err)

	require.Equal(t, []string{design.InterceptName, "gb", "gc"}, model.Encoder().ColumnNames())
	require.InDeltaSlice(t, []float64{1.1, 2, 4}, model.Coefficients(), 1e-10)
	require.Equal(t, 1, model.NumPredictors())
	require.Equal(t, 2, model.Summary().DfModel)
}

func TestFitErrors(t *testing.T) {
	ds, err := dataset.New(
		dataset.NewNumeric("y", []float64{1, 2, 3, 5, 4, 6}),
		dataset.NewNumeric("x1", []float64{1, 2, 3, 4, 5, 6}),
		dataset.NewNumeric("x2", []float64{2, 4, 6, 8, 10, 12}),
		dataset.NewNumeric("x3", []float64{1, 0, 1, math.NaN(), 1, 0}),
		dataset.NewNumeric("flat", []float64{7, 7, 7, 7, 7, 7}),
		dataset.NewCategorical("g", []string{"a", "b", "a", "b", "a", "b"}),
		dataset.NewText("note", []string{"a", "b", "c", "d", "e", "f"}),
	)
	require.NoError(t, err)

	tests := []struct {
		name string
		spec Spec
		rows []int
		opts []FitOption
		want error
	}{
		{"unknown response", Spec{Response: "nope", Predictors: []string{"x1"}}, nil, nil, errs.ErrInvalidSpec},
		{"categorical response", Spec{Response: "g", Predictors: []string{"x1"}}, nil, nil, errs.ErrInvalidSpec},
		{"no predictors", Spec{Response: "y"}, nil, nil, errs.ErrInvalidSpec},
		{"response as predictor", Spec{Response: "y", Predictors: []string{"y"}}, nil, nil, errs.ErrInvalidSpec},
		{"duplicate predictor", Spec{Response: "y", Predictors: []string{"x1", "x1"}}, nil, nil, errs.ErrInvalidSpec},
		{"unknown predictor", Spec{Response: "y", Predictors: []string{"nope"}}, nil, nil, errs.ErrInvalidSpec},
		{"text predictor", Spec{Response: "y", Predictors: []string{"note"}}, nil, nil, errs.ErrInvalidSpec},
		{"row out of range", Spec{Response: "y", Predictors: []string{"x1"}}, []int{0, 1, 9}, nil, errs.ErrInvalidSpec},
		{"missing predictor value", Spec{Response: "y", Predictors: []string{"x3"}}, nil, nil, errs.ErrMissingValue},
		{"no residual df", Spec{Response: "y", Predictors: []string{"x1", "g"}}, []int{0, 1, 2}, nil, errs.ErrInsufficientData},
		{"empty rows", Spec{Response: "y", Predictors: []string{"x1"}}, []int{}, nil, errs.ErrInsufficientData},
		{"collinear", Spec{Response: "y", Predictors: []string{"x1", "x2"}}, nil, nil, errs.ErrRankDeficiency},
		{"constant predictor", Spec{Response: "y", Predictors: []string{"flat"}}, nil, nil, errs.ErrRankDeficiency},
		{"constant response", Spec{Response: "flat", Predictors: []string{"x1"}}, nil, nil, errs.ErrDegenerateResponse},
		{"bad tolerance", Spec{Response: "y", Predictors: []string{"x1"}}, nil, []FitOption{WithRankTolerance(0)}, errs.ErrInvalidSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(ds, tt.spec, tt.rows, tt.opts...)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFitMissingResponse(t *testing.T) {
	ds, err := dataset.New(
		dataset.NewNumeric("y", []float64{1, math.Inf(1), 3, 4}),
		dataset.NewNumeric("x", []float64{1, 2, 3, 5}),
	)
	require.NoError(t, err)

	_, err = Fit(ds, Spec{Response: "y", Predictors: []string{"x"}}, nil)
	require.ErrorIs(t, err, errs.ErrMissingValue)

	// the missing row is outside the fitted rows
	_, err = Fit(ds, Spec{Response: "y", Predictors: []string{"x"}}, []int{0, 2, 3})
	require.NoError(t, err)
}

func TestFitDeterministic(t *testing.T) {
	ds := linearDataset(t, 50, 1, 11)
	spec := Spec{Response: "y", Predictors: []string{"x1", "x2"}}

	a, err := Fit(ds, spec, nil)
	require.NoError(t, err)
	b, err := Fit(ds, spec, nil)
	require.NoError(t, err)

	require.Equal(t, a.Summary(), b.Summary())
	require.Equal(t, ds.Fingerprint(), a.Fingerprint())
}

func TestModelAccessorsReturnCopies(t *testing.T) {
	model, err := Fit(smallDataset(t), Spec{Response: "y", Predictors: []string{"x"}}, nil)
	require.NoError(t, err)

	coefs := model.Coefficients()
	coefs[0] = 100
	require.NotEqual(t, 100.0, model.Coefficients()[0])

	inv := model.XtXInv()
	inv.SetSym(0, 0, 100)
	require.NotEqual(t, 100.0, model.XtXInv().At(0, 0))

	s := model.Summary()
	s.Coefficients[0].Estimate = 100
	require.NotEqual(t, 100.0, model.Summary().Coefficients[0].Estimate)

	spec := model.Spec()
	spec.Predictors[0] = "changed"
	require.Equal(t, "x", model.Spec().Predictors[0])
}

func TestFitRankToleranceOption(t *testing.T) {
	x1 := []float64{1, 2, 3, 4, 5, 6}
	x2 := make([]float64, len(x1))
	for i, v := range x1 {
		x2[i] = 2*v + 1e-3*float64(i%2)
	}
	ds, err := dataset.New(
		dataset.NewNumeric("y", []float64{1, 3, 2, 5, 4, 6}),
		dataset.NewNumeric("x1", x1),
		dataset.NewNumeric("x2", x2),
	)
	require.NoError(t, err)

	spec := Spec{Response: "y", Predictors: []string{"x1", "x2"}}

	_, err = Fit(ds, spec, nil, WithRankTolerance(1e-3))
	require.ErrorIs(t, err, errs.ErrRankDeficiency)

	_, err = Fit(ds, spec, nil, WithRankTolerance(1e-12))
	require.NoError(t, err)
}
