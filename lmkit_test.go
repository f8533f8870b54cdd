package lmkit

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/lmkit/dataset"
	"github.com/arloliu/lmkit/diagnostics"
	"github.com/arloliu/lmkit/errs"
)

func housing(t *testing.T, n int) *dataset.Dataset {
	t.Helper()

	rng := rand.New(rand.NewPCG(7, 11))
	y := make([]float64, n)
	a := make([]float64, n)
	b := make([]float64, n)
	c := make([]float64, n)
	site := make([]string, n)
	for i := 0; i < n; i++ {
		a[i] = rng.Float64() * 10
		b[i] = rng.NormFloat64() * 2
		c[i] = rng.Float64()*5 - 2
		site[i] = []string{"north", "south", "east"}[i%3]
		y[i] = 3 + 1.5*a[i] - 2*b[i] + 0.8*c[i] + rng.NormFloat64()
	}

	ds, err := dataset.New(
		dataset.NewNumeric("y", y),
		dataset.NewNumeric("a", a),
		dataset.NewNumeric("b", b),
		dataset.NewNumeric("c", c),
		dataset.NewCategorical("site", site),
	)
	require.NoError(t, err)

	return ds
}

func TestFitRegressionEndToEnd(t *testing.T) {
	ds := housing(t, 100)

	ra, err := FitRegression(ds, "y", []string{"a", "b", "c"}, 0.7, 42)
	require.NoError(t, err)

	assert.Len(t, ra.Split.Train, 70)
	assert.Len(t, ra.Split.Test, 30)
	assert.Len(t, ra.Summary.Coefficients, 4)
	assert.Greater(t, ra.Summary.RSquared, 0.5)
	assert.Equal(t, 70, ra.Model.NumObs())

	for _, r := range []diagnostics.Result{
		ra.Diagnostics.Autocorrelation, ra.Diagnostics.Heteroscedasticity, ra.Diagnostics.Normality,
	} {
		require.True(t, r.Applicable, r.Test)
		assert.GreaterOrEqual(t, r.PValue, 0.0, r.Test)
		assert.LessOrEqual(t, r.PValue, 1.0, r.Test)
	}
	require.True(t, ra.Diagnostics.Multicollinearity.Applicable)
	assert.Len(t, ra.Diagnostics.Multicollinearity.VIF, 3)

	require.NotNil(t, ra.Evaluation)
	require.NotNil(t, ra.Evaluation.Accuracy)
	assert.Equal(t, 30, ra.Evaluation.Accuracy.N)
	assert.Less(t, ra.Evaluation.Accuracy.RMSE, 2.0)
}

func TestFitRegressionDeterministic(t *testing.T) {
	ds := housing(t, 60)

	first, err := FitRegression(ds, "y", []string{"a", "site"}, 0.8, 9)
	require.NoError(t, err)
	second, err := FitRegression(ds, "y", []string{"a", "site"}, 0.8, 9)
	require.NoError(t, err)

	require.Equal(t, first.Split, second.Split)
	require.Equal(t, first.Model.Coefficients(), second.Model.Coefficients())
	require.Equal(t, first.Summary.RSquared, second.Summary.RSquared)
}

func TestFitRegressionFullTrainingSet(t *testing.T) {
	ra, err := FitRegression(housing(t, 30), "y", []string{"a"}, 1, 1)
	require.NoError(t, err)

	assert.Empty(t, ra.Split.Test)
	assert.Nil(t, ra.Evaluation)

	// a single predictor has no multicollinearity verdict
	vif := ra.Diagnostics.Multicollinearity
	assert.False(t, vif.Applicable)
	assert.Equal(t, diagnostics.VerdictNotApplicable, vif.Verdict)
	assert.Empty(t, vif.VIF)
	assert.True(t, math.IsNaN(vif.Statistic))
}

func TestFitRegressionKeepsFitWhenEvaluationFails(t *testing.T) {
	const rare = 17

	n := 40
	x := make([]float64, n)
	y := make([]float64, n)
	g := make([]string, n)
	for i := range n {
		x[i] = float64(i)
		g[i] = []string{"a", "b"}[i%2]
		y[i] = 1 + 2*x[i] + float64(i%2)*3 + float64((i*7)%5)/10
	}
	g[rare] = "rare"

	ds, err := dataset.New(
		dataset.NewNumeric("y", y),
		dataset.NewNumeric("x", x),
		dataset.NewCategorical("g", g),
	)
	require.NoError(t, err)

	// pick a seed that puts the only "rare" row in the test rows
	seed, found := uint64(0), false
	for ; seed < 500 && !found; seed++ {
		split, err := ds.Split(0.7, seed)
		require.NoError(t, err)
		found = slices.Contains(split.Test, rare)
	}
	require.True(t, found)
	seed--

	ra, err := FitRegression(ds, "y", []string{"x", "g"}, 0.7, seed)
	require.NoError(t, err)
	require.NotNil(t, ra.Model)
	assert.Len(t, ra.Summary.Coefficients, 3)
	assert.True(t, ra.Diagnostics.Autocorrelation.Applicable)

	assert.Nil(t, ra.Evaluation)
	require.ErrorIs(t, ra.EvaluationErr, errs.ErrSchemaMismatch)
	assert.Contains(t, ra.EvaluationError, "rare")
}

func TestFitRegressionErrors(t *testing.T) {
	ds := housing(t, 20)

	_, err := FitRegression(ds, "y", []string{"a"}, 0.3, 1)
	require.ErrorIs(t, err, errs.ErrInvalidSpec)

	_, err = FitRegression(ds, "y", []string{"nope"}, 0.7, 1)
	require.ErrorIs(t, err, errs.ErrInvalidSpec)

	_, err = FitRegression(ds, "y", []string{"a"}, 0.7, 1, WithConfidence(2))
	require.ErrorIs(t, err, errs.ErrInvalidSpec)

	_, err = FitRegression(nil, "y", []string{"a"}, 0.7, 1)
	require.ErrorIs(t, err, errs.ErrInvalidSpec)
}

func TestFitANOVA(t *testing.T) {
	var g []string
	var y []float64
	for k, level := range []string{"low", "mid", "high"} {
		for i := 0; i < 10; i++ {
			g = append(g, level)
			y = append(y, float64(k+1)+(float64(i)-4.5)/10)
		}
	}
	ds, err := dataset.New(dataset.NewCategorical("g", g), dataset.NewNumeric("y", y))
	require.NoError(t, err)

	a, err := FitANOVA(ds, "g", "y", WithConfidence(0.99))
	require.NoError(t, err)
	assert.Less(t, a.PValue, 0.01)
	require.NotNil(t, a.PostHoc)
	assert.Equal(t, 0.99, a.PostHoc.Confidence)
	for _, c := range a.PostHoc.Comparisons {
		assert.True(t, c.Significant, c.Name())
	}

	one, err := dataset.New(
		dataset.NewCategorical("g", []string{"a", "a", "a"}),
		dataset.NewNumeric("y", []float64{1, 2, 3}),
	)
	require.NoError(t, err)
	_, err = FitANOVA(one, "g", "y")
	require.ErrorIs(t, err, errs.ErrInvalidSpec)
	require.ErrorIs(t, err, errs.ErrDegenerateFactor)
}

func TestPredictUnseenCategory(t *testing.T) {
	ra, err := FitRegression(housing(t, 45), "y", []string{"a", "site"}, 1, 3)
	require.NoError(t, err)

	rows, err := dataset.New(
		dataset.NewNumeric("a", []float64{4, 5}),
		dataset.NewCategorical("site", []string{"north", "west"}),
	)
	require.NoError(t, err)

	_, err = Predict(ra.Model, rows, 0.95)
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)

	known, err := dataset.New(
		dataset.NewNumeric("a", []float64{4}),
		dataset.NewCategorical("site", []string{"south"}),
	)
	require.NoError(t, err)

	res, err := Predict(ra.Model, known, 0.95)
	require.NoError(t, err)
	require.Len(t, res.Predictions, 1)

	_, err = Predict(nil, known, 0.95)
	require.ErrorIs(t, err, errs.ErrModelNotFit)
}

func TestCorrelate(t *testing.T) {
	m, err := Correlate(housing(t, 50))
	require.NoError(t, err)
	require.Equal(t, []string{"y", "a", "b", "c"}, m.Names())

	ya, _ := m.Get("y", "a")
	require.Greater(t, ya, 0.5)
}
