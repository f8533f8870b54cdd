package anova

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/arloliu/lmkit/dataset"
	"github.com/arloliu/lmkit/diagnostics"
	"github.com/arloliu/lmkit/errs"
)

// threeGroups returns 10 observations per level with means 1, 2, 3 and identical spread.
func threeGroups(t *testing.T) *dataset.Dataset {
	t.Helper()

	var levels []string
	var y []float64
	for g, name := range []string{"a", "b", "c"} {
		for i := 0; i < 10; i++ {
			levels = append(levels, name)
			y = append(y, float64(g+1)+(float64(i)-4.5)/10)
		}
	}

	ds, err := dataset.New(dataset.NewCategorical("group", levels), dataset.NewNumeric("y", y))
	require.NoError(t, err)

	return ds
}

func TestFitBalancedThreeGroups(t *testing.T) {
	a, err := Fit(threeGroups(t), Spec{Factor: "group", Response: "y"})
	require.NoError(t, err)

	require.Len(t, a.Groups, 3)
	for i, g := range a.Groups {
		assert.Equal(t, 10, g.N)
		assert.InDelta(t, float64(i+1), g.Mean, 1e-12)
		assert.InDelta(t, math.Sqrt(0.825/9), g.SD, 1e-12)
	}

	assert.InDelta(t, 2.0, a.GrandMean, 1e-12)
	assert.InDelta(t, 20.0, a.SSBetween, 1e-10)
	assert.InDelta(t, 2.475, a.SSWithin, 1e-10)
	assert.InDelta(t, a.SSBetween+a.SSWithin, a.SSTotal, 1e-10)
	assert.Equal(t, 2, a.DfBetween)
	assert.Equal(t, 27, a.DfWithin)
	assert.InDelta(t, 10/(2.475/27), a.FStatistic, 1e-8)
	assert.Less(t, a.PValue, 0.01)

	require.NotNil(t, a.PostHoc)
	require.NoError(t, a.PostHocErr)
	require.Len(t, a.PostHoc.Comparisons, 3)

	names := make([]string, 0, 3)
	for _, c := range a.PostHoc.Comparisons {
		names = append(names, c.Name())
		assert.True(t, c.Significant, c.Name())
		assert.Greater(t, c.Lower, 0.0)
		assert.Less(t, c.PValue, 0.05)
	}
	assert.Equal(t, []string{"b-a", "c-a", "c-b"}, names)

	ca, ok := a.PostHoc.Comparison("c", "a")
	require.True(t, ok)
	assert.InDelta(t, 2.0, ca.Diff, 1e-12)

	ac, ok := a.PostHoc.Comparison("a", "c")
	require.True(t, ok)
	assert.InDelta(t, -2.0, ac.Diff, 1e-12)
	assert.InDelta(t, -ca.Upper, ac.Lower, 1e-12)

	assert.True(t, a.Normality.Applicable)
	assert.True(t, a.Heteroscedasticity.Applicable)
	assert.Equal(t, 2, a.Heteroscedasticity.DF)
}

func TestFitResidualsAndDesign(t *testing.T) {
	a, err := Fit(threeGroups(t), Spec{Factor: "group", Response: "y"})
	require.NoError(t, err)

	res := a.Residuals()
	fitted := a.Fitted()
	require.Len(t, res, 30)
	require.InDelta(t, -0.45, res[0], 1e-12)
	require.InDelta(t, 1.0, fitted[0], 1e-12)
	require.InDelta(t, 3.0, fitted[29], 1e-12)

	x := a.Design()
	r, c := x.Dims()
	require.Equal(t, 30, r)
	require.Equal(t, 3, c)
	require.Equal(t, []float64{1, 0, 1}, []float64{x.At(25, 0), x.At(25, 1), x.At(25, 2)})

	var _ diagnostics.LinearFit = a
}

func TestFitErrors(t *testing.T) {
	ds, err := dataset.New(
		dataset.NewCategorical("one", []string{"a", "a", "a", "a"}),
		dataset.NewCategorical("two", []string{"a", "b", "a", "b"}),
		dataset.NewCategorical("gap", []string{"a", "", "a", "b"}),
		dataset.NewText("note", []string{"w", "x", "y", "z"}),
		dataset.NewNumeric("y", []float64{1, 2, 3, 4}),
		dataset.NewNumeric("flat", []float64{5, 5, 5, 5}),
		dataset.NewNumeric("hole", []float64{1, math.NaN(), 3, 4}),
	)
	require.NoError(t, err)

	tests := []struct {
		name string
		spec Spec
		opts []Option
		want error
	}{
		{"unknown factor", Spec{Factor: "nope", Response: "y"}, nil, errs.ErrInvalidSpec},
		{"unknown response", Spec{Factor: "two", Response: "nope"}, nil, errs.ErrInvalidSpec},
		{"same column", Spec{Factor: "y", Response: "y"}, nil, errs.ErrInvalidSpec},
		{"text factor", Spec{Factor: "note", Response: "y"}, nil, errs.ErrInvalidSpec},
		{"categorical response", Spec{Factor: "two", Response: "one"}, nil, errs.ErrInvalidSpec},
		{"single level", Spec{Factor: "one", Response: "y"}, nil, errs.ErrDegenerateFactor},
		{"single level is invalid spec", Spec{Factor: "one", Response: "y"}, nil, errs.ErrInvalidSpec},
		{"missing factor", Spec{Factor: "gap", Response: "y"}, nil, errs.ErrMissingValue},
		{"missing response", Spec{Factor: "two", Response: "hole"}, nil, errs.ErrMissingValue},
		{"constant response", Spec{Factor: "two", Response: "flat"}, nil, errs.ErrDegenerateResponse},
		{"bad confidence", Spec{Factor: "two", Response: "y"}, []Option{WithConfidence(1)}, errs.ErrInvalidSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(ds, tt.spec, tt.opts...)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFitOneRowPerGroup(t *testing.T) {
	ds, err := dataset.New(
		dataset.NewCategorical("g", []string{"a", "b"}),
		dataset.NewNumeric("y", []float64{1, 2}),
	)
	require.NoError(t, err)

	_, err = Fit(ds, Spec{Factor: "g", Response: "y"})
	require.ErrorIs(t, err, errs.ErrInsufficientData)
}

func TestFitNumericFactor(t *testing.T) {
	ds, err := dataset.New(
		dataset.NewNumeric("dose", []float64{10, 2, 1, 10, 2, 1, 10, 2, 1}),
		dataset.NewNumeric("y", []float64{9, 4, 1, 10, 5, 2, 11, 6, 3}),
	)
	require.NoError(t, err)

	a, err := Fit(ds, Spec{Factor: "dose", Response: "y"})
	require.NoError(t, err)

	levels := make([]string, 0, len(a.Groups))
	for _, g := range a.Groups {
		levels = append(levels, g.Level)
	}
	require.Equal(t, []string{"1", "2", "10"}, levels)

	g, ok := a.Group("10")
	require.True(t, ok)
	require.InDelta(t, 10.0, g.Mean, 1e-12)
}

func TestPostHocFailureKeepsFit(t *testing.T) {
	// zero within-group variance
	ds, err := dataset.New(
		dataset.NewCategorical("g", []string{"a", "a", "b", "b", "c", "c"}),
		dataset.NewNumeric("y", []float64{1, 1, 2, 2, 3, 3}),
	)
	require.NoError(t, err)

	a, err := Fit(ds, Spec{Factor: "g", Response: "y"})
	require.NoError(t, err)
	require.Nil(t, a.PostHoc)
	require.ErrorIs(t, a.PostHocErr, errs.ErrDegenerateResponse)
	require.NotEmpty(t, a.PostHocError)
	require.True(t, math.IsInf(a.FStatistic, 1))
	require.Equal(t, 0.0, a.PValue)

	// within-group df of 1
	ds, err = dataset.New(
		dataset.NewCategorical("g", []string{"a", "a", "b"}),
		dataset.NewNumeric("y", []float64{1, 2, 5}),
	)
	require.NoError(t, err)

	a, err = Fit(ds, Spec{Factor: "g", Response: "y"})
	require.NoError(t, err)
	require.Nil(t, a.PostHoc)
	require.ErrorIs(t, a.PostHocErr, errs.ErrInsufficientData)
}

func TestTukeyTwoGroupsMatchesPooledT(t *testing.T) {
	groups := []Group{
		{Level: "a", N: 8, Mean: 4.1},
		{Level: "b", N: 12, Mean: 5.0},
	}
	msw, df := 1.7, 18

	ph, err := Tukey(groups, msw, df, 0.95)
	require.NoError(t, err)
	require.Len(t, ph.Comparisons, 1)

	c := ph.Comparisons[0]
	tstat := c.Diff / math.Sqrt(msw*(1.0/8+1.0/12))
	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}

	require.InDelta(t, 2*tdist.Survival(math.Abs(tstat)), c.PValue, 1e-5)

	// with two groups the Tukey interval is the pooled t interval
	half := tdist.Quantile(0.975) * math.Sqrt(msw*(1.0/8+1.0/12))
	require.InDelta(t, c.Diff+half, c.Upper, 1e-3)
}

func TestTukeyImbalanceWidensInterval(t *testing.T) {
	groups := []Group{
		{Level: "a", N: 10, Mean: 1},
		{Level: "b", N: 10, Mean: 2},
		{Level: "c", N: 3, Mean: 2},
	}

	ph, err := Tukey(groups, 1, 20, 0.95)
	require.NoError(t, err)

	ba, _ := ph.Comparison("b", "a")
	ca, _ := ph.Comparison("c", "a")
	require.Greater(t, ca.SE, ba.SE)
	require.Greater(t, ca.Upper-ca.Lower, ba.Upper-ba.Lower)
	require.Greater(t, ca.PValue, ba.PValue)

	for _, c := range ph.Comparisons {
		require.Less(t, c.Lower, c.Diff)
		require.Greater(t, c.Upper, c.Diff)
	}
}

func TestTukeyConfidenceWidens(t *testing.T) {
	groups := []Group{{Level: "a", N: 5, Mean: 1}, {Level: "b", N: 5, Mean: 2}, {Level: "c", N: 5, Mean: 4}}

	narrow, err := Tukey(groups, 0.5, 12, 0.90)
	require.NoError(t, err)
	wide, err := Tukey(groups, 0.5, 12, 0.99)
	require.NoError(t, err)

	require.Greater(t, wide.Critical, narrow.Critical)
	for i := range wide.Comparisons {
		require.Less(t, wide.Comparisons[i].Lower, narrow.Comparisons[i].Lower)
	}
}
