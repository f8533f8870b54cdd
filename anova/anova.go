// Package anova implements one-way analysis of variance with Tukey HSD post-hoc comparison.
//
// Fit groups a numeric response by a factor column, decomposes the total sum of squares into
// between- and within-group parts, tests the group means for equality with an F test, checks
// the residuals for normality and heteroscedasticity, and compares every pair of groups with
// Tukey's honestly significant differences.
package anova

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/arloliu/lmkit/dataset"
	"github.com/arloliu/lmkit/diagnostics"
	"github.com/arloliu/lmkit/errs"
	"github.com/arloliu/lmkit/format"
	"github.com/arloliu/lmkit/internal/options"
)

// Group summarizes the response within one factor level.
type Group struct {
	Level string  `json:"level" yaml:"level"`
	N     int     `json:"n" yaml:"n"`
	Mean  float64 `json:"mean" yaml:"mean"`
	// SD is the sample standard deviation, NaN for a single observation.
	SD float64 `json:"sd" yaml:"sd"`
}

// Analysis is the result of a one-way ANOVA.
//
// Residuals, fitted values and the design matrix are kept so that the residual diagnostics
// can run on the analysis directly; Analysis satisfies diagnostics.LinearFit.
type Analysis struct {
	Spec       Spec    `json:"spec" yaml:"spec"`
	NumObs     int     `json:"n" yaml:"n"`
	Groups     []Group `json:"groups" yaml:"groups"`
	GrandMean  float64 `json:"grand_mean" yaml:"grand_mean"`
	SSBetween  float64 `json:"ss_between" yaml:"ss_between"`
	SSWithin   float64 `json:"ss_within" yaml:"ss_within"`
	SSTotal    float64 `json:"ss_total" yaml:"ss_total"`
	DfBetween  int     `json:"df_between" yaml:"df_between"`
	DfWithin   int     `json:"df_within" yaml:"df_within"`
	MSBetween  float64 `json:"ms_between" yaml:"ms_between"`
	MSWithin   float64 `json:"ms_within" yaml:"ms_within"`
	FStatistic float64 `json:"f_statistic" yaml:"f_statistic"`
	PValue     float64 `json:"p_value" yaml:"p_value"`

	Normality          diagnostics.Result `json:"normality" yaml:"normality"`
	Heteroscedasticity diagnostics.Result `json:"heteroscedasticity" yaml:"heteroscedasticity"`

	// PostHoc is nil when the comparison failed; PostHocErr then holds the reason.
	PostHoc      *PostHoc `json:"post_hoc,omitempty" yaml:"post_hoc,omitempty"`
	PostHocErr   error    `json:"-" yaml:"-"`
	PostHocError string   `json:"post_hoc_error,omitempty" yaml:"post_hoc_error,omitempty"`

	Fingerprint uint64 `json:"fingerprint" yaml:"fingerprint"`

	residuals []float64
	fitted    []float64
	design    *mat.Dense
}

// Residuals returns each observation minus its group mean, in row order.
func (a *Analysis) Residuals() []float64 {
	return slices.Clone(a.residuals)
}

// Fitted returns the group mean of each observation, in row order.
func (a *Analysis) Fitted() []float64 {
	return slices.Clone(a.fitted)
}

// Design returns the one-way design matrix: an intercept and one indicator per non-reference
// level.
func (a *Analysis) Design() *mat.Dense {
	return mat.DenseCopyOf(a.design)
}

// Group looks up the summary of a level.
func (a *Analysis) Group(level string) (Group, bool) {
	for _, g := range a.Groups {
		if g.Level == level {
			return g, true
		}
	}

	return Group{}, false
}

// String returns the ANOVA table.
func (a *Analysis) String() string {
	return fmt.Sprintf("ANOVA{%s ~ %s, between: SS=%.4g df=%d, within: SS=%.4g df=%d, F=%.4g, p=%.4g}",
		a.Spec.Response, a.Spec.Factor, a.SSBetween, a.DfBetween, a.SSWithin, a.DfWithin, a.FStatistic, a.PValue)
}

// Fit runs a one-way ANOVA of spec.Response grouped by spec.Factor over every row of ds.
//
// Parameters:
//   - ds: Dataset holding both columns
//   - spec: Factor and response names
//   - opts: Optional settings (WithConfidence, WithLogger)
//
// Returns:
//   - *Analysis: The ANOVA table with residual diagnostics and post-hoc comparisons
//   - error: errs.ErrInvalidSpec (errs.ErrDegenerateFactor for a single level),
//     errs.ErrMissingValue, errs.ErrDegenerateResponse or errs.ErrInsufficientData
//
// A failing post-hoc comparison does not fail the fit; it is reported in PostHocErr.
func Fit(ds *dataset.Dataset, spec Spec, opts ...Option) (*Analysis, error) {
	cfg, err := options.Build(defaultConfig(), opts...)
	if err != nil {
		return nil, err
	}

	if ds == nil {
		return nil, fmt.Errorf("%w: nil dataset", errs.ErrInvalidSpec)
	}
	if err := spec.Validate(ds); err != nil {
		return nil, err
	}

	factor, _ := ds.Column(spec.Factor)
	resp, _ := ds.Column(spec.Response)
	n := ds.Rows()

	for i := 0; i < n; i++ {
		if factor.IsMissing(i) {
			return nil, fmt.Errorf("%w: factor %q row %d", errs.ErrMissingValue, spec.Factor, i)
		}
		if resp.IsMissing(i) {
			return nil, fmt.Errorf("%w: response %q row %d", errs.ErrMissingValue, spec.Response, i)
		}
	}

	levels := factorLevels(factor)
	k := len(levels)
	if k < 2 {
		return nil, fmt.Errorf("%w: factor %q has %d level(s)", errs.ErrDegenerateFactor, spec.Factor, k)
	}

	y := resp.Float64s()
	if !slices.ContainsFunc(y, func(v float64) bool { return v != y[0] }) {
		return nil, fmt.Errorf("%w: response %q has a single distinct value", errs.ErrDegenerateResponse, spec.Response)
	}

	if n-k < 1 {
		return nil, fmt.Errorf("%w: %d rows for %d groups", errs.ErrInsufficientData, n, k)
	}

	index := make(map[string]int, k)
	for j, lv := range levels {
		index[lv] = j
	}
	member := make([]int, n)
	values := make([][]float64, k)
	for i := 0; i < n; i++ {
		j := index[factor.String(i)]
		member[i] = j
		values[j] = append(values[j], y[i])
	}

	a := &Analysis{
		Spec:        spec,
		NumObs:      n,
		Groups:      make([]Group, k),
		GrandMean:   stat.Mean(y, nil),
		DfBetween:   k - 1,
		DfWithin:    n - k,
		Fingerprint: ds.Fingerprint(),
		residuals:   make([]float64, n),
		fitted:      make([]float64, n),
		design:      mat.NewDense(n, k, nil),
	}

	for j, lv := range levels {
		mean, sd := stat.MeanStdDev(values[j], nil)
		a.Groups[j] = Group{Level: lv, N: len(values[j]), Mean: mean, SD: sd}

		d := mean - a.GrandMean
		a.SSBetween += float64(len(values[j])) * d * d
	}

	for i := 0; i < n; i++ {
		j := member[i]
		a.fitted[i] = a.Groups[j].Mean
		a.residuals[i] = y[i] - a.fitted[i]
		a.SSWithin += a.residuals[i] * a.residuals[i]

		d := y[i] - a.GrandMean
		a.SSTotal += d * d

		a.design.Set(i, 0, 1)
		if j > 0 {
			a.design.Set(i, j, 1)
		}
	}

	a.MSBetween = a.SSBetween / float64(a.DfBetween)
	a.MSWithin = a.SSWithin / float64(a.DfWithin)
	a.FStatistic = a.MSBetween / a.MSWithin
	a.PValue = distuv.F{D1: float64(a.DfBetween), D2: float64(a.DfWithin)}.Survival(a.FStatistic)
	if a.MSWithin == 0 {
		a.FStatistic = math.Inf(1)
		a.PValue = 0
	}

	a.Normality = diagnostics.Lilliefors(a)
	a.Heteroscedasticity = diagnostics.BreuschPagan(a)

	a.PostHoc, a.PostHocErr = Tukey(a.Groups, a.MSWithin, a.DfWithin, cfg.Confidence)
	if a.PostHocErr != nil {
		a.PostHocError = a.PostHocErr.Error()
		cfg.Logger.WithError(a.PostHocErr).Warn("post-hoc comparison failed")
	}

	cfg.Logger.WithFields(logrus.Fields{
		"factor":   spec.Factor,
		"response": spec.Response,
		"groups":   k,
		"rows":     n,
		"f":        a.FStatistic,
		"p_value":  a.PValue,
	}).Debug("fitted one-way ANOVA")

	return a, nil
}

// factorLevels returns the distinct factor levels. Numeric factors are ordered by value,
// categorical factors lexically.
func factorLevels(c dataset.Column) []string {
	levels := c.Levels(nil)
	if c.Type() != format.TypeNumeric {
		return levels
	}

	slices.SortFunc(levels, func(a, b string) int {
		x, _ := strconv.ParseFloat(a, 64)
		y, _ := strconv.ParseFloat(b, 64)

		return cmp.Compare(x, y)
	})

	return levels
}
