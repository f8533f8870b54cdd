package anova

import (
	"fmt"
	"math"

	"github.com/arloliu/lmkit/dist"
	"github.com/arloliu/lmkit/errs"
)

// MethodTukeyHSD is the post-hoc method name.
const MethodTukeyHSD = "Tukey HSD"

// Comparison is one pairwise difference of group means.
type Comparison struct {
	// Level is the later level in sort order; Other the earlier one. Diff is mean(Level) − mean(Other).
	Level  string  `json:"level" yaml:"level"`
	Other  string  `json:"other" yaml:"other"`
	Diff   float64 `json:"diff" yaml:"diff"`
	SE     float64 `json:"se" yaml:"se"`
	Lower  float64 `json:"lower" yaml:"lower"`
	Upper  float64 `json:"upper" yaml:"upper"`
	PValue float64 `json:"p_adj" yaml:"p_adj"`
	// Significant reports whether the interval excludes zero.
	Significant bool `json:"significant" yaml:"significant"`
}

// Name returns the comparison label "Level-Other".
func (c Comparison) Name() string {
	return c.Level + "-" + c.Other
}

// PostHoc holds all pairwise comparisons of one analysis.
type PostHoc struct {
	Method     string  `json:"method" yaml:"method"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	// Critical is the studentized range quantile q(confidence; k, df).
	Critical    float64      `json:"critical" yaml:"critical"`
	Comparisons []Comparison `json:"comparisons" yaml:"comparisons"`
}

// Comparison looks up the comparison of level against other, in either order. When the
// order is reversed the returned comparison is mirrored.
func (p *PostHoc) Comparison(level, other string) (Comparison, bool) {
	for _, c := range p.Comparisons {
		if c.Level == level && c.Other == other {
			return c, true
		}
		if c.Level == other && c.Other == level {
			return Comparison{
				Level:       level,
				Other:       other,
				Diff:        -c.Diff,
				SE:          c.SE,
				Lower:       -c.Upper,
				Upper:       -c.Lower,
				PValue:      c.PValue,
				Significant: c.Significant,
			}, true
		}
	}

	return Comparison{}, false
}

// Tukey computes Tukey's honestly significant differences for every pair of groups.
//
// The standard error of a pair is √(MSW/2·(1/nᵢ + 1/nⱼ)), the interval half-width is
// q(confidence; k, df)·SE, and the adjusted p-value is P(Q > |diff|/SE) under the studentized
// range distribution with k groups and df within-group degrees of freedom.
//
// It fails with errs.ErrDegenerateResponse when msWithin is zero and with
// errs.ErrInsufficientData when df is below 2 or fewer than two groups are given.
func Tukey(groups []Group, msWithin float64, df int, confidence float64) (*PostHoc, error) {
	k := len(groups)
	if k < 2 {
		return nil, fmt.Errorf("%w: post-hoc comparison needs two groups, got %d", errs.ErrInsufficientData, k)
	}
	if df < 2 {
		return nil, fmt.Errorf("%w: post-hoc comparison needs within-group df ≥ 2, got %d", errs.ErrInsufficientData, df)
	}
	if !(msWithin > 0) {
		return nil, fmt.Errorf("%w: within-group variance is zero", errs.ErrDegenerateResponse)
	}
	if !(confidence > 0 && confidence < 1) {
		return nil, fmt.Errorf("%w: confidence %v outside (0, 1)", errs.ErrInvalidSpec, confidence)
	}

	q := dist.QTukey(confidence, k, float64(df))
	if math.IsNaN(q) {
		return nil, fmt.Errorf("%w: studentized range quantile undefined for k=%d df=%d", errs.ErrInsufficientData, k, df)
	}

	ph := &PostHoc{
		Method:      MethodTukeyHSD,
		Confidence:  confidence,
		Critical:    q,
		Comparisons: make([]Comparison, 0, k*(k-1)/2),
	}

	for j := 0; j < k; j++ {
		for i := j + 1; i < k; i++ {
			gi, gj := groups[i], groups[j]
			diff := gi.Mean - gj.Mean
			se := math.Sqrt(msWithin / 2 * (1/float64(gi.N) + 1/float64(gj.N)))
			lower, upper := diff-q*se, diff+q*se

			ph.Comparisons = append(ph.Comparisons, Comparison{
				Level:       gi.Level,
				Other:       gj.Level,
				Diff:        diff,
				SE:          se,
				Lower:       lower,
				Upper:       upper,
				PValue:      math.Max(0, 1-dist.PTukey(math.Abs(diff)/se, k, float64(df))),
				Significant: lower > 0 || upper < 0,
			})
		}
	}

	return ph, nil
}
