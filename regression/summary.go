package regression

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Coefficient is one row of the coefficient table.
type Coefficient struct {
	// Term is the design column name, "(Intercept)" for the intercept.
	Term     string  `json:"term" yaml:"term"`
	Estimate float64 `json:"estimate" yaml:"estimate"`
	StdError float64 `json:"std_error" yaml:"std_error"`
	TValue   float64 `json:"t_value" yaml:"t_value"`
	// PValue is the two-sided Student-t p-value with the residual degrees of freedom.
	PValue float64 `json:"p_value" yaml:"p_value"`
}

// Summary is the regression summary of a fitted model.
type Summary struct {
	Response     string        `json:"response" yaml:"response"`
	Predictors   []string      `json:"predictors" yaml:"predictors"`
	Coefficients []Coefficient `json:"coefficients" yaml:"coefficients"`
	NumObs       int           `json:"n" yaml:"n"`
	// DfModel is the number of design columns excluding the intercept.
	DfModel     int     `json:"df_model" yaml:"df_model"`
	DfResidual  int     `json:"df_residual" yaml:"df_residual"`
	RSquared    float64 `json:"r_squared" yaml:"r_squared"`
	AdjRSquared float64 `json:"adj_r_squared" yaml:"adj_r_squared"`
	// FStatistic tests all non-intercept coefficients jointly against zero.
	FStatistic float64 `json:"f_statistic" yaml:"f_statistic"`
	FPValue    float64 `json:"f_p_value" yaml:"f_p_value"`
	// ResidualStdError is σ̂ = √(SSE/df).
	ResidualStdError float64 `json:"residual_std_error" yaml:"residual_std_error"`
	// RMSE is √(SSE/n) on the fitted rows.
	RMSE        float64 `json:"rmse" yaml:"rmse"`
	Fingerprint uint64  `json:"fingerprint" yaml:"fingerprint"`
}

// Coefficient looks up a coefficient by design column name.
func (s Summary) Coefficient(term string) (Coefficient, bool) {
	for _, c := range s.Coefficients {
		if c.Term == term {
			return c, true
		}
	}

	return Coefficient{}, false
}

// String returns the coefficient table followed by the fit statistics.
func (s Summary) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Response: %s  n=%d\n", s.Response, s.NumObs)
	fmt.Fprintf(&b, "%-20s %12s %12s %9s %10s\n", "term", "estimate", "std.error", "t", "p")
	for _, c := range s.Coefficients {
		fmt.Fprintf(&b, "%-20s %12.5g %12.5g %9.3f %10.4g\n", c.Term, c.Estimate, c.StdError, c.TValue, c.PValue)
	}
	fmt.Fprintf(&b, "Residual standard error: %.5g on %d df\n", s.ResidualStdError, s.DfResidual)
	fmt.Fprintf(&b, "R²: %.4f  adjusted R²: %.4f\n", s.RSquared, s.AdjRSquared)
	fmt.Fprintf(&b, "F: %.4g on %d and %d df, p: %.4g", s.FStatistic, s.DfModel, s.DfResidual, s.FPValue)

	return b.String()
}

func (s Summary) clone() Summary {
	s.Predictors = slices.Clone(s.Predictors)
	s.Coefficients = slices.Clone(s.Coefficients)

	return s
}

// summarize computes the summary from the fitted state.
func (m *Model) summarize(sse float64) Summary {
	n := len(m.y)
	p := len(m.beta)
	df := float64(m.df)
	sigma2 := sse / df

	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	names := m.encoder.ColumnNames()

	coefs := make([]Coefficient, p)
	for j := range coefs {
		se := math.Sqrt(sigma2 * m.xtxInv.At(j, j))
		t := m.beta[j] / se
		coefs[j] = Coefficient{
			Term:     names[j],
			Estimate: m.beta[j],
			StdError: se,
			TValue:   t,
			PValue:   2 * tdist.Survival(math.Abs(t)),
		}
	}

	mean := stat.Mean(m.y, nil)
	sst := 0.0
	for _, v := range m.y {
		d := v - mean
		sst += d * d
	}

	r2 := math.Max(0, math.Min(1, 1-sse/sst))
	dfModel := p - 1
	adj := 1 - (1-r2)*float64(n-1)/df

	fStat := ((sst - sse) / float64(dfModel)) / sigma2
	fp := distuv.F{D1: float64(dfModel), D2: df}.Survival(fStat)

	return Summary{
		Response:         m.spec.Response,
		Predictors:       slices.Clone(m.spec.Predictors),
		Coefficients:     coefs,
		NumObs:           n,
		DfModel:          dfModel,
		DfResidual:       m.df,
		RSquared:         r2,
		AdjRSquared:      adj,
		FStatistic:       fStat,
		FPValue:          fp,
		ResidualStdError: math.Sqrt(sigma2),
		RMSE:             math.Sqrt(sse / float64(n)),
		Fingerprint:      m.fingerprint,
	}
}
