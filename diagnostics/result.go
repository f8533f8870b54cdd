package diagnostics

import (
	"fmt"
	"math"
)

// Alpha is the significance level of every hypothesis test in the suite.
const Alpha = 0.05

// Test identifies a model assumption check.
type Test string

const (
	TestAutocorrelation    Test = "autocorrelation"
	TestHeteroscedasticity Test = "heteroscedasticity"
	TestNormality          Test = "normality"
	TestMulticollinearity  Test = "multicollinearity"
)

// Verdicts reported by the tests.
const (
	VerdictAutocorrelation     = "autocorrelation present"
	VerdictNoAutocorrelation   = "no autocorrelation detected"
	VerdictHeteroscedasticity  = "heteroscedasticity present"
	VerdictHomoscedasticity    = "no heteroscedasticity detected"
	VerdictNotNormal           = "residuals not normal"
	VerdictNormal              = "residuals consistent with normality"
	VerdictMulticollinearity   = "potential multicollinearity"
	VerdictNoMulticollinearity = "no multicollinearity detected"
	VerdictNotApplicable       = "not applicable"
)

// VIFThreshold is the value of GVIF^(1/df) at or above which a term is flagged.
const VIFThreshold = 10.0

// Result is the outcome of one diagnostic test.
//
// A test that cannot be carried out on the model is reported with Applicable set to false,
// a Reason, NaN Statistic and PValue, and the "not applicable" verdict.
type Result struct {
	Test   Test   `json:"test" yaml:"test"`
	Method string `json:"method" yaml:"method"`
	// Statistic is d for Durbin-Watson, n·R² for Breusch-Pagan, D for Lilliefors and the
	// largest GVIF^(1/df) for multicollinearity.
	Statistic float64 `json:"statistic" yaml:"statistic"`
	// PValue is NaN for multicollinearity, which is a threshold rule rather than a test.
	PValue float64 `json:"p_value" yaml:"p_value"`
	// DF is the χ² degrees of freedom of Breusch-Pagan, zero otherwise.
	DF         int        `json:"df,omitempty" yaml:"df,omitempty"`
	Rejected   bool       `json:"rejected" yaml:"rejected"`
	Applicable bool       `json:"applicable" yaml:"applicable"`
	Reason     string     `json:"reason,omitempty" yaml:"reason,omitempty"`
	Verdict    string     `json:"verdict" yaml:"verdict"`
	VIF        []VIFEntry `json:"vif,omitempty" yaml:"vif,omitempty"`
}

// VIFEntry is the variance inflation of one predictor term.
type VIFEntry struct {
	Term string `json:"term" yaml:"term"`
	// GVIF is the generalized VIF; it equals the classic 1/(1−R²) for one-column terms.
	GVIF float64 `json:"gvif" yaml:"gvif"`
	// DF is the number of design columns of the term.
	DF int `json:"df" yaml:"df"`
	// Scaled is GVIF^(1/DF), the value compared with VIFThreshold.
	Scaled  float64 `json:"scaled" yaml:"scaled"`
	Flagged bool    `json:"flagged" yaml:"flagged"`
}

// String returns a one-line description of the result.
func (r Result) String() string {
	if !r.Applicable {
		return fmt.Sprintf("%s (%s): %s: %s", r.Test, r.Method, VerdictNotApplicable, r.Reason)
	}
	if math.IsNaN(r.PValue) {
		return fmt.Sprintf("%s (%s): statistic=%.4g: %s", r.Test, r.Method, r.Statistic, r.Verdict)
	}

	return fmt.Sprintf("%s (%s): statistic=%.4g p=%.4g: %s", r.Test, r.Method, r.Statistic, r.PValue, r.Verdict)
}

func notApplicable(test Test, method string, reason string) Result {
	return Result{
		Test:      test,
		Method:    method,
		Statistic: math.NaN(),
		PValue:    math.NaN(),
		Reason:    reason,
		Verdict:   VerdictNotApplicable,
	}
}

func tested(test Test, method string, statistic, p float64, rejected, kept string) Result {
	r := Result{
		Test:       test,
		Method:     method,
		Statistic:  statistic,
		PValue:     p,
		Rejected:   p < Alpha,
		Applicable: true,
		Verdict:    kept,
	}
	if r.Rejected {
		r.Verdict = rejected
	}

	return r
}
