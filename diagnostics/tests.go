package diagnostics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/arloliu/lmkit/design"
	"github.com/arloliu/lmkit/dist"
	"github.com/arloliu/lmkit/linalg"
)

// Method names reported in Result.Method.
const (
	MethodDurbinWatson = "Durbin-Watson"
	MethodBreuschPagan = "studentized Breusch-Pagan"
	MethodLilliefors   = "Lilliefors (Kolmogorov-Smirnov)"
	MethodVIF          = "variance inflation factor"
)

// LinearFit is a fitted linear model as seen by the residual tests. The design matrix
// includes the intercept column and has one row per residual, in row order.
type LinearFit interface {
	Residuals() []float64
	Design() *mat.Dense
}

// TermFit is a LinearFit whose design columns are grouped into predictor terms.
type TermFit interface {
	LinearFit
	Encoder() *design.Encoder
}

// DurbinWatson tests the residuals for first-order autocorrelation in row order.
//
// The p-value is two-sided and exact for the given design matrix up to
// dist.DurbinWatsonExactLimit rows (see dist.DurbinWatsonPValue).
func DurbinWatson(f LinearFit) Result {
	e := f.Residuals()
	if len(e) < 3 {
		return notApplicable(TestAutocorrelation, MethodDurbinWatson,
			fmt.Sprintf("needs at least 3 residuals, got %d", len(e)))
	}

	num, den := 0.0, 0.0
	for i, v := range e {
		den += v * v
		if i > 0 {
			diff := v - e[i-1]
			num += diff * diff
		}
	}
	if den == 0 {
		return notApplicable(TestAutocorrelation, MethodDurbinWatson, "residuals are all zero")
	}

	d := num / den
	p, err := dist.DurbinWatsonPValue(d, f.Design())
	if err != nil {
		return notApplicable(TestAutocorrelation, MethodDurbinWatson, err.Error())
	}

	return tested(TestAutocorrelation, MethodDurbinWatson, d, p, VerdictAutocorrelation, VerdictNoAutocorrelation)
}

// BreuschPagan tests the residuals for heteroscedasticity with Koenker's studentized
// statistic n·R² of the auxiliary regression of e² on the design columns. The statistic is
// χ² distributed with one degree of freedom per non-intercept design column.
func BreuschPagan(f LinearFit) Result {
	e := f.Residuals()
	x := f.Design()
	n, p := x.Dims()

	df := p - 1
	if df < 1 {
		return notApplicable(TestHeteroscedasticity, MethodBreuschPagan, "design has no predictor columns")
	}
	if n <= p {
		return notApplicable(TestHeteroscedasticity, MethodBreuschPagan,
			fmt.Sprintf("auxiliary regression needs more than %d rows, got %d", p, n))
	}

	u := make([]float64, n)
	for i, v := range e {
		u[i] = v * v
	}

	mean := stat.Mean(u, nil)
	sst := 0.0
	for _, v := range u {
		sst += (v - mean) * (v - mean)
	}
	if sst == 0 {
		return notApplicable(TestHeteroscedasticity, MethodBreuschPagan, "squared residuals are constant")
	}

	pinv, err := linalg.PseudoInverse(x)
	if err != nil {
		return notApplicable(TestHeteroscedasticity, MethodBreuschPagan, err.Error())
	}
	fitted := linalg.MulVec(x, linalg.MulVec(pinv, u))

	sse := 0.0
	for i, v := range u {
		r := v - fitted[i]
		sse += r * r
	}

	r2 := math.Max(0, 1-sse/sst)
	statistic := float64(n) * r2
	pv := distuv.ChiSquared{K: float64(df)}.Survival(statistic)

	r := tested(TestHeteroscedasticity, MethodBreuschPagan, statistic, pv, VerdictHeteroscedasticity, VerdictHomoscedasticity)
	r.DF = df

	return r
}

// Lilliefors tests the residuals for normality. It needs at least
// dist.LillieforsMinSamples residuals.
func Lilliefors(f LinearFit) Result {
	d, p, err := dist.Lilliefors(f.Residuals())
	if err != nil {
		return notApplicable(TestNormality, MethodLilliefors, err.Error())
	}

	return tested(TestNormality, MethodLilliefors, d, p, VerdictNotNormal, VerdictNormal)
}

// VIF computes the variance inflation of every predictor term.
//
// It uses the generalized VIF det(R₁₁)·det(R₂₂)/det(R) on the correlation matrix R of the
// non-intercept design columns, where R₁₁ holds the term's own columns and R₂₂ the rest. For
// a numeric predictor this is the classic 1/(1−R²ⱼ). A term is flagged when GVIF^(1/df) reaches
// VIFThreshold. With fewer than two predictor terms the result is not applicable.
func VIF(f TermFit) Result {
	terms := f.Encoder().Terms()
	if len(terms) < 2 {
		return notApplicable(TestMulticollinearity, MethodVIF,
			fmt.Sprintf("needs at least two predictors, got %d", len(terms)))
	}

	x := f.Design()
	n, p := x.Dims()
	if n < 3 {
		return notApplicable(TestMulticollinearity, MethodVIF, fmt.Sprintf("needs at least 3 rows, got %d", n))
	}

	cols := x.Slice(0, n, 1, p)
	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, cols, nil)

	detAll := mat.Det(&corr)

	r := Result{
		Test:       TestMulticollinearity,
		Method:     MethodVIF,
		PValue:     math.NaN(),
		Applicable: true,
		Verdict:    VerdictNoMulticollinearity,
		VIF:        make([]VIFEntry, 0, len(terms)),
	}

	worst := 0.0
	for _, term := range terms {
		own := make([]int, 0, term.Width())
		rest := make([]int, 0, p-1-term.Width())
		for j := 0; j < p-1; j++ {
			// term.Start counts the intercept, correlation indices do not.
			if j+1 >= term.Start && j+1 < term.Start+term.Width() {
				own = append(own, j)
			} else {
				rest = append(rest, j)
			}
		}

		gvif := mat.Det(subSym(&corr, own)) * mat.Det(subSym(&corr, rest)) / detAll
		if detAll <= 0 || math.IsNaN(gvif) {
			gvif = math.Inf(1)
		}

		scaled := math.Pow(gvif, 1/float64(term.Width()))
		entry := VIFEntry{
			Term:    term.Name,
			GVIF:    gvif,
			DF:      term.Width(),
			Scaled:  scaled,
			Flagged: scaled >= VIFThreshold,
		}
		if entry.Flagged {
			r.Rejected = true
			r.Verdict = VerdictMulticollinearity
		}
		worst = math.Max(worst, scaled)
		r.VIF = append(r.VIF, entry)
	}
	r.Statistic = worst

	return r
}

// subSym returns the principal submatrix of a over idx.
func subSym(a mat.Symmetric, idx []int) *mat.SymDense {
	if len(idx) == 0 {
		// det of the empty matrix is 1
		return mat.NewSymDense(1, []float64{1})
	}

	s := mat.NewSymDense(len(idx), nil)
	for i, ii := range idx {
		for j := i; j < len(idx); j++ {
			s.SetSym(i, j, a.At(ii, idx[j]))
		}
	}

	return s
}
