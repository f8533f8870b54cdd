package dist

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/arloliu/lmkit/errs"
)

// LillieforsMinSamples is the smallest sample accepted by Lilliefors.
const LillieforsMinSamples = 5

// Lilliefors returns the Kolmogorov-Smirnov distance between the empirical distribution of
// the standardized sample and the standard normal, with its p-value from the
// Dallal-Wilkinson approximation.
func Lilliefors(sample []float64) (d, p float64, err error) {
	n := len(sample)
	if n < LillieforsMinSamples {
		return math.NaN(), math.NaN(), fmt.Errorf("%w: normality test needs at least %d values, got %d",
			errs.ErrInsufficientData, LillieforsMinSamples, n)
	}

	x := slices.Clone(sample)
	slices.Sort(x)

	mean, sd := stat.MeanStdDev(x, nil)
	if sd == 0 || math.IsNaN(sd) {
		return math.NaN(), math.NaN(), fmt.Errorf("%w: sample has zero variance", errs.ErrDegenerateResponse)
	}

	nf := float64(n)
	dPlus, dMinus := math.Inf(-1), math.Inf(-1)
	for i, v := range x {
		cdf := distuv.UnitNormal.CDF((v - mean) / sd)
		dPlus = math.Max(dPlus, float64(i+1)/nf-cdf)
		dMinus = math.Max(dMinus, cdf-float64(i)/nf)
	}
	d = math.Max(dPlus, dMinus)

	return d, LillieforsPValue(d, n), nil
}

// LillieforsPValue returns the Dallal-Wilkinson approximation of the Lilliefors p-value for
// statistic d on n observations.
func LillieforsPValue(d float64, n int) float64 {
	nf := float64(n)

	kd, nd := d, nf
	if n > 100 {
		kd = d * math.Pow(nf/100, 0.49)
		nd = 100
	}

	p := math.Exp(-7.01256*kd*kd*(nd+2.78019) +
		2.99587*kd*math.Sqrt(nd+2.78019) -
		0.122119 + 0.974598/math.Sqrt(nd) + 1.67997/nd)

	if p > 0.1 {
		kk := (math.Sqrt(nf) - 0.01 + 0.85/math.Sqrt(nf)) * d
		switch {
		case kk <= 0.302:
			p = 1
		case kk <= 0.5:
			p = 2.76773 - 19.828315*kk + 80.709644*kk*kk - 138.55152*kk*kk*kk + 81.218052*kk*kk*kk*kk
		case kk <= 0.9:
			p = -4.901232 + 40.662806*kk - 97.490286*kk*kk + 94.029866*kk*kk*kk - 32.355711*kk*kk*kk*kk
		case kk <= 1.31:
			p = 6.198765 - 19.558097*kk + 23.186922*kk*kk - 12.024616*kk*kk*kk + 2.355095*kk*kk*kk*kk
		default:
			p = 0
		}
	}

	return math.Min(1, math.Max(0, p))
}
