package dist

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

const (
	imhofNodes    = 48
	imhofMaxUpper = 0x1p60
	imhofTailTol  = 1e-12
)

// Imhof returns P(Σ wᵢ·Zᵢ² < 0) for independent standard normal Zᵢ.
//
// The probability is obtained by numerically inverting the characteristic function
// (Imhof, 1961). Weights may have either sign; zero weights are ignored. The result is
// clamped to [0, 1].
func Imhof(weights []float64) float64 {
	scale := 0.0
	for _, w := range weights {
		scale = math.Max(scale, math.Abs(w))
	}
	if scale == 0 {
		return math.NaN()
	}

	c := make([]float64, 0, len(weights))
	sum := 0.0
	for _, w := range weights {
		if w == 0 {
			continue
		}
		c = append(c, w/scale)
		sum += w / scale
	}

	integrand := func(u float64) float64 {
		if u == 0 {
			return 0.5 * sum
		}

		theta := 0.0
		logRho := 0.0
		for _, ci := range c {
			theta += math.Atan(ci * u)
			logRho += math.Log1p(ci * ci * u * u)
		}
		theta *= 0.5
		rho := math.Exp(0.25 * logRho)

		return math.Sin(theta) / (u * rho)
	}

	// Integrate on [0, 1], then on doubling intervals until the integrand's envelope
	// 1/ρ(u) makes the remaining tail negligible.
	total := quad.Fixed(integrand, 0, 1, imhofNodes, nil, 0)
	for lo := 1.0; lo < imhofMaxUpper; lo *= 2 {
		total += quad.Fixed(integrand, lo, 2*lo, imhofNodes, nil, 0)
		if envelope(c, 2*lo) < imhofTailTol {
			break
		}
	}

	p := 0.5 - total/math.Pi

	return math.Min(1, math.Max(0, p))
}

// envelope returns 1/ρ(u), an upper bound on |u·integrand(u)|.
func envelope(c []float64, u float64) float64 {
	logRho := 0.0
	for _, ci := range c {
		logRho += math.Log1p(ci * ci * u * u)
	}

	return math.Exp(-0.25 * logRho)
}
