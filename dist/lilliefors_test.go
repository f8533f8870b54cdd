package dist

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/arloliu/lmkit/errs"
)

func TestLillieforsNormalQuantiles(t *testing.T) {
	n := 40
	sample := make([]float64, n)
	for i := range sample {
		sample[i] = distuv.UnitNormal.Quantile((float64(i) + 0.5) / float64(n))
	}

	d, p, err := Lilliefors(sample)
	require.NoError(t, err)
	require.Less(t, d, 0.05)
	require.Greater(t, p, 0.5)
}

func TestLillieforsSkewedSample(t *testing.T) {
	sample := make([]float64, 50)
	for i := range sample {
		sample[i] = math.Exp(float64(i+1) / 5)
	}

	_, p, err := Lilliefors(sample)
	require.NoError(t, err)
	require.Less(t, p, 0.01)
}

func TestLillieforsRejectsSmallOrConstant(t *testing.T) {
	_, _, err := Lilliefors([]float64{1, 2, 3, 4})
	require.ErrorIs(t, err, errs.ErrInsufficientData)

	_, _, err = Lilliefors([]float64{2, 2, 2, 2, 2})
	require.ErrorIs(t, err, errs.ErrDegenerateResponse)
}

func TestLillieforsPValue(t *testing.T) {
	// tabulated 5% critical value for n = 20
	require.InDelta(t, 0.05, LillieforsPValue(0.190, 20), 0.01)

	prev := 1.1
	for _, d := range []float64{0.05, 0.1, 0.15, 0.2, 0.3, 0.4} {
		p := LillieforsPValue(d, 20)
		require.LessOrEqual(t, p, prev)
		require.GreaterOrEqual(t, p, 0.0)
		prev = p
	}

	require.Equal(t, 1.0, LillieforsPValue(0.01, 30))
}
