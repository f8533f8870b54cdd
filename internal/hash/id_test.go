package hash

import (
	"math"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/require"
)

func TestSum64MatchesXXHash(t *testing.T) {
	data := []byte("response,x1,x2")
	require.Equal(t, xxhash.Sum64(data), Sum64(data))
}

func TestDigestStringsAreLengthPrefixed(t *testing.T) {
	a := NewDigest()
	a.AddString("ab")
	a.AddString("c")

	b := NewDigest()
	b.AddString("a")
	b.AddString("bc")

	require.NotEqual(t, a.Sum64(), b.Sum64())
}

func TestDigestNaNIsCanonical(t *testing.T) {
	a := NewDigest()
	a.AddFloat64(math.NaN())

	b := NewDigest()
	b.AddFloat64(math.Float64frombits(0x7ff8000000000001))

	require.Equal(t, a.Sum64(), b.Sum64())
}

func TestDigestDeterministic(t *testing.T) {
	sum := func() uint64 {
		d := NewDigest()
		d.AddByte(1)
		d.AddString("x")
		d.AddFloat64(3.5)
		d.AddUint64(42)

		return d.Sum64()
	}

	require.Equal(t, sum(), sum())
}
