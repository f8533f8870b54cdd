package dataset

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/lmkit/errs"
)

func TestNewSplitSizes(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		fraction  float64
		wantTrain int
	}{
		{"half", 10, 0.5, 5},
		{"rounded", 10, 0.75, 8},
		{"all", 10, 1.0, 10},
		{"small", 3, 0.5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSplit(tt.n, tt.fraction, 7)
			require.NoError(t, err)
			require.Len(t, s.Train, tt.wantTrain)
			require.Len(t, s.Test, tt.n-tt.wantTrain)
			require.True(t, slices.IsSorted(s.Train))
			require.True(t, slices.IsSorted(s.Test))

			all := append(slices.Clone(s.Train), s.Test...)
			slices.Sort(all)
			require.Equal(t, AllRows(tt.n), all)
		})
	}
}

func TestNewSplitDeterministic(t *testing.T) {
	a, err := NewSplit(100, 0.8, 1234)
	require.NoError(t, err)
	b, err := NewSplit(100, 0.8, 1234)
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := NewSplit(100, 0.8, 1235)
	require.NoError(t, err)
	require.NotEqual(t, a.Train, c.Train)
}

func TestNewSplitRejects(t *testing.T) {
	_, err := NewSplit(10, 0.4, 1)
	require.ErrorIs(t, err, errs.ErrInvalidSpec)

	_, err = NewSplit(10, 1.1, 1)
	require.ErrorIs(t, err, errs.ErrInvalidSpec)

	_, err = NewSplit(2, 0.5, 1)
	require.ErrorIs(t, err, errs.ErrInsufficientData)
}
