package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDegenerateFactorMatchesInvalidSpec(t *testing.T) {
	err := fmt.Errorf("factor %q: %w", "group", ErrDegenerateFactor)

	require.ErrorIs(t, err, ErrDegenerateFactor)
	require.ErrorIs(t, err, ErrInvalidSpec)
	require.NotErrorIs(t, err, ErrInsufficientData)
}

func TestSentinelsAreDistinct(t *testing.T) {
	all := []error{
		ErrInvalidSpec, ErrInsufficientData, ErrDegenerateResponse, ErrRankDeficiency,
		ErrMissingValue, ErrSchemaMismatch, ErrModelNotFit, ErrInsufficientColumns,
		ErrNotApplicable, ErrInvalidInput, ErrCorruptSnapshot,
	}

	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			require.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}
