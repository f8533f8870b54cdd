package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/arloliu/lmkit/errs"
	"github.com/arloliu/lmkit/format"
)

// Re-exported for callers that only import dataset.
const (
	TypeNumeric     = format.TypeNumeric
	TypeCategorical = format.TypeCategorical
	TypeText        = format.TypeText
)

const (
	// MinSplitFraction is the smallest accepted training fraction.
	MinSplitFraction = 0.5
	// MaxSplitFraction is the largest accepted training fraction.
	MaxSplitFraction = 1.0
	// MinTrainRows is the smallest training set a split may produce.
	MinTrainRows = 2
)

// Split is a reproducible partition of row indices into training and test sets.
// Both index lists are sorted ascending and together cover every row exactly once.
type Split struct {
	Train    []int   `json:"train" yaml:"train"`
	Test     []int   `json:"test" yaml:"test"`
	Fraction float64 `json:"fraction" yaml:"fraction"`
	Seed     uint64  `json:"seed" yaml:"seed"`
}

// NewSplit partitions rows 0..n-1 with the given training fraction and seed.
//
// The training set holds round(n*fraction) rows chosen uniformly at random by a PCG generator
// seeded from seed, so the same (n, fraction, seed) always yields the same split. A fraction
// of 1 puts every row in the training set and leaves Test empty.
//
// It fails with errs.ErrInvalidSpec when fraction lies outside [0.5, 1] and with
// errs.ErrInsufficientData when fewer than two training rows would result.
func NewSplit(n int, fraction float64, seed uint64) (Split, error) {
	if math.IsNaN(fraction) || fraction < MinSplitFraction || fraction > MaxSplitFraction {
		return Split{}, fmt.Errorf("%w: split fraction %v outside [%v, %v]",
			errs.ErrInvalidSpec, fraction, MinSplitFraction, MaxSplitFraction)
	}

	k := int(math.Round(float64(n) * fraction))
	if k < MinTrainRows {
		return Split{}, fmt.Errorf("%w: split of %d rows leaves %d training rows",
			errs.ErrInsufficientData, n, k)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	perm := rng.Perm(n)

	train := slices.Clone(perm[:k])
	test := slices.Clone(perm[k:])
	slices.Sort(train)
	slices.Sort(test)

	return Split{Train: train, Test: test, Fraction: fraction, Seed: seed}, nil
}

// AllRows returns the indices 0..n-1.
func AllRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}

	return rows
}
