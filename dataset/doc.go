// Package dataset provides the immutable column table that every lmkit analysis reads from.
//
// A Dataset is built from typed columns (numeric, categorical, text), never changes after
// construction, and carries an xxHash64 fingerprint of its contents. Split produces the
// seeded train/test partition used by regression fitting.
//
//	ds, err := dataset.New(
//	    dataset.NewNumeric("y", []float64{1, 2, 3, 4}),
//	    dataset.NewCategorical("group", []string{"a", "b", "a", "b"}),
//	)
//	split, err := ds.Split(0.75, 42)
package dataset
