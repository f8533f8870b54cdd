package regression

import (
	"fmt"

	"github.com/arloliu/lmkit/dataset"
	"github.com/arloliu/lmkit/errs"
	"github.com/arloliu/lmkit/format"
)

// Spec names the response and predictor columns of a regression model.
type Spec struct {
	// Response is the numeric column being modeled.
	Response string `json:"response" yaml:"response"`
	// Predictors are the explanatory columns, numeric or categorical, in design order.
	Predictors []string `json:"predictors" yaml:"predictors"`
}

// Validate checks the specification against the dataset schema.
//
// It returns an error wrapping errs.ErrInvalidSpec when the response is missing or not numeric,
// when the predictor list is empty or has duplicates, when the response is listed as a
// predictor, or when a predictor is missing or text-typed.
func (s Spec) Validate(ds *dataset.Dataset) error {
	if s.Response == "" {
		return fmt.Errorf("%w: response not set", errs.ErrInvalidSpec)
	}

	resp, ok := ds.Column(s.Response)
	if !ok {
		return fmt.Errorf("%w: response %q not found", errs.ErrInvalidSpec, s.Response)
	}
	if resp.Type() != format.TypeNumeric {
		return fmt.Errorf("%w: response %q is %s, must be numeric", errs.ErrInvalidSpec, s.Response, resp.Type())
	}

	if len(s.Predictors) == 0 {
		return fmt.Errorf("%w: no predictors", errs.ErrInvalidSpec)
	}

	seen := make(map[string]struct{}, len(s.Predictors))
	for _, name := range s.Predictors {
		if name == s.Response {
			return fmt.Errorf("%w: response %q listed as a predictor", errs.ErrInvalidSpec, name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate predictor %q", errs.ErrInvalidSpec, name)
		}
		seen[name] = struct{}{}

		col, ok := ds.Column(name)
		if !ok {
			return fmt.Errorf("%w: predictor %q not found", errs.ErrInvalidSpec, name)
		}
		if col.Type() == format.TypeText {
			return fmt.Errorf("%w: predictor %q is free text", errs.ErrInvalidSpec, name)
		}
	}

	return nil
}
