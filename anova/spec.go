package anova

import (
	"fmt"

	"github.com/arloliu/lmkit/dataset"
	"github.com/arloliu/lmkit/errs"
	"github.com/arloliu/lmkit/format"
)

// Spec names the grouping factor and the numeric response of a one-way ANOVA.
type Spec struct {
	Factor   string `json:"factor" yaml:"factor"`
	Response string `json:"response" yaml:"response"`
}

// Validate checks the specification against the dataset schema.
//
// The factor may be categorical or numeric; numeric factors are grouped by their distinct
// values. Text factors are rejected.
func (s Spec) Validate(ds *dataset.Dataset) error {
	if s.Factor == "" || s.Response == "" {
		return fmt.Errorf("%w: factor and response must both be set", errs.ErrInvalidSpec)
	}
	if s.Factor == s.Response {
		return fmt.Errorf("%w: factor and response are the same column %q", errs.ErrInvalidSpec, s.Factor)
	}

	factor, ok := ds.Column(s.Factor)
	if !ok {
		return fmt.Errorf("%w: factor %q not found", errs.ErrInvalidSpec, s.Factor)
	}
	if factor.Type() == format.TypeText {
		return fmt.Errorf("%w: factor %q is free text", errs.ErrInvalidSpec, s.Factor)
	}

	resp, ok := ds.Column(s.Response)
	if !ok {
		return fmt.Errorf("%w: response %q not found", errs.ErrInvalidSpec, s.Response)
	}
	if resp.Type() != format.TypeNumeric {
		return fmt.Errorf("%w: response %q is %s, must be numeric", errs.ErrInvalidSpec, s.Response, resp.Type())
	}

	return nil
}
