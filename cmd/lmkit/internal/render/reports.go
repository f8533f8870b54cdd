package render

import (
	"github.com/google/uuid"

	"github.com/arloliu/lmkit"
	"github.com/arloliu/lmkit/anova"
	"github.com/arloliu/lmkit/correlation"
	"github.com/arloliu/lmkit/predict"
)

// RegressionReport is the output of "lmkit regress".
type RegressionReport struct {
	Session  uuid.UUID                 `json:"session" yaml:"session"`
	Source   string                    `json:"source" yaml:"source"`
	Analysis *lmkit.RegressionAnalysis `json:"analysis" yaml:"analysis"`
	// Prediction holds the rows of --predict, if given.
	Prediction *predict.Result `json:"prediction,omitempty" yaml:"prediction,omitempty"`
}

// ANOVAReport is the output of "lmkit anova".
type ANOVAReport struct {
	Session  uuid.UUID       `json:"session" yaml:"session"`
	Source   string          `json:"source" yaml:"source"`
	Analysis *anova.Analysis `json:"analysis" yaml:"analysis"`
}

// CorrelationReport is the output of "lmkit correlate".
type CorrelationReport struct {
	Session uuid.UUID         `json:"session" yaml:"session"`
	Source  string            `json:"source" yaml:"source"`
	Matrix  correlation.Table `json:"matrix" yaml:"matrix"`
}

// SnapshotReport is the output of "lmkit snapshot".
type SnapshotReport struct {
	Source      string  `json:"source" yaml:"source"`
	Output      string  `json:"output" yaml:"output"`
	Rows        int     `json:"rows" yaml:"rows"`
	Columns     int     `json:"columns" yaml:"columns"`
	Compression string  `json:"compression" yaml:"compression"`
	BodySize    uint64  `json:"body_size" yaml:"body_size"`
	PayloadSize uint64  `json:"payload_size" yaml:"payload_size"`
	Ratio       float64 `json:"ratio" yaml:"ratio"`
	Checksum    uint64  `json:"checksum" yaml:"checksum"`
	Fingerprint uint64  `json:"fingerprint" yaml:"fingerprint"`
}

// BatchReport is the output of "lmkit run".
type BatchReport struct {
	Session uuid.UUID   `json:"session" yaml:"session"`
	Source  string      `json:"source" yaml:"source"`
	Jobs    []JobReport `json:"jobs" yaml:"jobs"`
}

// Failed returns the number of jobs that ended with an error.
func (b *BatchReport) Failed() int {
	n := 0
	for _, j := range b.Jobs {
		if j.Error != "" {
			n++
		}
	}

	return n
}

// JobReport is the outcome of one batch job. Exactly one of the result fields or Error is set.
type JobReport struct {
	Name        string                    `json:"name" yaml:"name"`
	Kind        string                    `json:"kind" yaml:"kind"`
	Error       string                    `json:"error,omitempty" yaml:"error,omitempty"`
	Regression  *lmkit.RegressionAnalysis `json:"regression,omitempty" yaml:"regression,omitempty"`
	ANOVA       *anova.Analysis           `json:"anova,omitempty" yaml:"anova,omitempty"`
	Correlation *correlation.Table        `json:"correlation,omitempty" yaml:"correlation,omitempty"`
}
