// Package config loads the YAML batch configuration of "lmkit run".
//
// A configuration names one data file and a list of independent jobs over it:
//
//	data: ${DATA_DIR}/houses.csv
//	confidence: 0.95
//	ingest:
//	  max_levels: 20
//	  types:
//	    zip: categorical
//	jobs:
//	  - name: price
//	    kind: regression
//	    response: price
//	    predictors: [area, rooms, district]
//	    split: 0.7
//	    seed: 42
//	  - name: district
//	    kind: anova
//	    factor: district
//	    response: price
//	  - name: numeric
//	    kind: correlation
//
// Environment references are expanded before parsing. Unknown keys are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/lmkit/format"
	"github.com/arloliu/lmkit/ingest"
)

// Job kinds.
const (
	KindRegression  = "regression"
	KindANOVA       = "anova"
	KindCorrelation = "correlation"
)

// Defaults applied to omitted job settings.
const (
	DefaultSplit      = 0.7
	DefaultSeed       = 42
	DefaultConfidence = 0.95
)

var v *validator.Validate

func init() {
	v = validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}

		return name
	})
	if err := v.RegisterValidation("columntype", validateColumnType); err != nil {
		panic(err)
	}
}

func validateColumnType(fl validator.FieldLevel) bool {
	_, ok := format.ParseColumnType(fl.Field().String())
	return ok
}

// Config is a batch configuration.
type Config struct {
	// Data is the CSV-like file or snapshot every job runs on. A relative path is resolved
	// against the directory of the configuration file.
	Data       string  `yaml:"data" validate:"required"`
	Confidence float64 `yaml:"confidence" validate:"gt=0,lt=1"`
	Ingest     Ingest  `yaml:"ingest"`
	Jobs       []Job   `yaml:"jobs" validate:"required,min=1,dive"`
}

// Ingest tunes how the data file is read.
type Ingest struct {
	// Delimiter is a single character; empty means auto-detect.
	Delimiter string            `yaml:"delimiter" validate:"omitempty,len=1"`
	MaxLevels int               `yaml:"max_levels" validate:"omitempty,min=1"`
	Missing   []string          `yaml:"missing"`
	Types     map[string]string `yaml:"types" validate:"dive,keys,required,endkeys,columntype"`
}

// Job is one analysis.
type Job struct {
	Name       string   `yaml:"name" validate:"required"`
	Kind       string   `yaml:"kind" validate:"required,oneof=regression anova correlation"`
	Response   string   `yaml:"response" validate:"required_unless=Kind correlation"`
	Predictors []string `yaml:"predictors" validate:"required_if=Kind regression,dive,required"`
	Factor     string   `yaml:"factor" validate:"required_if=Kind anova"`
	Split      float64  `yaml:"split" validate:"gte=0.5,lte=1"`
	Seed       *uint64  `yaml:"seed"`
	// Confidence overrides the configuration-wide level for this job.
	Confidence float64 `yaml:"confidence" validate:"gt=0,lt=1"`
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if cfg.Data != "" && !filepath.IsAbs(cfg.Data) {
		cfg.Data = filepath.Join(filepath.Dir(path), cfg.Data)
	}

	return cfg, nil
}

// Parse decodes a configuration, expands environment references, fills defaults and
// validates the result.
func Parse(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(raw)))))
	dec.KnownFields(true)

	cfg := &Config{}
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty config")
		}

		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the struct tags and that job names are unique.
func (c *Config) Validate() error {
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag())
			}

			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}

		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]struct{}, len(c.Jobs))
	for _, j := range c.Jobs {
		if _, dup := seen[j.Name]; dup {
			return fmt.Errorf("invalid config: duplicate job name %q", j.Name)
		}
		seen[j.Name] = struct{}{}
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Confidence == 0 {
		c.Confidence = DefaultConfidence
	}
	for i := range c.Jobs {
		j := &c.Jobs[i]
		if j.Split == 0 {
			j.Split = DefaultSplit
		}
		if j.Seed == nil {
			seed := uint64(DefaultSeed)
			j.Seed = &seed
		}
		if j.Confidence == 0 {
			j.Confidence = c.Confidence
		}
	}
}

// SplitSeed returns the seed of the train/test split.
func (j Job) SplitSeed() uint64 {
	if j.Seed == nil {
		return DefaultSeed
	}

	return *j.Seed
}

// IngestOptions converts the ingest section into ingest options.
func (c *Config) IngestOptions() []ingest.Option {
	var opts []ingest.Option

	if c.Ingest.Delimiter != "" {
		opts = append(opts, ingest.WithDelimiter([]rune(c.Ingest.Delimiter)[0]))
	}
	if c.Ingest.MaxLevels > 0 {
		opts = append(opts, ingest.WithMaxLevels(c.Ingest.MaxLevels))
	}
	if len(c.Ingest.Missing) > 0 {
		opts = append(opts, ingest.WithMissing(c.Ingest.Missing...))
	}
	for name, typ := range c.Ingest.Types {
		t, _ := format.ParseColumnType(typ)
		opts = append(opts, ingest.WithColumnType(name, t))
	}

	return opts
}
