// Package ingest loads datasets from delimited text and snapshot files.
//
// Every column gets an explicit type at load time. A column whose non-missing values all parse
// as numbers is numeric; otherwise it is categorical when it has at most MaxLevels distinct
// values and free text beyond that. WithColumnType overrides the inference, which is how a
// numeric code column is read as a factor.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/lmkit/dataset"
	"github.com/arloliu/lmkit/errs"
	"github.com/arloliu/lmkit/format"
	"github.com/arloliu/lmkit/internal/options"
	"github.com/arloliu/lmkit/snapshot"
)

// Delimiters lists the separators tried by detection, in preference order.
var Delimiters = []rune{',', '\t', ';', '|'}

// Read parses delimited text with a header row.
func Read(r io.Reader, opts ...Option) (*dataset.Dataset, error) {
	cfg, err := options.Build(defaultConfig(), opts...)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %w", errs.ErrInvalidInput, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	delim := cfg.Delimiter
	if delim == 0 {
		delim = DetectDelimiter(data)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", errs.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", errs.ErrInvalidInput, err)
	}
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
		if header[i] == "" {
			return nil, fmt.Errorf("%w: column %d has an empty name", errs.ErrInvalidInput, i+1)
		}
	}
	for name := range cfg.Types {
		if !slices.Contains(header, name) {
			return nil, fmt.Errorf("%w: type override for unknown column %q", errs.ErrInvalidInput, name)
		}
	}

	raw := make([][]string, len(header))
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrInvalidInput, err)
		}
		for i, v := range rec {
			raw[i] = append(raw[i], strings.TrimSpace(v))
		}
	}
	if len(raw[0]) == 0 {
		return nil, fmt.Errorf("%w: no data rows", errs.ErrInvalidInput)
	}

	cols := make([]dataset.Column, len(header))
	for i, name := range header {
		t, forced := cfg.Types[name]
		if !forced {
			t, forced = cfg.Hints[name]
		}
		if !forced {
			t = infer(raw[i], cfg.Missing, cfg.MaxLevels)
		}

		col, err := build(name, t, raw[i], cfg.Missing)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	ds, err := dataset.New(cols...)
	if err != nil {
		return nil, err
	}

	cfg.Logger.WithFields(logrus.Fields{
		"columns":   ds.NumColumns(),
		"rows":      ds.Rows(),
		"delimiter": string(delim),
	}).Debug("read delimited text")

	return ds, nil
}

// ReadFile loads a dataset from path. Snapshot files are recognized by their magic bytes;
// anything else is parsed as delimited text with opts.
func ReadFile(path string, opts ...Option) (*dataset.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidInput, err)
	}

	if snapshot.IsSnapshot(data) {
		return snapshot.Decode(data)
	}

	return Read(bytes.NewReader(data), opts...)
}

// DetectDelimiter picks the candidate delimiter occurring most often, outside quotes, on the
// first line of data. It falls back to a comma.
func DetectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	counts := make(map[rune]int, len(Delimiters))
	quoted := false
	for _, r := range string(line) {
		if r == '"' {
			quoted = !quoted
			continue
		}
		if !quoted && slices.Contains(Delimiters, r) {
			counts[r]++
		}
	}

	best, bestCount := ',', 0
	for _, d := range Delimiters {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}

	return best
}

// infer picks the column type of raw values. A column with no values at all is text.
// Tokens that parse as non-finite floats ("Inf", "nan", "infinity") do not count as numbers.
func infer(values, missing []string, maxLevels int) format.ColumnType {
	levels := make(map[string]struct{})
	numeric := true
	for _, v := range values {
		if slices.Contains(missing, v) {
			continue
		}
		levels[v] = struct{}{}
		if numeric {
			if f, err := strconv.ParseFloat(v, 64); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				numeric = false
			}
		}
	}

	switch {
	case len(levels) == 0:
		return format.TypeText
	case numeric:
		return format.TypeNumeric
	case len(levels) <= maxLevels:
		return format.TypeCategorical
	default:
		return format.TypeText
	}
}

func build(name string, t format.ColumnType, values, missing []string) (dataset.Column, error) {
	switch t {
	case format.TypeNumeric:
		nums := make([]float64, len(values))
		for i, v := range values {
			if slices.Contains(missing, v) {
				nums[i] = math.NaN()
				continue
			}

			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return dataset.Column{}, fmt.Errorf("%w: column %q row %d: %q is not a number",
					errs.ErrInvalidInput, name, i+1, v)
			}
			nums[i] = f
		}

		return dataset.NewNumeric(name, nums), nil
	default:
		strs := make([]string, len(values))
		for i, v := range values {
			if !slices.Contains(missing, v) {
				strs[i] = v
			}
		}
		if t == format.TypeCategorical {
			return dataset.NewCategorical(name, strs), nil
		}

		return dataset.NewText(name, strs), nil
	}
}
