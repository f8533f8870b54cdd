// Package render writes lmkit reports as styled terminal text, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a case-insensitive name to a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", name)
	}
}

// Renderer writes reports to one writer in one format.
type Renderer struct {
	w      io.Writer
	format Format
	styles Styles
}

// New creates a renderer. Text styling adapts to the color capabilities of w, so a pipe or
// buffer receives plain text.
func New(w io.Writer, format Format) *Renderer {
	return &Renderer{w: w, format: format, styles: NewStyles(w)}
}

// Format returns the output format.
func (r *Renderer) Format() Format {
	return r.format
}

// Render writes one report.
func (r *Renderer) Render(report any) error {
	switch r.format {
	case FormatJSON:
		data, err := json.MarshalIndent(sanitize(report), "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(r.w, string(data))

		return err

	case FormatYAML:
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()

	default:
		_, err := io.WriteString(r.w, r.text(report))
		return err
	}
}

func (r *Renderer) text(report any) string {
	switch rep := report.(type) {
	case *RegressionReport:
		return r.regression(rep)
	case *ANOVAReport:
		return r.anova(rep)
	case *CorrelationReport:
		return r.correlation(rep)
	case *SnapshotReport:
		return r.snapshot(rep)
	case *BatchReport:
		return r.batch(rep)
	default:
		return fmt.Sprintln(report)
	}
}
