// Package logging builds the logrus loggers used across lmkit.
//
// Library packages accept a logrus.FieldLogger through their WithLogger option and fall
// back to Discard, so embedding lmkit never writes to the host's stderr unless asked to.
// The CLI builds a real logger with New from its --log-level and --log-format flags.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Format selects the logrus formatter.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)

	return l
}()

// Discard returns a logger that drops every entry.
func Discard() logrus.FieldLogger {
	return discard
}

// New creates a logger writing to w at the given level ("debug", "info", ...) and format.
func New(w io.Writer, level string, format Format) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)

	switch format {
	case FormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	case FormatText, "":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	return l, nil
}

// OrDiscard returns l, or the discard logger when l is nil.
func OrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return discard
	}

	return l
}
