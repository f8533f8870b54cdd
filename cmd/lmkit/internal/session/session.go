// Package session holds the state of one lmkit invocation: the dataset it loaded and the
// model it most recently fitted.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arloliu/lmkit/dataset"
	"github.com/arloliu/lmkit/errs"
	"github.com/arloliu/lmkit/ingest"
	"github.com/arloliu/lmkit/internal/logging"
	"github.com/arloliu/lmkit/regression"
)

// Session is the explicit replacement for process-wide "current data" and "current model".
// It is not safe for concurrent mutation; the batch runner shares only its dataset, which is
// immutable once loaded.
type Session struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Source    string    `json:"source,omitempty" yaml:"source,omitempty"`

	logger  logrus.FieldLogger
	dataset *dataset.Dataset
	model   *regression.Model
}

// New starts an empty session.
func New(logger logrus.FieldLogger) *Session {
	s := &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
	}
	s.logger = logging.OrDiscard(logger).WithField("session", s.ID.String())

	return s
}

// Logger returns the session-scoped logger.
func (s *Session) Logger() logrus.FieldLogger {
	return s.logger
}

// Load reads a CSV-like file or snapshot and makes it the current dataset.
// A model fitted against different data is dropped.
func (s *Session) Load(path string, opts ...ingest.Option) (*dataset.Dataset, error) {
	opts = append(opts, ingest.WithLogger(s.logger))
	ds, err := ingest.ReadFile(path, opts...)
	if err != nil {
		return nil, err
	}

	s.SetDataset(path, ds)

	return ds, nil
}

// SetDataset replaces the current dataset.
func (s *Session) SetDataset(source string, ds *dataset.Dataset) {
	s.Source = source
	s.dataset = ds

	if s.model != nil && (ds == nil || s.model.Fingerprint() != ds.Fingerprint()) {
		s.logger.WithField("source", source).Debug("dataset changed, dropping fitted model")
		s.model = nil
	}

	if ds != nil {
		s.logger.WithFields(logrus.Fields{
			"source":      source,
			"rows":        ds.Rows(),
			"columns":     ds.NumColumns(),
			"fingerprint": ds.Fingerprint(),
		}).Debug("dataset loaded")
	}
}

// Dataset returns the current dataset.
func (s *Session) Dataset() (*dataset.Dataset, error) {
	if s.dataset == nil {
		return nil, fmt.Errorf("%w: no dataset loaded", errs.ErrInvalidInput)
	}

	return s.dataset, nil
}

// SetModel records m as the most recently fitted model.
func (s *Session) SetModel(m *regression.Model) {
	s.model = m
}

// Model returns the most recently fitted model. It fails with errs.ErrModelNotFit when no
// model was fitted against the current dataset.
func (s *Session) Model() (*regression.Model, error) {
	if s.model == nil {
		return nil, errs.ErrModelNotFit
	}

	return s.model, nil
}
