package report

import (
	"io"

	"github.com/nao1215/tweetcollector/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// WriteValidation outputs a lookup validation report.
	// Returns the number of bytes written and any error encountered.
	WriteValidation(r model.ValidationReport) (int, error)

	// WriteDAG outputs an overview of the task graph.
	WriteDAG(v *DAGView) (int, error)
}

// MultiWriter writes to multiple Writers in order and stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteValidation outputs the report to all configured Writers.
func (m *MultiWriter) WriteValidation(r model.ValidationReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteValidation(r)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteDAG outputs the overview to all configured Writers.
func (m *MultiWriter) WriteDAG(v *DAGView) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteDAG(v)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer

	// showMissing lists the missing ids in validation reports.
	showMissing bool
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Option configures any writer of this package.
type Option func(*baseWriter)

// WithShowMissing lists every missing id in validation reports.
func WithShowMissing(show bool) Option {
	return func(b *baseWriter) {
		b.showMissing = show
	}
}

func applyOptions(b *baseWriter, opts []Option) {
	for _, opt := range opts {
		opt(b)
	}
}
