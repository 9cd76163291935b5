package csvio

import (
	"errors"
	"fmt"
)

// ErrMissingColumn is wrapped by SchemaError when a required column is absent.
var ErrMissingColumn = errors.New("missing required column")

// ErrEmptyFile is returned when a file has no header row.
var ErrEmptyFile = errors.New("no header row")

// SchemaError describes a CSV file whose header lacks a required column.
type SchemaError struct {
	// Path is the file that was read.
	Path string

	// Column is the first required column that was not found.
	Column string
}

// Error implements error.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s %q", e.Path, ErrMissingColumn, e.Column)
}

// Unwrap allows errors.Is(err, ErrMissingColumn).
func (e *SchemaError) Unwrap() error {
	return ErrMissingColumn
}
