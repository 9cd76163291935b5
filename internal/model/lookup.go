package model

import "encoding/json"

// LookupRecord is a full tweet document as returned by the lookup API.
// The document is kept verbatim; the pipeline only ever reads its "id" field.
type LookupRecord = json.RawMessage

// LookupError records the failure of a lookup batch for one requested id.
//
// A failed batch yields one LookupError per id it contained. Every one of
// them carries the complete batch in ID, along with the code and message
// of the failure, so the records of a batch are identical. Consumers should
// treat identical records as one incident spanning several ids.
type LookupError struct {
	// ID holds all ids of the failed batch.
	ID []ID `json:"id"`

	// Code is the API error code, or 0 when the API did not report one.
	Code int `json:"code"`

	// Message is the human-readable failure reason.
	Message string `json:"message"`
}

// BatchError is the failure of a whole batch.
type BatchError struct {
	Code    int
	Message string
}

// Error implements error.
func (e *BatchError) Error() string {
	return e.Message
}

// BatchOutcome is the result of one lookup batch: either the returned
// records or a failure, never both.
type BatchOutcome struct {
	// Index is the zero-based position of the batch.
	Index int

	// IDs are the ids requested in this batch, in input order.
	IDs []ID

	// Records are the documents returned, in API response order.
	Records []LookupRecord

	// Err is set when the whole batch failed.
	Err *BatchError
}

// Failed reports whether the batch failed.
func (b BatchOutcome) Failed() bool {
	return b.Err != nil
}

// Errors expands a failed batch into one LookupError per requested id.
// It returns nil for a successful batch.
func (b BatchOutcome) Errors() []LookupError {
	if b.Err == nil {
		return nil
	}
	errs := make([]LookupError, 0, len(b.IDs))
	for range b.IDs {
		errs = append(errs, LookupError{
			ID:      b.IDs,
			Code:    b.Err.Code,
			Message: b.Err.Message,
		})
	}
	return errs
}
