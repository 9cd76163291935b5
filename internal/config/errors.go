package config

import (
	"errors"
	"fmt"
)

// Configuration validation errors returned by Validate.
var (
	// ErrInvalidBatchSize is returned when the lookup batch size is outside 1..100.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be between 1 and 100")

	// ErrInvalidRetryCount is returned when the retry count is negative.
	ErrInvalidRetryCount = errors.New("invalid retry count: must be non-negative")

	// ErrInvalidRetryDelay is returned when the retry delay is negative.
	ErrInvalidRetryDelay = errors.New("invalid retry delay: must be non-negative")

	// ErrNoDAGID is returned when the DAG has no identifier.
	ErrNoDAGID = errors.New("dag id cannot be empty")

	// ErrNoQuery is returned when no search query is configured.
	ErrNoQuery = errors.New("search query cannot be empty")

	// ErrInvalidScrapeRuns is returned when the number of scrape runs is not positive.
	ErrInvalidScrapeRuns = errors.New("invalid scrape runs: must be positive")

	// ErrNoOutputFolder is returned when no output folder is configured.
	ErrNoOutputFolder = errors.New("output folder cannot be empty")

	// ErrInvalidSchedule is returned for an unsupported schedule preset.
	ErrInvalidSchedule = errors.New("invalid schedule: must be @daily, @weekly, @monthly or @yearly")

	// ErrInvalidStartDate is returned when the start date is not YYYY-MM-DD.
	ErrInvalidStartDate = errors.New("invalid start date: must be YYYY-MM-DD")

	// ErrInvalidConcurrency is returned when the task concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")
)

// ErrNoCredentials is returned when neither a credentials path nor the
// TWITTER_CREDENTIALS environment variable is set.
var ErrNoCredentials = errors.New("no twitter credentials: pass --twitter_cred or set " + CredentialsEnv)

// CredentialsError describes a credentials document that cannot be used.
type CredentialsError struct {
	// Path is the credentials file.
	Path string

	// Field is the missing field, if the document parsed but was incomplete.
	Field string

	// Err is the underlying read or parse error.
	Err error
}

// Error implements error.
func (e *CredentialsError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid twitter credentials %s: missing %q", e.Path, e.Field)
	}
	return fmt.Sprintf("invalid twitter credentials %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *CredentialsError) Unwrap() error {
	return e.Err
}
