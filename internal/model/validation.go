package model

import "fmt"

// ValidationReport summarizes how many scraped ids the lookup failed to return.
// It is informational only; a non-zero Missing count is not an error.
type ValidationReport struct {
	// Total is the number of ids in the merged scrape set, duplicates included.
	Total int `json:"total"`

	// Missing is the number of distinct scraped ids absent from the lookup results.
	Missing int `json:"missing"`

	// MissingIDs lists the missing ids in first-seen order.
	MissingIDs []ID `json:"missing_ids,omitempty"`
}

// Found returns the number of ids that are not missing.
func (r ValidationReport) Found() int {
	return r.Total - r.Missing
}

// String returns the one-line human-readable report.
func (r ValidationReport) String() string {
	return fmt.Sprintf("Number of tweets missing in lookup: %d of %d", r.Missing, r.Total)
}
