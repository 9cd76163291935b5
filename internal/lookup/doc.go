// Package lookup hydrates scraped tweet ids into full tweet documents.
//
// Lookup splits the ids into consecutive batches and calls the API once per
// batch. A failed batch never aborts the run: every id in it is recorded as
// a LookupError and the next batch is attempted. Run wraps Lookup with the
// file handling of the pipeline stage, reading the merged scrape CSV and
// writing newline-delimited JSON results and errors.
package lookup
