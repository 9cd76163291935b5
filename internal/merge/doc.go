// Package merge combines the CSV files of several scrape runs into one
// deduplicated set keyed by tweet id.
//
// Rows are concatenated in argument order and a row is dropped when its id
// was already seen, so the first occurrence of an id always wins.
package merge
