// Package csvio reads and writes the CSV files exchanged between pipeline
// stages. Files always carry a header row; readers select columns by header
// name and fail fast when a required column is absent.
package csvio
