package merge

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/tweetcollector/internal/csvio"
	"github.com/nao1215/tweetcollector/internal/model"
)

// ErrNoInput is returned when Merge is called without input files.
var ErrNoInput = errors.New("no input files")

// Stats describes one merge.
type Stats struct {
	// Files is the number of input files read.
	Files int

	// InputRows is the number of rows across all input files.
	InputRows int

	// Duplicates is the number of rows dropped because their id was already seen.
	Duplicates int

	// OutputRows is the number of rows in the merged table.
	OutputRows int
}

// Merge reads the scrape run files at paths and returns the deduplicated union.
// Any file that cannot be read, or lacks the date or id column, aborts the
// whole merge.
func Merge(paths []string) (model.ScrapeTable, error) {
	table, _, err := MergeWithStats(paths)
	return table, err
}

// MergeWithStats is Merge that also reports row counts.
func MergeWithStats(paths []string) (model.ScrapeTable, Stats, error) {
	if len(paths) == 0 {
		return nil, Stats{}, ErrNoInput
	}

	tables := make([]model.ScrapeTable, 0, len(paths))
	for _, path := range paths {
		table, err := csvio.ReadScrapeTable(path)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("load scrape file: %w", err)
		}
		slog.Debug("loaded scrape file", "path", path, "rows", len(table))
		tables = append(tables, table)
	}

	merged, stats := Dedupe(tables...)
	stats.Files = len(paths)
	return merged, stats, nil
}

// Dedupe concatenates tables and drops rows with an id already seen.
func Dedupe(tables ...model.ScrapeTable) (model.ScrapeTable, Stats) {
	var stats Stats
	for _, t := range tables {
		stats.InputRows += len(t)
	}

	seen := make(model.IDSet, stats.InputRows)
	merged := make(model.ScrapeTable, 0, stats.InputRows)
	for _, t := range tables {
		for _, r := range t {
			if seen.Contains(r.ID) {
				stats.Duplicates++
				continue
			}
			seen[r.ID] = struct{}{}
			merged = append(merged, r)
		}
	}

	stats.OutputRows = len(merged)
	return merged, stats
}

// Write writes a merged table to path, creating parent directories.
func Write(path string, table model.ScrapeTable) error {
	if err := csvio.WriteScrapeTable(path, table); err != nil {
		return fmt.Errorf("write merged file: %w", err)
	}
	return nil
}
