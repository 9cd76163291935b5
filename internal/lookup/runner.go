package lookup

import (
	"context"
	"fmt"

	"github.com/nao1215/tweetcollector/internal/csvio"
)

// Paths are the files of one lookup stage.
type Paths struct {
	// Input is the merged scrape CSV; only its id column is read.
	Input string

	// Results receives one tweet document per line.
	Results string

	// Errors receives one error record per line. Empty disables the file.
	Errors string
}

// Summary reports the counts of a Run.
type Summary struct {
	IDs           int
	Found         int
	Errors        int
	Batches       int
	FailedBatches int

	// ErrorsWritten is false when no errors file was created.
	ErrorsWritten bool
}

// Run reads the ids of p.Input, looks them up and writes the outcome.
//
// The results file is always written, even when empty. The errors file is
// written only when p.Errors is set and at least one batch failed; otherwise
// it is not created and any previous file at that path is left alone.
// An invalid batch size or a missing input file or id column is fatal;
// failed batches are not.
func Run(ctx context.Context, api API, p Paths, opts ...Option) (*Summary, error) {
	o := newOptions(opts)
	if err := o.validate(); err != nil {
		return nil, err
	}

	ids, err := csvio.ReadIDs(p.Input)
	if err != nil {
		return nil, err
	}
	o.logger.Info("ids loaded", "path", p.Input, "count", len(ids))
	o.printf("%d tweets found\n", len(ids))

	res, err := Lookup(ctx, api, ids, opts...)
	if err != nil {
		return nil, err
	}

	if err := WriteNDJSON(p.Results, res.Records); err != nil {
		return nil, fmt.Errorf("write results: %w", err)
	}

	sum := &Summary{
		IDs:           len(ids),
		Found:         len(res.Records),
		Errors:        len(res.Errors),
		Batches:       len(res.Batches),
		FailedBatches: res.FailedBatches(),
	}

	if p.Errors != "" && len(res.Errors) > 0 {
		if err := WriteNDJSON(p.Errors, res.Errors); err != nil {
			return nil, fmt.Errorf("write errors: %w", err)
		}
		sum.ErrorsWritten = true
	}

	o.printf("%d tweets found, %d errors\n", sum.Found, sum.Errors)
	o.logger.Info("lookup finished",
		"found", sum.Found,
		"errors", sum.Errors,
		"failed_batches", sum.FailedBatches,
	)
	return sum, nil
}
