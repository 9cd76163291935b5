package validate

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/nao1215/tweetcollector/internal/csvio"
	"github.com/nao1215/tweetcollector/internal/model"
)

// ErrNoID is wrapped by LineError when a lookup line has no id field.
var ErrNoID = errors.New("document has no id")

// ErrMalformed is wrapped by LineError when a lookup line is not valid JSON.
var ErrMalformed = errors.New("malformed JSON")

// maxLineSize bounds one lookup document. Extended tweets with entities
// stay well below this.
const maxLineSize = 16 * 1024 * 1024

// LineError reports an unusable line of a lookup results file.
type LineError struct {
	Path string
	Line int
	Err  error
}

// Error implements error.
func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *LineError) Unwrap() error {
	return e.Err
}

// Validate compares the scraped ids got with the looked-up ids.
// Total counts got with duplicates; Missing counts distinct ids of got
// absent from lookup. Extra ids in lookup are ignored.
func Validate(got, lookup []model.ID) model.ValidationReport {
	found := model.NewIDSet(lookup)
	seen := make(model.IDSet, len(got))

	report := model.ValidationReport{Total: len(got)}
	for _, id := range got {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if !found.Contains(id) {
			report.MissingIDs = append(report.MissingIDs, id)
		}
	}
	report.Missing = len(report.MissingIDs)
	return report
}

// ReadScrapeIDs reads the id column of a merged scrape CSV.
func ReadScrapeIDs(path string) ([]model.ID, error) {
	return csvio.ReadIDs(path)
}

// ReadLookupIDs reads the id of every document in a newline-delimited JSON
// results file. Every line must be a JSON object with an id. Blank lines
// are only allowed at the end of the file.
func ReadLookupIDs(path string) ([]model.ID, error) {
	f, err := os.Open(path) //nolint:gosec // Input path is chosen by the operator
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ids []model.ID
	blank := 0 // first blank line since the last document
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for n := 1; scanner.Scan(); n++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			if blank == 0 {
				blank = n
			}
			continue
		}
		if blank != 0 {
			return nil, &LineError{Path: path, Line: blank, Err: ErrMalformed}
		}
		if !gjson.ValidBytes(line) {
			return nil, &LineError{Path: path, Line: n, Err: ErrMalformed}
		}

		id := gjson.GetBytes(line, "id")
		if !id.Exists() || id.Type == gjson.Null {
			return nil, &LineError{Path: path, Line: n, Err: ErrNoID}
		}
		ids = append(ids, idOf(id))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ids, nil
}

// idOf returns the exact text of a JSON id. Numbers keep their raw digits
// so ids beyond 2^53 are not rounded.
func idOf(r gjson.Result) model.ID {
	if r.Type == gjson.Number {
		return model.ID(r.Raw)
	}
	return model.ID(r.String())
}

// Files reads both inputs and validates them.
func Files(gotPath, lookupPath string) (model.ValidationReport, error) {
	got, err := ReadScrapeIDs(gotPath)
	if err != nil {
		return model.ValidationReport{}, err
	}
	lookup, err := ReadLookupIDs(lookupPath)
	if err != nil {
		return model.ValidationReport{}, err
	}
	return Validate(got, lookup), nil
}
