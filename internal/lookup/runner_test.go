package lookup

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/nao1215/tweetcollector/internal/config"
	"github.com/nao1215/tweetcollector/internal/csvio"
	"github.com/nao1215/tweetcollector/internal/model"
	"github.com/nao1215/tweetcollector/internal/twitter"
)

// writeScrapeCSV writes a merged scrape file with the given ids.
func writeScrapeCSV(t *testing.T, ids []model.ID) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "merged", "output_get_old_tweets_2019-01-01.csv")
	table := make(model.ScrapeTable, len(ids))
	for i, id := range ids {
		table[i] = model.ScrapeRecord{Date: "2019-01-01 10:00:00", ID: id}
	}
	if err := csvio.WriteScrapeTable(path, table); err != nil {
		t.Fatal(err)
	}
	return path
}

// readLines returns the non-empty lines of path.
func readLines(t *testing.T, path string) []string {
	t.Helper()

	f, err := os.Open(path) //nolint:gosec // test file
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var lines []string
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		t.Fatal(err)
	}
	return lines
}

// TestRun tests the file handling of the lookup stage.
func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("no errors leaves the errors file absent", func(t *testing.T) {
		t.Parallel()

		ids := makeIDs(5)
		input := writeScrapeCSV(t, ids)
		dir := t.TempDir()
		paths := Paths{
			Input:   input,
			Results: filepath.Join(dir, "lookup", "output_lookup_2019-01-01.json"),
			Errors:  filepath.Join(dir, "lookup", "errors_lookup_2019-01-01.json"),
		}

		var out bytes.Buffer
		sum, err := Run(context.Background(), &fakeAPI{}, paths, WithOutput(&out))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if sum.IDs != 5 || sum.Found != 5 || sum.Errors != 0 || sum.ErrorsWritten {
			t.Errorf("unexpected summary %+v", sum)
		}
		if _, err := os.Stat(paths.Errors); !os.IsNotExist(err) {
			t.Errorf("expected no errors file, stat returned %v", err)
		}
		if got := len(readLines(t, paths.Results)); got != 5 {
			t.Errorf("expected 5 result lines, got %d", got)
		}

		want := "5 tweets found\nQuery chunk 1:5 of 5\n5 tweets found, 0 errors\n"
		if out.String() != want {
			t.Errorf("expected output %q, got %q", want, out.String())
		}
	})

	t.Run("errors file has one line per error", func(t *testing.T) {
		t.Parallel()

		ids := makeIDs(3)
		input := writeScrapeCSV(t, ids)
		dir := t.TempDir()
		paths := Paths{
			Input:   input,
			Results: filepath.Join(dir, "results.json"),
			Errors:  filepath.Join(dir, "errors.json"),
		}
		api := &fakeAPI{fail: map[int]error{0: &twitter.APIError{Code: 0, StatusCode: 503, Reason: "Service Unavailable"}}}

		sum, err := Run(context.Background(), api, paths)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !sum.ErrorsWritten {
			t.Error("expected errors file written")
		}

		lines := readLines(t, paths.Errors)
		if len(lines) != 3 {
			t.Fatalf("expected 3 error lines, got %d", len(lines))
		}
		want := `{"id":[1000,1001,1002],"code":0,"message":"Service Unavailable"}`
		for i, line := range lines {
			if line != want {
				t.Errorf("line %d: expected %s, got %s", i, want, line)
			}
		}

		info, err := os.Stat(paths.Results)
		if err != nil {
			t.Fatalf("expected results file even when empty: %v", err)
		}
		if info.Size() != 0 {
			t.Errorf("expected empty results file, got %d bytes", info.Size())
		}
	})

	t.Run("empty errors path never writes errors", func(t *testing.T) {
		t.Parallel()

		input := writeScrapeCSV(t, makeIDs(2))
		dir := t.TempDir()
		api := &fakeAPI{fail: map[int]error{0: errors.New("boom")}}

		sum, err := Run(context.Background(), api, Paths{Input: input, Results: filepath.Join(dir, "r.json")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sum.Errors != 2 || sum.ErrorsWritten {
			t.Errorf("expected 2 unwritten errors, got %+v", sum)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("expected only the results file, got %d entries", len(entries))
		}
	})

	t.Run("every result id was requested", func(t *testing.T) {
		t.Parallel()

		ids := makeIDs(120)
		input := writeScrapeCSV(t, ids)
		results := filepath.Join(t.TempDir(), "results.json")
		api := &fakeAPI{deleted: map[model.ID]bool{"1003": true, "1110": true}}

		sum, err := Run(context.Background(), api, Paths{Input: input, Results: results})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sum.Found != 118 {
			t.Errorf("expected 118 found, got %d", sum.Found)
		}

		requested := model.NewIDSet(ids)
		for i, line := range readLines(t, results) {
			id := gjson.Get(line, "id")
			if !id.Exists() {
				t.Fatalf("line %d has no id", i+1)
			}
			if !requested.Contains(model.ID(id.Raw)) {
				t.Errorf("line %d: id %s was never requested", i+1, id.Raw)
			}
		}
	})

	t.Run("missing id column is fatal and writes nothing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := filepath.Join(dir, "bad.csv")
		if err := os.WriteFile(input, []byte("date,text\n2019-01-01,hello\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		results := filepath.Join(dir, "results.json")

		_, err := Run(context.Background(), &fakeAPI{}, Paths{Input: input, Results: results})
		if !errors.Is(err, csvio.ErrMissingColumn) {
			t.Fatalf("expected ErrMissingColumn, got %v", err)
		}
		if _, err := os.Stat(results); !os.IsNotExist(err) {
			t.Error("expected no results file")
		}
	})

	t.Run("invalid batch size is fatal and writes nothing", func(t *testing.T) {
		t.Parallel()

		input := writeScrapeCSV(t, []model.ID{"1"})
		results := filepath.Join(t.TempDir(), "results.json")

		api := &fakeAPI{}
		_, err := Run(context.Background(), api, Paths{Input: input, Results: results}, WithBatchSize(101))
		if !errors.Is(err, config.ErrInvalidBatchSize) {
			t.Fatalf("expected ErrInvalidBatchSize, got %v", err)
		}
		if len(api.calls) != 0 {
			t.Errorf("expected no calls, got %d", len(api.calls))
		}
		if _, err := os.Stat(results); !os.IsNotExist(err) {
			t.Error("expected no results file")
		}
	})

	t.Run("html characters are not escaped", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.json")
		docs := []model.LookupRecord{model.LookupRecord("{\n  \"id\": 1,\n  \"full_text\": \"a & b <3\"\n}")}
		if err := WriteNDJSON(path, docs); err != nil {
			t.Fatal(err)
		}
		lines := readLines(t, path)
		if len(lines) != 1 || !strings.Contains(lines[0], `"a & b <3"`) {
			t.Errorf("expected compact unescaped line, got %q", lines)
		}
	})
}
