package validate

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nao1215/tweetcollector/internal/model"
)

// ids converts strings to ids.
func ids(s ...string) []model.ID {
	out := make([]model.ID, len(s))
	for i, v := range s {
		out[i] = model.ID(v)
	}
	return out
}

// TestValidate tests the missing-id computation.
func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		got         []model.ID
		lookup      []model.ID
		wantMissing int
		wantTotal   int
		wantIDs     []model.ID
		wantString  string
	}{
		{
			name:        "two of four missing",
			got:         ids("1", "2", "3", "4"),
			lookup:      ids("1", "3"),
			wantMissing: 2,
			wantTotal:   4,
			wantIDs:     ids("2", "4"),
			wantString:  "Number of tweets missing in lookup: 2 of 4",
		},
		{
			name:        "complete lookup",
			got:         ids("1", "2"),
			lookup:      ids("2", "1"),
			wantMissing: 0,
			wantTotal:   2,
			wantString:  "Number of tweets missing in lookup: 0 of 2",
		},
		{
			name:        "duplicates count in total but once in missing",
			got:         ids("5", "5", "6"),
			lookup:      ids("6"),
			wantMissing: 1,
			wantTotal:   3,
			wantIDs:     ids("5"),
			wantString:  "Number of tweets missing in lookup: 1 of 3",
		},
		{
			name:        "extra lookup ids are ignored",
			got:         ids("1"),
			lookup:      ids("1", "99"),
			wantMissing: 0,
			wantTotal:   1,
			wantString:  "Number of tweets missing in lookup: 0 of 1",
		},
		{
			name:        "empty lookup",
			got:         ids("7", "8"),
			wantMissing: 2,
			wantTotal:   2,
			wantIDs:     ids("7", "8"),
			wantString:  "Number of tweets missing in lookup: 2 of 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := Validate(tt.got, tt.lookup)
			if r.Missing != tt.wantMissing || r.Total != tt.wantTotal {
				t.Errorf("expected %d of %d, got %d of %d", tt.wantMissing, tt.wantTotal, r.Missing, r.Total)
			}
			if !reflect.DeepEqual(r.MissingIDs, tt.wantIDs) {
				t.Errorf("expected missing ids %v, got %v", tt.wantIDs, r.MissingIDs)
			}
			if r.String() != tt.wantString {
				t.Errorf("expected %q, got %q", tt.wantString, r.String())
			}
		})
	}
}

// writeFile writes content to a temp file.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestReadLookupIDs tests NDJSON id extraction.
func TestReadLookupIDs(t *testing.T) {
	t.Parallel()

	t.Run("numeric and string ids keep their exact text", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "lookup.json",
			`{"id":1085965131018866689,"full_text":"a"}`+"\n"+
				`{"id":"42","full_text":"b"}`+"\n"+
				"\n")
		got, err := ReadLookupIDs(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := ids("1085965131018866689", "42")
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("empty file has no ids", func(t *testing.T) {
		t.Parallel()

		got, err := ReadLookupIDs(writeFile(t, "lookup.json", ""))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no ids, got %v", got)
		}
	})

	t.Run("malformed line reports its number", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "lookup.json", `{"id":1}`+"\n"+`{"id":`+"\n")
		_, err := ReadLookupIDs(path)

		var lineErr *LineError
		if !errors.As(err, &lineErr) {
			t.Fatalf("expected *LineError, got %v", err)
		}
		if lineErr.Line != 2 || !errors.Is(err, ErrMalformed) {
			t.Errorf("expected malformed line 2, got %v", err)
		}
	})

	t.Run("blank line between documents is malformed", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "lookup.json", `{"id":1}`+"\n\n   \n"+`{"id":3}`+"\n")
		got, err := ReadLookupIDs(path)

		var lineErr *LineError
		if !errors.As(err, &lineErr) {
			t.Fatalf("expected *LineError, got ids=%v err=%v", got, err)
		}
		if lineErr.Line != 2 || !errors.Is(err, ErrMalformed) {
			t.Errorf("expected malformed line 2, got %v", err)
		}
	})

	t.Run("trailing blank lines are allowed", func(t *testing.T) {
		t.Parallel()

		got, err := ReadLookupIDs(writeFile(t, "lookup.json", `{"id":1}`+"\n\n  \n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got, ids("1")) {
			t.Errorf("expected [1], got %v", got)
		}
	})

	t.Run("document without id", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "lookup.json", `{"full_text":"no id"}`+"\n")
		if _, err := ReadLookupIDs(path); !errors.Is(err, ErrNoID) {
			t.Errorf("expected ErrNoID, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := ReadLookupIDs(filepath.Join(t.TempDir(), "absent.json")); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
	})
}

// TestFiles tests validation end to end from files.
func TestFiles(t *testing.T) {
	t.Parallel()

	got := writeFile(t, "merged.csv", "date,id\n2019-01-01,1\n2019-01-01,2\n2019-01-02,3\n2019-01-03,4\n")
	lookup := writeFile(t, "lookup.json", `{"id":3}`+"\n"+`{"id":1}`+"\n")

	r, err := Files(got, lookup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.String() != "Number of tweets missing in lookup: 2 of 4" {
		t.Errorf("unexpected report %q", r.String())
	}
}
