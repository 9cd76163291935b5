package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/tweetcollector/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *TaskDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %s", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("reopening keeps data", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		ctx := context.Background()
		if err := db.SetTaskState(ctx, TaskInstance{DAGID: "d", DS: "2019-01-01", TaskID: "t", RunID: "r", State: model.TaskStateSuccess}); err != nil {
			t.Fatal(err)
		}
		if err := db.Close(); err != nil {
			t.Fatal(err)
		}

		db, err = Open(dir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to reopen: %v", err)
		}
		defer db.Close()

		states, err := db.TaskStates(ctx, "d", "2019-01-01")
		if err != nil {
			t.Fatal(err)
		}
		if states["t"] != model.TaskStateSuccess {
			t.Errorf("expected success after reopen, got %v", states["t"])
		}
	})
}

// TestRuns tests run bookkeeping.
func TestRuns(t *testing.T) {
	t.Parallel()

	t.Run("runs are listed newest first", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		var ids []string
		for i, ds := range []string{"2019-01-01", "2019-02-01", "2019-03-01"} {
			db.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
			id, err := db.StartRun(ctx, "tweet_collector", ds)
			if err != nil {
				t.Fatal(err)
			}
			ids = append(ids, id)
		}
		if _, err := db.StartRun(ctx, "other", "2019-01-01"); err != nil {
			t.Fatal(err)
		}
		if err := db.FinishRun(ctx, ids[0], model.TaskStateSuccess); err != nil {
			t.Fatal(err)
		}

		runs, err := db.ListRuns(ctx, "tweet_collector", 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(runs))
		}
		if runs[0].ID != ids[2] || runs[2].ID != ids[0] {
			t.Errorf("expected newest first, got %s ... %s", runs[0].DS, runs[2].DS)
		}
		if runs[2].State != model.TaskStateSuccess || runs[2].FinishedAt.IsZero() {
			t.Errorf("expected finished successful run, got %+v", runs[2])
		}
		if runs[0].State != model.TaskStateRunning || !runs[0].FinishedAt.IsZero() {
			t.Errorf("expected unfinished running run, got %+v", runs[0])
		}
		if !runs[1].StartedAt.Equal(base.Add(time.Minute)) {
			t.Errorf("expected start %v, got %v", base.Add(time.Minute), runs[1].StartedAt)
		}

		limited, err := db.ListRuns(ctx, "tweet_collector", 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(limited) != 1 {
			t.Errorf("expected 1 run with limit, got %d", len(limited))
		}
	})

	t.Run("finishing an unknown run", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		if err := db.FinishRun(context.Background(), "nope", model.TaskStateFailed); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})
}

// TestTaskInstances tests task state upserts.
func TestTaskInstances(t *testing.T) {
	t.Parallel()

	t.Run("latest state wins and tries are counted", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		ti := TaskInstance{DAGID: "tweet_collector", DS: "2019-01-01", TaskID: "lookup_tweets", RunID: "r1"}

		for _, step := range []struct {
			state model.TaskState
			err   string
		}{
			{model.TaskStateRunning, ""},
			{model.TaskStateFailed, "exit status 1"},
			{model.TaskStateRunning, ""},
			{model.TaskStateSuccess, ""},
		} {
			ti.State = step.state
			ti.Error = step.err
			if err := db.SetTaskState(ctx, ti); err != nil {
				t.Fatal(err)
			}
		}

		instances, err := db.TaskInstances(ctx, "tweet_collector", "2019-01-01")
		if err != nil {
			t.Fatal(err)
		}
		if len(instances) != 1 {
			t.Fatalf("expected one instance, got %d", len(instances))
		}
		got := instances[0]
		if got.State != model.TaskStateSuccess {
			t.Errorf("expected success, got %v", got.State)
		}
		if got.TryNumber != 2 {
			t.Errorf("expected 2 tries, got %d", got.TryNumber)
		}
		if got.Error != "" {
			t.Errorf("expected error cleared, got %q", got.Error)
		}
	})

	t.Run("states are scoped by dag and period", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		for _, ti := range []TaskInstance{
			{DAGID: "a", DS: "2019-01-01", TaskID: "x", RunID: "r", State: model.TaskStateSuccess},
			{DAGID: "a", DS: "2019-01-01", TaskID: "y", RunID: "r", State: model.TaskStateUpstreamFailed},
			{DAGID: "a", DS: "2019-02-01", TaskID: "x", RunID: "r", State: model.TaskStateFailed},
			{DAGID: "b", DS: "2019-01-01", TaskID: "x", RunID: "r", State: model.TaskStateFailed},
		} {
			if err := db.SetTaskState(ctx, ti); err != nil {
				t.Fatal(err)
			}
		}

		states, err := db.TaskStates(ctx, "a", "2019-01-01")
		if err != nil {
			t.Fatal(err)
		}
		if len(states) != 2 || states["x"] != model.TaskStateSuccess || states["y"] != model.TaskStateUpstreamFailed {
			t.Errorf("unexpected states %v", states)
		}

		empty, err := db.TaskStates(ctx, "a", "2020-01-01")
		if err != nil {
			t.Fatal(err)
		}
		if len(empty) != 0 {
			t.Errorf("expected no states, got %v", empty)
		}
	})
}

// TestParseTimestamp tests the accepted formats.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, s := range []string{"2024-01-02 03:04:05.000", "2024-01-02 03:04:05", "2024-01-02T03:04:05Z"} {
		if got := parseTimestamp(s); !got.Equal(want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", s, got, want)
		}
	}
	if !parseTimestamp("").IsZero() {
		t.Error("expected zero time for empty string")
	}
}
