package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/tweetcollector/internal/model"
)

// FileName is the database file inside the data directory.
const FileName = "tweetcollector.db"

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("dag run not found")

// TaskDB stores DAG runs and task instances.
type TaskDB struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// Options configures TaskDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so "dag status" can read while
	// a run is writing.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the task database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*TaskDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a DAG period first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; tasks of a layer report concurrently.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	tdb := &TaskDB{db: db, dbPath: dbPath, now: time.Now}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := tdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return tdb, nil
}

// Path returns the database file path.
func (t *TaskDB) Path() string {
	return t.dbPath
}

// Close closes the database connection.
func (t *TaskDB) Close() error {
	return t.db.Close()
}

func (t *TaskDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS dag_runs (
		run_id TEXT PRIMARY KEY,
		dag_id TEXT NOT NULL,
		ds TEXT NOT NULL,
		state TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_dag ON dag_runs(dag_id, started_at);

	CREATE TABLE IF NOT EXISTS task_instances (
		dag_id TEXT NOT NULL,
		ds TEXT NOT NULL,
		task_id TEXT NOT NULL,
		run_id TEXT NOT NULL,
		state TEXT NOT NULL,
		try_number INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL,
		error TEXT,
		PRIMARY KEY (dag_id, ds, task_id)
	);
	`
	_, err := t.db.ExecContext(context.Background(), schema)
	return err
}

// Run is one execution of a DAG for a period.
type Run struct {
	ID         string
	DAGID      string
	DS         string
	State      model.TaskState
	StartedAt  time.Time
	FinishedAt time.Time
}

// StartRun records a new running execution of dagID for ds and returns its id.
func (t *TaskDB) StartRun(ctx context.Context, dagID, ds string) (string, error) {
	runID := uuid.NewString()
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO dag_runs (run_id, dag_id, ds, state, started_at) VALUES (?, ?, ?, ?, ?)`,
		runID, dagID, ds, model.TaskStateRunning.String(), formatTimestamp(t.now()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}
	return runID, nil
}

// FinishRun sets the final state of a run.
func (t *TaskDB) FinishRun(ctx context.Context, runID string, state model.TaskState) error {
	res, err := t.db.ExecContext(ctx,
		`UPDATE dag_runs SET state = ?, finished_at = ? WHERE run_id = ?`,
		state.String(), formatTimestamp(t.now()), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// ListRuns returns the runs of dagID, newest first. limit <= 0 returns all.
func (t *TaskDB) ListRuns(ctx context.Context, dagID string, limit int) ([]Run, error) {
	query := `
	SELECT run_id, dag_id, ds, state, started_at, COALESCE(finished_at, '')
	FROM dag_runs
	WHERE dag_id = ?
	ORDER BY started_at DESC, rowid DESC
	`
	args := []any{dagID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var state, started, finished string
		if err := rows.Scan(&r.ID, &r.DAGID, &r.DS, &state, &started, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.State, err = model.ParseTaskState(state); err != nil {
			return nil, err
		}
		r.StartedAt = parseTimestamp(started)
		r.FinishedAt = parseTimestamp(finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// TaskInstance is the state of one task for one period.
type TaskInstance struct {
	DAGID     string
	DS        string
	TaskID    string
	RunID     string
	State     model.TaskState
	TryNumber int
	UpdatedAt time.Time
	Error     string
}

// SetTaskState upserts the instance keyed by (DAGID, DS, TaskID).
// Every transition to running counts as a new try.
func (t *TaskDB) SetTaskState(ctx context.Context, ti TaskInstance) error {
	try := 0
	if ti.State == model.TaskStateRunning {
		try = 1
	}

	query := `
	INSERT INTO task_instances (dag_id, ds, task_id, run_id, state, try_number, updated_at, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(dag_id, ds, task_id) DO UPDATE SET
		run_id = excluded.run_id,
		state = excluded.state,
		try_number = task_instances.try_number + excluded.try_number,
		updated_at = excluded.updated_at,
		error = excluded.error
	`
	_, err := t.db.ExecContext(ctx, query,
		ti.DAGID, ti.DS, ti.TaskID, ti.RunID, ti.State.String(), try,
		formatTimestamp(t.now()), nullString(ti.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to set state of %s: %w", ti.TaskID, err)
	}
	return nil
}

// TaskInstances returns every recorded instance of dagID for ds, ordered by task id.
func (t *TaskDB) TaskInstances(ctx context.Context, dagID, ds string) ([]TaskInstance, error) {
	rows, err := t.db.QueryContext(ctx, `
	SELECT dag_id, ds, task_id, run_id, state, try_number, updated_at, COALESCE(error, '')
	FROM task_instances
	WHERE dag_id = ? AND ds = ?
	ORDER BY task_id
	`, dagID, ds)
	if err != nil {
		return nil, fmt.Errorf("failed to query task instances: %w", err)
	}
	defer rows.Close()

	var out []TaskInstance
	for rows.Next() {
		var ti TaskInstance
		var state, updated string
		if err := rows.Scan(&ti.DAGID, &ti.DS, &ti.TaskID, &ti.RunID, &state, &ti.TryNumber, &updated, &ti.Error); err != nil {
			return nil, fmt.Errorf("failed to scan task instance: %w", err)
		}
		if ti.State, err = model.ParseTaskState(state); err != nil {
			return nil, err
		}
		ti.UpdatedAt = parseTimestamp(updated)
		out = append(out, ti)
	}
	return out, rows.Err()
}

// TaskStates returns the recorded state of every task of dagID for ds.
// Tasks never recorded are absent from the map.
func (t *TaskDB) TaskStates(ctx context.Context, dagID, ds string) (map[string]model.TaskState, error) {
	instances, err := t.TaskInstances(ctx, dagID, ds)
	if err != nil {
		return nil, err
	}
	states := make(map[string]model.TaskState, len(instances))
	for _, ti := range instances {
		states[ti.TaskID] = ti.State
	}
	return states, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// timestampLayout is how timestamps are stored: UTC, sortable as text.
const timestampLayout = "2006-01-02 15:04:05.000"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
}

// parseTimestamp parses s with the known formats and returns the zero time
// when none matches, including for an empty string.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
