// Package database provides SQLite-based storage of DAG runs and task
// instance states.
//
// The store backs "dag run" and "dag status": a task that succeeded for a
// period is skipped when the period is run again, and the state of every
// task of a period can be inspected afterwards. Task instances are keyed by
// (dag_id, ds, task_id), so the latest attempt of a task for a period wins.
//
// SQLite is used through modernc.org/sqlite, which is CGO-free and keeps the
// whole store in a single file next to the user's other application data.
// Validation reports are printed, never stored.
package database
