// Package pipeline executes the task graph for one or more periods on the
// local machine.
//
// The Executor runs the layers of a dag.Graph in order. Tasks within a
// layer are independent and run concurrently, bounded by the configured
// concurrency. When a task fails, every task downstream of it is marked
// upstream_failed and never started, while unrelated branches continue.
//
// With a Store attached, task states are recorded per (dag, period, task).
// Tasks that already succeeded for a period are skipped on a later run of
// the same period unless forced, which makes re-running a partially failed
// period cheap.
package pipeline
