package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/nao1215/tweetcollector/internal/dag"
)

// TaskRunner executes the rendered command of a task.
type TaskRunner interface {
	Run(ctx context.Context, task dag.Task, command string) error
}

// TaskError is returned by ShellRunner when a command fails.
type TaskError struct {
	TaskID   string
	ExitCode int
	Err      error
}

// Error implements error.
func (e *TaskError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("task %s exited with status %d", e.TaskID, e.ExitCode)
	}
	return fmt.Sprintf("task %s: %v", e.TaskID, e.Err)
}

// Unwrap returns the underlying error.
func (e *TaskError) Unwrap() error {
	return e.Err
}

// ShellRunner runs commands with "bash -c", the way the scheduler's bash
// operator does. Output lines are prefixed with the task id.
type ShellRunner struct {
	// Shell is the interpreter. Empty means "bash".
	Shell string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env is appended to the current environment.
	Env []string

	// Stdout and Stderr receive the task output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	mu sync.Mutex
}

// Run implements TaskRunner.
func (r *ShellRunner) Run(ctx context.Context, task dag.Task, command string) error {
	shell := r.Shell
	if shell == "" {
		shell = "bash"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command) //nolint:gosec // Commands come from the DAG definition
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), r.Env...)

	stdout := r.prefixed(r.Stdout, task.ID)
	stderr := r.prefixed(r.Stderr, task.ID)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	stdout.flush()
	stderr.flush()
	if err == nil {
		return nil
	}

	te := &TaskError{TaskID: task.ID, Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		te.ExitCode = exitErr.ExitCode()
	}
	return te
}

func (r *ShellRunner) prefixed(w io.Writer, taskID string) *lineWriter {
	if w == nil {
		w = io.Discard
	}
	return &lineWriter{out: w, prefix: []byte("[" + taskID + "] "), mu: &r.mu}
}

// lineWriter writes complete lines to out, each with prefix. Lines of
// concurrent tasks sharing out are never interleaved.
type lineWriter struct {
	out    io.Writer
	prefix []byte
	buf    []byte
	mu     *sync.Mutex
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		if err := w.emit(w.buf[:i+1]); err != nil {
			return 0, err
		}
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// flush writes a trailing partial line.
func (w *lineWriter) flush() {
	if len(w.buf) > 0 {
		_ = w.emit(append(w.buf, '\n'))
		w.buf = nil
	}
}

func (w *lineWriter) emit(line []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.out.Write(w.prefix); err != nil {
		return err
	}
	_, err := w.out.Write(line)
	return err
}
