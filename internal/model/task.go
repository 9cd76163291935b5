package model

import "fmt"

// TaskState is the lifecycle state of one task instance in a DAG run.
type TaskState int

const (
	// TaskStateNone means the task has not been scheduled yet.
	TaskStateNone TaskState = iota

	// TaskStateQueued means the task is waiting for its upstream tasks.
	TaskStateQueued

	// TaskStateRunning means the task command is executing.
	TaskStateRunning

	// TaskStateSuccess means the task command exited with status zero.
	TaskStateSuccess

	// TaskStateFailed means the task command failed.
	TaskStateFailed

	// TaskStateUpstreamFailed means a task this one depends on failed,
	// so it was never started.
	TaskStateUpstreamFailed

	// TaskStateSkipped means the task already succeeded for this period
	// and was not run again.
	TaskStateSkipped
)

var taskStateNames = map[TaskState]string{
	TaskStateNone:           "none",
	TaskStateQueued:         "queued",
	TaskStateRunning:        "running",
	TaskStateSuccess:        "success",
	TaskStateFailed:         "failed",
	TaskStateUpstreamFailed: "upstream_failed",
	TaskStateSkipped:        "skipped",
}

// String returns the lowercase state name.
func (s TaskState) String() string {
	if name, ok := taskStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Done reports whether the state is terminal.
func (s TaskState) Done() bool {
	switch s {
	case TaskStateSuccess, TaskStateFailed, TaskStateUpstreamFailed, TaskStateSkipped:
		return true
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s TaskState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *TaskState) UnmarshalText(text []byte) error {
	state, err := ParseTaskState(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}

// ParseTaskState converts a state name back into a TaskState.
func ParseTaskState(name string) (TaskState, error) {
	for state, n := range taskStateNames {
		if n == name {
			return state, nil
		}
	}
	return TaskStateNone, fmt.Errorf("unknown task state %q", name)
}
