package dag

import "errors"

var (
	// ErrDuplicateTask is returned when a task id is added twice.
	ErrDuplicateTask = errors.New("duplicate task id")

	// ErrUnknownTask is returned when an edge or lookup names a missing task.
	ErrUnknownTask = errors.New("unknown task id")

	// ErrCycle is returned when the dependencies contain a cycle.
	ErrCycle = errors.New("task dependencies contain a cycle")

	// ErrEmptyTaskID is returned for a task without id.
	ErrEmptyTaskID = errors.New("task id cannot be empty")

	// ErrInvalidDS is returned when a date stamp is not YYYY-MM-DD.
	ErrInvalidDS = errors.New("invalid date stamp: must be YYYY-MM-DD")

	// ErrUnknownSchedule is returned for an unsupported schedule preset.
	ErrUnknownSchedule = errors.New("unknown schedule preset")
)
