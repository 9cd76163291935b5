package dag

// Kind classifies a task by the stage it runs.
type Kind string

// Task kinds.
const (
	KindScrape   Kind = "scrape"
	KindMerge    Kind = "merge"
	KindLookup   Kind = "lookup"
	KindValidate Kind = "validate"
)

// Task is one node of the graph.
type Task struct {
	// ID is unique within the graph and exposed to templates as task.task_id.
	ID string

	// Kind is informational.
	Kind Kind

	// Command is a bash script template.
	Command string

	// Params are merged over the graph params when rendering, so a task may
	// override or add values.
	Params map[string]any
}
