package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/tweetcollector/internal/model"
)

// SimpleWriter outputs plain text for terminals and task logs.
// Its validation output is exactly the one-line report, so scheduler logs
// read the same as the original pipeline.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...Option) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	applyOptions(&w.baseWriter, opts)
	return w
}

// WriteValidation writes the one-line report, followed by the missing ids
// when enabled.
func (w *SimpleWriter) WriteValidation(r model.ValidationReport) (int, error) {
	var sb strings.Builder
	sb.WriteString(r.String())
	sb.WriteString("\n")

	if w.showMissing {
		for _, id := range r.MissingIDs {
			sb.WriteString("  ")
			sb.WriteString(id.String())
			sb.WriteString("\n")
		}
	}
	return io.WriteString(w.output, sb.String())
}

// WriteDAG lists the tasks layer by layer with their dependencies.
func (w *SimpleWriter) WriteDAG(v *DAGView) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "DAG %s (%s, start %s)\n", v.ID, v.Schedule, v.StartDate)
	if v.DS != "" {
		fmt.Fprintf(&sb, "Period: %s\n", v.DS)
	}
	sb.WriteString("\n")

	width := 0
	for _, t := range v.Tasks {
		width = max(width, len(t.ID))
	}
	for _, t := range v.Tasks {
		fmt.Fprintf(&sb, "  %-*s  %-15s", width, t.ID, t.State)
		if len(t.Upstream) > 0 {
			fmt.Fprintf(&sb, "  <- %s", strings.Join(t.Upstream, ", "))
		}
		sb.WriteString("\n")
	}
	return io.WriteString(w.output, sb.String())
}
