package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/tweetcollector/internal/model"
)

// JSONWriter outputs reports as JSON for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool
}

// NewJSONWriter creates a JSONWriter. Output is indented unless compact is set.
func NewJSONWriter(output io.Writer, compact bool, opts ...Option) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output), indent: !compact}
	applyOptions(&w.baseWriter, opts)
	return w
}

// validationJSON adds the derived found count to the report.
type validationJSON struct {
	model.ValidationReport
	Found int `json:"found"`
}

// WriteValidation writes the report. Missing ids are included only when enabled.
func (w *JSONWriter) WriteValidation(r model.ValidationReport) (int, error) {
	if !w.showMissing {
		r.MissingIDs = nil
	}
	return w.writeJSON(validationJSON{ValidationReport: r, Found: r.Found()})
}

// WriteDAG writes the view.
func (w *JSONWriter) WriteDAG(v *DAGView) (int, error) {
	return w.writeJSON(v)
}

// writeJSON marshals v and writes it with a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
