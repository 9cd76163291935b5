package report

import (
	"github.com/nao1215/tweetcollector/internal/dag"
	"github.com/nao1215/tweetcollector/internal/model"
)

// TaskRow is one task of a DAGView.
type TaskRow struct {
	ID       string          `json:"task_id"`
	Kind     string          `json:"kind"`
	Upstream []string        `json:"upstream,omitempty"`
	Command  string          `json:"command"`
	State    model.TaskState `json:"state"`
}

// DAGView is a flattened description of a graph, optionally rendered for
// one period and annotated with recorded task states.
type DAGView struct {
	ID        string    `json:"dag_id"`
	Schedule  string    `json:"schedule"`
	StartDate string    `json:"start_date"`
	Owner     string    `json:"owner,omitempty"`
	DS        string    `json:"ds,omitempty"`
	Tasks     []TaskRow `json:"tasks"`
}

// NewDAGView describes g. When ds is set, commands are rendered for that
// period; otherwise the raw templates are shown. states may be nil.
func NewDAGView(g *dag.Graph, ds string, states map[string]model.TaskState) (*DAGView, error) {
	v := &DAGView{
		ID:        g.ID,
		Schedule:  string(g.Schedule),
		StartDate: g.StartDate,
		Owner:     g.Owner,
		DS:        ds,
	}

	layers, err := g.Layers()
	if err != nil {
		return nil, err
	}
	for _, layer := range layers {
		for _, id := range layer {
			t, _ := g.Task(id)
			cmd := t.Command
			if ds != "" {
				if cmd, err = g.Render(id, ds); err != nil {
					return nil, err
				}
			}
			v.Tasks = append(v.Tasks, TaskRow{
				ID:       id,
				Kind:     string(t.Kind),
				Upstream: g.Upstream(id),
				Command:  cmd,
				State:    states[id],
			})
		}
	}
	return v, nil
}
