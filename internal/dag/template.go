package dag

import (
	"fmt"
	"sync"

	"github.com/flosch/pongo2/v6"
)

var disableAutoescape sync.Once

// compile parses a command template.
func compile(src string) (*pongo2.Template, error) {
	disableAutoescape.Do(func() { pongo2.SetAutoescape(false) })

	tpl, err := pongo2.FromString(src)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return tpl, nil
}

// Render returns the command of task id rendered for the period starting at ds.
func (g *Graph) Render(id, ds string) (string, error) {
	t, ok := g.tasks[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}

	nextDS, err := g.Schedule.NextDS(ds)
	if err != nil {
		return "", err
	}

	tpl, err := compile(t.Command)
	if err != nil {
		return "", fmt.Errorf("task %s: %w", id, err)
	}

	out, err := tpl.Execute(pongo2.Context{
		"ds":      ds,
		"next_ds": nextDS,
		"params":  g.params(t),
		"task":    map[string]any{"task_id": t.ID},
		"dag":     map[string]any{"dag_id": g.ID},
	})
	if err != nil {
		return "", fmt.Errorf("render task %s: %w", id, err)
	}
	return out, nil
}

// RenderAll renders every task for ds, keyed by task id.
func (g *Graph) RenderAll(ds string) (map[string]string, error) {
	out := make(map[string]string, len(g.order))
	for _, id := range g.order {
		cmd, err := g.Render(id, ds)
		if err != nil {
			return nil, err
		}
		out[id] = cmd
	}
	return out, nil
}
