package dag

import (
	"fmt"
	"maps"
	"slices"
)

// Graph is a set of tasks and the dependencies between them.
// Tasks keep insertion order, which makes Layers deterministic.
type Graph struct {
	ID        string
	Schedule  Schedule
	StartDate string
	Owner     string

	// Params are visible to every template as params.<name>.
	Params map[string]any

	order      []string
	tasks      map[string]*Task
	upstream   map[string][]string
	downstream map[string][]string
}

// NewGraph returns an empty graph.
func NewGraph(id string, schedule Schedule, startDate string) *Graph {
	return &Graph{
		ID:         id,
		Schedule:   schedule,
		StartDate:  startDate,
		Params:     map[string]any{},
		tasks:      map[string]*Task{},
		upstream:   map[string][]string{},
		downstream: map[string][]string{},
	}
}

// AddTask adds t to the graph.
func (g *Graph) AddTask(t Task) error {
	if t.ID == "" {
		return ErrEmptyTaskID
	}
	if _, ok := g.tasks[t.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, t.ID)
	}
	g.tasks[t.ID] = &t
	g.order = append(g.order, t.ID)
	return nil
}

// SetUpstream makes downstream depend on upstream.
// Adding an existing edge again is a no-op.
func (g *Graph) SetUpstream(upstream, downstream string) error {
	for _, id := range []string{upstream, downstream} {
		if _, ok := g.tasks[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTask, id)
		}
	}
	if slices.Contains(g.upstream[downstream], upstream) {
		return nil
	}
	g.upstream[downstream] = append(g.upstream[downstream], upstream)
	g.downstream[upstream] = append(g.downstream[upstream], downstream)
	return nil
}

// Task returns the task with the given id.
func (g *Graph) Task(id string) (Task, bool) {
	t, ok := g.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// Tasks returns all tasks in insertion order.
func (g *Graph) Tasks() []Task {
	out := make([]Task, len(g.order))
	for i, id := range g.order {
		out[i] = *g.tasks[id]
	}
	return out
}

// Upstream returns the direct dependencies of id.
func (g *Graph) Upstream(id string) []string {
	return slices.Clone(g.upstream[id])
}

// Downstream returns the tasks that directly depend on id.
func (g *Graph) Downstream(id string) []string {
	return slices.Clone(g.downstream[id])
}

// Descendants returns every task reachable downstream of id, in insertion order.
func (g *Graph) Descendants(id string) []string {
	seen := map[string]bool{}
	stack := slices.Clone(g.downstream[id])
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, g.downstream[n]...)
	}

	var out []string
	for _, t := range g.order {
		if seen[t] {
			out = append(out, t)
		}
	}
	return out
}

// Edge is a dependency from Upstream to Downstream.
type Edge struct {
	Upstream   string
	Downstream string
}

// Edges returns all dependencies ordered by downstream task, then upstream
// insertion order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, down := range g.order {
		for _, up := range g.upstream[down] {
			edges = append(edges, Edge{Upstream: up, Downstream: down})
		}
	}
	return edges
}

// Layers groups the tasks into stages: every task's dependencies are in an
// earlier layer. Tasks in one layer may run concurrently. It returns
// ErrCycle when no such ordering exists.
func (g *Graph) Layers() ([][]string, error) {
	indegree := make(map[string]int, len(g.order))
	for _, id := range g.order {
		indegree[id] = len(g.upstream[id])
	}

	var layers [][]string
	done := 0
	for done < len(g.order) {
		var layer []string
		for _, id := range g.order {
			if indegree[id] == 0 {
				layer = append(layer, id)
			}
		}
		if len(layer) == 0 {
			return nil, ErrCycle
		}
		for _, id := range layer {
			indegree[id] = -1
			for _, down := range g.downstream[id] {
				indegree[down]--
			}
		}
		layers = append(layers, layer)
		done += len(layer)
	}
	return layers, nil
}

// Validate checks that the graph is acyclic and that every template parses.
func (g *Graph) Validate() error {
	if _, err := g.Layers(); err != nil {
		return err
	}
	for _, id := range g.order {
		if _, err := compile(g.tasks[id].Command); err != nil {
			return fmt.Errorf("task %s: %w", id, err)
		}
	}
	return nil
}

// params returns the graph params overlaid with the task's own.
func (g *Graph) params(t *Task) map[string]any {
	merged := maps.Clone(g.Params)
	if merged == nil {
		merged = map[string]any{}
	}
	maps.Copy(merged, t.Params)
	return merged
}
