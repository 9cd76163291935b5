package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/tweetcollector/internal/config"
	"github.com/nao1215/tweetcollector/internal/database"
	"github.com/nao1215/tweetcollector/internal/dag"
	"github.com/nao1215/tweetcollector/internal/model"
)

// ErrRunFailed is returned when at least one task of a period did not succeed.
var ErrRunFailed = errors.New("dag run failed")

// Store records runs and task states. *database.TaskDB implements it.
type Store interface {
	StartRun(ctx context.Context, dagID, ds string) (string, error)
	FinishRun(ctx context.Context, runID string, state model.TaskState) error
	SetTaskState(ctx context.Context, ti database.TaskInstance) error
	TaskStates(ctx context.Context, dagID, ds string) (map[string]model.TaskState, error)
}

// RunResult is the outcome of one period.
type RunResult struct {
	RunID    string
	DS       string
	States   map[string]model.TaskState
	Errors   map[string]error
	Duration time.Duration
}

// Failed reports whether any task failed or was not run because of a failure.
func (r *RunResult) Failed() bool {
	for _, s := range r.States {
		if s == model.TaskStateFailed || s == model.TaskStateUpstreamFailed {
			return true
		}
	}
	return false
}

// Executor runs task graphs.
type Executor struct {
	runner      TaskRunner
	store       Store
	logger      *slog.Logger
	concurrency int
	force       bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets a custom logger for the executor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithConcurrency sets the maximum number of tasks run at once.
func WithConcurrency(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithStore records states in s and skips tasks that already succeeded.
func WithStore(s Store) Option {
	return func(e *Executor) {
		e.store = s
	}
}

// WithForce runs every task even if it already succeeded for the period.
func WithForce(force bool) Option {
	return func(e *Executor) {
		e.force = force
	}
}

// NewExecutor creates an Executor that runs commands with runner.
func NewExecutor(runner TaskRunner, opts ...Option) *Executor {
	e := &Executor{
		runner:      runner,
		concurrency: config.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Run executes g for the period starting at ds.
// It returns the result together with ErrRunFailed when a task failed;
// other errors (invalid graph, store failures, cancellation) abort the run.
func (e *Executor) Run(ctx context.Context, g *dag.Graph, ds string) (*RunResult, error) {
	start := time.Now()

	layers, err := g.Layers()
	if err != nil {
		return nil, err
	}
	commands, err := g.RenderAll(ds)
	if err != nil {
		return nil, err
	}

	prior := map[string]model.TaskState{}
	res := &RunResult{
		DS:     ds,
		States: make(map[string]model.TaskState, len(commands)),
		Errors: map[string]error{},
	}

	if e.store != nil {
		if !e.force {
			if prior, err = e.store.TaskStates(ctx, g.ID, ds); err != nil {
				return nil, err
			}
		}
		if res.RunID, err = e.store.StartRun(ctx, g.ID, ds); err != nil {
			return nil, err
		}
	}

	e.logger.Info("dag run started", "dag", g.ID, "ds", ds, "run_id", res.RunID)

	var mu sync.Mutex
	for _, layer := range layers {
		if err := ctx.Err(); err != nil {
			e.finish(res, g, model.TaskStateFailed)
			return res, err
		}

		// Decide every task of the layer before starting any of them, so
		// the states of earlier layers are read without concurrent writers.
		var runnable []string
		for _, id := range layer {
			switch {
			case upstreamFailed(g, id, res.States):
				if err := e.setState(ctx, g, res, &mu, id, model.TaskStateUpstreamFailed, nil); err != nil {
					return res, err
				}
			case prior[id] == model.TaskStateSuccess:
				// The stored success is kept so later runs skip it as well.
				e.logger.Info("task already succeeded, skipping", "task", id, "ds", ds)
				res.States[id] = model.TaskStateSkipped
			default:
				runnable = append(runnable, id)
			}
		}

		grp, gctx := errgroup.WithContext(ctx)
		grp.SetLimit(e.concurrency)

		for _, id := range runnable {
			task, _ := g.Task(id)

			grp.Go(func() error {
				if err := e.setState(gctx, g, res, &mu, id, model.TaskStateRunning, nil); err != nil {
					return err
				}

				e.logger.Info("task started", "task", id, "ds", ds)
				runErr := e.runner.Run(gctx, task, commands[id])
				if runErr != nil && gctx.Err() != nil {
					return gctx.Err()
				}

				state := model.TaskStateSuccess
				if runErr != nil {
					state = model.TaskStateFailed
					e.logger.Error("task failed", "task", id, "ds", ds, "error", runErr)
				} else {
					e.logger.Info("task succeeded", "task", id, "ds", ds)
				}
				// A failing task must not cancel its siblings, so only
				// store errors are returned to the group.
				return e.setState(gctx, g, res, &mu, id, state, runErr)
			})
		}

		if err := grp.Wait(); err != nil {
			e.finish(res, g, model.TaskStateFailed)
			return res, err
		}
	}

	res.Duration = time.Since(start)
	if res.Failed() {
		e.finish(res, g, model.TaskStateFailed)
		return res, fmt.Errorf("%w: %s %s", ErrRunFailed, g.ID, ds)
	}
	e.finish(res, g, model.TaskStateSuccess)
	return res, nil
}

// Backfill runs g for every period in order. A failed period does not stop
// the following ones; the combined error names every failed period.
func (e *Executor) Backfill(ctx context.Context, g *dag.Graph, periods []string) ([]*RunResult, error) {
	results := make([]*RunResult, 0, len(periods))
	var errs []error
	for _, ds := range periods {
		res, err := e.Run(ctx, g, ds)
		if res != nil {
			results = append(results, res)
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrRunFailed) {
			return results, err
		}
		errs = append(errs, err)
	}
	return results, errors.Join(errs...)
}

// upstreamFailed reports whether a direct dependency of id did not succeed.
// Upstream failures propagate transitively because each layer sees the
// states written by the previous ones.
func upstreamFailed(g *dag.Graph, id string, states map[string]model.TaskState) bool {
	for _, up := range g.Upstream(id) {
		switch states[up] {
		case model.TaskStateFailed, model.TaskStateUpstreamFailed:
			return true
		}
	}
	return false
}

// setState records the state of id in res and in the store.
func (e *Executor) setState(ctx context.Context, g *dag.Graph, res *RunResult, mu *sync.Mutex, id string, state model.TaskState, taskErr error) error {
	mu.Lock()
	res.States[id] = state
	if taskErr != nil {
		res.Errors[id] = taskErr
	}
	mu.Unlock()

	if e.store == nil {
		return nil
	}
	ti := database.TaskInstance{
		DAGID:  g.ID,
		DS:     res.DS,
		TaskID: id,
		RunID:  res.RunID,
		State:  state,
	}
	if taskErr != nil {
		ti.Error = taskErr.Error()
	}
	return e.store.SetTaskState(ctx, ti)
}

// finish records the final run state. Store errors are logged only, since
// the run outcome is already decided.
func (e *Executor) finish(res *RunResult, g *dag.Graph, state model.TaskState) {
	e.logger.Info("dag run finished", "dag", g.ID, "ds", res.DS, "state", state)
	if e.store == nil || res.RunID == "" {
		return
	}
	if err := e.store.FinishRun(context.Background(), res.RunID, state); err != nil {
		e.logger.Warn("failed to record run state", "run_id", res.RunID, "error", err)
	}
}
