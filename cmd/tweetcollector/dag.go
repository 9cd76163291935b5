package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/tweetcollector/internal/config"
	"github.com/nao1215/tweetcollector/internal/dag"
	"github.com/nao1215/tweetcollector/internal/database"
	"github.com/nao1215/tweetcollector/internal/model"
	"github.com/nao1215/tweetcollector/internal/pipeline"
	"github.com/nao1215/tweetcollector/internal/report"
)

// NewDAGCmd creates the dag command and its subcommands.
func NewDAGCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dag",
		Short: "Inspect and run the tweet collection task graph",
		Long: `The tweet collection graph runs, for one period:

  get_old_tweets_0..N-1  independent scrape runs of the external scrape tool
  merge_get_old_tweets   merge of every scrape run (after all scrapes)
  lookup_tweets          lookup of the merged ids
  validate_get_old_tweets  comparison of lookup results with the scrape

Every task is a shell command rendered for the period. Task states are
recorded in the local database, so a rerun of a period only runs the tasks
that did not succeed yet.`,
	}

	cmd.AddCommand(newDAGShowCmd())
	cmd.AddCommand(newDAGRunCmd())
	cmd.AddCommand(newDAGStatusCmd())

	return cmd
}

func newDAGShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the task graph",
		Long: `Show prints the tasks of the graph in execution order with their
dependencies. With --ds, the commands are rendered for that period.

Examples:
  tweetcollector dag show
  tweetcollector dag show --ds 2019-01-01 --markdown`,
		Args: cobra.NoArgs,
		RunE: runDAGShowCmd,
	}

	cmd.Flags().String("ds", "", "Render the commands for the period starting at this date (YYYY-MM-DD)")
	addReportFlags(cmd)

	return cmd
}

func newDAGRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the task graph for one or more periods",
		Long: `Run executes every task of the graph for the period starting at --ds.
With --until, every period starting between --ds and --until is run in order.

Tasks of one layer run concurrently. When a task fails, the tasks depending on
it are not started and are marked upstream_failed; independent tasks still run.
Tasks that already succeeded for a period are skipped unless --force is given.

Examples:
  tweetcollector dag run --ds 2019-01-01
  tweetcollector dag run --ds 2019-01-01 --until 2019-12-01
  tweetcollector dag run --ds 2019-01-01 --force --concurrency 1`,
		Args: cobra.NoArgs,
		RunE: runDAGRunCmd,
	}

	cmd.Flags().String("ds", "", "Start date of the first period (YYYY-MM-DD)")
	cmd.Flags().String("until", "", "Start date of the last period (default: --ds)")
	cmd.Flags().BoolP("force", "f", false, "Run tasks that already succeeded")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency, "Maximum number of tasks run at once")
	_ = cmd.MarkFlagRequired("ds") //nolint:errcheck // flag is defined above

	return cmd
}

func newDAGStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the recorded task states of a period",
		Long: `Status prints the state of every task recorded for the period starting
at --ds. Tasks that never ran are shown as none.

Examples:
  tweetcollector dag status --ds 2019-01-01
  tweetcollector dag status --ds 2019-01-01 --json`,
		Args: cobra.NoArgs,
		RunE: runDAGStatusCmd,
	}

	cmd.Flags().String("ds", "", "Start date of the period (YYYY-MM-DD)")
	addReportFlags(cmd)
	_ = cmd.MarkFlagRequired("ds") //nolint:errcheck // flag is defined above

	return cmd
}

// buildGraph loads the configuration and builds the collection graph.
// When resolveBinary is set and no binary is configured, the tasks invoke
// the running executable.
func buildGraph(cmd *cobra.Command, resolveBinary bool) (*config.Config, *dag.Graph, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.DAG.Validate(); err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	if resolveBinary && cfg.DAG.Binary == "" {
		if exe, err := os.Executable(); err == nil {
			cfg.DAG.Binary = exe
		}
	}

	g, err := dag.TweetCollector(cfg.DAG, cfg.Lookup.CredentialsPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, g, nil
}

// runDAGShowCmd executes the dag show command.
func runDAGShowCmd(cmd *cobra.Command, _ []string) error {
	setupLogger(cmd)

	ds, err := cmd.Flags().GetString("ds")
	if err != nil {
		return err
	}
	if ds != "" {
		if _, err := dag.ParseDS(ds); err != nil {
			return err
		}
	}

	_, g, err := buildGraph(cmd, false)
	if err != nil {
		return err
	}

	view, err := report.NewDAGView(g, ds, nil)
	if err != nil {
		return err
	}
	w, err := newReportWriter(cmd, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	_, err = w.WriteDAG(view)
	return err
}

// runDAGRunCmd executes the dag run command.
func runDAGRunCmd(cmd *cobra.Command, _ []string) error {
	logger := setupLogger(cmd)

	cfg, g, err := buildGraph(cmd, true)
	if err != nil {
		return err
	}

	ds, err := cmd.Flags().GetString("ds")
	if err != nil {
		return err
	}
	until, err := cmd.Flags().GetString("until")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	concurrency := cfg.Concurrency
	if cmd.Flags().Changed("concurrency") {
		if concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
			return err
		}
	}
	if concurrency <= 0 {
		return fmt.Errorf("configuration error: %w", config.ErrInvalidConcurrency)
	}

	periods, err := runPeriods(g, ds, until)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	logger.Info("database opened", "path", db.Path())

	runner := &pipeline.ShellRunner{
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	}
	executor := pipeline.NewExecutor(runner,
		pipeline.WithLogger(logger),
		pipeline.WithConcurrency(concurrency),
		pipeline.WithStore(db),
		pipeline.WithForce(force),
	)

	ctx, cancel := signalContext(logger)
	defer cancel()

	results, runErr := executor.Backfill(ctx, g, periods)
	printRunSummary(cmd.OutOrStdout(), results)
	return runErr
}

// runPeriods returns the periods between ds and until. until defaults to ds.
func runPeriods(g *dag.Graph, ds, until string) ([]string, error) {
	if until == "" {
		until = ds
	}
	if ds < g.StartDate {
		return nil, fmt.Errorf("period %s starts before the start date %s of %s", ds, g.StartDate, g.ID)
	}

	periods, err := g.Schedule.Periods(ds, until)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("no %s period starts between %s and %s", g.Schedule, ds, until)
	}
	return periods, nil
}

// printRunSummary prints, per period run, its outcome, the number of tasks
// in each state and the task errors.
func printRunSummary(w io.Writer, results []*pipeline.RunResult) {
	title := cases.Title(language.English)

	fmt.Fprintln(w)
	for _, res := range results {
		outcome := model.TaskStateSuccess
		if res.Failed() {
			outcome = model.TaskStateFailed
		}
		fmt.Fprintf(w, "%s  %-7s  %s\n", res.DS, stateLabel(title, outcome), res.Duration.Round(time.Millisecond))
		fmt.Fprintf(w, "  %s\n", stateTally(title, res.States))
		for _, id := range slices.Sorted(maps.Keys(res.Errors)) {
			fmt.Fprintf(w, "  %s: %v\n", id, res.Errors[id])
		}
	}
}

// stateLabel renders a task state for people, e.g. "Upstream Failed".
func stateLabel(c cases.Caser, s model.TaskState) string {
	return c.String(strings.ReplaceAll(s.String(), "_", " "))
}

// stateTally counts tasks per state in lifecycle order,
// e.g. "Failed: 2, Upstream Failed: 3".
func stateTally(c cases.Caser, states map[string]model.TaskState) string {
	counts := make(map[model.TaskState]int)
	for _, s := range states {
		counts[s]++
	}

	parts := make([]string, 0, len(counts))
	for _, s := range slices.Sorted(maps.Keys(counts)) {
		parts = append(parts, fmt.Sprintf("%s: %d", stateLabel(c, s), counts[s]))
	}
	return strings.Join(parts, ", ")
}

// runDAGStatusCmd executes the dag status command.
func runDAGStatusCmd(cmd *cobra.Command, _ []string) error {
	logger := setupLogger(cmd)

	cfg, g, err := buildGraph(cmd, false)
	if err != nil {
		return err
	}

	ds, err := cmd.Flags().GetString("ds")
	if err != nil {
		return err
	}
	if _, err := dag.ParseDS(ds); err != nil {
		return err
	}

	w, err := newReportWriter(cmd, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	states, err := db.TaskStates(ctx, g.ID, ds)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		logger.Warn("no task states recorded", "dag", g.ID, "ds", ds)
	}

	if run, err := lastRun(ctx, db, g.ID, ds); err == nil {
		logger.Info("last run", "run_id", run.ID, "state", run.State, "started_at", run.StartedAt)
	} else if !errors.Is(err, database.ErrRunNotFound) {
		return err
	}

	view, err := report.NewDAGView(g, ds, states)
	if err != nil {
		return err
	}
	_, err = w.WriteDAG(view)
	return err
}

// lastRun returns the most recent run of dagID for ds.
func lastRun(ctx context.Context, db *database.TaskDB, dagID, ds string) (database.Run, error) {
	runs, err := db.ListRuns(ctx, dagID, 0)
	if err != nil {
		return database.Run{}, err
	}
	for _, r := range runs {
		if r.DS == ds {
			return r, nil
		}
	}
	return database.Run{}, fmt.Errorf("%w: %s %s", database.ErrRunNotFound, dagID, ds)
}
