package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/nao1215/tweetcollector/internal/config"
	"github.com/nao1215/tweetcollector/internal/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for tweetcollector.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tweetcollector",
		Short: "Batch pipeline that collects and hydrates tweets",
		Long: `tweetcollector collects the tweets matching a search query, one period at a time.

Each period runs several scrape runs of an external scrape tool, merges them
into one deduplicated id list, looks the ids up through the Twitter API to get
the full tweet documents, and reports how many scraped tweets the lookup missed.

The stages can be run one by one (merge, lookup, validate) or together as a
task graph with "tweetcollector dag run".`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .tweetcollector in current or home directory)")

	// Add subcommands
	cmd.AddCommand(NewMergeCmd())
	cmd.AddCommand(NewLookupCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewDAGCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getBoolFlag retrieves a boolean flag from the command or its parents.
// It is false when no command in the chain defines the flag.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	if f == nil {
		return false
	}
	v, err := strconv.ParseBool(f.Value.String())
	if err != nil {
		return false
	}
	return v
}

// setupLogger creates the logger selected by the global flags and makes it
// the default.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	logger := log.New(cmd.ErrOrStderr(), log.Options{
		Verbose: getBoolFlag(cmd, "verbose"),
		JSON:    getBoolFlag(cmd, "log-json"),
	})
	slog.SetDefault(logger)
	return logger
}

// loadConfig builds the configuration: defaults, overlaid with the
// configuration file if one is found. A file named with --config must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var configFile string
	if f := cmd.Flag("config"); f != nil {
		configFile = f.Value.String()
	}

	path := config.FindConfigFile(configFile)
	if path == "" {
		if configFile != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configFile)
		}
		return cfg, nil
	}

	f, err := config.LoadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	cfg.ApplyFile(f)
	slog.Debug("configuration file loaded", "path", path)
	return cfg, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
