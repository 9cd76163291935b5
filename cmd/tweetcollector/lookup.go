package main

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/nao1215/tweetcollector/internal/config"
	"github.com/nao1215/tweetcollector/internal/lookup"
	"github.com/nao1215/tweetcollector/internal/twitter"
)

// NewLookupCmd creates the lookup command.
func NewLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup INPUT_FP RESULTS_FP ERROR_FP",
		Short: "Hydrate merged tweet ids through the statuses/lookup endpoint",
		Long: `Lookup reads the id column of a merged scrape file and requests the full
tweet documents in batches of up to 100 ids.

Every returned document is written to RESULTS_FP as one JSON document per
line; the file is written even when nothing was found. When a batch fails,
one error record per id of the batch is written to ERROR_FP. ERROR_FP is
only created when at least one batch failed.

Credentials are read from the JSON document named by --twitter_cred, or by
the TWITTER_CREDENTIALS environment variable (a .env file in the current
directory is honoured).

Examples:
  tweetcollector lookup merged.csv results.json errors.json
  tweetcollector lookup --twitter_cred cred.json merged.csv results.json errors.json
  tweetcollector lookup --metrics-file lookup.prom merged.csv results.json errors.json
  tweetcollector lookup --proxy 127.0.0.1:9050 merged.csv results.json errors.json`,
		Args: cobra.ExactArgs(3),
		RunE: runLookupCmd,
	}

	cmd.Flags().String("twitter_cred", "", "Twitter credentials file")
	cmd.Flags().IntP("batch-size", "b", config.DefaultBatchSize,
		fmt.Sprintf("Number of ids per request (1-%d)", config.MaxBatchSize))
	cmd.Flags().String("proxy", "", "SOCKS5 proxy address (host:port) for API requests")
	cmd.Flags().String("metrics-file", "",
		"Write Prometheus metrics of the run to this file in text format")

	return cmd
}

// runLookupCmd executes the lookup command.
func runLookupCmd(cmd *cobra.Command, args []string) (err error) {
	logger := setupLogger(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyLookupFlags(cmd, &cfg.Lookup); err != nil {
		return err
	}
	if err := cfg.Lookup.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	credPath, err := config.ResolveCredentialsPath(cfg.Lookup.CredentialsPath)
	if err != nil {
		return err
	}
	creds, err := config.LoadCredentials(credPath)
	if err != nil {
		return err
	}

	metricsFile, err := cmd.Flags().GetString("metrics-file")
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	if metricsFile != "" {
		defer func() {
			if werr := prometheus.WriteToTextfile(metricsFile, reg); werr != nil {
				err = errors.Join(err, fmt.Errorf("failed to write metrics: %w", werr))
			}
		}()
	}

	clientOpts := []twitter.Option{
		twitter.WithRetry(cfg.Lookup.RetryCount, cfg.Lookup.RetryDelay),
		twitter.WithWaitOnRateLimit(cfg.Lookup.WaitOnRateLimit, cfg.Lookup.MaxRateLimitWait),
		twitter.WithLogger(logger),
		twitter.WithMetrics(twitter.NewMetrics(reg)),
	}
	if cfg.Lookup.Proxy != "" {
		transport, err := twitter.NewSOCKS5Transport(cfg.Lookup.Proxy)
		if err != nil {
			return err
		}
		clientOpts = append(clientOpts, twitter.WithTransport(transport))
		logger.Info("using SOCKS5 proxy", "address", cfg.Lookup.Proxy)
	}
	client := twitter.NewClient(creds, clientOpts...)

	ctx, cancel := signalContext(logger)
	defer cancel()

	_, err = lookup.Run(ctx, client,
		lookup.Paths{Input: args[0], Results: args[1], Errors: args[2]},
		lookup.WithBatchSize(cfg.Lookup.BatchSize),
		lookup.WithLogger(logger),
		lookup.WithMetrics(lookup.NewMetrics(reg)),
		lookup.WithOutput(cmd.OutOrStdout()),
	)
	return err
}

// applyLookupFlags overrides lookup settings with the flags that were set.
func applyLookupFlags(cmd *cobra.Command, l *config.LookupConfig) error {
	if cmd.Flags().Changed("twitter_cred") {
		path, err := cmd.Flags().GetString("twitter_cred")
		if err != nil {
			return err
		}
		l.CredentialsPath = path
	}
	if cmd.Flags().Changed("batch-size") {
		n, err := cmd.Flags().GetInt("batch-size")
		if err != nil {
			return err
		}
		l.BatchSize = n
	}
	if cmd.Flags().Changed("proxy") {
		addr, err := cmd.Flags().GetString("proxy")
		if err != nil {
			return err
		}
		l.Proxy = addr
	}
	return nil
}
