package main

import (
	"errors"
	"fmt"

	"github.com/nao1215/tweetcollector/internal/merge"
	"github.com/spf13/cobra"
)

// NewMergeCmd creates the merge command.
func NewMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge INPUT_FP...",
		Short: "Merge scrape runs into one deduplicated file",
		Long: `Merge reads the date and id columns of every scrape run file, concatenates
them in argument order and drops rows whose id was already seen. The first
occurrence of an id wins. The result is written as a date,id CSV.

Examples:
  tweetcollector merge -o output/merged.csv output/run_0.csv output/run_1.csv
  tweetcollector merge --output_fp merged.csv output/get_old_tweets_*/*.csv`,
		Args: cobra.ArbitraryArgs,
		RunE: runMergeCmd,
	}

	cmd.Flags().StringP("output_fp", "o", "", "Result file")
	_ = cmd.MarkFlagRequired("output_fp") //nolint:errcheck // flag is defined above

	return cmd
}

// runMergeCmd executes the merge command.
func runMergeCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(cmd)

	outputPath, err := cmd.Flags().GetString("output_fp")
	if err != nil {
		return err
	}
	if outputPath == "" {
		return errors.New("no output file provided (use -o)")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "merging %d files\n", len(args))

	table, stats, err := merge.MergeWithStats(args)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d statuses found\n", len(table))

	if err := merge.Write(outputPath, table); err != nil {
		return err
	}

	logger.Info("merge finished",
		"files", stats.Files,
		"rows", stats.InputRows,
		"duplicates", stats.Duplicates,
		"output", outputPath,
	)
	return nil
}
