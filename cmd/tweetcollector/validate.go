package main

import (
	"errors"
	"io"

	"github.com/nao1215/tweetcollector/internal/report"
	"github.com/nao1215/tweetcollector/internal/validate"
	"github.com/spf13/cobra"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate GOT_FP LOOKUP_FP",
		Short: "Report how many scraped tweets the lookup did not return",
		Long: `Validate compares the id column of a merged scrape file with the ids of a
lookup results file and prints how many distinct scraped ids are missing.

Tweets are usually missing because they were deleted or protected after the
scrape. The report is informational: missing tweets never fail the command.

Examples:
  tweetcollector validate merged.csv results.json
  tweetcollector validate --markdown --show-missing merged.csv results.json`,
		Args: cobra.ExactArgs(2),
		RunE: runValidateCmd,
	}

	addReportFlags(cmd)
	cmd.Flags().Bool("show-missing", false, "List the missing tweet ids")

	return cmd
}

// runValidateCmd executes the validate command.
func runValidateCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(cmd)

	showMissing, err := cmd.Flags().GetBool("show-missing")
	if err != nil {
		return err
	}
	w, err := newReportWriter(cmd, cmd.OutOrStdout(), report.WithShowMissing(showMissing))
	if err != nil {
		return err
	}

	r, err := validate.Files(args[0], args[1])
	if err != nil {
		return err
	}
	logger.Info("validation finished", "total", r.Total, "missing", r.Missing)

	_, err = w.WriteValidation(r)
	return err
}

// addReportFlags adds the mutually exclusive output format flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
}

// newReportWriter returns the writer selected by the format flags.
func newReportWriter(cmd *cobra.Command, out io.Writer, opts ...report.Option) (report.Writer, error) {
	jsonReport, err := cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	markdownReport, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	switch {
	case jsonReport && markdownReport:
		return nil, errors.New("--json and --markdown are mutually exclusive")
	case jsonReport:
		return report.NewJSONWriter(out, false, opts...), nil
	case markdownReport:
		return report.NewMarkdownWriter(out, opts...), nil
	}
	return report.NewSimpleWriter(out, opts...), nil
}
