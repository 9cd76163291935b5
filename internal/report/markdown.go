package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/tweetcollector/internal/model"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown for sharing
// collection results alongside the data.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...Option) *MarkdownWriter {
	w := &MarkdownWriter{baseWriter: newBaseWriter(output)}
	applyOptions(&w.baseWriter, opts)
	return w
}

// WriteValidation writes a summary table, a found/missing pie chart and an
// alert describing the completeness of the lookup.
func (w *MarkdownWriter) WriteValidation(r model.ValidationReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Lookup Validation")
	md.PlainText("")
	md.PlainText(r.String())
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Scraped", strconv.Itoa(r.Total)},
			{"Found", strconv.Itoa(r.Found())},
			{"Missing", strconv.Itoa(r.Missing)},
			{"Coverage", coverage(r)},
		},
	})
	md.PlainText("")

	if r.Total > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Lookup Coverage"),
			piechart.WithShowData(true),
		)
		chart.LabelAndIntValue("Found", uint64(r.Found()))    //nolint:gosec // counts are non-negative
		chart.LabelAndIntValue("Missing", uint64(r.Missing)) //nolint:gosec // counts are non-negative
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case r.Total == 0:
		md.Note("The scrape returned no tweets for this period.")
	case r.Missing > 0:
		md.Warningf("%d of %d scraped tweets were not returned by the lookup. They may be deleted or protected.", r.Missing, r.Total)
	default:
		md.Tip("Every scraped tweet was returned by the lookup.")
	}
	md.PlainText("")

	if w.showMissing && len(r.MissingIDs) > 0 {
		md.H2("Missing Tweets")
		md.PlainText("")
		ids := make([]string, len(r.MissingIDs))
		for i, id := range r.MissingIDs {
			ids[i] = "`" + id.String() + "`"
		}
		md.BulletList(ids...)
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}

// coverage returns the found share of r as a percentage.
func coverage(r model.ValidationReport) string {
	if r.Total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", float64(r.Found())*100/float64(r.Total))
}

// WriteDAG writes the graph properties, a task table and each command.
func (w *MarkdownWriter) WriteDAG(v *DAGView) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1f("DAG %s", v.ID)
	md.PlainText("")

	rows := [][]string{
		{"Schedule", "`" + v.Schedule + "`"},
		{"Start Date", v.StartDate},
	}
	if v.Owner != "" {
		rows = append(rows, []string{"Owner", v.Owner})
	}
	if v.DS != "" {
		rows = append(rows, []string{"Period", v.DS})
	}
	md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: rows})
	md.PlainText("")

	md.H2("Tasks")
	md.PlainText("")
	taskRows := make([][]string, len(v.Tasks))
	for i, t := range v.Tasks {
		up := "-"
		if len(t.Upstream) > 0 {
			up = strings.Join(t.Upstream, ", ")
		}
		taskRows[i] = []string{"`" + t.ID + "`", t.Kind, up, t.State.String()}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Task", "Kind", "Upstream", "State"},
		Rows:   taskRows,
	})
	md.PlainText("")

	md.H2("Commands")
	md.PlainText("")
	for _, t := range v.Tasks {
		md.H3(t.ID)
		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlightShell, strings.TrimSpace(t.Command))
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}
