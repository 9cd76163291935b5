// Package report renders validation results and DAG overviews.
//
// This package contains writers for different output formats:
//   - SimpleWriter: the one-line text report and plain task listings
//   - MarkdownWriter: GitHub-flavored Markdown with tables and charts
//   - JSONWriter: structured JSON for tool integration
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
