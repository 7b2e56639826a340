package format

import (
	"fmt"
	"strings"
)

// SummaryFormatter formats results as a table of rule counts per file.
type SummaryFormatter struct{}

// NewSummaryFormatter creates a new SummaryFormatter.
func NewSummaryFormatter() *SummaryFormatter {
	return &SummaryFormatter{}
}

// Format outputs one row per result in input order, then a totals row.
func (f *SummaryFormatter) Format(results []Result) (string, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%-50s %8s %8s %8s %8s\n", "File", "Errors", "Warnings", "Off", "Total")
	sb.WriteString(strings.Repeat("─", 86))
	sb.WriteString("\n")

	var total counts
	for _, res := range results {
		path := res.Path
		if path == "" {
			path = "(global)"
		}

		c := countRules(res.Rules)
		fmt.Fprintf(&sb, "%-50s %8d %8d %8d %8d\n", path, c.Errors, c.Warns, c.Off, c.Total)

		total.Errors += c.Errors
		total.Warns += c.Warns
		total.Off += c.Off
		total.Total += c.Total
	}

	sb.WriteString(strings.Repeat("─", 86))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%d rules (%d errors, %d warnings, %d off) across %d files\n",
		total.Total, total.Errors, total.Warns, total.Off, len(results))

	return sb.String(), nil
}
