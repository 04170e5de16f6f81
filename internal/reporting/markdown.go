package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Feature Table Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Dataset: %s\n\n", r.DatasetID))
	sb.WriteString(fmt.Sprintf("Generator version: %s\n\n", r.Version))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Rows | %d |\n", r.DataSummary.RowCount))
	sb.WriteString(fmt.Sprintf("| Columns | %d |\n", r.DataSummary.ColumnCount))
	sb.WriteString(fmt.Sprintf("| Countries | %d |\n", r.DataSummary.CountryCount))
	sb.WriteString(fmt.Sprintf("| First Day | %s |\n", r.DataSummary.FirstDay))
	sb.WriteString(fmt.Sprintf("| Last Day | %s |\n", r.DataSummary.LastDay))
	sb.WriteString("\n")

	// Column Coverage
	sb.WriteString("## Column Coverage\n\n")
	if len(r.ColumnCoverage) > 0 {
		sb.WriteString("| Column | NonNull | Null | Coverage% | Min | Max | Mean |\n")
		sb.WriteString("|--------|---------|------|-----------|-----|-----|------|\n")
		for _, c := range r.ColumnCoverage {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %.2f | %s | %s | %s |\n",
				c.Column, c.NonNull, c.Null, c.CoveragePct,
				formatCell(c.Min), formatCell(c.Max), formatCell(c.Mean)))
		}
	} else {
		sb.WriteString("No columns available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// formatCell formats an optional statistic, rendering NULL as a dash.
func formatCell(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *v)
}
