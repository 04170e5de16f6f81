package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders column coverage rows as CSV string.
func RenderCSV(rows []ColumnCoverageRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("column,non_null,null,coverage_pct,min,max,mean\n")

	// Rows
	for _, c := range rows {
		sb.WriteString(fmt.Sprintf("%s,%d,%d,%.6f,%s,%s,%s\n",
			c.Column,
			c.NonNull,
			c.Null,
			c.CoveragePct,
			formatCSVCell(c.Min),
			formatCSVCell(c.Max),
			formatCSVCell(c.Mean),
		))
	}

	return sb.String()
}

// formatCSVCell formats an optional statistic, rendering NULL as empty.
func formatCSVCell(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *v)
}
