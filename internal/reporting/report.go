package reporting

import "time"

// GeneratorVersion identifies the report format; bumped on layout changes.
const GeneratorVersion = "1.0.0"

// Report summarizes a built feature table.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	DatasetID   string
	Version     string

	// Data Summary
	DataSummary DataSummary

	// Column Coverage (one row per column, in table order)
	ColumnCoverage []ColumnCoverageRow
}

// DataSummary contains table-level counts and the day range.
type DataSummary struct {
	RowCount     int
	ColumnCount  int
	CountryCount int
	FirstDay     string
	LastDay      string
}

// ColumnCoverageRow describes NULL coverage and value range of one column.
// Min, Max and Mean are computed over non-NULL cells and are nil when the
// column is entirely NULL.
type ColumnCoverageRow struct {
	Column      string
	NonNull     int
	Null        int
	CoveragePct float64
	Min         *float64
	Max         *float64
	Mean        *float64
}
