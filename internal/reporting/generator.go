package reporting

import (
	"time"

	"power-vol-lab/internal/frame"
	"power-vol-lab/internal/idhash"
)

// Generator produces coverage reports from built feature tables.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete coverage report for the frame.
func (g *Generator) Generate(df *frame.Frame) *Report {
	return &Report{
		GeneratedAt:    g.now(),
		DatasetID:      idhash.DatasetFingerprint(df),
		Version:        GeneratorVersion,
		DataSummary:    generateDataSummary(df),
		ColumnCoverage: generateColumnCoverage(df),
	}
}

// generateDataSummary computes table-level counts and the day range.
func generateDataSummary(df *frame.Frame) DataSummary {
	countries := make(map[string]struct{})
	for i := 0; i < df.Len(); i++ {
		countries[df.Country(i)] = struct{}{}
	}

	summary := DataSummary{
		RowCount:     df.Len(),
		ColumnCount:  len(df.Columns()),
		CountryCount: len(countries),
	}

	if df.Len() > 0 {
		first, last := df.Day(0), df.Day(0)
		for i := 1; i < df.Len(); i++ {
			d := df.Day(i)
			if d.Less(first) {
				first = d
			}
			if last.Less(d) {
				last = d
			}
		}
		summary.FirstDay = first.String()
		summary.LastDay = last.String()
	}

	return summary
}

// generateColumnCoverage builds one coverage row per column, in table order.
func generateColumnCoverage(df *frame.Frame) []ColumnCoverageRow {
	rows := make([]ColumnCoverageRow, 0, len(df.Columns()))

	for _, col := range df.Columns() {
		row := ColumnCoverageRow{Column: col}

		var sum float64
		for i := 0; i < df.Len(); i++ {
			v := df.Value(col, i)
			if v == nil {
				row.Null++
				continue
			}
			if row.NonNull == 0 {
				min, max := *v, *v
				row.Min, row.Max = &min, &max
			} else {
				if *v < *row.Min {
					*row.Min = *v
				}
				if *v > *row.Max {
					*row.Max = *v
				}
			}
			sum += *v
			row.NonNull++
		}

		if row.NonNull > 0 {
			mean := sum / float64(row.NonNull)
			row.Mean = &mean
		}
		if total := row.NonNull + row.Null; total > 0 {
			row.CoveragePct = float64(row.NonNull) / float64(total) * 100
		}

		rows = append(rows, row)
	}

	return rows
}
