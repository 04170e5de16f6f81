package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"power-vol-lab/internal/domain"
)

// Key column names required in every observation CSV.
const (
	ColID      = "ID"
	ColDayID   = "DAY_ID"
	ColCountry = "COUNTRY"
)

// ReadCSV parses an observation table. The header must contain ID, DAY_ID and
// COUNTRY; every other header column becomes a nullable float column in
// header order. Empty or non-numeric cells are NULL (lenient schema), DAY_ID
// cells are parsed best-effort.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idIdx, dayIdx, countryIdx := -1, -1, -1
	var valueCols []string
	var valueIdx []int
	for i, name := range header {
		switch name {
		case ColID:
			idIdx = i
		case ColDayID:
			dayIdx = i
		case ColCountry:
			countryIdx = i
		default:
			valueCols = append(valueCols, name)
			valueIdx = append(valueIdx, i)
		}
	}
	if idIdx < 0 || dayIdx < 0 || countryIdx < 0 {
		return nil, fmt.Errorf("csv header missing required columns (need %s, %s, %s)", ColID, ColDayID, ColCountry)
	}

	var ids []int64
	var days []domain.Day
	var countries []string
	values := make([][]*float64, len(valueCols))

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		id, err := strconv.ParseInt(record[idIdx], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s at line %d: %w", ColID, line, err)
		}
		ids = append(ids, id)
		days = append(days, domain.ParseDay(record[dayIdx]))
		countries = append(countries, record[countryIdx])

		for c, idx := range valueIdx {
			var cell *float64
			if idx < len(record) && record[idx] != "" {
				// NaN/Inf literals parse but mean missing, like any other
				// unusable cell.
				if v, err := strconv.ParseFloat(record[idx], 64); err == nil &&
					!math.IsNaN(v) && !math.IsInf(v, 0) {
					cell = &v
				}
			}
			values[c] = append(values[c], cell)
		}
	}

	f, err := New(ids, days, countries)
	if err != nil {
		return nil, err
	}
	for c, name := range valueCols {
		if err := f.AddColumn(name, values[c]); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// WriteCSV renders the frame with key columns first, then every value column
// in order. NULL cells are empty.
func WriteCSV(w io.Writer, f *Frame) error {
	cw := csv.NewWriter(w)

	header := append([]string{ColID, ColDayID, ColCountry}, f.Columns()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	cols := f.Columns()
	for i := 0; i < f.Len(); i++ {
		record := make([]string, 0, len(header))
		record = append(record,
			strconv.FormatInt(f.ID(i), 10),
			f.Day(i).String(),
			f.Country(i),
		)
		for _, name := range cols {
			if v := f.Value(name, i); v != nil {
				record = append(record, strconv.FormatFloat(*v, 'g', -1, 64))
			} else {
				record = append(record, "")
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
