package ingestion

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"power-vol-lab/internal/domain"
	"power-vol-lab/internal/frame"
)

// Target CSV header keys.
const (
	colTargetID    = "ID"
	colTargetValue = "TARGET"
)

// CSVObservationSource reads the observation table from a CSV file.
type CSVObservationSource struct {
	path string
}

// NewCSVObservationSource creates a CSV-backed observation source.
func NewCSVObservationSource(path string) *CSVObservationSource {
	return &CSVObservationSource{path: path}
}

// Compile-time interface check.
var _ ObservationSource = (*CSVObservationSource)(nil)

// Fetch reads and parses the whole file.
func (s *CSVObservationSource) Fetch(_ context.Context) (*frame.Frame, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open observations csv: %w", err)
	}
	defer f.Close()

	df, err := frame.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse observations csv %s: %w", s.path, err)
	}
	return df, nil
}

// CSVTargetSource reads volatility targets from a CSV file with ID and
// TARGET columns.
type CSVTargetSource struct {
	path string
}

// NewCSVTargetSource creates a CSV-backed target source.
func NewCSVTargetSource(path string) *CSVTargetSource {
	return &CSVTargetSource{path: path}
}

// Compile-time interface check.
var _ TargetSource = (*CSVTargetSource)(nil)

// Fetch reads and parses the whole file.
func (s *CSVTargetSource) Fetch(_ context.Context) ([]*domain.Target, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open targets csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse targets csv %s: %w", s.path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("targets csv %s: empty file", s.path)
	}

	idIdx, valueIdx := -1, -1
	for i, name := range records[0] {
		switch name {
		case colTargetID:
			idIdx = i
		case colTargetValue:
			valueIdx = i
		}
	}
	if idIdx < 0 || valueIdx < 0 {
		return nil, fmt.Errorf("targets csv %s: header must contain %s and %s",
			s.path, colTargetID, colTargetValue)
	}

	var targets []*domain.Target
	for rowNum, rec := range records[1:] {
		id, err := strconv.ParseInt(rec[idIdx], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("targets csv %s row %d: parse id %q: %w",
				s.path, rowNum+2, rec[idIdx], err)
		}
		value, err := strconv.ParseFloat(rec[valueIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("targets csv %s row %d: parse target %q: %w",
				s.path, rowNum+2, rec[valueIdx], err)
		}
		targets = append(targets, &domain.Target{ID: id, Value: value})
	}

	return targets, nil
}
