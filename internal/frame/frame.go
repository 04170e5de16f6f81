// Package frame provides the column-oriented in-memory table the feature
// builder operates on: three typed key columns (ID, DAY_ID, COUNTRY) plus an
// ordered set of nullable float64 columns.
package frame

import (
	"fmt"
	"sort"

	"power-vol-lab/internal/domain"
)

// Frame is a column-oriented table. Cells are nullable; nil means missing.
// The column set only grows and column order is preserved.
type Frame struct {
	ids       []int64
	days      []domain.Day
	countries []string

	order []string
	cols  map[string][]*float64
}

// New creates a frame from its key columns. All three slices must have equal
// length.
func New(ids []int64, days []domain.Day, countries []string) (*Frame, error) {
	if len(days) != len(ids) || len(countries) != len(ids) {
		return nil, fmt.Errorf("key column length mismatch: ids=%d days=%d countries=%d",
			len(ids), len(days), len(countries))
	}
	return &Frame{
		ids:       ids,
		days:      days,
		countries: countries,
		cols:      make(map[string][]*float64),
	}, nil
}

// FromObservations builds a frame from wide observation rows. present selects
// which raw columns the frame carries; nil means all raw columns. Names in
// present that are not raw columns are rejected.
func FromObservations(obs []*domain.Observation, present []string) (*Frame, error) {
	n := len(obs)
	ids := make([]int64, n)
	days := make([]domain.Day, n)
	countries := make([]string, n)
	for i, o := range obs {
		ids[i] = o.ID
		days[i] = o.DayID
		countries[i] = o.Country
	}

	f := &Frame{
		ids:       ids,
		days:      days,
		countries: countries,
		cols:      make(map[string][]*float64),
	}

	raw := make(map[string]bool, len(domain.RawColumns()))
	for _, col := range domain.RawColumns() {
		raw[col] = true
	}

	if present == nil {
		present = domain.RawColumns()
	}
	for _, col := range present {
		if !raw[col] {
			return nil, fmt.Errorf("unknown raw column %q", col)
		}
		values := make([]*float64, n)
		for i, o := range obs {
			if v := o.RawValues()[col]; v != nil {
				vv := *v
				values[i] = &vv
			}
		}
		f.order = append(f.order, col)
		f.cols[col] = values
	}
	return f, nil
}

// Len returns the row count.
func (f *Frame) Len() int {
	return len(f.ids)
}

// ID returns the row identifier at index i.
func (f *Frame) ID(i int) int64 {
	return f.ids[i]
}

// Day returns the DAY_ID at index i.
func (f *Frame) Day(i int) domain.Day {
	return f.days[i]
}

// SetDay replaces the DAY_ID at index i (day normalization).
func (f *Frame) SetDay(i int, d domain.Day) {
	f.days[i] = d
}

// Country returns the COUNTRY at index i.
func (f *Frame) Country(i int) string {
	return f.countries[i]
}

// Has reports whether a column exists. Optional derivation blocks consult
// this before touching their inputs.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// HasAll reports whether every named column exists.
func (f *Frame) HasAll(names ...string) bool {
	for _, name := range names {
		if !f.Has(name) {
			return false
		}
	}
	return true
}

// Column returns the cells of a column, or nil if absent. The returned slice
// is the frame's backing storage; callers that must not mutate the frame work
// on a Clone.
func (f *Frame) Column(name string) []*float64 {
	return f.cols[name]
}

// Value returns the cell of column name at row i, nil when the column is
// absent or the cell is missing.
func (f *Frame) Value(name string, i int) *float64 {
	col, ok := f.cols[name]
	if !ok {
		return nil
	}
	return col[i]
}

// AddColumn appends a new column. The column set strictly grows; replacing an
// existing column is rejected.
func (f *Frame) AddColumn(name string, values []*float64) error {
	if _, exists := f.cols[name]; exists {
		return fmt.Errorf("column %q already exists", name)
	}
	if len(values) != f.Len() {
		return fmt.Errorf("column %q length %d does not match row count %d", name, len(values), f.Len())
	}
	f.order = append(f.order, name)
	f.cols[name] = values
	return nil
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Clone returns a deep copy sharing no storage with the receiver.
func (f *Frame) Clone() *Frame {
	n := f.Len()
	c := &Frame{
		ids:       make([]int64, n),
		days:      make([]domain.Day, n),
		countries: make([]string, n),
		order:     make([]string, len(f.order)),
		cols:      make(map[string][]*float64, len(f.cols)),
	}
	copy(c.ids, f.ids)
	copy(c.days, f.days)
	copy(c.countries, f.countries)
	copy(c.order, f.order)
	for name, col := range f.cols {
		values := make([]*float64, n)
		for i, v := range col {
			if v != nil {
				vv := *v
				values[i] = &vv
			}
		}
		c.cols[name] = values
	}
	return c
}

// SortByCountryDay stable-sorts rows by (COUNTRY asc, DAY_ID asc).
// Stability keeps duplicate entity-day rows in their input order, which fixes
// the lag/rolling semantics for such rows.
func (f *Frame) SortByCountryDay() {
	f.applyPermutation(f.sortedIndex(func(a, b int) bool {
		if f.countries[a] != f.countries[b] {
			return f.countries[a] < f.countries[b]
		}
		return f.days[a].Less(f.days[b])
	}))
}

// SortByID stable-sorts rows by ID ascending.
func (f *Frame) SortByID() {
	f.applyPermutation(f.sortedIndex(func(a, b int) bool {
		return f.ids[a] < f.ids[b]
	}))
}

// sortedIndex returns the row permutation produced by a stable sort under
// less.
func (f *Frame) sortedIndex(less func(a, b int) bool) []int {
	idx := make([]int, f.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return less(idx[i], idx[j])
	})
	return idx
}

// applyPermutation reorders every column by the given row permutation.
func (f *Frame) applyPermutation(idx []int) {
	n := f.Len()

	ids := make([]int64, n)
	days := make([]domain.Day, n)
	countries := make([]string, n)
	for i, j := range idx {
		ids[i] = f.ids[j]
		days[i] = f.days[j]
		countries[i] = f.countries[j]
	}
	f.ids = ids
	f.days = days
	f.countries = countries

	for name, col := range f.cols {
		values := make([]*float64, n)
		for i, j := range idx {
			values[i] = col[j]
		}
		f.cols[name] = values
	}
}
