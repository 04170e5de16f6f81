package domain

import (
	"strconv"
	"time"
)

// DayKind discriminates the representations a DAY_ID value can take.
type DayKind int

const (
	DayNumeric DayKind = iota // orderable numeric day index
	DayDate                   // parsed calendar date
	DayRaw                    // unparseable text, kept unchanged
)

// Day is an orderable day identifier. Raw inputs are numeric day indexes or
// calendar dates; anything that fails best-effort parsing is carried as raw
// text so the column is never altered by a failed parse.
type Day struct {
	Kind DayKind
	Num  float64
	Time time.Time
	Raw  string
}

// NumericDay returns a numeric day index.
func NumericDay(v float64) Day {
	return Day{Kind: DayNumeric, Num: v}
}

// DateDay returns a calendar-date day.
func DateDay(t time.Time) Day {
	return Day{Kind: DayDate, Time: t.UTC()}
}

// RawDay returns an unparsed text day.
func RawDay(s string) Day {
	return Day{Kind: DayRaw, Raw: s}
}

// dayDateLayouts are tried in order by ParseDay.
var dayDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
}

// ParseDay parses a DAY_ID cell best-effort: numeric first, then calendar
// date, otherwise the original text is preserved. Never fails.
func ParseDay(s string) Day {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return NumericDay(v)
	}
	for _, layout := range dayDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateDay(t)
		}
	}
	return RawDay(s)
}

// Compare orders days by kind (numeric < date < raw), then by value.
// Mixed kinds only occur when parsing fell back for part of a column.
func (d Day) Compare(other Day) int {
	if d.Kind != other.Kind {
		if d.Kind < other.Kind {
			return -1
		}
		return 1
	}
	switch d.Kind {
	case DayNumeric:
		switch {
		case d.Num < other.Num:
			return -1
		case d.Num > other.Num:
			return 1
		}
		return 0
	case DayDate:
		switch {
		case d.Time.Before(other.Time):
			return -1
		case d.Time.After(other.Time):
			return 1
		}
		return 0
	default:
		switch {
		case d.Raw < other.Raw:
			return -1
		case d.Raw > other.Raw:
			return 1
		}
		return 0
	}
}

// Less reports whether d orders strictly before other.
func (d Day) Less(other Day) bool {
	return d.Compare(other) < 0
}

// Key returns the canonical grouping key for per-day operations.
// Distinct days always map to distinct keys.
func (d Day) Key() string {
	switch d.Kind {
	case DayNumeric:
		return "n:" + strconv.FormatFloat(d.Num, 'g', -1, 64)
	case DayDate:
		return "d:" + d.Time.Format(time.RFC3339)
	default:
		return "r:" + d.Raw
	}
}

// String renders the day the way it is written back to CSV.
func (d Day) String() string {
	switch d.Kind {
	case DayNumeric:
		return strconv.FormatFloat(d.Num, 'g', -1, 64)
	case DayDate:
		return d.Time.Format("2006-01-02")
	default:
		return d.Raw
	}
}
