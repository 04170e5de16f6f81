package domain

// FeatureCell is one cell of the built feature table in long format.
// Corresponds to the feature_values table in ClickHouse; the dynamic column
// set of the feature table maps to one row per (id, feature).
type FeatureCell struct {
	ID      int64    // observation row identifier
	DayID   Day      // observation day
	Country string   // entity key
	Feature string   // column name, raw or derived
	Value   *float64 // NULL when the feature is undefined for this row
}
