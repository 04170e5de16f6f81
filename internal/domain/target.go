package domain

// Target is the realized volatility for one observation row.
// Joinable 1:1 onto observations by ID.
type Target struct {
	ID    int64   // observation row identifier
	Value float64 // TARGET volatility value
}
