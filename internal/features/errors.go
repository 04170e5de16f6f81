package features

import "errors"

// Validation errors. Both are fatal; everything else the builder tolerates
// silently (absent optional columns, unparseable days).
var (
	// ErrMissingTarget is returned when AddTarget is set but no target table
	// was provided.
	ErrMissingTarget = errors.New("target table required when AddTarget is set")

	// ErrIDMismatch is returned when the by-ID-sorted ID sequences of the
	// observation and target tables are not element-wise identical.
	ErrIDMismatch = errors.New("observation and target IDs do not match")
)
