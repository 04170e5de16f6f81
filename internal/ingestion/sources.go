package ingestion

import (
	"context"

	"power-vol-lab/internal/domain"
	"power-vol-lab/internal/frame"
)

// ObservationSource provides raw daily observations from external sources.
type ObservationSource interface {
	// Fetch returns the full observation table. Rows may be unordered;
	// Manager enforces deterministic ordering. The frame carries which raw
	// columns were actually present in the source.
	Fetch(ctx context.Context) (*frame.Frame, error)
}

// TargetSource provides realized volatility targets from external sources.
type TargetSource interface {
	// Fetch returns all targets. Rows may be unordered.
	Fetch(ctx context.Context) ([]*domain.Target, error)
}
