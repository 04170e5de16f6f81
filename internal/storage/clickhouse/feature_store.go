package clickhouse

import (
	"context"
	"fmt"

	"power-vol-lab/internal/domain"
	"power-vol-lab/internal/storage"
)

// FeatureStore implements storage.FeatureStore using ClickHouse. The feature
// table is stored in long format, one row per (id, feature) cell, because the
// set of feature columns varies with the input schema.
type FeatureStore struct {
	conn *Conn
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(conn *Conn) *FeatureStore {
	return &FeatureStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

// InsertBulk adds multiple cells. Fails entire batch on duplicate (id, feature).
func (s *FeatureStore) InsertBulk(ctx context.Context, cells []*domain.FeatureCell) error {
	if len(cells) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		id      int64
		feature string
	}
	seen := make(map[key]struct{}, len(cells))
	for _, c := range cells {
		if c == nil || c.Feature == "" {
			return storage.ErrInvalidInput
		}
		k := key{c.ID, c.Feature}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows. MergeTree does not
	// enforce uniqueness at insert time.
	for _, c := range cells {
		exists, err := s.exists(ctx, c.ID, c.Feature)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO feature_values (
			id, day_id, country, feature, value
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, c := range cells {
		// Pass nil values directly for the Nullable value column
		err = batch.Append(
			c.ID, c.DayID.String(), c.Country, c.Feature, c.Value,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByID retrieves all cells of one row, ordered by feature name ASC.
func (s *FeatureStore) GetByID(ctx context.Context, id int64) ([]*domain.FeatureCell, error) {
	query := `
		SELECT id, day_id, country, feature, value
		FROM feature_values
		WHERE id = ?
		ORDER BY feature ASC
	`

	rows, err := s.conn.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("query by id: %w", err)
	}
	defer rows.Close()

	return scanFeatureCells(rows)
}

// GetByFeature retrieves one column across all rows, ordered by ID ASC.
func (s *FeatureStore) GetByFeature(ctx context.Context, feature string) ([]*domain.FeatureCell, error) {
	query := `
		SELECT id, day_id, country, feature, value
		FROM feature_values
		WHERE feature = ?
		ORDER BY id ASC
	`

	rows, err := s.conn.Query(ctx, query, feature)
	if err != nil {
		return nil, fmt.Errorf("query by feature: %w", err)
	}
	defer rows.Close()

	return scanFeatureCells(rows)
}

// exists checks if a cell with the given key exists.
func (s *FeatureStore) exists(ctx context.Context, id int64, feature string) (bool, error) {
	query := `
		SELECT count(*) FROM feature_values
		WHERE id = ? AND feature = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, id, feature).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanFeatureCells scans multiple rows.
func scanFeatureCells(rows chRows) ([]*domain.FeatureCell, error) {
	var cells []*domain.FeatureCell

	for rows.Next() {
		var c domain.FeatureCell
		var dayID string

		err := rows.Scan(&c.ID, &dayID, &c.Country, &c.Feature, &c.Value)
		if err != nil {
			return nil, fmt.Errorf("scan feature cell row: %w", err)
		}

		c.DayID = domain.ParseDay(dayID)
		cells = append(cells, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature cell rows: %w", err)
	}

	return cells, nil
}
