package postgres

import (
	"context"
	"fmt"

	"power-vol-lab/internal/domain"
	"power-vol-lab/internal/storage"
)

// TargetStore implements storage.TargetStore using PostgreSQL.
type TargetStore struct {
	pool *Pool
}

// NewTargetStore creates a new TargetStore.
func NewTargetStore(pool *Pool) *TargetStore {
	return &TargetStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TargetStore = (*TargetStore)(nil)

// InsertBulk adds multiple targets atomically. Fails entire batch on any
// duplicate ID.
func (s *TargetStore) InsertBulk(ctx context.Context, targets []*domain.Target) error {
	if len(targets) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO targets (id, value) VALUES ($1, $2)`

	for _, t := range targets {
		if t == nil {
			return storage.ErrInvalidInput
		}
		if _, err := tx.Exec(ctx, query, t.ID, t.Value); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert target in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetAll retrieves all targets, ordered by ID ASC.
func (s *TargetStore) GetAll(ctx context.Context) ([]*domain.Target, error) {
	query := `SELECT id, value FROM targets ORDER BY id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all targets: %w", err)
	}
	defer rows.Close()

	var targets []*domain.Target
	for rows.Next() {
		var t domain.Target
		if err := rows.Scan(&t.ID, &t.Value); err != nil {
			return nil, fmt.Errorf("scan target row: %w", err)
		}
		targets = append(targets, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate target rows: %w", err)
	}

	return targets, nil
}
