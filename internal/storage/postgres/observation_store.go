package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"power-vol-lab/internal/domain"
	"power-vol-lab/internal/storage"
)

// ObservationStore implements storage.ObservationStore using PostgreSQL.
type ObservationStore struct {
	pool *Pool
}

// NewObservationStore creates a new ObservationStore.
func NewObservationStore(pool *Pool) *ObservationStore {
	return &ObservationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ObservationStore = (*ObservationStore)(nil)

const observationColumns = `
	id, day_id, country,
	de_residual_load, fr_residual_load, de_windpow, fr_windpow,
	de_solar, fr_solar, fr_nuclear, de_nuclear, de_fr_exchange,
	fr_de_exchange, gas_ret, coal_ret, carbon_ret, de_coal,
	de_lignite, de_temp, fr_temp, de_wind, fr_wind, de_rain,
	fr_rain, de_consumption, fr_consumption
`

const insertObservationQuery = `
	INSERT INTO observations (` + observationColumns + `
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
	)
`

func observationArgs(o *domain.Observation) []any {
	return []any{
		o.ID,
		o.DayID.String(),
		o.Country,
		o.DEResidualLoad, o.FRResidualLoad, o.DEWindPow, o.FRWindPow,
		o.DESolar, o.FRSolar, o.FRNuclear, o.DENuclear, o.DEFRExchange,
		o.FRDEExchange, o.GasRet, o.CoalRet, o.CarbonRet, o.DECoal,
		o.DELignite, o.DETemp, o.FRTemp, o.DEWind, o.FRWind, o.DERain,
		o.FRRain, o.DEConsumption, o.FRConsumption,
	}
}

// Insert adds a new observation. Returns ErrDuplicateKey if the ID exists.
func (s *ObservationStore) Insert(ctx context.Context, o *domain.Observation) error {
	if o == nil {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertObservationQuery, observationArgs(o)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert observation: %w", err)
	}
	return nil
}

// InsertBulk adds multiple observations atomically. Fails entire batch on any
// duplicate.
func (s *ObservationStore) InsertBulk(ctx context.Context, obs []*domain.Observation) error {
	if len(obs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, o := range obs {
		if o == nil {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, insertObservationQuery, observationArgs(o)...)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert observation in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetAll retrieves all observations, ordered by ID ASC.
func (s *ObservationStore) GetAll(ctx context.Context) ([]*domain.Observation, error) {
	query := `
		SELECT ` + observationColumns + `
		FROM observations
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all observations: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// GetByCountry retrieves all observations for a country, ordered by ID ASC.
func (s *ObservationStore) GetByCountry(ctx context.Context, country string) ([]*domain.Observation, error) {
	query := `
		SELECT ` + observationColumns + `
		FROM observations
		WHERE country = $1
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, country)
	if err != nil {
		return nil, fmt.Errorf("get observations by country: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// scanObservations scans multiple rows into a slice of Observation.
func scanObservations(rows pgx.Rows) ([]*domain.Observation, error) {
	var obs []*domain.Observation

	for rows.Next() {
		var o domain.Observation
		var dayID string

		err := rows.Scan(
			&o.ID,
			&dayID,
			&o.Country,
			&o.DEResidualLoad, &o.FRResidualLoad, &o.DEWindPow, &o.FRWindPow,
			&o.DESolar, &o.FRSolar, &o.FRNuclear, &o.DENuclear, &o.DEFRExchange,
			&o.FRDEExchange, &o.GasRet, &o.CoalRet, &o.CarbonRet, &o.DECoal,
			&o.DELignite, &o.DETemp, &o.FRTemp, &o.DEWind, &o.FRWind, &o.DERain,
			&o.FRRain, &o.DEConsumption, &o.FRConsumption,
		)
		if err != nil {
			return nil, fmt.Errorf("scan observation row: %w", err)
		}

		o.DayID = domain.ParseDay(dayID)
		obs = append(obs, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observation rows: %w", err)
	}

	return obs, nil
}
