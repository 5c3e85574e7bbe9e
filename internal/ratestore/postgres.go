package ratestore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/Simplici0/estimator/internal/db"
	"github.com/Simplici0/estimator/internal/pricing"
)

// PostgresStore keeps rates in a shared Postgres database so several
// instances price from the same configuration.
type PostgresStore struct {
	pool db.Pool
}

func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Load(ctx context.Context) (pricing.RateConfiguration, error) {
	var pageCost float64
	err := s.pool.QueryRow(ctx, `SELECT page_cost_per_page FROM rate_settings WHERE id = 1`).Scan(&pageCost)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return pricing.RateConfiguration{}, eris.Wrap(err, "ratestore: load settings")
	}

	rows, err := s.pool.Query(ctx, `SELECT category, key, value FROM rates ORDER BY category, key`)
	if err != nil {
		return pricing.RateConfiguration{}, eris.Wrap(err, "ratestore: query rates")
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Category, &r.Key, &r.Value); err != nil {
			return pricing.RateConfiguration{}, eris.Wrap(err, "ratestore: scan rate")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return pricing.RateConfiguration{}, eris.Wrap(err, "ratestore: iterate rates")
	}

	return FromRows(out, pageCost)
}

// Save replaces the whole configuration in one transaction.
func (s *PostgresStore) Save(ctx context.Context, rc pricing.RateConfiguration) error {
	if err := CheckValues(rc); err != nil {
		return err
	}

	rows := Rows(rc)
	categories := make([]string, len(rows))
	keys := make([]string, len(rows))
	values := make([]float64, len(rows))
	for i, r := range rows {
		categories[i], keys[i], values[i] = r.Category, r.Key, r.Value
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "ratestore: begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM rates`); err != nil {
		return eris.Wrap(err, "ratestore: clear rates")
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO rates (category, key, value)
		SELECT * FROM unnest($1::text[], $2::text[], $3::float8[])
	`, categories, keys, values); err != nil {
		return eris.Wrap(err, "ratestore: insert rates")
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO rate_settings (id, page_cost_per_page, updated_at) VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET page_cost_per_page = EXCLUDED.page_cost_per_page, updated_at = now()
	`, rc.PageCostPerPage); err != nil {
		return eris.Wrap(err, "ratestore: save settings")
	}

	return eris.Wrap(tx.Commit(ctx), "ratestore: commit")
}
