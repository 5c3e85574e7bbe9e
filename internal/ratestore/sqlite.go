package ratestore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"

	"github.com/Simplici0/estimator/internal/pricing"
)

// SQLiteStore keeps rates in the application SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Load(ctx context.Context) (pricing.RateConfiguration, error) {
	var pageCost float64
	err := s.db.QueryRowContext(ctx, `SELECT page_cost_per_page FROM rate_settings WHERE id = 1`).Scan(&pageCost)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return pricing.RateConfiguration{}, eris.Wrap(err, "ratestore: load settings")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT category, key, value FROM rates ORDER BY category, key`)
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
func (s *SQLiteStore) Save(ctx context.Context, rc pricing.RateConfiguration) error {
	if err := CheckValues(rc); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "ratestore: begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rates`); err != nil {
		return eris.Wrap(err, "ratestore: clear rates")
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO rates (category, key, value) VALUES (?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "ratestore: prepare insert")
	}
	defer stmt.Close()

	for _, r := range Rows(rc) {
		if _, err := stmt.ExecContext(ctx, r.Category, r.Key, r.Value); err != nil {
			return eris.Wrapf(err, "ratestore: insert %s.%s", r.Category, r.Key)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO rate_settings (id, page_cost_per_page, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET page_cost_per_page = excluded.page_cost_per_page, updated_at = excluded.updated_at
	`, rc.PageCostPerPage, time.Now().UTC()); err != nil {
		return eris.Wrap(err, "ratestore: save settings")
	}

	return eris.Wrap(tx.Commit(), "ratestore: commit")
}
