// Package seed prepares a fresh installation: the admin account and a
// starter rate configuration.
package seed

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"

	"github.com/rotisserie/eris"
	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/estimator/internal/pricing"
	"github.com/Simplici0/estimator/internal/ratestore"
)

//go:embed default_rates.yaml
var defaultRatesYAML []byte

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// DefaultRates returns the starter rate configuration.
func DefaultRates() (pricing.RateConfiguration, error) {
	return ratestore.ReadYAML(bytes.NewReader(defaultRatesYAML))
}

// Run executes the startup seed in an idempotent way. Rates are written only
// when the store holds no configuration at all, so an administrator's
// partial edits are never overwritten.
func Run(ctx context.Context, db *sql.DB, rates ratestore.Store, cfg Config) (Stats, error) {
	stats := Stats{}

	if err := seedAdmin(ctx, db, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		return Stats{}, err
	}
	if err := seedRates(ctx, rates, &stats); err != nil {
		return Stats{}, err
	}

	return stats, nil
}

func seedAdmin(ctx context.Context, db *sql.DB, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return eris.Wrap(err, "seed: check admin user")
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return eris.Wrap(err, "seed: hash admin password")
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return eris.Wrap(err, "seed: insert admin user")
	}
	stats.Inserts++
	return nil
}

func seedRates(ctx context.Context, store ratestore.Store, stats *Stats) error {
	current, err := store.Load(ctx)
	if err != nil {
		return eris.Wrap(err, "seed: load rates")
	}
	if len(ratestore.Rows(current)) > 0 || current.PageCostPerPage != 0 {
		return nil
	}

	rc, err := DefaultRates()
	if err != nil {
		return eris.Wrap(err, "seed: default rates")
	}
	if err := store.Save(ctx, rc); err != nil {
		return eris.Wrap(err, "seed: save rates")
	}
	stats.Inserts++
	return nil
}
