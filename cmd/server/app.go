package main

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Simplici0/estimator/internal/config"
	"github.com/Simplici0/estimator/internal/db"
	"github.com/Simplici0/estimator/internal/migrations"
	"github.com/Simplici0/estimator/internal/ratelimit"
	"github.com/Simplici0/estimator/internal/ratestore"
	"github.com/Simplici0/estimator/internal/redis"
)

// app holds the long-lived resources shared by the commands.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sql.DB
	pool   *pgxpool.Pool
	redis  *redis.Client
	rates  ratestore.Store
}

func openApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	database, err := db.Open(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	a.db = database

	var store ratestore.Store
	switch cfg.Rates.Driver {
	case "", "sqlite":
		store = ratestore.NewSQLiteStore(database)
	case "postgres":
		pool, err := db.OpenPostgres(ctx, cfg.Rates.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.pool = pool
		store = ratestore.NewPostgresStore(pool)
	default:
		a.Close()
		return nil, eris.Errorf("unknown rates driver %q", cfg.Rates.Driver)
	}

	if cfg.Redis.Addr != "" {
		a.redis = redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := a.redis.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, continuing without a healthy cache", zap.Error(err))
		}
		store = ratestore.NewCachedStore(store, a.redis, cfg.Rates.CacheTTL, logger)
	}
	a.rates = store

	return a, nil
}

// migrate applies the SQLite schema and, when rates live in Postgres, the
// Postgres schema too.
func (a *app) migrate(ctx context.Context) error {
	if err := migrations.Up(ctx, a.db, migrations.SQLite); err != nil {
		return err
	}
	if a.pool == nil {
		return nil
	}
	pg := stdlib.OpenDBFromPool(a.pool)
	defer pg.Close()
	return migrations.Up(ctx, pg, migrations.Postgres)
}

// limiter builds the fixed-window limiter for one endpoint.
func (a *app) limiter(name string, w config.WindowConfig) ratelimit.Limiter {
	if a.cfg.RateLimit.Backend == "redis" {
		if a.redis != nil {
			return ratelimit.NewRedisLimiter(a.redis, name, w.Limit, w.Period)
		}
		a.logger.Warn("redis rate limiting requested without redis.addr, using memory", zap.String("limiter", name))
	}
	return ratelimit.NewMemoryLimiter(w.Limit, w.Period)
}

func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
