package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver for the sql and sqlx drivers

	"github.com/AntonStoeckl/cancellable-actions-go/journal/postgresjournal"
)

// PGXPoolConfig builds the pgxpool.Config for cfg.
func PGXPoolConfig(cfg JournalConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse journal dsn: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	return poolConfig, nil
}

// OpenJournal connects to the configured database and returns the journal together with a function that
// closes the connection. The given options are applied after the table name from cfg.
func OpenJournal(
	ctx context.Context,
	cfg JournalConfig,
	options ...postgresjournal.Option,
) (*postgresjournal.Journal, func() error, error) {
	if !cfg.Enabled() {
		return nil, nil, ErrJournalDisabled
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	options = append([]postgresjournal.Option{postgresjournal.WithTableName(cfg.Table)}, options...)

	var (
		j       *postgresjournal.Journal
		closeFn func() error
		err     error
	)

	switch cfg.Driver {
	case DriverPGX:
		j, closeFn, err = openPGX(ctx, cfg, options)
	case DriverSQL:
		j, closeFn, err = openSQL(ctx, cfg, options)
	default:
		j, closeFn, err = openSQLX(ctx, cfg, options)
	}

	if err != nil {
		return nil, nil, err
	}

	if cfg.EnsureSchema {
		if schemaErr := j.EnsureSchema(ctx); schemaErr != nil {
			return nil, nil, errors.Join(schemaErr, closeFn())
		}
	}

	return j, closeFn, nil
}

func openPGX(ctx context.Context, cfg JournalConfig, options []postgresjournal.Option) (*postgresjournal.Journal, func() error, error) {
	poolConfig, err := PGXPoolConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("open journal pool: %w", err)
	}

	closePool := func() error {
		pool.Close()
		return nil
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping journal database: %w", pingErr)
	}

	j, err := postgresjournal.NewJournalFromPGXPool(pool, options...)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	return j, closePool, nil
}

func openSQL(ctx context.Context, cfg JournalConfig, options []postgresjournal.Option) (*postgresjournal.Journal, func() error, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open journal database: %w", err)
	}

	configurePool(db, cfg)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		return nil, nil, errors.Join(fmt.Errorf("ping journal database: %w", pingErr), db.Close())
	}

	j, err := postgresjournal.NewJournalFromSQLDB(db, options...)
	if err != nil {
		return nil, nil, errors.Join(err, db.Close())
	}

	return j, db.Close, nil
}

func openSQLX(ctx context.Context, cfg JournalConfig, options []postgresjournal.Option) (*postgresjournal.Journal, func() error, error) {
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open journal database: %w", err)
	}

	configurePool(db.DB, cfg)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		return nil, nil, errors.Join(fmt.Errorf("ping journal database: %w", pingErr), db.Close())
	}

	j, err := postgresjournal.NewJournalFromSQLX(db, options...)
	if err != nil {
		return nil, nil, errors.Join(err, db.Close())
	}

	return j, db.Close, nil
}

func configurePool(db *sql.DB, cfg JournalConfig) {
	db.SetMaxOpenConns(int(cfg.MaxConns))
	db.SetMaxIdleConns(int(cfg.MinConns))
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
}
