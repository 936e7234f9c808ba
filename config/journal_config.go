package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DriverPGX  = "pgx"
	DriverSQL  = "sql"
	DriverSQLX = "sqlx"
)

var (
	// ErrUnsupportedDriver is returned for an ACTIONS_JOURNAL_DRIVER other than pgx, sql or sqlx.
	ErrUnsupportedDriver = errors.New("unsupported journal driver")

	// ErrInvalidPoolSize is returned when the pool limits contradict each other.
	ErrInvalidPoolSize = errors.New("invalid journal pool size")

	// ErrJournalDisabled is returned by OpenJournal when no DSN is configured.
	ErrJournalDisabled = errors.New("journal disabled: no dsn configured")
)

// JournalConfig describes how to reach the Postgres mutation journal.
type JournalConfig struct {
	DSN             string        `env:"ACTIONS_JOURNAL_DSN"`
	Driver          string        `env:"ACTIONS_JOURNAL_DRIVER"             envDefault:"pgx"`
	Table           string        `env:"ACTIONS_JOURNAL_TABLE"              envDefault:"mutation_journal"`
	EnsureSchema    bool          `env:"ACTIONS_JOURNAL_ENSURE_SCHEMA"      envDefault:"true"`
	MaxConns        int32         `env:"ACTIONS_JOURNAL_MAX_CONNS"          envDefault:"10"`
	MinConns        int32         `env:"ACTIONS_JOURNAL_MIN_CONNS"          envDefault:"2"`
	MaxConnLifetime time.Duration `env:"ACTIONS_JOURNAL_MAX_CONN_LIFETIME"  envDefault:"1h"`
	MaxConnIdleTime time.Duration `env:"ACTIONS_JOURNAL_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	ConnectTimeout  time.Duration `env:"ACTIONS_JOURNAL_CONNECT_TIMEOUT"    envDefault:"5s"`
}

// LoadJournalConfig reads the JournalConfig from the environment and validates it.
func LoadJournalConfig() (JournalConfig, error) {
	var cfg JournalConfig
	if err := env.Parse(&cfg); err != nil {
		return JournalConfig{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return JournalConfig{}, err
	}

	return cfg, nil
}

// Enabled reports whether a journal connection is configured.
func (c JournalConfig) Enabled() bool {
	return c.DSN != ""
}

// Validate checks the driver and the pool limits.
func (c JournalConfig) Validate() error {
	if !slices.Contains([]string{DriverPGX, DriverSQL, DriverSQLX}, c.Driver) {
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.Driver)
	}

	if c.MaxConns < 1 || c.MinConns < 0 || c.MinConns > c.MaxConns {
		return fmt.Errorf("%w: min %d, max %d", ErrInvalidPoolSize, c.MinConns, c.MaxConns)
	}

	return nil
}
