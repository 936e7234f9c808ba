// Package postgresjournal provides a PostgreSQL implementation of the mutation journal.
//
// # Overview
//
// The journal appends one row per mutation that reached the host store and reads rows back filtered by
// action identifier, mutation type and commit time. It supports three database adapters:
//   - PGX adapter (github.com/jackc/pgx/v5/pgxpool)
//   - SQL adapter (database/sql)
//   - SQLX adapter (github.com/jmoiron/sqlx)
//
// All SQL is built with goqu (github.com/doug-martin/goqu/v9) using the postgres dialect.
//
// # Schema
//
// EnsureSchema creates the journal table and its action identifier index if they do not exist:
//
//	CREATE TABLE IF NOT EXISTS mutation_journal (
//	    sequence_number BIGSERIAL PRIMARY KEY,
//	    action_id       TEXT NOT NULL,
//	    mutation_type   TEXT NOT NULL,
//	    payload         JSONB NOT NULL,
//	    committed_at    TIMESTAMPTZ NOT NULL
//	)
//
// # Observability
//
// Logging, metrics and tracing are optional and configured with the same dependency-free interfaces the
// actions package uses, so one set of adapters serves the Canceller, the Store and the journal.
package postgresjournal
