// Package config loads the mutation journal configuration from environment variables and opens the
// configured Postgres connection.
//
//	ACTIONS_JOURNAL_DSN                 connection string, the journal is disabled when empty
//	ACTIONS_JOURNAL_DRIVER              pgx (default), sql or sqlx
//	ACTIONS_JOURNAL_TABLE               table name, default mutation_journal
//	ACTIONS_JOURNAL_ENSURE_SCHEMA       create the table on open, default true
//	ACTIONS_JOURNAL_MAX_CONNS           pool size, default 10
//	ACTIONS_JOURNAL_MIN_CONNS           idle connections kept open, default 2
//	ACTIONS_JOURNAL_MAX_CONN_LIFETIME   default 1h
//	ACTIONS_JOURNAL_MAX_CONN_IDLE_TIME  default 5m
//	ACTIONS_JOURNAL_CONNECT_TIMEOUT     default 5s
package config
