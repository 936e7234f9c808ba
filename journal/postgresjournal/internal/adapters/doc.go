// Package adapters provides database adapter implementations for the Postgres mutation journal.
//
// The journal can run on pgxpool.Pool, sql.DB or sqlx.DB. Each adapter hides the specifics of its library
// behind the common DBAdapter interface.
package adapters
