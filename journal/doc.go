// Package journal defines the mutation journal: an append-only record of every mutation that reached a
// host store, tagged with the action invocation tree that issued it.
//
// Entries are plain scalars with the payload encoded as JSON. Suppressed commits never reach the store and
// therefore never show up in a journal, which makes the journal a convenient audit trail for cancellation.
//
// The Postgres implementation lives in journal/postgresjournal, MemoryJournal serves tests and demos.
package journal
