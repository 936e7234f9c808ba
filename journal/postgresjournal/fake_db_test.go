package postgresjournal

import (
	"context"
	"sync"
	"time"

	"github.com/AntonStoeckl/cancellable-actions-go/journal/postgresjournal/internal/adapters"
)

type fakeRow struct {
	actionID       string
	mutationType   string
	payload        []byte
	committedAt    time.Time
	sequenceNumber int64
}

// fakeDB is a scripted DBAdapter that records every statement it receives.
type fakeDB struct {
	mu           sync.Mutex
	statements   []string
	rows         *fakeRows
	queryErr     error
	execErr      error
	rowsAffected func(statement string) int64
}

func (db *fakeDB) Query(_ context.Context, query string) (adapters.DBRows, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.statements = append(db.statements, query)
	if db.queryErr != nil {
		return nil, db.queryErr
	}

	if db.rows == nil {
		db.rows = &fakeRows{}
	}

	return db.rows, nil
}

func (db *fakeDB) Exec(_ context.Context, query string) (adapters.DBResult, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.statements = append(db.statements, query)
	if db.execErr != nil {
		return nil, db.execErr
	}

	var affected int64
	if db.rowsAffected != nil {
		affected = db.rowsAffected(query)
	}

	return fakeResult{affected: affected}, nil
}

func (db *fakeDB) recorded() []string {
	db.mu.Lock()
	defer db.mu.Unlock()

	return append([]string(nil), db.statements...)
}

type fakeRows struct {
	rows    []fakeRow
	pos     int
	scanErr error
	iterErr error
	closed  bool
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}

	r.pos++

	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}

	row := r.rows[r.pos-1]
	*dest[0].(*string) = row.actionID
	*dest[1].(*string) = row.mutationType
	*dest[2].(*[]byte) = row.payload
	*dest[3].(*time.Time) = row.committedAt
	*dest[4].(*int64) = row.sequenceNumber

	return nil
}

func (r *fakeRows) Err() error {
	return r.iterErr
}

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

type fakeResult struct {
	affected int64
}

func (r fakeResult) RowsAffected() (int64, error) {
	return r.affected, nil
}
