package postgresjournal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/cancellable-actions-go/journal"
	. "github.com/AntonStoeckl/cancellable-actions-go/testutil/observability/testdoubles" //nolint:revive
)

func Test_NewJournal_WithNilConnection_ReturnsError(t *testing.T) {
	_, pgxErr := NewJournalFromPGXPool(nil)
	_, sqlErr := NewJournalFromSQLDB(nil)
	_, sqlxErr := NewJournalFromSQLX(nil)

	assert.ErrorIs(t, pgxErr, journal.ErrNilDatabaseConnection)
	assert.ErrorIs(t, sqlErr, journal.ErrNilDatabaseConnection)
	assert.ErrorIs(t, sqlxErr, journal.ErrNilDatabaseConnection)
}

func Test_NewJournal_WithEmptyTableName_ReturnsError(t *testing.T) {
	// act
	j, err := newJournal(&fakeDB{}, WithTableName(""))

	// assert
	assert.ErrorIs(t, err, journal.ErrEmptyTableName)
	assert.Nil(t, j)
}

func Test_Journal_EnsureSchema_CreatesQuotedTableAndIndex(t *testing.T) {
	// arrange
	db := &fakeDB{}
	j := GivenJournal(t, db, WithTableName("custom_journal"))

	// act
	err := j.EnsureSchema(context.Background())

	// assert
	require.NoError(t, err)
	statements := db.recorded()
	require.Len(t, statements, 2)
	assert.Contains(t, statements[0], `CREATE TABLE IF NOT EXISTS "custom_journal"`)
	assert.Contains(t, statements[0], "payload JSONB NOT NULL")
	assert.Contains(t, statements[1], `CREATE INDEX IF NOT EXISTS "custom_journal_action_id_idx" ON "custom_journal" (action_id)`)
}

func Test_Journal_EnsureSchema_DatabaseFailure_ReturnsError(t *testing.T) {
	// arrange
	cause := errors.New("permission denied")
	j := GivenJournal(t, &fakeDB{execErr: cause})

	// act
	err := j.EnsureSchema(context.Background())

	// assert
	assert.ErrorIs(t, err, journal.ErrCreatingSchemaFailed)
	assert.ErrorIs(t, err, cause)
}

func Test_Journal_Append_WritesAllEntriesInOneStatement(t *testing.T) {
	// arrange
	db := &fakeDB{rowsAffected: func(string) int64 { return 2 }}
	j := GivenJournal(t, db)
	first := GivenJournalEntry(t, "a", "setProp1", `{"prop1":"helloworld"}`)
	second := GivenJournalEntry(t, "a", "setProp2", `{"prop2":"world"}`)

	// act
	err := j.Append(context.Background(), first, second)

	// assert
	require.NoError(t, err)
	statements := db.recorded()
	require.Len(t, statements, 1)
	assert.True(t, strings.HasPrefix(statements[0], `INSERT INTO "mutation_journal"`))
	assert.Contains(t, statements[0], `'{"prop1":"helloworld"}'::jsonb`)
	assert.Contains(t, statements[0], `'{"prop2":"world"}'::jsonb`)
	assert.Equal(t, 2, strings.Count(statements[0], "::jsonb"))
}

func Test_Journal_Append_DatabaseFailure_ReturnsError(t *testing.T) {
	// arrange
	cause := errors.New("connection reset")
	metricsSpy := NewMetricsCollectorSpy(true)
	tracingSpy := NewTracingCollectorSpy(true)
	j := GivenJournal(t, &fakeDB{execErr: cause}, WithMetrics(metricsSpy), WithTracing(tracingSpy))

	// act
	err := j.Append(context.Background(), GivenJournalEntry(t, "a", "setProp1", `{}`))

	// assert
	assert.ErrorIs(t, err, journal.ErrAppendingEntriesFailed)
	assert.ErrorIs(t, err, cause)
	assert.True(t, metricsSpy.HasCounterRecordForMetric(metricDatabaseErrors).
		WithLabel(spanAttrOperation, operationAppend).
		WithLabel(spanAttrErrorType, errorTypeDatabaseExec).
		Assert())
	assert.True(t, tracingSpy.HasSpanRecordForName(spanNameAppend).WithStatus(statusError).Assert())
}

func Test_Journal_Append_PartialWrite_ReturnsError(t *testing.T) {
	// arrange
	j := GivenJournal(t, &fakeDB{rowsAffected: func(string) int64 { return 0 }})

	// act
	err := j.Append(context.Background(), GivenJournalEntry(t, "a", "setProp1", `{}`))

	// assert
	assert.ErrorIs(t, err, journal.ErrAppendingEntriesFailed)
}

func Test_Journal_Append_WithObservability_RecordsSuccess(t *testing.T) {
	// arrange
	metricsSpy := NewMetricsCollectorSpy(true)
	tracingSpy := NewTracingCollectorSpy(true)
	logSpy := NewContextualLoggerSpy(true)
	j := GivenJournal(t,
		&fakeDB{rowsAffected: func(string) int64 { return 2 }},
		WithMetrics(metricsSpy), WithTracing(tracingSpy), WithContextualLogger(logSpy),
	)

	// act
	err := j.Append(context.Background(),
		GivenJournalEntry(t, "a", "setProp1", `{}`),
		GivenJournalEntry(t, "a", "setProp2", `{}`),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, metricsSpy.CountCounterRecordsForMetric(metricEntriesAppended))
	assert.True(t, metricsSpy.HasDurationRecordForMetric(metricAppendDuration).WithStatus(statusSuccess).Assert())
	assert.True(t, tracingSpy.HasSpanRecordForName(spanNameAppend).
		WithStartAttribute(spanAttrTable, defaultTableName).
		WithStatus(statusSuccess).
		Assert())
	assert.True(t, logSpy.HasDebugLog("executed sql for: append"))
	assert.True(t, logSpy.HasInfoLog("journal operation: entries appended"))
}

func Test_Journal_Query_BuildsFilteredSelect(t *testing.T) {
	// arrange
	db := &fakeDB{}
	j := GivenJournal(t, db)
	filter := journal.BuildFilter().
		ForActionIDs("a", "b").
		WithMutationTypes("setProp1").
		CommittedFrom(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)).
		Finalize()

	// act
	_, err := j.Query(context.Background(), filter)

	// assert
	require.NoError(t, err)
	statements := db.recorded()
	require.Len(t, statements, 1)
	assert.Contains(t, statements[0], `FROM "mutation_journal"`)
	assert.Contains(t, statements[0], `"action_id" IN ('a', 'b')`)
	assert.Contains(t, statements[0], `"mutation_type" IN ('setProp1')`)
	assert.Contains(t, statements[0], `"committed_at" >=`)
	assert.NotContains(t, statements[0], `"committed_at" <=`)
	assert.Contains(t, statements[0], `ORDER BY "sequence_number" ASC`)
}

func Test_Journal_Query_WithEmptyFilter_SelectsEverything(t *testing.T) {
	// arrange
	db := &fakeDB{}
	j := GivenJournal(t, db)

	// act
	_, err := j.Query(context.Background(), journal.BuildFilter().Finalize())

	// assert
	require.NoError(t, err)
	assert.NotContains(t, db.recorded()[0], "WHERE")
}

func Test_Journal_Query_ScansRowsIntoEntries(t *testing.T) {
	// arrange
	committedAt := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	rows := &fakeRows{rows: []fakeRow{
		{actionID: "a", mutationType: "setProp1", payload: []byte(`{"prop1":"x"}`), committedAt: committedAt, sequenceNumber: 7},
		{actionID: "", mutationType: "setProp2", payload: []byte(`null`), committedAt: committedAt, sequenceNumber: 8},
	}}
	j := GivenJournal(t, &fakeDB{rows: rows})

	// act
	entries, err := j.Query(context.Background(), journal.BuildFilter().Finalize())

	// assert
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ActionID)
	assert.Equal(t, "setProp1", entries[0].MutationType)
	assert.Equal(t, uint(7), entries[0].SequenceNumber)
	assert.Equal(t, committedAt, entries[0].CommittedAt)
	assert.Equal(t, uint(8), entries[1].SequenceNumber)
	assert.True(t, rows.closed)
}

func Test_Journal_Query_Failures_ReturnErrors(t *testing.T) {
	cause := errors.New("db failure")

	tests := []struct {
		name        string
		db          *fakeDB
		expectedErr error
	}{
		{
			name:        "query_fails",
			db:          &fakeDB{queryErr: cause},
			expectedErr: journal.ErrQueryingEntriesFailed,
		},
		{
			name:        "scan_fails",
			db:          &fakeDB{rows: &fakeRows{rows: []fakeRow{{}}, scanErr: cause}},
			expectedErr: journal.ErrScanningDBRowFailed,
		},
		{
			name:        "row_holds_invalid_payload",
			db:          &fakeDB{rows: &fakeRows{rows: []fakeRow{{mutationType: "setProp1", payload: []byte(`{`)}}}},
			expectedErr: journal.ErrScanningDBRowFailed,
		},
		{
			name:        "iteration_fails",
			db:          &fakeDB{rows: &fakeRows{iterErr: cause}},
			expectedErr: journal.ErrQueryingEntriesFailed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			metricsSpy := NewMetricsCollectorSpy(true)
			j := GivenJournal(t, tc.db, WithMetrics(metricsSpy))

			// act
			entries, err := j.Query(context.Background(), journal.BuildFilter().Finalize())

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.Nil(t, entries)
			assert.True(t, metricsSpy.HasCounterRecordForMetric(metricDatabaseErrors).
				WithLabel(spanAttrOperation, operationQuery).
				Assert())
		})
	}
}

func GivenJournal(t *testing.T, db *fakeDB, options ...Option) *Journal {
	t.Helper()

	j, err := newJournal(db, options...)
	require.NoError(t, err)

	return j
}

func GivenJournalEntry(t *testing.T, actionID, mutationType, payloadJSON string) journal.Entry {
	t.Helper()

	entry, err := journal.BuildEntry(actionID, mutationType, []byte(payloadJSON), time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	return entry
}
