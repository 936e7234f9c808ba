package postgresjournal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/cancellable-actions-go/actions"
	"github.com/AntonStoeckl/cancellable-actions-go/journal"
	"github.com/AntonStoeckl/cancellable-actions-go/journal/postgresjournal/internal/adapters"
)

const (
	defaultTableName = "mutation_journal"
	dialectPostgres  = "postgres"
	castJsonb        = "?::jsonb"

	colSequenceNumber = "sequence_number"
	colActionID       = "action_id"
	colMutationType   = "mutation_type"
	colPayload        = "payload"
	colCommittedAt    = "committed_at"
)

// Journal is the Postgres implementation of journal.Journal.
type Journal struct {
	db               adapters.DBAdapter
	tableName        string
	logger           actions.Logger
	contextualLogger actions.ContextualLogger
	metricsCollector actions.MetricsCollector
	tracingCollector actions.TracingCollector
}

// NewJournalFromPGXPool creates a new Journal using a pgx Pool with optional configuration.
func NewJournalFromPGXPool(db *pgxpool.Pool, options ...Option) (*Journal, error) {
	if db == nil {
		return nil, journal.ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewPGXAdapter(db), options...)
}

// NewJournalFromSQLDB creates a new Journal using a sql.DB with optional configuration.
func NewJournalFromSQLDB(db *sql.DB, options ...Option) (*Journal, error) {
	if db == nil {
		return nil, journal.ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewSQLAdapter(db), options...)
}

// NewJournalFromSQLX creates a new Journal using a sqlx.DB with optional configuration.
func NewJournalFromSQLX(db *sqlx.DB, options ...Option) (*Journal, error) {
	if db == nil {
		return nil, journal.ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewSQLXAdapter(db), options...)
}

func newJournal(db adapters.DBAdapter, options ...Option) (*Journal, error) {
	j := &Journal{
		db:        db,
		tableName: defaultTableName,
	}

	for _, option := range options {
		if err := option(j); err != nil {
			return nil, err
		}
	}

	return j, nil
}

// TableName returns the name of the journal table.
func (j *Journal) TableName() string {
	return j.tableName
}

// EnsureSchema creates the journal table and its action identifier index if they do not exist yet.
func (j *Journal) EnsureSchema(ctx context.Context) error {
	for _, statement := range j.schemaStatements() {
		if _, err := j.db.Exec(ctx, statement); err != nil {
			j.logError(ctx, logMsgSchemaFailed, err, logAttrQuery, statement)
			return errors.Join(journal.ErrCreatingSchemaFailed, err)
		}
	}

	j.logInfo(ctx, logMsgOperation+operationEnsureSchema, logAttrTable, j.tableName)

	return nil
}

func (j *Journal) schemaStatements() []string {
	table := pq.QuoteIdentifier(j.tableName)
	index := pq.QuoteIdentifier(j.tableName + "_" + colActionID + "_idx")

	return []string{
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (
	%s BIGSERIAL PRIMARY KEY,
	%s TEXT NOT NULL,
	%s TEXT NOT NULL,
	%s JSONB NOT NULL,
	%s TIMESTAMPTZ NOT NULL
)`,
			table, colSequenceNumber, colActionID, colMutationType, colPayload, colCommittedAt,
		),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (%s)`, index, table, colActionID),
	}
}

// Append writes the entries in one INSERT statement, so either all of them are journaled or none.
func (j *Journal) Append(ctx context.Context, entry journal.Entry, additionalEntries ...journal.Entry) error {
	allEntries := append(journal.Entries{entry}, additionalEntries...)

	ctx, span := j.startSpan(ctx, spanNameAppend, operationAppend)
	start := time.Now()

	sqlQuery, buildErr := j.buildInsertQuery(allEntries)
	if buildErr != nil {
		j.logError(ctx, logMsgBuildInsertQueryFailed, buildErr, logAttrEntryCount, len(allEntries))
		j.finishFailed(ctx, span, operationAppend, errorTypeBuildQuery, time.Since(start))

		return buildErr
	}

	result, execErr := j.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	j.logQueryWithDuration(ctx, sqlQuery, operationAppend, duration)

	if execErr != nil {
		j.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		j.finishFailed(ctx, span, operationAppend, errorTypeDatabaseExec, duration)

		return errors.Join(journal.ErrAppendingEntriesFailed, execErr)
	}

	rowsAffected, rowsErr := result.RowsAffected()
	if rowsErr == nil && rowsAffected != int64(len(allEntries)) {
		rowsErr = fmt.Errorf("%d of %d entries written", rowsAffected, len(allEntries))
	}

	if rowsErr != nil {
		j.logError(ctx, logMsgRowsAffectedMismatch, rowsErr)
		j.finishFailed(ctx, span, operationAppend, errorTypeRowsAffected, duration)

		return errors.Join(journal.ErrAppendingEntriesFailed, rowsErr)
	}

	j.recordDuration(ctx, metricAppendDuration, duration, operationAppend, statusSuccess)
	j.incrementCounterBy(ctx, metricEntriesAppended, len(allEntries))
	j.logInfo(ctx, logMsgOperation+logMsgEntriesAppended,
		logAttrEntryCount, len(allEntries),
		logAttrDurationMS, toMilliseconds(duration),
	)
	j.finishSpan(span, statusSuccess, map[string]string{spanAttrEntryCount: fmt.Sprintf("%d", len(allEntries))})

	return nil
}

// Query reads the entries matching filter in append order.
func (j *Journal) Query(ctx context.Context, filter journal.Filter) (journal.Entries, error) {
	ctx, span := j.startSpan(ctx, spanNameQuery, operationQuery)
	start := time.Now()

	sqlQuery, buildErr := j.buildSelectQuery(filter)
	if buildErr != nil {
		j.logError(ctx, logMsgBuildSelectQueryFailed, buildErr)
		j.finishFailed(ctx, span, operationQuery, errorTypeBuildQuery, time.Since(start))

		return nil, buildErr
	}

	rows, queryErr := j.db.Query(ctx, sqlQuery)
	if queryErr != nil {
		duration := time.Since(start)
		j.logQueryWithDuration(ctx, sqlQuery, operationQuery, duration)
		j.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		j.finishFailed(ctx, span, operationQuery, errorTypeDatabaseQuery, duration)

		return nil, errors.Join(journal.ErrQueryingEntriesFailed, queryErr)
	}
	defer j.closeRows(ctx, rows)

	entries, scanErr := j.scanEntries(ctx, rows)
	duration := time.Since(start)
	j.logQueryWithDuration(ctx, sqlQuery, operationQuery, duration)

	if scanErr != nil {
		j.finishFailed(ctx, span, operationQuery, errorTypeRowScan, duration)
		return nil, scanErr
	}

	j.recordDuration(ctx, metricQueryDuration, duration, operationQuery, statusSuccess)
	j.logInfo(ctx, logMsgOperation+logMsgQueryCompleted,
		logAttrEntryCount, len(entries),
		logAttrDurationMS, toMilliseconds(duration),
	)
	j.finishSpan(span, statusSuccess, map[string]string{spanAttrEntryCount: fmt.Sprintf("%d", len(entries))})

	return entries, nil
}

func (j *Journal) scanEntries(ctx context.Context, rows adapters.DBRows) (journal.Entries, error) {
	entries := make(journal.Entries, 0)

	for rows.Next() {
		var (
			actionID       string
			mutationType   string
			payload        []byte
			committedAt    time.Time
			sequenceNumber int64
		)

		if err := rows.Scan(&actionID, &mutationType, &payload, &committedAt, &sequenceNumber); err != nil {
			j.logError(ctx, logMsgScanRowFailed, err)
			return nil, errors.Join(journal.ErrScanningDBRowFailed, err)
		}

		entry, buildErr := journal.BuildEntry(actionID, mutationType, payload, committedAt)
		if buildErr != nil {
			j.logError(ctx, logMsgBuildEntryFailed, buildErr, logAttrMutationType, mutationType)
			return nil, errors.Join(journal.ErrScanningDBRowFailed, buildErr)
		}

		entry.SequenceNumber = uint(sequenceNumber)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		j.logError(ctx, logMsgDBQueryFailed, err)
		return nil, errors.Join(journal.ErrQueryingEntriesFailed, err)
	}

	return entries, nil
}

func (j *Journal) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		j.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, err.Error())
	}
}

func (j *Journal) buildInsertQuery(entries journal.Entries) (string, error) {
	records := make([]any, 0, len(entries))
	for _, entry := range entries {
		records = append(records, goqu.Record{
			colActionID:     entry.ActionID,
			colMutationType: entry.MutationType,
			colPayload:      goqu.L(castJsonb, string(entry.PayloadJSON)),
			colCommittedAt:  entry.CommittedAt,
		})
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(j.tableName).
		Rows(records...)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(journal.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (j *Journal) buildSelectQuery(filter journal.Filter) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(j.tableName).
		Select(colActionID, colMutationType, colPayload, colCommittedAt, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	conditions := make([]goqu.Expression, 0, 4)

	if len(filter.ActionIDs()) > 0 {
		conditions = append(conditions, goqu.C(colActionID).In(filter.ActionIDs()))
	}

	if len(filter.MutationTypes()) > 0 {
		conditions = append(conditions, goqu.C(colMutationType).In(filter.MutationTypes()))
	}

	if !filter.CommittedFrom().IsZero() {
		conditions = append(conditions, goqu.C(colCommittedAt).Gte(filter.CommittedFrom()))
	}

	if !filter.CommittedUntil().IsZero() {
		conditions = append(conditions, goqu.C(colCommittedAt).Lte(filter.CommittedUntil()))
	}

	if len(conditions) > 0 {
		selectStmt = selectStmt.Where(goqu.And(conditions...))
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(journal.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

var _ journal.Journal = (*Journal)(nil)
