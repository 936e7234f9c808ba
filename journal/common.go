package journal

import (
	"errors"
)

var (
	// ErrInvalidPayloadJSON is returned when an entry payload is not valid JSON.
	ErrInvalidPayloadJSON = errors.New("payload json is not valid")

	// ErrEncodingPayloadFailed is returned when a mutation payload cannot be encoded to JSON.
	ErrEncodingPayloadFailed = errors.New("encoding payload failed")

	// ErrEmptyMutationType is returned when an entry is built without a mutation type.
	ErrEmptyMutationType = errors.New("mutation type must not be empty")

	// ErrEmptyTableName is returned when an empty journal table name is supplied.
	ErrEmptyTableName = errors.New("empty journal table name supplied")

	// ErrNilDatabaseConnection is returned when a nil database connection is supplied.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrAppendingEntriesFailed is returned when the append operation fails at the database level.
	ErrAppendingEntriesFailed = errors.New("appending journal entries failed")

	// ErrQueryingEntriesFailed is returned when the query operation fails at the database level.
	ErrQueryingEntriesFailed = errors.New("querying journal entries failed")

	// ErrScanningDBRowFailed is returned when a database row cannot be scanned.
	ErrScanningDBRowFailed = errors.New("scanning db row failed")

	// ErrBuildingQueryFailed is returned when a SQL statement cannot be built.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrCreatingSchemaFailed is returned when the journal table cannot be created.
	ErrCreatingSchemaFailed = errors.New("creating journal schema failed")
)
