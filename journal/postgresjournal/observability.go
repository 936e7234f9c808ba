package postgresjournal

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/cancellable-actions-go/actions"
)

const (
	// Metric names (OpenTelemetry-compatible).
	metricAppendDuration  = "journal_append_duration_seconds"
	metricQueryDuration   = "journal_query_duration_seconds"
	metricEntriesAppended = "journal_entries_appended_total"
	metricDatabaseErrors  = "journal_database_errors_total"

	spanNameAppend = "journal.append"
	spanNameQuery  = "journal.query"

	spanAttrOperation  = "operation"
	spanAttrTable      = "table"
	spanAttrEntryCount = "entry_count"
	spanAttrErrorType  = "error_type"
	spanAttrDurationMS = "duration_ms"

	operationAppend       = "append"
	operationQuery        = "query"
	operationEnsureSchema = "ensure_schema"

	statusSuccess = "success"
	statusError   = "error"

	errorTypeBuildQuery    = "build_query"
	errorTypeDatabaseExec  = "database_exec"
	errorTypeDatabaseQuery = "database_query"
	errorTypeRowsAffected  = "rows_affected"
	errorTypeRowScan       = "row_scan"

	logMsgBuildInsertQueryFailed = "failed to build insert query"
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgDBExecFailed           = "database execution failed during journal append"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgRowsAffectedMismatch   = "journal append wrote an unexpected number of rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgBuildEntryFailed       = "failed to build journal entry from database row"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgSchemaFailed           = "failed to create journal schema"
	logMsgEntriesAppended        = "entries appended"
	logMsgQueryCompleted         = "query completed"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "journal operation: "

	logAttrError        = "error"
	logAttrQuery        = "query"
	logAttrTable        = "table"
	logAttrEntryCount   = "entry_count"
	logAttrMutationType = "mutation_type"
	logAttrDurationMS   = "duration_ms"
)

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (j *Journal) logQueryWithDuration(ctx context.Context, sqlQuery string, operation string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	if j.logger != nil {
		j.logger.Debug(logMsgSQLExecuted+operation, args...)
	}

	if j.contextualLogger != nil {
		j.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+operation, args...)
	}
}

// logInfo logs operational information at info level.
func (j *Journal) logInfo(ctx context.Context, msg string, args ...any) {
	if j.logger != nil {
		j.logger.Info(msg, args...)
	}

	if j.contextualLogger != nil {
		j.contextualLogger.InfoContext(ctx, msg, args...)
	}
}

func (j *Journal) logWarn(ctx context.Context, msg string, args ...any) {
	if j.logger != nil {
		j.logger.Warn(msg, args...)
	}

	if j.contextualLogger != nil {
		j.contextualLogger.WarnContext(ctx, msg, args...)
	}
}

// logError logs error information at the error level.
func (j *Journal) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if j.logger != nil {
		j.logger.Error(msg, allArgs...)
	}

	if j.contextualLogger != nil {
		j.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordDuration records a duration, using the context-aware method if the collector supports it.
func (j *Journal) recordDuration(ctx context.Context, metric string, duration time.Duration, operation, status string) {
	if j.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"status":          status,
	}

	if contextualCollector, ok := j.metricsCollector.(actions.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	j.metricsCollector.RecordDuration(metric, duration, labels)
}

// incrementCounterBy records n increments of metric.
func (j *Journal) incrementCounterBy(ctx context.Context, metric string, n int) {
	if j.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrTable: j.tableName}

	for range n {
		if contextualCollector, ok := j.metricsCollector.(actions.ContextualMetricsCollector); ok {
			contextualCollector.IncrementCounterContext(ctx, metric, labels)
			continue
		}

		j.metricsCollector.IncrementCounter(metric, labels)
	}
}

// recordErrorMetrics records a database error, using the context-aware method if the collector supports it.
func (j *Journal) recordErrorMetrics(ctx context.Context, operation, errorType string) {
	if j.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"status":          statusError,
		spanAttrErrorType: errorType,
	}

	if contextualCollector, ok := j.metricsCollector.(actions.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
		return
	}

	j.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
}

// startSpan starts a tracing span if the tracing collector is configured.
func (j *Journal) startSpan(ctx context.Context, name, operation string) (context.Context, actions.SpanContext) {
	if j.tracingCollector == nil {
		return ctx, nil
	}

	return j.tracingCollector.StartSpan(ctx, name, map[string]string{
		spanAttrOperation: operation,
		spanAttrTable:     j.tableName,
	})
}

// finishSpan finishes a tracing span if the tracing collector is configured.
func (j *Journal) finishSpan(span actions.SpanContext, status string, attrs map[string]string) {
	if j.tracingCollector == nil || span == nil {
		return
	}

	span.SetStatus(status)
	j.tracingCollector.FinishSpan(span, status, attrs)
}

// finishFailed records the error metrics and closes the span of a failed operation.
func (j *Journal) finishFailed(ctx context.Context, span actions.SpanContext, operation, errorType string, duration time.Duration) {
	metric := metricQueryDuration
	if operation == operationAppend {
		metric = metricAppendDuration
	}

	j.recordDuration(ctx, metric, duration, operation, statusError)
	j.recordErrorMetrics(ctx, operation, errorType)
	j.finishSpan(span, statusError, map[string]string{
		spanAttrErrorType:  errorType,
		spanAttrDurationMS: strconv.FormatFloat(toMilliseconds(duration), 'f', 2, 64),
	})
}
