package store

import (
	"context"
	"strconv"
	"time"

	"github.com/AntonStoeckl/cancellable-actions-go/actions"
)

const (
	// CommitsMetric counts commits by mutation and status.
	CommitsMetric = "store_commits_total"

	// DispatchDurationMetric tracks dispatch duration by action and status (OpenTelemetry-compatible).
	DispatchDurationMetric = "store_dispatch_duration_seconds"

	// SpanNameDispatch is the tracing span name for a dispatch.
	SpanNameDispatch = "store.dispatch"
)

const (
	labelMutation = "mutation"
	labelAction   = "action"
	labelStatus   = "status"

	statusSuccess = "success"
	statusError   = "error"

	logMsgMutationCommitted = "mutation committed"
	logMsgMutationFailed    = "mutation failed"
	logMsgJournalingFailed  = "journaling mutation failed"
	logMsgDispatchCompleted = "dispatch completed"

	logAttrMutation   = "mutation"
	logAttrAction     = "action"
	logAttrActionID   = "action_id"
	logAttrStatus     = "status"
	logAttrDurationMS = "duration_ms"
	logAttrError      = "error"
)

func (o *options) logDebug(ctx context.Context, msg string, args ...any) {
	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}

	if o.contextualLogger != nil {
		o.contextualLogger.DebugContext(ctx, msg, args...)
	}
}

func (o *options) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if o.logger != nil {
		o.logger.Error(msg, allArgs...)
	}

	if o.contextualLogger != nil {
		o.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

func (o *options) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if o.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := o.metricsCollector.(actions.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	o.metricsCollector.IncrementCounter(metric, labels)
}

func (o *options) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if o.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := o.metricsCollector.(actions.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	o.metricsCollector.RecordDuration(metric, duration, labels)
}

func (o *options) startDispatchSpan(ctx context.Context, action string) (context.Context, actions.SpanContext) {
	if o.tracingCollector == nil {
		return ctx, nil
	}

	return o.tracingCollector.StartSpan(ctx, SpanNameDispatch, map[string]string{labelAction: action})
}

// finishDispatch records duration, log and span of a completed dispatch.
func (o *options) finishDispatch(ctx context.Context, span actions.SpanContext, action string, duration time.Duration, err error) {
	status := actions.OutcomeOf(nil, err).Kind.String()

	o.recordDuration(ctx, DispatchDurationMetric, duration, map[string]string{labelAction: action, labelStatus: status})
	o.logDebug(ctx, logMsgDispatchCompleted,
		logAttrAction, action,
		logAttrStatus, status,
		logAttrDurationMS, strconv.FormatInt(duration.Milliseconds(), 10),
	)

	if o.tracingCollector != nil && span != nil {
		span.SetStatus(status)
		o.tracingCollector.FinishSpan(span, status, nil)
	}
}
