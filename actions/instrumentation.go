package actions

import (
	"context"
	"math"
	"strconv"
	"time"
)

const (
	// InvocationDurationMetric tracks action invocation duration (OpenTelemetry-compatible).
	InvocationDurationMetric = "actions_invocation_duration_seconds"

	// InvocationsMetric counts completed action invocations by action, status and root-ness.
	InvocationsMetric = "actions_invocations_total"

	// CancellationsMetric counts calls to CancelAction, including the ones issued by TakeLatest.
	CancellationsMetric = "actions_cancellations_total"

	// SuppressedCallsMetric counts commits and dispatches rejected because their invocation was cancelled.
	SuppressedCallsMetric = "actions_suppressed_calls_total"

	// SupersededMetric counts invocations cancelled by a newer invocation of the same TakeLatest action.
	SupersededMetric = "actions_superseded_total"

	// RegistrySizeMetric records the number of cancelled identifiers held by the Registry.
	RegistrySizeMetric = "actions_registry_size"

	// SpanNameInvoke is the tracing span name for a wrapped action invocation.
	SpanNameInvoke = "actions.invoke"

	LabelAction    = "action"
	LabelStatus    = "status"
	LabelRoot      = "root"
	LabelOperation = "operation"
	LabelActionID  = "action_id"
	LabelTarget    = "target"
)

const (
	statusSuccess   = "success"
	statusCancelled = "cancelled"
	statusError     = "error"

	logMsgInvocationStarted   = "action invocation started"
	logMsgInvocationCompleted = "action invocation completed"
	logMsgInvocationCancelled = "action invocation cancelled"
	logMsgInvocationFailed    = "action invocation failed"
	logMsgCallSuppressed      = "call suppressed for cancelled action"
	logMsgActionCancelled     = "action cancelled"
	logMsgActionSuperseded    = "action superseded by newer invocation"
	logMsgIDGenerationFailed  = "action id generation failed, using fallback"

	logAttrAction       = "action"
	logAttrActionID     = "action_id"
	logAttrSupersededBy = "superseded_by"
	logAttrRoot         = "root"
	logAttrOperation    = "operation"
	logAttrTarget       = "target"
	logAttrDurationMS   = "duration_ms"
	logAttrError        = "error"
)

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// logDebug logs at debug level on whichever loggers are configured.
func (c *Canceller) logDebug(ctx context.Context, msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}

	if c.contextualLogger != nil {
		c.contextualLogger.DebugContext(ctx, msg, args...)
	}
}

// logInfo logs at info level on whichever loggers are configured.
func (c *Canceller) logInfo(ctx context.Context, msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}

	if c.contextualLogger != nil {
		c.contextualLogger.InfoContext(ctx, msg, args...)
	}
}

// logWarn logs at warn level on whichever loggers are configured.
func (c *Canceller) logWarn(ctx context.Context, msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}

	if c.contextualLogger != nil {
		c.contextualLogger.WarnContext(ctx, msg, args...)
	}
}

// logError logs error information at the error level if a logger is configured.
func (c *Canceller) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if c.logger != nil {
		c.logger.Error(msg, allArgs...)
	}

	if c.contextualLogger != nil {
		c.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

// incrementCounter increments a counter, using the context-aware method if the collector supports it.
func (c *Canceller) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if c.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := c.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	c.metricsCollector.IncrementCounter(metric, labels)
}

// recordDuration records a duration, using the context-aware method if the collector supports it.
func (c *Canceller) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if c.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := c.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	c.metricsCollector.RecordDuration(metric, duration, labels)
}

// recordRegistrySize records the current registry size as a gauge value.
func (c *Canceller) recordRegistrySize(ctx context.Context) {
	if c.metricsCollector == nil {
		return
	}

	size := float64(c.registry.Len())

	if contextualCollector, ok := c.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, RegistrySizeMetric, size, nil)
		return
	}

	c.metricsCollector.RecordValue(RegistrySizeMetric, size, nil)
}

// === Invocation Observer Pattern ===
// The observer bundles span, log and metric handling for one wrapped invocation.

type invocationObserver struct {
	c      *Canceller
	ctx    context.Context
	span   SpanContext
	action string
	id     ActionID
	root   bool
	start  time.Time
}

// startInvocation starts the span and logs the start of a wrapped invocation.
func (c *Canceller) startInvocation(ctx context.Context, action string, id ActionID, root bool) (*invocationObserver, context.Context) {
	obs := &invocationObserver{
		c:      c,
		action: action,
		id:     id,
		root:   root,
		start:  time.Now(),
	}

	if c.tracingCollector != nil {
		ctx, obs.span = c.tracingCollector.StartSpan(ctx, SpanNameInvoke, map[string]string{
			LabelAction:   action,
			LabelActionID: id.String(),
			LabelRoot:     strconv.FormatBool(root),
		})
	}

	obs.ctx = ctx
	c.logDebug(ctx, logMsgInvocationStarted, logAttrAction, action, logAttrActionID, id.String(), logAttrRoot, root)

	return obs, ctx
}

// finish records metrics, logs and closes the span according to the invocation's outcome.
func (o *invocationObserver) finish(err error) {
	duration := time.Since(o.start)
	outcome := OutcomeOf(nil, err)
	status := outcome.Kind.String()

	labels := map[string]string{
		LabelAction: o.action,
		LabelStatus: status,
		LabelRoot:   strconv.FormatBool(o.root),
	}
	o.c.recordDuration(o.ctx, InvocationDurationMetric, duration, labels)
	o.c.incrementCounter(o.ctx, InvocationsMetric, labels)

	args := []any{
		logAttrAction, o.action,
		logAttrActionID, o.id.String(),
		logAttrRoot, o.root,
		logAttrDurationMS, toMilliseconds(duration),
	}

	switch outcome.Kind {
	case OutcomeOK:
		o.c.logDebug(o.ctx, logMsgInvocationCompleted, args...)
	case OutcomeCancelled:
		o.c.logInfo(o.ctx, logMsgInvocationCancelled, args...)
	default:
		o.c.logError(o.ctx, logMsgInvocationFailed, err, args...)
	}

	if o.c.tracingCollector != nil && o.span != nil {
		o.span.SetStatus(status)
		o.c.tracingCollector.FinishSpan(o.span, status, map[string]string{
			logAttrDurationMS: strconv.FormatFloat(toMilliseconds(duration), 'f', 2, 64),
		})
	}
}
