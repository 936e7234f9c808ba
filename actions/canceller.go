package actions

import (
	"context"
)

// Canceller makes actions cancellation-aware and cancels their invocations.
//
// It owns a Registry and hands out one ActionID per root invocation. Every commit and dispatch issued by
// a wrapped action is checked against the Registry first and rejected with a CancelledError once the
// invocation tree has been cancelled.
type Canceller struct {
	registry         *Registry
	newID            IDGenerator
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// Option defines a functional option for configuring a Canceller.
type Option func(*Canceller) error

// WithRegistry makes the Canceller use the given Registry instead of a private one.
// Cancellers sharing a Registry see each other's cancellations.
func WithRegistry(registry *Registry) Option {
	return func(c *Canceller) error {
		if registry == nil {
			return ErrNilRegistry
		}

		c.registry = registry

		return nil
	}
}

// WithIDGenerator replaces the UUIDv7 generator used for root invocations.
func WithIDGenerator(generator IDGenerator) Option {
	return func(c *Canceller) error {
		if generator == nil {
			return ErrNilIDGenerator
		}

		c.newID = generator

		return nil
	}
}

// WithLogger sets the logger for the Canceller.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: invocation start/completion and suppressed calls (development use)
// Info level: cancellations, supersessions and cancelled invocations (production-safe)
// Warn level: id generation fallbacks
// Error level: failed invocations.
func WithLogger(logger Logger) Option {
	return func(c *Canceller) error {
		c.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Canceller.
// The contextual logger receives the same messages as the Logger, together with the invocation's context.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(c *Canceller) error {
		c.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Canceller.
func WithMetrics(collector MetricsCollector) Option {
	return func(c *Canceller) error {
		c.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Canceller.
// Every wrapped invocation gets its own span.
func WithTracing(collector TracingCollector) Option {
	return func(c *Canceller) error {
		c.tracingCollector = collector
		return nil
	}
}

// NewCanceller creates a Canceller with a private Registry unless WithRegistry is given.
func NewCanceller(options ...Option) (*Canceller, error) {
	c := &Canceller{
		registry: NewRegistry(),
		newID:    defaultIDGenerator,
	}

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

var defaultCanceller = &Canceller{
	registry: NewRegistry(),
	newID:    defaultIDGenerator,
}

// Default returns the process-wide Canceller. It starts with an empty Registry and no observability.
func Default() *Canceller {
	return defaultCanceller
}

// CancelAction cancels the invocation tree id on the process-wide Canceller.
func CancelAction(id ActionID) {
	defaultCanceller.CancelAction(id)
}

// Registry returns the Registry the Canceller checks calls against.
func (c *Canceller) Registry() *Registry {
	return c.registry
}

// CancelAction cancels the invocation tree id. Every later commit or dispatch of that tree fails with a
// CancelledError. Calls that already went through stay applied. Cancelling twice, or cancelling an
// unknown or already completed id, has no adverse effect.
func (c *Canceller) CancelAction(id ActionID) {
	c.cancel(context.Background(), id)
}

// IsCancelled reports whether the invocation tree id is currently cancelled.
func (c *Canceller) IsCancelled(id ActionID) bool {
	return c.registry.IsCancelled(id)
}

func (c *Canceller) cancel(ctx context.Context, id ActionID) {
	c.registry.Cancel(id)

	c.incrementCounter(ctx, CancellationsMetric, nil)
	c.recordRegistrySize(ctx)
	c.logInfo(ctx, logMsgActionCancelled, logAttrActionID, id.String())
}

// MakeCancellable returns a new Map in which every action is wrapped by c. Keys are unchanged.
// A nil c means the process-wide Default Canceller.
//
// It must be applied to the whole action set of one store, because nested dispatches resolve by
// name against the store's registered actions.
func MakeCancellable[S any](c *Canceller, actionMap Map[S]) Map[S] {
	if c == nil {
		c = defaultCanceller
	}

	wrapped := make(Map[S], len(actionMap))
	for name, fn := range actionMap {
		wrapped[name] = Wrap(c, name, fn)
	}

	return wrapped
}

// Wrap makes a single action cancellation-aware. The name is used for observability only.
func Wrap[S any](c *Canceller, name string, fn Func[S]) Func[S] {
	if c == nil {
		c = defaultCanceller
	}

	return func(ac *Context[S], payload any) (any, error) {
		id, root := claim(c, ac)

		originalCommit := ac.commit
		originalDispatch := ac.dispatch

		ac.commit = func(ctx context.Context, mutation string, payload any) error {
			if c.registry.IsCancelled(id) {
				return c.suppressed(ctx, id, OperationCommit, mutation)
			}

			return originalCommit(ctx, mutation, payload)
		}

		ac.dispatch = func(ctx context.Context, action string, payload any) (any, error) {
			if c.registry.IsCancelled(id) {
				return nil, c.suppressed(ctx, id, OperationDispatch, action)
			}

			return originalDispatch(ctx, action, payload)
		}

		obs, spanCtx := c.startInvocation(ac.ctx, name, id, root)
		ac.ctx = spanCtx

		finished := false
		defer func() {
			if !finished {
				obs.finish(ErrActionPanicked)
			}
		}()

		result, err := runBody(c, ac, fn, payload, id, root)
		finished = true
		obs.finish(err)

		return result, err
	}
}

// runBody executes the body and clears the identifier afterward if this invocation is the root.
// The deferred clear also runs if the body panics.
func runBody[S any](c *Canceller, ac *Context[S], fn Func[S], payload any, id ActionID, root bool) (any, error) {
	if root {
		defer func() {
			c.registry.Clear(id)
			c.recordRegistrySize(ac.ctx)
		}()
	}

	return fn(ac, payload)
}

// claim decides whether ac starts a new invocation tree or joins the one carried by its context.
// Every invocation gets a dispatch ticket here, except a seeded root which brings its own.
func claim[S any](c *Canceller, ac *Context[S]) (ActionID, bool) {
	ac.canceller = c

	if id, ok := ActionIDFromContext(ac.ctx); ok {
		ac.id, ac.ticket, ac.root = id, nextTicket(), false
		return id, false
	}

	seed, ok := seededRootID(ac.ctx)
	if !ok {
		seed = seededRoot{id: c.generateID(ac.ctx), ticket: nextTicket()}
	}

	ac.ctx = context.WithValue(ac.ctx, inheritedIDKey{}, seed.id)
	ac.id, ac.ticket, ac.root = seed.id, seed.ticket, true

	return seed.id, true
}

func (c *Canceller) generateID(ctx context.Context) ActionID {
	id, err := c.newID()
	if err != nil || id.IsZero() {
		fallback := NewActionID()
		c.logWarn(ctx, logMsgIDGenerationFailed, logAttrActionID, fallback.String())

		return fallback
	}

	return id
}

// suppressed builds the CancelledError for a rejected call and records it.
func (c *Canceller) suppressed(ctx context.Context, id ActionID, operation Operation, target string) error {
	c.incrementCounter(ctx, SuppressedCallsMetric, map[string]string{LabelOperation: string(operation)})
	c.logDebug(ctx, logMsgCallSuppressed, logAttrActionID, id.String(), logAttrOperation, string(operation), logAttrTarget, target)

	return &CancelledError{
		id:        id,
		operation: operation,
		target:    target,
		issuer:    c,
	}
}

// issued reports whether err carries a CancelledError that c raised for id.
func (c *Canceller) issued(err error, id ActionID) bool {
	cancelledErr, ok := AsCancelledError(err)

	return ok && cancelledErr.issuer == c && cancelledErr.id == id
}
