package actions

import (
	"context"
	"sync/atomic"
)

// CommitFunc applies a named mutation to the host store.
type CommitFunc func(ctx context.Context, mutation string, payload any) error

// DispatchFunc invokes a named action registered with the host store.
type DispatchFunc func(ctx context.Context, action string, payload any) (any, error)

// Func is the signature of an action body.
type Func[S any] func(ac *Context[S], payload any) (any, error)

// Map maps action names to action bodies.
type Map[S any] map[string]Func[S]

type (
	inheritedIDKey struct{}
	rootIDKey      struct{}
)

// Context is the execution context of one action invocation.
//
// The host store creates a fresh Context for every dispatch. A Canceller replaces the commit and
// dispatch entry points with intercepting versions before the action body runs, so the body only
// ever sees the intercepting ones.
type Context[S any] struct {
	ctx       context.Context
	id        ActionID
	ticket    uint64
	root      bool
	canceller *Canceller
	commit    CommitFunc
	dispatch  DispatchFunc
	state     func() S
}

// NewContext is used by host stores to build the Context for a single dispatch.
// The state reader may be nil.
func NewContext[S any](ctx context.Context, commit CommitFunc, dispatch DispatchFunc, state func() S) *Context[S] {
	return &Context[S]{
		ctx:      ctx,
		commit:   commit,
		dispatch: dispatch,
		state:    state,
	}
}

// Context returns the context.Context of the invocation. It carries the action identifier, so it must
// be handed on when the body talks to the host store outside of Commit and Dispatch.
func (ac *Context[S]) Context() context.Context {
	return ac.ctx
}

// ID returns the identifier of the invocation tree, or NilActionID if the action was not wrapped.
func (ac *Context[S]) ID() ActionID {
	return ac.id
}

// IsRoot reports whether this invocation created its identifier and owns its cleanup.
func (ac *Context[S]) IsRoot() bool {
	return ac.root
}

// Cancelled reports whether the invocation tree has been cancelled.
// Bodies may use it to skip work whose result would be suppressed anyway.
func (ac *Context[S]) Cancelled() bool {
	if ac.canceller == nil {
		return false
	}

	return ac.canceller.IsCancelled(ac.id)
}

// State returns the current host store state.
func (ac *Context[S]) State() S {
	if ac.state == nil {
		var zero S
		return zero
	}

	return ac.state()
}

// Commit applies a named mutation. It fails with a CancelledError if the invocation tree was cancelled.
func (ac *Context[S]) Commit(mutation string, payload any) error {
	return ac.commit(ac.ctx, mutation, payload)
}

// Dispatch invokes another action as part of this invocation tree.
// It fails with a CancelledError if the invocation tree was cancelled.
func (ac *Context[S]) Dispatch(action string, payload any) (any, error) {
	return ac.dispatch(ac.ctx, action, payload)
}

// dispatchTickets orders invocations by the moment they were dispatched.
var dispatchTickets atomic.Uint64

func nextTicket() uint64 {
	return dispatchTickets.Add(1)
}

type seededRoot struct {
	id     ActionID
	ticket uint64
}

// WithRootID seeds the identifier that the next root invocation started with ctx will use.
// It lets a caller know the identifier up front, e.g. to cancel that invocation later.
//
// Seeding also fixes the dispatch order of that invocation: TakeLatest treats it as dispatched at the
// moment WithRootID was called, even if its goroutine gets to run only later.
func WithRootID(ctx context.Context, id ActionID) context.Context {
	return context.WithValue(ctx, rootIDKey{}, seededRoot{id: id, ticket: nextTicket()})
}

// ActionIDFromContext returns the identifier of the invocation tree that ctx belongs to.
func ActionIDFromContext(ctx context.Context) (ActionID, bool) {
	id, ok := ctx.Value(inheritedIDKey{}).(ActionID)

	return id, ok
}

func seededRootID(ctx context.Context) (seededRoot, bool) {
	seed, ok := ctx.Value(rootIDKey{}).(seededRoot)
	if !ok || seed.id.IsZero() {
		return seededRoot{}, false
	}

	return seed, true
}
