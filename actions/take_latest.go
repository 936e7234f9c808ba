package actions

import (
	"slices"
	"sync"
)

type pendingCall struct {
	id     ActionID
	ticket uint64
}

// pendingCalls is the per-TakeLatest record of invocations not yet known to be superseded,
// plus the most recently dispatched invocation that has entered so far.
type pendingCalls struct {
	mu     sync.Mutex
	calls  []pendingCall
	latest pendingCall
}

// enter admits call and returns the invocations it supersedes together with the one that superseded
// them. Invocations are ordered by dispatch ticket, not by the order in which they get here:
// a call dispatched before the latest one that already entered is superseded on arrival.
// Calls of the same invocation tree never cancel each other.
// Cancellation happens under the lock, so no superseded invocation can slip a call in between.
func (p *pendingCalls) enter(call pendingCall, cancel func(ActionID)) ([]ActionID, ActionID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if call.ticket < p.latest.ticket && call.id != p.latest.id {
		cancel(call.id)
		return []ActionID{call.id}, p.latest.id
	}

	superseded := make([]ActionID, 0, len(p.calls))
	for _, previous := range p.calls {
		if previous.id == call.id {
			continue
		}

		cancel(previous.id)
		superseded = append(superseded, previous.id)
	}

	p.calls = append(p.calls[:0], call)
	if call.ticket > p.latest.ticket {
		p.latest = call
	}

	return superseded, call.id
}

// done removes id once its invocation has completed.
func (p *pendingCalls) done(id ActionID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = slices.DeleteFunc(p.calls, func(pending pendingCall) bool {
		return pending.id == id
	})
}

// TakeLatest wraps an action so that only its most recently dispatched invocation may commit or dispatch.
//
// Every new invocation first cancels all earlier invocations of the same TakeLatest action that are still
// in flight, then runs. "Earlier" means dispatched earlier: an invocation started with DispatchAsync (or
// seeded with WithRootID) counts from the moment it was dispatched, so an older invocation whose goroutine
// happens to arrive after a newer one is superseded right away and its body is not run.
//
// A superseded invocation resolves with (nil, nil): its CancelledError is absorbed here and never reaches
// the caller. Any other error propagates unchanged.
//
// The result must itself be passed through MakeCancellable (or Wrap), otherwise it fails with
// ErrNotCancellable. Each call of TakeLatest has its own independent pending state.
func TakeLatest[S any](fn Func[S]) Func[S] {
	pending := &pendingCalls{}

	return func(ac *Context[S], payload any) (any, error) {
		c := ac.canceller
		if c == nil || ac.id.IsZero() {
			return nil, ErrNotCancellable
		}

		id := ac.id
		cancel := func(previous ActionID) {
			c.cancel(ac.ctx, previous)
		}

		superseded, latest := pending.enter(pendingCall{id: id, ticket: ac.ticket}, cancel)
		for _, previous := range superseded {
			c.incrementCounter(ac.ctx, SupersededMetric, nil)
			c.logInfo(ac.ctx, logMsgActionSuperseded, logAttrActionID, previous.String(), logAttrSupersededBy, latest.String())
		}

		if latest != id {
			return nil, nil
		}

		defer pending.done(id)

		result, err := fn(ac, payload)
		if err != nil {
			if c.issued(err, id) {
				return nil, nil
			}

			return nil, err
		}

		return result, nil
	}
}
