package store

import (
	"context"

	"github.com/AntonStoeckl/cancellable-actions-go/actions"
)

// Pending is an action invocation started with DispatchAsync.
type Pending struct {
	id      actions.ActionID
	done    chan struct{}
	outcome actions.Outcome
}

// ID returns the identifier of the invocation tree. Pass it to CancelAction to cancel the invocation.
// It is only meaningful if the action was made cancellable.
func (p *Pending) ID() actions.ActionID {
	return p.id
}

// Done is closed once the invocation has completed.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the invocation has completed and returns its outcome.
func (p *Pending) Wait() actions.Outcome {
	<-p.done
	return p.outcome
}

// WaitContext is like Wait but gives up when ctx is done. Giving up does not cancel the invocation.
func (p *Pending) WaitContext(ctx context.Context) (actions.Outcome, error) {
	select {
	case <-p.done:
		return p.outcome, nil
	case <-ctx.Done():
		return actions.Outcome{}, ctx.Err()
	}
}

// Result blocks until the invocation has completed and returns its value and error.
func (p *Pending) Result() (any, error) {
	return p.Wait().Result()
}
