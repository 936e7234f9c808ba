package actions

import (
	"errors"
	"fmt"
)

// Operation names the intercepted entry point that rejected a call.
type Operation string

const (
	OperationCommit   Operation = "commit"
	OperationDispatch Operation = "dispatch"
)

// CancelledError is returned by an intercepted commit or dispatch whose action instance was cancelled.
//
// It can only be built by a Canceller. TakeLatest recovers it by checking both the identifier and the
// issuing Canceller, so an unrelated error that merely looks like a cancellation is never swallowed.
type CancelledError struct {
	id        ActionID
	operation Operation
	target    string
	issuer    *Canceller
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("action %s was cancelled: %s %q suppressed", e.id, e.operation, e.target)
}

// ActionID returns the identifier of the cancelled invocation tree.
func (e *CancelledError) ActionID() ActionID {
	return e.id
}

// Operation returns which entry point rejected the call.
func (e *CancelledError) Operation() Operation {
	return e.operation
}

// Target returns the mutation or action name of the rejected call.
func (e *CancelledError) Target() string {
	return e.target
}

// IsCancelledError reports whether err (or any error it wraps) is a CancelledError.
func IsCancelledError(err error) bool {
	var cancelledErr *CancelledError

	return errors.As(err, &cancelledErr)
}

// AsCancelledError returns the first CancelledError in err's chain.
func AsCancelledError(err error) (*CancelledError, bool) {
	var cancelledErr *CancelledError
	if errors.As(err, &cancelledErr) {
		return cancelledErr, true
	}

	return nil, false
}
