package actions

import (
	"errors"
)

var ErrNotCancellable = errors.New("action context is not cancellation-aware, wrap the action with MakeCancellable")
var ErrNilRegistry = errors.New("registry must not be nil")
var ErrNilIDGenerator = errors.New("id generator must not be nil")

// ErrActionPanicked is what observability reports for an invocation whose body panicked.
// The panic itself is not recovered.
var ErrActionPanicked = errors.New("action body panicked")
