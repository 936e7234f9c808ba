package actions

// OutcomeKind classifies how an action invocation ended.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeCancelled
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return statusSuccess
	case OutcomeCancelled:
		return statusCancelled
	case OutcomeFailed:
		return statusError
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of an action invocation: Ok(Value), Cancelled(Err) or Failed(Err).
type Outcome struct {
	Kind  OutcomeKind
	Value any
	Err   error
}

// OutcomeOf classifies the (value, error) pair returned by an action.
func OutcomeOf(value any, err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Kind: OutcomeOK, Value: value}
	case IsCancelledError(err):
		return Outcome{Kind: OutcomeCancelled, Err: err}
	default:
		return Outcome{Kind: OutcomeFailed, Err: err}
	}
}

// Result converts the Outcome back into the conventional (value, error) pair.
func (o Outcome) Result() (any, error) {
	return o.Value, o.Err
}

// IsCancelled reports whether the invocation was suppressed by a cancellation.
func (o Outcome) IsCancelled() bool {
	return o.Kind == OutcomeCancelled
}
