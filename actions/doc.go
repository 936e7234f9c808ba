// Package actions provides cooperative cancellation for asynchronous store actions
// following the dispatch/commit model.
//
// An action is a function that receives an execution Context and a payload. While it runs it may
// commit mutations to the host store or dispatch further actions. When a newer invocation of a logical
// action supersedes an older one that is still in flight, the older invocation's future commits and
// dispatches must be suppressed, even though its underlying work (a network call, a timer) cannot
// actually be aborted.
//
// Key types:
//   - Registry: the set of currently cancelled action instance identifiers
//   - Canceller: wraps actions so that every commit and dispatch is checked against the Registry
//   - Context: the typed execution context handed to every action body
//   - CancelledError: returned by a suppressed commit or dispatch
//   - Outcome: a tagged result (ok, cancelled, failed) of an action invocation
//
// Common usage pattern:
//
//	canceller, _ := actions.NewCanceller(actions.WithLogger(slog.Default()))
//
//	actionMap := actions.MakeCancellable(canceller, actions.Map[State]{
//		"search": actions.TakeLatest(func(ac *actions.Context[State], payload any) (any, error) {
//			suggestions := fetchSuggestions(ac.Context(), payload.(string)) // cannot be aborted
//			return nil, ac.Commit("setSuggestions", suggestions)            // suppressed if superseded
//		}),
//	})
//
// Identifiers are created once per root invocation and travel with the invocation's context.Context,
// so nested dispatches share the identifier of the root that started them. Cancelling that identifier
// (directly with CancelAction or implicitly through TakeLatest) suppresses the whole invocation tree.
//
// Cancellation is advisory: the context.Context passed to the action body is never cancelled by this
// package, and mutations that were committed before the cancellation was observed are not rolled back.
package actions
