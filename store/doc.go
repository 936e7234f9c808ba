// Package store provides a small host store in the commit/dispatch model for cancellable actions.
//
// A Store holds a state value of any type S. Mutations are named, synchronous state transitions.
// Actions are named bodies that receive an actions.Context and commit mutations or dispatch further
// actions through it:
//
//	mutations := map[string]store.MutationFunc[State]{
//		"setQuery": func(s State, payload any) (State, error) {
//			s.Query = payload.(string)
//			return s, nil
//		},
//	}
//
//	c, _ := actions.NewCanceller()
//	actionMap := actions.MakeCancellable(c, actions.Map[State]{
//		"search": actions.TakeLatest(searchAction),
//	})
//
//	s, _ := store.NewStore(State{}, mutations, actionMap, store.WithLogger(slog.Default()))
//	pending := s.DispatchAsync(ctx, "search", "go")
//	c.CancelAction(pending.ID())
//
// Applied mutations can be observed with Subscribe and journaled with WithJournal.
package store
