package store

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/AntonStoeckl/cancellable-actions-go/actions"
	"github.com/AntonStoeckl/cancellable-actions-go/journal"
)

// MutationFunc derives the next state from the current one. Returning an error leaves the state unchanged.
type MutationFunc[S any] func(state S, payload any) (S, error)

// Mutation describes one mutation that was applied to a Store.
type Mutation struct {
	Type        string
	Payload     any
	ActionID    actions.ActionID // NilActionID for commits made outside of a cancellable action
	CommittedAt time.Time
}

// Subscriber is notified after every applied mutation, together with the state it produced.
// Subscribers run synchronously on the committing goroutine and must not commit themselves.
type Subscriber[S any] func(ctx context.Context, mutation Mutation, state S)

// Store is a host store in the commit/dispatch model: named mutations change the state synchronously,
// named actions run arbitrary (possibly slow) work and commit mutations or dispatch other actions.
//
// Action bodies receive an actions.Context whose Commit and Dispatch lead back into the Store. Passing
// the action map through actions.MakeCancellable before handing it to NewStore makes every action
// cancellation-aware.
//
// All methods are safe for concurrent use.
type Store[S any] struct {
	options

	// commitMu serializes commits from applying the mutation until the subscribers have been notified.
	commitMu  sync.Mutex
	mu        sync.RWMutex
	state     S
	mutations map[string]MutationFunc[S]
	actions   actions.Map[S]

	subscribersMu    sync.Mutex
	subscribers      map[uint64]Subscriber[S]
	nextSubscriberID uint64
}

// NewStore creates a Store holding initial. The mutation and action maps are copied.
func NewStore[S any](
	initial S,
	mutations map[string]MutationFunc[S],
	actionMap actions.Map[S],
	opts ...Option,
) (*Store[S], error) {
	for name, fn := range mutations {
		if fn == nil {
			return nil, fmt.Errorf("%w: %s", ErrNilMutation, name)
		}
	}

	for name, fn := range actionMap {
		if fn == nil {
			return nil, fmt.Errorf("%w: %s", ErrNilAction, name)
		}
	}

	s := &Store[S]{
		options:     options{clock: time.Now},
		state:       initial,
		mutations:   maps.Clone(mutations),
		actions:     maps.Clone(actionMap),
		subscribers: make(map[uint64]Subscriber[S]),
	}

	for _, option := range opts {
		if err := option(&s.options); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// State returns a copy of the current state.
func (s *Store[S]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// Commit applies the named mutation, notifies the subscribers and journals the mutation if a journal is
// configured. If ctx belongs to an action invocation the mutation is tagged with its identifier.
//
// Commits are serialized, so subscribers see mutations in exactly the order in which they were applied.
// Subscribers therefore must not commit synchronously from within their callback.
//
// A journal failure does not roll back the applied mutation, it is reported as ErrJournalingMutationFailed.
func (s *Store[S]) Commit(ctx context.Context, mutation string, payload any) error {
	fn, ok := s.mutations[mutation]
	if !ok {
		s.incrementCounter(ctx, CommitsMetric, map[string]string{labelMutation: mutation, labelStatus: statusError})
		return fmt.Errorf("%w: %s", ErrUnknownMutation, mutation)
	}

	applied, err := s.apply(ctx, fn, mutation, payload)
	if err != nil {
		return err
	}

	return s.appendToJournal(ctx, applied)
}

// apply runs the mutation and notifies the subscribers while holding commitMu.
func (s *Store[S]) apply(ctx context.Context, fn MutationFunc[S], mutation string, payload any) (Mutation, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	next, err := fn(s.state, payload)
	if err != nil {
		s.mu.Unlock()
		s.incrementCounter(ctx, CommitsMetric, map[string]string{labelMutation: mutation, labelStatus: statusError})
		s.logError(ctx, logMsgMutationFailed, err, logAttrMutation, mutation)

		return Mutation{}, err
	}
	s.state = next
	s.mu.Unlock()

	actionID, _ := actions.ActionIDFromContext(ctx)
	applied := Mutation{
		Type:        mutation,
		Payload:     payload,
		ActionID:    actionID,
		CommittedAt: s.clock(),
	}

	s.incrementCounter(ctx, CommitsMetric, map[string]string{labelMutation: mutation, labelStatus: statusSuccess})
	s.logDebug(ctx, logMsgMutationCommitted, logAttrMutation, mutation, logAttrActionID, actionIDAttr(actionID))

	s.notify(ctx, applied, next)

	return applied, nil
}

func (s *Store[S]) appendToJournal(ctx context.Context, applied Mutation) error {
	if s.journal == nil {
		return nil
	}

	entry, err := journal.BuildEntryFromPayload(actionIDAttr(applied.ActionID), applied.Type, applied.Payload, applied.CommittedAt)
	if err == nil {
		err = s.journal.Append(ctx, entry)
	}

	if err != nil {
		s.logError(ctx, logMsgJournalingFailed, err, logAttrMutation, applied.Type)
		return errors.Join(ErrJournalingMutationFailed, err)
	}

	return nil
}

// Dispatch runs the named action and returns its result unchanged.
// A cancelled invocation fails with an error for which actions.IsCancelledError reports true.
func (s *Store[S]) Dispatch(ctx context.Context, action string, payload any) (any, error) {
	fn, ok := s.actions[action]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	ctx, span := s.startDispatchSpan(ctx, action)
	start := time.Now()

	result, err := fn(actions.NewContext(ctx, s.Commit, s.Dispatch, s.State), payload)

	s.finishDispatch(ctx, span, action, time.Since(start), err)

	return result, err
}

// DispatchOutcome runs the named action and classifies its result.
func (s *Store[S]) DispatchOutcome(ctx context.Context, action string, payload any) actions.Outcome {
	return actions.OutcomeOf(s.Dispatch(ctx, action, payload))
}

// DispatchAsync runs the named action on its own goroutine.
//
// If ctx belongs to an action invocation the new dispatch joins that invocation tree. Otherwise a fresh
// root identifier is seeded before the goroutine starts, so the returned Pending knows the identifier
// immediately and the invocation can be cancelled before its body has even started. Seeding also records
// the dispatch order: of two DispatchAsync calls to the same take-latest action the later call wins,
// whichever goroutine is scheduled first.
func (s *Store[S]) DispatchAsync(ctx context.Context, action string, payload any) *Pending {
	id, nested := actions.ActionIDFromContext(ctx)
	if !nested {
		id = actions.NewActionID()
		ctx = actions.WithRootID(ctx, id)
	}

	p := &Pending{
		id:   id,
		done: make(chan struct{}),
	}

	go func() {
		defer close(p.done)
		p.outcome = s.DispatchOutcome(ctx, action, payload)
	}()

	return p
}

// Subscribe registers fn for every applied mutation and returns a function that removes it again.
// fn runs on the committing goroutine, in commit order. It may read State but must not Commit.
func (s *Store[S]) Subscribe(fn Subscriber[S]) (unsubscribe func()) {
	s.subscribersMu.Lock()
	defer s.subscribersMu.Unlock()

	id := s.nextSubscriberID
	s.nextSubscriberID++
	s.subscribers[id] = fn

	return func() {
		s.subscribersMu.Lock()
		defer s.subscribersMu.Unlock()

		delete(s.subscribers, id)
	}
}

func (s *Store[S]) notify(ctx context.Context, applied Mutation, state S) {
	s.subscribersMu.Lock()
	ids := slices.Sorted(maps.Keys(s.subscribers))
	subscribers := make([]Subscriber[S], 0, len(ids))
	for _, id := range ids {
		subscribers = append(subscribers, s.subscribers[id])
	}
	s.subscribersMu.Unlock()

	for _, subscriber := range subscribers {
		subscriber(ctx, applied, state)
	}
}

func actionIDAttr(id actions.ActionID) string {
	if id.IsZero() {
		return ""
	}

	return id.String()
}
