package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/cancellable-actions-go/actions"
	"github.com/AntonStoeckl/cancellable-actions-go/journal"
	"github.com/AntonStoeckl/cancellable-actions-go/store"
)

type State struct {
	Prop1 string
	Prop2 string
}

type Payload struct {
	Prop1 string
	Prop2 string
	Delay time.Duration
}

type prop1Payload struct {
	Prop1 string `json:"prop1"`
}

type prop2Payload struct {
	Prop2 string `json:"prop2"`
}

var errWrongPayload = errors.New("wrong payload type")

func Mutations() map[string]store.MutationFunc[State] {
	return map[string]store.MutationFunc[State]{
		"setProp1": func(s State, payload any) (State, error) {
			p, ok := payload.(prop1Payload)
			if !ok {
				return s, errWrongPayload
			}
			s.Prop1 = p.Prop1
			return s, nil
		},
		"setProp2": func(s State, payload any) (State, error) {
			p, ok := payload.(prop2Payload)
			if !ok {
				return s, errWrongPayload
			}
			s.Prop2 = p.Prop2
			return s, nil
		},
	}
}

// SetBothProps waits for the payload's delay, then commits setProp1 and dispatches setProp2Action.
func SetBothProps(ac *actions.Context[State], payload any) (any, error) {
	p := payload.(Payload)

	select {
	case <-time.After(p.Delay):
	case <-ac.Context().Done():
		return nil, ac.Context().Err()
	}

	if err := ac.Commit("setProp1", prop1Payload{Prop1: p.Prop1 + p.Prop2}); err != nil {
		return nil, err
	}

	return ac.Dispatch("setProp2Action", prop2Payload{Prop2: p.Prop2})
}

func SetProp2(ac *actions.Context[State], payload any) (any, error) {
	return nil, ac.Commit("setProp2", payload)
}

func GivenCancellableStore(t *testing.T, c *actions.Canceller, options ...store.Option) *store.Store[State] {
	t.Helper()

	actionMap := actions.MakeCancellable(c, actions.Map[State]{
		"action":         SetBothProps,
		"latest":         actions.TakeLatest(SetBothProps),
		"setProp2Action": SetProp2,
	})

	s, err := store.NewStore(State{}, Mutations(), actionMap, options...)
	require.NoError(t, err)

	return s
}

func GivenCanceller(t *testing.T, options ...actions.Option) *actions.Canceller {
	t.Helper()

	c, err := actions.NewCanceller(options...)
	require.NoError(t, err)

	return c
}

type recordedCommit struct {
	Type    string
	Payload any
}

// CommitRecorder subscribes to a store and records every applied mutation.
type CommitRecorder struct {
	mu        sync.Mutex
	mutations []store.Mutation
}

func RecordCommits(s *store.Store[State]) *CommitRecorder {
	r := &CommitRecorder{}
	s.Subscribe(func(_ context.Context, m store.Mutation, _ State) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.mutations = append(r.mutations, m)
	})

	return r
}

func (r *CommitRecorder) Commits() []recordedCommit {
	r.mu.Lock()
	defer r.mu.Unlock()

	commits := make([]recordedCommit, 0, len(r.mutations))
	for _, m := range r.mutations {
		commits = append(commits, recordedCommit{Type: m.Type, Payload: m.Payload})
	}

	return commits
}

func (r *CommitRecorder) Mutations() []store.Mutation {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]store.Mutation(nil), r.mutations...)
}

type failingAppender struct {
	err error
}

func (a failingAppender) Append(context.Context, journal.Entry, ...journal.Entry) error {
	return a.err
}
