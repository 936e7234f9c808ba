package actions_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/cancellable-actions-go/actions"
)

var errUnknownTestAction = errors.New("unknown test action")

type hostState struct {
	Prop1 string
	Prop2 string
}

// testHost is the smallest possible store: string payloads, two mutations and a commit log.
type testHost struct {
	mu      sync.Mutex
	state   hostState
	commits []string
	actions actions.Map[hostState]
}

func newTestHost(actionMap actions.Map[hostState]) *testHost {
	return &testHost{actions: actionMap}
}

func (h *testHost) commit(_ context.Context, mutation string, payload any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	value, _ := payload.(string)

	switch mutation {
	case "setProp1":
		h.state.Prop1 = value
	case "setProp2":
		h.state.Prop2 = value
	}

	h.commits = append(h.commits, mutation+"="+value)

	return nil
}

func (h *testHost) dispatch(ctx context.Context, action string, payload any) (any, error) {
	fn, ok := h.actions[action]
	if !ok {
		return nil, errUnknownTestAction
	}

	return fn(actions.NewContext(ctx, h.commit, h.dispatch, h.snapshot), payload)
}

func (h *testHost) snapshot() hostState {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.state
}

func (h *testHost) committed() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]string(nil), h.commits...)
}

type dispatchResult struct {
	value any
	err   error
}

// dispatchInBackground runs a dispatch on its own goroutine and delivers the result on the returned channel.
func dispatchInBackground(ctx context.Context, h *testHost, action string, payload any) <-chan dispatchResult {
	results := make(chan dispatchResult, 1)

	go func() {
		value, err := h.dispatch(ctx, action, payload)
		results <- dispatchResult{value: value, err: err}
	}()

	return results
}

func GivenCanceller(t *testing.T, options ...actions.Option) *actions.Canceller {
	t.Helper()

	c, err := actions.NewCanceller(options...)
	require.NoError(t, err)

	return c
}

func GivenFixedIDGenerator(t *testing.T) (actions.IDGenerator, actions.ActionID) {
	t.Helper()

	id := actions.NewActionID()
	generator := func() (actions.ActionID, error) {
		return id, nil
	}

	return generator, id
}
