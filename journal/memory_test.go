package journal_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/cancellable-actions-go/journal"
)

func Test_MemoryJournal_AppendAndQuery_KeepsAppendOrder(t *testing.T) {
	// arrange
	ctx := context.Background()
	j := journal.NewMemoryJournal()
	first := GivenEntry(t, "a", "setProp1")
	second := GivenEntry(t, "b", "setProp2")
	third := GivenEntry(t, "a", "setProp2")

	// act
	require.NoError(t, j.Append(ctx, first))
	require.NoError(t, j.Append(ctx, second, third))
	entries, err := j.Query(ctx, journal.BuildFilter().ForActionIDs("a").Finalize())

	// assert
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "setProp1", entries[0].MutationType)
	assert.Equal(t, uint(1), entries[0].SequenceNumber)
	assert.Equal(t, "setProp2", entries[1].MutationType)
	assert.Equal(t, uint(3), entries[1].SequenceNumber)
	assert.Equal(t, 3, j.Len())
}

func Test_MemoryJournal_WithCancelledContext_ReturnsContextError(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	j := journal.NewMemoryJournal()

	// act
	appendErr := j.Append(ctx, GivenEntry(t, "a", "setProp1"))
	_, queryErr := j.Query(ctx, journal.BuildFilter().Finalize())

	// assert
	assert.ErrorIs(t, appendErr, context.Canceled)
	assert.ErrorIs(t, queryErr, context.Canceled)
	assert.Equal(t, 0, j.Len())
}

func GivenEntry(t *testing.T, actionID, mutationType string) journal.Entry {
	t.Helper()

	entry, err := journal.BuildEntry(actionID, mutationType, []byte(`{"value":"x"}`), time.Now().UTC())
	require.NoError(t, err)

	return entry
}
