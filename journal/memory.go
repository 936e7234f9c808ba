package journal

import (
	"context"
	"slices"
	"sync"
)

// MemoryJournal keeps entries in process memory. The zero value is ready to use.
type MemoryJournal struct {
	mu      sync.RWMutex
	entries Entries
}

// NewMemoryJournal creates an empty MemoryJournal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

// Append stores the entries atomically and assigns their sequence numbers.
func (j *MemoryJournal) Append(ctx context.Context, entry Entry, additionalEntries ...Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	for _, e := range append([]Entry{entry}, additionalEntries...) {
		e.SequenceNumber = uint(len(j.entries)) + 1
		e.PayloadJSON = slices.Clone(e.PayloadJSON)
		j.entries = append(j.entries, e)
	}

	return nil
}

// Query returns the matching entries in append order.
func (j *MemoryJournal) Query(ctx context.Context, filter Filter) (Entries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	result := make(Entries, 0)
	for _, e := range j.entries {
		if filter.Matches(e) {
			result = append(result, e)
		}
	}

	return result, nil
}

// Len returns the number of stored entries.
func (j *MemoryJournal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return len(j.entries)
}

var _ Journal = (*MemoryJournal)(nil)
