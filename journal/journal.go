package journal

import (
	"context"
)

// Appender persists journal entries. Implementations must be safe for concurrent use.
type Appender interface {
	Append(ctx context.Context, entry Entry, additionalEntries ...Entry) error
}

// Querier reads journal entries back in append order.
type Querier interface {
	Query(ctx context.Context, filter Filter) (Entries, error)
}

// Journal is both an Appender and a Querier.
type Journal interface {
	Appender
	Querier
}
