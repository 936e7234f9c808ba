package journal

import (
	"slices"
	"time"
)

/***** Filter *****/

// Filter selects journal entries. Empty criteria match everything, non-empty lists match any of their values,
// and all criteria must hold together.
type Filter struct {
	actionIDs      []string
	mutationTypes  []string
	committedFrom  time.Time
	committedUntil time.Time
}

func (f Filter) ActionIDs() []string {
	return f.actionIDs
}

func (f Filter) MutationTypes() []string {
	return f.mutationTypes
}

func (f Filter) CommittedFrom() time.Time {
	return f.committedFrom
}

func (f Filter) CommittedUntil() time.Time {
	return f.committedUntil
}

// Matches reports whether entry satisfies the filter.
func (f Filter) Matches(entry Entry) bool {
	if len(f.actionIDs) > 0 && !slices.Contains(f.actionIDs, entry.ActionID) {
		return false
	}

	if len(f.mutationTypes) > 0 && !slices.Contains(f.mutationTypes, entry.MutationType) {
		return false
	}

	if !f.committedFrom.IsZero() && entry.CommittedAt.Before(f.committedFrom) {
		return false
	}

	if !f.committedUntil.IsZero() && entry.CommittedAt.After(f.committedUntil) {
		return false
	}

	return true
}

/***** FilterBuilder *****/

// FilterBuilder builds a journal Filter.
type FilterBuilder struct {
	filter Filter
}

// BuildFilter starts a new, empty Filter.
func BuildFilter() *FilterBuilder {
	return &FilterBuilder{}
}

// ForActionIDs restricts the filter to entries of the given invocation trees. Duplicates and empty values are dropped.
func (b *FilterBuilder) ForActionIDs(actionIDs ...string) *FilterBuilder {
	b.filter.actionIDs = appendUnique(b.filter.actionIDs, actionIDs)
	return b
}

// WithMutationTypes restricts the filter to the given mutation types. Duplicates and empty values are dropped.
func (b *FilterBuilder) WithMutationTypes(mutationTypes ...string) *FilterBuilder {
	b.filter.mutationTypes = appendUnique(b.filter.mutationTypes, mutationTypes)
	return b
}

// CommittedFrom restricts the filter to entries committed at or after from.
func (b *FilterBuilder) CommittedFrom(from time.Time) *FilterBuilder {
	b.filter.committedFrom = from
	return b
}

// CommittedUntil restricts the filter to entries committed at or before until.
func (b *FilterBuilder) CommittedUntil(until time.Time) *FilterBuilder {
	b.filter.committedUntil = until
	return b
}

// Finalize returns the built Filter.
func (b *FilterBuilder) Finalize() Filter {
	return Filter{
		actionIDs:      slices.Clone(b.filter.actionIDs),
		mutationTypes:  slices.Clone(b.filter.mutationTypes),
		committedFrom:  b.filter.committedFrom,
		committedUntil: b.filter.committedUntil,
	}
}

func appendUnique(existing []string, values []string) []string {
	for _, value := range values {
		if value == "" || slices.Contains(existing, value) {
			continue
		}

		existing = append(existing, value)
	}

	return existing
}
