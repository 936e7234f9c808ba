package journal

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Entries is an alias type for a slice of Entry.
type Entries = []Entry

// Entry is one mutation that reached the host store, as written to and read from a journal.
//
// It is built on scalars so that journals do not need to know the store's state or payload types.
// While its properties are exported, it should only be constructed with BuildEntry or BuildEntryFromPayload.
type Entry struct {
	ActionID       string // empty for commits made outside of a cancellable action
	MutationType   string
	PayloadJSON    []byte
	CommittedAt    time.Time
	SequenceNumber uint // assigned by the journal, zero before appending
}

// BuildEntry is a factory method for Entry.
//
// Returns an error if mutationType is empty or payloadJSON is not valid JSON.
func BuildEntry(actionID string, mutationType string, payloadJSON []byte, committedAt time.Time) (Entry, error) {
	if mutationType == "" {
		return Entry{}, ErrEmptyMutationType
	}

	if !jsoniter.ConfigFastest.Valid(payloadJSON) {
		return Entry{}, ErrInvalidPayloadJSON
	}

	return Entry{
		ActionID:     actionID,
		MutationType: mutationType,
		PayloadJSON:  payloadJSON,
		CommittedAt:  committedAt,
	}, nil
}

// BuildEntryFromPayload encodes payload to JSON and builds an Entry from it.
// A nil payload is journaled as JSON null.
func BuildEntryFromPayload(actionID string, mutationType string, payload any, committedAt time.Time) (Entry, error) {
	payloadJSON, err := jsoniter.ConfigFastest.Marshal(payload)
	if err != nil {
		return Entry{}, errors.Join(ErrEncodingPayloadFailed, err)
	}

	return BuildEntry(actionID, mutationType, payloadJSON, committedAt)
}

// DecodePayload unmarshals the entry's payload into target.
func (e Entry) DecodePayload(target any) error {
	return jsoniter.ConfigFastest.Unmarshal(e.PayloadJSON, target)
}
