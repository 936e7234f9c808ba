package actions

import (
	"github.com/google/uuid"
)

// ActionID identifies one root action invocation and every nested dispatch made from it.
type ActionID uuid.UUID

// NilActionID is the zero ActionID. It is never handed out for a real invocation.
var NilActionID = ActionID(uuid.Nil)

// IDGenerator produces fresh ActionIDs. Implementations must be collision-free across goroutines.
type IDGenerator func() (ActionID, error)

// NewActionID returns a fresh time-ordered ActionID (UUIDv7).
// It falls back to a random UUIDv4 in the unlikely case that the v7 generator fails.
func NewActionID() ActionID {
	id, err := uuid.NewV7()
	if err != nil {
		return ActionID(uuid.New())
	}

	return ActionID(id)
}

// ParseActionID parses the canonical string form of an ActionID.
func ParseActionID(s string) (ActionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return NilActionID, err
	}

	return ActionID(id), nil
}

func (id ActionID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is the NilActionID.
func (id ActionID) IsZero() bool {
	return id == NilActionID
}

func defaultIDGenerator() (ActionID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return NilActionID, err
	}

	return ActionID(id), nil
}
