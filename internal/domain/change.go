package domain

import "fmt"

// ChangeKind tags a change-feed event
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
	ChangeRemoved  ChangeKind = "removed"
)

// Valid reports whether k is one of the known change kinds
func (k ChangeKind) Valid() bool {
	switch k {
	case ChangeAdded, ChangeModified, ChangeRemoved:
		return true
	}
	return false
}

// Change is one decoded per-record event inside a batch. Social is nil for removals.
type Change struct {
	Kind   ChangeKind
	ID     string
	Social *Social
}

// ChangeBatch is the set of changes delivered together by one change-feed notification
type ChangeBatch []Change

// Direction is the subscription ordering direction
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection converts a configuration value into a Direction
func ParseDirection(value string) (Direction, error) {
	switch Direction(value) {
	case Ascending, Descending:
		return Direction(value), nil
	case "":
		return Ascending, nil
	}
	return "", fmt.Errorf("unsupported order direction: %s (supported: asc, desc)", value)
}

// OrderKeyEventDate is the only ordering key the socials collection supports
const OrderKeyEventDate = "eventDate"
