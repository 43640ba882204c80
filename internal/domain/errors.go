package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that the target social does not exist
	ErrNotFound = errors.New("social not found")

	// ErrVersionConflict is returned by the store when a conditional write lost to a concurrent writer
	ErrVersionConflict = errors.New("version conflict")

	// ErrConcurrentModification reports an exhausted retry budget
	ErrConcurrentModification = errors.New("concurrent modification: retry budget exhausted")

	// ErrUnauthorized reports a failed ownership check
	ErrUnauthorized = errors.New("unauthorized: caller does not own the social")
)

// SyncFailure reports that the change-feed subscription itself terminated abnormally
type SyncFailure struct {
	Collection string
	Err        error
}

func (e *SyncFailure) Error() string {
	return fmt.Sprintf("sync failure on collection %s: %v", e.Collection, e.Err)
}

func (e *SyncFailure) Unwrap() error {
	return e.Err
}

// ApplyFailure reports that a received batch could not be applied; the last good snapshot is kept
type ApplyFailure struct {
	ChangeID string
	Err      error
}

func (e *ApplyFailure) Error() string {
	if e.ChangeID == "" {
		return fmt.Sprintf("apply failure: %v", e.Err)
	}
	return fmt.Sprintf("apply failure on change %s: %v", e.ChangeID, e.Err)
}

func (e *ApplyFailure) Unwrap() error {
	return e.Err
}
