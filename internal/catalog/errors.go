package catalog

import "errors"

var (
	// ErrDuplicateID is returned by Append when the id is already present.
	ErrDuplicateID = errors.New("duplicate media id")

	// ErrInvariantViolation is returned by ReplaceAll when the new sequence
	// is not a permutation of the current one.
	ErrInvariantViolation = errors.New("catalog invariant violation")

	// ErrPersistenceRead marks stored data that could not be decoded.
	// Restore logs it and falls back to an empty catalog.
	ErrPersistenceRead = errors.New("persisted catalog unreadable")

	// ErrPersistenceWrite is returned when the store rejects a write. The
	// mutation that triggered it is not applied.
	ErrPersistenceWrite = errors.New("persisting catalog failed")
)
