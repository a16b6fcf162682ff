package repo

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("repo: not found")
	// ErrAlreadyApplied is returned when a history entry was applied concurrently.
	ErrAlreadyApplied = errors.New("repo: update already applied")
)
