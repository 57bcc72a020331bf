package service

import "errors"

var (
	// ErrAlreadyHeld means the item is claimed by a live hold or has
	// already been picked up.  It is a normal business outcome.
	ErrAlreadyHeld = errors.New("item is already held")
	// ErrItemNotFound means the catalog has no item with the given ID.
	ErrItemNotFound = errors.New("item not found")
	// ErrHoldNotFound covers a missing hold, a hold in a terminal state and
	// a hold whose window has closed.  Callers cannot act on any of them.
	ErrHoldNotFound = errors.New("no active hold found")
	// ErrUserNotFound is returned by user lookups with no match.
	ErrUserNotFound = errors.New("user not found")
)
