package storage

import "errors"

// Every error returned by this package wraps exactly one of these. None are retried.
var (
	// ErrConnection means the backing store could not be opened.
	ErrConnection = errors.New("failed to connect to database")

	// ErrSchemaUpgrade means the collection or its indexes could not be created.
	ErrSchemaUpgrade = errors.New("failed to upgrade database schema")

	// ErrWrite means an insert did not commit. Nothing was written.
	ErrWrite = errors.New("failed to add cost item")

	// ErrRead means a scan or lookup failed. No partial result is returned.
	ErrRead = errors.New("failed to get costs")
)

var (
	// ErrNonFiniteAmount is wrapped by ErrWrite when an amount is NaN or infinite.
	ErrNonFiniteAmount = errors.New("amount must be a finite number")

	// ErrDateOutOfRange is wrapped by ErrWrite when a date's year is outside 0-9999.
	ErrDateOutOfRange = errors.New("date year must be between 0 and 9999")
)
