package store

import "errors"

var (
	// ErrNotFound is returned when a get or conditional update targets a key
	// that does not exist.
	ErrNotFound = errors.New("tacostore: item not found")

	// ErrAlreadyExists is returned when a create-only write collides with an
	// existing key.
	ErrAlreadyExists = errors.New("tacostore: item already exists")

	// ErrUnavailable wraps transient remote failures. Callers may retry with
	// backoff; the store itself never does.
	ErrUnavailable = errors.New("tacostore: store unavailable")

	// ErrRejected wraps requests the store refused as malformed. These are
	// programming defects and must not be retried.
	ErrRejected = errors.New("tacostore: request rejected")
)
