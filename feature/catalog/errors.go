package catalog

import "errors"

var (
	// ErrMalformedRecord marks a raw record missing a required field.
	// The adapter refuses to produce a partially-valid view model; callers
	// must not insert such a record into a live collection.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrSourceUnavailable marks a transient store failure. Retryable;
	// resident collections stay valid and are never cleared because of it.
	ErrSourceUnavailable = errors.New("source unavailable")
)
