package models

import "errors"

// Failure taxonomy for the content pipeline. Callers match with errors.Is;
// wrapped variants carry the underlying cause.
var (
	// ErrGeneratorUnavailable means the content or image generator could not
	// be reached or returned no usable output.
	ErrGeneratorUnavailable = errors.New("generator unavailable")

	// ErrSchemaViolation means generator output was missing required
	// structured fields.
	ErrSchemaViolation = errors.New("generator output violates schema")

	// ErrStoreWrite means durable persistence failed.
	ErrStoreWrite = errors.New("store write failed")

	// ErrDuplicateIdentity means the unique slug index rejected an insert
	// that raced past the pre-check.
	ErrDuplicateIdentity = errors.New("duplicate slug")

	// ErrNotFound means the slug was absent on read, update or delete.
	ErrNotFound = errors.New("post not found")
)
