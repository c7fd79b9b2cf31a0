package document

import "errors"

var (
	// ErrMalformedRecord marks a record that could not become a shape at all.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrUnknownKind marks a record whose kind is not a known shape kind.
	ErrUnknownKind = errors.New("unknown shape kind")
	// ErrInvalidGeometry marks geometry that is missing, malformed or too small.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrStaleReference marks a recorded shape index that no longer resolves.
	ErrStaleReference = errors.New("stale shape reference")
	// ErrOutOfRange marks a value that was clamped into its allowed domain.
	ErrOutOfRange = errors.New("value out of range")
)
