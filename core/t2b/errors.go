package t2b

import "errors"

var (
	// ErrMalformedTable indicates a buffer that is truncated or structurally
	// unparseable at some offset.
	ErrMalformedTable = errors.New("t2b: malformed table")

	// ErrUnsupportedSchema indicates a schema selector that matches no known
	// field layout.
	ErrUnsupportedSchema = errors.New("t2b: unsupported schema")

	// ErrOutOfBounds indicates a patch whose target range falls outside the
	// table buffer. Given a correct parse this never happens; it guards the
	// writer against invalid instructions.
	ErrOutOfBounds = errors.New("t2b: patch out of bounds")
)
