package query

import "errors"

// Error taxonomy shared by builders and grammars. Grammars wrap these with
// dialect and feature context so callers can branch with errors.Is.
var (
	// ErrInvalidArgument marks malformed input caught at construction or
	// compile time: unknown binding groups, illegal operators, empty
	// insert batches and the like.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedFeature marks a clause the selected dialect cannot
	// express. Compilation fails as a whole; no partial SQL is returned.
	ErrUnsupportedFeature = errors.New("unsupported feature")
)
