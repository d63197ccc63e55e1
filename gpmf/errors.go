package gpmf

import "fmt"

// MalformedInputError is returned only by the *Strict entry points
// (ParseStrict, ProjectTreeStrict) when a defensive bound — recursion
// depth or total item count — is exceeded. Every other entry point
// follows spec.md §7's propagation policy: truncated or malformed
// GPMF never raises, it yields a partial result.
type MalformedInputError struct {
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("gpmf: malformed input: %s", e.Reason)
}
