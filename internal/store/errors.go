package store

import (
	"fmt"
	"strings"
)

// UnknownProgramError reports a lookup for a program the store has no
// profile for. It always carries the list of supported programs so callers
// can offer alternatives.
type UnknownProgramError struct {
	ProgramID string
	Known     []string
}

func (e *UnknownProgramError) Error() string {
	return fmt.Sprintf("unknown program %q (%d programs supported)", e.ProgramID, len(e.Known))
}

// Kind returns the machine-readable error kind.
func (e *UnknownProgramError) Kind() string { return "UNKNOWN_PROGRAM" }

// Suggestion returns an actionable hint listing supported programs.
func (e *UnknownProgramError) Suggestion() string {
	if len(e.Known) == 0 {
		return "no programs are supported yet; run a build first"
	}
	const maxShown = 10
	shown := e.Known
	if len(shown) > maxShown {
		shown = shown[:maxShown]
	}
	s := fmt.Sprintf("choose one of the supported programs: %s", strings.Join(shown, ", "))
	if len(e.Known) > maxShown {
		s += fmt.Sprintf(" (and %d more)", len(e.Known)-maxShown)
	}
	return s
}

// NotInitializedError reports that no snapshot has been built or loaded yet.
// This is the only retryable condition in the system: callers should retry
// once the build completes.
type NotInitializedError struct{}

func (e *NotInitializedError) Error() string {
	return "profile store is not initialized"
}

// Kind returns the machine-readable error kind.
func (e *NotInitializedError) Kind() string { return "NOT_INITIALIZED" }

// Suggestion returns an actionable hint for the caller.
func (e *NotInitializedError) Suggestion() string {
	return "wait for the profile build to complete and retry"
}
