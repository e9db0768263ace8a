package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized marks a 401 from any authenticated call. It is the
	// one error allowed to have a cross-component effect: a global
	// logout.
	ErrUnauthorized = errors.New("unauthorized")

	ErrSessionNotFound    = errors.New("no stored session")
	ErrTokenNotFound      = errors.New("access token not found")
	ErrProfileNotCached   = errors.New("actor profile not cached")
	ErrUnknownRole        = errors.New("unknown role")
	ErrConsentNotGiven    = errors.New("consent not satisfied")
	ErrNotAnImage         = errors.New("file is not a supported image")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrStaleAttempt       = errors.New("attempt superseded")
	ErrNoAttempt          = errors.New("no screening attempt in progress")
)

// TransitionError reports an attempt operation invoked outside the state
// it is valid in.
type TransitionError struct {
	Op   string
	From AttemptState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s in state %s", e.Op, e.From)
}
