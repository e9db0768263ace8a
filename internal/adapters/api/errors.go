package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/curascan/cli/internal/domain"
)

// StatusError represents a non-2xx response from the backend. Detail is
// the backend's human-readable message when one was provided.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Detail)
}

// Is lets errors.Is(err, domain.ErrUnauthorized) recognize a 401 without
// the caller importing this package.
func (e *StatusError) Is(target error) bool {
	return target == domain.ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// IsStatus reports whether err (or any wrapped error) is a StatusError
// with the given status code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == code
	}
	return false
}
