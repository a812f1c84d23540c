// Package apperr defines the client-facing error kinds shared by the chore
// lifecycle, stats and view packages. Callers wrap a kind with context using
// fmt.Errorf("...: %w", apperr.ErrX) and test for it with errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidAssignment = errors.New("invalid assignment")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidState      = errors.New("invalid state")
	ErrAlreadyReviewed   = errors.New("already reviewed")
	ErrTooManyPending    = errors.New("too many pending approvals")
)

var kinds = []struct {
	err    error
	status int
	code   string
}{
	{ErrNotFound, http.StatusNotFound, "not_found"},
	{ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{ErrInvalidAssignment, http.StatusBadRequest, "invalid_assignment"},
	{ErrDuplicateEntry, http.StatusConflict, "duplicate_entry"},
	{ErrForbidden, http.StatusForbidden, "forbidden"},
	{ErrInvalidState, http.StatusConflict, "invalid_state"},
	{ErrAlreadyReviewed, http.StatusConflict, "already_reviewed"},
	{ErrTooManyPending, http.StatusTooManyRequests, "too_many_pending"},
}

// HTTPStatus maps err to a response status and a stable machine-readable code.
// Errors that carry no known kind are internal failures.
func HTTPStatus(err error) (int, string) {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status, k.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

// IsClientError reports whether err carries one of the client-facing kinds.
func IsClientError(err error) bool {
	status, _ := HTTPStatus(err)
	return status < http.StatusInternalServerError
}
