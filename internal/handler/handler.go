// Package handler implements the JSON API. Handlers decode the request, call
// a store or service, and map the returned error kind to a status code.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/auth"
)

var hexColorRegexp = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err to a response. Client errors echo their message;
// anything else is logged and reported as a generic internal failure.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if errors.Is(err, auth.ErrUnauthenticated) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	status, code := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		writeJSON(w, status, map[string]string{"error": code})
		return
	}
	writeJSON(w, status, map[string]string{"error": code, "message": err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", apperr.ErrInvalidInput)
	}
	return nil
}

func parseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: %w", r.PathValue("id"), apperr.ErrInvalidInput)
	}
	return id, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func validPIN(pin string) bool {
	return len(pin) == 4 && isDigits(pin)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, apperr.ErrInvalidInput)...)
}
