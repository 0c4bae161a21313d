// Package httpx holds the JSON response helpers and middleware shared by
// every handler.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"quiz-event/internal/apperr"

	"github.com/rs/zerolog/log"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindNotFound:     http.StatusNotFound,
	apperr.KindConflict:     http.StatusConflict,
	apperr.KindInvalidInput: http.StatusBadRequest,
	apperr.KindUnauthorized: http.StatusUnauthorized,
	apperr.KindForbidden:    http.StatusForbidden,
}

type errorBody struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("error encoding response")
	}
}

// StatusOf returns the HTTP status for err's kind.
func StatusOf(err error) int {
	if status, ok := statusByKind[apperr.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error writes {"error": message}. Unclassified errors are logged and
// reported as a generic internal error.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		JSON(w, status, errorBody{Error: "Internal server error"})
		return
	}

	message := err.Error()
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	JSON(w, status, errorBody{Error: message})
}

// Message writes a bare {"error": message} body with the given status.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorBody{Error: message})
}

// Decode reads a JSON body into v.
func Decode(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return apperr.InvalidInput("Invalid request body")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.KindInvalidInput, "Invalid request body", err)
	}
	return nil
}
