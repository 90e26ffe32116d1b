package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/giygas/adverse-events-api/logging"
	"github.com/giygas/adverse-events-api/openfda"
)

// RespondWithJSON writes payload as JSON with the given status code.
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Warn("Failed to write response", "error", err)
	}
}

// RespondWithText writes a plain-text summary.
func RespondWithText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write([]byte(body)); err != nil {
		logging.Warn("Failed to write response", "error", err)
	}
}

// RespondWithError writes the JSON error body used by every endpoint.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	})
}

// StatusForError maps a query error to the HTTP status returned to callers.
func StatusForError(err error) int {
	var qerr *openfda.Error
	if !errors.As(err, &qerr) {
		return http.StatusInternalServerError
	}
	switch qerr.Kind {
	case openfda.KindInvalidInput:
		return http.StatusBadRequest
	case openfda.KindNotFound:
		return http.StatusNotFound
	case openfda.KindRemote, openfda.KindPartialAggregation:
		return http.StatusBadGateway
	case openfda.KindTransport:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondWithQueryError logs upstream trouble and renders err for the caller.
func respondWithQueryError(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusForError(err)
	if code >= http.StatusInternalServerError {
		logging.Warn("Query failed", "path", r.URL.Path, "status", code, "error", err)
	}
	message := openfda.UserMessage(err)
	if code == http.StatusInternalServerError {
		message = "Internal server error"
	}
	RespondWithError(w, code, message)
}
