package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"playlist-player/internal/catalog"
	"playlist-player/internal/export"
	"playlist-player/internal/logging"
	"playlist-player/internal/upload"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Encoding errors are logged since the status line is already gone.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": status})
}

// writeJSONValue writes v with a 200.
func writeJSONValue(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, v)
}

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, upload.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, export.ErrEmptyPlaylist):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrDuplicateID), errors.Is(err, catalog.ErrInvariantViolation):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrPersistenceWrite), errors.Is(err, catalog.ErrPersistenceRead):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and reports it with the status errorStatus picks.
func writeError(w http.ResponseWriter, err error) {
	code := errorStatus(err)
	if code >= http.StatusInternalServerError {
		logging.Error("request failed: %v", err)
	}
	writeJSONError(w, err.Error(), code)
}
