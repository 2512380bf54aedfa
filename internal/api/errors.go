package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gray-logic-av/internal/routing"
)

// Error is the body of every non-2xx response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeUnauthorized   = "unauthorised"
	ErrCodeForbidden      = "forbidden"
	ErrCodeConflict       = "conflict"
	ErrCodeLocked         = "locked"
	ErrCodeNoPath         = "no_path"
	ErrCodeHardware       = "hardware_error"
	ErrCodeNotSupported   = "not_supported"
	ErrCodeInternal       = "internal_error"
	ErrCodeUnavailable    = "unavailable"
	ErrCodeMethodNotAllow = "method_not_allowed"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return // client went away
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="graylogic-av"`)
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// routingErrors maps dispatcher sentinels onto HTTP responses. First match wins.
var routingErrors = []struct {
	err    error
	status int
	code   string
}{
	{routing.ErrSourceNotFound, http.StatusNotFound, ErrCodeNotFound},
	{routing.ErrDestinationNotFound, http.StatusNotFound, ErrCodeNotFound},
	{routing.ErrDestinationLocked, http.StatusConflict, ErrCodeLocked},
	{routing.ErrNoPath, http.StatusConflict, ErrCodeNoPath},
	{routing.ErrMalformedPath, http.StatusConflict, ErrCodeNoPath},
	{routing.ErrCapabilityUnsupported, http.StatusNotImplemented, ErrCodeNotSupported},
	{routing.ErrCommandFailed, http.StatusBadGateway, ErrCodeHardware},
}

func routingErrorStatus(err error) (int, string) {
	for _, m := range routingErrors {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, ErrCodeInternal
}

// writeRoutingError writes the response for a failed dispatcher call.
func writeRoutingError(w http.ResponseWriter, err error) {
	status, code := routingErrorStatus(err)
	writeError(w, status, code, err.Error())
}
