// Package errors maps domain errors onto the HTTP error envelope used
// by every JSON endpoint.
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JackKelly/list-with-depth/pkg/depthlist"
	"github.com/JackKelly/list-with-depth/pkg/store"
)

// HTTPErrorResponse is the JSON error envelope returned by all
// endpoints.
type HTTPErrorResponse struct {
	Error HTTPErrorDetail `json:"error"`
}

// HTTPErrorDetail carries the machine-readable error fields.
type HTTPErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Error codes used in HTTP responses.
const (
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeAccessDenied       = "ACCESS_DENIED"
	CodeThrottled          = "THROTTLED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// WriteJSONError writes the error envelope with the given status.
func WriteJSONError(w http.ResponseWriter, status int, code, message, requestID string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(HTTPErrorResponse{
		Error: HTTPErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: requestID,
			Details:   details,
		},
	})
}

// RespondWithError maps a domain error to an HTTP status and code and
// writes the envelope.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	WriteJSONError(w, status, code, err.Error(), r.Header.Get("X-Request-ID"), nil)
}

// classify maps domain errors to HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, depthlist.ErrNegativeDepth):
		return http.StatusBadRequest, CodeInvalidArgument
	case store.IsNotFound(err), store.IsBucketNotFound(err):
		return http.StatusNotFound, CodeNotFound
	case store.IsAccessDenied(err), store.IsInvalidCredentials(err):
		return http.StatusForbidden, CodeAccessDenied
	case store.IsThrottled(err):
		return http.StatusTooManyRequests, CodeThrottled
	case store.IsStoreUnavailable(err):
		return http.StatusServiceUnavailable, CodeServiceUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
