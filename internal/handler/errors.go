package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pkordes/reactivities/backend/internal/domain"
)

// Codes produced by the HTTP boundary itself, before a request reaches the
// dispatcher.
const (
	codeInvalidRequest  = "invalid_request"
	codePayloadTooLarge = "payload_too_large"
)

// StatusClientClosedRequest is reported when the caller went away before the
// request finished. 499 is the nginx convention; net/http has no constant.
const StatusClientClosedRequest = 499

// ErrorDetail is the inner object of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body written for every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// statusFor maps a stable error code to its HTTP status.
func statusFor(code string) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case codeInvalidRequest:
		return http.StatusBadRequest
	case codePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case domain.CodeCancelled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// messages holds the generic text returned for each code. Underlying error
// details are logged, never sent to the client.
var messages = map[string]string{
	domain.CodeNotFound:                    "activity not found",
	domain.CodeStorageFailure:              "storage failure",
	domain.CodeHandlerNotFound:             "no handler registered for request",
	domain.CodeMappingConfigurationMissing: "mapping configuration missing",
	domain.CodeCancelled:                   "request cancelled",
	domain.CodeInternal:                    "internal error",
}

// writeError reports a dispatcher error. 5xx responses are logged with the
// underlying error.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.Code(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", code,
			"error", err,
		)
	}
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: messages[code]}})
}

// writeRequestError reports a request rejected at the boundary.
func writeRequestError(w http.ResponseWriter, code, message string) {
	writeJSON(w, statusFor(code), ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // the status line is already written; nothing to report.
	json.NewEncoder(w).Encode(v)
}
