package domain

import "errors"

// ErrNotFound is returned when no activity with the requested ID exists.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrStorage is returned when the persistence layer could not complete a
// read or write. Handlers should map this to HTTP 500 without exposing the
// underlying error.
var ErrStorage = errors.New("storage failure")

// ErrHandlerNotFound is returned by the dispatcher when no handler is
// registered for a request. It is a wiring defect and is reported at startup.
var ErrHandlerNotFound = errors.New("handler not found")

// ErrMappingConfigurationMissing is returned by the mapper when no copy
// function is registered for a (source, destination) pair. Like
// ErrHandlerNotFound it indicates a startup misconfiguration.
var ErrMappingConfigurationMissing = errors.New("mapping configuration missing")

// ErrCancelled is returned when the caller's context was cancelled or its
// deadline passed before the operation completed.
var ErrCancelled = errors.New("cancelled")

// Stable error codes exposed to API clients and metric labels.
const (
	CodeNotFound                    = "not_found"
	CodeStorageFailure              = "storage_failure"
	CodeHandlerNotFound             = "handler_not_found"
	CodeMappingConfigurationMissing = "mapping_configuration_missing"
	CodeCancelled                   = "cancelled"
	CodeInternal                    = "internal_error"
)

// Code returns the stable error code for err.
// Cancellation wins over storage failure because a cancelled storage call
// is usually reported by the driver as a failed query.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCancelled):
		return CodeCancelled
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrHandlerNotFound):
		return CodeHandlerNotFound
	case errors.Is(err, ErrMappingConfigurationMissing):
		return CodeMappingConfigurationMissing
	case errors.Is(err, ErrStorage):
		return CodeStorageFailure
	default:
		return CodeInternal
	}
}
