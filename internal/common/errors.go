package common

import (
	"errors"
	"net/http"
)

// Sentinel errors for the messaging and notification core.
// Handlers map these onto HTTP statuses; services wrap them with context
// via fmt.Errorf("...: %w", Err...).
var (
	// ErrUnauthenticated no valid identity on the request
	ErrUnauthenticated = errors.New("authentication required")
	// ErrUnauthorized the mutual-follow gate (or an ownership check) failed
	ErrUnauthorized = errors.New("not authorized")
	// ErrNotFound recipient, partner or notification unknown
	ErrNotFound = errors.New("not found")
	// ErrValidation malformed input (empty content, self-messaging)
	ErrValidation = errors.New("validation failed")
	// ErrStoreUnavailable neither the primary nor the fallback store could
	// serve the operation. A primary-only failure is absorbed by the
	// failover wrappers; only the double failure surfaces.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrDeliveryFailed a notification could not be produced or pushed.
	// The caller's durable write already succeeded, so this is logged
	// and never surfaced to clients.
	ErrDeliveryFailed = errors.New("delivery failed")
)

// HTTPStatus maps a service error to an HTTP status code
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
