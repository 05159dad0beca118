package credentials

import (
	"errors"
	"net/http"
)

var (
	ErrNotReady        = errors.New("credential providers are still initializing")
	ErrGrantInProgress = errors.New("a sign-in is already in progress")
	ErrNotSignedIn     = errors.New("not signed in")
	ErrGrantDenied     = errors.New("consent denied")
	ErrGrantFailed     = errors.New("sign-in failed")
)

// MapHTTPStatus maps credential errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrGrantInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrNotSignedIn):
		return http.StatusUnauthorized
	case errors.Is(err, ErrGrantDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrGrantFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
