package archive

import (
	"errors"
	"net/http"
)

var (
	ErrDuplicate    = errors.New("already archived")
	ErrInvalidLimit = errors.New("limit must be between 1 and 500")
)

// MapHTTPStatus maps archive errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidLimit):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
