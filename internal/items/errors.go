package items

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound               = errors.New("item not found")
	ErrInvalidPhase           = errors.New("invalid phase")
	ErrExportBeforeGeneration = errors.New("export requires a generated report")
	ErrUnreadableSource       = errors.New("source is not readable")
)

// MapHTTPStatus maps item errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidPhase), errors.Is(err, ErrUnreadableSource):
		return http.StatusBadRequest
	case errors.Is(err, ErrExportBeforeGeneration):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
