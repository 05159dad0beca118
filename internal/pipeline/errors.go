package pipeline

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/scribe/internal/credentials"
	"github.com/JaimeStill/scribe/internal/items"
)

var (
	ErrRunInProgress    = errors.New("a batch run is already in progress")
	ErrNotGenerated     = errors.New("item has no generated report")
	ErrExportInProgress = errors.New("item export is already in progress")
	ErrAlreadyExported  = errors.New("item has already been exported")
	ErrNoItems          = errors.New("no files provided")
	ErrUnsupportedFile  = errors.New("unsupported file type")
	ErrFileTooLarge     = errors.New("upload exceeds maximum size")
	ErrMalformedUpload  = errors.New("malformed multipart upload")
)

// extractionFailure is the item-level reason recorded for any extraction
// error or empty extraction result.
const extractionFailure = "text extraction failed"

// MapHTTPStatus maps pipeline errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrRunInProgress),
		errors.Is(err, ErrNotGenerated),
		errors.Is(err, ErrExportInProgress),
		errors.Is(err, ErrAlreadyExported):
		return http.StatusConflict
	case errors.Is(err, ErrNoItems),
		errors.Is(err, ErrUnsupportedFile),
		errors.Is(err, ErrMalformedUpload):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, items.ErrNotFound):
		return items.MapHTTPStatus(err)
	default:
		return credentials.MapHTTPStatus(err)
	}
}
