package intake

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/docket/internal/records"
)

// Domain errors for document intake.
var (
	ErrNotPDF           = errors.New("document is not a PDF")
	ErrAlreadyProcessed = errors.New("document name is already a processed identity")
	ErrInvalidFile      = errors.New("invalid file")
	ErrFileTooLarge     = errors.New("file exceeds maximum upload size")
	ErrNotFound         = errors.New("input document not found")
)

// MapHTTPStatus maps intake domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotPDF):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrAlreadyProcessed), errors.Is(err, records.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
