package workflow

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/docket/internal/records"
)

// Sentinel errors for pipeline stages.
var (
	ErrMalformedTrigger  = errors.New("malformed trigger")
	ErrUnknownStage      = errors.New("unknown stage")
	ErrNoEntities        = errors.New("oracle returned no entities")
	ErrUnknownIntent     = errors.New("unknown intent")
	ErrUnknownSubIntent  = errors.New("unknown sub-intent")
	ErrMissingState      = errors.New("missing prior state")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrClassifyFailed    = errors.New("classification failed")
	ErrExtractFailed     = errors.New("extraction failed")
	ErrPostProcessFailed = errors.New("post-processing failed")
	ErrExportFailed      = errors.New("export failed")
)

// Unrecoverable reports whether err can never succeed on redelivery. Such
// invocations are dead-lettered and the record is left in its last
// persisted state for manual intervention.
func Unrecoverable(err error) bool {
	for _, target := range []error{
		ErrMalformedTrigger,
		ErrUnknownStage,
		ErrUnknownIntent,
		ErrUnknownSubIntent,
		ErrMissingState,
		ErrDocumentNotFound,
		records.ErrNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// MapHTTPStatus maps workflow errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, records.ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnknownStage) || errors.Is(err, ErrMalformedTrigger) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
