package storage

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound         = errors.New("blob not found")
	ErrUnknownContainer = errors.New("unknown container")
	ErrEmptyKey         = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates a path traversal segment in the key.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
)

// MapHTTPStatus maps storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnknownContainer):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyKey), errors.Is(err, ErrInvalidKey):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
