package docai

import "errors"

var (
	// ErrUnknownProcessor indicates a processor key with no configured processor.
	ErrUnknownProcessor = errors.New("unknown processor")
	// ErrEmptyDocument indicates a process request without content.
	ErrEmptyDocument = errors.New("document content must not be empty")
)
