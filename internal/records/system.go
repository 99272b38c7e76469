package records

import (
	"context"

	"github.com/JaimeStill/docket/pkg/pagination"
)

// System defines the document state store. Every stage addresses the same
// record by the document identity assigned at intake.
type System interface {
	Handler() *Handler

	// Get returns the record, or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)
	// Set stores rec under id. Without overwrite an existing record yields ErrDuplicate.
	Set(ctx context.Context, id string, rec Record, overwrite bool) error
	// Update replaces the sections named by dotted paths in one atomic write.
	Update(ctx context.Context, id string, fields Fields) error
	// Delete removes the record, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Record], error)
}
