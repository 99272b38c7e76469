package records

import (
	"net/url"
	"time"

	"github.com/JaimeStill/docket/pkg/query"
	"github.com/JaimeStill/docket/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "records", "r").
	Project("id", "id").
	Project("data", "data").
	Project("created_at", "created_at").
	Project("updated_at", "updated_at").
	Expr("r.data->>'status'", "status").
	Expr("r.data#>>'{classification_result,intent,value}'", "intent").
	Expr("r.data->>'initial_input_filename'", "filename")

var defaultSort = query.SortField{
	Field:      "created_at",
	Descending: true,
}

// Filters contains optional filtering criteria for record queries.
// Nil fields are ignored; both use exact matching.
type Filters struct {
	Status *string `json:"status,omitempty"`
	Intent *string `json:"intent,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("status", f.Status).
		WhereEquals("intent", f.Intent)
}

// Match reports whether rec satisfies the filters.
func (f Filters) Match(rec Record) bool {
	if f.Status != nil && *f.Status != "" && string(rec.Status) != *f.Status {
		return false
	}
	if f.Intent != nil && *f.Intent != "" {
		if rec.ClassificationResult == nil || rec.ClassificationResult.Intent.Value != *f.Intent {
			return false
		}
	}
	return true
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if i := values.Get("intent"); i != "" {
		f.Intent = &i
	}

	return f
}

func scanRecord(s repository.Scanner) (Record, error) {
	var (
		id                   string
		data                 []byte
		createdAt, updatedAt time.Time
	)
	if err := s.Scan(&id, &data, &createdAt, &updatedAt); err != nil {
		return Record{}, err
	}
	return decodeDocument(id, data, createdAt, updatedAt)
}
