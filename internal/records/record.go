// Package records persists the per-document state accumulated across
// pipeline stages.
package records

import "time"

// Status tracks how far a document has progressed through the pipeline.
type Status string

const (
	StatusInitialized Status = "initialized"
	StatusClassified  Status = "classified"
	StatusExtracted   Status = "extracted"
	StatusProcessed   Status = "processed"
	StatusExported    Status = "exported"
)

// Label is a resolved classification label with its confidence.
type Label struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// OptionalLabel is a Label whose fields are null when no second
// classification pass applies.
type OptionalLabel struct {
	Value      *string  `json:"value"`
	Confidence *float64 `json:"confidence"`
}

// ClassificationResult holds both levels of the classification.
type ClassificationResult struct {
	Intent    Label         `json:"intent"`
	SubIntent OptionalLabel `json:"sub_intent"`
}

// FieldValue is one extracted value for a schema field. RawValue is set
// only when post-processing replaced Value with an enriched form.
type FieldValue struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	RawValue   *string `json:"raw_value,omitempty"`
}

// Extraction maps every schema field name to its ordered values.
type Extraction map[string][]FieldValue

// Record is the persisted state of one document.
type Record struct {
	ID                     string                `json:"id"`
	UniqueFilename         string                `json:"unique_filename"`
	InitialInputFilename   string                `json:"initial_input_filename"`
	PageCount              *int                  `json:"page_count,omitempty"`
	Status                 Status                `json:"status"`
	ClassificationResult   *ClassificationResult `json:"classification_result,omitempty"`
	EntityExtractionResult Extraction            `json:"entity_extraction_result,omitempty"`
	CreatedAt              time.Time             `json:"created_at"`
	UpdatedAt              time.Time             `json:"updated_at"`
}

// Fields is a partial update keyed by dotted path, e.g.
// "entity_extraction_result.vorname". Each value replaces the section at
// its path; sibling sections are left untouched.
type Fields map[string]any
