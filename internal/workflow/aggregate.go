package workflow

import (
	"strings"

	"github.com/JaimeStill/docket/internal/records"
)

// Aggregate groups extraction entities by schema field. Labels match
// case-insensitively after trimming; unmatched labels are dropped. Every
// schema field is present in the result, empty when nothing matched.
func Aggregate(entities []Entity) records.Extraction {
	out := make(records.Extraction, len(schema))
	for _, field := range schema {
		out[field] = []records.FieldValue{}
	}

	for _, e := range entities {
		field := strings.ToLower(strings.TrimSpace(e.Label))
		values, ok := out[field]
		if !ok {
			continue
		}

		var value string
		if e.MentionText != nil {
			value = *e.MentionText
		}
		out[field] = append(values, records.FieldValue{
			Value:      value,
			Confidence: e.Confidence,
		})
	}

	return out
}

// Matched counts the values that landed in schema fields.
func Matched(extraction records.Extraction) int {
	n := 0
	for _, values := range extraction {
		n += len(values)
	}
	return n
}
