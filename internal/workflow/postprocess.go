package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/JaimeStill/docket/internal/records"
)

// Geocoder resolves a free-text address to a formatted address.
type Geocoder interface {
	Lookup(ctx context.Context, address string) (formatted string, found bool, err error)
}

// AddressValue is the post-processed form of an address entry: either
// Enriched by a successful lookup or AsIs.
type AddressValue interface {
	FieldValue() records.FieldValue
	addressValue()
}

// Enriched is an address replaced by its canonicalized lookup result.
type Enriched struct {
	Value      string
	Confidence float64
	RawValue   string
}

// AsIs is an address kept unchanged because the lookup found nothing or failed.
type AsIs struct {
	Value      string
	Confidence float64
}

func (e Enriched) FieldValue() records.FieldValue {
	raw := e.RawValue
	return records.FieldValue{Value: e.Value, Confidence: e.Confidence, RawValue: &raw}
}

func (a AsIs) FieldValue() records.FieldValue {
	return records.FieldValue{Value: a.Value, Confidence: a.Confidence}
}

func (Enriched) addressValue() {}
func (AsIs) addressValue()     {}

var nonNumeric = regexp.MustCompile(`[^0-9,]`)

var addressReplacer = strings.NewReplacer(
	"straße", "str.",
	"Straße", "Str.",
	"ß", "ss",
)

// Canonicalize applies the address abbreviations to a formatted address.
func Canonicalize(address string) string {
	return addressReplacer.Replace(address)
}

// DedupeNames lower-cases every value and keeps one entry per distinct
// value with the highest confidence seen, in first-occurrence order.
func DedupeNames(values []records.FieldValue) []records.FieldValue {
	out := make([]records.FieldValue, 0, len(values))
	index := make(map[string]int, len(values))

	for _, v := range values {
		name := strings.ToLower(v.Value)
		if i, ok := index[name]; ok {
			if v.Confidence > out[i].Confidence {
				out[i].Confidence = v.Confidence
			}
			continue
		}
		index[name] = len(out)
		out = append(out, records.FieldValue{Value: name, Confidence: v.Confidence})
	}

	return out
}

// SanitizeNumeric strips everything but digits and the decimal comma.
func SanitizeNumeric(values []records.FieldValue) []records.FieldValue {
	out := make([]records.FieldValue, len(values))
	for i, v := range values {
		out[i] = records.FieldValue{
			Value:      nonNumeric.ReplaceAllString(v.Value, ""),
			Confidence: v.Confidence,
		}
	}
	return out
}

// EnrichAddresses looks up each address. Entries already enriched by an
// earlier run are looked up from their raw value. Lookup errors are logged
// and the entry is kept as is.
func EnrichAddresses(ctx context.Context, geocoder Geocoder, logger *slog.Logger, values []records.FieldValue) []AddressValue {
	out := make([]AddressValue, len(values))

	for i, v := range values {
		source := v.Value
		if v.RawValue != nil {
			source = *v.RawValue
		}

		formatted, found, err := geocoder.Lookup(ctx, source)
		if err != nil {
			logger.WarnContext(ctx, "address lookup failed", "error", err)
			found = false
		}

		if found {
			out[i] = Enriched{
				Value:      Canonicalize(formatted),
				Confidence: v.Confidence,
				RawValue:   source,
			}
			continue
		}
		out[i] = AsIs{Value: source, Confidence: v.Confidence}
	}

	return out
}

func addressFieldValues(values []AddressValue) []records.FieldValue {
	out := make([]records.FieldValue, len(values))
	for i, v := range values {
		out[i] = v.FieldValue()
	}
	return out
}

// Normalize applies the post-processing rule of every schema field kind and
// returns the replaced fields keyed by name. Plain fields are omitted.
func Normalize(ctx context.Context, geocoder Geocoder, logger *slog.Logger, extraction records.Extraction) records.Extraction {
	out := make(records.Extraction)

	for _, field := range schema {
		values := extraction[field]
		if values == nil {
			values = []records.FieldValue{}
		}

		switch KindOf(field) {
		case KindName:
			out[field] = DedupeNames(values)
		case KindNumeric:
			out[field] = SanitizeNumeric(values)
		case KindAddress:
			out[field] = addressFieldValues(EnrichAddresses(ctx, geocoder, logger, values))
		}
	}

	return out
}

// PostProcess normalizes the persisted extraction of a document, replacing
// each processed field in place, then exports the final record.
func PostProcess(ctx context.Context, rt *Runtime, documentID string) error {
	rec, err := rt.Records.Get(ctx, documentID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPostProcessFailed, err)
	}

	if rec.EntityExtractionResult == nil {
		return fmt.Errorf("%w: %w: %s has no extraction result", ErrPostProcessFailed, ErrMissingState, documentID)
	}

	logger := rt.Logger.With("document_id", documentID)
	normalized := Normalize(ctx, rt.Geocoder, logger, rec.EntityExtractionResult)

	fields := records.Fields{"status": records.StatusProcessed}
	for field, values := range normalized {
		fields["entity_extraction_result."+field] = values
	}

	if err := rt.Records.Update(ctx, documentID, fields); err != nil {
		return fmt.Errorf("%w: %w", ErrPostProcessFailed, err)
	}

	logger.InfoContext(ctx, "document post-processed", "fields", len(normalized))

	return Export(ctx, rt, documentID)
}
