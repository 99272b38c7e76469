package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/JaimeStill/docket/internal/records"
	"github.com/JaimeStill/docket/internal/workflow"
)

func TestDedupeNames(t *testing.T) {
	tests := []struct {
		name  string
		input []records.FieldValue
		want  []records.FieldValue
	}{
		{
			name: "case-insensitive duplicate keeps max confidence",
			input: []records.FieldValue{
				{Value: "max", Confidence: 0.9},
				{Value: "Max", Confidence: 0.95},
				{Value: "eva", Confidence: 0.8},
			},
			want: []records.FieldValue{
				{Value: "max", Confidence: 0.95},
				{Value: "eva", Confidence: 0.8},
			},
		},
		{
			name: "lower confidence duplicate ignored",
			input: []records.FieldValue{
				{Value: "Eva", Confidence: 0.9},
				{Value: "EVA", Confidence: 0.3},
			},
			want: []records.FieldValue{{Value: "eva", Confidence: 0.9}},
		},
		{
			name:  "empty",
			input: []records.FieldValue{},
			want:  []records.FieldValue{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := workflow.DedupeNames(tt.input)
			if !equalValues(got, tt.want) {
				t.Errorf("DedupeNames() = %v, want %v", got, tt.want)
			}
			if again := workflow.DedupeNames(got); !equalValues(again, got) {
				t.Errorf("DedupeNames() not idempotent: %v", again)
			}
		})
	}
}

func TestSanitizeNumeric(t *testing.T) {
	input := []records.FieldValue{
		{Value: "12.345,67 m³", Confidence: 0.8},
		{Value: "Stand: 0042", Confidence: 0.6},
		{Value: "kein Wert", Confidence: 0.1},
	}
	want := []records.FieldValue{
		{Value: "12345,67", Confidence: 0.8},
		{Value: "0042", Confidence: 0.6},
		{Value: "", Confidence: 0.1},
	}

	got := workflow.SanitizeNumeric(input)
	if !equalValues(got, want) {
		t.Errorf("SanitizeNumeric() = %v, want %v", got, want)
	}
	if input[0].Value != "12.345,67 m³" {
		t.Error("SanitizeNumeric() mutated its input")
	}
}

func TestCanonicalize(t *testing.T) {
	tests := map[string]string{
		"Musterstraße 1, 10115 Berlin, Deutschland": "Musterstr. 1, 10115 Berlin, Deutschland",
		"Straße des 17. Juni 135, 10623 Berlin":     "Str. des 17. Juni 135, 10623 Berlin",
		"Große Hamburger Str. 5, 10115 Berlin":      "Grosse Hamburger Str. 5, 10115 Berlin",
		"Torstr. 1, 10119 Berlin":                   "Torstr. 1, 10119 Berlin",
	}
	for in, want := range tests {
		if got := workflow.Canonicalize(in); got != want {
			t.Errorf("Canonicalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEnrichAddresses(t *testing.T) {
	geo := &fakeGeocoder{results: map[string]string{
		"musterstr 1 berlin": "Musterstraße 1, 10115 Berlin, Deutschland",
	}}

	input := []records.FieldValue{
		{Value: "musterstr 1 berlin", Confidence: 0.7},
		{Value: "irgendwo", Confidence: 0.4},
	}

	got := workflow.EnrichAddresses(context.Background(), geo, discardLogger(), input)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	switch v := got[0].(type) {
	case workflow.Enriched:
		if v.Value != "Musterstr. 1, 10115 Berlin, Deutschland" || v.RawValue != "musterstr 1 berlin" || v.Confidence != 0.7 {
			t.Errorf("enriched = %+v", v)
		}
	default:
		t.Errorf("got[0] = %T, want Enriched", v)
	}

	switch v := got[1].(type) {
	case workflow.AsIs:
		if v.Value != "irgendwo" || v.Confidence != 0.4 {
			t.Errorf("as is = %+v", v)
		}
	default:
		t.Errorf("got[1] = %T, want AsIs", v)
	}

	if fv := got[1].FieldValue(); fv.RawValue != nil {
		t.Error("AsIs must not carry raw_value")
	}
}

func TestEnrichAddressesFailOpen(t *testing.T) {
	geo := &fakeGeocoder{err: errors.New("connection refused")}
	input := []records.FieldValue{{Value: "Hauptstr. 5", Confidence: 0.9}}

	got := workflow.EnrichAddresses(context.Background(), geo, discardLogger(), input)

	if fv := got[0].FieldValue(); !equalValues([]records.FieldValue{fv}, input) {
		t.Errorf("FieldValue() = %+v, want input unchanged", fv)
	}
}

func TestEnrichAddressesUsesRawValueOnRerun(t *testing.T) {
	geo := &fakeGeocoder{results: map[string]string{
		"hauptstr 5": "Hauptstraße 5, 12345 Berlin",
	}}
	first := workflow.EnrichAddresses(context.Background(), geo, discardLogger(), []records.FieldValue{
		{Value: "hauptstr 5", Confidence: 0.9},
	})
	second := workflow.EnrichAddresses(context.Background(), geo, discardLogger(), []records.FieldValue{
		first[0].FieldValue(),
	})

	if first[0] != second[0] {
		t.Errorf("rerun = %+v, want %+v", second[0], first[0])
	}
	if geo.lookups[1] != "hauptstr 5" {
		t.Errorf("rerun looked up %q, want raw value", geo.lookups[1])
	}
}

func TestNormalize(t *testing.T) {
	extraction := workflow.Aggregate([]workflow.Entity{
		mention("vorname", "Max", 0.9),
		mention("vorname", "max", 0.95),
		mention("zaehlerstand", "1.234 kWh", 0.8),
		mention("abnahmestelle", "unbekannt", 0.5),
		mention("email", "Max@Example.org", 0.9),
	})

	got := workflow.Normalize(context.Background(), &fakeGeocoder{}, discardLogger(), extraction)

	if _, ok := got["email"]; ok {
		t.Error("plain fields must not be rewritten")
	}
	for _, field := range []string{"vorname", "nachname", "adresse", "zaehlerstand", "abnahmestelle"} {
		if got[field] == nil {
			t.Errorf("%s missing from normalized fields", field)
		}
	}
	if !equalValues(got["vorname"], []records.FieldValue{{Value: "max", Confidence: 0.95}}) {
		t.Errorf("vorname = %v", got["vorname"])
	}
	if !equalValues(got["zaehlerstand"], []records.FieldValue{{Value: "1234", Confidence: 0.8}}) {
		t.Errorf("zaehlerstand = %v", got["zaehlerstand"])
	}
	if !equalValues(got["abnahmestelle"], []records.FieldValue{{Value: "unbekannt", Confidence: 0.5}}) {
		t.Errorf("abnahmestelle = %v", got["abnahmestelle"])
	}
}
