package workflow_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/JaimeStill/docket/internal/workflow"
)

func TestParseIntent(t *testing.T) {
	for _, intent := range workflow.Intents() {
		got, err := workflow.ParseIntent(string(intent))
		if err != nil || got != intent {
			t.Errorf("ParseIntent(%q) = (%q, %v)", intent, got, err)
		}
	}

	for _, label := range []string{"", "zaehlerstand", "Rechnung", " Widerruf"} {
		if _, err := workflow.ParseIntent(label); !errors.Is(err, workflow.ErrUnknownIntent) {
			t.Errorf("ParseIntent(%q) error = %v, want ErrUnknownIntent", label, err)
		}
	}
}

func TestRouteForEveryIntent(t *testing.T) {
	for _, intent := range workflow.Intents() {
		route, err := workflow.RouteFor(intent)
		if err != nil {
			t.Fatalf("RouteFor(%q) error = %v", intent, err)
		}
		if route.Intent() != intent {
			t.Errorf("RouteFor(%q).Intent() = %q", intent, route.Intent())
		}
	}

	if _, err := workflow.RouteFor("Rechnung"); !errors.Is(err, workflow.ErrUnknownIntent) {
		t.Errorf("RouteFor(Rechnung) error = %v, want ErrUnknownIntent", err)
	}
}

func TestRouteClassifier(t *testing.T) {
	tests := []struct {
		intent   workflow.Intent
		want     workflow.Processor
		wantOK   bool
		wantSubs []string
	}{
		{
			intent: workflow.IntentMeterReading,
			want:   workflow.ProcessorMeterReadingClassifier,
			wantOK: true,
			wantSubs: []string{
				"Umzugsmitteilung_Formular",
				"Zaehlerstand_fuer_Auszuege",
				"Zaehlerstand_fuer_Einzuege",
			},
		},
		{
			intent:   workflow.IntentRevocation,
			want:     workflow.ProcessorRevocationClassifier,
			wantOK:   true,
			wantSubs: []string{"Widerrufsformular", "Widerrufsschreiben"},
		},
		{
			intent:   workflow.IntentOther,
			wantOK:   false,
			wantSubs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			route, _ := workflow.RouteFor(tt.intent)

			got, ok := route.Classifier()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Classifier() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
			if subs := route.SubIntents(); !slices.Equal(subs, tt.wantSubs) {
				t.Errorf("SubIntents() = %v, want %v", subs, tt.wantSubs)
			}
		})
	}
}

func TestExtractionProcessor(t *testing.T) {
	tests := []struct {
		intent    workflow.Intent
		subIntent *string
		want      workflow.Processor
	}{
		{workflow.IntentMeterReading, ptr("Umzugsmitteilung_Formular"), workflow.ProcessorMovingFormExtractor},
		{workflow.IntentMeterReading, ptr("Zaehlerstand_fuer_Einzuege"), workflow.ProcessorGeneralExtractor},
		{workflow.IntentMeterReading, ptr("Zaehlerstand_fuer_Auszuege"), workflow.ProcessorGeneralExtractor},
		{workflow.IntentMeterReading, ptr("Unbekannt"), workflow.ProcessorGeneralExtractor},
		{workflow.IntentMeterReading, nil, workflow.ProcessorGeneralExtractor},
		{workflow.IntentRevocation, ptr("Widerrufsformular"), workflow.ProcessorRevocationFormExtractor},
		{workflow.IntentRevocation, ptr("Widerrufsschreiben"), workflow.ProcessorGeneralExtractor},
		{workflow.IntentRevocation, ptr("Kuendigung"), workflow.ProcessorGeneralExtractor},
		{workflow.IntentOther, nil, workflow.ProcessorGeneralExtractor},
		{workflow.IntentOther, ptr("Umzugsmitteilung_Formular"), workflow.ProcessorGeneralExtractor},
	}

	for _, tt := range tests {
		sub := "<nil>"
		if tt.subIntent != nil {
			sub = *tt.subIntent
		}
		t.Run(string(tt.intent)+"/"+sub, func(t *testing.T) {
			route, err := workflow.RouteFor(tt.intent)
			if err != nil {
				t.Fatalf("RouteFor() error = %v", err)
			}

			for range 3 {
				if got := route.ExtractionProcessor(tt.subIntent); got != tt.want {
					t.Fatalf("ExtractionProcessor() = %q, want %q", got, tt.want)
				}
			}
		})
	}
}

func TestProcessorsCoverRoutingTable(t *testing.T) {
	known := workflow.Processors()
	for _, intent := range workflow.Intents() {
		route, _ := workflow.RouteFor(intent)
		if p, ok := route.Classifier(); ok && !slices.Contains(known, p) {
			t.Errorf("classifier %q of %s missing from Processors()", p, intent)
		}
		for _, sub := range route.SubIntents() {
			if p := route.ExtractionProcessor(&sub); !slices.Contains(known, p) {
				t.Errorf("extractor %q of %s/%s missing from Processors()", p, intent, sub)
			}
		}
	}
}
