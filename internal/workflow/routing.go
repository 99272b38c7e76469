package workflow

import (
	"fmt"
	"maps"
	"slices"
)

// Intent is the top-level document type.
type Intent string

// Known intents. Any other label from the broad classifier is rejected.
const (
	IntentMeterReading Intent = "Zaehlerstand"
	IntentRevocation   Intent = "Widerruf"
	IntentOther        Intent = "Sonstige"
)

// Processor is a symbolic processor configuration key. Deployments map each
// key to a concrete processor through oracle configuration.
type Processor string

const (
	ProcessorBroad                   Processor = "broad"
	ProcessorMeterReadingClassifier  Processor = "meter_reading_classifier"
	ProcessorRevocationClassifier    Processor = "revocation_classifier"
	ProcessorGeneralExtractor        Processor = "general_extractor"
	ProcessorMovingFormExtractor     Processor = "moving_form_extractor"
	ProcessorRevocationFormExtractor Processor = "revocation_form_extractor"
)

// Processors returns every processor key the pipeline can invoke.
func Processors() []Processor {
	return []Processor{
		ProcessorBroad,
		ProcessorMeterReadingClassifier,
		ProcessorRevocationClassifier,
		ProcessorGeneralExtractor,
		ProcessorMovingFormExtractor,
		ProcessorRevocationFormExtractor,
	}
}

// Route is the immutable routing entry for one intent.
type Route struct {
	intent     Intent
	classifier Processor
	extractors map[string]Processor
	fallback   Processor
}

var routingTable = map[Intent]Route{
	IntentMeterReading: {
		intent:     IntentMeterReading,
		classifier: ProcessorMeterReadingClassifier,
		extractors: map[string]Processor{
			"Umzugsmitteilung_Formular":  ProcessorMovingFormExtractor,
			"Zaehlerstand_fuer_Einzuege": ProcessorGeneralExtractor,
			"Zaehlerstand_fuer_Auszuege": ProcessorGeneralExtractor,
		},
		fallback: ProcessorGeneralExtractor,
	},
	IntentRevocation: {
		intent:     IntentRevocation,
		classifier: ProcessorRevocationClassifier,
		extractors: map[string]Processor{
			"Widerrufsformular":  ProcessorRevocationFormExtractor,
			"Widerrufsschreiben": ProcessorGeneralExtractor,
		},
		fallback: ProcessorGeneralExtractor,
	},
	IntentOther: {
		intent:   IntentOther,
		fallback: ProcessorGeneralExtractor,
	},
}

// Intents returns the closed set of known intents.
func Intents() []Intent {
	return []Intent{IntentMeterReading, IntentRevocation, IntentOther}
}

// ParseIntent maps a classifier label to a known intent.
func ParseIntent(label string) (Intent, error) {
	intent := Intent(label)
	if _, ok := routingTable[intent]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownIntent, label)
	}
	return intent, nil
}

// RouteFor returns the routing entry for intent.
func RouteFor(intent Intent) (Route, error) {
	route, ok := routingTable[intent]
	if !ok {
		return Route{}, fmt.Errorf("%w: %q", ErrUnknownIntent, intent)
	}
	return route, nil
}

// Intent returns the intent this route belongs to.
func (r Route) Intent() Intent {
	return r.intent
}

// Classifier returns the second-pass classifier. ok is false for terminal
// intents, whose sub-intent is always null.
func (r Route) Classifier() (Processor, bool) {
	return r.classifier, r.classifier != ""
}

// SubIntents returns the known sub-intent labels in sorted order.
func (r Route) SubIntents() []string {
	return slices.Sorted(maps.Keys(r.extractors))
}

// KnowsSubIntent reports whether label is a known sub-intent of this route.
func (r Route) KnowsSubIntent(label string) bool {
	_, ok := r.extractors[label]
	return ok
}

// ExtractionProcessor selects the extractor for subIntent, falling back to
// the intent-level default when subIntent is nil or unmapped.
func (r Route) ExtractionProcessor(subIntent *string) Processor {
	if subIntent != nil {
		if p, ok := r.extractors[*subIntent]; ok {
			return p
		}
	}
	return r.fallback
}
