package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/docket/internal/records"
)

// Extract routes a classified document to its extraction processor and
// writes the aggregated fields to the record, replacing any previous
// extraction.
func Extract(ctx context.Context, rt *Runtime, documentID string) error {
	rec, err := rt.Records.Get(ctx, documentID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExtractFailed, err)
	}

	cr := rec.ClassificationResult
	if cr == nil {
		return fmt.Errorf("%w: %w: %s has no classification result", ErrExtractFailed, ErrMissingState, documentID)
	}

	intent, err := ParseIntent(cr.Intent.Value)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExtractFailed, err)
	}

	route, err := RouteFor(intent)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExtractFailed, err)
	}

	processor := route.ExtractionProcessor(cr.SubIntent.Value)

	doc, err := loadDocument(ctx, rt, documentID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExtractFailed, err)
	}

	entities, err := rt.Oracle.Process(ctx, doc, processor)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExtractFailed, err)
	}
	if len(entities) == 0 {
		return fmt.Errorf("%w: %s: %w", ErrExtractFailed, processor, ErrNoEntities)
	}

	extraction := Aggregate(entities)
	if Matched(extraction) == 0 {
		return fmt.Errorf("%w: %s: no schema fields among %d entities: %w", ErrExtractFailed, processor, len(entities), ErrNoEntities)
	}

	err = rt.Records.Update(ctx, documentID, records.Fields{
		"entity_extraction_result": extraction,
		"status":                   records.StatusExtracted,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExtractFailed, err)
	}

	rt.Logger.InfoContext(
		ctx, "document extracted",
		"document_id", documentID,
		"processor", processor,
		"entities", len(entities),
	)

	return nil
}
