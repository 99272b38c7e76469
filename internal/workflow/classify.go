package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/JaimeStill/docket/internal/records"
	"github.com/JaimeStill/docket/pkg/storage"
)

// Classify resolves the intent of a document with the broad classifier and,
// when the intent's route requires it, the sub-intent with the intent's
// classifier. Both levels are written to the record in one update that
// replaces any previous classification.
func Classify(ctx context.Context, rt *Runtime, documentID string) error {
	if _, err := rt.Records.Get(ctx, documentID); err != nil {
		return fmt.Errorf("%w: %w", ErrClassifyFailed, err)
	}

	doc, err := loadDocument(ctx, rt, documentID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrClassifyFailed, err)
	}

	result, err := classifyDocument(ctx, rt.Oracle, doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrClassifyFailed, err)
	}

	err = rt.Records.Update(ctx, documentID, records.Fields{
		"classification_result": result,
		"status":                records.StatusClassified,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrClassifyFailed, err)
	}

	attrs := []any{
		"document_id", documentID,
		"intent", result.Intent.Value,
		"confidence", result.Intent.Confidence,
	}
	if result.SubIntent.Value != nil {
		attrs = append(attrs, "sub_intent", *result.SubIntent.Value, "sub_confidence", *result.SubIntent.Confidence)
	}
	rt.Logger.InfoContext(ctx, "document classified", attrs...)

	return nil
}

func classifyDocument(ctx context.Context, oracle Oracle, doc []byte) (records.ClassificationResult, error) {
	var result records.ClassificationResult

	top, err := resolveWith(ctx, oracle, doc, ProcessorBroad)
	if err != nil {
		return result, err
	}

	intent, err := ParseIntent(top.Label)
	if err != nil {
		return result, err
	}

	route, err := RouteFor(intent)
	if err != nil {
		return result, err
	}

	result.Intent = records.Label{Value: string(intent), Confidence: top.Confidence}

	classifier, ok := route.Classifier()
	if !ok {
		return result, nil
	}

	sub, err := resolveWith(ctx, oracle, doc, classifier)
	if err != nil {
		return result, err
	}

	if !route.KnowsSubIntent(sub.Label) {
		return result, fmt.Errorf("%w: %q for intent %s", ErrUnknownSubIntent, sub.Label, intent)
	}

	result.SubIntent = records.OptionalLabel{
		Value:      &sub.Label,
		Confidence: &sub.Confidence,
	}
	return result, nil
}

func resolveWith(ctx context.Context, oracle Oracle, doc []byte, processor Processor) (Entity, error) {
	entities, err := oracle.Process(ctx, doc, processor)
	if err != nil {
		return Entity{}, err
	}

	top, err := Resolve(entities)
	if err != nil {
		return Entity{}, fmt.Errorf("%s: %w", processor, err)
	}
	return top, nil
}

func loadDocument(ctx context.Context, rt *Runtime, documentID string) ([]byte, error) {
	key := DocumentKey(documentID)

	r, err := rt.Storage.Download(ctx, rt.Containers.Processing, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, rt.Containers.Processing, key)
		}
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}
