package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/docket/pkg/docai"
)

const pdfMimeType = "application/pdf"

// Oracle classifies or extracts a document with the given processor and
// returns its entities in response order.
type Oracle interface {
	Process(ctx context.Context, document []byte, processor Processor) ([]Entity, error)
}

// DocAIOracle adapts a Document AI client to the Oracle interface.
type DocAIOracle struct {
	client docai.System
}

// NewDocAIOracle creates an Oracle backed by client.
func NewDocAIOracle(client docai.System) *DocAIOracle {
	return &DocAIOracle{client: client}
}

func (o *DocAIOracle) Process(ctx context.Context, document []byte, processor Processor) ([]Entity, error) {
	raw, err := o.client.Process(ctx, document, pdfMimeType, string(processor))
	if err != nil {
		return nil, fmt.Errorf("process with %s: %w", processor, err)
	}

	entities := make([]Entity, len(raw))
	for i, e := range raw {
		entities[i] = Entity{Label: e.Type, Confidence: e.Confidence}
		if e.MentionText != "" {
			text := e.MentionText
			entities[i].MentionText = &text
		}
	}
	return entities, nil
}
