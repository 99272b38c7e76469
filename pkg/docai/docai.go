// Package docai invokes Google Document AI processors and flattens their
// responses into labeled, confidence-scored entities.
package docai

import (
	"context"
	"fmt"
	"log/slog"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/JaimeStill/docket/pkg/lifecycle"
)

// Entity is one labeled entity from a processor response. MentionText is
// empty for pure classification entities.
type Entity struct {
	Type        string
	Confidence  float64
	MentionText string
}

// System processes documents against configured processors.
type System interface {
	// Process sends content to the processor named by key and returns its
	// entities in response order.
	Process(ctx context.Context, content []byte, mimeType, key string) ([]Entity, error)
	// Start registers a shutdown hook that closes the client connection.
	Start(lc *lifecycle.Coordinator) error
}

type client struct {
	dpc    *documentai.DocumentProcessorClient
	cfg    *Config
	logger *slog.Logger
}

// New dials the regional Document AI endpoint. Additional client options
// are appended after the endpoint option.
func New(ctx context.Context, cfg *Config, logger *slog.Logger, opts ...option.ClientOption) (System, error) {
	opts = append([]option.ClientOption{option.WithEndpoint(cfg.Endpoint)}, opts...)

	dpc, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create document ai client: %w", err)
	}

	return &client{
		dpc:    dpc,
		cfg:    cfg,
		logger: logger.With("system", "docai"),
	}, nil
}

func (c *client) Process(ctx context.Context, content []byte, mimeType, key string) ([]Entity, error) {
	if len(content) == 0 {
		return nil, ErrEmptyDocument
	}

	name, err := c.cfg.ResourceName(key)
	if err != nil {
		return nil, err
	}

	req := &documentaipb.ProcessRequest{
		Name: name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: mimeType,
			},
		},
	}

	resp, err := c.dpc.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("process document with %s: %w", key, err)
	}

	raw := resp.GetDocument().GetEntities()
	entities := make([]Entity, 0, len(raw))
	for _, e := range raw {
		entities = append(entities, Entity{
			Type:        e.GetType(),
			Confidence:  float64(e.GetConfidence()),
			MentionText: e.GetMentionText(),
		})
	}

	c.logger.Debug("document processed",
		"processor", key,
		"entities", len(entities),
		"review_state", resp.GetHumanReviewStatus().GetState().String(),
	)

	return entities, nil
}

func (c *client) Start(lc *lifecycle.Coordinator) error {
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := c.dpc.Close(); err != nil {
			c.logger.Error("close document ai client failed", "error", err)
			return
		}
		c.logger.Info("document ai client closed")
	})
	return nil
}
