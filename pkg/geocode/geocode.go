// Package geocode resolves free-text addresses to formatted addresses
// through the Google Maps Places text search.
package geocode

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"googlemaps.github.io/maps"
)

// System looks up the formatted address for a free-text query.
type System interface {
	// Lookup returns the formatted address of the first result. found is
	// false when the search has no results.
	Lookup(ctx context.Context, address string) (formatted string, found bool, err error)
}

type places struct {
	client   *maps.Client
	language string
	region   string
	logger   *slog.Logger
}

// New creates a Places client, or a lookup that never finds anything when
// enrichment is disabled.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "geocode")

	if !cfg.IsEnabled() {
		logger.Info("address enrichment disabled")
		return disabled{}, nil
	}

	opts := []maps.ClientOption{
		maps.WithAPIKey(cfg.APIKey),
		maps.WithHTTPClient(&http.Client{Timeout: cfg.TimeoutDuration()}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(cfg.BaseURL))
	}

	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}

	return &places{
		client:   client,
		language: cfg.Language,
		region:   cfg.Region,
		logger:   logger,
	}, nil
}

func (p *places) Lookup(ctx context.Context, address string) (string, bool, error) {
	req := &maps.TextSearchRequest{
		Query:    address,
		Language: p.language,
		Region:   p.region,
	}

	resp, err := p.client.TextSearch(ctx, req)
	if err != nil {
		return "", false, fmt.Errorf("text search: %w", err)
	}

	if len(resp.Results) == 0 || resp.Results[0].FormattedAddress == "" {
		p.logger.Debug("no address found", "query", address)
		return "", false, nil
	}

	formatted := resp.Results[0].FormattedAddress
	p.logger.Debug("address found", "query", address, "formatted", formatted)
	return formatted, true, nil
}

type disabled struct{}

func (disabled) Lookup(context.Context, string) (string, bool, error) {
	return "", false, nil
}
