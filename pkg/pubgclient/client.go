package pubgclient

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fivetwenty-io/pubg/internal/client"
	"github.com/fivetwenty-io/pubg/pkg/pubg"
)

// Environment variables read by NewFromEnv.
const (
	EnvAPIKey = "PUBG_API_KEY"
	EnvShard  = "PUBG_SHARD"
)

// New creates a new PUBG API client. config is not modified.
func New(ctx context.Context, config *pubg.Config) (pubg.Client, error) {
	if config == nil {
		return nil, pubg.ErrConfigRequired
	}

	if config.APIKey == "" {
		return nil, pubg.ErrAPIKeyRequired
	}

	normalized := *config

	if normalized.BaseURL != "" {
		baseURL := strings.TrimSpace(normalized.BaseURL)
		if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
			baseURL = "https://" + baseURL
		}

		normalized.BaseURL = baseURL
	}

	c, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithAPIKey creates a client for shard with default settings.
func NewWithAPIKey(ctx context.Context, apiKey string, shard pubg.Shard) (pubg.Client, error) {
	return New(ctx, &pubg.Config{
		APIKey: apiKey,
		Shard:  shard,
	})
}

// NewFromEnv creates a client from PUBG_API_KEY and PUBG_SHARD.
func NewFromEnv(ctx context.Context) (pubg.Client, error) {
	return New(ctx, &pubg.Config{
		APIKey: os.Getenv(EnvAPIKey),
		Shard:  pubg.Shard(os.Getenv(EnvShard)),
	})
}
