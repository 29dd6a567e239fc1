// Package client implements pubg.Client on top of the HTTP gateways.
package client

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/fivetwenty-io/pubg/internal/constants"
	"github.com/fivetwenty-io/pubg/internal/http"
	"github.com/fivetwenty-io/pubg/pkg/pubg"
)

// Client implements the pubg.Client interface.
type Client struct {
	httpClient *http.Client
	telemetry  *http.TelemetryClient
	base       *pubg.Endpoint
	shard      pubg.Shard
	registry   *pubg.Registry
	logger     pubg.Logger
}

// New creates a new PUBG API client.
func New(ctx context.Context, config *pubg.Config) (*Client, error) {
	if config == nil {
		return nil, pubg.ErrConfigRequired
	}

	if config.APIKey == "" {
		return nil, pubg.ErrAPIKeyRequired
	}

	shard := config.Shard
	if shard == "" {
		shard = pubg.ShardSteam
	}

	if !shard.Valid() {
		return nil, fmt.Errorf("%w: %q", constants.ErrInvalidShard, shard)
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = constants.APIBaseURL
	}

	var metrics *http.Metrics
	if config.MetricsRegisterer != nil {
		metrics = http.NewMetrics(config.MetricsRegisterer)
	}

	common := []http.Option{
		http.WithLogger(config.Logger),
		http.WithDebug(config.Debug),
		http.WithUserAgent(config.UserAgent),
		http.WithMetrics(metrics),
	}

	apiOpts := append(slices.Clone(common), http.WithGateway(http.GatewayAPI))
	if len(config.Headers) > 0 {
		apiOpts = append(apiOpts, http.WithRequestInterceptor(http.HeaderInterceptor(config.Headers)))
	}

	httpClient := http.NewClient(baseURL, config.APIKey, apiOpts...)

	base, err := httpClient.Endpoint()
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	// The CDN must never see the API key.
	cdnClient := http.NewClient("", "", append(slices.Clone(common), http.WithGateway(http.GatewayTelemetry))...)

	cache := config.TelemetryCache
	if cache == nil {
		cache = pubg.NewMemoryCache(pubg.DefaultCacheSize)
	}

	telemetryOpts := []http.TelemetryOption{
		http.WithCache(cache, constants.DefaultTelemetryTTL),
		http.WithTelemetryLogger(config.Logger),
		http.WithTelemetryMetrics(metrics),
	}
	if len(config.TelemetryHosts) > 0 {
		telemetryOpts = append(telemetryOpts, http.WithAllowedHosts(config.TelemetryHosts...))
	}

	telemetry := http.NewTelemetryClient(cdnClient, telemetryOpts...)

	if config.Logger != nil {
		config.Logger.Debug("PUBG client created", map[string]interface{}{
			"base_url": base.String(),
			"shard":    string(shard),
		})
	}

	return &Client{
		httpClient: httpClient,
		telemetry:  telemetry,
		base:       base,
		shard:      shard,
		registry:   pubg.DefaultRegistry(),
		logger:     config.Logger,
	}, nil
}

// endpoint returns the template endpoint for the given path.
func (c *Client) endpoint(segments ...string) *pubg.Endpoint {
	endpoint := c.base
	for _, segment := range segments {
		endpoint = endpoint.AppendSegment(segment)
	}

	return endpoint
}

func (c *Client) shardQuery(segments ...string) *pubg.Query {
	path := append([]string{"shards", string(c.shard)}, segments...)

	return pubg.NewQuery(c.httpClient, c.endpoint(path...), c.registry)
}

// Shard implements pubg.Client.
func (c *Client) Shard() pubg.Shard {
	return c.shard
}

// WithShard implements pubg.Client.
func (c *Client) WithShard(shard pubg.Shard) pubg.Client {
	clone := *c
	clone.shard = shard

	return &clone
}

// Players implements pubg.Client.
func (c *Client) Players() *pubg.Query {
	return c.shardQuery("players")
}

// Matches implements pubg.Client.
func (c *Client) Matches() *pubg.Query {
	return c.shardQuery("matches")
}

// Seasons implements pubg.Client.
func (c *Client) Seasons() *pubg.Query {
	return c.shardQuery("seasons")
}

// PlayerSeason implements pubg.Client.
func (c *Client) PlayerSeason(accountID, seasonID string) *pubg.Query {
	return c.shardQuery("players", accountID, "seasons", seasonID)
}

// Samples implements pubg.Client.
func (c *Client) Samples() *pubg.Query {
	return c.shardQuery("samples")
}

// Status implements pubg.Client.
func (c *Client) Status() *pubg.Query {
	return pubg.NewQuery(c.httpClient, c.endpoint("status"), c.registry)
}

// Tournaments implements pubg.Client.
func (c *Client) Tournaments() *pubg.Query {
	return pubg.NewQuery(c.httpClient, c.endpoint("tournaments"), c.registry)
}

// Leaderboard implements pubg.Client.
func (c *Client) Leaderboard(seasonID string, gameMode pubg.GameMode) *pubg.Query {
	return c.shardQuery("leaderboards", seasonID, string(gameMode))
}

// Telemetry implements pubg.Client.
func (c *Client) Telemetry(ctx context.Context, rawURL string) (*pubg.Telemetry, error) {
	telemetry, err := c.telemetry.Telemetry(ctx, strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("fetching telemetry: %w", err)
	}

	return telemetry, nil
}

// MatchTelemetry implements pubg.Client.
func (c *Client) MatchTelemetry(ctx context.Context, match *pubg.Match) (*pubg.Telemetry, error) {
	rawURL, err := match.TelemetryURL()
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", match.ID, err)
	}

	return c.Telemetry(ctx, rawURL)
}
