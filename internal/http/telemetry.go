package http

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fivetwenty-io/pubg/internal/constants"
	"github.com/fivetwenty-io/pubg/pkg/pubg"
)

// Getter performs a GET. *Client implements it.
type Getter interface {
	Get(ctx context.Context, endpoint *pubg.Endpoint) (*Response, error)
}

// TelemetryClient fetches telemetry documents. Only the CDN hosts on its
// allow-list are contacted; any other host fails with pubg.ErrTelemetryURL
// before the getter is invoked.
type TelemetryClient struct {
	getter  Getter
	hosts   []string
	cache   pubg.Cache
	ttl     time.Duration
	logger  pubg.Logger
	metrics *Metrics
}

// TelemetryOption configures a TelemetryClient.
type TelemetryOption func(*TelemetryClient)

// WithAllowedHosts replaces the host allow-list.
func WithAllowedHosts(hosts ...string) TelemetryOption {
	return func(c *TelemetryClient) {
		c.hosts = slices.Clone(hosts)
	}
}

// WithCache stores fetched documents in cache for ttl. A non-positive ttl
// keeps the default.
func WithCache(cache pubg.Cache, ttl time.Duration) TelemetryOption {
	return func(c *TelemetryClient) {
		c.cache = cache

		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithTelemetryLogger sets the logger used for cache failures.
func WithTelemetryLogger(logger pubg.Logger) TelemetryOption {
	return func(c *TelemetryClient) {
		c.logger = logger
	}
}

// WithTelemetryMetrics records cache lookups and rejected URLs.
func WithTelemetryMetrics(metrics *Metrics) TelemetryOption {
	return func(c *TelemetryClient) {
		c.metrics = metrics
	}
}

// NewTelemetryClient creates a telemetry gateway delegating to getter.
func NewTelemetryClient(getter Getter, opts ...TelemetryOption) *TelemetryClient {
	client := &TelemetryClient{
		getter: getter,
		hosts:  slices.Clone(constants.TelemetryHosts),
		ttl:    constants.DefaultTelemetryTTL,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Allowed reports whether host is on the allow-list.
func (c *TelemetryClient) Allowed(host string) bool {
	return slices.ContainsFunc(c.hosts, func(allowed string) bool {
		return strings.EqualFold(allowed, host)
	})
}

// Request returns the raw telemetry document at endpoint.
func (c *TelemetryClient) Request(ctx context.Context, endpoint *pubg.Endpoint) ([]byte, error) {
	host := endpoint.Host()
	if !c.Allowed(host) {
		c.metrics.rejectURL()

		return nil, fmt.Errorf("%w: %q", pubg.ErrTelemetryURL, host)
	}

	key := endpoint.String()

	if c.cache != nil {
		entry, err := c.cache.Get(ctx, key)
		c.metrics.cacheResult(err == nil)

		if err == nil {
			return entry.Data, nil
		}
	}

	resp, err := c.getter.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		err := c.cache.Set(ctx, key, &pubg.CacheEntry{
			Data:      resp.Body,
			ExpiresAt: time.Now().Add(c.ttl),
		})
		if err != nil && c.logger != nil {
			c.logger.Warn("failed to cache telemetry", map[string]interface{}{
				"url":   key,
				"error": err.Error(),
			})
		}
	}

	return resp.Body, nil
}

// Telemetry fetches and parses the telemetry document at rawURL.
func (c *TelemetryClient) Telemetry(ctx context.Context, rawURL string) (*pubg.Telemetry, error) {
	endpoint, err := pubg.ParseEndpoint(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pubg.ErrTelemetryURL, err)
	}

	data, err := c.Request(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	return pubg.ParseTelemetry(data)
}
