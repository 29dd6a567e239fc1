package pubg

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Client is the main interface for the PUBG API. Collection accessors return
// fresh Queries; nothing touches the network until a Query is read.
type Client interface {
	// Shard returns the platform shard used for shard-scoped collections.
	Shard() Shard

	// WithShard returns a client that shares the gateway but targets shard.
	WithShard(shard Shard) Client

	Players() *Query
	Matches() *Query
	Seasons() *Query
	PlayerSeason(accountID, seasonID string) *Query
	Samples() *Query
	Status() *Query
	Tournaments() *Query
	Leaderboard(seasonID string, gameMode GameMode) *Query

	// Telemetry downloads and parses the telemetry document at rawURL. Only
	// the telemetry CDN hosts are accepted.
	Telemetry(ctx context.Context, rawURL string) (*Telemetry, error)

	// MatchTelemetry fetches the telemetry referenced by match's assets.
	MatchTelemetry(ctx context.Context, match *Match) (*Telemetry, error)
}

// Logger interface for custom logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a pubg.Client.
type Config struct {
	// APIKey is the developer key sent as a Bearer token. Required.
	APIKey string

	// Shard selects the platform; defaults to ShardSteam.
	Shard Shard

	// BaseURL overrides https://api.pubg.com/, mostly for tests.
	BaseURL string

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Headers are added to every API request. Accept cannot be overridden.
	Headers map[string]string

	// TelemetryHosts replaces the telemetry CDN allow-list.
	TelemetryHosts []string

	// Debug enables request/response logging when a Logger is provided.
	Debug bool

	// Logger receives gateway logs. Nil disables logging.
	Logger Logger

	// TelemetryCache stores downloaded telemetry documents. Nil selects an
	// in-memory cache; use NewNoOpCache to disable caching.
	TelemetryCache Cache

	// MetricsRegisterer receives the gateway collectors. Nil disables metrics.
	MetricsRegisterer prometheus.Registerer
}
