package pubg

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Static errors for err113 compliance.
var (
	ErrNATSURLRequired = errors.New("NATS URL or connection is required")
)

// NATSKVConfig configures a JetStream key-value cache.
type NATSKVConfig struct {
	// URL of the NATS server, ignored when Conn is set.
	URL string `yaml:"url"`
	// Conn is an existing connection. The cache does not close it.
	Conn *nats.Conn `yaml:"-"`
	// Bucket name; defaults to "pubg_telemetry".
	Bucket string `yaml:"bucket"`
	// TTL of every entry; defaults to 24h.
	TTL time.Duration `yaml:"ttl"`
	// MaxValueSize rejects larger values; zero keeps the server default.
	MaxValueSize int32 `yaml:"max_value_size"`
}

// Defaults for NATSKVConfig.
const (
	DefaultNATSBucket = "pubg_telemetry"
	DefaultNATSTTL    = 24 * time.Hour
)

// NATSKVCache stores entries in a JetStream key-value bucket so several
// processes can share downloaded telemetry. Expiry is handled by the bucket
// TTL.
type NATSKVCache struct {
	conn    *nats.Conn
	ownConn bool
	kv      jetstream.KeyValue
	ttl     time.Duration
}

// NewNATSKVCache connects (unless config.Conn is given) and creates or binds
// the bucket.
func NewNATSKVCache(ctx context.Context, config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	if config.Conn == nil && config.URL == "" {
		return nil, ErrNATSURLRequired
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = DefaultNATSBucket
	}

	ttl := config.TTL
	if ttl <= 0 {
		ttl = DefaultNATSTTL
	}

	conn := config.Conn
	ownConn := false

	if conn == nil {
		var err error

		conn, err = nats.Connect(config.URL, nats.Name("pubg-telemetry-cache"))
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}

		ownConn = true
	}

	js, err := jetstream.New(conn)
	if err != nil {
		closeIfOwned(conn, ownConn)

		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:       bucket,
		Description:  "PUBG telemetry documents",
		TTL:          ttl,
		MaxValueSize: config.MaxValueSize,
	})
	if err != nil {
		closeIfOwned(conn, ownConn)

		return nil, fmt.Errorf("binding KV bucket %s: %w", bucket, err)
	}

	return &NATSKVCache{
		conn:    conn,
		ownConn: ownConn,
		kv:      kv,
		ttl:     ttl,
	}, nil
}

func closeIfOwned(conn *nats.Conn, owned bool) {
	if owned {
		conn.Close()
	}
}

// natsKey maps an arbitrary key, typically a URL, to a valid KV key.
func natsKey(key string) string {
	sum := sha256.Sum256([]byte(key))

	return hex.EncodeToString(sum[:])
}

// Get retrieves an entry.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	entry, err := c.kv.Get(ctx, natsKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}

		return nil, fmt.Errorf("reading KV entry: %w", err)
	}

	return &CacheEntry{
		Data:      entry.Value(),
		ExpiresAt: entry.Created().Add(c.ttl),
	}, nil
}

// Set stores an entry. ExpiresAt is ignored in favor of the bucket TTL.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	_, err := c.kv.Put(ctx, natsKey(key), entry.Data)
	if err != nil {
		return fmt.Errorf("writing KV entry: %w", err)
	}

	return nil
}

// Delete removes an entry.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(ctx, natsKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("deleting KV entry: %w", err)
	}

	return nil
}

// Clear purges every key in the bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	lister, err := c.kv.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil
		}

		return fmt.Errorf("listing KV keys: %w", err)
	}

	defer func() { _ = lister.Stop() }()

	for key := range lister.Keys() {
		err := c.kv.Purge(ctx, key)
		if err != nil {
			return fmt.Errorf("purging KV key: %w", err)
		}
	}

	return nil
}

// Has reports whether key is present.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close releases the connection when the cache opened it.
func (c *NATSKVCache) Close() {
	closeIfOwned(c.conn, c.ownConn)
}
