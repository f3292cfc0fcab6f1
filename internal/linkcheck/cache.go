package linkcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/docsmith/mksite/internal/config"
)

// CacheEntry is a stored result for one external URL.
type CacheEntry struct {
	URL         string    `json:"url"`
	Status      int       `json:"status"`
	Valid       bool      `json:"valid"`
	Error       string    `json:"error,omitempty"`
	LastChecked time.Time `json:"last_checked"`
}

// resultCache stores external link results between runs.
type resultCache interface {
	Get(ctx context.Context, url string) (*CacheEntry, error)
	Put(ctx context.Context, entry *CacheEntry) error
	Fresh(entry *CacheEntry) bool
	Close() error
}

// natsCache keeps link results in a JetStream KV bucket so repeated
// checks across builds do not re-hit the same external hosts.
type natsCache struct {
	conn *nats.Conn
	kv   jetstream.KeyValue
	ttl  time.Duration
}

func newNATSCache(ref *config.LinkCacheRef) (*natsCache, error) {
	conn, err := nats.Connect(ref.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	bucket := ref.Bucket
	if bucket == "" {
		bucket = "mksite-linkcheck"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	kv, err := js.KeyValue(ctx, bucket)
	if err != nil {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      bucket,
			Description: "External link check results",
			History:     1,
		})
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("create KV bucket %s: %w", bucket, err)
		}
	}

	ttl := time.Hour
	if ref.TTL != "" {
		if d, err := time.ParseDuration(ref.TTL); err == nil {
			ttl = d
		}
	}

	slog.Debug("Link result cache connected", "url", ref.NATSURL, "bucket", bucket, "ttl", ttl)
	return &natsCache{conn: conn, kv: kv, ttl: ttl}, nil
}

func (c *natsCache) Get(ctx context.Context, url string) (*CacheEntry, error) {
	entry, err := c.kv.Get(ctx, cacheKey(url))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cache entry: %w", err)
	}

	var cached CacheEntry
	if err := json.Unmarshal(entry.Value(), &cached); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	return &cached, nil
}

func (c *natsCache) Put(ctx context.Context, entry *CacheEntry) error {
	entry.LastChecked = time.Now()
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if _, err := c.kv.Put(ctx, cacheKey(entry.URL), data); err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

func (c *natsCache) Fresh(entry *CacheEntry) bool {
	if entry == nil {
		return false
	}
	return time.Since(entry.LastChecked) < c.ttl
}

func (c *natsCache) Close() error {
	if c.conn != nil {
		c.conn.Close()
	}
	return nil
}

// cacheKey maps a URL onto a KV-safe key. NATS keys cannot contain
// most URL punctuation, so the URL is hex encoded.
func cacheKey(url string) string {
	return fmt.Sprintf("%x", url)
}

// noopCache is used when no cache backend is configured.
type noopCache struct{}

func (noopCache) Get(context.Context, string) (*CacheEntry, error) { return nil, nil }
func (noopCache) Put(context.Context, *CacheEntry) error           { return nil }
func (noopCache) Fresh(*CacheEntry) bool                           { return false }
func (noopCache) Close() error                                     { return nil }
