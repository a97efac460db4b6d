package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"i18n-extract/internal/extract"
	"i18n-extract/internal/textutil"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// Backend is a persistent tier behind the in-memory cache.
// *catalog.Store satisfies it.
type Backend interface {
	GetScan(ctx context.Context, hash string) ([]byte, bool, error)
	PutScan(ctx context.Context, hash string, data []byte) error
}

// ScanCache remembers scan results keyed by pickup configuration, file label
// and source content. It is safe for concurrent use.
type ScanCache struct {
	memory      *lru.Cache[string, []extract.Message]
	backend     Backend
	fingerprint string
}

// NewScanCache creates a cache holding up to size results in memory.
// fingerprint identifies the pickup table the cached results were produced
// with. backend may be nil.
func NewScanCache(size int, fingerprint string, backend Backend) (*ScanCache, error) {
	memory, err := lru.New[string, []extract.Message](size)
	if err != nil {
		return nil, fmt.Errorf("create scan cache: %w", err)
	}
	return &ScanCache{
		memory:      memory,
		backend:     backend,
		fingerprint: fingerprint,
	}, nil
}

// Key derives the cache key for one file scan.
func (c *ScanCache) Key(file string, source []byte) string {
	return textutil.Hash([]byte(c.fingerprint), []byte(file), source)
}

// Get returns a cached scan result. Backend failures and undecodable entries
// are treated as misses.
func (c *ScanCache) Get(ctx context.Context, key string) ([]extract.Message, bool) {
	if msgs, ok := c.memory.Get(key); ok {
		return msgs, true
	}
	if c.backend == nil {
		return nil, false
	}

	data, ok, err := c.backend.GetScan(ctx, key)
	if err != nil {
		log.Warn().Err(err).Msg("Scan cache lookup failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var msgs []extract.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Discarding corrupt scan cache entry")
		return nil, false
	}

	c.memory.Add(key, msgs)
	return msgs, true
}

// Set stores a scan result in memory and, when configured, in the backend.
func (c *ScanCache) Set(ctx context.Context, key string, msgs []extract.Message) error {
	c.memory.Add(key, msgs)
	if c.backend == nil {
		return nil
	}

	data, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encode scan result: %w", err)
	}
	if err := c.backend.PutScan(ctx, key, data); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Len reports the number of results held in memory.
func (c *ScanCache) Len() int {
	return c.memory.Len()
}
