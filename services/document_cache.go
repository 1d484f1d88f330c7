package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DocumentCache keeps the latest serialized panel document in Redis so
// loads after a restart skip the collection round trip. The cache is
// refreshed on every save (write-through) and is always safe to lose.
type DocumentCache struct {
	client    *redis.Client
	ttl       time.Duration
	cacheLock sync.RWMutex
}

var GlobalDocumentCache *DocumentCache

// NewDocumentCache creates and initializes a new document cache
func NewDocumentCache(redisURL string, ttl time.Duration) (*DocumentCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &DocumentCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func (dc *DocumentCache) key() string {
	return "panel_doc:" + documentCacheKey
}

const documentCacheKey = "execpanel:v2"

// GetPayload returns the cached serialized document, or nil on miss.
func (dc *DocumentCache) GetPayload(ctx context.Context) ([]byte, error) {
	dc.cacheLock.RLock()
	defer dc.cacheLock.RUnlock()

	data, err := dc.client.Get(ctx, dc.key()).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document from cache: %v", err)
	}
	return data, nil
}

// SetPayload stores the serialized document with the configured TTL.
func (dc *DocumentCache) SetPayload(ctx context.Context, payload []byte) error {
	if payload == nil {
		return fmt.Errorf("cannot cache nil payload")
	}

	dc.cacheLock.Lock()
	defer dc.cacheLock.Unlock()

	if err := dc.client.Set(ctx, dc.key(), payload, dc.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache document: %v", err)
	}
	return nil
}

// DeletePayload drops the cached document.
func (dc *DocumentCache) DeletePayload(ctx context.Context) error {
	dc.cacheLock.Lock()
	defer dc.cacheLock.Unlock()

	if err := dc.client.Del(ctx, dc.key()).Err(); err != nil {
		return fmt.Errorf("failed to delete cached document: %v", err)
	}
	return nil
}

func (dc *DocumentCache) IsConnected() bool {
	if dc == nil || dc.client == nil {
		return false
	}
	ctx := context.Background()
	return dc.client.Ping(ctx).Err() == nil
}

// Close closes the Redis connection
func (dc *DocumentCache) Close() error {
	return dc.client.Close()
}
