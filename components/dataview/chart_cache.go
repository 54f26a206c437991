package dataview

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const defaultChartCacheSize = 128

// RenderCache memoizes rendered chart HTML keyed by resource, field and data hash.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ChartCache keeps the most recently rendered charts for a fixed TTL.
// Concurrent misses on one key share a single render.
type ChartCache struct {
	entries *expirable.LRU[string, string]
	group   singleflight.Group
}

// NewChartCache builds a cache; a non-positive ttl renders on every call.
func NewChartCache(ttl time.Duration) *ChartCache {
	if ttl <= 0 {
		return &ChartCache{}
	}
	return &ChartCache{entries: expirable.NewLRU[string, string](defaultChartCacheSize, nil, ttl)}
}

// GetOrRender implements RenderCache. Failed renders are not stored.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c == nil || c.entries == nil {
		return render()
	}
	if html, ok := c.entries.Get(key); ok {
		return html, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		html, err := render()
		if err != nil {
			return "", err
		}
		c.entries.Add(key, html)
		return html, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Len reports the number of live entries.
func (c *ChartCache) Len() int {
	if c == nil || c.entries == nil {
		return 0
	}
	return c.entries.Len()
}

func contentHash(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
