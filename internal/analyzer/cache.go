package analyzer

import (
	"sync"

	"github.com/ivlev/followcam/internal/telemetry"
)

// CacheKey identifies one clustering result. The recording's telemetry
// revision stands in for array identity: replacing a recording's telemetry
// bumps the revision, which invalidates the cached clusters for it.
type CacheKey struct {
	RecordingID string
	Revision    uint64
	ViewportW   int
	ViewportH   int
}

// Cache memoizes clustering results per (recording revision, viewport size).
// Safe for concurrent use.
type Cache struct {
	opts Options

	mu      sync.Mutex
	entries map[CacheKey][]ActivityCluster
}

// NewCache returns an empty cluster cache using the given clustering options.
func NewCache(opts Options) *Cache {
	return &Cache{
		opts:    opts,
		entries: make(map[CacheKey][]ActivityCluster),
	}
}

// Clusters returns the activity clusters for a recording at the given
// viewport size, computing and memoizing them on first request.
func (c *Cache) Clusters(rec *telemetry.Recording, viewportW, viewportH int) []ActivityCluster {
	key := CacheKey{
		RecordingID: rec.ID,
		Revision:    rec.Revision,
		ViewportW:   viewportW,
		ViewportH:   viewportH,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if got, ok := c.entries[key]; ok {
		return got
	}
	clusters := AnalyzeMotionClusters(rec.Cursor, float64(viewportW), float64(viewportH), c.opts)
	c.entries[key] = clusters
	return clusters
}

// Len reports how many results are memoized.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
