package vectorstore

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Result cache defaults.
const (
	DefaultCacheTTL     = 60 * time.Second
	defaultCacheEntries = 512
)

type cacheEntry struct {
	results   []SearchResult
	expiresAt time.Time
}

// queryCache is a bounded TTL cache over search results. Entries are cloned
// on both put and get so cached slices are never shared with callers.
type queryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	entries map[string]cacheEntry
}

func newQueryCache(ttl time.Duration, max int) *queryCache {
	return &queryCache{
		ttl:     ttl,
		max:     max,
		entries: make(map[string]cacheEntry),
	}
}

func (c *queryCache) get(key string) ([]SearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return cloneResults(entry.results), true
}

func (c *queryCache) put(key string, results []SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Expired entries go first; if the cache is still full, drop an
	// arbitrary entry. Searches re-populate on the next miss, so precise
	// eviction order is not worth tracking.
	if len(c.entries) >= c.max {
		now := time.Now()
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
		for k := range c.entries {
			if len(c.entries) < c.max {
				break
			}
			delete(c.entries, k)
		}
	}

	c.entries[key] = cacheEntry{
		results:   cloneResults(results),
		expiresAt: time.Now().Add(c.ttl),
	}
}

func cloneResults(in []SearchResult) []SearchResult {
	if in == nil {
		return nil
	}
	out := make([]SearchResult, len(in))
	copy(out, in)
	for i := range out {
		if out[i].Metadata != nil {
			m := make(map[string]string, len(out[i].Metadata))
			for k, v := range out[i].Metadata {
				m[k] = v
			}
			out[i].Metadata = m
		}
	}
	return out
}

// cacheKey derives a stable key from the knowledge base set, the query
// vector and the effective options. Knowledge base ids are sorted so the
// set's order in the call does not split the cache.
func cacheKey(knowledgeBaseIDs []string, vector []float32, opts SearchOptions) string {
	ids := make([]string, len(knowledgeBaseIDs))
	copy(ids, knowledgeBaseIDs)
	sort.Strings(ids)

	h := xxhash.New()
	buf := make([]byte, 4)
	for _, v := range vector {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
		h.Write(buf)
	}

	return fmt.Sprintf("%s|%016x|%d|%g", strings.Join(ids, ","), h.Sum64(), opts.Limit, opts.Threshold)
}
