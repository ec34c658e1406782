package vectorstore

import (
	"testing"
	"time"
)

func TestQueryCache_PutGet(t *testing.T) {
	cache := newQueryCache(time.Minute, 8)
	key := cacheKey([]string{"kb-1"}, []float32{0.1, 0.2}, SearchOptions{Limit: 5, Threshold: 0.7})

	if _, ok := cache.get(key); ok {
		t.Fatal("expected miss on empty cache")
	}

	results := []SearchResult{{ChunkID: "c1", Content: "hello", Similarity: 0.9, Metadata: map[string]string{"k": "v"}}}
	cache.put(key, results)

	got, ok := cache.get(key)
	if !ok {
		t.Fatal("expected hit after put")
	}
	if len(got) != 1 || got[0].ChunkID != "c1" {
		t.Fatalf("unexpected cached results: %+v", got)
	}
}

func TestQueryCache_EntriesAreIsolated(t *testing.T) {
	cache := newQueryCache(time.Minute, 8)
	key := "k"

	original := []SearchResult{{ChunkID: "c1", Content: "hello", Metadata: map[string]string{"k": "v"}}}
	cache.put(key, original)

	// Mutating what the caller handed in must not touch the cache.
	original[0].Content = "mutated"
	original[0].Metadata["k"] = "mutated"

	got, _ := cache.get(key)
	if got[0].Content != "hello" || got[0].Metadata["k"] != "v" {
		t.Errorf("cache entry shares memory with caller: %+v", got[0])
	}

	// Mutating what get returned must not touch the cache either.
	got[0].Metadata["k"] = "mutated"
	again, _ := cache.get(key)
	if again[0].Metadata["k"] != "v" {
		t.Error("cached metadata shared between get calls")
	}
}

func TestQueryCache_Expiry(t *testing.T) {
	cache := newQueryCache(10*time.Millisecond, 8)
	cache.put("k", []SearchResult{{ChunkID: "c1"}})

	if _, ok := cache.get("k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := cache.get("k"); ok {
		t.Error("expected miss after TTL")
	}
}

func TestQueryCache_Bounded(t *testing.T) {
	cache := newQueryCache(time.Minute, 4)
	for i := 0; i < 10; i++ {
		cache.put(string(rune('a'+i)), []SearchResult{{ChunkID: "c"}})
	}
	if len(cache.entries) > 4 {
		t.Errorf("cache grew to %d entries, max is 4", len(cache.entries))
	}
}

func TestCacheKey(t *testing.T) {
	vec := []float32{0.1, 0.2, 0.3}
	opts := SearchOptions{Limit: 10, Threshold: 0.7}

	// Knowledge base order must not matter.
	a := cacheKey([]string{"kb-1", "kb-2"}, vec, opts)
	b := cacheKey([]string{"kb-2", "kb-1"}, vec, opts)
	if a != b {
		t.Errorf("key depends on knowledge base order: %q vs %q", a, b)
	}

	// Any input change must change the key.
	if a == cacheKey([]string{"kb-1"}, vec, opts) {
		t.Error("key ignores knowledge base set")
	}
	if a == cacheKey([]string{"kb-1", "kb-2"}, []float32{0.1, 0.2, 0.4}, opts) {
		t.Error("key ignores vector contents")
	}
	if a == cacheKey([]string{"kb-1", "kb-2"}, vec, SearchOptions{Limit: 5, Threshold: 0.7}) {
		t.Error("key ignores limit")
	}
	if a == cacheKey([]string{"kb-1", "kb-2"}, vec, SearchOptions{Limit: 10, Threshold: 0.5}) {
		t.Error("key ignores threshold")
	}
}
