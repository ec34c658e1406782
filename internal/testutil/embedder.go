package testutil

import (
	"context"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/botforge/botforge/internal/embedding"
)

// StubDimensions is the vector size StubProvider produces.
const StubDimensions = 8

// StubProvider is a deterministic embedding.Provider for tests that need
// real-looking vectors without network access. Equal texts always embed to
// equal vectors, and different texts almost always differ.
type StubProvider struct{}

// CreateEmbeddings derives one unit vector per text from a hash of its
// content.
func (StubProvider) CreateEmbeddings(ctx context.Context, texts []string) ([]embedding.Embedding, error) {
	out := make([]embedding.Embedding, len(texts))
	for i, text := range texts {
		vec := make([]float32, StubDimensions)
		var norm float64
		for d := range vec {
			h := xxhash.Sum64String(text) ^ (uint64(d+1) * 0x9e3779b97f4a7c15)
			// Map the hash into (-1, 1).
			vec[d] = float32(int64(h))/math.MaxInt64*0.5 + 0.5
			norm += float64(vec[d]) * float64(vec[d])
		}
		if norm > 0 {
			scale := float32(1 / math.Sqrt(norm))
			for d := range vec {
				vec[d] *= scale
			}
		}
		out[i] = embedding.Embedding{Index: i, Vector: vec}
	}
	return out, nil
}
