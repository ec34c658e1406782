// Package embedding converts text into fixed-length vectors through an
// external embedding provider and computes cosine similarity between vectors.
//
// All provider access goes through this package so retries, ordering quirks
// and text sanitation never leak into the store or the retrieval
// orchestrator.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
)

// Provider limits observed across embedding APIs.
const (
	// MaxTextLength is the maximum number of characters submitted per text.
	MaxTextLength = 32000

	// MaxBatchSize is the maximum number of texts per provider call. Larger
	// batches are split and their results concatenated in original order.
	MaxBatchSize = 100
)

var (
	// ErrEmptyText indicates the input was empty after sanitation.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrDimensionMismatch indicates two vectors of different lengths were
	// compared.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Embedding is a single provider result tagged with the index of the input
// it belongs to. Providers may return results in any order.
type Embedding struct {
	Index  int
	Vector []float32
}

// Provider is the external embedding boundary. Interface defined here, by
// the consumer, so tests can substitute a deterministic fake.
type Provider interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([]Embedding, error)
}

// Service generates embeddings through a Provider.
// Safe for concurrent use.
type Service struct {
	provider Provider
	logger   *slog.Logger
}

// New creates an embedding Service. A nil logger falls back to slog.Default.
func New(provider Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{provider: provider, logger: logger}
}

// Embed converts one text into a vector. The text is sanitized (NUL bytes
// stripped, whitespace collapsed, truncated to MaxTextLength) before
// submission; empty input is rejected with ErrEmptyText.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	cleaned := Clean(text)
	if cleaned == "" {
		return nil, ErrEmptyText
	}

	out, err := s.provider.CreateEmbeddings(ctx, []string{cleaned})
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	if len(out) == 0 || len(out[0].Vector) == 0 {
		return nil, fmt.Errorf("embedding generation failed: provider returned no vector")
	}

	return out[0].Vector, nil
}

// EmbedBatch converts texts into vectors, preserving input order. Empty
// entries are filtered out before submission, so the result corresponds
// positionally to the filtered input. Batches larger than MaxBatchSize are
// split into sub-batches; each sub-batch is re-sorted by the provider's
// returned index before concatenation.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	cleaned := make([]string, 0, len(texts))
	for _, t := range texts {
		if c := Clean(t); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(cleaned))
	calls := 0
	for offset := 0; offset < len(cleaned); offset += MaxBatchSize {
		end := offset + MaxBatchSize
		if end > len(cleaned) {
			end = len(cleaned)
		}
		batch := cleaned[offset:end]

		out, err := s.provider.CreateEmbeddings(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("embedding generation failed: %w", err)
		}
		if len(out) != len(batch) {
			return nil, fmt.Errorf("embedding generation failed: got %d vectors for %d inputs", len(out), len(batch))
		}

		// The provider may tag results in any order.
		sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
		for _, e := range out {
			vectors = append(vectors, e.Vector)
		}
		calls++
	}

	s.logger.Debug("embedded batch", "texts", len(cleaned), "provider_calls", calls)
	return vectors, nil
}

// Clean prepares text for submission: NUL bytes are stripped, runs of
// whitespace collapse to single spaces, and the result is truncated to
// MaxTextLength characters.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.Join(strings.Fields(text), " ")
	if runes := []rune(text); len(runes) > MaxTextLength {
		text = string(runes[:MaxTextLength])
	}
	return text
}

// CosineSimilarity returns the normalized dot product of a and b. Vectors of
// different lengths fail with ErrDimensionMismatch; a zero-magnitude vector
// yields 0 rather than NaN.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
