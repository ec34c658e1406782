// Package rag assembles knowledge base context for bot queries. It resolves
// the knowledge bases linked to a bot, routes the query to an exact
// identifier lookup or a semantic vector search, and renders the hits into
// a prompt-ready context block.
//
// GetContextForQuery never returns an error: a chatbot turn must not fail
// because retrieval did, so every failure degrades to an empty context with
// the cause recorded on the result.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/botforge/botforge/internal/vectorstore"
)

// Retrieval defaults.
const (
	DefaultMaxChunks = 6
	DefaultThreshold = 0.7
)

// SearchStore is the persistence surface this package needs.
type SearchStore interface {
	GetAgentKnowledgeBases(ctx context.Context, agentID string) ([]vectorstore.AgentKnowledgeBase, error)
	SearchMulti(ctx context.Context, knowledgeBaseIDs []string, vector []float32, opts vectorstore.SearchOptions) ([]vectorstore.SearchResult, error)
	SearchPattern(ctx context.Context, knowledgeBaseIDs []string, patterns []string, limit int) ([]vectorstore.SearchResult, error)
	AssignToAgent(ctx context.Context, agentID, knowledgeBaseID string, priority int) error
	RemoveFromAgent(ctx context.Context, agentID, knowledgeBaseID string) error
}

// Embedder turns query text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Source identifies where one context block came from. Raw embeddings are
// never exposed here.
type Source struct {
	ChunkID           string
	DocumentName      string
	KnowledgeBaseName string
	Similarity        float64
	Exact             bool
}

// Result is the outcome of a retrieval pass. HasContext reports whether
// Context holds usable material; Err carries the failure description when
// retrieval degraded, and is informational only.
type Result struct {
	HasContext bool
	Context    string
	Sources    []Source
	Err        string
}

// Service orchestrates retrieval for bot queries.
type Service struct {
	store     SearchStore
	embedder  Embedder
	logger    *slog.Logger
	maxChunks int
	threshold float64
}

// Option configures a Service.
type Option func(*Service)

// WithMaxChunks caps how many chunks one query may pull into context.
func WithMaxChunks(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxChunks = n
		}
	}
}

// WithThreshold overrides the semantic similarity floor.
func WithThreshold(t float64) Option {
	return func(s *Service) {
		if t > 0 {
			s.threshold = t
		}
	}
}

// New creates a retrieval service. A nil logger falls back to slog.Default.
func New(store SearchStore, embedder Embedder, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:     store,
		embedder:  embedder,
		logger:    logger,
		maxChunks: DefaultMaxChunks,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetContextForQuery retrieves knowledge base context for one bot query.
//
// Queries containing numeric identifiers take the exact lookup path only:
// when an identifier finds nothing, the answer is "not found", and falling
// back to semantic search would surface lookalike products instead.
func (s *Service) GetContextForQuery(ctx context.Context, agentID, query string) Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}
	}

	linked, err := s.store.GetAgentKnowledgeBases(ctx, agentID)
	if err != nil {
		s.logger.Error("failed to resolve agent knowledge bases", "agent", agentID, "error", err)
		return Result{Err: fmt.Sprintf("resolving knowledge bases: %v", err)}
	}
	if len(linked) == 0 {
		return Result{}
	}

	kbIDs := make([]string, len(linked))
	for i, kb := range linked {
		kbIDs[i] = kb.ID
	}

	var results []vectorstore.SearchResult
	if ids := DetectIdentifiers(query); len(ids) > 0 {
		results = s.searchExact(ctx, kbIDs, ids)
		if len(results) == 0 {
			s.logger.Debug("identifier query found nothing", "agent", agentID, "identifiers", len(ids))
			return Result{}
		}
	} else {
		results, err = s.searchSemantic(ctx, kbIDs, query)
		if err != nil {
			s.logger.Error("semantic search failed", "agent", agentID, "error", err)
			return Result{Err: fmt.Sprintf("semantic search: %v", err)}
		}
	}

	if len(results) == 0 {
		return Result{}
	}
	if len(results) > s.maxChunks {
		results = results[:s.maxChunks]
	}

	return buildResult(results)
}

// searchExact runs the identifier lookup path. Store errors are logged and
// treated as zero results.
func (s *Service) searchExact(ctx context.Context, kbIDs []string, ids []Identifier) []vectorstore.SearchResult {
	results, err := s.store.SearchPattern(ctx, kbIDs, patterns(ids), s.maxChunks)
	if err != nil {
		s.logger.Error("pattern search failed", "error", err)
		return nil
	}
	return results
}

func (s *Service) searchSemantic(ctx context.Context, kbIDs []string, query string) ([]vectorstore.SearchResult, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return s.store.SearchMulti(ctx, kbIDs, vector, vectorstore.SearchOptions{
		Limit:     s.maxChunks,
		Threshold: s.threshold,
	})
}

func buildResult(results []vectorstore.SearchResult) Result {
	var b strings.Builder
	sources := make([]Source, len(results))

	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Source %d: %s - %s]\n%s", i+1, r.DocumentName, r.KnowledgeBaseName, r.Content)
		sources[i] = Source{
			ChunkID:           r.ChunkID,
			DocumentName:      r.DocumentName,
			KnowledgeBaseName: r.KnowledgeBaseName,
			Similarity:        r.Similarity,
			Exact:             r.Exact,
		}
	}

	return Result{
		HasContext: true,
		Context:    b.String(),
		Sources:    sources,
	}
}

// Link attaches a knowledge base to a bot at the given priority.
func (s *Service) Link(ctx context.Context, agentID, knowledgeBaseID string, priority int) error {
	return s.store.AssignToAgent(ctx, agentID, knowledgeBaseID, priority)
}

// Unlink detaches a knowledge base from a bot.
func (s *Service) Unlink(ctx context.Context, agentID, knowledgeBaseID string) error {
	return s.store.RemoveFromAgent(ctx, agentID, knowledgeBaseID)
}
