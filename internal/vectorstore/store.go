package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrMissingID indicates a required identifier was empty.
	ErrMissingID = errors.New("missing identifier")
)

// Querier is the generic query executor the store runs on. Defined by the
// consumer (this package), satisfied by *pgxpool.Pool.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// probeTTL bounds how long one acceleration probe result is trusted.
const probeTTL = 5 * time.Minute

// Store manages knowledge bases, documents and chunks, and serves vector
// and pattern searches over them.
//
// Store is safe for concurrent use by multiple goroutines: the probe result
// and the query cache are the only shared mutable state, both mutex-guarded.
type Store struct {
	db     Querier
	logger *slog.Logger
	cache  *queryCache

	probeMu        sync.Mutex
	probeCheckedAt time.Time
	probeResult    bool
}

// Option configures a Store.
type Option func(*Store)

// WithCacheTTL overrides the search result cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Store) { s.cache = newQueryCache(ttl, defaultCacheEntries) }
}

// New creates a Store on top of the given query executor. A nil logger
// falls back to slog.Default.
func New(db Querier, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		db:     db,
		logger: logger,
		cache:  newQueryCache(DefaultCacheTTL, defaultCacheEntries),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateKnowledgeBase inserts a new knowledge base for a tenant.
func (s *Store) CreateKnowledgeBase(ctx context.Context, tenantID, name, embeddingModel string, chunkSize, chunkOverlap int) (*KnowledgeBase, error) {
	if tenantID == "" || name == "" {
		return nil, fmt.Errorf("%w: tenant id and name are required", ErrMissingID)
	}

	kb := &KnowledgeBase{
		ID:             uuid.New().String(),
		TenantID:       tenantID,
		Name:           name,
		EmbeddingModel: embeddingModel,
		ChunkSize:      chunkSize,
		ChunkOverlap:   chunkOverlap,
		CreatedAt:      time.Now().UTC(),
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO knowledge_bases (id, tenant_id, name, embedding_model, chunk_size, chunk_overlap, document_count, chunk_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, $7)`,
		kb.ID, kb.TenantID, kb.Name, kb.EmbeddingModel, kb.ChunkSize, kb.ChunkOverlap, kb.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating knowledge base: %w", err)
	}

	s.logger.Debug("created knowledge base", "id", kb.ID, "tenant", tenantID, "name", name)
	return kb, nil
}

// GetKnowledgeBase fetches a knowledge base by id.
func (s *Store) GetKnowledgeBase(ctx context.Context, id string) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	err := s.db.QueryRow(ctx, `
		SELECT id, tenant_id, name, embedding_model, chunk_size, chunk_overlap, document_count, chunk_count, created_at
		FROM knowledge_bases WHERE id = $1`, id).
		Scan(&kb.ID, &kb.TenantID, &kb.Name, &kb.EmbeddingModel, &kb.ChunkSize, &kb.ChunkOverlap,
			&kb.DocumentCount, &kb.ChunkCount, &kb.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: knowledge base %q", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting knowledge base %q: %w", id, err)
	}
	return &kb, nil
}

// ListKnowledgeBases returns all knowledge bases owned by a tenant, newest
// first.
func (s *Store) ListKnowledgeBases(ctx context.Context, tenantID string) ([]KnowledgeBase, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, tenant_id, name, embedding_model, chunk_size, chunk_overlap, document_count, chunk_count, created_at
		FROM knowledge_bases WHERE tenant_id = $1 ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing knowledge bases: %w", err)
	}
	defer rows.Close()

	var out []KnowledgeBase
	for rows.Next() {
		var kb KnowledgeBase
		if err := rows.Scan(&kb.ID, &kb.TenantID, &kb.Name, &kb.EmbeddingModel, &kb.ChunkSize, &kb.ChunkOverlap,
			&kb.DocumentCount, &kb.ChunkCount, &kb.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning knowledge base: %w", err)
		}
		out = append(out, kb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing knowledge bases: %w", err)
	}
	return out, nil
}

// DeleteKnowledgeBase removes a knowledge base. Documents, chunks and agent
// links cascade at the schema level.
func (s *Store) DeleteKnowledgeBase(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM knowledge_bases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting knowledge base %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: knowledge base %q", ErrNotFound, id)
	}
	s.logger.Debug("deleted knowledge base", "id", id)
	return nil
}

// UpdateStats adjusts the document and chunk counters of a knowledge base
// by the given deltas.
func (s *Store) UpdateStats(ctx context.Context, id string, documentDelta, chunkDelta int) error {
	_, err := s.db.Exec(ctx, `
		UPDATE knowledge_bases
		SET document_count = GREATEST(document_count + $2, 0),
		    chunk_count = GREATEST(chunk_count + $3, 0)
		WHERE id = $1`, id, documentDelta, chunkDelta)
	if err != nil {
		return fmt.Errorf("updating stats for knowledge base %q: %w", id, err)
	}
	return nil
}

// CreateDocument registers a source document in a knowledge base with
// status pending.
func (s *Store) CreateDocument(ctx context.Context, knowledgeBaseID, name, docType, storagePath, contentHash string) (*Document, error) {
	if knowledgeBaseID == "" || name == "" {
		return nil, fmt.Errorf("%w: knowledge base id and name are required", ErrMissingID)
	}

	doc := &Document{
		ID:              uuid.New().String(),
		KnowledgeBaseID: knowledgeBaseID,
		Name:            name,
		Type:            docType,
		StoragePath:     storagePath,
		ContentHash:     contentHash,
		Status:          StatusPending,
		CreatedAt:       time.Now().UTC(),
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO documents (id, knowledge_base_id, name, type, storage_path, content_hash, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		doc.ID, doc.KnowledgeBaseID, doc.Name, doc.Type, doc.StoragePath, doc.ContentHash, doc.Status, doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}
	return doc, nil
}

// SetDocumentStatus transitions a document's processing status.
func (s *Store) SetDocumentStatus(ctx context.Context, documentID, status string) error {
	switch status {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
	default:
		return fmt.Errorf("invalid document status %q", status)
	}
	tag, err := s.db.Exec(ctx, `UPDATE documents SET status = $2 WHERE id = $1`, documentID, status)
	if err != nil {
		return fmt.Errorf("updating document %q status: %w", documentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: document %q", ErrNotFound, documentID)
	}
	return nil
}

// DeleteDocument removes a document; its chunks cascade.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("deleting document %q: %w", documentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: document %q", ErrNotFound, documentID)
	}
	return nil
}

// StoreChunk persists one chunk. The embedding is serialized to its flat
// numeric-array text form; a missing embedding stores NULL, leaving the
// chunk reachable only through non-vector paths. Nil metadata becomes an
// empty object.
func (s *Store) StoreChunk(ctx context.Context, documentID, knowledgeBaseID string, p ChunkParams) (*Chunk, error) {
	if documentID == "" || knowledgeBaseID == "" {
		return nil, fmt.Errorf("%w: document id and knowledge base id are required", ErrMissingID)
	}

	metadata := p.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshaling chunk metadata: %w", err)
	}

	var embeddingText *string
	if len(p.Embedding) > 0 {
		text := pgvector.NewVector(p.Embedding).String()
		embeddingText = &text
	}

	chunk := &Chunk{
		ID:              uuid.New().String(),
		DocumentID:      documentID,
		KnowledgeBaseID: knowledgeBaseID,
		Index:           p.Index,
		Content:         p.Content,
		StartChar:       p.StartChar,
		EndChar:         p.EndChar,
		Embedding:       p.Embedding,
		Metadata:        metadata,
		CreatedAt:       time.Now().UTC(),
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO chunks (id, document_id, knowledge_base_id, chunk_index, content, start_char, end_char, embedding, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		chunk.ID, chunk.DocumentID, chunk.KnowledgeBaseID, chunk.Index, chunk.Content,
		chunk.StartChar, chunk.EndChar, embeddingText, metadataJSON, chunk.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("storing chunk: %w", err)
	}

	return chunk, nil
}

// IsAccelerationAvailable probes whether the pgvector extension is
// installed. Probe failures are swallowed and reported as unavailable; the
// result is cached for probeTTL.
func (s *Store) IsAccelerationAvailable(ctx context.Context) bool {
	s.probeMu.Lock()
	defer s.probeMu.Unlock()

	if !s.probeCheckedAt.IsZero() && time.Since(s.probeCheckedAt) < probeTTL {
		return s.probeResult
	}

	var available bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'vector')`).Scan(&available)
	if err != nil {
		s.logger.Debug("vector acceleration probe failed", "error", err)
		available = false
	}

	s.probeResult = available
	s.probeCheckedAt = time.Now()
	return available
}

// parseMetadata decodes stored chunk metadata, degrading to an empty map on
// malformed JSON so one bad row never fails a search.
func (s *Store) parseMetadata(chunkID string, raw []byte) map[string]string {
	if len(raw) == 0 {
		return map[string]string{}
	}
	var metadata map[string]string
	if err := json.Unmarshal(raw, &metadata); err != nil {
		s.logger.Warn("failed to parse chunk metadata", "chunk_id", chunkID, "error", err)
		return map[string]string{}
	}
	return metadata
}
