package vectorstore

import "time"

// Document processing status values.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// KnowledgeBase is a tenant-owned collection of documents and their chunks.
type KnowledgeBase struct {
	ID             string
	TenantID       string
	Name           string
	EmbeddingModel string
	ChunkSize      int
	ChunkOverlap   int
	DocumentCount  int
	ChunkCount     int
	CreatedAt      time.Time
}

// Document is one source file inside a knowledge base. Ingestion happens
// outside this package; only status bookkeeping lives here.
type Document struct {
	ID              string
	KnowledgeBaseID string
	Name            string
	Type            string
	StoragePath     string
	ContentHash     string
	Status          string
	CreatedAt       time.Time
}

// Chunk is the atomic retrieval unit. Within one document, Index values are
// contiguous starting at 0. Embedding dimensionality must match the
// knowledge base's configured model.
type Chunk struct {
	ID              string
	DocumentID      string
	KnowledgeBaseID string
	Index           int
	Content         string
	StartChar       int
	EndChar         int
	Embedding       []float32
	Metadata        map[string]string
	CreatedAt       time.Time
}

// ChunkParams carries the fields needed to store a new chunk. A nil
// Embedding is stored as NULL; nil Metadata defaults to an empty object.
type ChunkParams struct {
	Content   string
	Embedding []float32
	Index     int
	StartChar int
	EndChar   int
	Metadata  map[string]string
}

// SearchResult is a ranked chunk with provenance. Raw embeddings are never
// included. Exact marks pattern-match hits from the identifier fast path.
type SearchResult struct {
	ChunkID           string
	Content           string
	Similarity        float64
	Exact             bool
	DocumentName      string
	KnowledgeBaseName string
	Metadata          map[string]string
}

// Search defaults.
const (
	DefaultLimit     = 20
	DefaultThreshold = 0.7
)

// SearchOptions tune a search call. Zero values take the defaults above.
type SearchOptions struct {
	Limit     int
	Threshold float64
}

func (o SearchOptions) withDefaults() SearchOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	return o
}

// AgentKnowledgeBase is a knowledge base together with the priority of its
// link to a specific agent.
type AgentKnowledgeBase struct {
	KnowledgeBase
	AgentID  string
	Priority int
}
