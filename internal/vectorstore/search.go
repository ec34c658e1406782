package vectorstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/pgvector/pgvector-go"

	"github.com/botforge/botforge/internal/embedding"
)

// Search ranks chunks of one knowledge base against the query vector.
func (s *Store) Search(ctx context.Context, knowledgeBaseID string, vector []float32, opts SearchOptions) ([]SearchResult, error) {
	return s.SearchMulti(ctx, []string{knowledgeBaseID}, vector, opts)
}

// SearchMulti ranks chunks across several knowledge bases against the query
// vector, most similar first. An empty knowledge base set returns no
// results without touching the store. Results are served from the query
// cache when a fresh entry exists.
func (s *Store) SearchMulti(ctx context.Context, knowledgeBaseIDs []string, vector []float32, opts SearchOptions) ([]SearchResult, error) {
	if len(knowledgeBaseIDs) == 0 {
		return nil, nil
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}
	opts = opts.withDefaults()

	key := cacheKey(knowledgeBaseIDs, vector, opts)
	if results, ok := s.cache.get(key); ok {
		s.logger.Debug("search cache hit", "knowledge_bases", len(knowledgeBaseIDs), "results", len(results))
		return results, nil
	}
	s.logger.Debug("search cache miss", "knowledge_bases", len(knowledgeBaseIDs))

	var results []SearchResult
	var err error
	if s.IsAccelerationAvailable(ctx) {
		results, err = s.searchNative(ctx, knowledgeBaseIDs, vector, opts)
		if err != nil {
			s.logger.Warn("native vector search failed, falling back to brute force", "error", err)
			results, err = s.searchBruteForce(ctx, knowledgeBaseIDs, vector, opts)
		}
	} else {
		results, err = s.searchBruteForce(ctx, knowledgeBaseIDs, vector, opts)
	}
	if err != nil {
		return nil, err
	}

	s.cache.put(key, results)
	return results, nil
}

// searchNative ranks inside PostgreSQL with the pgvector cosine distance
// operator. Cosine distance is 1 - similarity, so the similarity threshold
// becomes a distance ceiling.
func (s *Store) searchNative(ctx context.Context, knowledgeBaseIDs []string, vector []float32, opts SearchOptions) ([]SearchResult, error) {
	vectorText := pgvector.NewVector(vector).String()
	maxDistance := 1 - opts.Threshold

	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.content, 1 - (c.embedding::vector <=> $2::vector) AS similarity,
		       d.name, kb.name, c.metadata
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		JOIN knowledge_bases kb ON kb.id = c.knowledge_base_id
		WHERE c.knowledge_base_id = ANY($1)
		  AND c.embedding IS NOT NULL
		  AND c.embedding::vector <=> $2::vector <= $3
		ORDER BY c.embedding::vector <=> $2::vector
		LIMIT $4`,
		knowledgeBaseIDs, vectorText, maxDistance, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("native vector search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var metadata []byte
		if err := rows.Scan(&r.ChunkID, &r.Content, &r.Similarity, &r.DocumentName, &r.KnowledgeBaseName, &metadata); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		r.Metadata = s.parseMetadata(r.ChunkID, metadata)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("native vector search: %w", err)
	}
	return results, nil
}

// searchBruteForce loads every embedded chunk of the target knowledge bases
// and ranks in process. Chunks whose stored embedding fails to parse or
// whose dimensionality differs from the query are skipped with a warning.
func (s *Store) searchBruteForce(ctx context.Context, knowledgeBaseIDs []string, vector []float32, opts SearchOptions) ([]SearchResult, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.content, c.embedding, d.name, kb.name, c.metadata
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		JOIN knowledge_bases kb ON kb.id = c.knowledge_base_id
		WHERE c.knowledge_base_id = ANY($1)
		  AND c.embedding IS NOT NULL`,
		knowledgeBaseIDs)
	if err != nil {
		return nil, fmt.Errorf("brute force search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var stored any
		var metadata []byte
		if err := rows.Scan(&r.ChunkID, &r.Content, &stored, &r.DocumentName, &r.KnowledgeBaseName, &metadata); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		vec, err := ParseEmbedding(stored)
		if err != nil {
			s.logger.Warn("skipping chunk with unparseable embedding", "chunk_id", r.ChunkID, "error", err)
			continue
		}
		sim, err := embedding.CosineSimilarity(vector, vec)
		if err != nil {
			s.logger.Warn("skipping chunk with mismatched embedding", "chunk_id", r.ChunkID, "error", err)
			continue
		}
		if sim < opts.Threshold {
			continue
		}

		r.Similarity = sim
		r.Metadata = s.parseMetadata(r.ChunkID, metadata)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("brute force search: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// SearchPattern finds chunks whose content matches any of the given
// substring patterns, shortest content first so the most focused chunks
// (a single product row rather than a whole table) rank highest. Hits are
// exact matches and carry similarity 1.
func (s *Store) SearchPattern(ctx context.Context, knowledgeBaseIDs []string, patterns []string, limit int) ([]SearchResult, error) {
	if len(knowledgeBaseIDs) == 0 || len(patterns) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	like := make([]string, len(patterns))
	for i, p := range patterns {
		like[i] = "%" + p + "%"
	}

	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.content, d.name, kb.name, c.metadata
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		JOIN knowledge_bases kb ON kb.id = c.knowledge_base_id
		WHERE c.knowledge_base_id = ANY($1)
		  AND c.content ILIKE ANY($2)
		ORDER BY char_length(c.content) ASC
		LIMIT $3`,
		knowledgeBaseIDs, like, limit)
	if err != nil {
		return nil, fmt.Errorf("pattern search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var metadata []byte
		if err := rows.Scan(&r.ChunkID, &r.Content, &r.DocumentName, &r.KnowledgeBaseName, &metadata); err != nil {
			return nil, fmt.Errorf("scanning pattern result: %w", err)
		}
		r.Similarity = 1
		r.Exact = true
		r.Metadata = s.parseMetadata(r.ChunkID, metadata)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pattern search: %w", err)
	}
	return results, nil
}
