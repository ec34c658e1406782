package vectorstore

import (
	"context"
	"fmt"
)

// AssignToAgent links a knowledge base to an agent at the given priority.
// Re-assigning an existing link updates its priority in place.
func (s *Store) AssignToAgent(ctx context.Context, agentID, knowledgeBaseID string, priority int) error {
	if agentID == "" || knowledgeBaseID == "" {
		return fmt.Errorf("%w: agent id and knowledge base id are required", ErrMissingID)
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO agent_knowledge_bases (agent_id, knowledge_base_id, priority)
		VALUES ($1, $2, $3)
		ON CONFLICT (agent_id, knowledge_base_id) DO UPDATE SET priority = EXCLUDED.priority`,
		agentID, knowledgeBaseID, priority)
	if err != nil {
		return fmt.Errorf("assigning knowledge base %q to agent %q: %w", knowledgeBaseID, agentID, err)
	}
	s.logger.Debug("assigned knowledge base to agent", "agent", agentID, "knowledge_base", knowledgeBaseID, "priority", priority)
	return nil
}

// RemoveFromAgent unlinks a knowledge base from an agent. Removing a link
// that does not exist is not an error.
func (s *Store) RemoveFromAgent(ctx context.Context, agentID, knowledgeBaseID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM agent_knowledge_bases WHERE agent_id = $1 AND knowledge_base_id = $2`,
		agentID, knowledgeBaseID)
	if err != nil {
		return fmt.Errorf("removing knowledge base %q from agent %q: %w", knowledgeBaseID, agentID, err)
	}
	return nil
}

// GetAgentKnowledgeBases returns the knowledge bases linked to an agent,
// highest priority first with name as the tiebreaker. An agent with no
// links returns an empty set.
func (s *Store) GetAgentKnowledgeBases(ctx context.Context, agentID string) ([]AgentKnowledgeBase, error) {
	rows, err := s.db.Query(ctx, `
		SELECT kb.id, kb.tenant_id, kb.name, kb.embedding_model, kb.chunk_size, kb.chunk_overlap,
		       kb.document_count, kb.chunk_count, kb.created_at, akb.agent_id, akb.priority
		FROM agent_knowledge_bases akb
		JOIN knowledge_bases kb ON kb.id = akb.knowledge_base_id
		WHERE akb.agent_id = $1
		ORDER BY akb.priority DESC, kb.name ASC`, agentID)
	if err != nil {
		return nil, fmt.Errorf("listing knowledge bases for agent %q: %w", agentID, err)
	}
	defer rows.Close()

	var out []AgentKnowledgeBase
	for rows.Next() {
		var akb AgentKnowledgeBase
		if err := rows.Scan(&akb.ID, &akb.TenantID, &akb.Name, &akb.EmbeddingModel, &akb.ChunkSize, &akb.ChunkOverlap,
			&akb.DocumentCount, &akb.ChunkCount, &akb.CreatedAt, &akb.AgentID, &akb.Priority); err != nil {
			return nil, fmt.Errorf("scanning agent knowledge base: %w", err)
		}
		out = append(out, akb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing knowledge bases for agent %q: %w", agentID, err)
	}
	return out, nil
}

// GetAgentsByKnowledgeBase returns the ids of all agents linked to a
// knowledge base.
func (s *Store) GetAgentsByKnowledgeBase(ctx context.Context, knowledgeBaseID string) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT agent_id FROM agent_knowledge_bases WHERE knowledge_base_id = $1 ORDER BY agent_id`,
		knowledgeBaseID)
	if err != nil {
		return nil, fmt.Errorf("listing agents for knowledge base %q: %w", knowledgeBaseID, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning agent id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing agents for knowledge base %q: %w", knowledgeBaseID, err)
	}
	return out, nil
}

// RemoveAllAgentsFromKnowledgeBase drops every agent link to a knowledge
// base, typically ahead of deleting the base itself.
func (s *Store) RemoveAllAgentsFromKnowledgeBase(ctx context.Context, knowledgeBaseID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM agent_knowledge_bases WHERE knowledge_base_id = $1`, knowledgeBaseID)
	if err != nil {
		return fmt.Errorf("removing agent links for knowledge base %q: %w", knowledgeBaseID, err)
	}
	return nil
}
