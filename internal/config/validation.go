package config

import (
	"fmt"
	"strings"
)

// Chunking bounds. A chunk must hold at least one sentence and stay well
// under embedding model input limits.
const (
	MinChunkSize = 100
	MaxChunkSize = 8000
)

var validSSLModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// Validate checks all configuration values, failing fast with sentinel
// errors that callers can test with errors.Is.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("%w: set OPENAI_API_KEY", ErrMissingAPIKey)
	}

	if c.ChunkSize < MinChunkSize || c.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidChunkSize, c.ChunkSize, MinChunkSize, MaxChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: %d (must be 0 to chunk_size-1)", ErrInvalidChunkOverlap, c.ChunkOverlap)
	}
	if c.SearchThreshold <= 0 || c.SearchThreshold > 1 {
		return fmt.Errorf("%w: %g (must be in (0, 1])", ErrInvalidThreshold, c.SearchThreshold)
	}
	if c.MaxContextChunks < 1 || c.MaxContextChunks > 50 {
		return fmt.Errorf("%w: %d (must be 1-50)", ErrInvalidMaxChunks, c.MaxContextChunks)
	}

	if strings.TrimSpace(c.PostgresHost) == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if strings.TrimSpace(c.PostgresDBName) == "" {
		return fmt.Errorf("%w: database name is empty", ErrInvalidPostgresDBName)
	}
	if !validSSLModes[c.PostgresSSLMode] {
		return fmt.Errorf("%w: %q", ErrInvalidPostgresSSLMode, c.PostgresSSLMode)
	}

	return nil
}
