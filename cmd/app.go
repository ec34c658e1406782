package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/botforge/botforge/internal/config"
	"github.com/botforge/botforge/internal/database"
	"github.com/botforge/botforge/internal/embedding"
	"github.com/botforge/botforge/internal/log"
	"github.com/botforge/botforge/internal/rag"
	"github.com/botforge/botforge/internal/vectorstore"
)

// app bundles the wired services a command needs. Commands that touch the
// database call newApp and defer close.
type app struct {
	cfg      *config.Config
	pool     *pgxpool.Pool
	store    *vectorstore.Store
	embedder *embedding.Service
	rag      *rag.Service
	logger   log.Logger
}

// newApp loads configuration and wires the service graph.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger := log.New(log.Config{})

	pool, err := database.Connect(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	store := vectorstore.New(pool, logger.With("component", "vectorstore"),
		vectorstore.WithCacheTTL(time.Duration(cfg.CacheTTLSeconds)*time.Second))

	provider := embedding.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	embedder := embedding.New(provider, logger.With("component", "embedding"))

	ragSvc := rag.New(store, embedder, logger.With("component", "rag"),
		rag.WithMaxChunks(cfg.MaxContextChunks),
		rag.WithThreshold(cfg.SearchThreshold))

	return &app{
		cfg:      cfg,
		pool:     pool,
		store:    store,
		embedder: embedder,
		rag:      ragSvc,
		logger:   logger,
	}, nil
}

func (a *app) close() {
	a.pool.Close()
}
