package cmd

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/botforge/botforge/internal/chunk"
	"github.com/botforge/botforge/internal/vectorstore"
)

var ingestKB string

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingest plain text files into a knowledge base",
	Long: `Ingest splits each file into overlapping chunks, embeds them and stores
them in the given knowledge base. Files are treated as plain text.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		kb, err := a.store.GetKnowledgeBase(cmd.Context(), ingestKB)
		if err != nil {
			return err
		}

		for _, path := range args {
			if err := ingestFile(cmd, a, kb, path); err != nil {
				return fmt.Errorf("ingesting %s: %w", path, err)
			}
		}
		return nil
	},
}

func ingestFile(cmd *cobra.Command, a *app, kb *vectorstore.KnowledgeBase, path string) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator's command line
	if err != nil {
		return err
	}

	hash := sha256.Sum256(data)
	doc, err := a.store.CreateDocument(ctx, kb.ID, filepath.Base(path), "text", path, hex.EncodeToString(hash[:]))
	if err != nil {
		return err
	}

	if err := a.store.SetDocumentStatus(ctx, doc.ID, vectorstore.StatusProcessing); err != nil {
		return err
	}

	pieces := chunk.Split(string(data), kb.ChunkSize, kb.ChunkOverlap)
	if len(pieces) == 0 {
		fmt.Printf("%s: no content to ingest\n", path)
		return a.store.SetDocumentStatus(ctx, doc.ID, vectorstore.StatusCompleted)
	}

	texts := make([]string, len(pieces))
	for i, p := range pieces {
		texts[i] = p.Content
	}

	vectors, err := a.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		_ = a.store.SetDocumentStatus(ctx, doc.ID, vectorstore.StatusFailed)
		return err
	}
	if len(vectors) != len(pieces) {
		_ = a.store.SetDocumentStatus(ctx, doc.ID, vectorstore.StatusFailed)
		return fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(pieces))
	}

	for i, p := range pieces {
		_, err := a.store.StoreChunk(ctx, doc.ID, kb.ID, vectorstore.ChunkParams{
			Content:   p.Content,
			Embedding: vectors[i],
			Index:     i,
			StartChar: p.Start,
			EndChar:   p.End,
		})
		if err != nil {
			_ = a.store.SetDocumentStatus(ctx, doc.ID, vectorstore.StatusFailed)
			return err
		}
	}

	if err := a.store.SetDocumentStatus(ctx, doc.ID, vectorstore.StatusCompleted); err != nil {
		return err
	}
	if err := a.store.UpdateStats(ctx, kb.ID, 1, len(pieces)); err != nil {
		return err
	}

	fmt.Printf("%s: %d chunks stored\n", path, len(pieces))
	return nil
}

func init() {
	ingestCmd.Flags().StringVar(&ingestKB, "kb", "", "knowledge base id (required)")
	_ = ingestCmd.MarkFlagRequired("kb")
	rootCmd.AddCommand(ingestCmd)
}
