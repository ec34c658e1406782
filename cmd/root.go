// Package cmd implements the botforge command line interface.
//
// The CLI is a thin driver over the retrieval library: it manages
// knowledge bases, ingests plain text files, links knowledge bases to
// bots and answers ad hoc queries with retrieved context.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/botforge/botforge/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "botforge",
	Short: "botforge - knowledge base retrieval for chatbots",
	Long: `botforge manages knowledge bases, ingests documents into searchable
chunks and retrieves context for bot queries.

Run "botforge kb create" to create a knowledge base, "botforge ingest" to
load documents into it, "botforge link" to attach it to a bot, and
"botforge ask" to query with retrieved context.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Structured logs go to stderr; stdout carries command output only.
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(log.New(log.Config{Level: level}))
}
