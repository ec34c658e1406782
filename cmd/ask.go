package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/botforge/botforge/internal/rag"
)

var (
	askAgent  string
	askPrompt string
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Retrieve context for a query and print the assembled prompt",
	Long: `Ask runs the full retrieval pipeline for a bot query: identifier
detection, exact or semantic search over the bot's linked knowledge bases,
and prompt assembly. It prints the retrieved sources and the final system
prompt an LLM would receive.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		query := strings.Join(args, " ")
		result := a.rag.GetContextForQuery(cmd.Context(), askAgent, query)

		if result.Err != "" {
			fmt.Printf("Retrieval degraded: %s\n\n", result.Err)
		}
		if result.HasContext {
			fmt.Printf("Found %d sources:\n", len(result.Sources))
			for i, src := range result.Sources {
				kind := "semantic"
				if src.Exact {
					kind = "exact"
				}
				fmt.Printf("  %d. %s (%s, %s, similarity %.2f)\n",
					i+1, src.DocumentName, src.KnowledgeBaseName, kind, src.Similarity)
			}
		} else {
			fmt.Println("No context found.")
		}

		fmt.Println("\n--- system prompt ---")
		fmt.Println(rag.BuildPrompt(askPrompt, result))
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askAgent, "agent", "", "bot agent id (required)")
	askCmd.Flags().StringVar(&askPrompt, "system-prompt", "", "custom system prompt persona")
	_ = askCmd.MarkFlagRequired("agent")
	rootCmd.AddCommand(askCmd)
}
