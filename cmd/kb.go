package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage knowledge bases",
}

var kbCreateTenant string

var kbCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		kb, err := a.store.CreateKnowledgeBase(cmd.Context(), kbCreateTenant, args[0],
			a.cfg.EmbeddingModel, a.cfg.ChunkSize, a.cfg.ChunkOverlap)
		if err != nil {
			return err
		}

		fmt.Printf("Created knowledge base %q (%s)\n", kb.Name, kb.ID)
		return nil
	},
}

var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge bases for a tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		kbs, err := a.store.ListKnowledgeBases(cmd.Context(), kbCreateTenant)
		if err != nil {
			return err
		}
		if len(kbs) == 0 {
			fmt.Println("No knowledge bases.")
			return nil
		}

		for _, kb := range kbs {
			fmt.Printf("%s  %-20s  %d documents, %d chunks\n", kb.ID, kb.Name, kb.DocumentCount, kb.ChunkCount)
		}
		return nil
	},
}

var kbDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a knowledge base and all of its contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.store.DeleteKnowledgeBase(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted knowledge base %s\n", args[0])
		return nil
	},
}

func init() {
	kbCmd.PersistentFlags().StringVar(&kbCreateTenant, "tenant", "default", "tenant that owns the knowledge base")
	kbCmd.AddCommand(kbCreateCmd, kbListCmd, kbDeleteCmd)
	rootCmd.AddCommand(kbCmd)
}
