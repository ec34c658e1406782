package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var linkPriority int

var linkCmd = &cobra.Command{
	Use:   "link <agent-id> <kb-id>",
	Short: "Link a knowledge base to a bot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.rag.Link(cmd.Context(), args[0], args[1], linkPriority); err != nil {
			return err
		}
		fmt.Printf("Linked %s to %s (priority %d)\n", args[1], args[0], linkPriority)
		return nil
	},
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink <agent-id> <kb-id>",
	Short: "Unlink a knowledge base from a bot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.rag.Unlink(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Unlinked %s from %s\n", args[1], args[0])
		return nil
	},
}

func init() {
	linkCmd.Flags().IntVar(&linkPriority, "priority", 0, "search priority (higher searched first)")
	rootCmd.AddCommand(linkCmd, unlinkCmd)
}
