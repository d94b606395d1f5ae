package main

import (
	"fmt"
	"strings"

	"github.com/deepgram/minichat/internal/services"
	"github.com/spf13/cobra"
)

func newKnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Manage facts used by --memory",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <fact...>",
		Short: "Embed and store a fact",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs := services.InitializeServices(cmd.Context(), cmd.OutOrStdout())
			defer svcs.Close()

			id, err := svcs.GetKnowledgeService().Add(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Knowledge added: %s\n", id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print stored facts, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs := services.InitializeServices(cmd.Context(), cmd.OutOrStdout())
			defer svcs.Close()

			facts, err := svcs.GetKnowledgeService().List(cmd.Context())
			if err != nil {
				return err
			}

			for _, fact := range facts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", fact.ID, fact.Text)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every stored fact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs := services.InitializeServices(cmd.Context(), cmd.OutOrStdout())
			defer svcs.Close()

			return svcs.GetKnowledgeService().Clear(cmd.Context())
		},
	})

	return cmd
}
