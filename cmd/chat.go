package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/deepgram/minichat/internal/services"
	"github.com/deepgram/minichat/pkg/logger"
	"github.com/spf13/cobra"
)

const maxLineBytes = 1 << 20

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Answer messages typed on standard input until quit or exit",
		Long: "Read one message per line and answer each independently. " +
			"Failures are logged and the loop continues.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			useMemory, _ := cmd.Flags().GetBool("memory")
			out := cmd.OutOrStdout()

			svcs := services.InitializeServices(cmd.Context(), out)
			defer svcs.Close()
			chatService := svcs.GetChatService()

			fmt.Fprintln(out, "Mini Chat AI started. Type 'quit' or 'exit' to stop.")

			scanner := bufio.NewScanner(cmd.InOrStdin())
			scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

			for {
				fmt.Fprint(out, "You: ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}

				line := scanner.Text()
				switch strings.ToLower(strings.TrimSpace(line)) {
				case "quit", "exit":
					fmt.Fprintln(out, "Goodbye!")
					return nil
				}

				if err := chatService.RunMessage(cmd.Context(), line, useMemory); err != nil {
					logger.For(logger.CLI).Error().Err(err).Str("step", failedStep(err)).Msg("Chat request failed")
				}
			}
		},
	}

	cmd.Flags().Bool("memory", false, "Augment each message with stored knowledge.")
	return cmd
}
